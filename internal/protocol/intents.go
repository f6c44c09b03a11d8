// Package protocol defines the wire shapes exchanged with clients. Inbound
// frames are decoded into a closed union of intent types and validated at
// the boundary, so malformed frames never reach the room handlers.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/glitchhunt/glitchhunt-backend/internal/engine"
)

var ErrUnknownIntent = errors.New("unknown intent type")
var ErrMalformedIntent = errors.New("malformed intent")

// Intent is one inbound client message. The set is closed: a new intent
// needs a decode arm here and a handler in the room actor.
type Intent interface{ isIntent() }

type PresenceIntent struct {
	File   string
	Cursor engine.Cursor
}

type GuessIntent struct {
	ErrorID     string
	GuessedType string
}

type StartGameIntent struct {
	MapID string // optional; empty means a random pool
}

// SelectFileIntent is advisory only; the server accepts and ignores it.
type SelectFileIntent struct {
	File string
}

type ChatIntent struct {
	Text string
}

type ReturnToLobbyIntent struct{}

func (PresenceIntent) isIntent()      {}
func (GuessIntent) isIntent()         {}
func (StartGameIntent) isIntent()     {}
func (SelectFileIntent) isIntent()    {}
func (ChatIntent) isIntent()          {}
func (ReturnToLobbyIntent) isIntent() {}

type intentFrame struct {
	Type        string         `json:"type"`
	File        string         `json:"file"`
	Cursor      *engine.Cursor `json:"cursor"`
	ErrorID     string         `json:"errorId"`
	GuessedType string         `json:"guessedType"`
	MapID       string         `json:"mapId"`
	Text        string         `json:"text"`
}

// DecodeIntent parses and validates one inbound frame.
func DecodeIntent(data []byte) (Intent, error) {
	var f intentFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedIntent, err)
	}

	switch f.Type {
	case "presence":
		if f.File == "" || f.Cursor == nil {
			return nil, fmt.Errorf("%w: presence needs file and cursor", ErrMalformedIntent)
		}
		return PresenceIntent{File: f.File, Cursor: *f.Cursor}, nil
	case "guess":
		if f.ErrorID == "" || f.GuessedType == "" {
			return nil, fmt.Errorf("%w: guess needs errorId and guessedType", ErrMalformedIntent)
		}
		return GuessIntent{ErrorID: f.ErrorID, GuessedType: f.GuessedType}, nil
	case "start_game":
		return StartGameIntent{MapID: f.MapID}, nil
	case "select_file":
		if f.File == "" {
			return nil, fmt.Errorf("%w: select_file needs file", ErrMalformedIntent)
		}
		return SelectFileIntent{File: f.File}, nil
	case "chat":
		text := strings.TrimSpace(f.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: chat needs text", ErrMalformedIntent)
		}
		return ChatIntent{Text: text}, nil
	case "return_to_lobby":
		return ReturnToLobbyIntent{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, f.Type)
	}
}
