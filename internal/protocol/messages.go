package protocol

import "github.com/glitchhunt/glitchhunt-backend/internal/engine"

// Outbound is one server-to-client message. Every variant is
// self-describing via its literal "type" field and carries only the
// sub-objects that changed; the full snapshot exists only in Init.
type Outbound interface{ isOutbound() }

// ErrorView is the sanitized client-facing defect: no category, no original
// text, no snapshot. Anything more would give the guess away.
type ErrorView struct {
	ID    string       `json:"id"`
	File  string       `json:"file"`
	Range engine.Range `json:"range"`
}

func NewErrorView(e engine.CodeError) ErrorView {
	return ErrorView{ID: e.ID, File: e.File, Range: e.Range}
}

// ErrorViews always returns a non-nil pointer so a cleared defect list
// serializes as [] rather than disappearing from the frame.
func ErrorViews(errs []engine.CodeError) *[]ErrorView {
	views := make([]ErrorView, 0, len(errs))
	for _, e := range errs {
		views = append(views, NewErrorView(e))
	}
	return &views
}

// StateView is the complete sanitized room state, sent once per connection.
type StateView struct {
	Phase          engine.Phase         `json:"phase"`
	Players        []engine.Player      `json:"players"`
	Files          []engine.FileContent `json:"files"`
	Errors         []ErrorView          `json:"errors"`
	Presences      []engine.Presence    `json:"presences"`
	Languages      []string             `json:"languages"`
	ErrorThreshold int                  `json:"errorThreshold"`
	GameStartTime  int64                `json:"gameStartTime,omitempty"`
}

func NewStateView(s *engine.State, presences []engine.Presence) StateView {
	return StateView{
		Phase:          s.Phase,
		Players:        s.Players,
		Files:          s.Files,
		Errors:         *ErrorViews(s.Errors),
		Presences:      presences,
		Languages:      s.Languages,
		ErrorThreshold: s.ErrorThreshold,
		GameStartTime:  s.GameStartTime,
	}
}

// PartialState carries only the changed sub-objects. Pointer fields
// distinguish "cleared" (present, empty) from "untouched" (absent);
// consumers treat absent fields as unchanged, never as unset.
type PartialState struct {
	Phase          *engine.Phase         `json:"phase,omitempty"`
	Players        []engine.Player       `json:"players,omitempty"`
	Files          *[]engine.FileContent `json:"files,omitempty"`
	Errors         *[]ErrorView          `json:"errors,omitempty"`
	ErrorThreshold *int                  `json:"errorThreshold,omitempty"`
	GameStartTime  *int64                `json:"gameStartTime,omitempty"`
}

type Init struct {
	Type     string    `json:"type"` // "init"
	State    StateView `json:"state"`
	PlayerID string    `json:"playerId"`
}

type StateUpdate struct {
	Type  string       `json:"type"` // "state"
	State PartialState `json:"state"`
}

type PresenceUpdate struct {
	Type      string            `json:"type"` // "presence"
	Presences []engine.Presence `json:"presences"`
}

type ErrorSpawned struct {
	Type        string       `json:"type"` // "errorSpawned"
	Error       ErrorView    `json:"error"`
	FileContent string       `json:"fileContent"`
	State       PartialState `json:"state"`
}

type ErrorCorrected struct {
	Type    string       `json:"type"` // "errorCorrected"
	ErrorID string       `json:"errorId"`
	State   PartialState `json:"state"`
}

type GuessWrong struct {
	Type    string       `json:"type"` // "guessWrong"
	ErrorID string       `json:"errorId"`
	State   PartialState `json:"state"`
}

type GameOver struct {
	Type  string       `json:"type"` // "gameOver"
	Won   bool         `json:"won"`
	State PartialState `json:"state"`
}

type Chat struct {
	Type    string             `json:"type"` // "chat"
	Message engine.ChatMessage `json:"message"`
}

// Error codes reported to clients.
const (
	CodeInvalidLobby  = "invalid_lobby"
	CodeBadMessage    = "bad_message"
	CodeErrorNotFound = "error_not_found"
)

type ErrorNotice struct {
	Type    string `json:"type"` // "error"
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (Init) isOutbound()           {}
func (StateUpdate) isOutbound()    {}
func (PresenceUpdate) isOutbound() {}
func (ErrorSpawned) isOutbound()   {}
func (ErrorCorrected) isOutbound() {}
func (GuessWrong) isOutbound()     {}
func (GameOver) isOutbound()       {}
func (Chat) isOutbound()           {}
func (ErrorNotice) isOutbound()    {}

func NewInit(s *engine.State, presences []engine.Presence, playerID string) Init {
	return Init{Type: "init", State: NewStateView(s, presences), PlayerID: playerID}
}

func NewStateUpdate(partial PartialState) StateUpdate {
	return StateUpdate{Type: "state", State: partial}
}

func NewPresenceUpdate(presences []engine.Presence) PresenceUpdate {
	return PresenceUpdate{Type: "presence", Presences: presences}
}

func NewErrorSpawned(e engine.CodeError, fileContent string, partial PartialState) ErrorSpawned {
	return ErrorSpawned{Type: "errorSpawned", Error: NewErrorView(e), FileContent: fileContent, State: partial}
}

func NewErrorCorrected(errorID string, partial PartialState) ErrorCorrected {
	return ErrorCorrected{Type: "errorCorrected", ErrorID: errorID, State: partial}
}

func NewGuessWrong(errorID string, partial PartialState) GuessWrong {
	return GuessWrong{Type: "guessWrong", ErrorID: errorID, State: partial}
}

func NewGameOver(won bool, partial PartialState) GameOver {
	return GameOver{Type: "gameOver", Won: won, State: partial}
}

func NewChat(msg engine.ChatMessage) Chat {
	return Chat{Type: "chat", Message: msg}
}

func NewErrorNotice(code, message string) ErrorNotice {
	return ErrorNotice{Type: "error", Code: code, Message: message}
}
