package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/glitchhunt/glitchhunt-backend/internal/hub"
	"github.com/glitchhunt/glitchhunt-backend/internal/protocol"
	"github.com/glitchhunt/glitchhunt-backend/internal/room"
)

const writeTimeout = 3 * time.Second

// Handler upgrades a connection and bridges it to the room actor. The
// connection carries its out-of-band parameters in the query string: room
// code, display name, host flag, and (host only) the subject languages.
func Handler(h *hub.Hub, log *zap.Logger, allowedOrigins []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		code := q.Get("room")
		if code == "" {
			http.Error(w, "missing room", http.StatusBadRequest)
			return
		}
		name := q.Get("name")
		if name == "" {
			name = "Player"
		}
		isHost := q.Get("host") == "1"
		var languages []string
		for _, l := range strings.Split(q.Get("languages"), ",") {
			if l = strings.TrimSpace(l); l != "" {
				languages = append(languages, l)
			}
		}

		var rm *room.Room
		reply := make(chan *room.Room, 1)
		if isHost {
			h.Inbox() <- hub.EnsureRoom{Code: code, Languages: languages, Reply: reply}
		} else {
			h.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
		}
		rm = <-reply

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: allowedOrigins,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		if rm == nil {
			// Non-host into a room with no state, or activation failure:
			// report and terminate.
			writeOutbound(r.Context(), conn,
				protocol.NewErrorNotice(protocol.CodeInvalidLobby, "lobby does not exist"))
			conn.Close(websocket.StatusPolicyViolation, "invalid lobby")
			return
		}

		connID := randID(8)
		outbox := make(chan protocol.Outbound, 16)
		joined := make(chan bool, 1)
		select {
		case rm.Inbox() <- room.Join{ConnID: connID, Name: name, Host: isHost, Outbox: outbox, Reply: joined}:
		case <-rm.Done():
		}
		accepted := false
		select {
		case accepted = <-joined:
		case <-rm.Done():
			// The actor can stop with the join still queued; its drain
			// refuses queued joins, so nothing leaks either way.
		}
		if !accepted {
			writeOutbound(r.Context(), conn,
				protocol.NewErrorNotice(protocol.CodeInvalidLobby, "lobby is gone"))
			conn.Close(websocket.StatusPolicyViolation, "invalid lobby")
			return
		}
		defer func() {
			select {
			case rm.Inbox() <- room.Leave{ConnID: connID}:
			case <-rm.Done():
			}
		}()

		clog := log.With(zap.String("room", code), zap.String("conn", connID))

		// Writer goroutine: drains the outbox until the room closes it.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for msg := range outbox {
				if err := writeOutbound(writeCtx, conn, msg); err != nil {
					return
				}
			}
			// Room dropped us (slow consumer or shutdown); unblock the reader.
			conn.Close(websocket.StatusTryAgainLater, "dropped")
		}()

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					clog.Debug("read ended", zap.Error(err))
				}
				return
			}

			intent, err := protocol.DecodeIntent(data)
			if err != nil {
				// Malformed frames never reach the room.
				_ = writeOutbound(r.Context(), conn,
					protocol.NewErrorNotice(protocol.CodeBadMessage, err.Error()))
				continue
			}
			select {
			case rm.Inbox() <- room.FromClient{ConnID: connID, Intent: intent}:
			case <-rm.Done():
				return
			}
		}
	}
}

func writeOutbound(ctx context.Context, conn *websocket.Conn, msg protocol.Outbound) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(wctx, websocket.MessageText, payload)
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
