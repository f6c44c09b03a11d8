// Package hub owns the registry of live room actors. Like the rooms it is a
// single-goroutine actor driven by a typed message union, so registry
// lookups and evictions never race room activation.
package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/glitchhunt/glitchhunt-backend/internal/room"
	"github.com/glitchhunt/glitchhunt-backend/internal/store"
)

type HubMsg interface{ isHubMsg() }

// GetRoom replies with the live actor for a code. A code with durable state
// but no live actor is reactivated on the spot; nil means the room truly has
// no prior state.
type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

// EnsureRoom replies with the existing actor or activates a new one. Only
// host connections ensure; non-hosts go through GetRoom so joining a room
// with no state can be rejected.
type EnsureRoom struct {
	Code      string
	Languages []string
	Reply     chan *room.Room
}

type RemoveRoom struct{ Code string }

type ShutdownHub struct{}

func (GetRoom) isHubMsg()     {}
func (EnsureRoom) isHubMsg()  {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*room.Room
	store  store.Store
	log    *zap.Logger
	timing room.Timing
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, st store.Store, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*room.Room),
		store:  st,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case GetRoom:
				if rm := h.live(msg.Code); rm != nil {
					msg.Reply <- rm
					break
				}
				// A durable blob without a live actor means the room was
				// evicted, not that it never existed; reactivate it.
				if _, found, err := h.store.Load(h.ctx, msg.Code); err != nil || !found {
					msg.Reply <- nil
					break
				}
				msg.Reply <- h.activate(msg.Code, nil)

			case EnsureRoom:
				if rm := h.live(msg.Code); rm != nil {
					msg.Reply <- rm
					break
				}
				msg.Reply <- h.activate(msg.Code, msg.Languages)

			case RemoveRoom:
				// A reactivation may have taken the slot between the
				// eviction and this message; only a stopped actor is removed.
				if rm := h.rooms[msg.Code]; rm != nil {
					select {
					case <-rm.Done():
						delete(h.rooms, msg.Code)
					default:
					}
				}

			case ShutdownHub:
				for _, rm := range h.rooms {
					rm.Inbox() <- room.Shutdown{}
				}
				clear(h.rooms)
				h.cancel()
				return
			}
		}
	}
}

// live returns the registered actor for a code, deregistering it first if it
// has already stopped. Eviction is asynchronous, so a stopped actor can
// linger in the registry until its RemoveRoom lands; handing it out would
// strand the caller on a dead inbox.
func (h *Hub) live(code string) *room.Room {
	rm := h.rooms[code]
	if rm == nil {
		return nil
	}
	select {
	case <-rm.Done():
		delete(h.rooms, code)
		return nil
	default:
		return rm
	}
}

func (h *Hub) activate(code string, languages []string) *room.Room {
	rm, err := room.New(h.ctx, room.Options{
		Code:      code,
		Languages: languages,
		Store:     h.store,
		Logger:    h.log,
		OnEmpty:   h.evict,
		Timing:    h.timing,
	})
	if err != nil {
		h.log.Error("activate room", zap.String("room", code), zap.Error(err))
		return nil
	}
	h.rooms[code] = rm
	return rm
}

// evict runs on a room goroutine; it only enqueues, keeping the registry
// mutation on the hub goroutine.
func (h *Hub) evict(code string) {
	select {
	case h.inbox <- RemoveRoom{Code: code}:
	case <-h.ctx.Done():
	}
}
