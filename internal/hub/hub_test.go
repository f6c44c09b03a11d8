package hub

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/glitchhunt/glitchhunt-backend/internal/protocol"
	"github.com/glitchhunt/glitchhunt-backend/internal/room"
)

type memStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemStore() *memStore { return &memStore{blobs: make(map[string][]byte)} }

func (m *memStore) Load(_ context.Context, code string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[code]
	return b, ok, nil
}

func (m *memStore) Save(_ context.Context, code string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[code] = blob
	return nil
}

func (m *memStore) Close() error { return nil }

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewHub(ctx, newMemStore(), zap.NewNop())
}

func getRoom(t *testing.T, h *Hub, code string) *room.Room {
	t.Helper()
	reply := make(chan *room.Room, 1)
	h.Inbox() <- GetRoom{Code: code, Reply: reply}
	select {
	case rm := <-reply:
		return rm
	case <-time.After(time.Second):
		t.Fatalf("timed out on GetRoom %s", code)
		return nil
	}
}

func ensureRoom(t *testing.T, h *Hub, code string) *room.Room {
	t.Helper()
	reply := make(chan *room.Room, 1)
	h.Inbox() <- EnsureRoom{Code: code, Languages: []string{"python"}, Reply: reply}
	select {
	case rm := <-reply:
		return rm
	case <-time.After(time.Second):
		t.Fatalf("timed out on EnsureRoom %s", code)
		return nil
	}
}

func TestHub_GetRoomUnknownIsNil(t *testing.T) {
	h := newTestHub(t)
	if rm := getRoom(t, h, "NOPE01"); rm != nil {
		t.Fatalf("unknown code must resolve to nil")
	}
}

func TestHub_EnsureRoomIsIdempotent(t *testing.T) {
	h := newTestHub(t)

	first := ensureRoom(t, h, "ROOM01")
	if first == nil {
		t.Fatalf("ensure must activate a room")
	}
	second := ensureRoom(t, h, "ROOM01")
	if second != first {
		t.Fatalf("second ensure must return the same actor")
	}
	if got := getRoom(t, h, "ROOM01"); got != first {
		t.Fatalf("get must see the ensured actor")
	}
}

func TestHub_RoomsAreIndependent(t *testing.T) {
	h := newTestHub(t)
	a := ensureRoom(t, h, "ROOMAA")
	b := ensureRoom(t, h, "ROOMBB")
	if a == b {
		t.Fatalf("distinct codes must activate distinct actors")
	}
}

func waitDone(t *testing.T, rm *room.Room) {
	t.Helper()
	select {
	case <-rm.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("room never stopped")
	}
}

func assertLive(t *testing.T, rm *room.Room) {
	t.Helper()
	select {
	case <-rm.Done():
		t.Fatalf("actor is not live")
	default:
	}
}

func TestHub_StoppedActorIsNeverHandedOut(t *testing.T) {
	h := newTestHub(t)
	rm := ensureRoom(t, h, "ROOM02")

	// Stop the actor out from under the hub; no RemoveRoom has landed yet.
	rm.Inbox() <- room.Shutdown{}
	waitDone(t, rm)

	// No durable state was ever written, so the code resolves to nothing.
	if got := getRoom(t, h, "ROOM02"); got != nil {
		t.Fatalf("stopped actor handed out")
	}
	again := ensureRoom(t, h, "ROOM02")
	if again == nil || again == rm {
		t.Fatalf("ensure must activate a fresh actor over a stopped one")
	}
	assertLive(t, again)
}

func TestHub_LastLeaveStopsRoom(t *testing.T) {
	h := newTestHub(t)
	rm := ensureRoom(t, h, "ROOM03")

	out := make(chan protocol.Outbound, 16)
	rm.Inbox() <- room.Join{ConnID: "c1", Name: "Ada", Host: true, Outbox: out}
	rm.Inbox() <- room.Leave{ConnID: "c1"}
	waitDone(t, rm)

	// The dead actor must be invisible however the eviction races; the
	// durable blob may legitimately reactivate a fresh one.
	if got := getRoom(t, h, "ROOM03"); got == rm {
		t.Fatalf("dead actor still handed out")
	}
}

func TestHub_GetRoomReactivatesFromDurableState(t *testing.T) {
	h := newTestHub(t)
	rm := ensureRoom(t, h, "ROOM04")

	out := make(chan protocol.Outbound, 16)
	rm.Inbox() <- room.Join{ConnID: "c1", Name: "Ada", Host: true, Outbox: out}
	rm.Inbox() <- room.Leave{ConnID: "c1"}
	waitDone(t, rm)

	// A non-host resolving the code after eviction reaches the persisted
	// room, not invalid_lobby.
	again := getRoom(t, h, "ROOM04")
	if again == nil {
		t.Fatalf("durable state must reactivate the room")
	}
	if again == rm {
		t.Fatalf("reactivation must produce a new actor")
	}
	assertLive(t, again)
}
