package store

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func openTestStore(t *testing.T) Store {
	t.Helper()
	st, err := OpenSQLite(filepath.Join(t.TempDir(), "rooms.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSQLite_MissingRoomIsNotFound(t *testing.T) {
	st := openTestStore(t)

	blob, found, err := st.Load(context.Background(), "NOPE01")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if found || blob != nil {
		t.Fatalf("missing code must report not found, got found=%v blob=%q", found, blob)
	}
}

func TestSQLite_SaveLoadRoundtrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	want := []byte(`{"phase":"lobby","players":[]}`)

	if err := st.Save(ctx, "ROOM01", want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, found, err := st.Load(ctx, "ROOM01")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !found {
		t.Fatalf("saved code must be found")
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("blob mismatch: %q != %q", got, want)
	}
}

func TestSQLite_SaveOverwrites(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if err := st.Save(ctx, "ROOM01", []byte(`{"rev":1}`)); err != nil {
		t.Fatalf("first save: %v", err)
	}
	want := []byte(`{"rev":2}`)
	if err := st.Save(ctx, "ROOM01", want); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, found, err := st.Load(ctx, "ROOM01")
	if err != nil || !found {
		t.Fatalf("load after overwrite: found=%v err=%v", found, err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("overwrite not applied: %q", got)
	}
}

func TestSQLite_CodesAreIsolated(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	st.Save(ctx, "ROOMAA", []byte(`{"a":1}`))
	st.Save(ctx, "ROOMBB", []byte(`{"b":2}`))

	got, found, err := st.Load(ctx, "ROOMAA")
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if !bytes.Equal(got, []byte(`{"a":1}`)) {
		t.Fatalf("cross-code contamination: %q", got)
	}
}

func TestSQLite_EmptyPathRejected(t *testing.T) {
	if _, err := OpenSQLite("", zap.NewNop()); err == nil {
		t.Fatalf("empty path must be rejected")
	}
}
