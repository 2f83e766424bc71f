package fs

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"sanctuarycore/internal/blob/core"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	info, err := store.Put(ctx, "snapshots/a.json", bytes.NewReader([]byte(`{"x":1}`)), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"animals": "2"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 7 || info.ETag == "" {
		t.Fatalf("info = %+v", info)
	}

	got, rc, err := store.Get(ctx, "snapshots/a.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	payload, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	_ = rc.Close()
	if string(payload) != `{"x":1}` {
		t.Fatalf("payload = %q", payload)
	}
	if got.ContentType != "application/json" || got.Metadata["animals"] != "2" {
		t.Fatalf("metadata lost: %+v", got)
	}
}

func TestPutIsCreateOnly(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	if _, err := store.Put(ctx, "a", bytes.NewReader([]byte("1")), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, "a", bytes.NewReader([]byte("2")), core.PutOptions{}); err == nil {
		t.Fatal("expected create-only rejection")
	}
}

func TestKeySanitization(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	for _, key := range []string{"", "  ", "/abs", "../escape", "a/../../b"} {
		if _, err := store.Put(ctx, key, bytes.NewReader(nil), core.PutOptions{}); err == nil {
			t.Errorf("key %q accepted", key)
		}
	}
}

func TestDeleteRemovesSidecar(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	if _, err := store.Put(ctx, "a", bytes.NewReader([]byte("1")), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}

	deleted, err := store.Delete(ctx, "a")
	if err != nil || !deleted {
		t.Fatalf("delete = %v err=%v", deleted, err)
	}
	if _, err := os.Stat(filepath.Join(store.root, "a"+metaSuffix)); !os.IsNotExist(err) {
		t.Fatal("meta sidecar survived delete")
	}

	deleted, err = store.Delete(ctx, "a")
	if err != nil || deleted {
		t.Fatalf("second delete = %v err=%v", deleted, err)
	}
}

func TestListSkipsSidecarsAndFiltersPrefix(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	for _, key := range []string{"snapshots/b.json", "snapshots/a.json", "other/c.json"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("x")), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}

	infos, err := store.List(ctx, "snapshots/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "snapshots/a.json" || infos[1].Key != "snapshots/b.json" {
		t.Fatalf("infos = %+v", infos)
	}
}

func TestDriver(t *testing.T) {
	if newStore(t).Driver() != core.DriverFilesystem {
		t.Fatal("driver mismatch")
	}
}
