package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"sanctuarycore/internal/blob"
	"sanctuarycore/internal/infra/persistence/memory"
)

// StateSnapshotter is implemented by stores that can export and import their
// full registry state. All bundled backends satisfy it through the in-memory
// store they embed.
type StateSnapshotter interface {
	ExportState() memory.Snapshot
	ImportState(memory.Snapshot)
}

// SnapshotArchiver writes point-in-time registry snapshots to a blob store
// and restores them on demand.
type SnapshotArchiver struct {
	store  blob.Store
	source StateSnapshotter
	prefix string
	now    func() time.Time
}

// NewSnapshotArchiver binds an archiver to a snapshot source and blob backend.
func NewSnapshotArchiver(source StateSnapshotter, store blob.Store) *SnapshotArchiver {
	return &SnapshotArchiver{store: store, source: source, prefix: "snapshots/", now: time.Now}
}

const snapshotContentType = "application/json"

func (a *SnapshotArchiver) key(t time.Time) string {
	return a.prefix + t.UTC().Format("20060102T150405Z") + ".json"
}

// Export serializes the current registry state and stores it under a
// timestamped key, returning the stored blob metadata.
func (a *SnapshotArchiver) Export(ctx context.Context) (blob.Info, error) {
	snapshot := a.source.ExportState()
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return blob.Info{}, fmt.Errorf("encode snapshot: %w", err)
	}
	info, err := a.store.Put(ctx, a.key(a.now()), bytes.NewReader(payload), blob.PutOptions{
		ContentType: snapshotContentType,
		Metadata: map[string]string{
			"animals": fmt.Sprintf("%d", len(snapshot.Animals)),
			"keepers": fmt.Sprintf("%d", len(snapshot.Keepers)),
			"cages":   fmt.Sprintf("%d", len(snapshot.Cages)),
		},
	})
	if err != nil {
		return blob.Info{}, fmt.Errorf("store snapshot: %w", err)
	}
	return info, nil
}

// List returns metadata for all archived snapshots in key (timestamp) order.
func (a *SnapshotArchiver) List(ctx context.Context) ([]blob.Info, error) {
	return a.store.List(ctx, a.prefix)
}

// Restore replaces the registry state with the archived snapshot stored under
// key.
func (a *SnapshotArchiver) Restore(ctx context.Context, key string) error {
	_, rc, err := a.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("fetch snapshot: %w", err)
	}
	defer func() { _ = rc.Close() }()
	payload, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	var snapshot memory.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	a.source.ImportState(snapshot)
	if syncer, ok := a.source.(interface{ Sync() error }); ok {
		if err := syncer.Sync(); err != nil {
			return fmt.Errorf("persist restored state: %w", err)
		}
	}
	return nil
}
