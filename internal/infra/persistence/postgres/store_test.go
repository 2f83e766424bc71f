package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"sanctuarycore/internal/infra/persistence/memory"
	"sanctuarycore/pkg/domain"
)

// stubDB emulates the thin slice of Postgres the store touches: the state
// table with bucket/payload rows. It lets the load and persist paths run
// without a server.
type stubDB struct {
	mu      sync.Mutex
	buckets map[string][]byte
	execs   []string
}

func newStubDB() *stubDB {
	return &stubDB{buckets: map[string][]byte{}}
}

func (s *stubDB) open() *sql.DB { return sql.OpenDB(stubConnector{db: s}) }

type stubConnector struct{ db *stubDB }

func (c stubConnector) Connect(context.Context) (driver.Conn, error) { return stubConn{db: c.db}, nil }
func (c stubConnector) Driver() driver.Driver                        { return stubDriver{db: c.db} }

type stubDriver struct{ db *stubDB }

func (d stubDriver) Open(string) (driver.Conn, error) { return stubConn{db: d.db}, nil }

type stubConn struct{ db *stubDB }

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("prepare unsupported") }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

func (c stubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return stubTx{}, nil
}

func (stubConn) Ping(context.Context) error { return nil }

func (c stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	c.db.execs = append(c.db.execs, query)
	if strings.HasPrefix(strings.TrimSpace(query), "INSERT INTO state") {
		bucket, _ := args[0].Value.(string)
		payload, _ := args[1].Value.([]byte)
		c.db.buckets[bucket] = append([]byte(nil), payload...)
	}
	return driver.RowsAffected(1), nil
}

func (c stubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	if !strings.Contains(query, "FROM state") {
		return nil, errors.New("unexpected query: " + query)
	}
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	rows := &stubRows{}
	for bucket, payload := range c.db.buckets {
		rows.data = append(rows.data, [2]any{bucket, append([]byte(nil), payload...)})
	}
	return rows, nil
}

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

type stubRows struct {
	data [][2]any
	pos  int
}

func (*stubRows) Columns() []string { return []string{"bucket", "payload"} }
func (*stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.data) {
		return io.EOF
	}
	dest[0] = r.data[r.pos][0]
	dest[1] = r.data[r.pos][1]
	r.pos++
	return nil
}

func openStubStore(t *testing.T, db *stubDB) *Store {
	t.Helper()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db.open(), nil })
	t.Cleanup(restore)
	store, err := NewStore("", nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestNewStoreEnsuresStateTableAndLoadsSnapshot(t *testing.T) {
	db := newStubDB()

	// Seed a snapshot the way a previous process would have persisted it.
	animal, _ := domain.NewAnimal("thimble", "rabbit", domain.RolePrey)
	if err := animal.BindID(3); err != nil {
		t.Fatalf("bind: %v", err)
	}
	animals, err := json.Marshal(map[int64]domain.Animal{3: animal})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	sequences, err := json.Marshal(memory.Sequences{Animal: 3})
	if err != nil {
		t.Fatalf("marshal sequences: %v", err)
	}
	db.buckets["animals"] = animals
	db.buckets["sequences"] = sequences

	store := openStubStore(t, db)
	got, ok := store.GetAnimal(3)
	if !ok || got.Name() != "thimble" {
		t.Fatalf("animal not hydrated: %+v ok=%v", got, ok)
	}

	var sawCreate bool
	for _, stmt := range db.execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE IF NOT EXISTS STATE") {
			sawCreate = true
		}
	}
	if !sawCreate {
		t.Fatalf("state table DDL missing from execs: %v", db.execs)
	}
}

func TestRunInTransactionPersistsAllBuckets(t *testing.T) {
	db := newStubDB()
	store := openStubStore(t, db)

	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		animal, _ := domain.NewAnimal("thimble", "rabbit", domain.RolePrey)
		_, err := tx.CreateAnimal(animal)
		return err
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	for _, bucket := range postgresBuckets {
		if _, ok := db.buckets[bucket]; !ok {
			t.Errorf("bucket %s not persisted", bucket)
		}
	}
	var hydrated map[int64]domain.Animal
	if err := json.Unmarshal(db.buckets["animals"], &hydrated); err != nil {
		t.Fatalf("decode persisted animals: %v", err)
	}
	if len(hydrated) != 1 {
		t.Fatalf("persisted animals = %d, want 1", len(hydrated))
	}
}

func TestFailedTransactionDoesNotPersist(t *testing.T) {
	db := newStubDB()
	store := openStubStore(t, db)
	boom := errors.New("boom")

	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		animal, _ := domain.NewAnimal("doomed", "rabbit", domain.RolePrey)
		if _, err := tx.CreateAnimal(animal); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if _, ok := db.buckets["animals"]; ok {
		t.Fatal("failed transaction persisted state")
	}
}

func TestNewStorePropagatesOpenError(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return nil, errors.New("refused")
	})
	defer restore()
	if _, err := NewStore("postgres://example/db", nil); err == nil {
		t.Fatal("expected open error")
	}
}
