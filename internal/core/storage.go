package core

import (
	"fmt"
	"os"

	"sanctuarycore/internal/infra/persistence/memory"
	"sanctuarycore/internal/infra/persistence/postgres"
	"sanctuarycore/internal/infra/persistence/sqlite"
	"sanctuarycore/pkg/domain"
)

// StorageDriver identifies a concrete registry storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (default: the system is in-memory by intent)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite snapshot file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL snapshot table
)

// OpenPersistentStore selects a backend using environment variables.
// Defaults to memory when unset.
//
//	SANCTUARYCORE_STORAGE_DRIVER: memory|sqlite|postgres (default memory)
//	SANCTUARYCORE_SQLITE_PATH: path to sqlite file (default ./sanctuarycore.db)
//	SANCTUARYCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenPersistentStore(engine *RulesEngine) (domain.PersistentStore, error) {
	driver := os.Getenv("SANCTUARYCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageMemory)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(engine), nil
	case StorageSQLite:
		path := os.Getenv("SANCTUARYCORE_SQLITE_PATH")
		return sqlite.NewStore(path, engine)
	case StoragePostgres:
		dsn := os.Getenv("SANCTUARYCORE_POSTGRES_DSN")
		return postgres.NewStore(dsn, engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
