package domain

import "context"

// Transaction exposes the registry operations that a persistence
// implementation must support within an atomic scope. Create operations
// assign ids; update operations apply a mutator to a copy and reject id
// reassignment; delete operations remove the record without touching
// cross-references (the service layer cascades those explicitly).
type Transaction interface {
	Snapshot() TransactionView
	CreateAnimal(Animal) (Animal, error)
	UpdateAnimal(id int64, mutator func(*Animal) error) (Animal, error)
	DeleteAnimal(id int64) error
	CreateKeeper(Keeper) (Keeper, error)
	UpdateKeeper(id int64, mutator func(*Keeper) error) (Keeper, error)
	DeleteKeeper(id int64) error
	CreateCage(Cage) (Cage, error)
	UpdateCage(id int64, mutator func(*Cage) error) (Cage, error)
	DeleteCage(id int64) error
	FindAnimal(id int64) (Animal, bool)
	FindKeeper(id int64) (Keeper, bool)
	FindCage(id int64) (Cage, bool)
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView interface {
	RuleView
}

// PersistentStore is a minimal abstraction over registry backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetAnimal(id int64) (Animal, bool)
	ListAnimals() []Animal
	GetKeeper(id int64) (Keeper, bool)
	ListKeepers() []Keeper
	GetCage(id int64) (Cage, bool)
	ListCages() []Cage
}
