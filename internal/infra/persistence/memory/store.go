// Package memory provides the in-memory registry store used for tests,
// ephemeral sessions, and as the transactional engine behind the durable
// backends.
package memory

import (
	"context"
	"fmt"
	"sync"

	"sanctuarycore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Animal aliases domain.Animal for in-memory registry operations.
	Animal = domain.Animal
	// Keeper aliases domain.Keeper.
	Keeper = domain.Keeper
	// Cage aliases domain.Cage.
	Cage = domain.Cage
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

type state struct {
	animals map[int64]Animal
	keepers map[int64]Keeper
	cages   map[int64]Cage
	// id sequences advance on insert and never rewind, so removed ids are
	// not recycled within a store lifetime.
	nextAnimalID int64
	nextKeeperID int64
	nextCageID   int64
}

func newState() state {
	return state{
		animals: make(map[int64]Animal),
		keepers: make(map[int64]Keeper),
		cages:   make(map[int64]Cage),
	}
}

func (s state) clone() state {
	cloned := newState()
	cloned.nextAnimalID = s.nextAnimalID
	cloned.nextKeeperID = s.nextKeeperID
	cloned.nextCageID = s.nextCageID
	for k, v := range s.animals {
		cloned.animals[k] = v.Clone()
	}
	for k, v := range s.keepers {
		cloned.keepers[k] = v.Clone()
	}
	for k, v := range s.cages {
		cloned.cages[k] = v.Clone()
	}
	return cloned
}

// Sequences records the id counters so snapshots restore without recycling ids.
type Sequences struct {
	Animal int64 `json:"animal"`
	Keeper int64 `json:"keeper"`
	Cage   int64 `json:"cage"`
}

// Snapshot captures a point-in-time clone of the registry state.
type Snapshot struct {
	Animals   map[int64]Animal `json:"animals"`
	Keepers   map[int64]Keeper `json:"keepers"`
	Cages     map[int64]Cage   `json:"cages"`
	Sequences Sequences        `json:"sequences"`
}

func snapshotFromState(s state) Snapshot {
	snap := Snapshot{
		Animals:   make(map[int64]Animal, len(s.animals)),
		Keepers:   make(map[int64]Keeper, len(s.keepers)),
		Cages:     make(map[int64]Cage, len(s.cages)),
		Sequences: Sequences{Animal: s.nextAnimalID, Keeper: s.nextKeeperID, Cage: s.nextCageID},
	}
	for k, v := range s.animals {
		snap.Animals[k] = v.Clone()
	}
	for k, v := range s.keepers {
		snap.Keepers[k] = v.Clone()
	}
	for k, v := range s.cages {
		snap.Cages[k] = v.Clone()
	}
	return snap
}

func stateFromSnapshot(snap Snapshot) state {
	st := newState()
	st.nextAnimalID = snap.Sequences.Animal
	st.nextKeeperID = snap.Sequences.Keeper
	st.nextCageID = snap.Sequences.Cage
	for k, v := range snap.Animals {
		st.animals[k] = v.Clone()
		if k > st.nextAnimalID {
			st.nextAnimalID = k
		}
	}
	for k, v := range snap.Keepers {
		st.keepers[k] = v.Clone()
		if k > st.nextKeeperID {
			st.nextKeeperID = k
		}
	}
	for k, v := range snap.Cages {
		st.cages[k] = v.Clone()
		if k > st.nextCageID {
			st.nextCageID = k
		}
	}
	return st
}

// Store provides an in-memory transactional registry store for the core domain.
type Store struct {
	mu     sync.RWMutex
	state  state
	engine *RulesEngine
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{state: newState(), engine: engine}
}

// transaction applies mutations to a cloned state so a failed callback or a
// blocking rule violation leaves the committed state untouched.
type transaction struct {
	state   state
	changes []Change
}

var _ Transaction = (*transaction)(nil)

type view struct {
	state *state
}

var _ TransactionView = view{}

// ListAnimals returns all animals within the snapshot.
func (v view) ListAnimals() []Animal {
	out := make([]Animal, 0, len(v.state.animals))
	for _, a := range v.state.animals {
		out = append(out, a.Clone())
	}
	return out
}

// ListKeepers returns all keepers within the snapshot.
func (v view) ListKeepers() []Keeper {
	out := make([]Keeper, 0, len(v.state.keepers))
	for _, k := range v.state.keepers {
		out = append(out, k.Clone())
	}
	return out
}

// ListCages returns all cages within the snapshot.
func (v view) ListCages() []Cage {
	out := make([]Cage, 0, len(v.state.cages))
	for _, c := range v.state.cages {
		out = append(out, c.Clone())
	}
	return out
}

// FindAnimal retrieves an animal by id from the snapshot.
func (v view) FindAnimal(id int64) (Animal, bool) {
	a, ok := v.state.animals[id]
	if !ok {
		return Animal{}, false
	}
	return a.Clone(), true
}

// FindKeeper retrieves a keeper by id from the snapshot.
func (v view) FindKeeper(id int64) (Keeper, bool) {
	k, ok := v.state.keepers[id]
	if !ok {
		return Keeper{}, false
	}
	return k.Clone(), true
}

// FindCage retrieves a cage by id from the snapshot.
func (v view) FindCage(id int64) (Cage, bool) {
	c, ok := v.state.cages[id]
	if !ok {
		return Cage{}, false
	}
	return c.Clone(), true
}

// RunInTransaction executes fn within a transactional copy of the store
// state. The rules engine evaluates the candidate state before commit; any
// blocking violation aborts with domain.RuleViolationError and zero mutation.
func (s *Store) RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{state: s.state.clone()}
	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, view{state: &tx.state}, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(view{state: &snapshot})
}

// ExportState returns a deep copy of the committed registry state.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromState(s.state)
}

// ImportState replaces the committed registry state with the snapshot.
func (s *Store) ImportState(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateFromSnapshot(snap)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return view{state: &tx.state}
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// CreateAnimal inserts a new animal, assigning the next id in sequence. The
// incoming record must be unbound; ids are never self-assigned.
func (tx *transaction) CreateAnimal(a Animal) (Animal, error) {
	if a.ID() != 0 {
		return Animal{}, fmt.Errorf("animal id %d already bound; registry assigns ids", a.ID())
	}
	tx.state.nextAnimalID++
	if err := a.BindID(tx.state.nextAnimalID); err != nil {
		return Animal{}, err
	}
	tx.state.animals[a.ID()] = a.Clone()
	tx.recordChange(Change{Entity: domain.EntityAnimal, Action: domain.ActionCreate, After: a.Clone()})
	return a.Clone(), nil
}

// UpdateAnimal mutates an animal using the provided mutator function.
func (tx *transaction) UpdateAnimal(id int64, mutator func(*Animal) error) (Animal, error) {
	current, ok := tx.state.animals[id]
	if !ok {
		return Animal{}, domain.NotFoundError{Entity: domain.EntityAnimal, ID: id}
	}
	before := current.Clone()
	updated := current.Clone()
	if err := mutator(&updated); err != nil {
		return Animal{}, err
	}
	if updated.ID() != id {
		return Animal{}, fmt.Errorf("animal id must not be reassigned")
	}
	tx.state.animals[id] = updated.Clone()
	tx.recordChange(Change{Entity: domain.EntityAnimal, Action: domain.ActionUpdate, Before: before, After: updated.Clone()})
	return updated.Clone(), nil
}

// DeleteAnimal removes an animal from the transaction state.
func (tx *transaction) DeleteAnimal(id int64) error {
	current, ok := tx.state.animals[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityAnimal, ID: id}
	}
	delete(tx.state.animals, id)
	tx.recordChange(Change{Entity: domain.EntityAnimal, Action: domain.ActionDelete, Before: current.Clone()})
	return nil
}

// CreateKeeper inserts a new keeper, assigning the next id in sequence.
func (tx *transaction) CreateKeeper(k Keeper) (Keeper, error) {
	if k.ID() != 0 {
		return Keeper{}, fmt.Errorf("keeper id %d already bound; registry assigns ids", k.ID())
	}
	tx.state.nextKeeperID++
	if err := k.BindID(tx.state.nextKeeperID); err != nil {
		return Keeper{}, err
	}
	tx.state.keepers[k.ID()] = k.Clone()
	tx.recordChange(Change{Entity: domain.EntityKeeper, Action: domain.ActionCreate, After: k.Clone()})
	return k.Clone(), nil
}

// UpdateKeeper mutates a keeper using the provided mutator function.
func (tx *transaction) UpdateKeeper(id int64, mutator func(*Keeper) error) (Keeper, error) {
	current, ok := tx.state.keepers[id]
	if !ok {
		return Keeper{}, domain.NotFoundError{Entity: domain.EntityKeeper, ID: id}
	}
	before := current.Clone()
	updated := current.Clone()
	if err := mutator(&updated); err != nil {
		return Keeper{}, err
	}
	if updated.ID() != id {
		return Keeper{}, fmt.Errorf("keeper id must not be reassigned")
	}
	tx.state.keepers[id] = updated.Clone()
	tx.recordChange(Change{Entity: domain.EntityKeeper, Action: domain.ActionUpdate, Before: before, After: updated.Clone()})
	return updated.Clone(), nil
}

// DeleteKeeper removes a keeper from the transaction state.
func (tx *transaction) DeleteKeeper(id int64) error {
	current, ok := tx.state.keepers[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityKeeper, ID: id}
	}
	delete(tx.state.keepers, id)
	tx.recordChange(Change{Entity: domain.EntityKeeper, Action: domain.ActionDelete, Before: current.Clone()})
	return nil
}

// CreateCage inserts a new cage, assigning the next id in sequence.
func (tx *transaction) CreateCage(c Cage) (Cage, error) {
	if c.ID() != 0 {
		return Cage{}, fmt.Errorf("cage id %d already bound; registry assigns ids", c.ID())
	}
	if c.Capacity() <= 0 {
		return Cage{}, domain.ValidationError{Entity: domain.EntityCage, Field: "capacity", Kind: domain.FieldInvalidRange, Message: "must be positive"}
	}
	tx.state.nextCageID++
	if err := c.BindID(tx.state.nextCageID); err != nil {
		return Cage{}, err
	}
	tx.state.cages[c.ID()] = c.Clone()
	tx.recordChange(Change{Entity: domain.EntityCage, Action: domain.ActionCreate, After: c.Clone()})
	return c.Clone(), nil
}

// UpdateCage mutates a cage using the provided mutator function.
func (tx *transaction) UpdateCage(id int64, mutator func(*Cage) error) (Cage, error) {
	current, ok := tx.state.cages[id]
	if !ok {
		return Cage{}, domain.NotFoundError{Entity: domain.EntityCage, ID: id}
	}
	before := current.Clone()
	updated := current.Clone()
	if err := mutator(&updated); err != nil {
		return Cage{}, err
	}
	if updated.ID() != id {
		return Cage{}, fmt.Errorf("cage id must not be reassigned")
	}
	tx.state.cages[id] = updated.Clone()
	tx.recordChange(Change{Entity: domain.EntityCage, Action: domain.ActionUpdate, Before: before, After: updated.Clone()})
	return updated.Clone(), nil
}

// DeleteCage removes a cage from the transaction state.
func (tx *transaction) DeleteCage(id int64) error {
	current, ok := tx.state.cages[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityCage, ID: id}
	}
	delete(tx.state.cages, id)
	tx.recordChange(Change{Entity: domain.EntityCage, Action: domain.ActionDelete, Before: current.Clone()})
	return nil
}

// FindAnimal retrieves an animal by id from the transactional state.
func (tx *transaction) FindAnimal(id int64) (Animal, bool) {
	a, ok := tx.state.animals[id]
	if !ok {
		return Animal{}, false
	}
	return a.Clone(), true
}

// FindKeeper retrieves a keeper by id from the transactional state.
func (tx *transaction) FindKeeper(id int64) (Keeper, bool) {
	k, ok := tx.state.keepers[id]
	if !ok {
		return Keeper{}, false
	}
	return k.Clone(), true
}

// FindCage retrieves a cage by id from the transactional state.
func (tx *transaction) FindCage(id int64) (Cage, bool) {
	c, ok := tx.state.cages[id]
	if !ok {
		return Cage{}, false
	}
	return c.Clone(), true
}

// Read helpers ---------------------------------------------------------------

// GetAnimal retrieves an animal by id from committed state.
func (s *Store) GetAnimal(id int64) (Animal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.state.animals[id]
	if !ok {
		return Animal{}, false
	}
	return a.Clone(), true
}

// ListAnimals returns all animals from committed state.
func (s *Store) ListAnimals() []Animal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Animal, 0, len(s.state.animals))
	for _, a := range s.state.animals {
		out = append(out, a.Clone())
	}
	return out
}

// GetKeeper retrieves a keeper by id from committed state.
func (s *Store) GetKeeper(id int64) (Keeper, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.state.keepers[id]
	if !ok {
		return Keeper{}, false
	}
	return k.Clone(), true
}

// ListKeepers returns all keepers from committed state.
func (s *Store) ListKeepers() []Keeper {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Keeper, 0, len(s.state.keepers))
	for _, k := range s.state.keepers {
		out = append(out, k.Clone())
	}
	return out
}

// GetCage retrieves a cage by id from committed state.
func (s *Store) GetCage(id int64) (Cage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.cages[id]
	if !ok {
		return Cage{}, false
	}
	return c.Clone(), true
}

// ListCages returns all cages from committed state.
func (s *Store) ListCages() []Cage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Cage, 0, len(s.state.cages))
	for _, c := range s.state.cages {
		out = append(out, c.Clone())
	}
	return out
}
