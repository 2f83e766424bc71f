package core

import (
	"context"
	"time"

	"sanctuarycore/internal/infra/persistence/memory"
	"sanctuarycore/pkg/domain"
)

// Service exposes the allocation and registry operations for the facility.
// It owns the orchestration the validators must not do: resolving ids
// through the registries, materializing entities, invoking validators, and
// mutating both sides of a relationship within a single transaction.
type Service struct {
	store       domain.PersistentStore
	settings    SettingsProvider
	allocation  AllocationValidator
	keeperCages KeeperCageValidator
	logger      Logger
	metrics     MetricsRecorder
	tracer      Tracer
}

// ServiceOption customises a Service at construction time.
type ServiceOption func(*Service)

// WithLogger attaches a structured logger to the service.
func WithLogger(l Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetricsRecorder attaches a metrics recorder to the service.
func WithMetricsRecorder(m MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer attaches a tracer to the service.
func WithTracer(t Tracer) ServiceOption {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// NewService constructs a service backed by the supplied store and settings
// provider.
func NewService(store domain.PersistentStore, settings SettingsProvider, opts ...ServiceOption) *Service {
	if settings == nil {
		settings = domain.DefaultSettings()
	}
	s := &Service{
		store:       store,
		settings:    settings,
		allocation:  NewAllocationValidator(),
		keeperCages: NewKeeperCageValidator(),
		logger:      noopLogger{},
		metrics:     noopMetrics{},
		tracer:      noopTracer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service over a fresh in-memory store wired
// with the default rules engine.
func NewInMemoryService(settings SettingsProvider, opts ...ServiceOption) *Service {
	if settings == nil {
		settings = domain.DefaultSettings()
	}
	store := memory.NewStore(NewDefaultRulesEngine(settings))
	return NewService(store, settings, opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

// run executes fn inside a store transaction with tracing, metrics, and
// logging around it. Errors pass through unchanged.
func (s *Service) run(ctx context.Context, op string, fn func(domain.Transaction) error) (Result, error) {
	ctx, span := s.tracer.Start(ctx, op)
	start := time.Now()
	res, err := s.store.RunInTransaction(ctx, fn)
	s.metrics.Observe(ctx, op, err == nil, time.Since(start))
	span.End(err)
	if err != nil {
		s.logger.Warn("operation rejected", "operation", op, "error", err)
	} else {
		s.logger.Debug("operation committed", "operation", op)
	}
	return res, err
}

// CreateAnimal inserts a new animal record; the registry assigns its id.
func (s *Service) CreateAnimal(ctx context.Context, animal Animal) (Animal, Result, error) {
	var created Animal
	res, err := s.run(ctx, "create_animal", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateAnimal(animal)
		return err
	})
	return created, res, err
}

// UpdateAnimal mutates an animal using the provided mutator.
func (s *Service) UpdateAnimal(ctx context.Context, id int64, mutator func(*Animal) error) (Animal, Result, error) {
	var updated Animal
	res, err := s.run(ctx, "update_animal", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateAnimal(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteAnimal removes an animal record, clearing its cage's occupant
// reference so no stale link survives.
func (s *Service) DeleteAnimal(ctx context.Context, id int64) (Result, error) {
	return s.run(ctx, "delete_animal", func(tx domain.Transaction) error {
		animal, ok := tx.FindAnimal(id)
		if !ok {
			return domain.NotFoundError{Entity: EntityAnimal, ID: id}
		}
		if animal.Allocated() {
			if _, err := tx.UpdateCage(animal.CageID(), func(c *Cage) error {
				c.RemoveOccupant(id)
				return nil
			}); err != nil {
				return err
			}
		}
		return tx.DeleteAnimal(id)
	})
}

// CreateKeeper inserts a new keeper record; the registry assigns its id.
func (s *Service) CreateKeeper(ctx context.Context, keeper Keeper) (Keeper, Result, error) {
	var created Keeper
	res, err := s.run(ctx, "create_keeper", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateKeeper(keeper)
		return err
	})
	return created, res, err
}

// UpdateKeeper mutates a keeper using the provided mutator.
func (s *Service) UpdateKeeper(ctx context.Context, id int64, mutator func(*Keeper) error) (Keeper, Result, error) {
	var updated Keeper
	res, err := s.run(ctx, "update_keeper", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateKeeper(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteKeeper removes a keeper record, unassigning every cage the keeper
// held.
func (s *Service) DeleteKeeper(ctx context.Context, id int64) (Result, error) {
	return s.run(ctx, "delete_keeper", func(tx domain.Transaction) error {
		keeper, ok := tx.FindKeeper(id)
		if !ok {
			return domain.NotFoundError{Entity: EntityKeeper, ID: id}
		}
		for _, cageID := range keeper.CageIDs() {
			if _, err := tx.UpdateCage(cageID, func(c *Cage) error {
				if c.KeeperID() == id {
					c.ClearKeeper()
				}
				return nil
			}); err != nil {
				return err
			}
		}
		return tx.DeleteKeeper(id)
	})
}

// CreateCage inserts a new cage record; the registry assigns its id.
func (s *Service) CreateCage(ctx context.Context, cage Cage) (Cage, Result, error) {
	var created Cage
	res, err := s.run(ctx, "create_cage", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateCage(cage)
		return err
	})
	return created, res, err
}

// UpdateCage mutates a cage using the provided mutator.
func (s *Service) UpdateCage(ctx context.Context, id int64, mutator func(*Cage) error) (Cage, Result, error) {
	var updated Cage
	res, err := s.run(ctx, "update_cage", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateCage(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteCage removes a cage record, clearing the keeper's allocation and
// every occupant's cage reference so no stale link survives.
func (s *Service) DeleteCage(ctx context.Context, id int64) (Result, error) {
	return s.run(ctx, "delete_cage", func(tx domain.Transaction) error {
		cage, ok := tx.FindCage(id)
		if !ok {
			return domain.NotFoundError{Entity: EntityCage, ID: id}
		}
		if keeperID := cage.KeeperID(); keeperID != 0 {
			if _, err := tx.UpdateKeeper(keeperID, func(k *Keeper) error {
				k.RemoveCage(id)
				return nil
			}); err != nil {
				return err
			}
		}
		for _, animalID := range cage.AnimalIDs() {
			if _, err := tx.UpdateAnimal(animalID, func(a *Animal) error {
				if a.CageID() == id {
					a.ClearCage()
				}
				return nil
			}); err != nil {
				return err
			}
		}
		return tx.DeleteCage(id)
	})
}

// AllocateAnimal places an animal into a cage. Existence is checked here;
// the co-housing and capacity decision belongs to the allocation validator.
// Re-allocating an animal to the cage it already occupies succeeds without
// mutation. On any failure nothing is mutated.
func (s *Service) AllocateAnimal(ctx context.Context, animalID, cageID int64) (Result, error) {
	return s.run(ctx, "allocate_animal", func(tx domain.Transaction) error {
		animal, ok := tx.FindAnimal(animalID)
		if !ok {
			return domain.NotFoundError{Entity: EntityAnimal, ID: animalID}
		}
		cage, ok := tx.FindCage(cageID)
		if !ok {
			return domain.NotFoundError{Entity: EntityCage, ID: cageID}
		}
		if animal.CageID() == cageID && cage.HasOccupant(animalID) {
			return nil
		}

		occupants, err := materializeOccupants(tx, cage)
		if err != nil {
			return err
		}
		if err := s.allocation.ValidatePlacement(animal, cage, occupants, s.settings.AnimalRules()); err != nil {
			return err
		}

		if _, err := tx.UpdateAnimal(animalID, func(a *Animal) error {
			return a.AssignCage(cageID)
		}); err != nil {
			return err
		}
		_, err = tx.UpdateCage(cageID, func(c *Cage) error {
			_, err := c.AddOccupant(animalID)
			return err
		})
		return err
	})
}

// DeallocateAnimal removes an animal from its cage, clearing both sides of
// the relationship. Deallocating an unallocated animal fails with
// NotAllocatedError rather than silently succeeding.
func (s *Service) DeallocateAnimal(ctx context.Context, animalID int64) (Result, error) {
	return s.run(ctx, "deallocate_animal", func(tx domain.Transaction) error {
		animal, ok := tx.FindAnimal(animalID)
		if !ok {
			return domain.NotFoundError{Entity: EntityAnimal, ID: animalID}
		}
		if !animal.Allocated() {
			return domain.NotAllocatedError{Entity: EntityAnimal, EntityID: animalID}
		}
		cageID := animal.CageID()
		cage, ok := tx.FindCage(cageID)
		if !ok {
			return domain.NotFoundError{Entity: EntityCage, ID: cageID}
		}
		if !cage.HasOccupant(animalID) {
			return domain.NotAllocatedError{Entity: EntityAnimal, EntityID: animalID, CageID: cageID}
		}

		if _, err := tx.UpdateCage(cageID, func(c *Cage) error {
			c.RemoveOccupant(animalID)
			return nil
		}); err != nil {
			return err
		}
		_, err := tx.UpdateAnimal(animalID, func(a *Animal) error {
			a.ClearCage()
			return nil
		})
		return err
	})
}

// AssignKeeper allocates a cage to a keeper. Assigning a cage the keeper
// already holds succeeds without mutation (idempotent). A cage already
// assigned to another keeper must be unassigned first.
func (s *Service) AssignKeeper(ctx context.Context, keeperID, cageID int64) (Result, error) {
	return s.run(ctx, "assign_keeper", func(tx domain.Transaction) error {
		keeper, ok := tx.FindKeeper(keeperID)
		if !ok {
			return domain.NotFoundError{Entity: EntityKeeper, ID: keeperID}
		}
		cage, ok := tx.FindCage(cageID)
		if !ok {
			return domain.NotFoundError{Entity: EntityCage, ID: cageID}
		}
		if keeper.HasCage(cageID) && cage.KeeperID() == keeperID {
			return nil
		}
		if cage.KeeperID() != 0 && cage.KeeperID() != keeperID {
			return domain.ValidationError{
				Entity:  EntityCage,
				Field:   "keeper_id",
				Kind:    domain.FieldInvalidRange,
				Message: "cage already assigned to another keeper",
			}
		}

		if err := s.keeperCages.ValidateAssignment(keeper, cage, s.settings.KeeperConstraints()); err != nil {
			return err
		}

		if _, err := tx.UpdateKeeper(keeperID, func(k *Keeper) error {
			_, err := k.AllocateCage(cageID)
			return err
		}); err != nil {
			return err
		}
		_, err := tx.UpdateCage(cageID, func(c *Cage) error {
			return c.AssignKeeper(keeperID)
		})
		return err
	})
}

// UnassignKeeper removes a cage from a keeper's set, clearing both sides of
// the relationship. Unassigning a cage the keeper does not hold fails with
// NotAllocatedError.
func (s *Service) UnassignKeeper(ctx context.Context, keeperID, cageID int64) (Result, error) {
	return s.run(ctx, "unassign_keeper", func(tx domain.Transaction) error {
		keeper, ok := tx.FindKeeper(keeperID)
		if !ok {
			return domain.NotFoundError{Entity: EntityKeeper, ID: keeperID}
		}
		if _, ok := tx.FindCage(cageID); !ok {
			return domain.NotFoundError{Entity: EntityCage, ID: cageID}
		}
		if !keeper.HasCage(cageID) {
			return domain.NotAllocatedError{Entity: EntityKeeper, EntityID: keeperID, CageID: cageID}
		}

		if _, err := tx.UpdateKeeper(keeperID, func(k *Keeper) error {
			k.RemoveCage(cageID)
			return nil
		}); err != nil {
			return err
		}
		_, err := tx.UpdateCage(cageID, func(c *Cage) error {
			if c.KeeperID() == keeperID {
				c.ClearKeeper()
			}
			return nil
		})
		return err
	})
}

// materializeOccupants resolves a cage's occupant ids into animal records so
// the validator receives entities, never ids.
func materializeOccupants(tx domain.Transaction, cage Cage) ([]Animal, error) {
	ids := cage.AnimalIDs()
	occupants := make([]Animal, 0, len(ids))
	for _, id := range ids {
		animal, ok := tx.FindAnimal(id)
		if !ok {
			return nil, domain.NotFoundError{Entity: EntityAnimal, ID: id}
		}
		occupants = append(occupants, animal)
	}
	return occupants, nil
}
