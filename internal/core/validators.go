package core

import "sanctuarycore/pkg/domain"

// Validators decide whether an allocation is permissible. They are stateless
// rule engines over fully materialized entities and configuration values:
// they never resolve ids and never touch a registry. Existence checks belong
// to the service layer.

// AllocationValidator decides whether an animal may be placed in a cage.
type AllocationValidator struct{}

// NewAllocationValidator returns the animal-to-cage placement validator.
func NewAllocationValidator() AllocationValidator { return AllocationValidator{} }

// ValidatePlacement checks the co-housing and capacity rules for placing the
// animal into the cage. The occupants slice holds the cage's current animals,
// excluding the candidate. Compatibility is examined before capacity: a
// co-housing rejection names a design rule, while a full cage is transient.
func (AllocationValidator) ValidatePlacement(animal domain.Animal, cage domain.Cage, occupants []domain.Animal, rules domain.AnimalRules) error {
	occupancy := domain.ClassifyOccupants(occupants)

	switch animal.Role() {
	case domain.RolePredator:
		// A predator shares only with other predators, and only when the
		// configuration allows predators to share at all.
		if occupancy == domain.OccupancyPrey || occupancy == domain.OccupancyMixed {
			return domain.IncompatibleOccupantsError{CageID: cage.ID(), AnimalID: animal.ID(), Role: animal.Role(), Occupancy: occupancy}
		}
		if occupancy == domain.OccupancyPredator && !rules.PredatorShareable {
			return domain.IncompatibleOccupantsError{CageID: cage.ID(), AnimalID: animal.ID(), Role: animal.Role(), Occupancy: occupancy}
		}
	case domain.RolePrey:
		if occupancy == domain.OccupancyPredator || occupancy == domain.OccupancyMixed {
			return domain.IncompatibleOccupantsError{CageID: cage.ID(), AnimalID: animal.ID(), Role: animal.Role(), Occupancy: occupancy}
		}
		if occupancy == domain.OccupancyPrey && !rules.PreyShareable {
			return domain.IncompatibleOccupantsError{CageID: cage.ID(), AnimalID: animal.ID(), Role: animal.Role(), Occupancy: occupancy}
		}
	}

	if len(occupants) >= cage.Capacity() {
		return domain.CapacityExceededError{CageID: cage.ID(), Capacity: cage.Capacity(), Occupants: len(occupants)}
	}
	return nil
}

// KeeperCageValidator decides whether a keeper may be assigned a cage.
type KeeperCageValidator struct{}

// NewKeeperCageValidator returns the keeper-to-cage assignment validator.
func NewKeeperCageValidator() KeeperCageValidator { return KeeperCageValidator{} }

// ValidateAssignment checks the per-keeper cage quota. Re-assigning a cage
// the keeper already holds passes: duplicate assignment is an idempotent
// success, never a hard failure.
func (KeeperCageValidator) ValidateAssignment(keeper domain.Keeper, cage domain.Cage, constraints domain.KeeperConstraints) error {
	if keeper.HasCage(cage.ID()) {
		return nil
	}
	if !keeper.CanAcceptMoreCages(constraints.MaxCages) {
		return domain.MaxCagesExceededError{KeeperID: keeper.ID(), MaxCages: constraints.MaxCages, Allocated: keeper.CageCount()}
	}
	return nil
}
