package core

import (
	"context"
	"fmt"

	"sanctuarycore/pkg/domain"
)

// NewReferenceIntegrityRule returns the commit-time rule checking that every
// cross-reference between animals, keepers, and cages resolves and that both
// sides of each relationship agree. It catches partial mutations that would
// otherwise leave stale links behind.
func NewReferenceIntegrityRule() domain.Rule {
	return referenceIntegrityRule{}
}

type referenceIntegrityRule struct{}

func (referenceIntegrityRule) Name() string { return "reference_integrity" }

func (referenceIntegrityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	block := func(entity domain.EntityType, id int64, format string, args ...any) {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "reference_integrity",
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf(format, args...),
			Entity:   entity,
			EntityID: id,
		})
	}

	for _, animal := range view.ListAnimals() {
		if !animal.Allocated() {
			continue
		}
		cage, ok := view.FindCage(animal.CageID())
		if !ok {
			block(domain.EntityAnimal, animal.ID(), "animal %d references missing cage %d", animal.ID(), animal.CageID())
			continue
		}
		if !cage.HasOccupant(animal.ID()) {
			block(domain.EntityAnimal, animal.ID(), "animal %d references cage %d but is not among its occupants", animal.ID(), cage.ID())
		}
	}

	for _, cage := range view.ListCages() {
		for _, animalID := range cage.AnimalIDs() {
			animal, ok := view.FindAnimal(animalID)
			if !ok {
				block(domain.EntityCage, cage.ID(), "cage %d lists missing animal %d", cage.ID(), animalID)
				continue
			}
			if animal.CageID() != cage.ID() {
				block(domain.EntityCage, cage.ID(), "cage %d lists animal %d housed elsewhere", cage.ID(), animalID)
			}
		}
		if keeperID := cage.KeeperID(); keeperID != 0 {
			keeper, ok := view.FindKeeper(keeperID)
			if !ok {
				block(domain.EntityCage, cage.ID(), "cage %d references missing keeper %d", cage.ID(), keeperID)
			} else if !keeper.HasCage(cage.ID()) {
				block(domain.EntityCage, cage.ID(), "cage %d references keeper %d who does not hold it", cage.ID(), keeperID)
			}
		}
	}

	for _, keeper := range view.ListKeepers() {
		for _, cageID := range keeper.CageIDs() {
			cage, ok := view.FindCage(cageID)
			if !ok {
				block(domain.EntityKeeper, keeper.ID(), "keeper %d holds missing cage %d", keeper.ID(), cageID)
				continue
			}
			if cage.KeeperID() != keeper.ID() {
				block(domain.EntityKeeper, keeper.ID(), "keeper %d holds cage %d assigned to another keeper", keeper.ID(), cageID)
			}
		}
	}

	return res, nil
}
