package core

import (
	"context"
	"fmt"

	"sanctuarycore/pkg/domain"
)

// NewCageCapacityRule returns the commit-time rule enforcing cage capacity
// limits across the whole candidate state.
func NewCageCapacityRule() domain.Rule {
	return cageCapacityRule{}
}

type cageCapacityRule struct{}

func (cageCapacityRule) Name() string { return "cage_capacity" }

func (cageCapacityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, cage := range view.ListCages() {
		if count := cage.OccupantCount(); count > cage.Capacity() {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "cage_capacity",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("cage %d over capacity: %d/%d occupants", cage.ID(), count, cage.Capacity()),
				Entity:   domain.EntityCage,
				EntityID: cage.ID(),
			})
		}
	}
	return res, nil
}
