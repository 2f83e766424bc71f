package core

import (
	"context"
	"fmt"

	"sanctuarycore/pkg/domain"
)

// NewPredatorIsolationRule returns the commit-time rule enforcing co-housing
// restrictions: predators and prey never share, and same-role sharing is
// gated on the configured shareability flags.
func NewPredatorIsolationRule(settings SettingsProvider) domain.Rule {
	return predatorIsolationRule{settings: settings}
}

type predatorIsolationRule struct {
	settings SettingsProvider
}

func (predatorIsolationRule) Name() string { return "predator_isolation" }

func (r predatorIsolationRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	rules := r.settings.AnimalRules()

	occupants := make(map[int64][]domain.Animal)
	for _, animal := range view.ListAnimals() {
		if !animal.Allocated() {
			continue
		}
		occupants[animal.CageID()] = append(occupants[animal.CageID()], animal)
	}

	res := domain.Result{}
	for cageID, housed := range occupants {
		if len(housed) < 2 {
			continue
		}
		switch domain.ClassifyOccupants(housed) {
		case domain.OccupancyMixed:
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "predator_isolation",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("cage %d houses predators together with prey", cageID),
				Entity:   domain.EntityCage,
				EntityID: cageID,
			})
		case domain.OccupancyPredator:
			if !rules.PredatorShareable {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "predator_isolation",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("cage %d houses %d predators but predators are not shareable", cageID, len(housed)),
					Entity:   domain.EntityCage,
					EntityID: cageID,
				})
			}
		case domain.OccupancyPrey:
			if !rules.PreyShareable {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "predator_isolation",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("cage %d houses %d prey but prey are not shareable", cageID, len(housed)),
					Entity:   domain.EntityCage,
					EntityID: cageID,
				})
			}
		}
	}
	return res, nil
}
