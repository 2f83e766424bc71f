package core

import (
	"context"
	"fmt"

	"sanctuarycore/pkg/domain"
)

// NewKeeperQuotaRule returns the commit-time rule enforcing the per-keeper
// cage count limit supplied by configuration.
func NewKeeperQuotaRule(settings SettingsProvider) domain.Rule {
	return keeperQuotaRule{settings: settings}
}

type keeperQuotaRule struct {
	settings SettingsProvider
}

func (keeperQuotaRule) Name() string { return "keeper_cage_quota" }

func (r keeperQuotaRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	constraints := r.settings.KeeperConstraints()

	res := domain.Result{}
	for _, keeper := range view.ListKeepers() {
		if count := keeper.CageCount(); count > constraints.MaxCages {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "keeper_cage_quota",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("keeper %d holds %d cages, above the limit of %d", keeper.ID(), count, constraints.MaxCages),
				Entity:   domain.EntityKeeper,
				EntityID: keeper.ID(),
			})
		}
	}
	return res, nil
}
