package core

import "sanctuarycore/pkg/domain"

// defaultRules returns the built-in commit-time policy set. The settings
// provider is consulted at evaluation time, never cached, so runtime
// configuration changes take effect on the next transaction.
func defaultRules(settings SettingsProvider) []domain.Rule {
	return []domain.Rule{
		NewCageCapacityRule(),
		NewPredatorIsolationRule(settings),
		NewKeeperQuotaRule(settings),
		NewReferenceIntegrityRule(),
	}
}

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine(settings SettingsProvider) *RulesEngine {
	engine := domain.NewRulesEngine()
	for _, rule := range defaultRules(settings) {
		engine.Register(rule)
	}
	return engine
}
