package domain

// KeeperConstraints bounds how many cages a single keeper may hold.
type KeeperConstraints struct {
	MinCages int `json:"min_cages"`
	MaxCages int `json:"max_cages"`
}

// AnimalRules toggles co-housing permissions per dietary role.
type AnimalRules struct {
	PredatorShareable bool `json:"predator_shareable"`
	PreyShareable     bool `json:"prey_shareable"`
}

// DefaultKeeperConstraints returns the stock keeper limits.
func DefaultKeeperConstraints() KeeperConstraints {
	return KeeperConstraints{MinCages: 0, MaxCages: 4}
}

// DefaultAnimalRules returns the stock co-housing permissions: predators
// housed alone, prey shareable up to cage capacity.
func DefaultAnimalRules() AnimalRules {
	return AnimalRules{PredatorShareable: false, PreyShareable: true}
}

// SettingsProvider supplies the tunable constraints consumed by validators
// and rules. The core reads it fresh on every decision and never caches;
// values may change between calls through the provider's own save path.
type SettingsProvider interface {
	KeeperConstraints() KeeperConstraints
	AnimalRules() AnimalRules
}

// StaticSettings is a SettingsProvider with fixed values, handy for tests
// and embedded use.
type StaticSettings struct {
	Keeper KeeperConstraints
	Animal AnimalRules
}

// KeeperConstraints implements SettingsProvider.
func (s StaticSettings) KeeperConstraints() KeeperConstraints { return s.Keeper }

// AnimalRules implements SettingsProvider.
func (s StaticSettings) AnimalRules() AnimalRules { return s.Animal }

// DefaultSettings returns a provider carrying the stock constraint values.
func DefaultSettings() StaticSettings {
	return StaticSettings{Keeper: DefaultKeeperConstraints(), Animal: DefaultAnimalRules()}
}
