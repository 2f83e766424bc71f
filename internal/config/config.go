// Package config loads the tunable facility constraints from the environment
// and, optionally, a JSON settings file, and exposes them to the core through
// a mutable provider.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/caarlos0/env/v11"

	"sanctuarycore/pkg/domain"
)

// Settings carries every tunable constraint. Environment variables override
// the defaults; a settings file, when configured, overrides the environment.
type Settings struct {
	KeeperMinCages    int  `env:"SANCTUARYCORE_KEEPER_MIN_CAGES" envDefault:"0" json:"keeper_min_cages"`
	KeeperMaxCages    int  `env:"SANCTUARYCORE_KEEPER_MAX_CAGES" envDefault:"4" json:"keeper_max_cages"`
	PredatorShareable bool `env:"SANCTUARYCORE_PREDATOR_SHAREABLE" envDefault:"false" json:"predator_shareable"`
	PreyShareable     bool `env:"SANCTUARYCORE_PREY_SHAREABLE" envDefault:"true" json:"prey_shareable"`
}

// Validate rejects constraint combinations the core cannot honor.
func (s Settings) Validate() error {
	if s.KeeperMinCages < 0 {
		return fmt.Errorf("keeper min cages must not be negative, got %d", s.KeeperMinCages)
	}
	if s.KeeperMaxCages < 1 {
		return fmt.Errorf("keeper max cages must be positive, got %d", s.KeeperMaxCages)
	}
	if s.KeeperMinCages > s.KeeperMaxCages {
		return fmt.Errorf("keeper min cages %d exceeds max cages %d", s.KeeperMinCages, s.KeeperMaxCages)
	}
	return nil
}

// KeeperConstraints converts the settings to the domain constraint type.
func (s Settings) KeeperConstraints() domain.KeeperConstraints {
	return domain.KeeperConstraints{MinCages: s.KeeperMinCages, MaxCages: s.KeeperMaxCages}
}

// AnimalRules converts the settings to the domain co-housing type.
func (s Settings) AnimalRules() domain.AnimalRules {
	return domain.AnimalRules{PredatorShareable: s.PredatorShareable, PreyShareable: s.PreyShareable}
}

// Load reads settings from the environment and validates them.
func Load() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadFile reads settings from the environment, then layers the JSON file at
// path on top when it exists. A missing file is not an error.
func LoadFile(path string) (Settings, error) {
	s, err := Load()
	if err != nil {
		return Settings{}, err
	}
	raw, err := os.ReadFile(path) // #nosec G304 -- operator-chosen settings path
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return Settings{}, fmt.Errorf("read settings file: %w", err)
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return Settings{}, fmt.Errorf("decode settings file: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Provider is a mutable, concurrency-safe domain.SettingsProvider. Updates
// take effect for every subsequent constraint decision.
type Provider struct {
	mu       sync.RWMutex
	settings Settings
	savePath string
}

var _ domain.SettingsProvider = (*Provider)(nil)

// NewProvider wraps the given settings. savePath may be empty to disable
// persistence.
func NewProvider(settings Settings, savePath string) *Provider {
	return &Provider{settings: settings, savePath: savePath}
}

// Current returns a copy of the active settings.
func (p *Provider) Current() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings
}

// KeeperConstraints implements domain.SettingsProvider.
func (p *Provider) KeeperConstraints() domain.KeeperConstraints {
	return p.Current().KeeperConstraints()
}

// AnimalRules implements domain.SettingsProvider.
func (p *Provider) AnimalRules() domain.AnimalRules {
	return p.Current().AnimalRules()
}

// Update validates and swaps in new settings, writing them to the save path
// when one is configured.
func (p *Provider) Update(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settings = settings
	if p.savePath == "" {
		return nil
	}
	raw, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(p.savePath, raw, 0o600); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}
