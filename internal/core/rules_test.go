package core

import (
	"context"
	"errors"
	"testing"

	"sanctuarycore/internal/infra/persistence/memory"
	"sanctuarycore/pkg/domain"
)

// The commit rules are the backstop behind the service validators: even a
// transaction that bypasses the service cannot commit a state violating the
// facility policies.

func ruleStore(settings SettingsProvider) *memory.Store {
	if settings == nil {
		settings = domain.DefaultSettings()
	}
	return memory.NewStore(NewDefaultRulesEngine(settings))
}

func ruleName(err error) string {
	var rverr domain.RuleViolationError
	if !errors.As(err, &rverr) || len(rverr.Result.Violations) == 0 {
		return ""
	}
	return rverr.Result.Violations[0].Rule
}

func TestCageCapacityRuleBlocksOverfilledCage(t *testing.T) {
	store := ruleStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		cage, _ := domain.NewCage(1)
		created, err := tx.CreateCage(cage)
		if err != nil {
			return err
		}
		for _, name := range []string{"a", "b"} {
			animal, _ := domain.NewAnimal(name, "rabbit", RolePrey)
			housed, err := tx.CreateAnimal(animal)
			if err != nil {
				return err
			}
			if _, err := tx.UpdateAnimal(housed.ID(), func(a *Animal) error {
				return a.AssignCage(created.ID())
			}); err != nil {
				return err
			}
			if _, err := tx.UpdateCage(created.ID(), func(c *Cage) error {
				_, err := c.AddOccupant(housed.ID())
				return err
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if got := ruleName(err); got != "cage_capacity" {
		t.Fatalf("expected cage_capacity violation, got rule %q (err %v)", got, err)
	}
	if len(store.ListCages()) != 0 {
		t.Fatal("blocked transaction must not commit anything")
	}
}

func TestPredatorIsolationRuleBlocksMixedCage(t *testing.T) {
	store := ruleStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		cage, _ := domain.NewCage(2)
		created, err := tx.CreateCage(cage)
		if err != nil {
			return err
		}
		for _, spec := range []struct {
			name string
			role DietaryRole
		}{{"nika", RolePredator}, {"thimble", RolePrey}} {
			animal, _ := domain.NewAnimal(spec.name, "species", spec.role)
			housed, err := tx.CreateAnimal(animal)
			if err != nil {
				return err
			}
			if _, err := tx.UpdateAnimal(housed.ID(), func(a *Animal) error {
				return a.AssignCage(created.ID())
			}); err != nil {
				return err
			}
			if _, err := tx.UpdateCage(created.ID(), func(c *Cage) error {
				_, err := c.AddOccupant(housed.ID())
				return err
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if got := ruleName(err); got != "predator_isolation" {
		t.Fatalf("expected predator_isolation violation, got rule %q (err %v)", got, err)
	}
}

func TestPredatorIsolationRuleRespectsShareableToggle(t *testing.T) {
	settings := &mutableSettings{
		keeper: domain.DefaultKeeperConstraints(),
		animal: domain.AnimalRules{PredatorShareable: true, PreyShareable: true},
	}
	store := ruleStore(settings)
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		cage, _ := domain.NewCage(2)
		created, err := tx.CreateCage(cage)
		if err != nil {
			return err
		}
		for _, name := range []string{"nika", "vesna"} {
			animal, _ := domain.NewAnimal(name, "lynx", RolePredator)
			housed, err := tx.CreateAnimal(animal)
			if err != nil {
				return err
			}
			if _, err := tx.UpdateAnimal(housed.ID(), func(a *Animal) error {
				return a.AssignCage(created.ID())
			}); err != nil {
				return err
			}
			if _, err := tx.UpdateCage(created.ID(), func(c *Cage) error {
				_, err := c.AddOccupant(housed.ID())
				return err
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("shareable predators must commit: %v", err)
	}
}

func TestKeeperQuotaRuleBlocksOverAllocation(t *testing.T) {
	store := ruleStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		keeper, _ := domain.NewKeeper(RoleHeadKeeper, "Ada", "Moreno", "12 Reserve Lane", "555-0101")
		created, err := tx.CreateKeeper(keeper)
		if err != nil {
			return err
		}
		for i := 0; i < 5; i++ {
			cage, _ := domain.NewCage(1)
			housed, err := tx.CreateCage(cage)
			if err != nil {
				return err
			}
			if _, err := tx.UpdateKeeper(created.ID(), func(k *Keeper) error {
				_, err := k.AllocateCage(housed.ID())
				return err
			}); err != nil {
				return err
			}
			if _, err := tx.UpdateCage(housed.ID(), func(c *Cage) error {
				return c.AssignKeeper(created.ID())
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if got := ruleName(err); got != "keeper_cage_quota" {
		t.Fatalf("expected keeper_cage_quota violation, got rule %q (err %v)", got, err)
	}
}

func TestReferenceIntegrityRuleBlocksOneSidedLinks(t *testing.T) {
	cases := []struct {
		name string
		fn   func(tx domain.Transaction) error
	}{
		{
			"animal references cage without occupancy",
			func(tx domain.Transaction) error {
				cage, _ := domain.NewCage(1)
				created, err := tx.CreateCage(cage)
				if err != nil {
					return err
				}
				animal, _ := domain.NewAnimal("thimble", "rabbit", RolePrey)
				housed, err := tx.CreateAnimal(animal)
				if err != nil {
					return err
				}
				_, err = tx.UpdateAnimal(housed.ID(), func(a *Animal) error {
					return a.AssignCage(created.ID())
				})
				return err
			},
		},
		{
			"cage lists missing animal",
			func(tx domain.Transaction) error {
				cage, _ := domain.NewCage(1)
				created, err := tx.CreateCage(cage)
				if err != nil {
					return err
				}
				_, err = tx.UpdateCage(created.ID(), func(c *Cage) error {
					_, err := c.AddOccupant(42)
					return err
				})
				return err
			},
		},
		{
			"keeper holds cage assigned to nobody",
			func(tx domain.Transaction) error {
				cage, _ := domain.NewCage(1)
				created, err := tx.CreateCage(cage)
				if err != nil {
					return err
				}
				keeper, _ := domain.NewKeeper(RoleHeadKeeper, "Ada", "Moreno", "12 Reserve Lane", "555-0101")
				hired, err := tx.CreateKeeper(keeper)
				if err != nil {
					return err
				}
				_, err = tx.UpdateKeeper(hired.ID(), func(k *Keeper) error {
					_, err := k.AllocateCage(created.ID())
					return err
				})
				return err
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := ruleStore(nil)
			_, err := store.RunInTransaction(context.Background(), tc.fn)
			if got := ruleName(err); got != "reference_integrity" {
				t.Fatalf("expected reference_integrity violation, got rule %q (err %v)", got, err)
			}
		})
	}
}
