package memory

import (
	"context"
	"errors"
	"testing"

	"sanctuarycore/pkg/domain"
)

func seedAnimal(t *testing.T, store *Store, name string, role domain.DietaryRole) Animal {
	t.Helper()
	var created Animal
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		animal, err := domain.NewAnimal(name, "species", role)
		if err != nil {
			return err
		}
		created, err = tx.CreateAnimal(animal)
		return err
	})
	if err != nil {
		t.Fatalf("seed animal %s: %v", name, err)
	}
	return created
}

func TestStoreAssignsSequentialIDsPerEntity(t *testing.T) {
	store := NewStore(nil)
	first := seedAnimal(t, store, "first", domain.RolePrey)
	second := seedAnimal(t, store, "second", domain.RolePrey)
	if first.ID() != 1 || second.ID() != 2 {
		t.Fatalf("animal ids = %d, %d", first.ID(), second.ID())
	}

	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		keeper, err := domain.NewKeeper(domain.RoleHeadKeeper, "Ada", "Moreno", "12 Reserve Lane", "555-0101")
		if err != nil {
			return err
		}
		created, err := tx.CreateKeeper(keeper)
		if err != nil {
			return err
		}
		// Sequences are independent per entity type.
		if created.ID() != 1 {
			t.Errorf("keeper id = %d, want 1", created.ID())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("create keeper: %v", err)
	}
}

func TestStoreRejectsPreBoundIDs(t *testing.T) {
	store := NewStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		animal, err := domain.NewAnimal("thimble", "rabbit", domain.RolePrey)
		if err != nil {
			return err
		}
		if err := animal.BindID(7); err != nil {
			return err
		}
		_, err = tx.CreateAnimal(animal)
		return err
	})
	if err == nil {
		t.Fatal("expected rejection of self-assigned id")
	}
}

func TestStoreRejectsIDReassignmentInUpdate(t *testing.T) {
	store := NewStore(nil)
	created := seedAnimal(t, store, "thimble", domain.RolePrey)

	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.UpdateAnimal(created.ID(), func(a *Animal) error {
			*a = Animal{}
			return a.BindID(99)
		})
		return err
	})
	if err == nil {
		t.Fatal("expected rejection of id reassignment")
	}
	if _, ok := store.GetAnimal(created.ID()); !ok {
		t.Fatal("original record lost after failed update")
	}
}

func TestFailedTransactionLeavesStateUntouched(t *testing.T) {
	store := NewStore(nil)
	seedAnimal(t, store, "existing", domain.RolePrey)
	boom := errors.New("boom")

	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		animal, _ := domain.NewAnimal("doomed", "rabbit", domain.RolePrey)
		if _, err := tx.CreateAnimal(animal); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if got := len(store.ListAnimals()); got != 1 {
		t.Fatalf("animals = %d, want 1", got)
	}
	// The aborted create must not have consumed a sequence number.
	next := seedAnimal(t, store, "next", domain.RolePrey)
	if next.ID() != 2 {
		t.Fatalf("next id = %d, want 2", next.ID())
	}
}

type alwaysBlockRule struct{}

func (alwaysBlockRule) Name() string { return "always_block" }

func (alwaysBlockRule) Evaluate(context.Context, domain.RuleView, []domain.Change) (domain.Result, error) {
	return domain.Result{Violations: []domain.Violation{{Rule: "always_block", Severity: domain.SeverityBlock}}}, nil
}

func TestBlockingRuleAbortsCommit(t *testing.T) {
	engine := domain.NewRulesEngine()
	engine.Register(alwaysBlockRule{})
	store := NewStore(engine)

	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		animal, _ := domain.NewAnimal("thimble", "rabbit", domain.RolePrey)
		_, err := tx.CreateAnimal(animal)
		return err
	})
	var rverr domain.RuleViolationError
	if !errors.As(err, &rverr) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
	if len(store.ListAnimals()) != 0 {
		t.Fatal("blocked transaction committed state")
	}
}

func TestSnapshotRoundTripPreservesSequences(t *testing.T) {
	store := NewStore(nil)
	created := seedAnimal(t, store, "thimble", domain.RolePrey)

	snap := store.ExportState()
	if snap.Sequences.Animal != created.ID() {
		t.Fatalf("exported animal sequence = %d", snap.Sequences.Animal)
	}

	restored := NewStore(nil)
	restored.ImportState(snap)
	if _, ok := restored.GetAnimal(created.ID()); !ok {
		t.Fatal("imported state missing animal")
	}
	next := seedAnimal(t, restored, "next", domain.RolePrey)
	if next.ID() != created.ID()+1 {
		t.Fatalf("sequence not restored: next id = %d", next.ID())
	}
}

func TestImportStateAdvancesSequencesPastIDs(t *testing.T) {
	store := NewStore(nil)
	// A snapshot whose sequence counter lags behind its ids must not recycle.
	animal, _ := domain.NewAnimal("thimble", "rabbit", domain.RolePrey)
	if err := animal.BindID(9); err != nil {
		t.Fatalf("bind: %v", err)
	}
	store.ImportState(Snapshot{Animals: map[int64]Animal{9: animal}})

	next := seedAnimal(t, store, "next", domain.RolePrey)
	if next.ID() != 10 {
		t.Fatalf("next id = %d, want 10", next.ID())
	}
}

func TestGettersReturnClones(t *testing.T) {
	store := NewStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		cage, err := domain.NewCage(2)
		if err != nil {
			return err
		}
		created, err := tx.CreateCage(cage)
		if err != nil {
			return err
		}
		_, err = tx.UpdateCage(created.ID(), func(c *Cage) error {
			_, err := c.AddOccupant(5)
			return err
		})
		return err
	})
	if err != nil {
		t.Fatalf("seed cage: %v", err)
	}

	got, _ := store.GetCage(1)
	got.RemoveOccupant(5)
	again, _ := store.GetCage(1)
	if !again.HasOccupant(5) {
		t.Fatal("mutating a returned cage corrupted the store")
	}
}

func TestViewSeesCommittedStateOnly(t *testing.T) {
	store := NewStore(nil)
	created := seedAnimal(t, store, "thimble", domain.RolePrey)

	err := store.View(context.Background(), func(v TransactionView) error {
		if _, ok := v.FindAnimal(created.ID()); !ok {
			t.Error("view missing committed animal")
		}
		if got := len(v.ListAnimals()); got != 1 {
			t.Errorf("view animals = %d, want 1", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestTransactionFindersAndDeletes(t *testing.T) {
	store := NewStore(nil)
	created := seedAnimal(t, store, "thimble", domain.RolePrey)

	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		if _, ok := tx.FindAnimal(created.ID()); !ok {
			t.Error("transaction missing committed animal")
		}
		if err := tx.DeleteAnimal(created.ID()); err != nil {
			return err
		}
		if _, ok := tx.FindAnimal(created.ID()); ok {
			t.Error("deleted animal still visible in transaction")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.GetAnimal(created.ID()); ok {
		t.Fatal("deleted animal still committed")
	}

	_, err = store.RunInTransaction(context.Background(), func(tx Transaction) error {
		return tx.DeleteAnimal(created.ID())
	})
	var nferr domain.NotFoundError
	if !errors.As(err, &nferr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
