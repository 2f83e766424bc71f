// Command snapshot-check validates an archived registry snapshot: every
// allocation and assignment must be linked from both sides, cages must not be
// over capacity, and predators and prey must not share a cage.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"sanctuarycore/internal/infra/persistence/memory"
	"sanctuarycore/pkg/domain"
)

var exitFunc = os.Exit

func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("snapshot-check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var path string
	fs.StringVar(&path, "file", "", "path to an archived snapshot JSON file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if path == "" {
		fmt.Fprintln(stderr, "snapshot-check: -file is required")
		return 2
	}

	snap, err := loadSnapshot(path)
	if err != nil {
		fmt.Fprintf(stderr, "snapshot-check: %v\n", err)
		return 2
	}

	problems := checkSnapshot(snap)
	if len(problems) == 0 {
		fmt.Fprintf(stdout, "ok: %d animals, %d keepers, %d cages\n",
			len(snap.Animals), len(snap.Keepers), len(snap.Cages))
		return 0
	}
	for _, p := range problems {
		fmt.Fprintln(stdout, p)
	}
	fmt.Fprintf(stderr, "snapshot-check: %d problem(s) found\n", len(problems))
	return 1
}

func loadSnapshot(path string) (memory.Snapshot, error) {
	var snap memory.Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("decode %s: %w", path, err)
	}
	return snap, nil
}

// checkSnapshot returns one line per inconsistency, sorted for stable output.
func checkSnapshot(snap memory.Snapshot) []string {
	var problems []string

	for id, animal := range snap.Animals {
		if animal.ID() != id {
			problems = append(problems, fmt.Sprintf("animal %d: stored under key %d", animal.ID(), id))
		}
		cageID := animal.CageID()
		if cageID == 0 {
			continue
		}
		cage, ok := snap.Cages[cageID]
		if !ok {
			problems = append(problems, fmt.Sprintf("animal %d: allocated to missing cage %d", id, cageID))
			continue
		}
		if !cage.HasOccupant(id) {
			problems = append(problems, fmt.Sprintf("animal %d: cage %d does not list it as an occupant", id, cageID))
		}
	}

	for id, cage := range snap.Cages {
		if cage.ID() != id {
			problems = append(problems, fmt.Sprintf("cage %d: stored under key %d", cage.ID(), id))
		}
		occupants := make([]domain.Animal, 0, cage.OccupantCount())
		for _, animalID := range cage.AnimalIDs() {
			animal, ok := snap.Animals[animalID]
			if !ok {
				problems = append(problems, fmt.Sprintf("cage %d: lists missing animal %d", id, animalID))
				continue
			}
			if animal.CageID() != id {
				problems = append(problems, fmt.Sprintf("cage %d: lists animal %d allocated elsewhere", id, animalID))
				continue
			}
			occupants = append(occupants, animal)
		}
		if cage.OccupantCount() > cage.Capacity() {
			problems = append(problems, fmt.Sprintf("cage %d: %d occupants exceed capacity %d", id, cage.OccupantCount(), cage.Capacity()))
		}
		if domain.ClassifyOccupants(occupants) == domain.OccupancyMixed {
			problems = append(problems, fmt.Sprintf("cage %d: predators and prey share the cage", id))
		}
		if keeperID := cage.KeeperID(); keeperID != 0 {
			keeper, ok := snap.Keepers[keeperID]
			switch {
			case !ok:
				problems = append(problems, fmt.Sprintf("cage %d: assigned to missing keeper %d", id, keeperID))
			case !keeper.HasCage(id):
				problems = append(problems, fmt.Sprintf("cage %d: keeper %d does not list it", id, keeperID))
			}
		}
	}

	for id, keeper := range snap.Keepers {
		if keeper.ID() != id {
			problems = append(problems, fmt.Sprintf("keeper %d: stored under key %d", keeper.ID(), id))
		}
		for _, cageID := range keeper.CageIDs() {
			cage, ok := snap.Cages[cageID]
			if !ok {
				problems = append(problems, fmt.Sprintf("keeper %d: lists missing cage %d", id, cageID))
				continue
			}
			if cage.KeeperID() != id {
				problems = append(problems, fmt.Sprintf("keeper %d: cage %d is assigned to keeper %d", id, cageID, cage.KeeperID()))
			}
		}
	}

	sort.Strings(problems)
	return problems
}
