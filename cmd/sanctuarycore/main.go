// Command sanctuarycore manages the facility registry from the console:
// registering animals, keepers, and cages, moving animals between cages, and
// archiving registry snapshots.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"sanctuarycore/internal/blob"
	"sanctuarycore/internal/config"
	"sanctuarycore/internal/core"
	"sanctuarycore/pkg/domain"
)

var exitFunc = os.Exit

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		exitFunc(1)
	}
}

func usage() string {
	return `usage: sanctuarycore <command> [flags]

commands:
  add-animal   register an animal (-name -species -role predator|prey)
  add-keeper   register a keeper (-role head|assistant -first -surname -address -contact)
  add-cage     register a cage (-capacity)
  allocate     place an animal in a cage (-animal -cage)
  deallocate   remove an animal from its cage (-animal)
  assign       give a keeper responsibility for a cage (-keeper -cage)
  unassign     release a keeper from a cage (-keeper -cage)
  list         print the registry as JSON
  export       archive a registry snapshot to the blob store
  snapshots    list archived snapshots
  restore      replace registry state from an archived snapshot (-key)`
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Println(usage())
		return nil
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	settings, err := config.LoadFile(os.Getenv("SANCTUARYCORE_SETTINGS_FILE"))
	if err != nil {
		return err
	}
	provider := config.NewProvider(settings, os.Getenv("SANCTUARYCORE_SETTINGS_FILE"))
	store, err := core.OpenPersistentStore(core.NewDefaultRulesEngine(provider))
	if err != nil {
		return err
	}
	service := core.NewService(store, provider, core.WithLogger(core.NewSlogLogger(logger)))
	ctx := context.Background()

	switch cmd := args[0]; cmd {
	case "add-animal":
		return addAnimal(ctx, service, args[1:])
	case "add-keeper":
		return addKeeper(ctx, service, args[1:])
	case "add-cage":
		return addCage(ctx, service, args[1:])
	case "allocate":
		return allocate(ctx, service, args[1:])
	case "deallocate":
		return deallocate(ctx, service, args[1:])
	case "assign":
		return assign(ctx, service, args[1:])
	case "unassign":
		return unassign(ctx, service, args[1:])
	case "list":
		return list(store)
	case "export":
		return export(ctx, store)
	case "snapshots":
		return snapshots(ctx)
	case "restore":
		return restore(ctx, store, args[1:])
	case "help", "-h", "--help":
		fmt.Println(usage())
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage())
	}
}

func addAnimal(ctx context.Context, service *core.Service, args []string) error {
	fs := flag.NewFlagSet("add-animal", flag.ContinueOnError)
	name := fs.String("name", "", "animal name")
	species := fs.String("species", "", "animal species")
	role := fs.String("role", "", "dietary role: predator or prey")
	if err := fs.Parse(args); err != nil {
		return err
	}
	animal, err := domain.NewAnimal(*name, *species, domain.DietaryRole(*role))
	if err != nil {
		return err
	}
	created, _, err := service.CreateAnimal(ctx, animal)
	if err != nil {
		return err
	}
	return printJSON(created)
}

func addKeeper(ctx context.Context, service *core.Service, args []string) error {
	fs := flag.NewFlagSet("add-keeper", flag.ContinueOnError)
	role := fs.String("role", "", "keeper role: head or assistant")
	first := fs.String("first", "", "first name")
	surname := fs.String("surname", "", "surname")
	address := fs.String("address", "", "address")
	contact := fs.String("contact", "", "contact number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var keeperRole domain.KeeperRole
	switch *role {
	case "head":
		keeperRole = domain.RoleHeadKeeper
	case "assistant":
		keeperRole = domain.RoleAssistantKeeper
	default:
		keeperRole = domain.KeeperRole(*role)
	}
	keeper, err := domain.NewKeeper(keeperRole, *first, *surname, *address, *contact)
	if err != nil {
		return err
	}
	created, _, err := service.CreateKeeper(ctx, keeper)
	if err != nil {
		return err
	}
	return printJSON(created)
}

func addCage(ctx context.Context, service *core.Service, args []string) error {
	fs := flag.NewFlagSet("add-cage", flag.ContinueOnError)
	capacity := fs.Int("capacity", 0, "maximum number of occupants")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cage, err := domain.NewCage(*capacity)
	if err != nil {
		return err
	}
	created, _, err := service.CreateCage(ctx, cage)
	if err != nil {
		return err
	}
	return printJSON(created)
}

func allocate(ctx context.Context, service *core.Service, args []string) error {
	fs := flag.NewFlagSet("allocate", flag.ContinueOnError)
	animalID := fs.Int64("animal", 0, "animal id")
	cageID := fs.Int64("cage", 0, "cage id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	_, err := service.AllocateAnimal(ctx, *animalID, *cageID)
	return err
}

func deallocate(ctx context.Context, service *core.Service, args []string) error {
	fs := flag.NewFlagSet("deallocate", flag.ContinueOnError)
	animalID := fs.Int64("animal", 0, "animal id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	_, err := service.DeallocateAnimal(ctx, *animalID)
	return err
}

func assign(ctx context.Context, service *core.Service, args []string) error {
	fs := flag.NewFlagSet("assign", flag.ContinueOnError)
	keeperID := fs.Int64("keeper", 0, "keeper id")
	cageID := fs.Int64("cage", 0, "cage id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	_, err := service.AssignKeeper(ctx, *keeperID, *cageID)
	return err
}

func unassign(ctx context.Context, service *core.Service, args []string) error {
	fs := flag.NewFlagSet("unassign", flag.ContinueOnError)
	keeperID := fs.Int64("keeper", 0, "keeper id")
	cageID := fs.Int64("cage", 0, "cage id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	_, err := service.UnassignKeeper(ctx, *keeperID, *cageID)
	return err
}

func list(store domain.PersistentStore) error {
	return printJSON(map[string]any{
		"animals": store.ListAnimals(),
		"keepers": store.ListKeepers(),
		"cages":   store.ListCages(),
	})
}

func archiver(ctx context.Context, store domain.PersistentStore) (*core.SnapshotArchiver, error) {
	source, ok := store.(core.StateSnapshotter)
	if !ok {
		return nil, fmt.Errorf("storage driver does not support snapshots")
	}
	blobStore, err := blob.Open(ctx)
	if err != nil {
		return nil, err
	}
	return core.NewSnapshotArchiver(source, blobStore), nil
}

func export(ctx context.Context, store domain.PersistentStore) error {
	arch, err := archiver(ctx, store)
	if err != nil {
		return err
	}
	info, err := arch.Export(ctx)
	if err != nil {
		return err
	}
	return printJSON(info)
}

func snapshots(ctx context.Context) error {
	blobStore, err := blob.Open(ctx)
	if err != nil {
		return err
	}
	infos, err := blobStore.List(ctx, "snapshots/")
	if err != nil {
		return err
	}
	return printJSON(infos)
}

func restore(ctx context.Context, store domain.PersistentStore, args []string) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	key := fs.String("key", "", "archived snapshot key")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *key == "" {
		return fmt.Errorf("snapshot key required")
	}
	arch, err := archiver(ctx, store)
	if err != nil {
		return err
	}
	return arch.Restore(ctx, *key)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
