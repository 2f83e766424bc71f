// Package domain defines the core entities, value types, configuration
// contracts, and rule evaluation primitives used by sanctuarycore.
package domain

import "sort"

// EntityType identifies the type of record stored in the core registries.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityAnimal identifies an individual animal record.
	EntityAnimal EntityType = "animal"
	// EntityKeeper identifies a keeper record.
	EntityKeeper EntityType = "keeper"
	// EntityCage identifies a cage record.
	EntityCage EntityType = "cage"
)

// DietaryRole classifies an animal into exactly one feeding variant. The role
// drives cage co-housing decisions.
type DietaryRole string

// Canonical dietary roles.
const (
	// RolePredator marks an animal that hunts other animals.
	RolePredator DietaryRole = "predator"
	// RolePrey marks an animal that may be hunted by predators.
	RolePrey DietaryRole = "prey"
)

// Valid reports whether the role is one of the closed set of variants.
func (r DietaryRole) Valid() bool {
	return r == RolePredator || r == RolePrey
}

// KeeperRole distinguishes keeper variants. Capacity behaviour is shared;
// only the responsibility text differs between variants.
type KeeperRole string

// Canonical keeper roles.
const (
	// RoleHeadKeeper identifies a head keeper.
	RoleHeadKeeper KeeperRole = "head_keeper"
	// RoleAssistantKeeper identifies an assistant keeper.
	RoleAssistantKeeper KeeperRole = "assistant_keeper"
)

// Valid reports whether the role is a known keeper variant.
func (r KeeperRole) Valid() bool {
	return r == RoleHeadKeeper || r == RoleAssistantKeeper
}

// Responsibilities returns the responsibility text for the keeper variant.
func (r KeeperRole) Responsibilities() string {
	switch r {
	case RoleHeadKeeper:
		return "oversees cage assignments, staff schedules, and welfare reviews"
	case RoleAssistantKeeper:
		return "performs daily feeding, cleaning, and enclosure checks"
	default:
		return ""
	}
}

// OccupancyClass describes what kind of animals a cage currently holds. It is
// derived from the materialized occupants, never stored.
type OccupancyClass string

// Derived occupancy classes.
const (
	// OccupancyEmpty means the cage holds no animals.
	OccupancyEmpty OccupancyClass = "empty"
	// OccupancyPredator means every occupant is a predator.
	OccupancyPredator OccupancyClass = "predator"
	// OccupancyPrey means every occupant is prey.
	OccupancyPrey OccupancyClass = "prey"
	// OccupancyMixed means predators and prey share the cage. This class is
	// never reachable through the service layer; it exists so rules can name
	// the violation they found.
	OccupancyMixed OccupancyClass = "mixed"
)

// ClassifyOccupants derives the occupancy class of a cage from its
// materialized occupants.
func ClassifyOccupants(occupants []Animal) OccupancyClass {
	var predators, prey int
	for _, a := range occupants {
		switch a.Role() {
		case RolePredator:
			predators++
		case RolePrey:
			prey++
		}
	}
	switch {
	case predators == 0 && prey == 0:
		return OccupancyEmpty
	case predators > 0 && prey > 0:
		return OccupancyMixed
	case predators > 0:
		return OccupancyPredator
	default:
		return OccupancyPrey
	}
}

// Animal is an individual animal tracked by the facility. Fields are
// unexported so every mutation funnels through validating methods; a zero
// id means the registry has not inserted the record yet.
type Animal struct {
	id      int64
	name    string
	species string
	role    DietaryRole
	cageID  int64
}

// NewAnimal constructs an animal, rejecting empty fields and unknown roles.
// The id stays unset until a registry insert binds it.
func NewAnimal(name, species string, role DietaryRole) (Animal, error) {
	var a Animal
	if err := requireNonEmpty(EntityAnimal, "name", name); err != nil {
		return Animal{}, err
	}
	if err := requireNonEmpty(EntityAnimal, "species", species); err != nil {
		return Animal{}, err
	}
	if !role.Valid() {
		return Animal{}, invalidRange(EntityAnimal, "dietary_role", "must be predator or prey")
	}
	a.name = name
	a.species = species
	a.role = role
	return a, nil
}

// ID returns the registry-assigned identifier, 0 when unbound.
func (a Animal) ID() int64 { return a.id }

// Name returns the animal's display name.
func (a Animal) Name() string { return a.name }

// Species returns the species text.
func (a Animal) Species() string { return a.species }

// Role returns the dietary role variant.
func (a Animal) Role() DietaryRole { return a.role }

// CageID returns the id of the cage housing the animal, 0 when unallocated.
func (a Animal) CageID() int64 { return a.cageID }

// Allocated reports whether the animal currently occupies a cage.
func (a Animal) Allocated() bool { return a.cageID != 0 }

// BindID fixes the registry-assigned identifier. It is intended for registry
// insert operations only; rebinding an already bound animal is rejected.
func (a *Animal) BindID(id int64) error {
	if id <= 0 {
		return invalidRange(EntityAnimal, "id", "must be positive")
	}
	if a.id != 0 {
		return invalidRange(EntityAnimal, "id", "already bound and must not be reassigned")
	}
	a.id = id
	return nil
}

// SetName replaces the display name, rejecting empty values.
func (a *Animal) SetName(name string) error {
	if err := requireNonEmpty(EntityAnimal, "name", name); err != nil {
		return err
	}
	a.name = name
	return nil
}

// SetSpecies replaces the species text, rejecting empty values.
func (a *Animal) SetSpecies(species string) error {
	if err := requireNonEmpty(EntityAnimal, "species", species); err != nil {
		return err
	}
	a.species = species
	return nil
}

// AssignCage records the cage housing this animal. An animal belongs to at
// most one cage, so assigning while housed elsewhere is rejected; assigning
// the current cage again is a no-op.
func (a *Animal) AssignCage(cageID int64) error {
	if cageID <= 0 {
		return invalidRange(EntityAnimal, "cage_id", "must be positive")
	}
	if a.cageID != 0 && a.cageID != cageID {
		return invalidRange(EntityAnimal, "cage_id", "animal already allocated to another cage")
	}
	a.cageID = cageID
	return nil
}

// ClearCage drops the cage reference, marking the animal unallocated.
func (a *Animal) ClearCage() { a.cageID = 0 }

// Clone returns an independent copy of the animal.
func (a Animal) Clone() Animal { return a }

// Keeper is a staff member responsible for cages. HeadKeeper and
// AssistantKeeper share the allocation behaviour and differ only in the
// responsibility text carried by the role tag.
type Keeper struct {
	id            int64
	role          KeeperRole
	firstName     string
	surname       string
	address       string
	contactNumber string
	cageIDs       []int64 // ordered set: insertion order kept for display
}

// NewKeeper constructs a keeper, rejecting empty fields and unknown roles.
func NewKeeper(role KeeperRole, firstName, surname, address, contactNumber string) (Keeper, error) {
	if !role.Valid() {
		return Keeper{}, invalidRange(EntityKeeper, "role", "must be head_keeper or assistant_keeper")
	}
	fields := []struct{ name, value string }{
		{"first_name", firstName},
		{"surname", surname},
		{"address", address},
		{"contact_number", contactNumber},
	}
	for _, f := range fields {
		if err := requireNonEmpty(EntityKeeper, f.name, f.value); err != nil {
			return Keeper{}, err
		}
	}
	return Keeper{
		role:          role,
		firstName:     firstName,
		surname:       surname,
		address:       address,
		contactNumber: contactNumber,
	}, nil
}

// ID returns the registry-assigned identifier, 0 when unbound.
func (k Keeper) ID() int64 { return k.id }

// Role returns the keeper variant tag.
func (k Keeper) Role() KeeperRole { return k.role }

// FirstName returns the keeper's first name.
func (k Keeper) FirstName() string { return k.firstName }

// Surname returns the keeper's surname.
func (k Keeper) Surname() string { return k.surname }

// Address returns the keeper's address.
func (k Keeper) Address() string { return k.address }

// ContactNumber returns the keeper's contact number.
func (k Keeper) ContactNumber() string { return k.contactNumber }

// BindID fixes the registry-assigned identifier; rebinding is rejected.
func (k *Keeper) BindID(id int64) error {
	if id <= 0 {
		return invalidRange(EntityKeeper, "id", "must be positive")
	}
	if k.id != 0 {
		return invalidRange(EntityKeeper, "id", "already bound and must not be reassigned")
	}
	k.id = id
	return nil
}

// SetFirstName replaces the first name, rejecting empty values.
func (k *Keeper) SetFirstName(v string) error {
	if err := requireNonEmpty(EntityKeeper, "first_name", v); err != nil {
		return err
	}
	k.firstName = v
	return nil
}

// SetSurname replaces the surname, rejecting empty values.
func (k *Keeper) SetSurname(v string) error {
	if err := requireNonEmpty(EntityKeeper, "surname", v); err != nil {
		return err
	}
	k.surname = v
	return nil
}

// SetAddress replaces the address, rejecting empty values.
func (k *Keeper) SetAddress(v string) error {
	if err := requireNonEmpty(EntityKeeper, "address", v); err != nil {
		return err
	}
	k.address = v
	return nil
}

// SetContactNumber replaces the contact number, rejecting empty values.
func (k *Keeper) SetContactNumber(v string) error {
	if err := requireNonEmpty(EntityKeeper, "contact_number", v); err != nil {
		return err
	}
	k.contactNumber = v
	return nil
}

// CageIDs returns an independent copy of the allocated cage ids in insertion
// order. Callers cannot corrupt internal state through the returned slice.
func (k Keeper) CageIDs() []int64 {
	out := make([]int64, len(k.cageIDs))
	copy(out, k.cageIDs)
	return out
}

// CageCount returns the number of cages currently allocated to the keeper.
func (k Keeper) CageCount() int { return len(k.cageIDs) }

// HasCage reports whether the cage id is already allocated to the keeper.
func (k Keeper) HasCage(cageID int64) bool {
	for _, id := range k.cageIDs {
		if id == cageID {
			return true
		}
	}
	return false
}

// CanAcceptMoreCages reports whether the keeper may take another cage under
// the supplied maximum.
func (k Keeper) CanAcceptMoreCages(maxCages int) bool {
	return len(k.cageIDs) < maxCages
}

// AllocateCage adds a cage id to the keeper's set. Adding an id that is
// already present is a no-op and reports false; a fresh addition reports
// true. Set semantics: duplicates are never stored.
func (k *Keeper) AllocateCage(cageID int64) (bool, error) {
	if cageID <= 0 {
		return false, invalidRange(EntityKeeper, "cage_id", "must be positive")
	}
	if k.HasCage(cageID) {
		return false, nil
	}
	k.cageIDs = append(k.cageIDs, cageID)
	return true, nil
}

// RemoveCage drops a cage id from the keeper's set, reporting whether it was
// present. Removing an absent id leaves the set unchanged.
func (k *Keeper) RemoveCage(cageID int64) bool {
	for i, id := range k.cageIDs {
		if id == cageID {
			k.cageIDs = append(k.cageIDs[:i], k.cageIDs[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the keeper.
func (k Keeper) Clone() Keeper {
	cp := k
	cp.cageIDs = append([]int64(nil), k.cageIDs...)
	return cp
}

// Cage is a physical enclosure with a bounded occupant set and an optional
// assigned keeper.
type Cage struct {
	id        int64
	capacity  int
	animalIDs []int64 // set: bounded by capacity through the validators
	keeperID  int64   // 0 = no keeper assigned
}

// NewCage constructs a cage with the given capacity limit.
func NewCage(capacity int) (Cage, error) {
	if capacity <= 0 {
		return Cage{}, invalidRange(EntityCage, "capacity", "must be positive")
	}
	return Cage{capacity: capacity}, nil
}

// ID returns the registry-assigned identifier, 0 when unbound.
func (c Cage) ID() int64 { return c.id }

// Capacity returns the occupant limit.
func (c Cage) Capacity() int { return c.capacity }

// KeeperID returns the assigned keeper's id, 0 when unassigned.
func (c Cage) KeeperID() int64 { return c.keeperID }

// OccupantCount returns the number of animals currently housed.
func (c Cage) OccupantCount() int { return len(c.animalIDs) }

// AnimalIDs returns an independent sorted copy of the occupant ids.
func (c Cage) AnimalIDs() []int64 {
	out := make([]int64, len(c.animalIDs))
	copy(out, c.animalIDs)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// HasOccupant reports whether the animal id is housed in the cage.
func (c Cage) HasOccupant(animalID int64) bool {
	for _, id := range c.animalIDs {
		if id == animalID {
			return true
		}
	}
	return false
}

// BindID fixes the registry-assigned identifier; rebinding is rejected.
func (c *Cage) BindID(id int64) error {
	if id <= 0 {
		return invalidRange(EntityCage, "id", "must be positive")
	}
	if c.id != 0 {
		return invalidRange(EntityCage, "id", "already bound and must not be reassigned")
	}
	c.id = id
	return nil
}

// SetCapacity adjusts the occupant limit. The new limit must remain positive
// and cover the animals already housed.
func (c *Cage) SetCapacity(capacity int) error {
	if capacity <= 0 {
		return invalidRange(EntityCage, "capacity", "must be positive")
	}
	if capacity < len(c.animalIDs) {
		return invalidRange(EntityCage, "capacity", "below current occupant count")
	}
	c.capacity = capacity
	return nil
}

// AddOccupant adds an animal id to the occupant set. Adding a present id is
// a no-op reporting false.
func (c *Cage) AddOccupant(animalID int64) (bool, error) {
	if animalID <= 0 {
		return false, invalidRange(EntityCage, "animal_id", "must be positive")
	}
	if c.HasOccupant(animalID) {
		return false, nil
	}
	c.animalIDs = append(c.animalIDs, animalID)
	return true, nil
}

// RemoveOccupant drops an animal id from the occupant set, reporting whether
// it was present.
func (c *Cage) RemoveOccupant(animalID int64) bool {
	for i, id := range c.animalIDs {
		if id == animalID {
			c.animalIDs = append(c.animalIDs[:i], c.animalIDs[i+1:]...)
			return true
		}
	}
	return false
}

// AssignKeeper records the keeper responsible for this cage.
func (c *Cage) AssignKeeper(keeperID int64) error {
	if keeperID <= 0 {
		return invalidRange(EntityCage, "keeper_id", "must be positive")
	}
	c.keeperID = keeperID
	return nil
}

// ClearKeeper drops the keeper reference.
func (c *Cage) ClearKeeper() { c.keeperID = 0 }

// Clone returns an independent copy of the cage.
func (c Cage) Clone() Cage {
	cp := c
	cp.animalIDs = append([]int64(nil), c.animalIDs...)
	return cp
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate the mutations captured for rule evaluation.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)
