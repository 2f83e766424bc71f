package domain

import "fmt"

// FieldErrorKind classifies a field-level validation failure.
type FieldErrorKind string

// Field validation failure kinds.
const (
	// FieldNullOrEmpty indicates a required field was missing or blank.
	FieldNullOrEmpty FieldErrorKind = "null_or_empty"
	// FieldInvalidRange indicates a value fell outside its permitted range.
	FieldInvalidRange FieldErrorKind = "invalid_range"
)

// ValidationError reports a rejected construction or mutation. The entity is
// left unchanged whenever one is returned.
type ValidationError struct {
	Entity  EntityType
	Field   string
	Kind    FieldErrorKind
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s.%s: %s (%s)", e.Entity, e.Field, e.Message, e.Kind)
}

func requireNonEmpty(entity EntityType, field, value string) error {
	if value == "" {
		return ValidationError{Entity: entity, Field: field, Kind: FieldNullOrEmpty, Message: "must not be empty"}
	}
	return nil
}

func invalidRange(entity EntityType, field, message string) error {
	return ValidationError{Entity: entity, Field: field, Kind: FieldInvalidRange, Message: message}
}

// NotFoundError is returned when an id is absent from a registry. Only the
// service layer raises it; validators never resolve ids.
type NotFoundError struct {
	Entity EntityType
	ID     int64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// CapacityExceededError reports an allocation into a cage already at its
// occupant limit.
type CapacityExceededError struct {
	CageID    int64
	Capacity  int
	Occupants int
}

func (e CapacityExceededError) Error() string {
	return fmt.Sprintf("cage %d at capacity: %d/%d occupants", e.CageID, e.Occupants, e.Capacity)
}

// IncompatibleOccupantsError reports a co-housing rule rejection, for
// example a predator placed with prey.
type IncompatibleOccupantsError struct {
	CageID    int64
	AnimalID  int64
	Role      DietaryRole
	Occupancy OccupancyClass
}

func (e IncompatibleOccupantsError) Error() string {
	return fmt.Sprintf("animal %d (%s) cannot share cage %d holding %s occupants", e.AnimalID, e.Role, e.CageID, e.Occupancy)
}

// MaxCagesExceededError reports a keeper already holding the maximum number
// of cages permitted by configuration.
type MaxCagesExceededError struct {
	KeeperID  int64
	MaxCages  int
	Allocated int
}

func (e MaxCagesExceededError) Error() string {
	return fmt.Sprintf("keeper %d holds %d of %d permitted cages", e.KeeperID, e.Allocated, e.MaxCages)
}

// NotAllocatedError reports a deallocation of a relationship that does not
// exist, instead of silently succeeding.
type NotAllocatedError struct {
	Entity   EntityType
	EntityID int64
	CageID   int64
}

func (e NotAllocatedError) Error() string {
	if e.CageID == 0 {
		return fmt.Sprintf("%s %d is not allocated to any cage", e.Entity, e.EntityID)
	}
	return fmt.Sprintf("%s %d is not allocated to cage %d", e.Entity, e.EntityID, e.CageID)
}
