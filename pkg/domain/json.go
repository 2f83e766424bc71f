package domain

import "encoding/json"

// JSON payload shapes. Entity fields are unexported to keep invariants behind
// validating methods, so persistence round-trips go through explicit payload
// structs instead of struct tags.

type animalPayload struct {
	ID      int64       `json:"id"`
	Name    string      `json:"name"`
	Species string      `json:"species"`
	Role    DietaryRole `json:"dietary_role"`
	CageID  int64       `json:"cage_id,omitempty"`
}

// MarshalJSON serialises the animal for snapshot persistence.
func (a Animal) MarshalJSON() ([]byte, error) {
	return json.Marshal(animalPayload{
		ID:      a.id,
		Name:    a.name,
		Species: a.species,
		Role:    a.role,
		CageID:  a.cageID,
	})
}

// UnmarshalJSON hydrates the animal from a snapshot payload.
func (a *Animal) UnmarshalJSON(data []byte) error {
	var p animalPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = Animal{id: p.ID, name: p.Name, species: p.Species, role: p.Role, cageID: p.CageID}
	return nil
}

type keeperPayload struct {
	ID            int64      `json:"id"`
	Role          KeeperRole `json:"role"`
	FirstName     string     `json:"first_name"`
	Surname       string     `json:"surname"`
	Address       string     `json:"address"`
	ContactNumber string     `json:"contact_number"`
	CageIDs       []int64    `json:"cage_ids"`
}

// MarshalJSON serialises the keeper for snapshot persistence.
func (k Keeper) MarshalJSON() ([]byte, error) {
	return json.Marshal(keeperPayload{
		ID:            k.id,
		Role:          k.role,
		FirstName:     k.firstName,
		Surname:       k.surname,
		Address:       k.address,
		ContactNumber: k.contactNumber,
		CageIDs:       k.CageIDs(),
	})
}

// UnmarshalJSON hydrates the keeper from a snapshot payload.
func (k *Keeper) UnmarshalJSON(data []byte) error {
	var p keeperPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*k = Keeper{
		id:            p.ID,
		role:          p.Role,
		firstName:     p.FirstName,
		surname:       p.Surname,
		address:       p.Address,
		contactNumber: p.ContactNumber,
		cageIDs:       append([]int64(nil), p.CageIDs...),
	}
	return nil
}

type cagePayload struct {
	ID        int64   `json:"id"`
	Capacity  int     `json:"capacity"`
	AnimalIDs []int64 `json:"animal_ids"`
	KeeperID  int64   `json:"keeper_id,omitempty"`
}

// MarshalJSON serialises the cage for snapshot persistence.
func (c Cage) MarshalJSON() ([]byte, error) {
	return json.Marshal(cagePayload{
		ID:        c.id,
		Capacity:  c.capacity,
		AnimalIDs: c.AnimalIDs(),
		KeeperID:  c.keeperID,
	})
}

// UnmarshalJSON hydrates the cage from a snapshot payload.
func (c *Cage) UnmarshalJSON(data []byte) error {
	var p cagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Cage{
		id:        p.ID,
		capacity:  p.Capacity,
		animalIDs: append([]int64(nil), p.AnimalIDs...),
		keeperID:  p.KeeperID,
	}
	return nil
}
