package game

// Slot statuses. A slot is `empty` exactly when its type is
// `empty`; a `built` slot always carries a non-empty type.
const (
	SlotEmpty             = "empty"
	SlotUnderConstruction = "under_construction"
	SlotBuilt             = "built"
)

// Slot :
// An atomic build site on a planet. Slots are created with the
// planet (one per unit of maximum population) and are never
// reallocated: building and removing mutate them in place.
//
// The `Type` defines the kind of building hosted by the slot
// (`farm`, `mine`, `refine`, `industry`, `energy`, `science`)
// or `empty`.
//
// The `Status` defines the construction state of the slot.
//
// The `Active` defines whether the hosted building currently
// contributes to production. Defaults to `true`.
//
// The `BuildingID` references the content catalog entry of the
// hosted building, empty when the slot is empty.
//
// The `lastSentActive` remembers the `Active` value included
// in the last delta computation for this slot.
type Slot struct {
	Type       string `json:"type" msgpack:"type"`
	Status     string `json:"status" msgpack:"status"`
	Active     bool   `json:"active" msgpack:"active"`
	BuildingID string `json:"building_id,omitempty" msgpack:"building_id,omitempty"`

	lastSentActive *bool
}

// NewSlot :
// Creates an empty, active slot.
//
// Returns the built-in slot.
func NewSlot() *Slot {
	return &Slot{
		Type:   SlotEmpty,
		Status: SlotEmpty,
		Active: true,
	}
}

// IsEmpty :
// A slot is empty when it hosts no building.
func (s *Slot) IsEmpty() bool {
	return s.Type == SlotEmpty
}

// Clear :
// Resets the slot to its empty state, freeing it for a new
// construction.
func (s *Slot) Clear() {
	s.Type = SlotEmpty
	s.Status = SlotEmpty
	s.Active = true
	s.BuildingID = ""
}

// ToggleActive :
// Flips the active flag of the slot.
func (s *Slot) ToggleActive() {
	s.Active = !s.Active
}
