package domain

import (
	"time"

	"github.com/google/uuid"
)

// Participant is a person owning or invited to a trip.
// The owner is created already confirmed; invitees start unconfirmed with an
// email only and confirm through their personal confirmation link.
// Duplicate emails within one trip are permitted.
type Participant struct {
	ID     uuid.UUID `json:"id"`
	TripID uuid.UUID `json:"trip_id"`

	// Name is empty for invitees until they confirm; always set for the owner.
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`

	// IsOwner is set at trip creation only. Exactly one participant per trip
	// has it true.
	IsOwner bool `json:"is_owner"`

	// IsConfirmed is monotonic, like Trip.IsConfirmed. It flips only through
	// the repo's compare-and-set Confirm operation.
	IsConfirmed bool `json:"is_confirmed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
