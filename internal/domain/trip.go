// Package domain contains the core data types for the trip planner API.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (repo, service, notify, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip represents a planned journey with a destination and a date range.
// A trip is the top-level aggregate; participants belong to a trip, are
// created together with it, and never outlive it.
type Trip struct {
	ID          uuid.UUID `json:"id"`
	Destination string    `json:"destination"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`

	// IsConfirmed is monotonic: once true it never reverts. It flips only
	// through the repo's compare-and-set Confirm operation.
	IsConfirmed bool `json:"is_confirmed"`

	// Participants holds every participant in insertion order (owner first).
	// Populated by reads that join the participants table.
	Participants []Participant `json:"participants,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Invitees returns the non-owner participants in insertion order.
// These are the recipients of the confirmation fan-out once the trip itself
// is confirmed.
func (t Trip) Invitees() []Participant {
	invitees := make([]Participant, 0, len(t.Participants))
	for _, p := range t.Participants {
		if !p.IsOwner {
			invitees = append(invitees, p)
		}
	}
	return invitees
}
