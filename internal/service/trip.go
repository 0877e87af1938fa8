// Package service contains the business logic for the trip planner API:
// the trip/participant confirmation workflow and its notification fan-out.
// Services validate inputs, enforce the state machines, and orchestrate repo
// and dispatcher calls. No SQL and no SMTP live here — services depend on
// interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	netmail "net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mcardoso/planner/backend/internal/domain"
	"github.com/mcardoso/planner/backend/internal/mail"
	"github.com/mcardoso/planner/backend/internal/notify"
	"github.com/mcardoso/planner/backend/internal/repo"
)

// Notifier is the slice of the dispatcher the workflow depends on.
// Defining the interface here (in the consumer package) lets service tests
// inject a recording fake without touching SMTP.
type Notifier interface {
	Send(ctx context.Context, email notify.Email) notify.Outcome
	Broadcast(ctx context.Context, emails []notify.Email) notify.Report
}

// CreateTripInput carries the validated-to-be input of the trip creation
// action. Timestamps are expected in UTC or with an explicit offset.
type CreateTripInput struct {
	Destination   string
	StartsAt      time.Time
	EndsAt        time.Time
	OwnerName     string
	OwnerEmail    string
	InviteeEmails []string
}

// TripService implements the trip side of the confirmation workflow.
type TripService struct {
	trips    repo.TripRepo
	notifier Notifier
	links    Links
}

// NewTripService constructs a TripService backed by the provided repo and
// dispatcher.
func NewTripService(trips repo.TripRepo, notifier Notifier, links Links) *TripService {
	return &TripService{trips: trips, notifier: notifier, links: links}
}

// Create validates the input, persists the trip with its owner and invitees
// atomically, and emails the trip confirmation link to the owner only.
// Invitees are not contacted until the trip itself is confirmed.
//
// The returned trip is valid regardless of the notification outcome: once
// persistence commits, a failed owner email is logged and counted by the
// dispatcher but never fails the action.
func (s *TripService) Create(ctx context.Context, input CreateTripInput) (domain.Trip, error) {
	if err := s.validateCreate(input); err != nil {
		return domain.Trip{}, err
	}

	trip := domain.Trip{
		Destination: strings.TrimSpace(input.Destination),
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
	}
	owner := domain.Participant{
		Name:  strings.TrimSpace(input.OwnerName),
		Email: input.OwnerEmail,
	}

	created, err := s.trips.Create(ctx, trip, owner, input.InviteeEmails)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	// State is durably persisted; everything below is best-effort side effect.
	persistedOwner := created.Participants[0]
	email, err := mail.OwnerConfirmation(created, persistedOwner, s.links.TripConfirmURL(created.ID))
	if err != nil {
		// Rendering cannot realistically fail with static templates; treat it
		// like any other notification failure and keep the action successful.
		return created, nil
	}
	s.notifier.Send(ctx, email)

	return created, nil
}

// GetByID returns a single trip, participants included.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// Confirm transitions a trip from Created to Confirmed and fans the invitee
// confirmation emails out concurrently. The transition is idempotent: a trip
// that is already confirmed produces no mutation and no re-notification, and
// the same redirect target is returned either way. The repo's compare-and-set
// is the serialization point — under concurrent calls exactly one caller
// observes transitioned=true and runs the fan-out.
func (s *TripService) Confirm(ctx context.Context, id uuid.UUID) (string, error) {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("service.TripService.Confirm: %w", err)
	}

	redirect := s.links.TripPageURL(trip.ID)

	transitioned, err := s.trips.Confirm(ctx, id)
	if err != nil {
		return "", fmt.Errorf("service.TripService.Confirm: %w", err)
	}
	if !transitioned {
		// Already confirmed (double-opened link or a concurrent winner):
		// no mutation happened here, so no emails either.
		return redirect, nil
	}

	invitees := trip.Invitees()
	emails := make([]notify.Email, 0, len(invitees))
	for _, invitee := range invitees {
		email, err := mail.InviteeConfirmation(trip, invitee, s.links.ParticipantConfirmURL(invitee.ID))
		if err != nil {
			continue
		}
		emails = append(emails, email)
	}
	// Join-all: per-recipient failures are logged by the dispatcher and never
	// surface as this action's error — persistence already committed.
	s.notifier.Broadcast(ctx, emails)

	return redirect, nil
}

// validateCreate enforces the trip creation business rules.
// Every violation wraps domain.ErrValidation and aborts before any persistence
// call, so a rejected input leaves no partial state behind.
func (s *TripService) validateCreate(input CreateTripInput) error {
	if len(strings.TrimSpace(input.Destination)) < 4 {
		return fmt.Errorf("%w: destination must be at least 4 characters", domain.ErrValidation)
	}
	if strings.TrimSpace(input.OwnerName) == "" {
		return fmt.Errorf("%w: owner name is required", domain.ErrValidation)
	}
	if input.StartsAt.Before(time.Now()) {
		return fmt.Errorf("%w: trip start date must not be in the past", domain.ErrValidation)
	}
	if !input.EndsAt.After(input.StartsAt) {
		return fmt.Errorf("%w: trip end date must be after the start date", domain.ErrValidation)
	}
	if err := validateEmail(input.OwnerEmail); err != nil {
		return fmt.Errorf("%w: owner email %q is invalid", domain.ErrValidation, input.OwnerEmail)
	}
	for _, email := range input.InviteeEmails {
		if err := validateEmail(email); err != nil {
			return fmt.Errorf("%w: invitee email %q is invalid", domain.ErrValidation, email)
		}
	}
	return nil
}

// validateEmail accepts a bare RFC 5322 address ("a@b.example", no display name).
func validateEmail(address string) error {
	parsed, err := netmail.ParseAddress(address)
	if err != nil {
		return err
	}
	if parsed.Address != address {
		return fmt.Errorf("address %q must not carry a display name", address)
	}
	return nil
}
