package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mcardoso/planner/backend/internal/repo"
)

// ParticipantService implements the participant side of the confirmation
// workflow. It is independent of the trip state machine: a participant may
// confirm before or after the trip itself is confirmed.
type ParticipantService struct {
	participants repo.ParticipantRepo
	links        Links
}

// NewParticipantService constructs a ParticipantService backed by the
// provided repo.
func NewParticipantService(participants repo.ParticipantRepo, links Links) *ParticipantService {
	return &ParticipantService{participants: participants, links: links}
}

// Confirm transitions a participant from Invited to Confirmed and returns the
// frontend trip page to redirect to. Idempotent: confirming an already
// confirmed participant is a no-op success, not an error. No notification is
// triggered by this transition.
// Returns domain.ErrNotFound (wrapped) when the participant does not exist.
func (s *ParticipantService) Confirm(ctx context.Context, id uuid.UUID) (string, error) {
	participant, err := s.participants.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("service.ParticipantService.Confirm: %w", err)
	}

	// The compare-and-set result is deliberately ignored: both the caller that
	// performed the transition and an idempotent loser land on the same page.
	if _, err := s.participants.Confirm(ctx, id); err != nil {
		return "", fmt.Errorf("service.ParticipantService.Confirm: %w", err)
	}

	return s.links.TripPageURL(participant.TripID), nil
}
