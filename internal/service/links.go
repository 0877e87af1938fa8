package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Links builds the absolute URLs embedded in confirmation emails and returned
// as redirect targets. APIBaseURL is where this server is reachable (confirm
// endpoints live there); FrontendBaseURL is where the web app lives (redirect
// targets point there).
type Links struct {
	APIBaseURL      string
	FrontendBaseURL string
}

// TripConfirmURL is the link the owner clicks to confirm the whole trip.
func (l Links) TripConfirmURL(tripID uuid.UUID) string {
	return fmt.Sprintf("%s/trips/%s/confirm", strings.TrimRight(l.APIBaseURL, "/"), tripID)
}

// ParticipantConfirmURL is the personal link an invitee clicks to confirm
// their spot.
func (l Links) ParticipantConfirmURL(participantID uuid.UUID) string {
	return fmt.Sprintf("%s/participants/%s/confirm", strings.TrimRight(l.APIBaseURL, "/"), participantID)
}

// TripPageURL is the frontend trip page both confirm endpoints redirect to.
func (l Links) TripPageURL(tripID uuid.UUID) string {
	return fmt.Sprintf("%s/trips/%s", strings.TrimRight(l.FrontendBaseURL, "/"), tripID)
}
