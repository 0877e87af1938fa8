package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mcardoso/planner/backend/internal/domain"
	"github.com/mcardoso/planner/backend/internal/service"
)

// createTripRequest is the body of POST /trips.
// Timestamps are RFC 3339 strings.
type createTripRequest struct {
	Destination    string    `json:"destination"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	OwnerName      string    `json:"owner_name"`
	OwnerEmail     string    `json:"owner_email"`
	EmailsToInvite []string  `json:"emails_to_invite"`
}

// createTripResponse is the 201 body of POST /trips.
type createTripResponse struct {
	TripID string `json:"tripId"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "request body must be valid JSON")
		return
	}

	trip, err := s.trips.Create(r.Context(), service.CreateTripInput{
		Destination:   req.Destination,
		StartsAt:      req.StartsAt,
		EndsAt:        req.EndsAt,
		OwnerName:     req.OwnerName,
		OwnerEmail:    req.OwnerEmail,
		InviteeEmails: req.EmailsToInvite,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeValidation(w, err)
			return
		}
		writeInternal(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createTripResponse{TripID: trip.ID.String()})
}

// GetTrip handles GET /trips/{tripID}.
// The response includes every participant in insertion order.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "tripID")
	if err != nil {
		writeNotFound(w, "trip not found")
		return
	}

	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeNotFound(w, "trip not found")
			return
		}
		writeInternal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, trip)
}

// ConfirmTrip handles GET /trips/{tripID}/confirm.
// Both the first confirmation and any repeat redirect to the same frontend
// trip page; only the first triggers the invitee notification fan-out.
func (s *Server) ConfirmTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "tripID")
	if err != nil {
		writeNotFound(w, "trip not found")
		return
	}

	redirect, err := s.trips.Confirm(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeNotFound(w, "trip not found")
			return
		}
		writeInternal(w, err)
		return
	}

	http.Redirect(w, r, redirect, http.StatusFound)
}
