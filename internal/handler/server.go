// Package handler implements the HTTP handlers for the trip planner API.
// Handlers decode/encode JSON, map service errors onto HTTP statuses, and
// nothing else — all business rules live in the service layer.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mcardoso/planner/backend/internal/domain"
	"github.com/mcardoso/planner/backend/internal/service"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, input service.CreateTripInput) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	Confirm(ctx context.Context, id uuid.UUID) (string, error)
}

// ParticipantServicer defines the business operations the participant
// handlers depend on.
type ParticipantServicer interface {
	Confirm(ctx context.Context, id uuid.UUID) (string, error)
}

// Server holds the dependencies shared by every handler method.
// Methods are split into domain-specific files (trip.go, participant.go,
// health.go) but all operate on this struct.
type Server struct {
	trips        TripServicer
	participants ParticipantServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, participants ParticipantServicer) *Server {
	return &Server{trips: trips, participants: participants}
}

// Routes returns the chi router with every API endpoint registered.
// Cross-cutting middleware (logging, CORS, rate limiting) is wired by the
// caller so tests can exercise routes without it.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)

	r.Route("/trips", func(r chi.Router) {
		r.Post("/", s.CreateTrip)
		r.Get("/{tripID}", s.GetTrip)
		r.Get("/{tripID}/confirm", s.ConfirmTrip)
	})

	r.Get("/participants/{participantID}/confirm", s.ConfirmParticipant)

	return r
}

// pathUUID parses the named chi URL parameter as a UUID.
// A malformed value is indistinguishable from an unknown resource to the
// client, so callers should respond 404 on error.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}
