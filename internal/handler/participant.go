package handler

import (
	"errors"
	"net/http"

	"github.com/mcardoso/planner/backend/internal/domain"
)

// ConfirmParticipant handles GET /participants/{participantID}/confirm.
// Idempotent like trip confirmation: a second click on the same link lands on
// the same trip page without error.
func (s *Server) ConfirmParticipant(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "participantID")
	if err != nil {
		writeNotFound(w, "participant not found")
		return
	}

	redirect, err := s.participants.Confirm(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeNotFound(w, "participant not found")
			return
		}
		writeInternal(w, err)
		return
	}

	http.Redirect(w, r, redirect, http.StatusFound)
}
