package handlers

import (
	"context"
	"net/http"

	"github.com/mr-jafner/TravelTogether-sub000/internal/application/services"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
)

// ParticipantWriter defines the membership operations used by the handler
type ParticipantWriter interface {
	Add(ctx context.Context, tripID int64, in services.AddParticipantInput) (*entities.Participant, error)
	Update(ctx context.Context, tripID, participantID int64, in services.UpdateParticipantInput) (*entities.Participant, error)
	Remove(ctx context.Context, tripID, participantID int64) error
}

// ParticipantHandler handles participant-related HTTP requests
type ParticipantHandler struct {
	participants ParticipantWriter
}

// NewParticipantHandler creates a new participant handler
func NewParticipantHandler(participants ParticipantWriter) *ParticipantHandler {
	return &ParticipantHandler{participants: participants}
}

// AddParticipant handles POST /api/trips/{id}/participants
func (h *ParticipantHandler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var in services.AddParticipantInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	participant, err := h.participants.Add(r.Context(), id, in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, participant)
}

// UpdateParticipant handles PUT /api/trips/{id}/participants/{participantId}
func (h *ParticipantHandler) UpdateParticipant(w http.ResponseWriter, r *http.Request) {
	id, participantID, ok := h.ids(w, r)
	if !ok {
		return
	}

	var in services.UpdateParticipantInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	participant, err := h.participants.Update(r.Context(), id, participantID, in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, participant)
}

// RemoveParticipant handles DELETE /api/trips/{id}/participants/{participantId}
func (h *ParticipantHandler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	id, participantID, ok := h.ids(w, r)
	if !ok {
		return
	}

	if err := h.participants.Remove(r.Context(), id, participantID); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ParticipantHandler) ids(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	id, err := tripID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return 0, 0, false
	}
	participantID, err := pathID(r, "participantId")
	if err != nil {
		respondWithAppError(w, r, err)
		return 0, 0, false
	}
	return id, participantID, true
}
