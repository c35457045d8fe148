package handlers

import (
	"fmt"
	"net/http"

	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/consensus"
	apperrors "github.com/mr-jafner/TravelTogether-sub000/pkg/errors"
)

const maxPreviewRatings = 1000

// ConsensusHandler exposes the consensus engine to clients
type ConsensusHandler struct{}

// NewConsensusHandler creates a new consensus handler
func NewConsensusHandler() *ConsensusHandler {
	return &ConsensusHandler{}
}

type previewRequest struct {
	Ratings           []int `json:"ratings"`
	TotalParticipants int   `json:"totalParticipants"`
}

// Preview handles POST /api/consensus/preview
func (h *ConsensusHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var details []string
	if len(req.Ratings) > maxPreviewRatings {
		details = append(details, fmt.Sprintf("at most %d ratings are accepted", maxPreviewRatings))
	}
	if req.TotalParticipants < 0 {
		details = append(details, "totalParticipants must not be negative")
	}
	for i, v := range req.Ratings {
		if !consensus.ValidRating(v) {
			details = append(details, fmt.Sprintf("ratings[%d] must be between %d and %d", i, consensus.MinRating, consensus.MaxRating))
		}
	}
	if len(details) > 0 {
		respondWithAppError(w, r, apperrors.NewValidationError("invalid preview request", details...))
		return
	}

	respondWithJSON(w, http.StatusOK, consensus.Summarize(req.Ratings, req.TotalParticipants))
}

// Rules handles GET /api/consensus/rules
func (h *ConsensusHandler) Rules(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, consensus.CurrentRules())
}
