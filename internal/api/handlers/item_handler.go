package handlers

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"github.com/mr-jafner/TravelTogether-sub000/internal/application/services"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/consensus"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
	apperrors "github.com/mr-jafner/TravelTogether-sub000/pkg/errors"
)

// ItemWriter defines the activity and restaurant writes used by the handler
type ItemWriter interface {
	AddActivity(ctx context.Context, tripID int64, in services.ItemInput) (*entities.Activity, error)
	UpdateActivity(ctx context.Context, tripID, activityID int64, in services.ItemInput) (*entities.Activity, error)
	DeleteActivity(ctx context.Context, tripID, activityID int64) error
	AddRestaurant(ctx context.Context, tripID int64, in services.ItemInput) (*entities.Restaurant, error)
	UpdateRestaurant(ctx context.Context, tripID, restaurantID int64, in services.ItemInput) (*entities.Restaurant, error)
	DeleteRestaurant(ctx context.Context, tripID, restaurantID int64) error
}

// Rater records a vote and returns the item's recomputed ratings
type Rater interface {
	Rate(ctx context.Context, tripID int64, in services.RateInput) (*entities.ItemRatings, error)
}

// ItemHandler serves activities and restaurants. Every method takes the item
// kind so one handler covers both route families.
type ItemHandler struct {
	items ItemWriter
	rater Rater
	reads TripReader
}

// NewItemHandler creates a new item handler
func NewItemHandler(items ItemWriter, rater Rater, reads TripReader) *ItemHandler {
	return &ItemHandler{
		items: items,
		rater: rater,
		reads: reads,
	}
}

type rateRequest struct {
	ParticipantID   *int64   `json:"participantId"`
	ParticipantName string   `json:"participantName"`
	Rating          *float64 `json:"rating"`
}

// ListItems handles GET /api/trips/{id}/{activities|restaurants}
func (h *ItemHandler) ListItems(kind entities.ItemKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := tripID(r)
		if err != nil {
			respondWithAppError(w, r, err)
			return
		}

		var items interface{}
		var count int
		if kind == entities.KindActivity {
			activities, err := h.reads.ListActivities(r.Context(), id)
			if err != nil {
				respondWithAppError(w, r, err)
				return
			}
			items, count = activities, len(activities)
		} else {
			restaurants, err := h.reads.ListRestaurants(r.Context(), id)
			if err != nil {
				respondWithAppError(w, r, err)
				return
			}
			items, count = restaurants, len(restaurants)
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			kind.Plural(): items,
			"count":       count,
		})
	}
}

// AddItem handles POST /api/trips/{id}/{activities|restaurants}
func (h *ItemHandler) AddItem(kind entities.ItemKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := tripID(r)
		if err != nil {
			respondWithAppError(w, r, err)
			return
		}

		var in services.ItemInput
		if err := decodeJSON(w, r, &in); err != nil {
			respondWithAppError(w, r, err)
			return
		}

		var item interface{}
		if kind == entities.KindActivity {
			item, err = h.items.AddActivity(r.Context(), id, in)
		} else {
			item, err = h.items.AddRestaurant(r.Context(), id, in)
		}
		if err != nil {
			respondWithAppError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, item)
	}
}

// UpdateItem handles PUT /api/trips/{id}/{activities|restaurants}/{itemId}
func (h *ItemHandler) UpdateItem(kind entities.ItemKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, itemID, ok := itemIDs(w, r)
		if !ok {
			return
		}

		var in services.ItemInput
		if err := decodeJSON(w, r, &in); err != nil {
			respondWithAppError(w, r, err)
			return
		}

		var (
			item interface{}
			err  error
		)
		if kind == entities.KindActivity {
			item, err = h.items.UpdateActivity(r.Context(), id, itemID, in)
		} else {
			item, err = h.items.UpdateRestaurant(r.Context(), id, itemID, in)
		}
		if err != nil {
			respondWithAppError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, item)
	}
}

// DeleteItem handles DELETE /api/trips/{id}/{activities|restaurants}/{itemId}
func (h *ItemHandler) DeleteItem(kind entities.ItemKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, itemID, ok := itemIDs(w, r)
		if !ok {
			return
		}

		var err error
		if kind == entities.KindActivity {
			err = h.items.DeleteActivity(r.Context(), id, itemID)
		} else {
			err = h.items.DeleteRestaurant(r.Context(), id, itemID)
		}
		if err != nil {
			respondWithAppError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Rate handles POST .../{itemId}/rate and .../{itemId}/rate/{username}. The
// path username, when present, names the acting participant.
func (h *ItemHandler) Rate(kind entities.ItemKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, itemID, ok := itemIDs(w, r)
		if !ok {
			return
		}

		var req rateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondWithAppError(w, r, err)
			return
		}
		value, err := parseRating(req.Rating)
		if err != nil {
			respondWithAppError(w, r, err)
			return
		}

		who := services.ActingParticipant{ID: req.ParticipantID, Name: req.ParticipantName}
		if username := r.PathValue("username"); username != "" {
			who = services.ActingParticipant{Name: username}
		}

		result, err := h.rater.Rate(r.Context(), id, services.RateInput{
			Kind:   kind,
			ItemID: itemID,
			Who:    who,
			Value:  value,
		})
		if err != nil {
			respondWithAppError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, result)
	}
}

// ItemRatings handles GET .../{itemId}/ratings
func (h *ItemHandler) ItemRatings(kind entities.ItemKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, itemID, ok := itemIDs(w, r)
		if !ok {
			return
		}

		result, err := h.reads.ItemRatings(r.Context(), id, kind, itemID)
		if err != nil {
			respondWithAppError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, result)
	}
}

// parseRating accepts whole numbers in [MinRating, MaxRating] only
func parseRating(v *float64) (int, error) {
	if v == nil {
		return 0, apperrors.NewValidationError("rating is required")
	}
	rangeMsg := fmt.Sprintf("rating must be an integer between %d and %d", consensus.MinRating, consensus.MaxRating)
	if *v != math.Trunc(*v) || *v < consensus.MinRating || *v > consensus.MaxRating {
		return 0, apperrors.NewValidationError("invalid rating", rangeMsg)
	}
	return int(*v), nil
}

func itemIDs(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	id, err := tripID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return 0, 0, false
	}
	itemID, err := pathID(r, "itemId")
	if err != nil {
		respondWithAppError(w, r, err)
		return 0, 0, false
	}
	return id, itemID, true
}
