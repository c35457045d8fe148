package handlers

import (
	"context"
	"net/http"

	"github.com/mr-jafner/TravelTogether-sub000/internal/application/services"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
)

const (
	defaultTripLimit = 50
	maxTripLimit     = 200
)

// TripWriter defines the trip write operations used by the handlers
type TripWriter interface {
	Create(ctx context.Context, in services.CreateTripInput) (*entities.Trip, error)
	Update(ctx context.Context, tripID int64, in services.UpdateTripInput) (*entities.Trip, error)
	Delete(ctx context.Context, tripID int64) error
}

// TripReader defines the read models used by the handlers
type TripReader interface {
	BuildTripView(ctx context.Context, tripID int64, viewer string) (*entities.TripView, error)
	BuildExportView(ctx context.Context, tripID int64) (*entities.ExportBundle, error)
	ListTrips(ctx context.Context, filter entities.TripFilter) ([]entities.TripSummary, error)
	ListActivities(ctx context.Context, tripID int64) ([]entities.ActivityView, error)
	ListRestaurants(ctx context.Context, tripID int64) ([]entities.RestaurantView, error)
	ItemRatings(ctx context.Context, tripID int64, kind entities.ItemKind, itemID int64) (*entities.ItemRatings, error)
}

// TripHandler handles trip-related HTTP requests
type TripHandler struct {
	writes TripWriter
	reads  TripReader
}

// NewTripHandler creates a new trip handler
func NewTripHandler(writes TripWriter, reads TripReader) *TripHandler {
	return &TripHandler{
		writes: writes,
		reads:  reads,
	}
}

// ListTrips handles GET /api/trips
func (h *TripHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultTripLimit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if limit == 0 || limit > maxTripLimit {
		limit = maxTripLimit
	}

	trips, err := h.reads.ListTrips(r.Context(), entities.TripFilter{Limit: limit, Offset: offset})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"trips": trips,
		"count": len(trips),
	})
}

// CreateTrip handles POST /api/trips
func (h *TripHandler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var in services.CreateTripInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	trip, err := h.writes.Create(r.Context(), in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	view, err := h.reads.BuildTripView(r.Context(), trip.ID, "")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, view)
}

// GetTrip handles GET /api/trips/{id}?user=
func (h *TripHandler) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	view, err := h.reads.BuildTripView(r.Context(), id, r.URL.Query().Get("user"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

// UpdateTrip handles PUT /api/trips/{id}
func (h *TripHandler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var in services.UpdateTripInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if _, err := h.writes.Update(r.Context(), id, in); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	view, err := h.reads.BuildTripView(r.Context(), id, r.URL.Query().Get("user"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

// DeleteTrip handles DELETE /api/trips/{id}
func (h *TripHandler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if err := h.writes.Delete(r.Context(), id); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportTrip handles GET /api/trips/{id}/export
func (h *TripHandler) ExportTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	bundle, err := h.reads.BuildExportView(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, bundle)
}
