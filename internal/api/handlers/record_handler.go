package handlers

import (
	"context"
	"net/http"

	"github.com/mr-jafner/TravelTogether-sub000/internal/application/services"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
)

// RecordService defines the travel, lodging and logistics operations used by
// the handler
type RecordService interface {
	ListTravel(ctx context.Context, tripID int64) ([]entities.TravelRecord, error)
	AddTravel(ctx context.Context, tripID int64, in services.TravelInput) (*entities.TravelRecord, error)
	UpdateTravel(ctx context.Context, tripID, recordID int64, in services.TravelInput) (*entities.TravelRecord, error)
	DeleteTravel(ctx context.Context, tripID, recordID int64) error

	ListLodging(ctx context.Context, tripID int64) ([]entities.LodgingRecord, error)
	AddLodging(ctx context.Context, tripID int64, in services.LodgingInput) (*entities.LodgingRecord, error)
	UpdateLodging(ctx context.Context, tripID, recordID int64, in services.LodgingInput) (*entities.LodgingRecord, error)
	DeleteLodging(ctx context.Context, tripID, recordID int64) error

	ListLogistics(ctx context.Context, tripID int64) ([]entities.LogisticsRecord, error)
	AddLogistics(ctx context.Context, tripID int64, in services.LogisticsInput) (*entities.LogisticsRecord, error)
	UpdateLogistics(ctx context.Context, tripID, recordID int64, in services.LogisticsInput) (*entities.LogisticsRecord, error)
	DeleteLogistics(ctx context.Context, tripID, recordID int64) error
}

// RecordHandler handles travel, lodging and logistics requests
type RecordHandler struct {
	records RecordService
}

// NewRecordHandler creates a new record handler
func NewRecordHandler(records RecordService) *RecordHandler {
	return &RecordHandler{records: records}
}

// listRecords writes {key: records, count} for a trip-scoped list call
func listRecords[T any](w http.ResponseWriter, r *http.Request, key string, list func(context.Context, int64) ([]T, error)) {
	id, err := tripID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	records, err := list(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		key:     records,
		"count": len(records),
	})
}

// addRecord decodes In and writes the created record with 201
func addRecord[In any, Out any](w http.ResponseWriter, r *http.Request, add func(context.Context, int64, In) (Out, error)) {
	id, err := tripID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	var in In
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	record, err := add(r.Context(), id, in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, record)
}

// updateRecord decodes In and writes the replaced record
func updateRecord[In any, Out any](w http.ResponseWriter, r *http.Request, update func(context.Context, int64, int64, In) (Out, error)) {
	id, recordID, ok := recordIDs(w, r)
	if !ok {
		return
	}
	var in In
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	record, err := update(r.Context(), id, recordID, in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, record)
}

func deleteRecord(w http.ResponseWriter, r *http.Request, del func(context.Context, int64, int64) error) {
	id, recordID, ok := recordIDs(w, r)
	if !ok {
		return
	}
	if err := del(r.Context(), id, recordID); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func recordIDs(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	id, err := tripID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return 0, 0, false
	}
	recordID, err := pathID(r, "recordId")
	if err != nil {
		respondWithAppError(w, r, err)
		return 0, 0, false
	}
	return id, recordID, true
}

// ListTravel handles GET /api/trips/{id}/travel
func (h *RecordHandler) ListTravel(w http.ResponseWriter, r *http.Request) {
	listRecords(w, r, "travel", h.records.ListTravel)
}

// AddTravel handles POST /api/trips/{id}/travel
func (h *RecordHandler) AddTravel(w http.ResponseWriter, r *http.Request) {
	addRecord(w, r, h.records.AddTravel)
}

// UpdateTravel handles PUT /api/trips/{id}/travel/{recordId}
func (h *RecordHandler) UpdateTravel(w http.ResponseWriter, r *http.Request) {
	updateRecord(w, r, h.records.UpdateTravel)
}

// DeleteTravel handles DELETE /api/trips/{id}/travel/{recordId}
func (h *RecordHandler) DeleteTravel(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, h.records.DeleteTravel)
}

// ListLodging handles GET /api/trips/{id}/lodging
func (h *RecordHandler) ListLodging(w http.ResponseWriter, r *http.Request) {
	listRecords(w, r, "lodging", h.records.ListLodging)
}

// AddLodging handles POST /api/trips/{id}/lodging
func (h *RecordHandler) AddLodging(w http.ResponseWriter, r *http.Request) {
	addRecord(w, r, h.records.AddLodging)
}

// UpdateLodging handles PUT /api/trips/{id}/lodging/{recordId}
func (h *RecordHandler) UpdateLodging(w http.ResponseWriter, r *http.Request) {
	updateRecord(w, r, h.records.UpdateLodging)
}

// DeleteLodging handles DELETE /api/trips/{id}/lodging/{recordId}
func (h *RecordHandler) DeleteLodging(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, h.records.DeleteLodging)
}

// ListLogistics handles GET /api/trips/{id}/logistics
func (h *RecordHandler) ListLogistics(w http.ResponseWriter, r *http.Request) {
	listRecords(w, r, "logistics", h.records.ListLogistics)
}

// AddLogistics handles POST /api/trips/{id}/logistics
func (h *RecordHandler) AddLogistics(w http.ResponseWriter, r *http.Request) {
	addRecord(w, r, h.records.AddLogistics)
}

// UpdateLogistics handles PUT /api/trips/{id}/logistics/{recordId}
func (h *RecordHandler) UpdateLogistics(w http.ResponseWriter, r *http.Request) {
	updateRecord(w, r, h.records.UpdateLogistics)
}

// DeleteLogistics handles DELETE /api/trips/{id}/logistics/{recordId}
func (h *RecordHandler) DeleteLogistics(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, h.records.DeleteLogistics)
}
