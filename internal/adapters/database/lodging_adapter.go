package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/repositories"
	"github.com/mr-jafner/TravelTogether-sub000/internal/infrastructure/clients/database"
	apperrors "github.com/mr-jafner/TravelTogether-sub000/pkg/errors"
)

// LodgingAdapter implements LodgingRepository
type LodgingAdapter struct {
	store
}

// NewLodgingAdapter creates a new lodging adapter
func NewLodgingAdapter(client *database.Client) repositories.LodgingRepository {
	return &LodgingAdapter{store: store{client: client}}
}

var lodgingColumns = []interface{}{
	"id", "trip_id", "name", "address", "check_in", "check_out",
	"cost", "confirmation", "notes", "created_at",
}

func lodgingRecord(r *entities.LodgingRecord) goqu.Record {
	return goqu.Record{
		"name":         r.Name,
		"address":      r.Address,
		"check_in":     r.CheckIn,
		"check_out":    r.CheckOut,
		"cost":         r.Cost,
		"confirmation": r.Confirmation,
		"notes":        r.Notes,
	}
}

// Create inserts a lodging record
func (a *LodgingAdapter) Create(ctx context.Context, r *entities.LodgingRecord) error {
	r.CreatedAt = now()
	record := lodgingRecord(r)
	record["trip_id"] = r.TripID
	record["created_at"] = toMillis(r.CreatedAt)

	id, err := a.client.InsertID(ctx, a.insert("lodging").Rows(record))
	if err != nil {
		return apperrors.NewInternalError("failed to create lodging record", err)
	}
	r.ID = id
	return nil
}

// GetByID retrieves a lodging record of a trip
func (a *LodgingAdapter) GetByID(ctx context.Context, tripID, id int64) (*entities.LodgingRecord, error) {
	row, err := a.queryRow(ctx, a.from("lodging").Select(lodgingColumns...).Where(goqu.Ex{"id": id, "trip_id": tripID}))
	if err != nil {
		return nil, err
	}
	r, err := scanLodging(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("lodging record %d not found in trip %d", id, tripID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get lodging record", err)
	}
	return r, nil
}

// ListByTrip returns a trip's lodging records ordered by id
func (a *LodgingAdapter) ListByTrip(ctx context.Context, tripID int64) ([]entities.LodgingRecord, error) {
	rows, err := a.query(ctx, a.from("lodging").Select(lodgingColumns...).Where(goqu.Ex{"trip_id": tripID}).Order(goqu.C("id").Asc()))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list lodging records", err)
	}
	defer rows.Close()

	records := make([]entities.LodgingRecord, 0)
	for rows.Next() {
		r, err := scanLodging(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan lodging record", err)
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list lodging records", err)
	}
	return records, nil
}

// Update writes all editable lodging fields
func (a *LodgingAdapter) Update(ctx context.Context, r *entities.LodgingRecord) error {
	result, err := a.exec(ctx, a.update("lodging").Set(lodgingRecord(r)).Where(goqu.Ex{"id": r.ID, "trip_id": r.TripID}))
	if err != nil {
		return apperrors.NewInternalError("failed to update lodging record", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("lodging record %d not found in trip %d", r.ID, r.TripID))
	}
	return nil
}

// Delete removes a lodging record
func (a *LodgingAdapter) Delete(ctx context.Context, tripID, id int64) (bool, error) {
	return a.deleteScoped(ctx, "lodging", tripID, id)
}

func scanLodging(row rowScanner) (*entities.LodgingRecord, error) {
	var (
		r         entities.LodgingRecord
		createdAt int64
	)
	if err := row.Scan(
		&r.ID, &r.TripID, &r.Name, &r.Address, &r.CheckIn, &r.CheckOut,
		&r.Cost, &r.Confirmation, &r.Notes, &createdAt,
	); err != nil {
		return nil, err
	}
	r.CreatedAt = fromMillis(createdAt)
	return &r, nil
}
