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

// TravelAdapter implements TravelRepository
type TravelAdapter struct {
	store
}

// NewTravelAdapter creates a new travel adapter
func NewTravelAdapter(client *database.Client) repositories.TravelRepository {
	return &TravelAdapter{store: store{client: client}}
}

func (a *TravelAdapter) selectTravel() *goqu.SelectDataset {
	return a.from(goqu.T("travel").As("t")).
		LeftJoin(goqu.T("participants").As("p"), goqu.On(goqu.I("p.id").Eq(goqu.I("t.participant_id")))).
		Select(
			"t.id", "t.trip_id", "t.participant_id", goqu.COALESCE(goqu.I("p.name"), ""),
			"t.mode", "t.departure_location", "t.arrival_location",
			"t.departure_time", "t.arrival_time", "t.confirmation", "t.notes", "t.created_at",
		)
}

func travelRecord(r *entities.TravelRecord) goqu.Record {
	return goqu.Record{
		"participant_id":     nullableID(r.ParticipantID),
		"mode":               r.Mode,
		"departure_location": r.DepartureLocation,
		"arrival_location":   r.ArrivalLocation,
		"departure_time":     r.DepartureTime,
		"arrival_time":       r.ArrivalTime,
		"confirmation":       r.Confirmation,
		"notes":              r.Notes,
	}
}

// Create inserts a travel record
func (a *TravelAdapter) Create(ctx context.Context, r *entities.TravelRecord) error {
	r.CreatedAt = now()
	record := travelRecord(r)
	record["trip_id"] = r.TripID
	record["created_at"] = toMillis(r.CreatedAt)

	id, err := a.client.InsertID(ctx, a.insert("travel").Rows(record))
	if err != nil {
		return apperrors.NewInternalError("failed to create travel record", err)
	}
	r.ID = id
	return nil
}

// GetByID retrieves a travel record of a trip
func (a *TravelAdapter) GetByID(ctx context.Context, tripID, id int64) (*entities.TravelRecord, error) {
	row, err := a.queryRow(ctx, a.selectTravel().Where(goqu.Ex{"t.id": id, "t.trip_id": tripID}))
	if err != nil {
		return nil, err
	}
	r, err := scanTravel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("travel record %d not found in trip %d", id, tripID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get travel record", err)
	}
	return r, nil
}

// ListByTrip returns a trip's travel records ordered by id
func (a *TravelAdapter) ListByTrip(ctx context.Context, tripID int64) ([]entities.TravelRecord, error) {
	rows, err := a.query(ctx, a.selectTravel().Where(goqu.Ex{"t.trip_id": tripID}).Order(goqu.I("t.id").Asc()))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list travel records", err)
	}
	defer rows.Close()

	records := make([]entities.TravelRecord, 0)
	for rows.Next() {
		r, err := scanTravel(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan travel record", err)
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list travel records", err)
	}
	return records, nil
}

// Update writes all editable travel fields
func (a *TravelAdapter) Update(ctx context.Context, r *entities.TravelRecord) error {
	result, err := a.exec(ctx, a.update("travel").Set(travelRecord(r)).Where(goqu.Ex{"id": r.ID, "trip_id": r.TripID}))
	if err != nil {
		return apperrors.NewInternalError("failed to update travel record", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("travel record %d not found in trip %d", r.ID, r.TripID))
	}
	return nil
}

// Delete removes a travel record
func (a *TravelAdapter) Delete(ctx context.Context, tripID, id int64) (bool, error) {
	return a.deleteScoped(ctx, "travel", tripID, id)
}

func scanTravel(row rowScanner) (*entities.TravelRecord, error) {
	var (
		r             entities.TravelRecord
		participantID sql.NullInt64
		createdAt     int64
	)
	if err := row.Scan(
		&r.ID, &r.TripID, &participantID, &r.ParticipantName,
		&r.Mode, &r.DepartureLocation, &r.ArrivalLocation,
		&r.DepartureTime, &r.ArrivalTime, &r.Confirmation, &r.Notes, &createdAt,
	); err != nil {
		return nil, err
	}
	r.ParticipantID = idPtr(participantID)
	r.CreatedAt = fromMillis(createdAt)
	return &r, nil
}
