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

// TripAdapter implements TripRepository
type TripAdapter struct {
	store
}

// NewTripAdapter creates a new trip adapter
func NewTripAdapter(client *database.Client) repositories.TripRepository {
	return &TripAdapter{store: store{client: client}}
}

// selectTrips reads trips with createdBy resolved from the current creator
// participant, so renaming the creator needs no write to trips.
func (a *TripAdapter) selectTrips() *goqu.SelectDataset {
	creator := a.from(goqu.T("participants").As("p")).
		Select(goqu.I("p.name")).
		Where(
			goqu.I("p.trip_id").Eq(goqu.I("trips.id")),
			goqu.I("p.role").Eq(string(entities.RoleCreator)),
		).
		Order(goqu.I("p.id").Asc()).
		Limit(1)

	return a.from("trips").Select(
		goqu.I("trips.id"), goqu.I("trips.name"), goqu.I("trips.start_date"), goqu.I("trips.end_date"),
		goqu.COALESCE(creator, "").As("created_by"),
		goqu.I("trips.created_at"), goqu.I("trips.updated_at"),
	)
}

// Create inserts a new trip
func (a *TripAdapter) Create(ctx context.Context, trip *entities.Trip) error {
	ts := now()
	if trip.CreatedAt.IsZero() {
		trip.CreatedAt = ts
	}
	trip.UpdatedAt = ts

	id, err := a.client.InsertID(ctx, a.insert("trips").Rows(goqu.Record{
		"name":       trip.Name,
		"start_date": trip.StartDate,
		"end_date":   trip.EndDate,
		"created_at": toMillis(trip.CreatedAt),
		"updated_at": toMillis(trip.UpdatedAt),
	}))
	if err != nil {
		return apperrors.NewInternalError("failed to create trip", err)
	}

	trip.ID = id
	return nil
}

// GetByID retrieves a trip by ID
func (a *TripAdapter) GetByID(ctx context.Context, id int64) (*entities.Trip, error) {
	row, err := a.queryRow(ctx, a.selectTrips().Where(goqu.I("trips.id").Eq(id)))
	if err != nil {
		return nil, err
	}

	trip, err := scanTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("trip %d not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get trip", err)
	}
	return trip, nil
}

// Exists reports whether a trip row exists
func (a *TripAdapter) Exists(ctx context.Context, id int64) (bool, error) {
	row, err := a.queryRow(ctx, a.from("trips").Select(goqu.COUNT("*")).Where(goqu.Ex{"id": id}))
	if err != nil {
		return false, err
	}
	var count int
	if err := row.Scan(&count); err != nil {
		return false, apperrors.NewInternalError("failed to check trip", err)
	}
	return count > 0, nil
}

// List retrieves trips newest first
func (a *TripAdapter) List(ctx context.Context, filter entities.TripFilter) ([]*entities.Trip, error) {
	ds := a.selectTrips().Order(goqu.I("trips.created_at").Desc(), goqu.I("trips.id").Desc())
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	rows, err := a.query(ctx, ds)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list trips", err)
	}
	defer rows.Close()

	trips := make([]*entities.Trip, 0)
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan trip", err)
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list trips", err)
	}
	return trips, nil
}

// Update writes name and dates
func (a *TripAdapter) Update(ctx context.Context, trip *entities.Trip) error {
	trip.UpdatedAt = now()

	result, err := a.exec(ctx, a.update("trips").Set(goqu.Record{
		"name":       trip.Name,
		"start_date": trip.StartDate,
		"end_date":   trip.EndDate,
		"updated_at": toMillis(trip.UpdatedAt),
	}).Where(goqu.Ex{"id": trip.ID}))
	if err != nil {
		return apperrors.NewInternalError("failed to update trip", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("trip %d not found", trip.ID))
	}
	return nil
}

// Delete removes a trip; children go with it through ON DELETE CASCADE
func (a *TripAdapter) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := a.exec(ctx, a.delete("trips").Where(goqu.Ex{"id": id}))
	if err != nil {
		return false, apperrors.NewInternalError("failed to delete trip", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.NewInternalError("failed to get rows affected", err)
	}
	return rowsAffected > 0, nil
}

// ReplaceDestinations deletes every destination of the trip and inserts names
// in order. Callers run it inside a transaction.
func (a *TripAdapter) ReplaceDestinations(ctx context.Context, tripID int64, names []string) error {
	if _, err := a.exec(ctx, a.delete("destinations").Where(goqu.Ex{"trip_id": tripID})); err != nil {
		return apperrors.NewInternalError("failed to clear destinations", err)
	}
	if len(names) == 0 {
		return nil
	}

	rows := make([]interface{}, 0, len(names))
	for i, name := range names {
		rows = append(rows, goqu.Record{
			"trip_id":     tripID,
			"name":        name,
			"order_index": i,
		})
	}
	if _, err := a.exec(ctx, a.insert("destinations").Rows(rows...)); err != nil {
		return apperrors.NewInternalError("failed to insert destinations", err)
	}
	return nil
}

// ListDestinations returns a trip's destinations in display order
func (a *TripAdapter) ListDestinations(ctx context.Context, tripID int64) ([]entities.Destination, error) {
	byTrip, err := a.ListDestinationsByTrips(ctx, []int64{tripID})
	if err != nil {
		return nil, err
	}
	if byTrip[tripID] == nil {
		return []entities.Destination{}, nil
	}
	return byTrip[tripID], nil
}

// ListDestinationsByTrips returns destinations for several trips keyed by trip ID
func (a *TripAdapter) ListDestinationsByTrips(ctx context.Context, tripIDs []int64) (map[int64][]entities.Destination, error) {
	result := make(map[int64][]entities.Destination, len(tripIDs))
	if len(tripIDs) == 0 {
		return result, nil
	}

	rows, err := a.query(ctx, a.from("destinations").
		Select("id", "trip_id", "name", "order_index").
		Where(goqu.C("trip_id").In(tripIDs)).
		Order(goqu.C("trip_id").Asc(), goqu.C("order_index").Asc(), goqu.C("id").Asc()))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list destinations", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d entities.Destination
		if err := rows.Scan(&d.ID, &d.TripID, &d.Name, &d.OrderIndex); err != nil {
			return nil, apperrors.NewInternalError("failed to scan destination", err)
		}
		result[d.TripID] = append(result[d.TripID], d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list destinations", err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrip(row rowScanner) (*entities.Trip, error) {
	var (
		trip                 entities.Trip
		createdAt, updatedAt int64
	)
	if err := row.Scan(&trip.ID, &trip.Name, &trip.StartDate, &trip.EndDate, &trip.CreatedBy, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	trip.CreatedAt = fromMillis(createdAt)
	trip.UpdatedAt = fromMillis(updatedAt)
	return &trip, nil
}
