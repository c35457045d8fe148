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

// ActivityAdapter implements ActivityRepository
type ActivityAdapter struct {
	store
}

// NewActivityAdapter creates a new activity adapter
func NewActivityAdapter(client *database.Client) repositories.ActivityRepository {
	return &ActivityAdapter{store: store{client: client}}
}

var activityColumns = []interface{}{"id", "trip_id", "name", "category", "location", "cost", "duration", "created_at"}

// Create inserts an activity
func (a *ActivityAdapter) Create(ctx context.Context, activity *entities.Activity) error {
	activity.CreatedAt = now()

	id, err := a.client.InsertID(ctx, a.insert("activities").Rows(goqu.Record{
		"trip_id":    activity.TripID,
		"name":       activity.Name,
		"category":   activity.Category,
		"location":   activity.Location,
		"cost":       activity.Cost,
		"duration":   activity.Duration,
		"created_at": toMillis(activity.CreatedAt),
	}))
	if err != nil {
		return apperrors.NewInternalError("failed to create activity", err)
	}

	activity.ID = id
	return nil
}

// GetByID retrieves an activity of a trip
func (a *ActivityAdapter) GetByID(ctx context.Context, tripID, id int64) (*entities.Activity, error) {
	row, err := a.queryRow(ctx, a.from("activities").Select(activityColumns...).Where(goqu.Ex{"id": id, "trip_id": tripID}))
	if err != nil {
		return nil, err
	}

	activity, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("activity %d not found in trip %d", id, tripID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get activity", err)
	}
	return activity, nil
}

// ListByTrip returns a trip's activities ordered by id
func (a *ActivityAdapter) ListByTrip(ctx context.Context, tripID int64) ([]entities.Activity, error) {
	rows, err := a.query(ctx, a.from("activities").
		Select(activityColumns...).
		Where(goqu.Ex{"trip_id": tripID}).
		Order(goqu.C("id").Asc()))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list activities", err)
	}
	defer rows.Close()

	activities := make([]entities.Activity, 0)
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan activity", err)
		}
		activities = append(activities, *activity)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list activities", err)
	}
	return activities, nil
}

// Update writes all editable activity fields
func (a *ActivityAdapter) Update(ctx context.Context, activity *entities.Activity) error {
	result, err := a.exec(ctx, a.update("activities").Set(goqu.Record{
		"name":     activity.Name,
		"category": activity.Category,
		"location": activity.Location,
		"cost":     activity.Cost,
		"duration": activity.Duration,
	}).Where(goqu.Ex{"id": activity.ID, "trip_id": activity.TripID}))
	if err != nil {
		return apperrors.NewInternalError("failed to update activity", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("activity %d not found in trip %d", activity.ID, activity.TripID))
	}
	return nil
}

// Delete removes an activity and its ratings
func (a *ActivityAdapter) Delete(ctx context.Context, tripID, id int64) (bool, error) {
	return a.deleteScoped(ctx, "activities", tripID, id)
}

func scanActivity(row rowScanner) (*entities.Activity, error) {
	var (
		activity  entities.Activity
		createdAt int64
	)
	if err := row.Scan(
		&activity.ID,
		&activity.TripID,
		&activity.Name,
		&activity.Category,
		&activity.Location,
		&activity.Cost,
		&activity.Duration,
		&createdAt,
	); err != nil {
		return nil, err
	}
	activity.CreatedAt = fromMillis(createdAt)
	return &activity, nil
}
