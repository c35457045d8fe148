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

// LogisticsAdapter implements LogisticsRepository
type LogisticsAdapter struct {
	store
}

// NewLogisticsAdapter creates a new logistics adapter
func NewLogisticsAdapter(client *database.Client) repositories.LogisticsRepository {
	return &LogisticsAdapter{store: store{client: client}}
}

func (a *LogisticsAdapter) selectLogistics() *goqu.SelectDataset {
	return a.from(goqu.T("logistics").As("l")).
		LeftJoin(goqu.T("participants").As("p"), goqu.On(goqu.I("p.id").Eq(goqu.I("l.assigned_participant_id")))).
		Select(
			"l.id", "l.trip_id", "l.category", "l.title", "l.details",
			"l.assigned_participant_id", goqu.COALESCE(goqu.I("p.name"), ""),
			"l.due_date", "l.completed", "l.created_at",
		)
}

func logisticsRecord(r *entities.LogisticsRecord) goqu.Record {
	return goqu.Record{
		"category":                r.Category,
		"title":                   r.Title,
		"details":                 r.Details,
		"assigned_participant_id": nullableID(r.AssignedParticipantID),
		"due_date":                r.DueDate,
		"completed":               r.Completed,
	}
}

// Create inserts a logistics record
func (a *LogisticsAdapter) Create(ctx context.Context, r *entities.LogisticsRecord) error {
	r.CreatedAt = now()
	record := logisticsRecord(r)
	record["trip_id"] = r.TripID
	record["created_at"] = toMillis(r.CreatedAt)

	id, err := a.client.InsertID(ctx, a.insert("logistics").Rows(record))
	if err != nil {
		return apperrors.NewInternalError("failed to create logistics record", err)
	}
	r.ID = id
	return nil
}

// GetByID retrieves a logistics record of a trip
func (a *LogisticsAdapter) GetByID(ctx context.Context, tripID, id int64) (*entities.LogisticsRecord, error) {
	row, err := a.queryRow(ctx, a.selectLogistics().Where(goqu.Ex{"l.id": id, "l.trip_id": tripID}))
	if err != nil {
		return nil, err
	}
	r, err := scanLogistics(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("logistics record %d not found in trip %d", id, tripID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get logistics record", err)
	}
	return r, nil
}

// ListByTrip returns a trip's logistics records ordered by id
func (a *LogisticsAdapter) ListByTrip(ctx context.Context, tripID int64) ([]entities.LogisticsRecord, error) {
	rows, err := a.query(ctx, a.selectLogistics().Where(goqu.Ex{"l.trip_id": tripID}).Order(goqu.I("l.id").Asc()))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list logistics records", err)
	}
	defer rows.Close()

	records := make([]entities.LogisticsRecord, 0)
	for rows.Next() {
		r, err := scanLogistics(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan logistics record", err)
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list logistics records", err)
	}
	return records, nil
}

// Update writes all editable logistics fields
func (a *LogisticsAdapter) Update(ctx context.Context, r *entities.LogisticsRecord) error {
	result, err := a.exec(ctx, a.update("logistics").Set(logisticsRecord(r)).Where(goqu.Ex{"id": r.ID, "trip_id": r.TripID}))
	if err != nil {
		return apperrors.NewInternalError("failed to update logistics record", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("logistics record %d not found in trip %d", r.ID, r.TripID))
	}
	return nil
}

// Delete removes a logistics record
func (a *LogisticsAdapter) Delete(ctx context.Context, tripID, id int64) (bool, error) {
	return a.deleteScoped(ctx, "logistics", tripID, id)
}

func scanLogistics(row rowScanner) (*entities.LogisticsRecord, error) {
	var (
		r          entities.LogisticsRecord
		assignedID sql.NullInt64
		createdAt  int64
	)
	if err := row.Scan(
		&r.ID, &r.TripID, &r.Category, &r.Title, &r.Details,
		&assignedID, &r.AssignedTo, &r.DueDate, &r.Completed, &createdAt,
	); err != nil {
		return nil, err
	}
	r.AssignedParticipantID = idPtr(assignedID)
	r.CreatedAt = fromMillis(createdAt)
	return &r, nil
}
