package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/repositories"
	"github.com/mr-jafner/TravelTogether-sub000/internal/infrastructure/clients/database"
	apperrors "github.com/mr-jafner/TravelTogether-sub000/pkg/errors"
)

// ParticipantAdapter implements ParticipantRepository
type ParticipantAdapter struct {
	store
}

// NewParticipantAdapter creates a new participant adapter
func NewParticipantAdapter(client *database.Client) repositories.ParticipantRepository {
	return &ParticipantAdapter{store: store{client: client}}
}

var participantColumns = []interface{}{"id", "uid", "trip_id", "name", "is_current_user", "role", "created_at"}

// Create inserts a participant and assigns a UID when none is set
func (a *ParticipantAdapter) Create(ctx context.Context, p *entities.Participant) error {
	if p.UID == "" {
		p.UID = uuid.New().String()
	}
	if p.Role == "" {
		p.Role = entities.RoleParticipant
	}
	p.CreatedAt = now()

	id, err := a.client.InsertID(ctx, a.insert("participants").Rows(goqu.Record{
		"uid":             p.UID,
		"trip_id":         p.TripID,
		"name":            p.Name,
		"is_current_user": p.IsCurrentUser,
		"role":            string(p.Role),
		"created_at":      toMillis(p.CreatedAt),
	}))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.NewValidationError(fmt.Sprintf("participant %q already exists in this trip", p.Name))
		}
		return apperrors.NewInternalError("failed to create participant", err)
	}

	p.ID = id
	return nil
}

// GetByID retrieves a participant of a trip
func (a *ParticipantAdapter) GetByID(ctx context.Context, tripID, id int64) (*entities.Participant, error) {
	return a.getOne(ctx, goqu.Ex{"trip_id": tripID, "id": id}, fmt.Sprintf("participant %d", id))
}

// GetByName retrieves a participant of a trip by display name
func (a *ParticipantAdapter) GetByName(ctx context.Context, tripID int64, name string) (*entities.Participant, error) {
	return a.getOne(ctx, goqu.Ex{"trip_id": tripID, "name": name}, fmt.Sprintf("participant %q", name))
}

func (a *ParticipantAdapter) getOne(ctx context.Context, where goqu.Ex, label string) (*entities.Participant, error) {
	row, err := a.queryRow(ctx, a.from("participants").Select(participantColumns...).Where(where))
	if err != nil {
		return nil, err
	}

	p, err := scanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(label + " not found in this trip")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get participant", err)
	}
	return p, nil
}

// ListByTrip returns the participants of a trip in insertion order
func (a *ParticipantAdapter) ListByTrip(ctx context.Context, tripID int64) ([]entities.Participant, error) {
	rows, err := a.query(ctx, a.from("participants").
		Select(participantColumns...).
		Where(goqu.Ex{"trip_id": tripID}).
		Order(goqu.C("id").Asc()))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list participants", err)
	}
	defer rows.Close()

	participants := make([]entities.Participant, 0)
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan participant", err)
		}
		participants = append(participants, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list participants", err)
	}
	return participants, nil
}

// CountByTrips returns participant counts keyed by trip ID
func (a *ParticipantAdapter) CountByTrips(ctx context.Context, tripIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(tripIDs))
	if len(tripIDs) == 0 {
		return counts, nil
	}

	rows, err := a.query(ctx, a.from("participants").
		Select("trip_id", goqu.COUNT("*")).
		Where(goqu.C("trip_id").In(tripIDs)).
		GroupBy("trip_id"))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to count participants", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			tripID int64
			count  int
		)
		if err := rows.Scan(&tripID, &count); err != nil {
			return nil, apperrors.NewInternalError("failed to scan participant count", err)
		}
		counts[tripID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to count participants", err)
	}
	return counts, nil
}

// Update renames a participant or changes their role. Ratings and records
// reference the participant id, so nothing else is rewritten.
func (a *ParticipantAdapter) Update(ctx context.Context, p *entities.Participant) error {
	result, err := a.exec(ctx, a.update("participants").Set(goqu.Record{
		"name":            p.Name,
		"role":            string(p.Role),
		"is_current_user": p.IsCurrentUser,
	}).Where(goqu.Ex{"id": p.ID, "trip_id": p.TripID}))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.NewValidationError(fmt.Sprintf("participant %q already exists in this trip", p.Name))
		}
		return apperrors.NewInternalError("failed to update participant", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("participant %d not found in this trip", p.ID))
	}
	return nil
}

// Delete removes a participant; their ratings cascade and travel/logistics
// references are cleared
func (a *ParticipantAdapter) Delete(ctx context.Context, tripID, id int64) (bool, error) {
	return a.deleteScoped(ctx, "participants", tripID, id)
}

// AssignMissingCreators gives the creator role to the lowest-id participant of
// every trip without one
func (a *ParticipantAdapter) AssignMissingCreators(ctx context.Context) (int64, error) {
	return a.assignCreators(ctx, nil)
}

// EnsureCreator promotes the lowest-id participant of tripID when the trip
// has no creator left
func (a *ParticipantAdapter) EnsureCreator(ctx context.Context, tripID int64) (int64, error) {
	return a.assignCreators(ctx, goqu.Ex{"trip_id": tripID})
}

func (a *ParticipantAdapter) assignCreators(ctx context.Context, scope goqu.Ex) (int64, error) {
	firstWithoutCreator := a.client.Dialect().From("participants").
		Select(goqu.MIN("id")).
		GroupBy("trip_id").
		Having(goqu.SUM(
			goqu.Case().When(goqu.C("role").Eq(string(entities.RoleCreator)), 1).Else(0),
		).Eq(0))
	if scope != nil {
		firstWithoutCreator = firstWithoutCreator.Where(scope)
	}

	result, err := a.exec(ctx, a.update("participants").
		Set(goqu.Record{"role": string(entities.RoleCreator)}).
		Where(goqu.C("id").In(firstWithoutCreator)))
	if err != nil {
		return 0, apperrors.NewInternalError("failed to assign creators", err)
	}
	return result.RowsAffected()
}

// TransferCreator makes participantID the only creator of tripID in one
// statement. participantID must belong to the trip.
func (a *ParticipantAdapter) TransferCreator(ctx context.Context, tripID, participantID int64) error {
	role := goqu.Case().
		When(goqu.C("id").Eq(participantID), string(entities.RoleCreator)).
		Else(string(entities.RoleParticipant))

	result, err := a.exec(ctx, a.update("participants").
		Set(goqu.Record{"role": role}).
		Where(goqu.Ex{"trip_id": tripID}))
	if err != nil {
		return apperrors.NewInternalError("failed to transfer creator role", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	} else if n == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("trip %d has no participants", tripID))
	}
	return nil
}

func scanParticipant(row rowScanner) (*entities.Participant, error) {
	var (
		p         entities.Participant
		role      string
		createdAt int64
	)
	if err := row.Scan(&p.ID, &p.UID, &p.TripID, &p.Name, &p.IsCurrentUser, &role, &createdAt); err != nil {
		return nil, err
	}
	p.Role = entities.ParticipantRole(role)
	p.CreatedAt = fromMillis(createdAt)
	return &p, nil
}
