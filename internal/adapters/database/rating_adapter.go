package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/repositories"
	"github.com/mr-jafner/TravelTogether-sub000/internal/infrastructure/clients/database"
	"github.com/mr-jafner/TravelTogether-sub000/pkg/config"
	apperrors "github.com/mr-jafner/TravelTogether-sub000/pkg/errors"
)

// RatingAdapter implements RatingRepository over the activity_ratings and
// restaurant_ratings tables, which share one shape
type RatingAdapter struct {
	store
}

// NewRatingAdapter creates a new rating adapter
func NewRatingAdapter(client *database.Client) repositories.RatingRepository {
	return &RatingAdapter{store: store{client: client}}
}

func ratingTable(kind entities.ItemKind) (string, error) {
	switch kind {
	case entities.KindActivity:
		return "activity_ratings", nil
	case entities.KindRestaurant:
		return "restaurant_ratings", nil
	}
	return "", apperrors.NewValidationError(fmt.Sprintf("unknown item kind %q", kind))
}

// Upsert records one participant's rating of one item. A single
// INSERT ... ON CONFLICT DO UPDATE keeps (item, participant) unique under
// concurrent submissions. CHECK and foreign key violations are returned.
func (a *RatingAdapter) Upsert(ctx context.Context, kind entities.ItemKind, itemID, participantID int64, value int) error {
	table, err := ratingTable(kind)
	if err != nil {
		return err
	}
	updatedAt := toMillis(now())

	// goqu's sqlite3 dialect renders ON CONFLICT as INSERT OR IGNORE, which
	// would swallow the rating CHECK and the item foreign key.
	if a.client.Driver() == config.DriverSQLite {
		query := fmt.Sprintf(`INSERT INTO %s (item_id, participant_id, rating, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT (item_id, participant_id) DO UPDATE SET rating = excluded.rating, updated_at = excluded.updated_at`, table)
		if _, err := a.client.Conn(ctx).ExecContext(ctx, query, itemID, participantID, value, updatedAt); err != nil {
			return apperrors.NewInternalError("failed to record rating", err)
		}
		return nil
	}

	ds := a.insert(table).
		Rows(goqu.Record{
			"item_id":        itemID,
			"participant_id": participantID,
			"rating":         value,
			"updated_at":     updatedAt,
		}).
		OnConflict(goqu.DoUpdate("item_id, participant_id", goqu.Record{
			"rating":     goqu.L("excluded.rating"),
			"updated_at": goqu.L("excluded.updated_at"),
		}))

	if _, err := a.exec(ctx, ds); err != nil {
		return apperrors.NewInternalError("failed to record rating", err)
	}
	return nil
}

// ListByItem returns the ratings of one item ordered by participant name
func (a *RatingAdapter) ListByItem(ctx context.Context, kind entities.ItemKind, itemID int64) ([]entities.Rating, error) {
	byItem, err := a.ListByItems(ctx, kind, []int64{itemID})
	if err != nil {
		return nil, err
	}
	if byItem[itemID] == nil {
		return []entities.Rating{}, nil
	}
	return byItem[itemID], nil
}

// ListByItems loads the ratings of several items in one query, each list
// ordered by participant name then participant id
func (a *RatingAdapter) ListByItems(ctx context.Context, kind entities.ItemKind, itemIDs []int64) (map[int64][]entities.Rating, error) {
	result := make(map[int64][]entities.Rating, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}

	table, err := ratingTable(kind)
	if err != nil {
		return nil, err
	}

	rows, err := a.query(ctx, a.from(goqu.T(table).As("r")).
		Join(goqu.T("participants").As("p"), goqu.On(goqu.I("p.id").Eq(goqu.I("r.participant_id")))).
		Select("r.item_id", "r.participant_id", "p.name", "r.rating", "r.updated_at").
		Where(goqu.I("r.item_id").In(itemIDs)).
		Order(goqu.I("r.item_id").Asc(), goqu.I("p.name").Asc(), goqu.I("p.id").Asc()))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list ratings", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r         entities.Rating
			updatedAt int64
		)
		if err := rows.Scan(&r.ItemID, &r.ParticipantID, &r.ParticipantName, &r.Value, &updatedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan rating", err)
		}
		r.UpdatedAt = fromMillis(updatedAt)
		result[r.ItemID] = append(result[r.ItemID], r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list ratings", err)
	}
	return result, nil
}

// Count returns the number of rating rows for (itemID, participantID)
func (a *RatingAdapter) Count(ctx context.Context, kind entities.ItemKind, itemID, participantID int64) (int, error) {
	table, err := ratingTable(kind)
	if err != nil {
		return 0, err
	}

	row, err := a.queryRow(ctx, a.from(table).
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"item_id": itemID, "participant_id": participantID}))
	if err != nil {
		return 0, err
	}
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count ratings", err)
	}
	return count, nil
}
