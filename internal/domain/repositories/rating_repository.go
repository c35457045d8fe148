package repositories

import (
	"context"

	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
)

// RatingRepository is the rating ledger for activities and restaurants
type RatingRepository interface {
	// Upsert records value for (itemID, participantID) in a single statement,
	// overwriting any previous value
	Upsert(ctx context.Context, kind entities.ItemKind, itemID, participantID int64, value int) error

	// ListByItem returns the ratings of one item ordered by participant name
	ListByItem(ctx context.Context, kind entities.ItemKind, itemID int64) ([]entities.Rating, error)

	// ListByItems returns ratings for several items keyed by item ID
	ListByItems(ctx context.Context, kind entities.ItemKind, itemIDs []int64) (map[int64][]entities.Rating, error)

	// Count returns the number of rating rows for (itemID, participantID)
	Count(ctx context.Context, kind entities.ItemKind, itemID, participantID int64) (int, error)
}
