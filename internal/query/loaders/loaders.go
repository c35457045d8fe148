// Package loaders batches rating lookups per request so a trip view issues
// one ratings query per item kind no matter how many items the trip has.
package loaders

import (
	"context"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/repositories"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// batchWait is short because callers load a whole trip's items at once.
const batchWait = time.Millisecond

// RatingLoader loads the ratings of one item kind by item ID
type RatingLoader = dataloader.Loader[int64, []entities.Rating]

// Loaders contains the dataloaders for one request
type Loaders struct {
	ActivityRatings   *RatingLoader
	RestaurantRatings *RatingLoader
}

// NewLoaders creates a new instance of Loaders
func NewLoaders(ratingRepo repositories.RatingRepository) *Loaders {
	return &Loaders{
		ActivityRatings:   newRatingLoader(ratingRepo, entities.KindActivity),
		RestaurantRatings: newRatingLoader(ratingRepo, entities.KindRestaurant),
	}
}

// Ratings returns the loader for kind
func (l *Loaders) Ratings(kind entities.ItemKind) *RatingLoader {
	if kind == entities.KindRestaurant {
		return l.RestaurantRatings
	}
	return l.ActivityRatings
}

func newRatingLoader(ratingRepo repositories.RatingRepository, kind entities.ItemKind) *RatingLoader {
	return dataloader.NewBatchedLoader(
		func(ctx context.Context, keys []int64) []*dataloader.Result[[]entities.Rating] {
			results := make([]*dataloader.Result[[]entities.Rating], len(keys))
			byItem, err := ratingRepo.ListByItems(ctx, kind, keys)

			for i, key := range keys {
				if err != nil {
					results[i] = &dataloader.Result[[]entities.Rating]{Error: err}
					continue
				}
				ratings := byItem[key]
				if ratings == nil {
					ratings = []entities.Rating{}
				}
				results[i] = &dataloader.Result[[]entities.Rating]{Data: ratings}
			}
			return results
		},
		dataloader.WithWait[int64, []entities.Rating](batchWait),
	)
}

// LoadRatings loads the ratings of every item in ids with a single batch
func LoadRatings(ctx context.Context, loader *RatingLoader, ids []int64) (map[int64][]entities.Rating, error) {
	result := make(map[int64][]entities.Rating, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	values, errs := loader.LoadMany(ctx, ids)()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	for i, id := range ids {
		result[id] = values[i]
	}
	return result, nil
}

// For returns the loaders attached to ctx, if any
func For(ctx context.Context) (*Loaders, bool) {
	l, ok := ctx.Value(loadersKey).(*Loaders)
	return l, ok
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}
