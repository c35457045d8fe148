package repositories

import (
	"context"

	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
)

// ActivityRepository defines the interface for activity data operations.
// Lookups are scoped to a trip: an activity of another trip is not found.
type ActivityRepository interface {
	Create(ctx context.Context, activity *entities.Activity) error
	GetByID(ctx context.Context, tripID, id int64) (*entities.Activity, error)
	ListByTrip(ctx context.Context, tripID int64) ([]entities.Activity, error)
	Update(ctx context.Context, activity *entities.Activity) error
	Delete(ctx context.Context, tripID, id int64) (bool, error)
}

// RestaurantRepository defines the interface for restaurant data operations.
// Create and Update write dietary options row by row.
type RestaurantRepository interface {
	Create(ctx context.Context, restaurant *entities.Restaurant) error
	GetByID(ctx context.Context, tripID, id int64) (*entities.Restaurant, error)
	ListByTrip(ctx context.Context, tripID int64) ([]entities.Restaurant, error)
	Update(ctx context.Context, restaurant *entities.Restaurant) error
	Delete(ctx context.Context, tripID, id int64) (bool, error)
}
