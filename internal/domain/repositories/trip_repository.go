package repositories

import (
	"context"

	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
)

// TripRepository defines the interface for trip data operations
type TripRepository interface {
	// Create inserts a trip and sets its ID and timestamps
	Create(ctx context.Context, trip *entities.Trip) error

	// GetByID retrieves a trip by ID
	GetByID(ctx context.Context, id int64) (*entities.Trip, error)

	// Exists reports whether a trip row exists
	Exists(ctx context.Context, id int64) (bool, error)

	// List retrieves trips newest first
	List(ctx context.Context, filter entities.TripFilter) ([]*entities.Trip, error)

	// Update writes name and dates
	Update(ctx context.Context, trip *entities.Trip) error

	// Delete removes a trip and, by cascade, everything it owns.
	// It reports whether a row was removed.
	Delete(ctx context.Context, id int64) (bool, error)

	// ReplaceDestinations deletes all destinations of a trip and inserts names
	// in order with order_index 0..n-1
	ReplaceDestinations(ctx context.Context, tripID int64, names []string) error

	// ListDestinations returns a trip's destinations ordered by order_index
	ListDestinations(ctx context.Context, tripID int64) ([]entities.Destination, error)

	// ListDestinationsByTrips returns destinations for several trips keyed by trip ID
	ListDestinationsByTrips(ctx context.Context, tripIDs []int64) (map[int64][]entities.Destination, error)
}
