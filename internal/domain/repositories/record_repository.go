package repositories

import (
	"context"

	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
)

// TravelRepository defines the interface for travel record operations
type TravelRepository interface {
	Create(ctx context.Context, record *entities.TravelRecord) error
	GetByID(ctx context.Context, tripID, id int64) (*entities.TravelRecord, error)
	ListByTrip(ctx context.Context, tripID int64) ([]entities.TravelRecord, error)
	Update(ctx context.Context, record *entities.TravelRecord) error
	Delete(ctx context.Context, tripID, id int64) (bool, error)
}

// LodgingRepository defines the interface for lodging record operations
type LodgingRepository interface {
	Create(ctx context.Context, record *entities.LodgingRecord) error
	GetByID(ctx context.Context, tripID, id int64) (*entities.LodgingRecord, error)
	ListByTrip(ctx context.Context, tripID int64) ([]entities.LodgingRecord, error)
	Update(ctx context.Context, record *entities.LodgingRecord) error
	Delete(ctx context.Context, tripID, id int64) (bool, error)
}

// LogisticsRepository defines the interface for logistics record operations
type LogisticsRepository interface {
	Create(ctx context.Context, record *entities.LogisticsRecord) error
	GetByID(ctx context.Context, tripID, id int64) (*entities.LogisticsRecord, error)
	ListByTrip(ctx context.Context, tripID int64) ([]entities.LogisticsRecord, error)
	Update(ctx context.Context, record *entities.LogisticsRecord) error
	Delete(ctx context.Context, tripID, id int64) (bool, error)
}
