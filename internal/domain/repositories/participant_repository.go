package repositories

import (
	"context"

	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
)

// ParticipantRepository defines the interface for participant data operations
type ParticipantRepository interface {
	Create(ctx context.Context, participant *entities.Participant) error
	GetByID(ctx context.Context, tripID, id int64) (*entities.Participant, error)
	GetByName(ctx context.Context, tripID int64, name string) (*entities.Participant, error)
	ListByTrip(ctx context.Context, tripID int64) ([]entities.Participant, error)
	CountByTrips(ctx context.Context, tripIDs []int64) (map[int64]int, error)
	Update(ctx context.Context, participant *entities.Participant) error
	Delete(ctx context.Context, tripID, id int64) (bool, error)

	// AssignMissingCreators gives the creator role to the lowest-id participant
	// of every trip that has none. It returns the number of rows changed.
	AssignMissingCreators(ctx context.Context) (int64, error)

	// EnsureCreator does the same for one trip
	EnsureCreator(ctx context.Context, tripID int64) (int64, error)

	// TransferCreator makes participantID the trip's only creator
	TransferCreator(ctx context.Context, tripID, participantID int64) error
}
