package services

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/repositories"
	"github.com/mr-jafner/TravelTogether-sub000/internal/infrastructure/observability"
	apperrors "github.com/mr-jafner/TravelTogether-sub000/pkg/errors"
)

// CreateTripInput is the payload of trip creation. The first participant
// becomes the creator.
type CreateTripInput struct {
	Name         string   `json:"name"`
	Destinations []string `json:"destinations"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	Participants []string `json:"participants"`
}

// UpdateTripInput is a partial trip update; nil fields are left unchanged.
// Destinations, when present, replace the whole list.
type UpdateTripInput struct {
	Name         *string   `json:"name"`
	StartDate    *string   `json:"startDate"`
	EndDate      *string   `json:"endDate"`
	Destinations *[]string `json:"destinations"`
}

// TripService handles trip writes
type TripService struct {
	tx           TxRunner
	trips        repositories.TripRepository
	participants repositories.ParticipantRepository
	views        ViewInvalidator
}

// NewTripService creates a new trip service
func NewTripService(tx TxRunner, repos repositories.Registry, views ViewInvalidator) *TripService {
	return &TripService{
		tx:           tx,
		trips:        repos.Trips,
		participants: repos.Participants,
		views:        views,
	}
}

// Create validates the input and writes the trip, its destinations and its
// participants in one transaction
func (s *TripService) Create(ctx context.Context, in CreateTripInput) (*entities.Trip, error) {
	ctx, span := observability.StartSpan(ctx, "TripService.Create")
	defer span.End()

	var p problems
	name := p.requireText("name", in.Name)
	p.dateRange(in.StartDate, in.EndDate)
	if len(in.Destinations) == 0 {
		p.add("destinations must contain at least one entry")
	}
	destinations := p.entries("destinations", in.Destinations)
	if len(in.Participants) == 0 {
		p.add("participants must contain at least one name")
	}
	names := p.names("participants", in.Participants)
	if err := p.err("invalid trip"); err != nil {
		return nil, err
	}

	trip := &entities.Trip{
		Name:      name,
		StartDate: strings.TrimSpace(in.StartDate),
		EndDate:   strings.TrimSpace(in.EndDate),
		CreatedBy: names[0],
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.trips.Create(ctx, trip); err != nil {
			return err
		}
		if err := s.trips.ReplaceDestinations(ctx, trip.ID, destinations); err != nil {
			return err
		}
		for i, n := range names {
			participant := &entities.Participant{
				TripID:        trip.ID,
				Name:          n,
				IsCurrentUser: i == 0,
				Role:          entities.RoleParticipant,
			}
			if i == 0 {
				participant.Role = entities.RoleCreator
			}
			if err := s.participants.Create(ctx, participant); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("trip.id", trip.ID))
	observability.LoggerFromContext(ctx).Info().
		Int64("trip_id", trip.ID).
		Int("participants", len(names)).
		Msg("Trip created")
	return trip, nil
}

// Update applies a partial update. The resulting dates must still satisfy
// start < end.
func (s *TripService) Update(ctx context.Context, tripID int64, in UpdateTripInput) (*entities.Trip, error) {
	ctx, span := observability.StartSpan(ctx, "TripService.Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("trip.id", tripID))

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	var p problems
	if in.Name != nil {
		trip.Name = p.requireText("name", *in.Name)
	}
	if in.StartDate != nil {
		trip.StartDate = strings.TrimSpace(*in.StartDate)
	}
	if in.EndDate != nil {
		trip.EndDate = strings.TrimSpace(*in.EndDate)
	}
	if in.StartDate != nil || in.EndDate != nil {
		p.dateRange(trip.StartDate, trip.EndDate)
	}
	var destinations []string
	if in.Destinations != nil {
		if len(*in.Destinations) == 0 {
			p.add("destinations must contain at least one entry")
		}
		destinations = p.entries("destinations", *in.Destinations)
	}
	if err := p.err("invalid trip update"); err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.trips.Update(ctx, trip); err != nil {
			return err
		}
		if in.Destinations != nil {
			return s.trips.ReplaceDestinations(ctx, trip.ID, destinations)
		}
		return nil
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	s.views.Invalidate(ctx, tripID)
	return trip, nil
}

// Delete removes a trip and everything it owns
func (s *TripService) Delete(ctx context.Context, tripID int64) error {
	deleted, err := s.trips.Delete(ctx, tripID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NewNotFoundError(fmt.Sprintf("trip %d not found", tripID))
	}

	s.views.Invalidate(ctx, tripID)
	observability.LoggerFromContext(ctx).Info().Int64("trip_id", tripID).Msg("Trip deleted")
	return nil
}
