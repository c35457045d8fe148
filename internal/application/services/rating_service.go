package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/consensus"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/repositories"
	"github.com/mr-jafner/TravelTogether-sub000/internal/infrastructure/observability"
	apperrors "github.com/mr-jafner/TravelTogether-sub000/pkg/errors"
)

// ItemRatingsReader returns the current ratings and consensus of one item
type ItemRatingsReader interface {
	ItemRatings(ctx context.Context, tripID int64, kind entities.ItemKind, itemID int64) (*entities.ItemRatings, error)
}

// RateInput is one participant's vote on one item
type RateInput struct {
	Kind   entities.ItemKind
	ItemID int64
	Who    ActingParticipant
	Value  int
}

// RatingService records votes in the rating ledger
type RatingService struct {
	repos   repositories.Registry
	reader  ItemRatingsReader
	views   ViewInvalidator
	metrics *observability.Metrics
}

// NewRatingService creates a new rating service. metrics may be nil.
func NewRatingService(repos repositories.Registry, reader ItemRatingsReader, views ViewInvalidator, metrics *observability.Metrics) *RatingService {
	return &RatingService{
		repos:   repos,
		reader:  reader,
		views:   views,
		metrics: metrics,
	}
}

// Rate validates the value, checks that the item and the participant belong
// to the trip, then upserts. It returns the recomputed ratings of the item.
func (s *RatingService) Rate(ctx context.Context, tripID int64, in RateInput) (*entities.ItemRatings, error) {
	ctx, span := observability.StartSpan(ctx, "RatingService.Rate")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("trip.id", tripID),
		attribute.String("item.kind", in.Kind.String()),
		attribute.Int64("item.id", in.ItemID),
	)

	if !in.Kind.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown item kind %q", in.Kind))
	}
	if !consensus.ValidRating(in.Value) {
		return nil, apperrors.NewValidationError(
			"invalid rating",
			fmt.Sprintf("rating must be an integer between %d and %d", consensus.MinRating, consensus.MaxRating),
		)
	}

	if err := requireTrip(ctx, s.repos.Trips, tripID); err != nil {
		return nil, err
	}
	if err := s.requireItem(ctx, tripID, in.Kind, in.ItemID); err != nil {
		return nil, err
	}
	participant, err := resolveParticipant(ctx, s.repos.Participants, tripID, in.Who)
	if err != nil {
		return nil, err
	}

	if err := s.repos.Ratings.Upsert(ctx, in.Kind, in.ItemID, participant.ID, in.Value); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	observability.RecordRating(ctx, s.metrics, in.Kind.String(), in.Value)
	s.views.Invalidate(ctx, tripID)
	observability.LoggerFromContext(ctx).Debug().
		Int64("trip_id", tripID).
		Str("kind", in.Kind.String()).
		Int64("item_id", in.ItemID).
		Int64("participant_id", participant.ID).
		Int("rating", in.Value).
		Msg("Rating recorded")

	return s.reader.ItemRatings(ctx, tripID, in.Kind, in.ItemID)
}

func (s *RatingService) requireItem(ctx context.Context, tripID int64, kind entities.ItemKind, itemID int64) error {
	var err error
	if kind == entities.KindActivity {
		_, err = s.repos.Activities.GetByID(ctx, tripID, itemID)
	} else {
		_, err = s.repos.Restaurants.GetByID(ctx, tripID, itemID)
	}
	return err
}
