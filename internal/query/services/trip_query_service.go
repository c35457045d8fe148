package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/consensus"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/providers"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/repositories"
	"github.com/mr-jafner/TravelTogether-sub000/internal/infrastructure/observability"
	"github.com/mr-jafner/TravelTogether-sub000/internal/query/loaders"
	apperrors "github.com/mr-jafner/TravelTogether-sub000/pkg/errors"
)

const (
	tripViewCacheName = "trip_view"

	// initialGeneration is used until a trip's first invalidation
	initialGeneration = "0"

	// generationTTLSeconds outlives any view TTL so an expired generation
	// never exposes a view stored under an older one
	generationTTLSeconds = 7 * 24 * 60 * 60
)

// TripViewGenerationKey returns the key holding a trip's current view
// generation
func TripViewGenerationKey(tripID int64) string {
	return fmt.Sprintf("trip:view:%d:gen", tripID)
}

// TripViewCacheKey returns the cache key of a trip's base view for one
// generation. Invalidation moves the trip to a new generation, so a view
// built across a write is stored under a key no reader asks for.
func TripViewCacheKey(tripID int64, generation string) string {
	return fmt.Sprintf("trip:view:%d:%s", tripID, generation)
}

// TripQueryService assembles read models: the trip view, the trip list, item
// rating listings and the export bundle
type TripQueryService struct {
	repos    repositories.Registry
	cache    providers.CacheProvider
	cacheTTL int
	metrics  *observability.Metrics
	now      func() time.Time
}

// NewTripQueryService creates a new trip query service. cache may be nil.
func NewTripQueryService(
	repos repositories.Registry,
	cache providers.CacheProvider,
	cacheTTLSeconds int,
	metrics *observability.Metrics,
) *TripQueryService {
	return &TripQueryService{
		repos:    repos,
		cache:    cache,
		cacheTTL: cacheTTLSeconds,
		metrics:  metrics,
		now:      time.Now,
	}
}

// WithClock replaces the export timestamp source
func (s *TripQueryService) WithClock(now func() time.Time) *TripQueryService {
	s.now = now
	return s
}

// BuildTripView returns the full trip. currentUser is the participant named
// by viewer; with no viewer the legacy isCurrentUser row is used, and an
// unknown viewer yields no current user.
func (s *TripQueryService) BuildTripView(ctx context.Context, tripID int64, viewer string) (*entities.TripView, error) {
	ctx, span := observability.StartSpan(ctx, "TripQueryService.BuildTripView")
	defer span.End()
	span.SetAttributes(attribute.Int64("trip.id", tripID))

	view, err := s.cachedBaseView(ctx, tripID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	view.CurrentUser = resolveCurrentUser(view.Participants, viewer)
	return view, nil
}

func (s *TripQueryService) cachedBaseView(ctx context.Context, tripID int64) (*entities.TripView, error) {
	if s.cache == nil {
		return s.baseView(ctx, tripID)
	}

	generation, err := s.generation(ctx, tripID)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Int64("trip_id", tripID).Msg("Trip view generation read failed, bypassing cache")
		observability.RecordCacheMiss(ctx, s.metrics, tripViewCacheName)
		return s.baseView(ctx, tripID)
	}

	key := TripViewCacheKey(tripID, generation)
	data, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var view entities.TripView
		if jsonErr := json.Unmarshal(data, &view); jsonErr == nil {
			observability.RecordCacheHit(ctx, s.metrics, tripViewCacheName)
			return &view, nil
		}
		observability.LoggerFromContext(ctx).Warn().Str("key", key).Msg("Discarding undecodable cached trip view")
	case !errors.Is(err, providers.ErrCacheMiss):
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("Trip view cache read failed")
	}
	observability.RecordCacheMiss(ctx, s.metrics, tripViewCacheName)

	view, err := s.baseView(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(view); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("Trip view cache write failed")
		}
	}
	return view, nil
}

// baseView builds the trip view without the per-request current user
func (s *TripQueryService) baseView(ctx context.Context, tripID int64) (*entities.TripView, error) {
	trip, err := s.repos.Trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	destinations, err := s.repos.Trips.ListDestinations(ctx, tripID)
	if err != nil {
		return nil, err
	}

	participants, err := s.repos.Participants.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	total := len(participants)
	activities, err := s.activityViews(ctx, tripID, total)
	if err != nil {
		return nil, err
	}
	restaurants, err := s.restaurantViews(ctx, tripID, total)
	if err != nil {
		return nil, err
	}

	return &entities.TripView{
		Trip:         *trip,
		Destinations: destinationNames(destinations),
		Participants: participants,
		Activities:   activities,
		Restaurants:  restaurants,
	}, nil
}

// ListActivities returns a trip's activities with ratings and consensus
func (s *TripQueryService) ListActivities(ctx context.Context, tripID int64) ([]entities.ActivityView, error) {
	total, err := s.participantCount(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return s.activityViews(ctx, tripID, total)
}

// ListRestaurants returns a trip's restaurants with ratings and consensus
func (s *TripQueryService) ListRestaurants(ctx context.Context, tripID int64) ([]entities.RestaurantView, error) {
	total, err := s.participantCount(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return s.restaurantViews(ctx, tripID, total)
}

func (s *TripQueryService) participantCount(ctx context.Context, tripID int64) (int, error) {
	exists, err := s.repos.Trips.Exists(ctx, tripID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, apperrors.NewNotFoundError(fmt.Sprintf("trip %d not found", tripID))
	}
	counts, err := s.repos.Participants.CountByTrips(ctx, []int64{tripID})
	if err != nil {
		return 0, err
	}
	return counts[tripID], nil
}

func (s *TripQueryService) activityViews(ctx context.Context, tripID int64, totalParticipants int) ([]entities.ActivityView, error) {
	activities, err := s.repos.Activities.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(activities))
	for i, a := range activities {
		ids[i] = a.ID
	}
	ratings, err := loaders.LoadRatings(ctx, s.loadersFor(ctx).ActivityRatings, ids)
	if err != nil {
		return nil, err
	}

	views := make([]entities.ActivityView, len(activities))
	for i, a := range activities {
		r := ratings[a.ID]
		views[i] = entities.ActivityView{
			Activity: a,
			Ratings:  r,
			Summary:  consensus.Summarize(entities.RatingValues(r), totalParticipants),
		}
	}
	return views, nil
}

func (s *TripQueryService) restaurantViews(ctx context.Context, tripID int64, totalParticipants int) ([]entities.RestaurantView, error) {
	restaurants, err := s.repos.Restaurants.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(restaurants))
	for i, r := range restaurants {
		ids[i] = r.ID
	}
	ratings, err := loaders.LoadRatings(ctx, s.loadersFor(ctx).RestaurantRatings, ids)
	if err != nil {
		return nil, err
	}

	views := make([]entities.RestaurantView, len(restaurants))
	for i, r := range restaurants {
		rr := ratings[r.ID]
		views[i] = entities.RestaurantView{
			Restaurant: r,
			Ratings:    rr,
			Summary:    consensus.Summarize(entities.RatingValues(rr), totalParticipants),
		}
	}
	return views, nil
}

// loadersFor uses the request's loaders when the middleware attached them
func (s *TripQueryService) loadersFor(ctx context.Context) *loaders.Loaders {
	if l, ok := loaders.For(ctx); ok {
		return l
	}
	return loaders.NewLoaders(s.repos.Ratings)
}

// ItemRatings returns who rated one item and the resulting consensus. The
// ledger is read directly so a rating written earlier in the request is seen.
func (s *TripQueryService) ItemRatings(ctx context.Context, tripID int64, kind entities.ItemKind, itemID int64) (*entities.ItemRatings, error) {
	total, err := s.participantCount(ctx, tripID)
	if err != nil {
		return nil, err
	}

	switch kind {
	case entities.KindActivity:
		_, err = s.repos.Activities.GetByID(ctx, tripID, itemID)
	case entities.KindRestaurant:
		_, err = s.repos.Restaurants.GetByID(ctx, tripID, itemID)
	default:
		err = apperrors.NewValidationError(fmt.Sprintf("unknown item kind %q", kind))
	}
	if err != nil {
		return nil, err
	}

	ratings, err := s.repos.Ratings.ListByItem(ctx, kind, itemID)
	if err != nil {
		return nil, err
	}

	return &entities.ItemRatings{
		Kind:    kind,
		ItemID:  itemID,
		Ratings: ratings,
		Summary: consensus.Summarize(entities.RatingValues(ratings), total),
	}, nil
}

// ListTrips returns trips newest first with destinations and participant counts
func (s *TripQueryService) ListTrips(ctx context.Context, filter entities.TripFilter) ([]entities.TripSummary, error) {
	ctx, span := observability.StartSpan(ctx, "TripQueryService.ListTrips")
	defer span.End()

	trips, err := s.repos.Trips.List(ctx, filter)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	ids := make([]int64, len(trips))
	for i, t := range trips {
		ids[i] = t.ID
	}

	destinations, err := s.repos.Trips.ListDestinationsByTrips(ctx, ids)
	if err != nil {
		return nil, err
	}
	counts, err := s.repos.Participants.CountByTrips(ctx, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]entities.TripSummary, len(trips))
	for i, t := range trips {
		summaries[i] = entities.TripSummary{
			Trip:             *t,
			Destinations:     destinationNames(destinations[t.ID]),
			ParticipantCount: counts[t.ID],
		}
	}
	return summaries, nil
}

// BuildExportView returns the flattened trip. It always reads the store, and
// two calls without intervening writes differ only in exportedAt.
func (s *TripQueryService) BuildExportView(ctx context.Context, tripID int64) (*entities.ExportBundle, error) {
	ctx, span := observability.StartSpan(ctx, "TripQueryService.BuildExportView")
	defer span.End()
	span.SetAttributes(attribute.Int64("trip.id", tripID))

	view, err := s.baseView(ctx, tripID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	travel, err := s.repos.Travel.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	lodging, err := s.repos.Lodging.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	logistics, err := s.repos.Logistics.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	participants := make([]entities.ExportParticipant, len(view.Participants))
	for i, p := range view.Participants {
		participants[i] = entities.ExportParticipant{Name: p.Name, Role: p.Role}
	}

	activities := make([]entities.ExportItem, len(view.Activities))
	for i, a := range view.Activities {
		activities[i] = exportItem(a.ID, a.Name, a.Category, a.Location, a.Cost, a.Duration, a.Ratings, a.Summary)
	}

	restaurants := make([]entities.ExportRestaurant, len(view.Restaurants))
	for i, r := range view.Restaurants {
		restaurants[i] = entities.ExportRestaurant{
			ExportItem:     exportItem(r.ID, r.Name, r.Category, r.Location, r.Cost, r.Duration, r.Ratings, r.Summary),
			PriceRange:     r.PriceRange,
			GroupCapacity:  r.GroupCapacity,
			DietaryOptions: r.DietaryOptions,
		}
	}

	return &entities.ExportBundle{
		TripInfo: entities.ExportTripInfo{
			ID:           view.ID,
			Name:         view.Name,
			StartDate:    view.StartDate,
			EndDate:      view.EndDate,
			CreatedBy:    view.CreatedBy,
			CreatedAt:    view.CreatedAt,
			Destinations: view.Destinations,
			Participants: participants,
		},
		Activities:  activities,
		Restaurants: restaurants,
		Travel:      travel,
		Lodging:     lodging,
		Logistics:   logistics,
		ExportMetadata: entities.ExportMetadata{
			ExportedAt: s.now().UTC(),
			Version:    entities.ExportVersion,
		},
	}, nil
}

func (s *TripQueryService) generation(ctx context.Context, tripID int64) (string, error) {
	data, err := s.cache.Get(ctx, TripViewGenerationKey(tripID))
	if errors.Is(err, providers.ErrCacheMiss) {
		return initialGeneration, nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Invalidate moves the trip to a new view generation. Failures are logged:
// the stale entry still expires after the TTL.
func (s *TripQueryService) Invalidate(ctx context.Context, tripID int64) {
	if s.cache == nil {
		return
	}
	key := TripViewGenerationKey(tripID)
	if err := s.cache.Set(ctx, key, []byte(uuid.NewString()), generationTTLSeconds); err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Str("key", key).Msg("Failed to invalidate trip view cache")
	}
}

func exportItem(id int64, name, category, location string, cost float64, duration string, ratings []entities.Rating, summary consensus.Summary) entities.ExportItem {
	pairs := make([]entities.ExportRating, len(ratings))
	for i, r := range ratings {
		pairs[i] = entities.ExportRating{Participant: r.ParticipantName, Rating: r.Value}
	}
	return entities.ExportItem{
		ID:               id,
		Name:             name,
		Category:         category,
		Location:         location,
		Cost:             cost,
		Duration:         duration,
		Ratings:          pairs,
		AverageRating:    summary.DisplayMean,
		ParticipantCount: summary.ParticipantCount,
		InterestedCount:  summary.InterestedCount,
		MustCount:        summary.MustCount,
		WontCount:        summary.WontCount,
		Band:             summary.Band,
	}
}

func destinationNames(destinations []entities.Destination) []string {
	names := make([]string, len(destinations))
	for i, d := range destinations {
		names[i] = d.Name
	}
	return names
}

func resolveCurrentUser(participants []entities.Participant, viewer string) *entities.Participant {
	viewer = strings.TrimSpace(viewer)
	for i := range participants {
		p := participants[i]
		if viewer != "" && p.Name == viewer {
			return &p
		}
		if viewer == "" && p.IsCurrentUser {
			return &p
		}
	}
	return nil
}
