package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/consensus"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/providers"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/repositories"
	"github.com/mr-jafner/TravelTogether-sub000/internal/mocks"
	"github.com/mr-jafner/TravelTogether-sub000/internal/testutil"
	apperrors "github.com/mr-jafner/TravelTogether-sub000/pkg/errors"
)

type seeded struct {
	trip         *entities.Trip
	participants []entities.Participant
	hike         *entities.Activity
	museum       *entities.Activity
	tasca        *entities.Restaurant
}

// seedTrip writes a three person trip with two rated activities and one
// rated restaurant straight through the repositories.
func seedTrip(t *testing.T, repos repositories.Registry) seeded {
	t.Helper()
	ctx := context.Background()

	trip := &entities.Trip{Name: "Lisbon", StartDate: "2025-01-01", EndDate: "2025-01-05", CreatedBy: "Ana"}
	require.NoError(t, repos.Trips.Create(ctx, trip))
	require.NoError(t, repos.Trips.ReplaceDestinations(ctx, trip.ID, []string{"Lisbon", "Sintra"}))

	var people []entities.Participant
	for i, name := range []string{"Ana", "Bruno", "Carla"} {
		p := &entities.Participant{TripID: trip.ID, Name: name, IsCurrentUser: i == 0, Role: entities.RoleParticipant}
		if i == 0 {
			p.Role = entities.RoleCreator
		}
		require.NoError(t, repos.Participants.Create(ctx, p))
		people = append(people, *p)
	}

	hike := &entities.Activity{TripID: trip.ID, Name: "Hike", Category: "outdoors", Cost: 0}
	museum := &entities.Activity{TripID: trip.ID, Name: "Museum", Category: "culture", Cost: 15}
	require.NoError(t, repos.Activities.Create(ctx, hike))
	require.NoError(t, repos.Activities.Create(ctx, museum))
	tasca := &entities.Restaurant{TripID: trip.ID, Name: "Tasca", PriceRange: "$", DietaryOptions: []string{"vegetarian"}}
	require.NoError(t, repos.Restaurants.Create(ctx, tasca))

	for i, v := range []int{5, 5, 0} {
		require.NoError(t, repos.Ratings.Upsert(ctx, entities.KindActivity, hike.ID, people[i].ID, v))
	}
	for i, v := range []int{4, 4} {
		require.NoError(t, repos.Ratings.Upsert(ctx, entities.KindActivity, museum.ID, people[i].ID, v))
	}
	require.NoError(t, repos.Ratings.Upsert(ctx, entities.KindRestaurant, tasca.ID, people[2].ID, 3))

	return seeded{trip: trip, participants: people, hike: hike, museum: museum, tasca: tasca}
}

func TestTripQueryService_BuildTripView(t *testing.T) {
	_, repos := testutil.NewSQLiteStore(t)
	s := seedTrip(t, repos)
	svc := NewTripQueryService(repos, nil, 60, nil)

	view, err := svc.BuildTripView(context.Background(), s.trip.ID, "")
	require.NoError(t, err)

	assert.Equal(t, "Lisbon", view.Name)
	assert.Equal(t, []string{"Lisbon", "Sintra"}, view.Destinations)
	require.Len(t, view.Participants, 3)
	require.NotNil(t, view.CurrentUser)
	assert.Equal(t, "Ana", view.CurrentUser.Name)

	require.Len(t, view.Activities, 2)
	hike := view.Activities[0]
	assert.Equal(t, "Hike", hike.Name)
	assert.Len(t, hike.Ratings, 3)
	assert.Equal(t, 3.3, hike.Summary.DisplayMean)
	assert.Equal(t, 2, hike.Summary.InterestedCount)
	assert.Equal(t, 2, hike.Summary.MustCount)
	assert.Equal(t, 1, hike.Summary.WontCount)
	assert.Equal(t, consensus.BandNeutral, hike.Summary.Band)

	museum := view.Activities[1]
	assert.Equal(t, 4.0, museum.Summary.Mean)
	assert.Equal(t, consensus.BandStrong, museum.Summary.Band)

	require.Len(t, view.Restaurants, 1)
	tasca := view.Restaurants[0]
	assert.Equal(t, []string{"vegetarian"}, tasca.DietaryOptions)
	assert.Equal(t, 3, tasca.Summary.TotalParticipants)
	// One interested out of three participants is below ceil(0.6*3).
	assert.Equal(t, consensus.BandDivisive, tasca.Summary.Band)
}

func TestTripQueryService_CurrentUserFromViewer(t *testing.T) {
	_, repos := testutil.NewSQLiteStore(t)
	s := seedTrip(t, repos)
	svc := NewTripQueryService(repos, nil, 60, nil)
	ctx := context.Background()

	view, err := svc.BuildTripView(ctx, s.trip.ID, "Bruno")
	require.NoError(t, err)
	require.NotNil(t, view.CurrentUser)
	assert.Equal(t, s.participants[1].ID, view.CurrentUser.ID)

	view, err = svc.BuildTripView(ctx, s.trip.ID, "Nobody")
	require.NoError(t, err)
	assert.Nil(t, view.CurrentUser)
}

func TestTripQueryService_NotFound(t *testing.T) {
	_, repos := testutil.NewSQLiteStore(t)
	svc := NewTripQueryService(repos, nil, 60, nil)
	ctx := context.Background()

	_, err := svc.BuildTripView(ctx, 42, "")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = svc.BuildExportView(ctx, 42)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = svc.ListActivities(ctx, 42)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTripQueryService_ExportRoundTrip(t *testing.T) {
	_, repos := testutil.NewSQLiteStore(t)
	s := seedTrip(t, repos)
	svc := NewTripQueryService(repos, nil, 60, nil)

	bundle, err := svc.BuildExportView(context.Background(), s.trip.ID)
	require.NoError(t, err)

	total := len(bundle.TripInfo.Participants)
	require.Equal(t, 3, total)
	require.Len(t, bundle.Activities, 2)
	for _, item := range bundle.Activities {
		values := make([]int, len(item.Ratings))
		for i, r := range item.Ratings {
			values[i] = r.Rating
		}
		recomputed := consensus.Summarize(values, total)
		assert.Equal(t, recomputed.DisplayMean, item.AverageRating, item.Name)
		assert.Equal(t, recomputed.Band, item.Band, item.Name)
	}

	assert.Equal(t, []entities.ExportRating{
		{Participant: "Ana", Rating: 5},
		{Participant: "Bruno", Rating: 5},
		{Participant: "Carla", Rating: 0},
	}, bundle.Activities[0].Ratings)
	assert.Equal(t, entities.ExportVersion, bundle.ExportMetadata.Version)
}

func TestTripQueryService_ExportIsStable(t *testing.T) {
	_, repos := testutil.NewSQLiteStore(t)
	s := seedTrip(t, repos)

	ticks := []time.Time{
		time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 1, 11, 0, 0, 0, time.UTC),
	}
	call := 0
	svc := NewTripQueryService(repos, nil, 60, nil).WithClock(func() time.Time {
		ts := ticks[call]
		call++
		return ts
	})

	ctx := context.Background()
	first, err := svc.BuildExportView(ctx, s.trip.ID)
	require.NoError(t, err)
	second, err := svc.BuildExportView(ctx, s.trip.ID)
	require.NoError(t, err)

	assert.Equal(t, ticks[0], first.ExportMetadata.ExportedAt)
	assert.Equal(t, ticks[1], second.ExportMetadata.ExportedAt)

	first.ExportMetadata.ExportedAt = time.Time{}
	second.ExportMetadata.ExportedAt = time.Time{}
	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestTripQueryService_ItemRatings(t *testing.T) {
	_, repos := testutil.NewSQLiteStore(t)
	s := seedTrip(t, repos)
	svc := NewTripQueryService(repos, nil, 60, nil)
	ctx := context.Background()

	listing, err := svc.ItemRatings(ctx, s.trip.ID, entities.KindActivity, s.museum.ID)
	require.NoError(t, err)
	assert.Len(t, listing.Ratings, 2)
	assert.Equal(t, consensus.BandStrong, listing.Summary.Band)

	_, err = svc.ItemRatings(ctx, s.trip.ID, entities.KindRestaurant, s.museum.ID+100)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTripQueryService_ListTrips(t *testing.T) {
	_, repos := testutil.NewSQLiteStore(t)
	s := seedTrip(t, repos)
	svc := NewTripQueryService(repos, nil, 60, nil)

	trips, err := svc.ListTrips(context.Background(), entities.TripFilter{})
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, s.trip.ID, trips[0].ID)
	assert.Equal(t, 3, trips[0].ParticipantCount)
	assert.Equal(t, []string{"Lisbon", "Sintra"}, trips[0].Destinations)
}

func TestTripQueryService_CacheMissStoresView(t *testing.T) {
	_, repos := testutil.NewSQLiteStore(t)
	s := seedTrip(t, repos)
	cache := mocks.NewMockCacheProvider(t)
	svc := NewTripQueryService(repos, cache, 30, nil)

	key := TripViewCacheKey(s.trip.ID, "0")
	cache.On("Get", mock.Anything, TripViewGenerationKey(s.trip.ID)).Return(nil, providers.ErrCacheMiss).Once()
	cache.On("Get", mock.Anything, key).Return(nil, providers.ErrCacheMiss).Once()
	cache.On("Set", mock.Anything, key, mock.AnythingOfType("[]uint8"), 30).Return(nil).Once()

	view, err := svc.BuildTripView(context.Background(), s.trip.ID, "Carla")
	require.NoError(t, err)
	assert.Equal(t, "Carla", view.CurrentUser.Name)
}

func TestTripQueryService_CacheHitSkipsStore(t *testing.T) {
	cache := mocks.NewMockCacheProvider(t)
	// Empty registry: any store access would panic.
	svc := NewTripQueryService(repositories.Registry{}, cache, 30, nil)

	cached := entities.TripView{
		Trip:         entities.Trip{ID: 7, Name: "Cached"},
		Participants: []entities.Participant{{ID: 1, Name: "Ana", IsCurrentUser: true}},
	}
	data, err := json.Marshal(cached)
	require.NoError(t, err)
	cache.On("Get", mock.Anything, "trip:view:7:gen").Return([]byte("g2"), nil).Once()
	cache.On("Get", mock.Anything, "trip:view:7:g2").Return(data, nil).Once()

	view, err := svc.BuildTripView(context.Background(), 7, "")
	require.NoError(t, err)
	assert.Equal(t, "Cached", view.Name)
	require.NotNil(t, view.CurrentUser)
	assert.Equal(t, "Ana", view.CurrentUser.Name)
}

func TestTripQueryService_CacheErrorFallsBackToStore(t *testing.T) {
	_, repos := testutil.NewSQLiteStore(t)
	s := seedTrip(t, repos)
	cache := mocks.NewMockCacheProvider(t)
	svc := NewTripQueryService(repos, cache, 30, nil)

	key := TripViewCacheKey(s.trip.ID, "0")
	cache.On("Get", mock.Anything, TripViewGenerationKey(s.trip.ID)).Return(nil, providers.ErrCacheMiss).Once()
	cache.On("Get", mock.Anything, key).Return(nil, errors.New("connection reset")).Once()
	cache.On("Set", mock.Anything, key, mock.Anything, 30).Return(errors.New("connection reset")).Once()

	view, err := svc.BuildTripView(context.Background(), s.trip.ID, "")
	require.NoError(t, err)
	assert.Len(t, view.Activities, 2)
}

func TestTripQueryService_GenerationErrorSkipsCache(t *testing.T) {
	_, repos := testutil.NewSQLiteStore(t)
	s := seedTrip(t, repos)
	cache := mocks.NewMockCacheProvider(t)
	svc := NewTripQueryService(repos, cache, 30, nil)

	cache.On("Get", mock.Anything, TripViewGenerationKey(s.trip.ID)).Return(nil, errors.New("connection reset")).Once()

	view, err := svc.BuildTripView(context.Background(), s.trip.ID, "")
	require.NoError(t, err)
	assert.Len(t, view.Activities, 2)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTripQueryService_ExportNeverUsesCache(t *testing.T) {
	_, repos := testutil.NewSQLiteStore(t)
	s := seedTrip(t, repos)
	cache := mocks.NewMockCacheProvider(t)
	svc := NewTripQueryService(repos, cache, 30, nil)

	_, err := svc.BuildExportView(context.Background(), s.trip.ID)
	require.NoError(t, err)
	cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestTripQueryService_Invalidate(t *testing.T) {
	cache := mocks.NewMockCacheProvider(t)
	svc := NewTripQueryService(repositories.Registry{}, cache, 30, nil)

	var generation string
	cache.On("Set", mock.Anything, "trip:view:3:gen", mock.AnythingOfType("[]uint8"), generationTTLSeconds).
		Run(func(args mock.Arguments) { generation = string(args.Get(2).([]byte)) }).
		Return(nil).Once()
	svc.Invalidate(context.Background(), 3)
	assert.NotEmpty(t, generation)
	assert.NotEqual(t, "0", generation)

	NewTripQueryService(repositories.Registry{}, nil, 30, nil).Invalidate(context.Background(), 3)
}

// memoryCache is a map-backed CacheProvider. beforeSet, when set, runs
// before each write.
type memoryCache struct {
	mu        sync.Mutex
	data      map[string][]byte
	beforeSet func(key string)
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ int) error {
	if c.beforeSet != nil {
		c.beforeSet(key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memoryCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

func TestTripQueryService_WriteDuringBuildIsNotServedStale(t *testing.T) {
	_, repos := testutil.NewSQLiteStore(t)
	s := seedTrip(t, repos)
	cache := newMemoryCache()
	svc := NewTripQueryService(repos, cache, 30, nil)
	ctx := context.Background()

	// A rename commits and invalidates after the first reader built its
	// view but before that view reaches the cache.
	viewKey := TripViewCacheKey(s.trip.ID, "0")
	renamed := false
	cache.beforeSet = func(key string) {
		if key != viewKey || renamed {
			return
		}
		renamed = true
		trip := *s.trip
		trip.Name = "Lisbon and Porto"
		require.NoError(t, repos.Trips.Update(ctx, &trip))
		svc.Invalidate(ctx, s.trip.ID)
	}

	view, err := svc.BuildTripView(ctx, s.trip.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", view.Name)
	require.True(t, renamed)

	view, err = svc.BuildTripView(ctx, s.trip.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Lisbon and Porto", view.Name)

	// The rebuilt view is now the cached one.
	view, err = svc.BuildTripView(ctx, s.trip.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Lisbon and Porto", view.Name)
}
