package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr-jafner/TravelTogether-sub000/internal/adapters/database"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
	dbclient "github.com/mr-jafner/TravelTogether-sub000/internal/infrastructure/clients/database"
	"github.com/mr-jafner/TravelTogether-sub000/internal/testutil"
	"github.com/mr-jafner/TravelTogether-sub000/pkg/config"
	apperrors "github.com/mr-jafner/TravelTogether-sub000/pkg/errors"
)

func newTestClient(t *testing.T) *dbclient.Client {
	t.Helper()
	client, err := dbclient.NewClient(context.Background(), &config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "trips.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

type fixture struct {
	client       *dbclient.Client
	trips        *database.TripAdapter
	participants *database.ParticipantAdapter
	activities   *database.ActivityAdapter
	restaurants  *database.RestaurantAdapter
	ratings      *database.RatingAdapter
}

func newFixture(t *testing.T) *fixture {
	client := newTestClient(t)
	return &fixture{
		client:       client,
		trips:        database.NewTripAdapter(client).(*database.TripAdapter),
		participants: database.NewParticipantAdapter(client).(*database.ParticipantAdapter),
		activities:   database.NewActivityAdapter(client).(*database.ActivityAdapter),
		restaurants:  database.NewRestaurantAdapter(client).(*database.RestaurantAdapter),
		ratings:      database.NewRatingAdapter(client).(*database.RatingAdapter),
	}
}

func (f *fixture) createTrip(t *testing.T, name string, participants ...string) (*entities.Trip, []entities.Participant) {
	t.Helper()
	ctx := context.Background()

	trip := &entities.Trip{Name: name, StartDate: "2025-01-01", EndDate: "2025-01-05"}
	require.NoError(t, f.trips.Create(ctx, trip))

	created := make([]entities.Participant, 0, len(participants))
	for i, n := range participants {
		p := &entities.Participant{TripID: trip.ID, Name: n, IsCurrentUser: i == 0, Role: entities.RoleParticipant}
		if i == 0 {
			p.Role = entities.RoleCreator
		}
		require.NoError(t, f.participants.Create(ctx, p))
		created = append(created, *p)
	}
	return trip, created
}

func (f *fixture) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.client.DB().QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestTripAdapter_CreateAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trip, _ := f.createTrip(t, "Lisbon")
	assert.NotZero(t, trip.ID)

	got, err := f.trips.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", got.Name)
	assert.Equal(t, "2025-01-01", got.StartDate)
	assert.True(t, trip.CreatedAt.Equal(got.CreatedAt))

	_, err = f.trips.GetByID(ctx, trip.ID+100)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTripAdapter_ReplaceDestinations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip, _ := f.createTrip(t, "Grand tour")

	require.NoError(t, f.trips.ReplaceDestinations(ctx, trip.ID, []string{"Paris", "Rome"}))
	require.NoError(t, f.trips.ReplaceDestinations(ctx, trip.ID, []string{"Tokyo"}))

	destinations, err := f.trips.ListDestinations(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, destinations, 1)
	assert.Equal(t, "Tokyo", destinations[0].Name)
	assert.Equal(t, 0, destinations[0].OrderIndex)
	assert.Equal(t, 1, f.count(t, "destinations"))
}

func TestTripAdapter_ListNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, _ := f.createTrip(t, "first")
	second, _ := f.createTrip(t, "second")

	trips, err := f.trips.List(ctx, entities.TripFilter{})
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, second.ID, trips[0].ID)
	assert.Equal(t, first.ID, trips[1].ID)
}

func TestTripAdapter_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip, people := f.createTrip(t, "Cascade", "A", "B")
	require.NoError(t, f.trips.ReplaceDestinations(ctx, trip.ID, []string{"X", "Y"}))

	activity := &entities.Activity{TripID: trip.ID, Name: "Hike"}
	require.NoError(t, f.activities.Create(ctx, activity))
	restaurant := &entities.Restaurant{TripID: trip.ID, Name: "Tasca", DietaryOptions: []string{"vegan", "gluten-free"}}
	require.NoError(t, f.restaurants.Create(ctx, restaurant))
	require.NoError(t, f.ratings.Upsert(ctx, entities.KindActivity, activity.ID, people[0].ID, 4))
	require.NoError(t, f.ratings.Upsert(ctx, entities.KindRestaurant, restaurant.ID, people[1].ID, 2))

	deleted, err := f.trips.Delete(ctx, trip.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	for _, table := range []string{
		"trips", "destinations", "participants", "activities", "restaurants",
		"restaurant_dietary_options", "activity_ratings", "restaurant_ratings",
	} {
		assert.Zero(t, f.count(t, table), table)
	}

	deleted, err = f.trips.Delete(ctx, trip.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestParticipantAdapter_UniqueNamePerTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip, _ := f.createTrip(t, "Dupes", "Sarah")
	other, _ := f.createTrip(t, "Other", "Sarah")

	err := f.participants.Create(ctx, &entities.Participant{TripID: trip.ID, Name: "Sarah"})
	assert.True(t, apperrors.IsValidation(err))

	people, err := f.participants.ListByTrip(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.NotEmpty(t, people[0].UID)
}

func TestParticipantAdapter_RenameKeepsRatings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip, people := f.createTrip(t, "Rename", "Sarah")
	activity := &entities.Activity{TripID: trip.ID, Name: "Museum"}
	require.NoError(t, f.activities.Create(ctx, activity))
	require.NoError(t, f.ratings.Upsert(ctx, entities.KindActivity, activity.ID, people[0].ID, 5))

	p := people[0]
	p.Name = "Sarah J."
	require.NoError(t, f.participants.Update(ctx, &p))

	ratings, err := f.ratings.ListByItem(ctx, entities.KindActivity, activity.ID)
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.Equal(t, "Sarah J.", ratings[0].ParticipantName)
}

func TestParticipantAdapter_AssignMissingCreators(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip, people := f.createTrip(t, "Legacy", "A", "B")
	_, err := f.client.DB().Exec("UPDATE participants SET role = 'participant'")
	require.NoError(t, err)
	f.createTrip(t, "Modern", "C", "D")

	changed, err := f.participants.AssignMissingCreators(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	got, err := f.participants.GetByID(ctx, trip.ID, people[0].ID)
	require.NoError(t, err)
	assert.Equal(t, entities.RoleCreator, got.Role)

	changed, err = f.participants.AssignMissingCreators(ctx)
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func TestRatingAdapter_UpsertKeepsOneRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip, people := f.createTrip(t, "Votes", "A")
	activity := &entities.Activity{TripID: trip.ID, Name: "Kayak"}
	require.NoError(t, f.activities.Create(ctx, activity))

	require.NoError(t, f.ratings.Upsert(ctx, entities.KindActivity, activity.ID, people[0].ID, 1))
	require.NoError(t, f.ratings.Upsert(ctx, entities.KindActivity, activity.ID, people[0].ID, 4))

	n, err := f.ratings.Count(ctx, entities.KindActivity, activity.ID, people[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ratings, err := f.ratings.ListByItem(ctx, entities.KindActivity, activity.ID)
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.Equal(t, 4, ratings[0].Value)
}

func TestRatingAdapter_ListByItemsOrdersByName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip, people := f.createTrip(t, "Order", "Zoe", "Adam")
	first := &entities.Activity{TripID: trip.ID, Name: "One"}
	second := &entities.Activity{TripID: trip.ID, Name: "Two"}
	require.NoError(t, f.activities.Create(ctx, first))
	require.NoError(t, f.activities.Create(ctx, second))

	require.NoError(t, f.ratings.Upsert(ctx, entities.KindActivity, first.ID, people[0].ID, 5))
	require.NoError(t, f.ratings.Upsert(ctx, entities.KindActivity, first.ID, people[1].ID, 3))

	byItem, err := f.ratings.ListByItems(ctx, entities.KindActivity, []int64{first.ID, second.ID})
	require.NoError(t, err)
	require.Len(t, byItem[first.ID], 2)
	assert.Equal(t, "Adam", byItem[first.ID][0].ParticipantName)
	assert.Equal(t, "Zoe", byItem[first.ID][1].ParticipantName)
	assert.Empty(t, byItem[second.ID])
}

func TestRatingAdapter_RejectsOutOfRangeAtStorage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip, people := f.createTrip(t, "Check", "A")
	activity := &entities.Activity{TripID: trip.ID, Name: "Climb"}
	require.NoError(t, f.activities.Create(ctx, activity))

	err := f.ratings.Upsert(ctx, entities.KindActivity, activity.ID, people[0].ID, 6)
	assert.Error(t, err)
}

func TestRatingAdapter_StorageConstraintsSurface(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip, people := f.createTrip(t, "Gone", "A")
	activity := &entities.Activity{TripID: trip.ID, Name: "Kayak"}
	require.NoError(t, f.activities.Create(ctx, activity))

	err := f.ratings.Upsert(ctx, entities.KindActivity, activity.ID, people[0].ID, -1)
	assert.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(err))

	deleted, err := f.activities.Delete(ctx, trip.ID, activity.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	err = f.ratings.Upsert(ctx, entities.KindActivity, activity.ID, people[0].ID, 4)
	assert.Error(t, err)

	err = f.ratings.Upsert(ctx, entities.KindRestaurant, 9999, people[0].ID, 4)
	assert.Error(t, err)
	assert.Zero(t, testutil.CountRows(t, f.client, "activity_ratings"))
	assert.Zero(t, testutil.CountRows(t, f.client, "restaurant_ratings"))
}

func TestRestaurantAdapter_DietaryOptions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip, _ := f.createTrip(t, "Food")

	r := &entities.Restaurant{
		TripID:         trip.ID,
		Name:           "Cervejaria",
		PriceRange:     "$$",
		GroupCapacity:  12,
		DietaryOptions: []string{"vegan", "vegan", "kids-friendly"},
	}
	require.NoError(t, f.restaurants.Create(ctx, r))

	got, err := f.restaurants.GetByID(ctx, trip.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"vegan", "vegan", "kids-friendly"}, got.DietaryOptions)
	assert.Equal(t, 12, got.GroupCapacity)

	got.DietaryOptions = []string{"gluten-free"}
	require.NoError(t, f.restaurants.Update(ctx, got))

	list, err := f.restaurants.ListByTrip(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"gluten-free"}, list[0].DietaryOptions)
}

func TestActivityAdapter_ScopedToTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip, _ := f.createTrip(t, "Mine")
	other, _ := f.createTrip(t, "Theirs")
	activity := &entities.Activity{TripID: trip.ID, Name: "Walk", Cost: 12.5}
	require.NoError(t, f.activities.Create(ctx, activity))

	_, err := f.activities.GetByID(ctx, other.ID, activity.ID)
	assert.True(t, apperrors.IsNotFound(err))

	deleted, err := f.activities.Delete(ctx, other.ID, activity.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRecordAdapters_ParticipantReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip, people := f.createTrip(t, "Records", "A", "B")
	travel := database.NewTravelAdapter(f.client)
	logistics := database.NewLogisticsAdapter(f.client)
	lodging := database.NewLodgingAdapter(f.client)

	flight := &entities.TravelRecord{TripID: trip.ID, ParticipantID: &people[1].ID, Mode: "flight", DepartureLocation: "JFK", ArrivalLocation: "LIS"}
	require.NoError(t, travel.Create(ctx, flight))
	task := &entities.LogisticsRecord{TripID: trip.ID, Title: "Book transfer", AssignedParticipantID: &people[1].ID}
	require.NoError(t, logistics.Create(ctx, task))
	require.NoError(t, lodging.Create(ctx, &entities.LodgingRecord{TripID: trip.ID, Name: "Casa", Cost: 420}))

	got, err := travel.GetByID(ctx, trip.ID, flight.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", got.ParticipantName)

	deleted, err := f.participants.Delete(ctx, trip.ID, people[1].ID)
	require.NoError(t, err)
	require.True(t, deleted)

	got, err = travel.GetByID(ctx, trip.ID, flight.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParticipantID)
	assert.Empty(t, got.ParticipantName)

	tasks, err := logistics.ListByTrip(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Nil(t, tasks[0].AssignedParticipantID)

	stays, err := lodging.ListByTrip(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, stays, 1)
	assert.Equal(t, 420.0, stays[0].Cost)
}

func TestClient_RunInTxRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.client.RunInTx(ctx, func(ctx context.Context) error {
		trip := &entities.Trip{Name: "Half", StartDate: "2025-01-01", EndDate: "2025-01-02"}
		if err := f.trips.Create(ctx, trip); err != nil {
			return err
		}
		return f.participants.Create(ctx, &entities.Participant{TripID: trip.ID + 999, Name: "ghost"})
	})
	require.Error(t, err)
	assert.Zero(t, f.count(t, "trips"))
}
