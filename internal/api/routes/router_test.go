package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr-jafner/TravelTogether-sub000/internal/api/handlers"
	"github.com/mr-jafner/TravelTogether-sub000/internal/api/routes"
	"github.com/mr-jafner/TravelTogether-sub000/internal/application/services"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/consensus"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
	queryservices "github.com/mr-jafner/TravelTogether-sub000/internal/query/services"
	"github.com/mr-jafner/TravelTogether-sub000/internal/testutil"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	client, repos := testutil.NewSQLiteStore(t)

	reads := queryservices.NewTripQueryService(repos, nil, 60, nil)
	trips := services.NewTripService(client, repos, reads)
	participants := services.NewParticipantService(client, repos, reads)
	items := services.NewItemService(client, repos, reads)
	ratings := services.NewRatingService(repos, reads, reads, nil)
	records := services.NewRecordService(repos, reads)

	router := routes.NewRouter(routes.Handlers{
		Trip:        handlers.NewTripHandler(trips, reads),
		Participant: handlers.NewParticipantHandler(participants),
		Item:        handlers.NewItemHandler(items, ratings, reads),
		Record:      handlers.NewRecordHandler(records),
		Consensus:   handlers.NewConsensusHandler(),
		Health:      handlers.NewHealthHandler(client, nil),
	}, repos.Ratings, []string{"*"}, nil)
	return router.SetupRoutes()
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details"`
}

func createTrip(t *testing.T, h http.Handler) entities.TripView {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/trips", map[string]interface{}{
		"name":         "Test",
		"destinations": []string{"X"},
		"startDate":    "2025-01-01",
		"endDate":      "2025-01-05",
		"participants": []string{"A", "B", "C"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[entities.TripView](t, rec)
}

func TestRouter_EndToEndScenario(t *testing.T) {
	h := newServer(t)
	trip := createTrip(t, h)
	assert.Equal(t, []string{"X"}, trip.Destinations)
	require.Len(t, trip.Participants, 3)

	rec := do(t, h, http.MethodPost, fmt.Sprintf("/api/trips/%d/activities", trip.ID), map[string]interface{}{
		"name": "Kayaking",
		"cost": 30,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	activity := decode[entities.Activity](t, rec)

	for user, rating := range map[string]int{"A": 5, "B": 5, "C": 0} {
		rec = do(t, h, http.MethodPost,
			fmt.Sprintf("/api/trips/%d/activities/%d/rate/%s", trip.ID, activity.ID, user),
			map[string]int{"rating": rating})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/api/trips/%d", trip.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[entities.TripView](t, rec)

	require.Len(t, view.Activities, 1)
	got := view.Activities[0]
	assert.Len(t, got.Ratings, 3)
	assert.InDelta(t, 3.333, got.Summary.Mean, 0.001)
	assert.Equal(t, 3.3, got.Summary.DisplayMean)
	assert.Equal(t, 3, got.Summary.ParticipantCount)
	assert.Equal(t, 2, got.Summary.InterestedCount)
	assert.Equal(t, 2, got.Summary.MustCount)
	assert.Equal(t, 1, got.Summary.WontCount)
	assert.Equal(t, consensus.BandNeutral, got.Summary.Band)
}

func TestRouter_RateByBodyReturnsSummary(t *testing.T) {
	h := newServer(t)
	trip := createTrip(t, h)
	rec := do(t, h, http.MethodPost, fmt.Sprintf("/api/trips/%d/restaurants", trip.ID), map[string]interface{}{
		"name":           "Bistro",
		"dietaryOptions": []string{"vegan"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	restaurant := decode[entities.Restaurant](t, rec)

	path := fmt.Sprintf("/api/trips/%d/restaurants/%d/rate", trip.ID, restaurant.ID)
	rec = do(t, h, http.MethodPost, path, map[string]interface{}{"participantName": "B", "rating": 4})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	participantID := trip.Participants[0].ID
	rec = do(t, h, http.MethodPost, path, map[string]interface{}{"participantId": participantID, "rating": 4})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	result := decode[entities.ItemRatings](t, rec)
	assert.Equal(t, entities.KindRestaurant, result.Kind)
	require.Len(t, result.Ratings, 2)
	assert.Equal(t, "A", result.Ratings[0].ParticipantName)
	assert.Equal(t, 4.0, result.Summary.Mean)
	assert.Equal(t, consensus.BandStrong, result.Summary.Band)

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/api/trips/%d/restaurants/%d/ratings", trip.ID, restaurant.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[entities.ItemRatings](t, rec).Ratings, 2)
}

func TestRouter_RatingValidation(t *testing.T) {
	h := newServer(t)
	trip := createTrip(t, h)
	rec := do(t, h, http.MethodPost, fmt.Sprintf("/api/trips/%d/activities", trip.ID), map[string]string{"name": "Zoo"})
	require.Equal(t, http.StatusCreated, rec.Code)
	activity := decode[entities.Activity](t, rec)
	path := fmt.Sprintf("/api/trips/%d/activities/%d/rate/A", trip.ID, activity.ID)

	tests := []struct {
		name   string
		path   string
		body   interface{}
		status int
	}{
		{"above range", path, map[string]interface{}{"rating": 6}, http.StatusBadRequest},
		{"below range", path, map[string]interface{}{"rating": -1}, http.StatusBadRequest},
		{"fractional", path, map[string]interface{}{"rating": 2.5}, http.StatusBadRequest},
		{"missing", path, map[string]interface{}{}, http.StatusBadRequest},
		{"wrong type", path, map[string]interface{}{"rating": "five"}, http.StatusBadRequest},
		{"unknown user", fmt.Sprintf("/api/trips/%d/activities/%d/rate/Zed", trip.ID, activity.ID), map[string]int{"rating": 3}, http.StatusNotFound},
		{"unknown item", fmt.Sprintf("/api/trips/%d/activities/999/rate/A", trip.ID), map[string]int{"rating": 3}, http.StatusNotFound},
		{"unknown trip", fmt.Sprintf("/api/trips/999/activities/%d/rate/A", activity.ID), map[string]int{"rating": 3}, http.StatusNotFound},
		{"bad item id", fmt.Sprintf("/api/trips/%d/activities/abc/rate/A", trip.ID), map[string]int{"rating": 3}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[errorBody](t, rec).Error)
		})
	}
}

func TestRouter_CreateTripValidation(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodPost, "/api/trips", map[string]interface{}{
		"name":         "Backwards",
		"destinations": []string{"X"},
		"startDate":    "2025-01-05",
		"endDate":      "2025-01-01",
		"participants": []string{"A", "A"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Len(t, body.Details, 2)

	req := httptest.NewRequest(http.MethodPost, "/api/trips", bytes.NewBufferString("{not json"))
	raw := httptest.NewRecorder()
	h.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestRouter_TripLifecycle(t *testing.T) {
	h := newServer(t)
	trip := createTrip(t, h)
	tripPath := fmt.Sprintf("/api/trips/%d", trip.ID)

	rec := do(t, h, http.MethodPut, tripPath, map[string]interface{}{
		"name":         "Renamed",
		"destinations": []string{"Y", "Z"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[entities.TripView](t, rec)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, []string{"Y", "Z"}, updated.Destinations)
	assert.Equal(t, "2025-01-01", updated.StartDate)

	rec = do(t, h, http.MethodGet, "/api/trips", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Trips []entities.TripSummary `json:"trips"`
		Count int                    `json:"count"`
	}](t, rec)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, 3, list.Trips[0].ParticipantCount)

	rec = do(t, h, http.MethodGet, tripPath+"?user=B", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	withViewer := decode[entities.TripView](t, rec)
	require.NotNil(t, withViewer.CurrentUser)
	assert.Equal(t, "B", withViewer.CurrentUser.Name)

	rec = do(t, h, http.MethodGet, tripPath+"?user=Nobody", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[entities.TripView](t, rec).CurrentUser)

	rec = do(t, h, http.MethodDelete, tripPath, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, tripPath, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodDelete, tripPath, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/trips/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ParticipantsAndRecords(t *testing.T) {
	h := newServer(t)
	trip := createTrip(t, h)
	base := fmt.Sprintf("/api/trips/%d", trip.ID)

	rec := do(t, h, http.MethodPost, base+"/participants", map[string]string{"name": "D"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	d := decode[entities.Participant](t, rec)

	rec = do(t, h, http.MethodPost, base+"/participants", map[string]string{"name": "D"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, fmt.Sprintf("%s/participants/%d", base, d.ID), map[string]string{"name": "Dee"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Dee", decode[entities.Participant](t, rec).Name)

	rec = do(t, h, http.MethodPost, base+"/travel", map[string]interface{}{
		"participantId": d.ID,
		"mode":          "flight",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	travel := decode[entities.TravelRecord](t, rec)
	assert.Equal(t, "Dee", travel.ParticipantName)

	rec = do(t, h, http.MethodDelete, fmt.Sprintf("%s/participants/%d", base, d.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, base+"/travel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	travelList := decode[struct {
		Travel []entities.TravelRecord `json:"travel"`
	}](t, rec)
	require.Len(t, travelList.Travel, 1)
	assert.Nil(t, travelList.Travel[0].ParticipantID)

	rec = do(t, h, http.MethodPost, base+"/lodging", map[string]interface{}{"name": "Hostel", "cost": 80})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	lodging := decode[entities.LodgingRecord](t, rec)

	rec = do(t, h, http.MethodPut, fmt.Sprintf("%s/lodging/%d", base, lodging.ID), map[string]interface{}{"name": "Hotel"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hotel", decode[entities.LodgingRecord](t, rec).Name)

	rec = do(t, h, http.MethodPost, base+"/logistics", map[string]interface{}{"title": "Passports", "completed": true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	task := decode[entities.LogisticsRecord](t, rec)
	assert.True(t, task.Completed)

	rec = do(t, h, http.MethodDelete, fmt.Sprintf("%s/logistics/%d", base, task.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodDelete, fmt.Sprintf("%s/logistics/%d", base, task.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Export(t *testing.T) {
	h := newServer(t)
	trip := createTrip(t, h)
	base := fmt.Sprintf("/api/trips/%d", trip.ID)

	rec := do(t, h, http.MethodPost, base+"/activities", map[string]string{"name": "Hike"})
	require.Equal(t, http.StatusCreated, rec.Code)
	activity := decode[entities.Activity](t, rec)
	rec = do(t, h, http.MethodPost, fmt.Sprintf("%s/activities/%d/rate/C", base, activity.ID), map[string]int{"rating": 4})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, base+"/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	bundle := decode[entities.ExportBundle](t, rec)
	assert.Equal(t, "Test", bundle.TripInfo.Name)
	assert.Equal(t, entities.ExportVersion, bundle.ExportMetadata.Version)
	require.Len(t, bundle.Activities, 1)
	assert.Equal(t, []entities.ExportRating{{Participant: "C", Rating: 4}}, bundle.Activities[0].Ratings)
	assert.Equal(t, 4.0, bundle.Activities[0].AverageRating)
}

func TestRouter_ConsensusEndpoints(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodPost, "/api/consensus/preview", map[string]interface{}{
		"ratings":           []int{5, 5, 1},
		"totalParticipants": 10,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	summary := decode[consensus.Summary](t, rec)
	assert.Equal(t, consensus.BandDivisive, summary.Band)
	assert.Equal(t, 10, summary.TotalParticipants)

	rec = do(t, h, http.MethodPost, "/api/consensus/preview", map[string]interface{}{"ratings": []int{7}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/consensus/rules", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, consensus.CurrentRules(), decode[consensus.Rules](t, rec))
}

func TestRouter_HealthAndConditionalGet(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]interface{}](t, rec)["status"])

	trip := createTrip(t, h)
	path := fmt.Sprintf("/api/trips/%d", trip.ID)
	rec = do(t, h, http.MethodGet, path, nil)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	h.ServeHTTP(cached, req)
	assert.Equal(t, http.StatusNotModified, cached.Code)
	assert.Empty(t, cached.Body.Bytes())
}

func TestRouter_CORSPreflight(t *testing.T) {
	h := newServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/trips", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_ListItemsUsePluralPaths(t *testing.T) {
	h := newServer(t)
	trip := createTrip(t, h)

	rec := do(t, h, http.MethodPost, fmt.Sprintf("/api/trips/%d/activities", trip.ID), map[string]string{"name": "Museum"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = do(t, h, http.MethodPost, fmt.Sprintf("/api/trips/%d/restaurants", trip.ID), map[string]interface{}{
		"name":           "Cantina",
		"dietaryOptions": []string{"vegan"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/api/trips/%d/activities", trip.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	activities := decode[struct {
		Activities []entities.ActivityView `json:"activities"`
		Count      int                     `json:"count"`
	}](t, rec)
	require.Equal(t, 1, activities.Count)
	assert.Equal(t, "Museum", activities.Activities[0].Name)

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/api/trips/%d/restaurants", trip.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	restaurants := decode[struct {
		Restaurants []entities.RestaurantView `json:"restaurants"`
		Count       int                       `json:"count"`
	}](t, rec)
	require.Equal(t, 1, restaurants.Count)
	assert.Equal(t, []string{"vegan"}, restaurants.Restaurants[0].DietaryOptions)
}
