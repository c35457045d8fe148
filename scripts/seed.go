package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/mr-jafner/TravelTogether-sub000/internal/adapters/database"
	"github.com/mr-jafner/TravelTogether-sub000/internal/application/services"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
	dbclient "github.com/mr-jafner/TravelTogether-sub000/internal/infrastructure/clients/database"
	"github.com/mr-jafner/TravelTogether-sub000/internal/infrastructure/observability"
	queryservices "github.com/mr-jafner/TravelTogether-sub000/internal/query/services"
	"github.com/mr-jafner/TravelTogether-sub000/pkg/config"
)

type seedItem struct {
	name, category, location, duration string
	cost                               float64
	priceRange                         string
	capacity                           int
	dietary                            []string
	ratings                            map[string]int
}

var (
	seedParticipants = []string{"Maya", "Jonas", "Priya", "Tomás"}

	seedActivities = []seedItem{
		{name: "Sunrise hike to Pico do Arieiro", category: "outdoors", location: "Madeira", duration: "4h", cost: 0,
			ratings: map[string]int{"Maya": 5, "Jonas": 4, "Priya": 5, "Tomás": 4}},
		{name: "Levada walk", category: "outdoors", location: "Rabaçal", duration: "3h", cost: 0,
			ratings: map[string]int{"Maya": 3, "Jonas": 0}},
		{name: "Wine tasting", category: "food", location: "Funchal", duration: "2h", cost: 35,
			ratings: map[string]int{"Maya": 2, "Jonas": 5, "Priya": 1, "Tomás": 0}},
	}

	seedRestaurants = []seedItem{
		{name: "Tasca da Sé", category: "portuguese", location: "Funchal", cost: 25, priceRange: "$$", capacity: 10,
			dietary: []string{"vegetarian"}, ratings: map[string]int{"Maya": 4, "Priya": 5, "Tomás": 4}},
		{name: "Mercado food hall", category: "market", location: "Funchal", cost: 12, priceRange: "$", capacity: 30,
			dietary: []string{"vegan", "gluten-free"}, ratings: map[string]int{"Jonas": 3}},
	}
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	observability.InitLogger("traveltogether-seed", cfg.Log.Env, cfg.Log.Level)

	ctx := context.Background()

	client, err := dbclient.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	defer client.Close()

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, deleting all trips before seeding")
		// Every other table cascades from trips.
		if _, err := client.DB().ExecContext(ctx, "DELETE FROM trips"); err != nil {
			log.Fatal().Err(err).Msg("Failed to reset database")
		}
	}

	repos := database.NewRegistry(client)
	reads := queryservices.NewTripQueryService(repos, nil, 0, nil)

	tripService := services.NewTripService(client, repos, reads)
	itemService := services.NewItemService(client, repos, reads)
	ratingService := services.NewRatingService(repos, reads, reads, nil)
	recordService := services.NewRecordService(repos, reads)

	trip, err := tripService.Create(ctx, services.CreateTripInput{
		Name:         "Madeira spring break",
		Destinations: []string{"Funchal", "Porto Moniz", "Santana"},
		StartDate:    "2026-04-10",
		EndDate:      "2026-04-17",
		Participants: seedParticipants,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create trip")
	}

	for _, a := range seedActivities {
		activity, err := itemService.AddActivity(ctx, trip.ID, a.input())
		if err != nil {
			log.Fatal().Err(err).Str("activity", a.name).Msg("Failed to add activity")
		}
		rateAll(ctx, ratingService, trip.ID, entities.KindActivity, activity.ID, a.ratings)
	}

	for _, r := range seedRestaurants {
		restaurant, err := itemService.AddRestaurant(ctx, trip.ID, r.input())
		if err != nil {
			log.Fatal().Err(err).Str("restaurant", r.name).Msg("Failed to add restaurant")
		}
		rateAll(ctx, ratingService, trip.ID, entities.KindRestaurant, restaurant.ID, r.ratings)
	}

	if _, err := recordService.AddLodging(ctx, trip.ID, services.LodgingInput{
		Name:     "Quinta do Mar",
		Address:  "Rua da Praia 12, Funchal",
		CheckIn:  "2026-04-10",
		CheckOut: "2026-04-17",
		Cost:     980,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to add lodging")
	}
	if _, err := recordService.AddLogistics(ctx, trip.ID, services.LogisticsInput{
		Category: "transport",
		Title:    "Book rental car",
		DueDate:  "2026-03-20",
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to add logistics")
	}

	log.Info().Int64("trip_id", trip.ID).Msg("Seeding complete")
}

func (s seedItem) input() services.ItemInput {
	in := services.ItemInput{
		Name:     &s.name,
		Category: &s.category,
		Location: &s.location,
		Cost:     &s.cost,
		Duration: &s.duration,
	}
	if s.priceRange != "" {
		in.PriceRange = &s.priceRange
		in.GroupCapacity = &s.capacity
		in.DietaryOptions = &s.dietary
	}
	return in
}

func rateAll(ctx context.Context, svc *services.RatingService, tripID int64, kind entities.ItemKind, itemID int64, ratings map[string]int) {
	for name, value := range ratings {
		_, err := svc.Rate(ctx, tripID, services.RateInput{
			Kind:   kind,
			ItemID: itemID,
			Who:    services.ActingParticipant{Name: name},
			Value:  value,
		})
		if err != nil {
			log.Fatal().Err(err).Str("participant", name).Msg("Failed to rate")
		}
	}
}
