package database

import (
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/repositories"
	"github.com/mr-jafner/TravelTogether-sub000/internal/infrastructure/clients/database"
)

// NewRegistry builds every repository over one client
func NewRegistry(client *database.Client) repositories.Registry {
	return repositories.Registry{
		Trips:        NewTripAdapter(client),
		Participants: NewParticipantAdapter(client),
		Activities:   NewActivityAdapter(client),
		Restaurants:  NewRestaurantAdapter(client),
		Ratings:      NewRatingAdapter(client),
		Travel:       NewTravelAdapter(client),
		Lodging:      NewLodgingAdapter(client),
		Logistics:    NewLogisticsAdapter(client),
	}
}
