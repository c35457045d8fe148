package repositories

// Registry groups the trip store repositories so services can be wired from
// one value
type Registry struct {
	Trips        TripRepository
	Participants ParticipantRepository
	Activities   ActivityRepository
	Restaurants  RestaurantRepository
	Ratings      RatingRepository
	Travel       TravelRepository
	Lodging      LodgingRepository
	Logistics    LogisticsRepository
}
