package entities

import (
	"time"

	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/consensus"
)

// ExportVersion identifies the export bundle layout
const ExportVersion = "1.0"

// ActivityView is an activity with its ratings and consensus
type ActivityView struct {
	Activity
	Ratings []Rating          `json:"ratings"`
	Summary consensus.Summary `json:"summary"`
}

// RestaurantView is a restaurant with its ratings and consensus
type RestaurantView struct {
	Restaurant
	Ratings []Rating          `json:"ratings"`
	Summary consensus.Summary `json:"summary"`
}

// TripView is the full trip as returned by "get trip".
// CurrentUser is resolved per request and is nil for an unknown viewer.
type TripView struct {
	Trip
	Destinations []string         `json:"destinations"`
	Participants []Participant    `json:"participants"`
	CurrentUser  *Participant     `json:"currentUser"`
	Activities   []ActivityView   `json:"activities"`
	Restaurants  []RestaurantView `json:"restaurants"`
}

// TripSummary is a trip in the trip list
type TripSummary struct {
	Trip
	Destinations     []string `json:"destinations"`
	ParticipantCount int      `json:"participantCount"`
}

// ExportRating is one (participant, rating) pair in an export
type ExportRating struct {
	Participant string `json:"participant"`
	Rating      int    `json:"rating"`
}

// ExportItem is an activity flattened for export
type ExportItem struct {
	ID               int64          `json:"id"`
	Name             string         `json:"name"`
	Category         string         `json:"category"`
	Location         string         `json:"location"`
	Cost             float64        `json:"cost"`
	Duration         string         `json:"duration"`
	Ratings          []ExportRating `json:"ratings"`
	AverageRating    float64        `json:"averageRating"`
	ParticipantCount int            `json:"participantCount"`
	InterestedCount  int            `json:"interestedCount"`
	MustCount        int            `json:"mustCount"`
	WontCount        int            `json:"wontCount"`
	Band             consensus.Band `json:"band"`
}

// ExportRestaurant is a restaurant flattened for export
type ExportRestaurant struct {
	ExportItem
	PriceRange     string   `json:"priceRange"`
	GroupCapacity  int      `json:"groupCapacity"`
	DietaryOptions []string `json:"dietaryOptions"`
}

// ExportParticipant is a participant as listed in tripInfo
type ExportParticipant struct {
	Name string          `json:"name"`
	Role ParticipantRole `json:"role"`
}

// ExportTripInfo is the trip header of an export
type ExportTripInfo struct {
	ID           int64               `json:"id"`
	Name         string              `json:"name"`
	StartDate    string              `json:"startDate"`
	EndDate      string              `json:"endDate"`
	CreatedBy    string              `json:"createdBy,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
	Destinations []string            `json:"destinations"`
	Participants []ExportParticipant `json:"participants"`
}

// ExportMetadata describes when and in which layout an export was produced
type ExportMetadata struct {
	ExportedAt time.Time `json:"exportedAt"`
	Version    string    `json:"version"`
}

// ExportBundle is the flattened trip for external consumption
type ExportBundle struct {
	TripInfo       ExportTripInfo     `json:"tripInfo"`
	Activities     []ExportItem       `json:"activities"`
	Restaurants    []ExportRestaurant `json:"restaurants"`
	Travel         []TravelRecord     `json:"travel"`
	Lodging        []LodgingRecord    `json:"lodging"`
	Logistics      []LogisticsRecord  `json:"logistics"`
	ExportMetadata ExportMetadata     `json:"exportMetadata"`
}

// ItemRatings is the "who rated what" listing of one item with its consensus
type ItemRatings struct {
	Kind    ItemKind          `json:"kind"`
	ItemID  int64             `json:"itemId"`
	Ratings []Rating          `json:"ratings"`
	Summary consensus.Summary `json:"summary"`
}
