package entities

import (
	"fmt"
	"time"
)

// ItemKind distinguishes the two rateable item types
type ItemKind string

const (
	KindActivity   ItemKind = "activity"
	KindRestaurant ItemKind = "restaurant"
)

// Valid reports whether k is a known item kind
func (k ItemKind) Valid() bool {
	return k == KindActivity || k == KindRestaurant
}

// String implements fmt.Stringer
func (k ItemKind) String() string {
	return string(k)
}

// Plural is the collection name used in paths and list responses
func (k ItemKind) Plural() string {
	if k == KindActivity {
		return "activities"
	}
	return string(k) + "s"
}

// ParseItemKind accepts both the singular kind and the plural path segment.
func ParseItemKind(s string) (ItemKind, error) {
	switch s {
	case "activity", "activities":
		return KindActivity, nil
	case "restaurant", "restaurants":
		return KindRestaurant, nil
	}
	return "", fmt.Errorf("unknown item kind %q", s)
}

// Activity is something the group may do on a trip
type Activity struct {
	ID        int64     `json:"id" db:"id"`
	TripID    int64     `json:"tripId" db:"trip_id"`
	Name      string    `json:"name" db:"name"`
	Category  string    `json:"category" db:"category"`
	Location  string    `json:"location" db:"location"`
	Cost      float64   `json:"cost" db:"cost"`
	Duration  string    `json:"duration" db:"duration"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Restaurant is a place the group may eat. DietaryOptions is stored one row
// per option and keeps duplicates.
type Restaurant struct {
	ID             int64     `json:"id" db:"id"`
	TripID         int64     `json:"tripId" db:"trip_id"`
	Name           string    `json:"name" db:"name"`
	Category       string    `json:"category" db:"category"`
	Location       string    `json:"location" db:"location"`
	Cost           float64   `json:"cost" db:"cost"`
	Duration       string    `json:"duration" db:"duration"`
	PriceRange     string    `json:"priceRange" db:"price_range"`
	GroupCapacity  int       `json:"groupCapacity" db:"group_capacity"`
	DietaryOptions []string  `json:"dietaryOptions" db:"-"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}
