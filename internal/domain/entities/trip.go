package entities

import "time"

// DateLayout is the calendar date format used for trip dates.
const DateLayout = "2006-01-02"

// Trip represents a group trip. CreatedBy is read from the creator
// participant, so it follows renames.
type Trip struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	StartDate string    `json:"startDate" db:"start_date"`
	EndDate   string    `json:"endDate" db:"end_date"`
	CreatedBy string    `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Destination is one entry of a trip's ordered destination list.
// OrderIndex is display order only.
type Destination struct {
	ID         int64  `json:"id" db:"id"`
	TripID     int64  `json:"tripId" db:"trip_id"`
	Name       string `json:"name" db:"name"`
	OrderIndex int    `json:"orderIndex" db:"order_index"`
}

// TripFilter controls trip listing
type TripFilter struct {
	Limit  int
	Offset int
}
