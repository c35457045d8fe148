package entities

import "time"

// TravelRecord is how one participant (or the group) gets to or from a place
type TravelRecord struct {
	ID                int64     `json:"id" db:"id"`
	TripID            int64     `json:"tripId" db:"trip_id"`
	ParticipantID     *int64    `json:"participantId" db:"participant_id"`
	ParticipantName   string    `json:"participantName,omitempty" db:"participant_name"`
	Mode              string    `json:"mode" db:"mode"`
	DepartureLocation string    `json:"departureLocation" db:"departure_location"`
	ArrivalLocation   string    `json:"arrivalLocation" db:"arrival_location"`
	DepartureTime     string    `json:"departureTime" db:"departure_time"`
	ArrivalTime       string    `json:"arrivalTime" db:"arrival_time"`
	Confirmation      string    `json:"confirmation" db:"confirmation"`
	Notes             string    `json:"notes" db:"notes"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
}

// LodgingRecord is a place the group stays
type LodgingRecord struct {
	ID           int64     `json:"id" db:"id"`
	TripID       int64     `json:"tripId" db:"trip_id"`
	Name         string    `json:"name" db:"name"`
	Address      string    `json:"address" db:"address"`
	CheckIn      string    `json:"checkIn" db:"check_in"`
	CheckOut     string    `json:"checkOut" db:"check_out"`
	Cost         float64   `json:"cost" db:"cost"`
	Confirmation string    `json:"confirmation" db:"confirmation"`
	Notes        string    `json:"notes" db:"notes"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// LogisticsRecord is a to-do item for the trip, optionally assigned
type LogisticsRecord struct {
	ID                    int64     `json:"id" db:"id"`
	TripID                int64     `json:"tripId" db:"trip_id"`
	Category              string    `json:"category" db:"category"`
	Title                 string    `json:"title" db:"title"`
	Details               string    `json:"details" db:"details"`
	AssignedParticipantID *int64    `json:"assignedParticipantId" db:"assigned_participant_id"`
	AssignedTo            string    `json:"assignedTo,omitempty" db:"assigned_to"`
	DueDate               string    `json:"dueDate" db:"due_date"`
	Completed             bool      `json:"completed" db:"completed"`
	CreatedAt             time.Time `json:"createdAt" db:"created_at"`
}
