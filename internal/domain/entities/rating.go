package entities

import "time"

// Rating is one participant's 0-5 preference for one item. There is at most
// one rating per (item, participant).
type Rating struct {
	ItemID          int64     `json:"itemId" db:"item_id"`
	ParticipantID   int64     `json:"participantId" db:"participant_id"`
	ParticipantName string    `json:"participantName" db:"participant_name"`
	Value           int       `json:"rating" db:"rating"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// RatingValues extracts the raw values in order
func RatingValues(ratings []Rating) []int {
	values := make([]int, len(ratings))
	for i, r := range ratings {
		values[i] = r.Value
	}
	return values
}
