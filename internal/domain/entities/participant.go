package entities

import "time"

// ParticipantRole is advisory only; it grants no permissions.
type ParticipantRole string

const (
	RoleCreator     ParticipantRole = "creator"
	RoleParticipant ParticipantRole = "participant"
)

// Valid reports whether r is a known role
func (r ParticipantRole) Valid() bool {
	return r == RoleCreator || r == RoleParticipant
}

// Participant is a member of one trip. UID is the stable identity; Name is a
// mutable display attribute unique within the trip.
type Participant struct {
	ID            int64           `json:"id" db:"id"`
	UID           string          `json:"uid" db:"uid"`
	TripID        int64           `json:"tripId" db:"trip_id"`
	Name          string          `json:"name" db:"name"`
	IsCurrentUser bool            `json:"isCurrentUser" db:"is_current_user"`
	Role          ParticipantRole `json:"role" db:"role"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
}
