package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/repositories"
	"github.com/mr-jafner/TravelTogether-sub000/internal/infrastructure/observability"
	apperrors "github.com/mr-jafner/TravelTogether-sub000/pkg/errors"
)

// AddParticipantInput adds one member to an existing trip
type AddParticipantInput struct {
	Name string                   `json:"name"`
	Role entities.ParticipantRole `json:"role"`
}

// UpdateParticipantInput renames a participant or changes the role
type UpdateParticipantInput struct {
	Name *string                   `json:"name"`
	Role *entities.ParticipantRole `json:"role"`
}

// ActingParticipant names who performs an action: by id when ID is set,
// otherwise by name within the trip.
type ActingParticipant struct {
	ID   *int64
	Name string
}

// ParticipantService handles participant membership. Every trip keeps
// exactly one creator: promoting a participant transfers the role, the
// creator cannot be demoted directly, and removing the creator promotes the
// earliest remaining participant.
type ParticipantService struct {
	tx           TxRunner
	trips        repositories.TripRepository
	participants repositories.ParticipantRepository
	views        ViewInvalidator
}

// NewParticipantService creates a new participant service
func NewParticipantService(tx TxRunner, repos repositories.Registry, views ViewInvalidator) *ParticipantService {
	return &ParticipantService{
		tx:           tx,
		trips:        repos.Trips,
		participants: repos.Participants,
		views:        views,
	}
}

// Add creates a participant. Names are unique within the trip.
func (s *ParticipantService) Add(ctx context.Context, tripID int64, in AddParticipantInput) (*entities.Participant, error) {
	var p problems
	name := p.requireText("name", in.Name)
	role := in.Role
	if role == "" {
		role = entities.RoleParticipant
	}
	if !role.Valid() {
		p.add("role must be %q or %q", entities.RoleCreator, entities.RoleParticipant)
	}
	if err := p.err("invalid participant"); err != nil {
		return nil, err
	}

	if err := requireTrip(ctx, s.trips, tripID); err != nil {
		return nil, err
	}

	participant := &entities.Participant{
		TripID: tripID,
		Name:   name,
		Role:   entities.RoleParticipant,
	}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.participants.Create(ctx, participant); err != nil {
			return err
		}
		if role == entities.RoleCreator {
			return s.participants.TransferCreator(ctx, tripID, participant.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	participant.Role = role

	s.views.Invalidate(ctx, tripID)
	observability.LoggerFromContext(ctx).Info().
		Int64("trip_id", tripID).
		Int64("participant_id", participant.ID).
		Msg("Participant added")
	return participant, nil
}

// Update renames a participant or changes the role. Ratings follow the
// participant id, so a rename keeps them attached.
func (s *ParticipantService) Update(ctx context.Context, tripID, participantID int64, in UpdateParticipantInput) (*entities.Participant, error) {
	participant, err := s.participants.GetByID(ctx, tripID, participantID)
	if err != nil {
		return nil, err
	}

	var p problems
	if in.Name != nil {
		participant.Name = p.requireText("name", *in.Name)
	}
	promote := false
	if in.Role != nil {
		switch {
		case !in.Role.Valid():
			p.add("role must be %q or %q", entities.RoleCreator, entities.RoleParticipant)
		case *in.Role == entities.RoleParticipant && participant.Role == entities.RoleCreator:
			p.add("the creator cannot be demoted; promote another participant instead")
		case *in.Role == entities.RoleCreator && participant.Role != entities.RoleCreator:
			promote = true
		}
	}
	if err := p.err("invalid participant update"); err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.participants.Update(ctx, participant); err != nil {
			return err
		}
		if promote {
			return s.participants.TransferCreator(ctx, tripID, participant.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if promote {
		participant.Role = entities.RoleCreator
	}

	s.views.Invalidate(ctx, tripID)
	return participant, nil
}

// Remove deletes a participant together with their ratings
func (s *ParticipantService) Remove(ctx context.Context, tripID, participantID int64) error {
	var promoted int64
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		deleted, err := s.participants.Delete(ctx, tripID, participantID)
		if err != nil {
			return err
		}
		if !deleted {
			return apperrors.NewNotFoundError(fmt.Sprintf("participant %d not found in trip %d", participantID, tripID))
		}
		promoted, err = s.participants.EnsureCreator(ctx, tripID)
		return err
	})
	if err != nil {
		return err
	}

	s.views.Invalidate(ctx, tripID)
	if promoted > 0 {
		observability.LoggerFromContext(ctx).Info().
			Int64("trip_id", tripID).
			Msg("Creator removed, role passed to earliest participant")
	}
	return nil
}

// Resolve finds the acting participant inside the trip
func (s *ParticipantService) Resolve(ctx context.Context, tripID int64, who ActingParticipant) (*entities.Participant, error) {
	return resolveParticipant(ctx, s.participants, tripID, who)
}

func resolveParticipant(ctx context.Context, participants repositories.ParticipantRepository, tripID int64, who ActingParticipant) (*entities.Participant, error) {
	if who.ID != nil {
		return participants.GetByID(ctx, tripID, *who.ID)
	}
	name := strings.TrimSpace(who.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("participantId or participantName is required")
	}
	return participants.GetByName(ctx, tripID, name)
}
