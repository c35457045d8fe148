package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/repositories"
	apperrors "github.com/mr-jafner/TravelTogether-sub000/pkg/errors"
)

// TravelInput describes a travel leg. PUT replaces every field.
type TravelInput struct {
	ParticipantID     *int64 `json:"participantId"`
	Mode              string `json:"mode"`
	DepartureLocation string `json:"departureLocation"`
	ArrivalLocation   string `json:"arrivalLocation"`
	DepartureTime     string `json:"departureTime"`
	ArrivalTime       string `json:"arrivalTime"`
	Confirmation      string `json:"confirmation"`
	Notes             string `json:"notes"`
}

// LodgingInput describes a stay. PUT replaces every field.
type LodgingInput struct {
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	CheckIn      string  `json:"checkIn"`
	CheckOut     string  `json:"checkOut"`
	Cost         float64 `json:"cost"`
	Confirmation string  `json:"confirmation"`
	Notes        string  `json:"notes"`
}

// LogisticsInput describes a to-do item. PUT replaces every field.
type LogisticsInput struct {
	Category              string `json:"category"`
	Title                 string `json:"title"`
	Details               string `json:"details"`
	AssignedParticipantID *int64 `json:"assignedParticipantId"`
	DueDate               string `json:"dueDate"`
	Completed             bool   `json:"completed"`
}

// RecordService handles travel, lodging and logistics records
type RecordService struct {
	trips        repositories.TripRepository
	participants repositories.ParticipantRepository
	travel       repositories.TravelRepository
	lodging      repositories.LodgingRepository
	logistics    repositories.LogisticsRepository
	views        ViewInvalidator
}

// NewRecordService creates a new record service
func NewRecordService(repos repositories.Registry, views ViewInvalidator) *RecordService {
	return &RecordService{
		trips:        repos.Trips,
		participants: repos.Participants,
		travel:       repos.Travel,
		lodging:      repos.Lodging,
		logistics:    repos.Logistics,
		views:        views,
	}
}

// checkParticipant verifies an optional participant reference belongs to the trip
func (s *RecordService) checkParticipant(ctx context.Context, tripID int64, id *int64) error {
	if id == nil {
		return nil
	}
	_, err := s.participants.GetByID(ctx, tripID, *id)
	return err
}

// optionalDate accepts an empty value or a YYYY-MM-DD date
func (p *problems) optionalDate(field, value string) (time.Time, bool) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, false
	}
	return p.date(field, value)
}

func validateTravel(in TravelInput) (*entities.TravelRecord, error) {
	var p problems
	r := &entities.TravelRecord{
		ParticipantID:     in.ParticipantID,
		Mode:              p.requireText("mode", in.Mode),
		DepartureLocation: strings.TrimSpace(in.DepartureLocation),
		ArrivalLocation:   strings.TrimSpace(in.ArrivalLocation),
		DepartureTime:     strings.TrimSpace(in.DepartureTime),
		ArrivalTime:       strings.TrimSpace(in.ArrivalTime),
		Confirmation:      strings.TrimSpace(in.Confirmation),
		Notes:             in.Notes,
	}
	return r, p.err("invalid travel record")
}

func validateLodging(in LodgingInput) (*entities.LodgingRecord, error) {
	var p problems
	r := &entities.LodgingRecord{
		Name:         p.requireText("name", in.Name),
		Address:      strings.TrimSpace(in.Address),
		CheckIn:      strings.TrimSpace(in.CheckIn),
		CheckOut:     strings.TrimSpace(in.CheckOut),
		Cost:         in.Cost,
		Confirmation: strings.TrimSpace(in.Confirmation),
		Notes:        in.Notes,
	}
	if in.Cost < 0 {
		p.add("cost must not be negative")
	}
	in1, ok1 := p.optionalDate("checkIn", r.CheckIn)
	out, ok2 := p.optionalDate("checkOut", r.CheckOut)
	if ok1 && ok2 && out.Before(in1) {
		p.add("checkOut must not be before checkIn")
	}
	return r, p.err("invalid lodging record")
}

func validateLogistics(in LogisticsInput) (*entities.LogisticsRecord, error) {
	var p problems
	r := &entities.LogisticsRecord{
		Category:              strings.TrimSpace(in.Category),
		Title:                 p.requireText("title", in.Title),
		Details:               in.Details,
		AssignedParticipantID: in.AssignedParticipantID,
		DueDate:               strings.TrimSpace(in.DueDate),
		Completed:             in.Completed,
	}
	p.optionalDate("dueDate", r.DueDate)
	return r, p.err("invalid logistics record")
}

// ListTravel returns the travel records of a trip
func (s *RecordService) ListTravel(ctx context.Context, tripID int64) ([]entities.TravelRecord, error) {
	if err := requireTrip(ctx, s.trips, tripID); err != nil {
		return nil, err
	}
	return s.travel.ListByTrip(ctx, tripID)
}

// AddTravel creates a travel record
func (s *RecordService) AddTravel(ctx context.Context, tripID int64, in TravelInput) (*entities.TravelRecord, error) {
	r, err := validateTravel(in)
	if err != nil {
		return nil, err
	}
	if err := requireTrip(ctx, s.trips, tripID); err != nil {
		return nil, err
	}
	if err := s.checkParticipant(ctx, tripID, r.ParticipantID); err != nil {
		return nil, err
	}

	r.TripID = tripID
	if err := s.travel.Create(ctx, r); err != nil {
		return nil, err
	}
	s.views.Invalidate(ctx, tripID)
	return s.travel.GetByID(ctx, tripID, r.ID)
}

// UpdateTravel replaces a travel record
func (s *RecordService) UpdateTravel(ctx context.Context, tripID, recordID int64, in TravelInput) (*entities.TravelRecord, error) {
	r, err := validateTravel(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkParticipant(ctx, tripID, r.ParticipantID); err != nil {
		return nil, err
	}

	r.ID, r.TripID = recordID, tripID
	if err := s.travel.Update(ctx, r); err != nil {
		return nil, err
	}
	s.views.Invalidate(ctx, tripID)
	return s.travel.GetByID(ctx, tripID, recordID)
}

// DeleteTravel removes a travel record
func (s *RecordService) DeleteTravel(ctx context.Context, tripID, recordID int64) error {
	return s.deleted(ctx, tripID, "travel record", recordID, s.travel.Delete)
}

// ListLodging returns the lodging records of a trip
func (s *RecordService) ListLodging(ctx context.Context, tripID int64) ([]entities.LodgingRecord, error) {
	if err := requireTrip(ctx, s.trips, tripID); err != nil {
		return nil, err
	}
	return s.lodging.ListByTrip(ctx, tripID)
}

// AddLodging creates a lodging record
func (s *RecordService) AddLodging(ctx context.Context, tripID int64, in LodgingInput) (*entities.LodgingRecord, error) {
	r, err := validateLodging(in)
	if err != nil {
		return nil, err
	}
	if err := requireTrip(ctx, s.trips, tripID); err != nil {
		return nil, err
	}

	r.TripID = tripID
	if err := s.lodging.Create(ctx, r); err != nil {
		return nil, err
	}
	s.views.Invalidate(ctx, tripID)
	return r, nil
}

// UpdateLodging replaces a lodging record
func (s *RecordService) UpdateLodging(ctx context.Context, tripID, recordID int64, in LodgingInput) (*entities.LodgingRecord, error) {
	r, err := validateLodging(in)
	if err != nil {
		return nil, err
	}

	r.ID, r.TripID = recordID, tripID
	if err := s.lodging.Update(ctx, r); err != nil {
		return nil, err
	}
	s.views.Invalidate(ctx, tripID)
	return s.lodging.GetByID(ctx, tripID, recordID)
}

// DeleteLodging removes a lodging record
func (s *RecordService) DeleteLodging(ctx context.Context, tripID, recordID int64) error {
	return s.deleted(ctx, tripID, "lodging record", recordID, s.lodging.Delete)
}

// ListLogistics returns the logistics records of a trip
func (s *RecordService) ListLogistics(ctx context.Context, tripID int64) ([]entities.LogisticsRecord, error) {
	if err := requireTrip(ctx, s.trips, tripID); err != nil {
		return nil, err
	}
	return s.logistics.ListByTrip(ctx, tripID)
}

// AddLogistics creates a logistics record
func (s *RecordService) AddLogistics(ctx context.Context, tripID int64, in LogisticsInput) (*entities.LogisticsRecord, error) {
	r, err := validateLogistics(in)
	if err != nil {
		return nil, err
	}
	if err := requireTrip(ctx, s.trips, tripID); err != nil {
		return nil, err
	}
	if err := s.checkParticipant(ctx, tripID, r.AssignedParticipantID); err != nil {
		return nil, err
	}

	r.TripID = tripID
	if err := s.logistics.Create(ctx, r); err != nil {
		return nil, err
	}
	s.views.Invalidate(ctx, tripID)
	return s.logistics.GetByID(ctx, tripID, r.ID)
}

// UpdateLogistics replaces a logistics record
func (s *RecordService) UpdateLogistics(ctx context.Context, tripID, recordID int64, in LogisticsInput) (*entities.LogisticsRecord, error) {
	r, err := validateLogistics(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkParticipant(ctx, tripID, r.AssignedParticipantID); err != nil {
		return nil, err
	}

	r.ID, r.TripID = recordID, tripID
	if err := s.logistics.Update(ctx, r); err != nil {
		return nil, err
	}
	s.views.Invalidate(ctx, tripID)
	return s.logistics.GetByID(ctx, tripID, recordID)
}

// DeleteLogistics removes a logistics record
func (s *RecordService) DeleteLogistics(ctx context.Context, tripID, recordID int64) error {
	return s.deleted(ctx, tripID, "logistics record", recordID, s.logistics.Delete)
}

func (s *RecordService) deleted(ctx context.Context, tripID int64, label string, id int64, del func(context.Context, int64, int64) (bool, error)) error {
	ok, err := del(ctx, tripID, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("%s %d not found in trip %d", label, id, tripID))
	}
	s.views.Invalidate(ctx, tripID)
	return nil
}
