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

// ItemInput carries activity and restaurant fields. Restaurant-only fields
// are ignored for activities. On update, nil fields are left unchanged.
type ItemInput struct {
	Name           *string   `json:"name"`
	Category       *string   `json:"category"`
	Location       *string   `json:"location"`
	Cost           *float64  `json:"cost"`
	Duration       *string   `json:"duration"`
	PriceRange     *string   `json:"priceRange"`
	GroupCapacity  *int      `json:"groupCapacity"`
	DietaryOptions *[]string `json:"dietaryOptions"`
}

// ItemService handles activity and restaurant writes
type ItemService struct {
	tx          TxRunner
	trips       repositories.TripRepository
	activities  repositories.ActivityRepository
	restaurants repositories.RestaurantRepository
	views       ViewInvalidator
}

// NewItemService creates a new item service
func NewItemService(tx TxRunner, repos repositories.Registry, views ViewInvalidator) *ItemService {
	return &ItemService{
		tx:          tx,
		trips:       repos.Trips,
		activities:  repos.Activities,
		restaurants: repos.Restaurants,
		views:       views,
	}
}

// common holds the fields shared by both item kinds after validation
type common struct {
	name, category, location, duration string
	cost                               float64
}

func (p *problems) itemFields(in ItemInput, current common, creating bool) common {
	out := current
	if in.Name != nil || creating {
		out.name = p.requireText("name", deref(in.Name))
	}
	if in.Category != nil {
		out.category = strings.TrimSpace(*in.Category)
	}
	if in.Location != nil {
		out.location = strings.TrimSpace(*in.Location)
	}
	if in.Duration != nil {
		out.duration = strings.TrimSpace(*in.Duration)
	}
	if in.Cost != nil {
		if *in.Cost < 0 {
			p.add("cost must not be negative")
		}
		out.cost = *in.Cost
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// AddActivity creates an activity in an existing trip
func (s *ItemService) AddActivity(ctx context.Context, tripID int64, in ItemInput) (*entities.Activity, error) {
	var p problems
	f := p.itemFields(in, common{}, true)
	if err := p.err("invalid activity"); err != nil {
		return nil, err
	}
	if err := requireTrip(ctx, s.trips, tripID); err != nil {
		return nil, err
	}

	activity := &entities.Activity{
		TripID:   tripID,
		Name:     f.name,
		Category: f.category,
		Location: f.location,
		Cost:     f.cost,
		Duration: f.duration,
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, err
	}

	s.views.Invalidate(ctx, tripID)
	observability.LoggerFromContext(ctx).Info().
		Int64("trip_id", tripID).
		Int64("activity_id", activity.ID).
		Msg("Activity added")
	return activity, nil
}

// UpdateActivity applies a partial update to an activity of the trip
func (s *ItemService) UpdateActivity(ctx context.Context, tripID, activityID int64, in ItemInput) (*entities.Activity, error) {
	activity, err := s.activities.GetByID(ctx, tripID, activityID)
	if err != nil {
		return nil, err
	}

	var p problems
	f := p.itemFields(in, common{
		name:     activity.Name,
		category: activity.Category,
		location: activity.Location,
		duration: activity.Duration,
		cost:     activity.Cost,
	}, false)
	if err := p.err("invalid activity update"); err != nil {
		return nil, err
	}

	activity.Name, activity.Category, activity.Location = f.name, f.category, f.location
	activity.Duration, activity.Cost = f.duration, f.cost
	if err := s.activities.Update(ctx, activity); err != nil {
		return nil, err
	}

	s.views.Invalidate(ctx, tripID)
	return activity, nil
}

// DeleteActivity removes an activity and its ratings
func (s *ItemService) DeleteActivity(ctx context.Context, tripID, activityID int64) error {
	deleted, err := s.activities.Delete(ctx, tripID, activityID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NewNotFoundError(fmt.Sprintf("activity %d not found in trip %d", activityID, tripID))
	}
	s.views.Invalidate(ctx, tripID)
	return nil
}

// AddRestaurant creates a restaurant and its dietary options in one
// transaction
func (s *ItemService) AddRestaurant(ctx context.Context, tripID int64, in ItemInput) (*entities.Restaurant, error) {
	var p problems
	f := p.itemFields(in, common{}, true)
	restaurant := &entities.Restaurant{
		TripID:   tripID,
		Name:     f.name,
		Category: f.category,
		Location: f.location,
		Cost:     f.cost,
		Duration: f.duration,
	}
	p.restaurantFields(in, restaurant)
	if err := p.err("invalid restaurant"); err != nil {
		return nil, err
	}
	if restaurant.DietaryOptions == nil {
		restaurant.DietaryOptions = []string{}
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := requireTrip(ctx, s.trips, tripID); err != nil {
			return err
		}
		return s.restaurants.Create(ctx, restaurant)
	})
	if err != nil {
		return nil, err
	}

	s.views.Invalidate(ctx, tripID)
	observability.LoggerFromContext(ctx).Info().
		Int64("trip_id", tripID).
		Int64("restaurant_id", restaurant.ID).
		Int("dietary_options", len(restaurant.DietaryOptions)).
		Msg("Restaurant added")
	return restaurant, nil
}

// UpdateRestaurant applies a partial update. Dietary options, when present,
// replace the stored list.
func (s *ItemService) UpdateRestaurant(ctx context.Context, tripID, restaurantID int64, in ItemInput) (*entities.Restaurant, error) {
	restaurant, err := s.restaurants.GetByID(ctx, tripID, restaurantID)
	if err != nil {
		return nil, err
	}

	var p problems
	f := p.itemFields(in, common{
		name:     restaurant.Name,
		category: restaurant.Category,
		location: restaurant.Location,
		duration: restaurant.Duration,
		cost:     restaurant.Cost,
	}, false)
	restaurant.Name, restaurant.Category, restaurant.Location = f.name, f.category, f.location
	restaurant.Duration, restaurant.Cost = f.duration, f.cost
	p.restaurantFields(in, restaurant)
	if err := p.err("invalid restaurant update"); err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.restaurants.Update(ctx, restaurant)
	})
	if err != nil {
		return nil, err
	}

	s.views.Invalidate(ctx, tripID)
	return restaurant, nil
}

// DeleteRestaurant removes a restaurant, its dietary options and its ratings
func (s *ItemService) DeleteRestaurant(ctx context.Context, tripID, restaurantID int64) error {
	deleted, err := s.restaurants.Delete(ctx, tripID, restaurantID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NewNotFoundError(fmt.Sprintf("restaurant %d not found in trip %d", restaurantID, tripID))
	}
	s.views.Invalidate(ctx, tripID)
	return nil
}

func (p *problems) restaurantFields(in ItemInput, r *entities.Restaurant) {
	if in.PriceRange != nil {
		r.PriceRange = strings.TrimSpace(*in.PriceRange)
	}
	if in.GroupCapacity != nil {
		if *in.GroupCapacity < 0 {
			p.add("groupCapacity must not be negative")
		}
		r.GroupCapacity = *in.GroupCapacity
	}
	if in.DietaryOptions != nil {
		r.DietaryOptions = p.entries("dietaryOptions", *in.DietaryOptions)
	}
}
