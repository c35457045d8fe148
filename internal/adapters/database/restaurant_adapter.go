package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/repositories"
	"github.com/mr-jafner/TravelTogether-sub000/internal/infrastructure/clients/database"
	apperrors "github.com/mr-jafner/TravelTogether-sub000/pkg/errors"
)

// RestaurantAdapter implements RestaurantRepository
type RestaurantAdapter struct {
	store
}

// NewRestaurantAdapter creates a new restaurant adapter
func NewRestaurantAdapter(client *database.Client) repositories.RestaurantRepository {
	return &RestaurantAdapter{store: store{client: client}}
}

var restaurantColumns = []interface{}{
	"id", "trip_id", "name", "category", "location", "cost", "duration",
	"price_range", "group_capacity", "created_at",
}

// Create inserts a restaurant and one row per dietary option. Callers wrap it
// in a transaction so a failed option insert leaves nothing behind.
func (a *RestaurantAdapter) Create(ctx context.Context, r *entities.Restaurant) error {
	r.CreatedAt = now()

	id, err := a.client.InsertID(ctx, a.insert("restaurants").Rows(goqu.Record{
		"trip_id":        r.TripID,
		"name":           r.Name,
		"category":       r.Category,
		"location":       r.Location,
		"cost":           r.Cost,
		"duration":       r.Duration,
		"price_range":    r.PriceRange,
		"group_capacity": r.GroupCapacity,
		"created_at":     toMillis(r.CreatedAt),
	}))
	if err != nil {
		return apperrors.NewInternalError("failed to create restaurant", err)
	}
	r.ID = id

	return a.insertDietaryOptions(ctx, r.ID, r.DietaryOptions)
}

// GetByID retrieves a restaurant of a trip with its dietary options
func (a *RestaurantAdapter) GetByID(ctx context.Context, tripID, id int64) (*entities.Restaurant, error) {
	row, err := a.queryRow(ctx, a.from("restaurants").Select(restaurantColumns...).Where(goqu.Ex{"id": id, "trip_id": tripID}))
	if err != nil {
		return nil, err
	}

	r, err := scanRestaurant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("restaurant %d not found in trip %d", id, tripID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get restaurant", err)
	}

	options, err := a.dietaryOptions(ctx, []int64{r.ID})
	if err != nil {
		return nil, err
	}
	r.DietaryOptions = optionsFor(options, r.ID)
	return r, nil
}

// ListByTrip returns a trip's restaurants ordered by id
func (a *RestaurantAdapter) ListByTrip(ctx context.Context, tripID int64) ([]entities.Restaurant, error) {
	rows, err := a.query(ctx, a.from("restaurants").
		Select(restaurantColumns...).
		Where(goqu.Ex{"trip_id": tripID}).
		Order(goqu.C("id").Asc()))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list restaurants", err)
	}

	restaurants := make([]entities.Restaurant, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			rows.Close()
			return nil, apperrors.NewInternalError("failed to scan restaurant", err)
		}
		restaurants = append(restaurants, *r)
		ids = append(ids, r.ID)
	}
	// Close before the next query: SQLite runs on a single connection.
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list restaurants", err)
	}

	options, err := a.dietaryOptions(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range restaurants {
		restaurants[i].DietaryOptions = optionsFor(options, restaurants[i].ID)
	}
	return restaurants, nil
}

// Update writes all editable fields and replaces the dietary options
func (a *RestaurantAdapter) Update(ctx context.Context, r *entities.Restaurant) error {
	result, err := a.exec(ctx, a.update("restaurants").Set(goqu.Record{
		"name":           r.Name,
		"category":       r.Category,
		"location":       r.Location,
		"cost":           r.Cost,
		"duration":       r.Duration,
		"price_range":    r.PriceRange,
		"group_capacity": r.GroupCapacity,
	}).Where(goqu.Ex{"id": r.ID, "trip_id": r.TripID}))
	if err != nil {
		return apperrors.NewInternalError("failed to update restaurant", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("restaurant %d not found in trip %d", r.ID, r.TripID))
	}

	if _, err := a.exec(ctx, a.delete("restaurant_dietary_options").Where(goqu.Ex{"restaurant_id": r.ID})); err != nil {
		return apperrors.NewInternalError("failed to clear dietary options", err)
	}
	return a.insertDietaryOptions(ctx, r.ID, r.DietaryOptions)
}

// Delete removes a restaurant with its dietary options and ratings
func (a *RestaurantAdapter) Delete(ctx context.Context, tripID, id int64) (bool, error) {
	return a.deleteScoped(ctx, "restaurants", tripID, id)
}

// insertDietaryOptions writes one row per option, duplicates included.
func (a *RestaurantAdapter) insertDietaryOptions(ctx context.Context, restaurantID int64, options []string) error {
	for _, option := range options {
		if _, err := a.exec(ctx, a.insert("restaurant_dietary_options").Rows(goqu.Record{
			"restaurant_id":  restaurantID,
			"dietary_option": option,
		})); err != nil {
			return apperrors.NewInternalError("failed to insert dietary option", err)
		}
	}
	return nil
}

func (a *RestaurantAdapter) dietaryOptions(ctx context.Context, restaurantIDs []int64) (map[int64][]string, error) {
	result := make(map[int64][]string, len(restaurantIDs))
	if len(restaurantIDs) == 0 {
		return result, nil
	}

	rows, err := a.query(ctx, a.from("restaurant_dietary_options").
		Select("restaurant_id", "dietary_option").
		Where(goqu.C("restaurant_id").In(restaurantIDs)).
		Order(goqu.C("id").Asc()))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list dietary options", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id     int64
			option string
		)
		if err := rows.Scan(&id, &option); err != nil {
			return nil, apperrors.NewInternalError("failed to scan dietary option", err)
		}
		result[id] = append(result[id], option)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list dietary options", err)
	}
	return result, nil
}

func optionsFor(options map[int64][]string, id int64) []string {
	if opts, ok := options[id]; ok {
		return opts
	}
	return []string{}
}

func scanRestaurant(row rowScanner) (*entities.Restaurant, error) {
	var (
		r         entities.Restaurant
		createdAt int64
	)
	if err := row.Scan(
		&r.ID,
		&r.TripID,
		&r.Name,
		&r.Category,
		&r.Location,
		&r.Cost,
		&r.Duration,
		&r.PriceRange,
		&r.GroupCapacity,
		&createdAt,
	); err != nil {
		return nil, err
	}
	r.CreatedAt = fromMillis(createdAt)
	return &r, nil
}
