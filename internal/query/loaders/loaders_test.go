package loaders

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
)

type countingRatings struct {
	mu    sync.Mutex
	calls map[entities.ItemKind]int
	data  map[int64][]entities.Rating
	err   error
}

func (c *countingRatings) Upsert(context.Context, entities.ItemKind, int64, int64, int) error {
	return nil
}

func (c *countingRatings) ListByItem(context.Context, entities.ItemKind, int64) ([]entities.Rating, error) {
	return nil, nil
}

func (c *countingRatings) Count(context.Context, entities.ItemKind, int64, int64) (int, error) {
	return 0, nil
}

func (c *countingRatings) ListByItems(_ context.Context, kind entities.ItemKind, ids []int64) (map[int64][]entities.Rating, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = map[entities.ItemKind]int{}
	}
	c.calls[kind]++
	if c.err != nil {
		return nil, c.err
	}
	out := map[int64][]entities.Rating{}
	for _, id := range ids {
		if r, ok := c.data[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

func TestLoadRatings_SingleBatchPerKind(t *testing.T) {
	repo := &countingRatings{data: map[int64][]entities.Rating{
		1: {{ItemID: 1, ParticipantID: 10, Value: 5}},
		3: {{ItemID: 3, ParticipantID: 10, Value: 2}, {ItemID: 3, ParticipantID: 11, Value: 4}},
	}}
	l := NewLoaders(repo)
	ctx := context.Background()

	got, err := LoadRatings(ctx, l.Ratings(entities.KindActivity), []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, got[1], 1)
	assert.NotNil(t, got[2])
	assert.Empty(t, got[2])
	assert.Len(t, got[3], 2)

	// cached per request
	_, err = LoadRatings(ctx, l.Ratings(entities.KindActivity), []int64{1, 3})
	require.NoError(t, err)

	_, err = LoadRatings(ctx, l.Ratings(entities.KindRestaurant), []int64{1})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.calls[entities.KindActivity])
	assert.Equal(t, 1, repo.calls[entities.KindRestaurant])
}

func TestLoadRatings_Empty(t *testing.T) {
	repo := &countingRatings{}
	got, err := LoadRatings(context.Background(), NewLoaders(repo).ActivityRatings, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, repo.calls[entities.KindActivity])
}

func TestLoadRatings_PropagatesError(t *testing.T) {
	repo := &countingRatings{err: errors.New("db down")}
	_, err := LoadRatings(context.Background(), NewLoaders(repo).RestaurantRatings, []int64{1, 2})
	assert.EqualError(t, err, "db down")
}

func TestForAndWithLoaders(t *testing.T) {
	_, ok := For(context.Background())
	assert.False(t, ok)

	l := NewLoaders(&countingRatings{})
	got, ok := For(WithLoaders(context.Background(), l))
	require.True(t, ok)
	assert.Same(t, l, got)
}
