package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestFetch_ProducesThenReadsFromCache(t *testing.T) {
	c := newTestCache(newMockService(0))
	ctx := context.Background()
	calls := 0
	produce := func(context.Context) (sample, error) {
		calls++
		return sample{ID: 1, Name: "Rick Sanchez"}, nil
	}

	got, err := Fetch(ctx, c, "character_1", time.Hour, produce)
	require.NoError(t, err)
	assert.Equal(t, sample{ID: 1, Name: "Rick Sanchez"}, got)

	got, err = Fetch(ctx, c, "character_1", time.Hour, produce)
	require.NoError(t, err)
	assert.Equal(t, sample{ID: 1, Name: "Rick Sanchez"}, got)
	assert.Equal(t, 1, calls)
}

func TestFetch_CachesAbsence(t *testing.T) {
	c := newTestCache(newMockService(0))
	ctx := context.Background()
	calls := 0
	produce := func(context.Context) (*sample, error) {
		calls++
		return nil, nil
	}

	got, err := Fetch(ctx, c, "episode_Nope", time.Hour, produce)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = Fetch(ctx, c, "episode_Nope", time.Hour, produce)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, calls)
}

func TestFetch_PropagatesError(t *testing.T) {
	l0 := newMockService(0)
	c := newTestCache(l0)

	_, err := Fetch(context.Background(), c, "k", time.Hour, func(context.Context) ([]sample, error) {
		return nil, errors.New("transport")
	})
	assert.EqualError(t, err, "transport")
	assert.Empty(t, l0.data)
}

func TestFetch_TypeMismatchInCache(t *testing.T) {
	c := newTestCache(newMockService(0))
	ctx := context.Background()

	_, err := Fetch(ctx, c, "k", time.Hour, func(context.Context) (string, error) { return "text", nil })
	require.NoError(t, err)

	_, err = Fetch(ctx, c, "k", time.Hour, func(context.Context) (sample, error) { return sample{}, nil })
	assert.ErrorContains(t, err, "decode cached value")
}
