package providers

import (
	"context"
	"rnm-aggregator/internal/cache/config"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRistretto(t *testing.T) *Ristretto {
	client, err := NewRistretto(config.Ristretto{
		NumCounters: 1000,
		BufferItems: 64,
		MaxCost:     "1MB",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRistretto_BatchPutGet(t *testing.T) {
	ctx := context.Background()
	client := newTestRistretto(t)

	items := map[string]string{
		"key1": "value1",
		"key2": "value2",
	}
	ttls := map[string]time.Duration{
		"key1": time.Minute,
		"key2": time.Minute,
	}

	err := client.BatchPut(ctx, items, ttls)
	assert.NoError(t, err)

	result, err := client.BatchGet(ctx, []string{"key1", "key2", "missing"})
	assert.NoError(t, err)
	assert.Equal(t, "value1", result["key1"])
	assert.Equal(t, "value2", result["key2"])
	_, ok := result["missing"]
	assert.False(t, ok)
}

func TestRistretto_ContextCancelled(t *testing.T) {
	client := newTestRistretto(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.BatchPut(ctx, map[string]string{"k": "v"}, nil)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = client.BatchGet(ctx, []string{"k"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRistretto_BadMaxCost(t *testing.T) {
	_, err := NewRistretto(config.Ristretto{NumCounters: 10, BufferItems: 64, MaxCost: "lots"})
	assert.ErrorContains(t, err, "maxCost")
}

func TestSplitKeysToChunks(t *testing.T) {
	chunks := splitKeysToChunks([]string{"a", "b", "c", "d", "e"}, 2)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, chunks)
	assert.Empty(t, splitKeysToChunks(nil, 2))
}

func TestSplitKeyValueToChunks(t *testing.T) {
	items := map[string]string{"a": "1", "b": "2", "c": "3"}
	chunks := splitKeyValueToChunks(items, 2)
	assert.Len(t, chunks, 2)

	merged := map[string]string{}
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 2)
		for k, v := range c {
			merged[k] = v
		}
	}
	assert.Equal(t, items, merged)
}
