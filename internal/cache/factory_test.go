package cache

import (
	"context"
	"rnm-aggregator/internal/cache/config"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLayeredCache_RistrettoAndRedis(t *testing.T) {
	srv := miniredis.RunT(t)
	port, _ := strconv.Atoi(srv.Port())

	appConfig := &config.AppConfig{
		Cache: config.CacheConfig{Prefix: "rnm"},
		Provider: []config.Provider{
			&config.Ristretto{
				ProviderMeta: config.ProviderMeta{Name: "l0", Type: config.ProviderTypeRistretto},
				NumCounters:  1000, BufferItems: 64, MaxCost: "1MB",
			},
			&config.Redis{
				ProviderMeta: config.ProviderMeta{Name: "l1", Type: config.ProviderTypeRedis},
				Host:         srv.Host(), Port: port, PoolSize: 2, Timeout: time.Second,
			},
		},
		Layers: []config.Layer{
			{Name: "l0", Mode: config.LayerModeEnabled},
			{Name: "l1", Mode: config.LayerModeEnabled},
		},
	}

	ctx := context.Background()
	c, err := CreateLayeredCache(ctx, appConfig)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	calls := 0
	produce := func(context.Context) (sample, error) {
		calls++
		return sample{ID: 3, Name: "Summer Smith"}, nil
	}

	got, err := Fetch(ctx, c, "character_3", time.Hour, produce)
	require.NoError(t, err)
	assert.Equal(t, "Summer Smith", got.Name)

	assert.True(t, srv.Exists("rnm:character_3"))
	assert.Equal(t, time.Hour, srv.TTL("rnm:character_3"))

	got, err = Fetch(ctx, c, "character_3", time.Hour, produce)
	require.NoError(t, err)
	assert.Equal(t, 3, got.ID)
	assert.Equal(t, 1, calls)
}

func TestCreateLayeredCache_RedisUnavailable(t *testing.T) {
	srv := miniredis.RunT(t)
	host := srv.Host()
	port, _ := strconv.Atoi(srv.Port())
	srv.Close()

	appConfig := &config.AppConfig{
		Provider: []config.Provider{
			&config.Redis{
				ProviderMeta: config.ProviderMeta{Name: "l1", Type: config.ProviderTypeRedis},
				Host:         host, Port: port, PoolSize: 1, Timeout: 100 * time.Millisecond,
			},
		},
		Layers: []config.Layer{{Name: "l1", Mode: config.LayerModeEnabled}},
	}

	_, err := CreateLayeredCache(context.Background(), appConfig)
	assert.ErrorContains(t, err, "error creating service list")
}
