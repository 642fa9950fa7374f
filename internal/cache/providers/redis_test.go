package providers

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

func setupTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	srv := miniredis.RunT(t)

	port, _ := strconv.Atoi(srv.Port())

	cfg := config.Redis{
		Host:     srv.Host(),
		Port:     port,
		DB:       0,
		Password: "",
		PoolSize: 5,
		Timeout:  time.Second,
	}

	r, err := NewRedis(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	return r, srv
}

func TestRedis_BatchPut_And_BatchGet(t *testing.T) {
	r, _ := setupTestRedis(t)

	ctx := context.Background()
	items := map[string]string{
		"rnm:character_1": `{"id":1}`,
		"rnm:character_2": `{"id":2}`,
	}
	ttls := map[string]time.Duration{
		"rnm:character_1": time.Hour,
		"rnm:character_2": 0, // без TTL
	}

	err := r.BatchPut(ctx, items, ttls)
	assert.NoError(t, err)

	result, err := r.BatchGet(ctx, []string{"rnm:character_1", "rnm:character_2", "rnm:character_404"})
	assert.NoError(t, err)

	assert.Equal(t, `{"id":1}`, result["rnm:character_1"])
	assert.Equal(t, `{"id":2}`, result["rnm:character_2"])
	_, exists := result["rnm:character_404"]
	assert.False(t, exists)
}

func TestRedis_TTLExpires(t *testing.T) {
	r, srv := setupTestRedis(t)

	ctx := context.Background()
	err := r.BatchPut(ctx, map[string]string{"k": "v"}, map[string]time.Duration{"k": time.Minute})
	require.NoError(t, err)
	assert.Equal(t, time.Minute, srv.TTL("k"))

	srv.FastForward(2 * time.Minute)

	result, err := r.BatchGet(ctx, []string{"k"})
	assert.NoError(t, err)
	assert.Empty(t, result)
}

func TestRedis_ManyKeysAcrossChunks(t *testing.T) {
	r, _ := setupTestRedis(t)

	ctx := context.Background()
	items := make(map[string]string, chunkSize*2+7)
	keys := make([]string, 0, len(items))
	for i := 0; i < chunkSize*2+7; i++ {
		k := "key:" + strconv.Itoa(i)
		items[k] = strconv.Itoa(i)
		keys = append(keys, k)
	}

	require.NoError(t, r.BatchPut(ctx, items, nil))

	result, err := r.BatchGet(ctx, keys)
	assert.NoError(t, err)
	assert.Equal(t, items, result)
}

func TestRedis_ServerDown(t *testing.T) {
	r, srv := setupTestRedis(t)
	srv.Close()

	_, err := r.BatchGet(context.Background(), []string{"k"})
	assert.Error(t, err)

	err = r.BatchPut(context.Background(), map[string]string{"k": "v"}, nil)
	assert.Error(t, err)
}

func TestNewRedis_ConnectionRefused(t *testing.T) {
	srv := miniredis.RunT(t)
	host := srv.Host()
	port, _ := strconv.Atoi(srv.Port())
	srv.Close()

	_, err := NewRedis(context.Background(), config.Redis{Host: host, Port: port, PoolSize: 1, Timeout: 100 * time.Millisecond})
	assert.Error(t, err)
}
