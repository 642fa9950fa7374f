package providers

import (
	"context"
	"fmt"
	"rnm-aggregator/internal/cache/config"
	"rnm-aggregator/internal/metrics"
	"time"

	"github.com/dgraph-io/ristretto"
)

type Ristretto struct {
	cache *ristretto.Cache
}

const contextCheckInterval = 100

func NewRistretto(cfg config.Ristretto) (*Ristretto, error) {
	maxCostBytes, err := cfg.MaxCostBytes()
	if err != nil {
		return nil, err
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     int64(maxCostBytes),
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("не удалось создать Ristretto кэш: %w", err)
	}

	return &Ristretto{
		cache: cache,
	}, nil
}

func (c *Ristretto) BatchGet(ctx context.Context, keys []string) (result map[string]string, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordProviderLatency("ristretto", "get", time.Since(start).Seconds())
		metrics.RecordProviderOp("ristretto", "get", err)
	}()

	result = make(map[string]string, len(keys))
	for i, key := range keys {

		// Проверяем контекст каждые 100 итераций
		if i%contextCheckInterval == 0 {
			if err = ctx.Err(); err != nil {
				return nil, err
			}
		}

		if val, ok := c.cache.Get(key); ok {
			if strVal, castOk := val.(string); castOk {
				result[key] = strVal
			}
		}
	}
	return result, nil
}

// BatchPut пишет значения и дожидается применения буфера ristretto,
// чтобы следующий BatchGet уже видел записанное.
func (c *Ristretto) BatchPut(ctx context.Context, items map[string]string, ttls map[string]time.Duration) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordProviderLatency("ristretto", "put", time.Since(start).Seconds())
		metrics.RecordProviderOp("ristretto", "put", err)
	}()

	if len(items) == 0 {
		return nil
	}

	count := 0
	for key, val := range items {

		if count%contextCheckInterval == 0 {
			if err = ctx.Err(); err != nil {
				return err
			}
		}
		count++

		var expiration time.Duration
		if ttl, ok := ttls[key]; ok && ttl > 0 {
			expiration = ttl
		}
		c.cache.SetWithTTL(key, val, int64(len(val)), expiration)
	}
	c.cache.Wait()
	return nil
}

func (c *Ristretto) Close() error {
	if c.cache != nil {
		c.cache.Close()
		c.cache = nil
	}
	return nil
}
