package providers

import (
	"context"
	"fmt"
	"rnm-aggregator/internal/cache/config"
	"rnm-aggregator/internal/metrics"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"telegram-alerts-go/alert"
)

type Redis struct {
	rdb *redis.Client
}

func NewRedis(ctx context.Context, cfg config.Redis) (*Redis, error) {

	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	// Connection check
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("не удалось подключиться к Redis: %w", err)
	}

	zap.S().Infow("connected to Redis", "host", cfg.Host, "port", cfg.Port)

	return &Redis{
		rdb: rdb,
	}, nil
}

// BatchGet получает несколько значений через MGET, разбивая ключи на chunk'и
func (c *Redis) BatchGet(ctx context.Context, keys []string) (result map[string]string, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordProviderLatency("redis", "get", time.Since(start).Seconds())
		metrics.RecordProviderOp("redis", "get", err)
	}()

	result = make(map[string]string, len(keys))
	for _, chunk := range splitKeysToChunks(keys, chunkSize) {
		vals, mgetErr := c.rdb.MGet(ctx, chunk...).Result()
		if mgetErr != nil {
			err = fmt.Errorf("ошибка пакетного получения из Redis: %w", mgetErr)
			return nil, err
		}

		for i, key := range chunk {
			if i < len(vals) && vals[i] != nil {
				if str, ok := vals[i].(string); ok {
					result[key] = str
				}
			}
		}
	}
	return result, nil
}

// BatchPut сохраняет значения pipeline'ом, по одному Exec на chunk
func (c *Redis) BatchPut(ctx context.Context, items map[string]string, ttls map[string]time.Duration) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordProviderLatency("redis", "put", time.Since(start).Seconds())
		metrics.RecordProviderOp("redis", "put", err)
	}()

	if len(items) == 0 {
		return nil
	}

	for chunkIndex, chunk := range splitKeyValueToChunks(items, chunkSize) {
		pipe := c.rdb.Pipeline()

		for key, value := range chunk {
			var expiration time.Duration
			if ttl, exists := ttls[key]; exists && ttl > 0 {
				expiration = ttl
			}
			pipe.Set(ctx, key, value, expiration)
		}

		if _, err = pipe.Exec(ctx); err != nil {
			zap.S().Errorw(alert.Prefix("redis pipeline exec error"), "chunk", chunkIndex, "error", err)
			return fmt.Errorf("ошибка пакетного сохранения в Redis (chunk %d): %w", chunkIndex, err)
		}
	}
	return nil
}

func (c *Redis) Close() error {
	return c.rdb.Close()
}
