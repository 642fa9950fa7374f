package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"rnm-aggregator/internal/cache/providers"
	"rnm-aggregator/internal/metrics"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Producer вычисляет значение при промахе. Значение - JSON документ.
type Producer func(ctx context.Context) (json.RawMessage, error)

// Cache - хранилище "получить или заполнить" с ttl на каждую запись.
//
//   - hit (запись есть и не устарела) - значение возвращается без вызова produce;
//   - miss - вызывается produce, результат сохраняется с истечением now+ttl и возвращается;
//   - ошибка produce возвращается как есть, в кэш ничего не пишется.
type Cache interface {
	GetOrPopulate(ctx context.Context, key string, ttl time.Duration, produce Producer) (json.RawMessage, error)
}

// LayeredCache реализует Cache поверх нескольких уровней (providers.Service).
//
// Чтение обходит уровни сверху вниз (0 - самый быстрый). Если запись найдена
// на уровне N > 0, она асинхронно переносится в уровни 0..N-1 с оставшимся ttl.
// При промахе на всех уровнях вызывается produce, результат синхронно пишется
// во все включённые уровни, поэтому следующий вызов уже попадает в кэш.
//
// Ошибки уровней (например, недоступный redis) не прерывают вызов:
// уровень считается промахом, ошибка пишется в лог.
//
//	┌──────────────┐
//	│ GetOrPopulate│
//	└─────┬────────┘
//	      ↓
//	┌──────────────┐
//	│ Level 0      │  ristretto
//	└─────┬────────┘
//	      ↓
//	┌──────────────┐
//	│ Level 1      │  redis      hit → promote в Level 0
//	└─────┬────────┘
//	      ↓
//	┌──────────────┐
//	│ produce      │  → PutAll во все уровни
//	└──────────────┘
type LayeredCache struct {
	layers  []providers.Service
	prefix  string
	group   singleflight.Group
	promote *asyncRunner
	now     func() time.Time
}

const StorageKeySeparator = ":"

func NewLayeredCache(layers []providers.Service, prefix string) *LayeredCache {
	return &LayeredCache{
		layers:  layers,
		prefix:  prefix,
		promote: newAsyncRunner(defaultAsyncLimit, defaultAsyncTimeout),
		now:     time.Now,
	}
}

func (c *LayeredCache) GetOrPopulate(ctx context.Context, key string, ttl time.Duration, produce Producer) (json.RawMessage, error) {
	storageKey := c.storageKey(key)

	if e, level, ok := c.lookup(ctx, storageKey); ok {
		if level > 0 {
			c.promoteUpper(storageKey, e, level)
		}
		return e.Value, nil
	}

	// одновременные промахи по одному ключу вызывают produce один раз
	v, err, _ := c.group.Do(storageKey, func() (any, error) {
		value, err := produce(ctx)
		metrics.RecordPopulate(err)
		if err != nil {
			return nil, err
		}
		c.store(ctx, storageKey, newEntry(value, ttl, c.now()), ttl, len(c.layers))
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

// Wait дожидается фоновых переносов между уровнями.
func (c *LayeredCache) Wait() {
	c.promote.wait()
}

func (c *LayeredCache) Close() error {
	c.promote.wait()
	var errs []error
	for _, layer := range c.layers {
		if err := layer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close level %d: %w", layer.Level(), err))
		}
	}
	return errors.Join(errs...)
}

func (c *LayeredCache) storageKey(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + StorageKeySeparator + key
}

// lookup обходит уровни сверху вниз и возвращает первую неустаревшую запись.
func (c *LayeredCache) lookup(ctx context.Context, storageKey string) (entry, int, bool) {
	now := c.now()
	for i, layer := range c.layers {
		if !layer.Enabled() {
			continue
		}

		values, err := layer.GetAll(ctx, []string{storageKey})
		if err != nil {
			zap.S().Warnw("cache layer unavailable", "level", i, "key", storageKey, "error", err)
			continue
		}

		raw, ok := values[storageKey]
		if !ok {
			continue
		}

		e, err := decodeEntry(raw)
		if err != nil {
			zap.S().Warnw("corrupted cache entry", "level", i, "key", storageKey, "error", err)
			continue
		}
		if e.expired(now) {
			continue
		}
		return e, i, true
	}
	return entry{}, 0, false
}

// store пишет запись во все включённые уровни выше boundLevel.
func (c *LayeredCache) store(ctx context.Context, storageKey string, e entry, ttl time.Duration, boundLevel int) {
	encoded, err := encodeEntry(e)
	if err != nil {
		zap.S().Errorw("can't encode cache entry", "key", storageKey, "error", err)
		return
	}

	items := map[string]string{storageKey: encoded}
	ttls := map[string]time.Duration{storageKey: ttl}
	for i, layer := range c.layers {
		if i >= boundLevel {
			break
		}
		if !layer.Enabled() {
			continue
		}
		if err := layer.PutAll(ctx, items, ttls); err != nil {
			zap.S().Warnw("cache layer put failed", "level", i, "key", storageKey, "error", err)
		}
	}
}

func (c *LayeredCache) promoteUpper(storageKey string, e entry, level int) {
	ttl := e.remaining(c.now())
	if e.ExpiresAt != 0 && ttl <= 0 {
		return
	}
	c.promote.run("promote", func(ctx context.Context) {
		c.store(ctx, storageKey, e, ttl, level)
	})
}
