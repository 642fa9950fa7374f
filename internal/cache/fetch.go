package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Fetch - типизированная обёртка над Cache.GetOrPopulate: значение хранится в JSON.
// Если produce был вызван в этом же вызове, возвращается его результат без повторного декодирования.
func Fetch[T any](ctx context.Context, c Cache, key string, ttl time.Duration, produce func(ctx context.Context) (T, error)) (T, error) {
	var (
		zero     T
		produced bool
		result   T
	)

	raw, err := c.GetOrPopulate(ctx, key, ttl, func(ctx context.Context) (json.RawMessage, error) {
		v, err := produce(ctx)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode value for %q: %w", key, err)
		}
		produced, result = true, v
		return b, nil
	})
	if err != nil {
		return zero, err
	}
	if produced {
		return result, nil
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("decode cached value for %q: %w", key, err)
	}
	return out, nil
}
