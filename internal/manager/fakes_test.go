package manager

import (
	"context"
	"encoding/json"
	"net/url"
	"rnm-aggregator/internal/cache"
	"rnm-aggregator/internal/integration"
	"sync"
	"time"
)

// mockFetcher отвечает по ключу path?query. Неизвестный ключ - 404.
type mockFetcher struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	calls     []string
}

func (m *mockFetcher) Get(_ context.Context, path string, query url.Values, out any) error {
	key := path
	if len(query) > 0 {
		key += "?" + query.Encode()
	}

	m.mu.Lock()
	m.calls = append(m.calls, key)
	m.mu.Unlock()

	if err, ok := m.errs[key]; ok {
		return err
	}
	body, ok := m.responses[key]
	if !ok {
		return &integration.TransportError{URL: key, StatusCode: 404, Err: integration.ErrNotFound}
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return &integration.DecodeError{URL: key, Err: err}
	}
	return nil
}

func (m *mockFetcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string]json.RawMessage
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]json.RawMessage{}}
}

func (c *memoryCache) GetOrPopulate(ctx context.Context, key string, _ time.Duration, produce cache.Producer) (json.RawMessage, error) {
	c.mu.Lock()
	v, ok := c.data[key]
	c.mu.Unlock()
	if ok {
		return v, nil
	}
	v, err := produce(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.data[key] = v
	c.mu.Unlock()
	return v, nil
}
