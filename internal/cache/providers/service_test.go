package providers

import (
	"context"
	"errors"
	"rnm-aggregator/internal/cache/config"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	data   map[string]string
	ttls   map[string]time.Duration
	err    error
	closed bool
}

func (m *mockProvider) BatchGet(_ context.Context, keys []string) (map[string]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	res := map[string]string{}
	for _, k := range keys {
		if v, ok := m.data[k]; ok {
			res[k] = v
		}
	}
	return res, nil
}

func (m *mockProvider) BatchPut(_ context.Context, items map[string]string, ttls map[string]time.Duration) error {
	if m.err != nil {
		return m.err
	}
	if m.data == nil {
		m.data = map[string]string{}
		m.ttls = map[string]time.Duration{}
	}
	for k, v := range items {
		m.data[k] = v
		m.ttls[k] = ttls[k]
	}
	return nil
}

func (m *mockProvider) Close() error {
	m.closed = true
	return nil
}

func TestServiceImpl_PutThenGet(t *testing.T) {
	p := &mockProvider{}
	s := NewService(p, 0)
	ctx := context.Background()

	require.NoError(t, s.PutAll(ctx, map[string]string{"a": "1"}, map[string]time.Duration{"a": time.Hour}))
	assert.Equal(t, time.Hour, p.ttls["a"])

	got, err := s.GetAll(ctx, []string{"a", "b"})
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1"}, got)
	assert.True(t, s.Enabled())
	assert.Equal(t, 0, s.Level())
}

func TestServiceImpl_WrapsProviderError(t *testing.T) {
	s := NewService(&mockProvider{err: errors.New("boom")}, 1)

	_, err := s.GetAll(context.Background(), []string{"a"})
	assert.ErrorContains(t, err, "BatchGet error: boom")

	err = s.PutAll(context.Background(), map[string]string{"a": "1"}, nil)
	assert.ErrorContains(t, err, "BatchPut error: boom")
}

func TestServiceDisabled(t *testing.T) {
	s := &ServiceDisabled{level: 1}

	assert.NoError(t, s.PutAll(context.Background(), map[string]string{"a": "1"}, nil))
	got, err := s.GetAll(context.Background(), []string{"a"})
	assert.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, s.Enabled())
	assert.Equal(t, 1, s.Level())
}

func TestCreateNewServiceList(t *testing.T) {
	layers := []*config.LayerProvider{
		{
			Level: 0,
			Mode:  config.LayerModeEnabled,
			Provider: &config.Ristretto{
				ProviderMeta: config.ProviderMeta{Name: "mem", Type: config.ProviderTypeRistretto},
				NumCounters:  1000, BufferItems: 64, MaxCost: "1MB",
			},
		},
		{
			Level: 1,
			Mode:  config.LayerModeDisabled,
			Provider: &config.Redis{
				ProviderMeta: config.ProviderMeta{Name: "shared", Type: config.ProviderTypeRedis},
				Host:         "localhost", Port: 6379, PoolSize: 1, Timeout: time.Second,
			},
		},
	}

	services, err := CreateNewServiceList(context.Background(), layers)
	require.NoError(t, err)
	t.Cleanup(func() { closeAll(services) })

	require.Len(t, services, 2)
	assert.IsType(t, &ServiceImpl{}, services[0])
	assert.IsType(t, &ServiceDisabled{}, services[1])
	assert.Equal(t, 1, services[1].Level())
}

func TestCreateNewServiceList_UnsupportedProvider(t *testing.T) {
	layers := []*config.LayerProvider{
		{Mode: config.LayerModeEnabled, Provider: &config.Unknown{ProviderMeta: config.ProviderMeta{Name: "x"}}},
	}

	_, err := CreateNewServiceList(context.Background(), layers)
	assert.ErrorContains(t, err, "unsupported provider type")
}
