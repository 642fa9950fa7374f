package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLayerProviderService_Success(t *testing.T) {
	cfg := &AppConfig{
		Provider: []Provider{
			&Ristretto{
				ProviderMeta: ProviderMeta{Name: "mem", Type: ProviderTypeRistretto},
				NumCounters:  10000,
				BufferItems:  64,
				MaxCost:      "128MB",
			},
			&Redis{
				ProviderMeta: ProviderMeta{Name: "shared", Type: ProviderTypeRedis},
				Host:         "localhost",
				Port:         6379,
				PoolSize:     10,
				Timeout:      time.Second,
			},
		},
		Layers: []Layer{
			{Name: "mem", Mode: LayerModeEnabled},
			{Name: "shared", Mode: LayerModeDisabled},
		},
	}

	svc, err := NewLayerProviderService(cfg)
	require.NoError(t, err)
	assert.Len(t, svc.LayerProviders, 2)
	assert.Equal(t, 0, svc.LayerProviders[0].Level)
	assert.True(t, svc.LayerProviders[0].Enabled())
	assert.Equal(t, "mem", svc.LayerProviders[0].Provider.GetName())
	assert.Equal(t, 1, svc.LayerProviders[1].Level)
	assert.False(t, svc.LayerProviders[1].Enabled())
	assert.Equal(t, 1, svc.EnabledCount())
}

func TestNewLayerProviderService_ErrorWhenProviderMissing(t *testing.T) {
	cfg := &AppConfig{
		Provider: []Provider{},
		Layers: []Layer{
			{Name: "missing", Mode: LayerModeEnabled},
		},
	}

	_, err := NewLayerProviderService(cfg)
	assert.EqualError(t, err, "can't create layer providers. can't find provider with name: \"missing\"")
}

func TestNewLayerProviderService_NilConfig(t *testing.T) {
	_, err := NewLayerProviderService(nil)
	assert.Error(t, err)
}
