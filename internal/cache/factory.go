package cache

import (
	"context"
	"fmt"
	"rnm-aggregator/internal/cache/config"
	"rnm-aggregator/internal/cache/providers"

	"go.uber.org/zap"
)

func CreateLayeredCache(ctx context.Context, appConfig *config.AppConfig) (*LayeredCache, error) {
	providerService, err := config.NewLayerProviderService(appConfig)
	if err != nil {
		return nil, err
	}

	services, err := providers.CreateNewServiceList(ctx, providerService.LayerProviders)
	if err != nil {
		return nil, fmt.Errorf("error creating service list: %w", err)
	}

	zap.S().Infow("cache layers created", "total", len(services), "enabled", providerService.EnabledCount())
	return NewLayeredCache(services, appConfig.Cache.Prefix), nil
}
