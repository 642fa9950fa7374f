package config

import "fmt"

// LayerProvider связывает уровень кэша с конфигурацией его провайдера.
// Порядок LayerProviders совпадает с порядком layers в yaml: 0 - самый быстрый уровень.
type LayerProvider struct {
	Level    int
	Mode     LayerMode
	Provider Provider
}

func (lp *LayerProvider) Enabled() bool {
	return lp.Mode == LayerModeEnabled
}

type LayerProviderService struct {
	LayerProviders []*LayerProvider
}

func NewLayerProviderService(cfg *AppConfig) (*LayerProviderService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("can't create layer providers: config is nil")
	}
	providersMap := providersToMap(cfg.Provider)
	layerProviders, err := createLayerProviders(cfg.Layers, providersMap)
	if err != nil {
		return nil, err
	}
	return &LayerProviderService{
		LayerProviders: layerProviders,
	}, nil
}

// EnabledCount возвращает количество включённых уровней.
func (s *LayerProviderService) EnabledCount() int {
	n := 0
	for _, lp := range s.LayerProviders {
		if lp.Enabled() {
			n++
		}
	}
	return n
}

func createLayerProviders(layers []Layer, providersMap map[string]Provider) ([]*LayerProvider, error) {
	layerProviders := make([]*LayerProvider, len(layers))
	for i, layer := range layers {
		provider, found := providersMap[layer.Name]
		if !found {
			return nil, fmt.Errorf("can't create layer providers. can't find provider with name: %q", layer.Name)
		}
		layerProviders[i] = &LayerProvider{
			Level:    i,
			Mode:     layer.Mode,
			Provider: provider,
		}
	}
	return layerProviders, nil
}

func providersToMap(providers []Provider) map[string]Provider {
	providersMap := make(map[string]Provider, len(providers))
	for _, provider := range providers {
		providersMap[provider.GetName()] = provider
	}
	return providersMap
}
