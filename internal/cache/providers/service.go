package providers

import (
	"context"
	"fmt"
	"rnm-aggregator/internal/cache/config"
	"rnm-aggregator/internal/metrics"
	"time"
)

// Service обеспечивает доступ к одному уровню кэширования.
//
// ServiceImpl обслуживает ровно один слой (level): ristretto (L0) или redis (L1).
//
//   - GetAll возвращает найденные значения, отсутствующие ключи в результат не попадают;
//   - PutAll сохраняет все значения с их ttl.
//
// Для слоя с mode: disabled создаётся ServiceDisabled: он ничего не хранит
// и на чтение всегда отвечает промахом, поэтому вызывающему коду не нужно
// проверять включён ли слой.
type Service interface {
	GetAll(ctx context.Context, keys []string) (map[string]string, error)
	PutAll(ctx context.Context, items map[string]string, ttls map[string]time.Duration) error
	Enabled() bool
	Level() int
	Close() error
}

func CreateNewServiceList(ctx context.Context, layerProviders []*config.LayerProvider) ([]Service, error) {
	services := make([]Service, 0, len(layerProviders))

	for _, lp := range layerProviders {
		service, err := createService(ctx, lp)
		if err != nil {
			closeAll(services)
			return nil, fmt.Errorf("failed to create service for level %d (name: %s): %w", lp.Level, lp.Provider.GetName(), err)
		}
		services = append(services, service)
	}
	return services, nil
}

func createService(ctx context.Context, lp *config.LayerProvider) (Service, error) {
	if !lp.Enabled() {
		return &ServiceDisabled{level: lp.Level}, nil
	}

	provider, err := initProvider(ctx, lp.Provider)
	if err != nil {
		return nil, err
	}
	return NewService(provider, lp.Level), nil
}

func initProvider(ctx context.Context, p config.Provider) (CacheProvider, error) {
	switch c := p.(type) {
	case *config.Ristretto:
		return NewRistretto(*c)
	case *config.Redis:
		return NewRedis(ctx, *c)
	default:
		return nil, fmt.Errorf("unsupported provider type: %T", c)
	}
}

func closeAll(services []Service) {
	for _, s := range services {
		_ = s.Close()
	}
}

//////////////////////////
/// Concrete implementation
/////////////////////////

type ServiceImpl struct {
	client CacheProvider
	level  int
}

func NewService(client CacheProvider, level int) *ServiceImpl {
	return &ServiceImpl{client: client, level: level}
}

func (s *ServiceImpl) GetAll(ctx context.Context, keys []string) (map[string]string, error) {
	if len(keys) == 0 {
		return map[string]string{}, nil
	}

	values, err := s.client.BatchGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("BatchGet error: %w", err)
	}

	metrics.RecordCacheLayer(s.level, len(values), len(keys)-len(values))
	return values, nil
}

func (s *ServiceImpl) PutAll(ctx context.Context, items map[string]string, ttls map[string]time.Duration) error {
	if len(items) == 0 {
		return nil
	}
	if err := s.client.BatchPut(ctx, items, ttls); err != nil {
		return fmt.Errorf("BatchPut error: %w", err)
	}
	return nil
}

func (s *ServiceImpl) Enabled() bool { return true }

func (s *ServiceImpl) Level() int { return s.level }

func (s *ServiceImpl) Close() error {
	return s.client.Close()
}

//////////////////////////
/// DisabledService
/////////////////////////

type ServiceDisabled struct {
	level int
}

func (s *ServiceDisabled) GetAll(context.Context, []string) (map[string]string, error) {
	return map[string]string{}, nil
}

func (s *ServiceDisabled) PutAll(context.Context, map[string]string, map[string]time.Duration) error {
	return nil
}

func (s *ServiceDisabled) Enabled() bool { return false }

func (s *ServiceDisabled) Level() int { return s.level }

func (s *ServiceDisabled) Close() error {
	return nil
}
