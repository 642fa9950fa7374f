package manager

import (
	"context"
	"rnm-aggregator/api/dto"
	"rnm-aggregator/internal/metrics"
	"time"

	"go.uber.org/zap"
	"telegram-alerts-go/alert"
)

// TimeoutManagerAdapter оборачивает Manager для HTTP слоя:
//   - каждый вызов получает контекст с дедлайном requestTimeout;
//   - паника внутри операции пишется в лог, а наружу уходит пустой результат операции.
type TimeoutManagerAdapter struct {
	manager Manager
	timeout time.Duration
}

const defaultTimeout = 30 * time.Second

// NewTimeoutManagerAdapter создаёт адаптер с явным или дефолтным тайм-аутом.
func NewTimeoutManagerAdapter(m Manager, timeout time.Duration) *TimeoutManagerAdapter {
	if timeout <= 0 {
		zap.S().Warnw("request timeout <= 0, using default", "timeout", defaultTimeout)
		timeout = defaultTimeout
	}
	return &TimeoutManagerAdapter{manager: m, timeout: timeout}
}

func (a *TimeoutManagerAdapter) ListCharacters(ctx context.Context, page int) dto.Page[dto.CharacterRecord] {
	return guard(ctx, a.timeout, "listCharacters", dto.EmptyPage[dto.CharacterRecord], func(ctx context.Context) dto.Page[dto.CharacterRecord] {
		return a.manager.ListCharacters(ctx, page)
	})
}

func (a *TimeoutManagerAdapter) ListLocations(ctx context.Context, page int) dto.Page[dto.LocationRecord] {
	return guard(ctx, a.timeout, "listLocations", dto.EmptyPage[dto.LocationRecord], func(ctx context.Context) dto.Page[dto.LocationRecord] {
		return a.manager.ListLocations(ctx, page)
	})
}

func (a *TimeoutManagerAdapter) ListEpisodes(ctx context.Context, page int) dto.Page[dto.EpisodeRecord] {
	return guard(ctx, a.timeout, "listEpisodes", dto.EmptyPage[dto.EpisodeRecord], func(ctx context.Context) dto.Page[dto.EpisodeRecord] {
		return a.manager.ListEpisodes(ctx, page)
	})
}

func (a *TimeoutManagerAdapter) CharactersByDimension(ctx context.Context, dimension string) []dto.CharacterRecord {
	empty := func() []dto.CharacterRecord { return []dto.CharacterRecord{} }
	return guard(ctx, a.timeout, "charactersByDimension", empty, func(ctx context.Context) []dto.CharacterRecord {
		return a.manager.CharactersByDimension(ctx, dimension)
	})
}

func (a *TimeoutManagerAdapter) CharactersByLocation(ctx context.Context, name string) dto.LocationCharacters {
	empty := func() dto.LocationCharacters {
		return dto.LocationCharacters{Location: dto.LocationReference{Name: name}, Characters: []dto.CharacterRecord{}}
	}
	return guard(ctx, a.timeout, "charactersByLocation", empty, func(ctx context.Context) dto.LocationCharacters {
		return a.manager.CharactersByLocation(ctx, name)
	})
}

func (a *TimeoutManagerAdapter) CharactersByEpisode(ctx context.Context, idOrName string) dto.EpisodeCharacters {
	empty := func() dto.EpisodeCharacters { return dto.EpisodeCharacters{Characters: []dto.CharacterRecord{}} }
	return guard(ctx, a.timeout, "charactersByEpisode", empty, func(ctx context.Context) dto.EpisodeCharacters {
		return a.manager.CharactersByEpisode(ctx, idOrName)
	})
}

func (a *TimeoutManagerAdapter) CharacterDetail(ctx context.Context, id int) dto.CharacterDetail {
	empty := func() dto.CharacterDetail { return dto.CharacterDetail{} }
	return guard(ctx, a.timeout, "characterDetail", empty, func(ctx context.Context) dto.CharacterDetail {
		return a.manager.CharacterDetail(ctx, id)
	})
}

func guard[T any](ctx context.Context, timeout time.Duration, operation string, empty func() T, call func(ctx context.Context) T) (result T) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			zap.S().Errorw(alert.Prefix("aggregation panic"), "operation", operation, "panic", r)
			metrics.RecordFallback(operation)
			result = empty()
		}
	}()

	return call(ctx)
}
