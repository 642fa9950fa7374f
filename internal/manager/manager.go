package manager

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"rnm-aggregator/api/dto"
	"rnm-aggregator/internal/cache"
	"rnm-aggregator/internal/integration"
	"rnm-aggregator/internal/metrics"
	"rnm-aggregator/internal/resolver"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"telegram-alerts-go/alert"
)

// Manager - агрегирующий клиент поверх удалённого API.
//
// Операции разрешают связи, которые API отдаёт только ссылками:
// персонаж → локация → измерение, эпизод → персонажи, локация → жители.
//
// Ни одна операция не возвращает ошибку. При сбое транспорта или декодирования
// ошибка пишется в лог, а вызывающий получает пустой результат (см. описание каждой операции).
// Отсутствие данных (404 удалённого API) ошибкой не считается и даёт тот же пустой результат.
type Manager interface {

	// ListCharacters, ListLocations, ListEpisodes возвращают страницу листинга.
	// Страница кэшируется под ключом {type}_page_{page}. При сбое - пустая страница с Pages=1.
	ListCharacters(ctx context.Context, page int) dto.Page[dto.CharacterRecord]
	ListLocations(ctx context.Context, page int) dto.Page[dto.LocationRecord]
	ListEpisodes(ctx context.Context, page int) dto.Page[dto.EpisodeRecord]

	// CharactersByDimension возвращает всех жителей локаций указанного измерения без дубликатов.
	CharactersByDimension(ctx context.Context, dimension string) []dto.CharacterRecord

	// CharactersByLocation возвращает локацию и её жителей. Если локация не найдена,
	// в Location.Name остаётся входное имя, а список персонажей пуст.
	CharactersByLocation(ctx context.Context, name string) dto.LocationCharacters

	// CharactersByEpisode принимает номер или название эпизода.
	// Если эпизод не найден - Episode == nil и пустой список.
	CharactersByEpisode(ctx context.Context, idOrName string) dto.EpisodeCharacters

	// CharacterDetail возвращает персонажа и измерение его текущей локации.
	// Ошибка при получении измерения не влияет на персонажа: Dimension == nil.
	CharacterDetail(ctx context.Context, id int) dto.CharacterDetail
}

type ManagerImpl struct {
	fetcher        integration.Fetcher
	cache          cache.Cache
	resolver       *resolver.Resolver
	maxFilterPages int
}

const (
	resourceCharacter = "character"
	resourceLocation  = "location"
	resourceEpisode   = "episode"

	episodeLookupPrefix = "episode_lookup_"

	// параллельные запросы страниц при фильтрации
	filterConcurrency = 4
)

func (m *ManagerImpl) ListCharacters(ctx context.Context, page int) dto.Page[dto.CharacterRecord] {
	raw, err := listPage[integration.Character](ctx, m, resourceCharacter, page)
	if err != nil {
		m.fallback("listCharacters", err, "page", page)
		return dto.EmptyPage[dto.CharacterRecord]()
	}
	return dto.Page[dto.CharacterRecord]{Results: dto.MapAllCharacters(raw.Results), Info: dto.MapPageInfo(raw.Info)}
}

func (m *ManagerImpl) ListLocations(ctx context.Context, page int) dto.Page[dto.LocationRecord] {
	raw, err := listPage[integration.Location](ctx, m, resourceLocation, page)
	if err != nil {
		m.fallback("listLocations", err, "page", page)
		return dto.EmptyPage[dto.LocationRecord]()
	}
	return dto.Page[dto.LocationRecord]{Results: dto.MapAllLocations(raw.Results), Info: dto.MapPageInfo(raw.Info)}
}

func (m *ManagerImpl) ListEpisodes(ctx context.Context, page int) dto.Page[dto.EpisodeRecord] {
	raw, err := listPage[integration.Episode](ctx, m, resourceEpisode, page)
	if err != nil {
		m.fallback("listEpisodes", err, "page", page)
		return dto.EmptyPage[dto.EpisodeRecord]()
	}
	return dto.Page[dto.EpisodeRecord]{Results: dto.MapAllEpisodes(raw.Results), Info: dto.MapPageInfo(raw.Info)}
}

func (m *ManagerImpl) CharactersByDimension(ctx context.Context, dimension string) []dto.CharacterRecord {
	if dimension == "" {
		return []dto.CharacterRecord{}
	}

	locations, err := filter[integration.Location](ctx, m, resourceLocation, url.Values{"dimension": {dimension}}, m.maxFilterPages)
	if err != nil {
		m.fallback("charactersByDimension", err, "dimension", dimension)
		return []dto.CharacterRecord{}
	}

	residents := make([]string, 0)
	for _, loc := range locations {
		residents = append(residents, loc.Residents...)
	}

	characters, err := m.resolver.FetchByIDs(ctx, resolver.UniqueIDs(resolver.ExtractIDs(residents)))
	if err != nil {
		m.fallback("charactersByDimension", err, "dimension", dimension)
		return []dto.CharacterRecord{}
	}
	return characters
}

func (m *ManagerImpl) CharactersByLocation(ctx context.Context, name string) dto.LocationCharacters {
	notFound := dto.LocationCharacters{
		Location:   dto.LocationReference{Name: name},
		Characters: []dto.CharacterRecord{},
	}
	if name == "" {
		return notFound
	}

	locations, err := filter[integration.Location](ctx, m, resourceLocation, url.Values{"name": {name}}, 1)
	if err != nil {
		m.fallback("charactersByLocation", err, "location", name)
		return notFound
	}

	loc, ok := pickByName(locations, name, func(l integration.Location) string { return l.Name })
	if !ok {
		return notFound
	}

	result := dto.LocationCharacters{
		Location:   dto.LocationReference{Name: loc.Name, URL: loc.URL},
		Characters: []dto.CharacterRecord{},
	}

	characters, err := m.resolver.FetchByIDs(ctx, resolver.UniqueIDs(resolver.ExtractIDs(loc.Residents)))
	if err != nil {
		m.fallback("charactersByLocation", err, "location", name)
		return result
	}
	result.Characters = characters
	return result
}

func (m *ManagerImpl) CharactersByEpisode(ctx context.Context, idOrName string) dto.EpisodeCharacters {
	notFound := dto.EpisodeCharacters{Characters: []dto.CharacterRecord{}}
	if idOrName == "" {
		return notFound
	}

	// отсутствие эпизода тоже кэшируется (null)
	episode, err := cache.Fetch(ctx, m.cache, episodeLookupKey(idOrName), entryTTL, func(ctx context.Context) (*integration.Episode, error) {
		return m.findEpisode(ctx, idOrName)
	})
	if err != nil {
		m.fallback("charactersByEpisode", err, "episode", idOrName)
		return notFound
	}
	if episode == nil {
		return notFound
	}

	record := dto.MapEpisode(*episode)
	result := dto.EpisodeCharacters{Episode: &record, Characters: []dto.CharacterRecord{}}

	characters, err := m.resolver.FetchByIDs(ctx, resolver.UniqueIDs(resolver.ExtractIDs(episode.Characters)))
	if err != nil {
		m.fallback("charactersByEpisode", err, "episode", idOrName)
		return result
	}
	result.Characters = characters
	return result
}

func (m *ManagerImpl) CharacterDetail(ctx context.Context, id int) dto.CharacterDetail {
	if id <= 0 {
		return dto.CharacterDetail{}
	}

	character, err := cache.Fetch(ctx, m.cache, fmt.Sprintf("character_%d", id), entryTTL, func(ctx context.Context) (*integration.Character, error) {
		var c integration.Character
		if err := m.fetcher.Get(ctx, "/"+resourceCharacter+"/"+strconv.Itoa(id), nil, &c); err != nil {
			return nil, err
		}
		return &c, nil
	})
	if err != nil {
		m.fallback("characterDetail", err, "id", id)
		return dto.CharacterDetail{}
	}
	if character == nil {
		return dto.CharacterDetail{}
	}

	record := dto.MapCharacter(*character)
	return dto.CharacterDetail{
		Character: &record,
		Dimension: m.dimensionOf(ctx, character.Location.URL),
	}
}

// dimensionOf получает измерение локации по её URL. Любая ошибка даёт nil.
func (m *ManagerImpl) dimensionOf(ctx context.Context, locationURL string) *string {
	if locationURL == "" {
		return nil
	}

	ids := resolver.ExtractIDs([]string{locationURL})
	if len(ids) == 0 {
		zap.S().Warnw("can't extract location id", "url", locationURL)
		return nil
	}

	dimension, err := cache.Fetch(ctx, m.cache, "location_dimension_"+hashKey(locationURL), entryTTL, func(ctx context.Context) (*string, error) {
		var loc integration.Location
		if err := m.fetcher.Get(ctx, "/"+resourceLocation+"/"+strconv.Itoa(ids[0]), nil, &loc); err != nil {
			return nil, err
		}
		return &loc.Dimension, nil
	})
	if err != nil {
		zap.S().Warnw("can't resolve character dimension", "url", locationURL, "error", err)
		return nil
	}
	return dimension
}

// findEpisode: строка из цифр - запрос по id, иначе фильтр по названию.
func (m *ManagerImpl) findEpisode(ctx context.Context, idOrName string) (*integration.Episode, error) {
	if isNumeric(idOrName) {
		var ep integration.Episode
		err := m.fetcher.Get(ctx, "/"+resourceEpisode+"/"+idOrName, nil, &ep)
		if integration.IsNotFound(err) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &ep, nil
	}

	episodes, err := filter[integration.Episode](ctx, m, resourceEpisode, url.Values{"name": {idOrName}}, 1)
	if err != nil {
		return nil, err
	}
	ep, ok := pickByName(episodes, idOrName, func(e integration.Episode) string { return e.Name })
	if !ok {
		return nil, nil
	}
	return &ep, nil
}

// fallback фиксирует сбой операции. NotFound сбоем не считается.
func (m *ManagerImpl) fallback(operation string, err error, keysAndValues ...any) {
	kv := append([]any{"operation", operation}, keysAndValues...)
	if integration.IsNotFound(err) {
		zap.S().Debugw("nothing found", kv...)
		return
	}
	metrics.RecordFallback(operation)
	zap.S().Errorw(alert.Prefix("aggregation failed, returning empty result"), append(kv, "error", err)...)
}

/* ---------- helpers ---------- */

// episodeLookupKey не пересекается с ключами листинга {resource}_page_{n}:
// ввод "page_1" не должен попасть в кэш страницы эпизодов.
func episodeLookupKey(idOrName string) string {
	return episodeLookupPrefix + idOrName
}

func listPageKey(resource string, page int) string {
	return fmt.Sprintf("%s_page_%d", resource, page)
}

func listPage[T any](ctx context.Context, m *ManagerImpl, resource string, page int) (integration.Page[T], error) {
	page = max(page, 1)
	return cache.Fetch(ctx, m.cache, listPageKey(resource, page), entryTTL, func(ctx context.Context) (integration.Page[T], error) {
		var p integration.Page[T]
		err := m.fetcher.Get(ctx, "/"+resource, url.Values{"page": {strconv.Itoa(page)}}, &p)
		return p, err
	})
}

// filter запрашивает отфильтрованный листинг без кэша. Кроме первой страницы
// параллельно загружаются страницы 2..min(pages, maxPages); ошибка на них
// пишется в лог и страница пропускается. 404 - пустой результат.
func filter[T any](ctx context.Context, m *ManagerImpl, resource string, query url.Values, maxPages int) ([]T, error) {
	var first integration.Page[T]
	if err := m.fetcher.Get(ctx, "/"+resource, query, &first); err != nil {
		if integration.IsNotFound(err) {
			return []T{}, nil
		}
		return nil, err
	}

	last := min(first.Info.Pages, maxPages)
	if last <= 1 {
		return first.Results, nil
	}

	pages := make([][]T, last+1)
	pages[1] = first.Results

	var g errgroup.Group
	g.SetLimit(filterConcurrency)
	for p := 2; p <= last; p++ {
		g.Go(func() error {
			q := cloneValues(query)
			q.Set("page", strconv.Itoa(p))

			var page integration.Page[T]
			if err := m.fetcher.Get(ctx, "/"+resource, q, &page); err != nil {
				zap.S().Warnw("filter page skipped", "resource", resource, "page", p, "error", err)
				return nil
			}
			pages[p] = page.Results
			return nil
		})
	}
	_ = g.Wait()

	results := make([]T, 0, len(first.Results)*last)
	for _, items := range pages {
		results = append(results, items...)
	}
	return results, nil
}

// pickByName выбирает элемент с совпадающим (без учёта регистра) именем,
// иначе первый элемент листинга.
func pickByName[T any](items []T, name string, nameOf func(T) string) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	for _, item := range items {
		if strings.EqualFold(nameOf(item), name) {
			return item, true
		}
	}
	return items[0], true
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func cloneValues(v url.Values) url.Values {
	c := make(url.Values, len(v)+1)
	for k, vals := range v {
		c[k] = append([]string(nil), vals...)
	}
	return c
}

func hashKey(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
