// Package resolver превращает URL-ссылки удалённого API в идентификаторы
// и загружает персонажей одним пакетным запросом.
package resolver

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"rnm-aggregator/api/dto"
	"rnm-aggregator/internal/cache"
	"rnm-aggregator/internal/integration"
	"strconv"
	"strings"
	"time"
)

const batchKeyPrefix = "characters_"

// ExtractIDs берёт последний сегмент каждого URL и разбирает его как положительное число.
// URL без '/', с нечисловым или неположительным сегментом пропускаются.
// Порядок сохраняется, дубликаты не удаляются.
func ExtractIDs(urls []string) []int {
	ids := make([]int, 0, len(urls))
	for _, u := range urls {
		i := strings.LastIndexByte(u, '/')
		if i < 0 {
			continue
		}
		id, err := strconv.Atoi(u[i+1:])
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// UniqueIDs удаляет дубликаты, оставляя первое вхождение.
func UniqueIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	unique := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

type Resolver struct {
	fetcher integration.Fetcher
	cache   cache.Cache
	ttl     time.Duration
}

func NewResolver(fetcher integration.Fetcher, c cache.Cache, ttl time.Duration) *Resolver {
	return &Resolver{fetcher: fetcher, cache: c, ttl: ttl}
}

// FetchByIDs загружает персонажей одним запросом /character/{id1,id2,...}.
//
// Пустой список - пустой результат без сетевых вызовов.
// Форма ответа зависит от числа запрошенных id: для одного id API отдаёт объект,
// для нескольких - массив. Результат всегда список.
func (r *Resolver) FetchByIDs(ctx context.Context, ids []int) ([]dto.CharacterRecord, error) {
	if len(ids) == 0 {
		return []dto.CharacterRecord{}, nil
	}

	joined := joinIDs(ids)
	raws, err := cache.Fetch(ctx, r.cache, BatchKey(joined), r.ttl, func(ctx context.Context) ([]integration.Character, error) {
		return r.fetchCharacters(ctx, joined, len(ids))
	})
	if err != nil {
		return nil, err
	}
	return dto.MapAllCharacters(raws), nil
}

func (r *Resolver) fetchCharacters(ctx context.Context, joined string, count int) ([]integration.Character, error) {
	path := "/character/" + joined

	if count == 1 {
		var single integration.Character
		if err := r.fetcher.Get(ctx, path, nil, &single); err != nil {
			return nil, fmt.Errorf("fetch character %s: %w", joined, err)
		}
		return []integration.Character{single}, nil
	}

	var list []integration.Character
	if err := r.fetcher.Get(ctx, path, nil, &list); err != nil {
		return nil, fmt.Errorf("fetch characters %s: %w", joined, err)
	}
	return list, nil
}

// BatchKey - ключ кэша пакетного запроса: characters_ + md5 от списка id.
func BatchKey(joinedIDs string) string {
	sum := md5.Sum([]byte(joinedIDs))
	return batchKeyPrefix + hex.EncodeToString(sum[:])
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
