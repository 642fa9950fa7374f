package cache

import (
	"encoding/json"
	"fmt"
	"time"
)

// entry - конверт, в котором значение лежит во всех слоях.
// Абсолютный срок жизни хранится рядом со значением, поэтому слои согласны
// между собой, когда запись устарела, а при переносе в верхний слой
// можно выставить только оставшийся ttl.
type entry struct {
	ExpiresAt int64           `json:"e"` // unix ms, 0 - без срока жизни
	Value     json.RawMessage `json:"v"`
}

func newEntry(value json.RawMessage, ttl time.Duration, now time.Time) entry {
	e := entry{Value: value}
	if ttl > 0 {
		e.ExpiresAt = now.Add(ttl).UnixMilli()
	}
	return e
}

func (e entry) expired(now time.Time) bool {
	return e.ExpiresAt != 0 && now.UnixMilli() >= e.ExpiresAt
}

// remaining возвращает оставшийся ttl. 0 - запись без срока жизни.
func (e entry) remaining(now time.Time) time.Duration {
	if e.ExpiresAt == 0 {
		return 0
	}
	return time.UnixMilli(e.ExpiresAt).Sub(now)
}

func encodeEntry(e entry) (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("encode cache entry: %w", err)
	}
	return string(b), nil
}

func decodeEntry(s string) (entry, error) {
	var e entry
	if err := json.Unmarshal([]byte(s), &e); err != nil {
		return entry{}, fmt.Errorf("decode cache entry: %w", err)
	}
	return e, nil
}
