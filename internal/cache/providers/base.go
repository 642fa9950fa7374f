package providers

import (
	"context"
	"time"
)

// CacheProvider - клиент конкретного хранилища (ristretto, redis).
// Значения хранятся строками, ttl <= 0 означает запись без срока жизни.
type CacheProvider interface {
	BatchGet(ctx context.Context, keys []string) (map[string]string, error)
	BatchPut(ctx context.Context, items map[string]string, ttls map[string]time.Duration) error

	Close() error
}

const chunkSize = 500

func splitKeysToChunks(keys []string, size int) [][]string {
	if size <= 0 {
		size = chunkSize
	}
	chunks := make([][]string, 0, (len(keys)+size-1)/size)
	for start := 0; start < len(keys); start += size {
		end := min(start+size, len(keys))
		chunks = append(chunks, keys[start:end])
	}
	return chunks
}

func splitKeyValueToChunks(items map[string]string, size int) []map[string]string {
	if size <= 0 {
		size = chunkSize
	}
	chunks := make([]map[string]string, 0, (len(items)+size-1)/size)
	current := make(map[string]string, min(size, len(items)))
	for k, v := range items {
		current[k] = v
		if len(current) == size {
			chunks = append(chunks, current)
			current = make(map[string]string, size)
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}
