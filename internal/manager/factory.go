package manager

import (
	"rnm-aggregator/internal/cache"
	"rnm-aggregator/internal/integration"
	"rnm-aggregator/internal/resolver"
	"time"
)

// entryTTL - срок жизни любой записи кэша.
const entryTTL = time.Hour

func CreateManager(fetcher integration.Fetcher, c cache.Cache, maxFilterPages int) *ManagerImpl {
	if maxFilterPages < 1 {
		maxFilterPages = 1
	}
	return &ManagerImpl{
		fetcher:        fetcher,
		cache:          c,
		resolver:       resolver.NewResolver(fetcher, c, entryTTL),
		maxFilterPages: maxFilterPages,
	}
}
