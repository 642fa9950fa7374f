package integration

import (
	"net/http"
	"rnm-aggregator/internal/cache/config"
	"time"
)

func CreateHttpFetcher(cfg config.ApiConfig) Fetcher {
	client := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return newHttpFetcher(client, cfg.BaseURL, cfg.Headers, cfg.Timeout)
}
