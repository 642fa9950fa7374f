package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"rnm-aggregator/internal/cache"
	"rnm-aggregator/internal/cache/config"
	"rnm-aggregator/internal/httpserver"
	"rnm-aggregator/internal/integration"
	"rnm-aggregator/internal/logger"
	"rnm-aggregator/internal/manager"
	"rnm-aggregator/internal/metrics"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"telegram-alerts-go/alert"
)

const shutdownTimeout = 10 * time.Second

func main() {
	appConfig, err := config.LoadAppConfig(config.ResolvePath())
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if _, err := logger.Init(string(appConfig.Logger.Mode)); err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()

	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	layeredCache, err := cache.CreateLayeredCache(ctx, appConfig)
	if err != nil {
		zap.S().Fatalw(alert.Prefix("cache init failed"), "error", err)
	}

	fetcher := integration.CreateHttpFetcher(appConfig.Api)

	aggregator := manager.CreateManager(fetcher, layeredCache, appConfig.Api.MaxFilterPages)
	mainAdapter := manager.NewTimeoutManagerAdapter(aggregator, appConfig.Server.RequestTimeout)

	servers := []*http.Server{
		newServer(httpserver.NewRouter(mainAdapter), appConfig.Server.Port),
		newServer(httpserver.NewMetricRouter(), appConfig.Server.MetricsPort),
	}

	// оба сервера работают параллельно, main ждёт их остановки через WaitGroup
	var wg sync.WaitGroup
	for _, srv := range servers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			listenServer(srv)
		}()
	}

	<-ctx.Done()
	zap.S().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.S().Warnw("server shutdown error", "addr", srv.Addr, "error", err)
		}
	}
	wg.Wait()

	if err := layeredCache.Close(); err != nil {
		zap.S().Warnw("cache close error", "error", err)
	}
	zap.S().Infow("stopped")
}

func newServer(router http.Handler, port int) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func listenServer(srv *http.Server) {
	zap.S().Infow("starting server", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zap.S().Fatalw(alert.Prefix("server error"), "error", err)
	}
}
