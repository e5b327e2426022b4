package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockfolio/internal/config"
	"stockfolio/internal/holdings"
	"stockfolio/internal/httpx"
	"stockfolio/internal/logger"
	"stockfolio/internal/quote"
	"stockfolio/internal/quote/cache"
	"stockfolio/internal/quote/ratelimit"
	"stockfolio/internal/quote/yahoo"
	"stockfolio/internal/refresh"
	"stockfolio/internal/server"
)

func main() {
	cfgPath := os.Getenv("CONFIG_FILE")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootLog := logger.New(logger.Config{})
		bootLog.Fatal().Err(err).Msg("config")
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second

	httpClient := httpx.New(timeout)
	httpClient.UserAgent = cfg.Yahoo.UserAgent

	var src quote.Source = yahoo.New(
		yahoo.WithBaseURL(cfg.Yahoo.Endpoint),
		yahoo.WithHTTPClient(httpClient),
	)
	// Prefer token bucket with burst if RPM is set, otherwise use min-interval
	if cfg.Yahoo.MaxRequestsPerMinute > 0 {
		rate := float64(cfg.Yahoo.MaxRequestsPerMinute) / 60.0
		burst := cfg.Yahoo.Burst
		if burst <= 0 {
			burst = 1
		}
		src = &ratelimit.TokenBucketSource{S: src, TB: ratelimit.NewTokenBucket(rate, burst)}
	} else if cfg.Yahoo.MinRequestIntervalSec > 0 {
		src = &ratelimit.MinInterval{S: src, Interval: time.Duration(cfg.Yahoo.MinRequestIntervalSec) * time.Second}
	}
	if cfg.Yahoo.CacheTTLSeconds > 0 {
		src = &cache.Source{S: src, TTL: time.Duration(cfg.Yahoo.CacheTTLSeconds) * time.Second, MaxItems: cfg.Yahoo.CacheMaxItems}
	}

	norm := quote.NewNormalizer(src, log)

	store, err := holdings.Open(cfg.Portfolio.DBPath, log)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Portfolio.DBPath).Msg("opening holdings store")
	}
	defer store.Close()

	manager, err := refresh.NewManager(refresh.ManagerConfig{
		Store:      store,
		Normalizer: norm,
		Watch:      cfg.Portfolio.WatchSymbols,
		Log:        log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("initializing portfolio state")
	}

	poller := refresh.NewPoller(
		time.Duration(cfg.Portfolio.PollIntervalSec)*time.Second,
		func() {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			_ = manager.Refresh(ctx)
		},
		log,
	)
	poller.Start()
	defer poller.Stop()

	// Warm the snapshot so the first page load has quotes.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_ = manager.Refresh(ctx)
	}()

	srv := server.New(server.Config{
		Log:            log,
		Manager:        manager,
		Normalizer:     norm,
		Poller:         poller,
		Port:           cfg.Server.Port,
		RequestTimeout: timeout,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
