package main

import (
	"context"
	"errors"
	"github.com/joho/godotenv"
	"github.com/nikolayk812/spicecart/internal/httpapi"
	"github.com/nikolayk812/spicecart/internal/metrics"
	"github.com/nikolayk812/spicecart/internal/notify"
	"github.com/nikolayk812/spicecart/internal/port"
	"github.com/nikolayk812/spicecart/internal/repository"
	"github.com/nikolayk812/spicecart/pkg/config"
	"github.com/nikolayk812/spicecart/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const serviceName = "cartd"

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment", nil)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logg.Error(ctx, "failed to open cart store", err)
		os.Exit(1)
	}
	defer closeStore()

	unit, err := cfg.Checkout.Unit()
	if err != nil {
		logg.Error(ctx, "invalid checkout currency", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cartMetrics := metrics.NewCartMetrics(registry)

	sessions, err := httpapi.NewSessions(httpapi.SessionsParams{
		Store:     store,
		KeyPrefix: cfg.Store.Key,
		Notifier:  notify.NewLogNotifier(logg),
		Logger:    logg,
		Metrics:   cartMetrics,
		Currency:  unit,
	})
	if err != nil {
		logg.Error(ctx, "failed to create sessions", err)
		os.Exit(1)
	}

	addr := ":" + cfg.App.Port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":   cfg.App.Env,
		"addr":  addr,
		"store": cfg.Store.Driver,
	})

	server := &http.Server{
		Addr: addr,
		Handler: httpapi.NewRouter(httpapi.RouterParams{
			Sessions: sessions,
			Logger:   logg,
			Gatherer: registry,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}()

	logg.Info(ctx, "starting cart server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "cart server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "cart server stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (port.KVStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		pool, err := repository.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPostgresKV(pool, int64(cfg.Store.QuotaBytes)), pool.Close, nil
	case config.StoreRedis:
		client, err := repository.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		store := repository.NewRedisKV(client, repository.RedisOptions{
			TTL:           cfg.Redis.TTL,
			MaxValueBytes: cfg.Store.QuotaBytes,
		})
		return store, func() { _ = client.Close() }, nil
	default:
		return repository.NewMemoryKV(cfg.Store.QuotaBytes), func() {}, nil
	}
}
