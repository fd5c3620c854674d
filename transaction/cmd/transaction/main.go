package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fraudwatch-systems/fraudwatch-stack/common/logging"
	fwnats "github.com/fraudwatch-systems/fraudwatch-stack/common/messaging/nats"
	"github.com/fraudwatch-systems/fraudwatch-stack/transaction/internal/config"
	"github.com/fraudwatch-systems/fraudwatch-stack/transaction/internal/handlers"
	"github.com/fraudwatch-systems/fraudwatch-stack/transaction/internal/messaging"
	"github.com/fraudwatch-systems/fraudwatch-stack/transaction/internal/metrics"
	"github.com/fraudwatch-systems/fraudwatch-stack/transaction/internal/ratelimit"
	"github.com/fraudwatch-systems/fraudwatch-stack/transaction/internal/repository"
	"github.com/fraudwatch-systems/fraudwatch-stack/transaction/internal/service"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logging.SetDefault(log)

	connString := cfg.Database.Postgres.ConnString()

	log.Info("running database migrations")
	m, err := migrate.New("file://migrations", connString)
	if err != nil {
		log.Error("failed to initialize migrations", logging.Err(err))
		os.Exit(1)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.Error("failed to run migrations", logging.Err(err))
		os.Exit(1)
	}
	log.Info("database migrations completed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := repository.NewPostgresStore(ctx, connString)
	if err != nil {
		log.Error("failed to connect to PostgreSQL", logging.Err(err))
		os.Exit(1)
	}
	defer store.Close()

	natsCfg := fwnats.DefaultConfig()
	natsCfg.URL = cfg.NATS.URL
	natsCfg.Name = cfg.NATS.Name
	js, err := fwnats.NewJetStreamClient(natsCfg, log)
	if err != nil {
		log.Error("failed to connect to NATS", logging.Err(err))
		os.Exit(1)
	}
	defer js.Close()

	if err := js.EnsureStream(ctx, fwnats.TransactionsStream); err != nil {
		log.Error("failed to ensure transactions stream", logging.Err(err))
		os.Exit(1)
	}

	var limiter ratelimit.RateLimiter = &ratelimit.NoOpRateLimiter{}
	if cfg.RateLimit.Enabled {
		limiter, err = ratelimit.NewRedisRateLimiter(
			cfg.RateLimit.RedisURL, cfg.RateLimit.Limit, cfg.RateLimit.Window)
		if err != nil {
			log.Error("failed to connect to Redis", logging.Err(err))
			os.Exit(1)
		}
	}
	defer limiter.Close()

	registry := prometheus.NewRegistry()
	ingestMetrics := metrics.New(registry)

	publisher := messaging.NewTransactionEventPublisher(js, cfg.NATS.PublishTimeout)
	svc := service.NewService(store, publisher, ingestMetrics, log)
	handler := handlers.NewHandler(svc, limiter, ingestMetrics, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handler.HealthCheck)
	mux.HandleFunc("/api/v1/transactions", handler.CreateTransaction)
	mux.HandleFunc("/api/v1/transactions/", handler.GetTransaction)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("transaction service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", logging.Err(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", logging.Err(err))
	}

	log.Info("stopped")
}
