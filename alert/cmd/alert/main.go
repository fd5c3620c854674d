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

	"github.com/fraudwatch-systems/fraudwatch-stack/alert/internal/config"
	"github.com/fraudwatch-systems/fraudwatch-stack/alert/internal/handlers"
	"github.com/fraudwatch-systems/fraudwatch-stack/alert/internal/messaging"
	"github.com/fraudwatch-systems/fraudwatch-stack/alert/internal/metrics"
	"github.com/fraudwatch-systems/fraudwatch-stack/alert/internal/notification"
	"github.com/fraudwatch-systems/fraudwatch-stack/alert/internal/repository"
	"github.com/fraudwatch-systems/fraudwatch-stack/alert/internal/service"
	"github.com/fraudwatch-systems/fraudwatch-stack/common/logging"
	commonmsg "github.com/fraudwatch-systems/fraudwatch-stack/common/messaging"
	fwnats "github.com/fraudwatch-systems/fraudwatch-stack/common/messaging/nats"
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

	if err := js.EnsureStream(ctx, fwnats.FraudStream); err != nil {
		log.Error("failed to ensure fraud stream", logging.Err(err))
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	alertMetrics := metrics.New(registry)
	dlqMetrics := metrics.NewDLQMetrics(registry)

	channels := buildChannels(cfg.Notification, log)
	gateway := notification.NewGateway(channels, alertMetrics, log)

	svc := service.NewService(store, gateway, alertMetrics, log)

	consumer := messaging.NewConsumer(svc, log)
	stopLive, err := js.Consume(ctx, fwnats.ConsumeConfig{
		Stream:       fwnats.FraudStream.Name,
		Durable:      "alert",
		Subject:      commonmsg.SubjectFraudDetected,
		MaxDeliver:   cfg.Consumer.MaxDeliver,
		Backoff:      cfg.Consumer.Backoff,
		AckWait:      cfg.Consumer.AckWait,
		ParkFailures: true,
	}, consumer.Handle)
	if err != nil {
		log.Error("failed to start fraud consumer", logging.Err(err))
		os.Exit(1)
	}
	defer stopLive()

	dlqConsumer := messaging.NewDLQConsumer(svc, dlqMetrics, log)
	stopDLQ, err := js.Consume(ctx, fwnats.ConsumeConfig{
		Stream:       fwnats.FraudStream.Name,
		Durable:      "alert-dlq",
		Subject:      commonmsg.DLQSubject(commonmsg.SubjectFraudDetected),
		MaxDeliver:   cfg.Consumer.MaxDeliver,
		Backoff:      cfg.Consumer.Backoff,
		AckWait:      cfg.Consumer.AckWait,
		ParkFailures: false,
	}, dlqConsumer.Handle)
	if err != nil {
		log.Error("failed to start dead-letter consumer", logging.Err(err))
		os.Exit(1)
	}
	defer stopDLQ()

	sweeper := service.NewSweeper(
		store,
		cfg.Retention.SweepInterval,
		cfg.Retention.ProcessedEventTTL,
		log,
	)
	go sweeper.Run(ctx)

	handler := handlers.NewHandler(svc, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handler.HealthCheck)
	mux.HandleFunc("/api/v1/alerts", handler.ListAlerts)
	mux.HandleFunc("/api/v1/alerts/users/", handler.ListAlertsByUser)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("alert service listening", "addr", srv.Addr)
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

// buildChannels assembles the active notification channels. The gateway
// adds the log fallback when nothing is configured.
func buildChannels(cfg config.NotificationConfig, log *logging.Logger) []notification.Channel {
	channels := []notification.Channel{notification.NewLogChannel(log)}

	if len(cfg.Email.Recipients) > 0 {
		channels = append(channels, notification.NewEmailChannel(notification.EmailConfig{
			Host:       cfg.Email.Host,
			Port:       cfg.Email.Port,
			Username:   cfg.Email.Username,
			Password:   cfg.Email.Password,
			From:       cfg.Email.From,
			Recipients: cfg.Email.Recipients,
		}))
	} else {
		log.Info("email notifications disabled, no recipients configured")
	}

	if cfg.Webhook.URL != "" {
		channels = append(channels, notification.NewWebhookChannel(cfg.Webhook.URL, cfg.Webhook.Timeout))
	}

	return channels
}
