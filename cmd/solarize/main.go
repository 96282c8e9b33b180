package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpadapter "github.com/ashleyalmeida07/SolarizeIt/internal/adapter/http"
	kafkaadapter "github.com/ashleyalmeida07/SolarizeIt/internal/adapter/kafka"
	"github.com/ashleyalmeida07/SolarizeIt/internal/adapter/llm"
	"github.com/ashleyalmeida07/SolarizeIt/internal/adapter/openweather"
	"github.com/ashleyalmeida07/SolarizeIt/internal/adapter/postgres"
	"github.com/ashleyalmeida07/SolarizeIt/internal/config"
	"github.com/ashleyalmeida07/SolarizeIt/internal/domain"
	"github.com/ashleyalmeida07/SolarizeIt/internal/observability"
	"github.com/ashleyalmeida07/SolarizeIt/internal/pipeline"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	store := postgres.NewStore(db, logger)
	if err := store.Migrate(ctx); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	weatherClient := openweather.NewClient(cfg.WeatherAPIKey, cfg.WeatherBaseURL, cfg.WeatherTimeout, metrics, logger)
	weather := openweather.NewCachedProvider(weatherClient, cfg.WeatherCacheSize, cfg.WeatherCacheTTL, metrics)
	logger.Info("weather provider configured", "cache_size", cfg.WeatherCacheSize, "cache_ttl", cfg.WeatherCacheTTL)

	enricher := llm.NewEnricher(llm.Config{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	}, metrics, logger)

	opts := []pipeline.Option{
		pipeline.WithCalculator(domain.NewCalculator(cfg.TariffPerKWh)),
		pipeline.WithEnrichRetry(cfg.EnrichMaxAttempts, 0, 0),
	}

	// Publishing is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		opts = append(opts, pipeline.WithPublisher(publisher))
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	p := pipeline.New(weather, enricher, store, logger, metrics, opts...)

	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:           cfg.HTTPAddr,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		WriteTimeout:   writeTimeout(cfg),
		Dependencies: map[string]bool{
			"weather_api": cfg.WeatherAPIKey != "",
			"llm_api":     cfg.LLMAPIKey != "",
			"database":    cfg.DatabaseURL != "",
			"kafka":       cfg.KafkaEnabled,
		},
	}, p, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("shutdown complete")
}

// writeTimeout covers one weather call plus every enrichment attempt.
func writeTimeout(cfg *config.Config) time.Duration {
	return cfg.WeatherTimeout + time.Duration(cfg.EnrichMaxAttempts)*(cfg.LLMTimeout+5*time.Second) + 10*time.Second
}
