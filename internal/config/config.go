package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/ashleyalmeida07/SolarizeIt/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr           string
	LogLevel           string
	LogFormat          string
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string

	DatabaseURL string

	// OpenWeather current-conditions API.
	WeatherAPIKey    string
	WeatherBaseURL   string
	WeatherTimeout   time.Duration
	WeatherCacheSize int
	WeatherCacheTTL  time.Duration

	// Anthropic Messages API used for narrative enrichment.
	LLMAPIKey         string
	LLMBaseURL        string // empty uses the SDK default
	LLMModel          string
	LLMTimeout        time.Duration
	EnrichMaxAttempts int

	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool

	TariffPerKWh float64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	weatherTimeout, err := parsePositiveDuration("WEATHER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	weatherCacheTTL, err := parsePositiveDuration("WEATHER_CACHE_TTL", "10m")
	if err != nil {
		return nil, err
	}
	llmTimeout, err := parsePositiveDuration("LLM_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}
	weatherCacheSize, err := parseIntInRange("WEATHER_CACHE_SIZE", 1000, 1, 1_000_000)
	if err != nil {
		return nil, err
	}
	enrichAttempts, err := parseIntInRange("ENRICH_MAX_ATTEMPTS", 3, 1, 10)
	if err != nil {
		return nil, err
	}
	tariff, err := ParseTariff()
	if err != nil {
		return nil, err
	}

	brokers := sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092"))
	kafkaEnabled, err := parseBool("KAFKA_ENABLED", os.Getenv("KAFKA_BROKERS") != "")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		CORSAllowedOrigins: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", "https://solarizeit.netlify.app,http://localhost:3000")),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		WeatherAPIKey:    os.Getenv("OPENWEATHER_API_KEY"),
		WeatherBaseURL:   sharedcfg.EnvOrDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org"),
		WeatherTimeout:   weatherTimeout,
		WeatherCacheSize: weatherCacheSize,
		WeatherCacheTTL:  weatherCacheTTL,

		LLMAPIKey:         os.Getenv("LLM_API_KEY"),
		LLMBaseURL:        os.Getenv("LLM_BASE_URL"),
		LLMModel:          sharedcfg.EnvOrDefault("LLM_MODEL", "claude-sonnet-4-5"),
		LLMTimeout:        llmTimeout,
		EnrichMaxAttempts: enrichAttempts,

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "solar-analyses"),
		KafkaEnabled: kafkaEnabled,

		TariffPerKWh: tariff,
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.WeatherAPIKey == "" {
		return nil, errors.New("OPENWEATHER_API_KEY is required")
	}
	if cfg.LLMAPIKey == "" {
		return nil, errors.New("LLM_API_KEY is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}

// ParseTariff reads SOLAR_TARIFF_PER_KWH, defaulting to the domain tariff.
func ParseTariff() (float64, error) {
	s := os.Getenv("SOLAR_TARIFF_PER_KWH")
	if s == "" {
		return domain.DefaultTariffPerKWh, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid SOLAR_TARIFF_PER_KWH: %q", s)
	}
	return v, nil
}
