// Package config reads the storefront's settings from the environment. A .env
// file in the working directory is loaded first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/nutstore/internal/pricing"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	CatalogStatic = "static"
	CatalogSQLite = "sqlite"

	OrdersLocal    = "local"
	OrdersPostgres = "postgres"
)

type Config struct {
	HTTPPort           string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64

	LogLevel  string
	LogFormat string

	CatalogBackend        string
	CatalogDBPath         string
	CatalogMigrationsPath string
	CatalogCacheTTL       time.Duration

	OrderBackend       string
	PostgresHost       string
	PostgresPort       int
	PostgresUser       string
	PostgresPassword   string
	PostgresDB         string
	PostgresSSLMode    string
	PostgresMigrations string

	// Empty disables the outbox publisher.
	KafkaBrokers       []string
	OutboxPollInterval time.Duration

	// Empty keeps carts in memory only.
	MongoURI      string
	MongoDatabase string

	// Empty disables the catalog cache; liked lists then live in memory.
	RedisAddr     string
	RedisPassword string
	LikedTTL      time.Duration

	SessionIdleTimeout time.Duration

	Pricing pricing.Rules
}

// Load reads the configuration. envFile may be empty; a missing file is not
// an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var errs []error
	duration := func(key, def string) time.Duration {
		d, err := time.ParseDuration(getEnv(key, def))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return d
	}
	integer := func(key, def string) int {
		n, err := strconv.Atoi(getEnv(key, def))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return n
	}
	amount := func(key, def string) decimal.Decimal {
		d, err := decimal.NewFromString(getEnv(key, def))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return d
	}

	cfg := &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		RequestTimeout:     duration("REQUEST_TIMEOUT", "10s"),
		ShutdownTimeout:    duration("SHUTDOWN_TIMEOUT", "10s"),
		MaxRequestBodySize: 1 << 20,

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		CatalogBackend:        getEnv("CATALOG_BACKEND", CatalogStatic),
		CatalogDBPath:         getEnv("CATALOG_DB_PATH", "./catalog.db"),
		CatalogMigrationsPath: getEnv("CATALOG_MIGRATIONS_PATH", "./internal/catalog/migrations"),
		CatalogCacheTTL:       duration("CATALOG_CACHE_TTL", "15m"),

		OrderBackend:       getEnv("ORDER_BACKEND", OrdersLocal),
		PostgresHost:       getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:       integer("POSTGRES_PORT", "5432"),
		PostgresUser:       getEnv("POSTGRES_USER", "storefront"),
		PostgresPassword:   getEnv("POSTGRES_PASSWORD", "storefront"),
		PostgresDB:         getEnv("POSTGRES_DB", "storefront"),
		PostgresSSLMode:    getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresMigrations: getEnv("POSTGRES_MIGRATIONS_PATH", "./internal/postgres/migrations"),

		KafkaBrokers:       splitList(getEnv("KAFKA_BROKERS", "")),
		OutboxPollInterval: duration("OUTBOX_POLL_INTERVAL", "1s"),

		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "storefront"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		LikedTTL:      duration("LIKED_TTL", "2160h"),

		SessionIdleTimeout: duration("SESSION_IDLE_TIMEOUT", "2h"),
	}

	cfg.Pricing = pricing.Rules{
		FreeDeliveryThreshold: amount("FREE_DELIVERY_THRESHOLD", "3000"),
		DeliveryFee:           amount("DELIVERY_FEE", "350"),
	}
	coupons, err := pricing.ParseCoupons(getEnv("COUPONS", "WELCOME10:0.10"))
	if err != nil {
		errs = append(errs, fmt.Errorf("COUPONS: %w", err))
	}
	cfg.Pricing.Coupons = coupons

	switch cfg.CatalogBackend {
	case CatalogStatic, CatalogSQLite:
	default:
		errs = append(errs, fmt.Errorf("CATALOG_BACKEND: unknown backend %q", cfg.CatalogBackend))
	}
	switch cfg.OrderBackend {
	case OrdersLocal, OrdersPostgres:
	default:
		errs = append(errs, fmt.Errorf("ORDER_BACKEND: unknown backend %q", cfg.OrderBackend))
	}
	if cfg.SessionIdleTimeout <= 0 {
		errs = append(errs, errors.New("SESSION_IDLE_TIMEOUT must be positive"))
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.OrderBackend != OrdersPostgres {
		errs = append(errs, errors.New("KAFKA_BROKERS requires ORDER_BACKEND=postgres"))
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.OutboxPollInterval <= 0 {
		errs = append(errs, errors.New("OUTBOX_POLL_INTERVAL must be positive"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
