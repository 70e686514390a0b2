package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fjod/nutstore/internal/cache"
	"github.com/fjod/nutstore/internal/catalog"
	"github.com/fjod/nutstore/internal/checkout"
	"github.com/fjod/nutstore/internal/config"
	"github.com/fjod/nutstore/internal/enquiry"
	h "github.com/fjod/nutstore/internal/http"
	"github.com/fjod/nutstore/internal/liked"
	"github.com/fjod/nutstore/internal/order"
	"github.com/fjod/nutstore/internal/postgres"
	"github.com/fjod/nutstore/internal/publisher"
	"github.com/fjod/nutstore/internal/repository"
	"github.com/fjod/nutstore/internal/session"
	"github.com/fjod/nutstore/pkg/circuitbreaker"
	"github.com/fjod/nutstore/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zl.Sync()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("storefront stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		closers = append(closers, func() { redisClient.Close() })
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		zl.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	}

	reader, closeCatalog, err := buildCatalog(cfg, redisClient, zl)
	if err != nil {
		return err
	}
	closers = append(closers, closeCatalog)

	var db *sql.DB
	if cfg.OrderBackend == config.OrdersPostgres {
		db, err = postgres.Connect(&postgres.Credentials{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPassword,
			DBName:   cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSLMode,
		})
		if err != nil {
			return err
		}
		closers = append(closers, func() { db.Close() })
		if err := postgres.RunMigrations(db, cfg.PostgresMigrations); err != nil {
			return err
		}
		zl.Info("connected to postgres", zap.String("host", cfg.PostgresHost), zap.String("db", cfg.PostgresDB))
	}

	var (
		submitter order.Submitter
		enquiries enquiry.Repository
		orders    *order.Repository
	)
	if db != nil {
		orders = order.NewRepository(db)
		submitter = order.NewBreakerSubmitter(
			order.NewPostgresSubmitter(orders),
			circuitbreaker.DefaultConfig("order-submitter"),
			zl)
		enquiries = enquiry.NewPostgresRepository(db)
	} else {
		submitter = order.NewLocalSubmitter(zl)
		enquiries = enquiry.NewMemoryRepository()
	}

	var carts session.Repository
	if cfg.MongoURI != "" {
		mdb, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return err
		}
		closers = append(closers, func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mdb.Client().Disconnect(dctx)
		})
		repo := repository.NewMongoRepository(mdb)
		if err := repo.CreateIndexes(ctx); err != nil {
			return err
		}
		carts = repo
		zl.Info("connected to mongodb", zap.String("database", cfg.MongoDatabase))
	}

	var likedStore liked.Store = cache.NewMemoryCache()
	if redisClient != nil {
		likedStore = cache.NewRedisCache(redisClient, "liked", cfg.LikedTTL)
	}

	sessions := session.NewManager(carts, cfg.Pricing, zl)

	deps := h.Deps{
		Catalog:            reader,
		Sessions:           sessions,
		Checkout:           checkout.NewService(cfg.Pricing, submitter, zl),
		Liked:              liked.NewService(likedStore),
		Enquiries:          enquiry.NewService(enquiries, zl),
		Rules:              cfg.Pricing,
		Log:                zl,
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}
	if orders != nil {
		deps.Orders = orders
	}
	router := h.NewRouter(deps)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sessions.RunJanitor(ctx, cfg.SessionIdleTimeout/4, cfg.SessionIdleTimeout)
	}()

	if len(cfg.KafkaBrokers) > 0 && orders != nil {
		poller := publisher.NewOutboxPoller(orders, zl, cfg.OutboxPollInterval, cfg.KafkaBrokers...)
		wg.Add(1)
		go func() {
			defer wg.Done()
			poller.Run(ctx)
		}()
		zl.Info("outbox publisher started", zap.Strings("brokers", cfg.KafkaBrokers))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		zl.Info("storefront starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			stop()
			wg.Wait()
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	zl.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
	stop()
	wg.Wait()

	zl.Info("server exited")
	return nil
}

// buildCatalog stacks the configured backend, the optional Redis cache and
// the circuit breaker, innermost first.
func buildCatalog(cfg *config.Config, redisClient *redis.Client, zl *zap.Logger) (catalog.Reader, func(), error) {
	var (
		reader  catalog.Reader
		closeFn = func() {}
	)

	switch cfg.CatalogBackend {
	case config.CatalogSQLite:
		repo, err := catalog.NewRepository(cfg.CatalogDBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := repo.RunMigrations(cfg.CatalogMigrationsPath); err != nil {
			repo.Close()
			return nil, nil, err
		}
		reader = repo
		closeFn = func() { repo.Close() }
		zl.Info("catalog backed by sqlite", zap.String("path", cfg.CatalogDBPath))
	default:
		reader = catalog.NewStaticReader(catalog.SeedProducts())
		zl.Info("catalog backed by static seed")
	}

	if redisClient != nil && cfg.CatalogCacheTTL > 0 {
		reader = catalog.NewCachedReader(reader,
			cache.NewRedisCache(redisClient, "catalog", cfg.CatalogCacheTTL), zl)
	}

	return catalog.NewBreakerReader(reader, circuitbreaker.DefaultConfig("catalog"), zl), closeFn, nil
}
