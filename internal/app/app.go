// Package app wires the storefront's dependencies and owns the server
// lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/mtkebuch/skincareWeb/internal/catalog"
	"github.com/mtkebuch/skincareWeb/internal/config"
	"github.com/mtkebuch/skincareWeb/internal/event"
	handler "github.com/mtkebuch/skincareWeb/internal/handler/http"
	"github.com/mtkebuch/skincareWeb/internal/order"
	"github.com/mtkebuch/skincareWeb/internal/repository/postgres"
	redisrepo "github.com/mtkebuch/skincareWeb/internal/repository/redis"
	"github.com/mtkebuch/skincareWeb/internal/session"
	"github.com/mtkebuch/skincareWeb/internal/token"
	"github.com/mtkebuch/skincareWeb/pkg/health"
	"github.com/mtkebuch/skincareWeb/pkg/httpclient"
	pkgkafka "github.com/mtkebuch/skincareWeb/pkg/kafka"
	"github.com/mtkebuch/skincareWeb/pkg/middleware"
)

// cartTTL bounds how long an untouched cart survives in Redis.
const cartTTL = 30 * 24 * time.Hour

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	redis      *goredis.Client
	producer   *pkgkafka.Producer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// PostgreSQL holds the credential store.
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.String("database", cfg.PostgresDB),
	)

	// Redis holds session tokens, carts, and live reset tokens.
	redisClient := goredis.NewClient(&goredis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("addr", cfg.RedisAddr))

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	codec := token.NewCodec(cfg.TokenSecret)
	resetMgr := token.NewResetManager(cfg.ResetSecret)
	userRepo := postgres.NewUserRepository(pool)
	tokenStore := redisrepo.NewTokenStore(redisClient, token.Validity)
	cartStore := redisrepo.NewCartStore(redisClient, cartTTL)
	resetStore := redisrepo.NewResetTokenStore(redisClient)
	eventProducer := event.NewProducer(producer, logger)
	catalogClient := catalog.New(cfg.CatalogURL, httpclient.DefaultConfig(), logger)

	orderRepo := postgres.NewOrderRepository(pool)
	orderService := order.NewService(orderRepo, logger, order.WithEvents(eventProducer))

	sessions := func(sessionID string) *session.Manager {
		return session.NewManager(
			userRepo, tokenStore, resetStore, cartStore,
			codec, resetMgr, logger,
			session.WithSessionID(sessionID),
			session.WithEvents(eventProducer),
		)
	}

	// Readiness gates on the stores the request path cannot live without;
	// Kafka only degrades it because events are fire-and-forget.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", pool.Ping)
	healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.RegisterNonCritical("kafka", producer.Ping)

	router := handler.NewRouter(handler.RouterDeps{
		Sessions:   sessions,
		Users:      userRepo,
		Carts:      cartStore,
		CartEvents: eventProducer,
		Catalog:    catalogClient,
		Orders:     orderService,
		Codec:      codec,
		Health:     healthHandler,
		Logger:     logger,
		CORS: middleware.CORSConfig{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			Environment:      cfg.Environment,
			AllowCredentials: true,
		},
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		redis:      redisClient,
		producer:   producer,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown stops components in order: drain HTTP, close the Kafka producer,
// then the Redis client and the PostgreSQL pool.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
