package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/sellorama/sellorama/internal"
	"github.com/sellorama/sellorama/internal/cache"
	"github.com/sellorama/sellorama/internal/events"
	"github.com/sellorama/sellorama/internal/handler"
	"github.com/sellorama/sellorama/internal/jobs"
	"github.com/sellorama/sellorama/internal/middleware"
	"github.com/sellorama/sellorama/internal/repository"
	"github.com/sellorama/sellorama/internal/router"
	"github.com/sellorama/sellorama/internal/routes"
	"github.com/sellorama/sellorama/internal/service"
	"github.com/sellorama/sellorama/internal/storage"
	"github.com/sellorama/sellorama/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Initialize repository
	store := repository.NewStore(pool)

	// Session cache: Redis when configured, no-op otherwise
	var sessionCache cache.SessionCache = cache.NoopCache{}
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
		sessionCache = cache.NewRedisCache(client, cfg.Redis.TTL)
		logger.Info("Session cache enabled", "addr", cfg.Redis.Addr)
	}

	// Order event publisher: NATS when configured, no-op otherwise
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Nats.URL != "" {
		conn, err := events.Connect(cfg.Nats.URL)
		if err != nil {
			return fmt.Errorf("nats connection failed: %w", err)
		}
		defer conn.Close()
		publisher = events.NewNatsPublisher(conn, cfg.Nats.SubjectPrefix, logger)
		logger.Info("Order events enabled", "url", cfg.Nats.URL)
	}

	// Object storage for item media
	mediaStore, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("Media storage initialized", "provider", cfg.Storage.Provider)

	// Initialize services
	userService := service.NewUserService(store, sessionCache, cfg.SessionTTL, logger)
	addressService := service.NewAddressService(store)
	itemService := service.NewItemService(store, mediaStore)
	stockService := service.NewStockService(store)
	cartService := service.NewCartService(store)
	checkoutService := service.NewCheckoutService(store)
	orderService := service.NewOrderService(store, publisher)

	// Background sweep of expired sessions
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go jobs.NewSessionSweeper(store, jobs.DefaultSweepInterval, logger).Run(sweepCtx)

	// Initialize middleware
	metrics := middleware.NewMetrics("sellorama")
	defaultRateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	authRateLimiter := middleware.NewRateLimiter(middleware.StrictRateLimiterConfig())
	defer defaultRateLimiter.Stop()
	defer authRateLimiter.Stop()

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig()),
		middleware.MaxBodySize(middleware.DefaultMaxBodySize),
		middleware.Timeout(middleware.DefaultTimeout),
		defaultRateLimiter.Middleware,
		middleware.WithUser(userService),
		middleware.WithRequestLogger(logger),
		router.Logger(logger),
	)

	// Locally stored media is served straight off disk
	if cfg.Storage.Provider == "local" {
		r.Static(cfg.Storage.LocalURL+"/", cfg.Storage.LocalPath)
	}

	// Metrics endpoint (protect via firewall in production)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	business := telemetry.NewBusinessMetrics("sellorama")

	routes.Register(r, routes.Deps{
		UserHandler:    handler.NewUserHandler(userService, business, logger),
		AddressHandler: handler.NewAddressHandler(addressService),
		ItemHandler:    handler.NewItemHandler(itemService, stockService, business, logger),
		CartHandler:    handler.NewCartHandler(cartService, checkoutService, business),
		OrderHandler:   handler.NewOrderHandler(orderService, business),
		StrictLimiter:  authRateLimiter.Middleware,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting server", slog.String("address", addr), slog.String("env", cfg.Env))

	if err := http.ListenAndServe(addr, r); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
