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

	"github.com/avolkova/flowerdelivery/internal/config"
	"github.com/avolkova/flowerdelivery/internal/event"
	handler "github.com/avolkova/flowerdelivery/internal/handler/http"
	"github.com/avolkova/flowerdelivery/internal/notifier"
	"github.com/avolkova/flowerdelivery/internal/repository/postgres"
	redisrepo "github.com/avolkova/flowerdelivery/internal/repository/redis"
	"github.com/avolkova/flowerdelivery/internal/service"
	"github.com/avolkova/flowerdelivery/internal/telegram"
	"github.com/avolkova/flowerdelivery/migrations"
	"github.com/avolkova/flowerdelivery/pkg/database"
	"github.com/avolkova/flowerdelivery/pkg/health"
	pkgkafka "github.com/avolkova/flowerdelivery/pkg/kafka"
)

// App wires together all dependencies and runs the storefront web service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	redis      *goredis.Client
	producer   *pkgkafka.Producer
	dispatcher *notifier.Dispatcher
	httpServer *http.Server
}

// NewApp creates the application, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// PostgreSQL connection pool.
	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPass
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSL

	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "flower-web")

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Redis holds the session carts.
	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("addr", cfg.RedisAddr()))

	// Kafka producer for domain events.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Telegram notifications are best-effort; without a token every send
	// fails and is dropped.
	if cfg.TelegramToken == "" {
		logger.Warn("TELEGRAM_BOT_TOKEN is empty, order notifications will not be delivered")
	}
	tgClient := telegram.New(telegram.Config{
		Token:   cfg.TelegramToken,
		BaseURL: cfg.TelegramAPIURL,
	})

	// Build the dependency graph.
	orderRepo := postgres.NewOrderRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	cartRepo := redisrepo.NewCartRepository(redisClient, cfg.CartTTL)

	eventProducer := event.NewProducer(producer, "flower-web", logger)
	dispatcher := notifier.New(tgClient, userRepo, cfg.AdminTelegramChatID, logger)

	productSvc := service.NewProductService(productRepo, logger)
	cartSvc := service.NewCartService(cartRepo, productRepo, logger)
	orderSvc := service.NewOrderService(
		orderRepo, cartRepo, eventProducer, dispatcher,
		cfg.OrderWindowOpen, cfg.OrderWindowClose,
		logger,
	)

	sessions := handler.NewSessionManager(cfg.SessionSecret, cfg.CartTTL, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	router := handler.NewRouter(handler.RouterDeps{
		Products: productSvc,
		Carts:    cartSvc,
		Orders:   orderSvc,
		Sessions: sessions,
		Health:   healthHandler,
		Logger:   logger,
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
		dispatcher: dispatcher,
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

// Shutdown gracefully stops all components in order:
// 1. HTTP server (drain in-flight requests)
// 2. Notification dispatcher (flush in-flight Telegram sends)
// 3. Kafka producer
// 4. Redis client
// 5. PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.dispatcher.Wait()

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
