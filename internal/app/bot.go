package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avolkova/flowerdelivery/internal/bot"
	"github.com/avolkova/flowerdelivery/internal/config"
	"github.com/avolkova/flowerdelivery/internal/event"
	"github.com/avolkova/flowerdelivery/internal/notifier"
	"github.com/avolkova/flowerdelivery/internal/repository/postgres"
	"github.com/avolkova/flowerdelivery/internal/service"
	"github.com/avolkova/flowerdelivery/internal/telegram"
	"github.com/avolkova/flowerdelivery/migrations"
	"github.com/avolkova/flowerdelivery/pkg/database"
	pkgkafka "github.com/avolkova/flowerdelivery/pkg/kafka"
)

// BotApp wires together the Telegram staff bot. It shares the order store
// with the web application but runs as its own process.
type BotApp struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	producer   *pkgkafka.Producer
	dispatcher *notifier.Dispatcher
	bot        *bot.Bot
}

// NewBotApp creates the bot application, initializing all dependencies.
func NewBotApp(cfg *config.Config, logger *slog.Logger) (*BotApp, error) {
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required for the bot")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

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

	// Migrations are tracked in schema_migrations, so running them from
	// both processes is safe whichever starts first.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// The client deadline must outlast the long-poll hold, or every idle
	// getUpdates call times out.
	tgClient := telegram.New(telegram.Config{
		Token:   cfg.TelegramToken,
		BaseURL: cfg.TelegramAPIURL,
		Timeout: bot.PollTimeout + 10*time.Second,
	})

	orderRepo := postgres.NewOrderRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	eventProducer := event.NewProducer(producer, "flower-bot", logger)
	dispatcher := notifier.New(tgClient, userRepo, cfg.AdminTelegramChatID, logger)

	// The bot only lists orders, moves statuses and builds reports; it
	// never checks out a cart, so no cart store is wired.
	orderSvc := service.NewOrderService(
		orderRepo, nil, eventProducer, dispatcher,
		cfg.OrderWindowOpen, cfg.OrderWindowClose,
		logger,
	)
	userSvc := service.NewUserService(userRepo, logger)

	b := bot.New(tgClient, orderSvc, userSvc, cfg.AdminTelegramChatID, logger)

	return &BotApp{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		producer:   producer,
		dispatcher: dispatcher,
		bot:        b,
	}, nil
}

// Run long-polls Telegram until the context is canceled, then shuts down.
func (a *BotApp) Run(ctx context.Context) error {
	a.logger.Info("starting telegram bot",
		slog.Int64("admin_chat_id", a.cfg.AdminTelegramChatID),
	)

	err := a.bot.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return a.Shutdown()
}

// Shutdown flushes in-flight notifications and closes connections.
func (a *BotApp) Shutdown() error {
	a.logger.Info("shutting down bot...")

	var errs []error

	a.dispatcher.Wait()

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("bot shutdown complete")
	return errors.Join(errs...)
}
