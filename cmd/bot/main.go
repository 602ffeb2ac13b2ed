package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/avolkova/flowerdelivery/internal/app"
	"github.com/avolkova/flowerdelivery/internal/config"
	"github.com/avolkova/flowerdelivery/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New("flower-bot", cfg.LogLevel)
	log.Info("starting flower delivery bot",
		slog.String("environment", cfg.Environment),
	)

	application, err := app.NewBotApp(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize bot: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("run bot: %w", err)
	}

	log.Info("flower delivery bot stopped")
	return nil
}
