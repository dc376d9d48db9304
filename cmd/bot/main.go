package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ykvlv/timetracker-bot/internal/app"
	"github.com/ykvlv/timetracker-bot/internal/config"
	"github.com/ykvlv/timetracker-bot/internal/logger"
)

const serviceName = "timetracker-bot"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet.
		fmt.Fprintf(os.Stderr, "%s: config: %v (set BOT_TOKEN, DB_DRIVER, DB_DSN)\n", serviceName, err)
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: logger: %v\n", serviceName, err)
		os.Exit(2)
	}
	log = log.With(zap.String("service", serviceName))
	defer func() { _ = log.Sync() }()

	application, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("startup failed", zap.String("db_driver", cfg.DBDriver), zap.Error(err))
	}

	log.Info("tracking time", zap.String("db_driver", cfg.DBDriver))
	if err := application.Run(context.Background()); err != nil {
		log.Fatal("bot stopped", zap.Error(err))
	}
}
