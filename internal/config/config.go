package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken string `envconfig:"BOT_TOKEN" required:"true"`
	DBDriver string `envconfig:"DB_DRIVER" default:"sqlite"`               // sqlite|postgres
	DBDSN    string `envconfig:"DB_DSN" default:"./data/timetracker.db"` // file path for sqlite
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`               // debug|info|warn|error
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`              // healthz
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	switch cfg.DBDriver {
	case "sqlite", "postgres":
	default:
		return cfg, fmt.Errorf("DB_DRIVER: unsupported value %q", cfg.DBDriver)
	}
	return cfg, nil
}
