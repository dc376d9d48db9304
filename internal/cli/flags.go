package cli

import (
	"io"
	"time"
)

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	DBDriver string `long:"db-driver" env:"DB_DRIVER" default:"sqlite" choice:"sqlite" choice:"postgres" description:"Database driver"`
	DBDSN    string `long:"db-dsn" env:"DB_DSN" default:"./data/timetracker.db" description:"Database DSN (file path for sqlite)"`
	LogLevel string `long:"log-level" env:"LOG_LEVEL" default:"error" description:"Log level: debug | info | warn | error"`
}

// LogCommand prints a user's day log.
type LogCommand struct {
	User int64  `long:"user" required:"true" description:"Telegram user id"`
	Days string `long:"days" default:"0" description:"Day offset: 0 today, -1 yesterday"`

	globals *GlobalFlags
	out     io.Writer
	now     func() time.Time // nil means time.Now
}

// StatCommand prints a user's tag report.
type StatCommand struct {
	User int64  `long:"user" required:"true" description:"Telegram user id"`
	Days string `long:"days" default:"0" description:"Day offset: 0 today, -1 yesterday"`

	globals *GlobalFlags
	out     io.Writer
	now     func() time.Time // nil means time.Now
}
