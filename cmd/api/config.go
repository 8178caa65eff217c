package main

import (
	"log/slog"
	"time"

	"github.com/fastprodman/playerledger/internal/config"
)

type apiConfig struct {
	Port            uint16        `env:"APP_PORT" default:"8080"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" default:"INFO"`
	LogFormat       string        `env:"APP_LOG_FORMAT" default:"json"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" default:"15s"`
	EventBuffer     int           `env:"APP_EVENT_BUFFER" default:"64"`

	Postgres config.PostgresConfig
	Accounts config.AccountsConfig
}
