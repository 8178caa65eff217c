package config

import "time"

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN" default:""`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" default:"5"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" default:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" default:"30m"`
}

// AccountsConfig bounds the persistence calls made on login and disconnect.
type AccountsConfig struct {
	Backend     string        `env:"ACCOUNTS_BACKEND" default:"postgres"`
	LoadTimeout time.Duration `env:"ACCOUNTS_LOAD_TIMEOUT" default:"5s"`
	SaveTimeout time.Duration `env:"ACCOUNTS_SAVE_TIMEOUT" default:"10s"`
}

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)
