package config

import "time"

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS"     envDefault:"20"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS"     envDefault:"10"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME"  envDefault:"30m"`
}

type PairingConfig struct {
	CodeTTL       time.Duration `env:"PAIRING_CODE_TTL"       envDefault:"5m"`
	SweepSchedule string        `env:"PAIRING_SWEEP_SCHEDULE" envDefault:"@every 1m"`
}

// AccessConfig holds the shared keys guarding non-client routes.
type AccessConfig struct {
	AdminAPIKey      string `env:"ADMIN_API_KEY"`
	GameServerAPIKey string `env:"GAME_SERVER_API_KEY"`
}
