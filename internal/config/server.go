package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	AdminAPIKey string `env:"ADMIN_API_KEY"`

	// PostgresDSN enables the asynchronous transaction journal. Game state
	// itself lives in memory; leave empty to run without a database.
	PostgresDSN string `env:"POSTGRES_DSN"`

	ShutdownTimeoutSeconds int `env:"SHUTDOWN_TIMEOUT_SECONDS" envDefault:"10"`

	NotifyEnabled        bool   `env:"NOTIFY_ENABLED" envDefault:"false"`
	NotifyConfigPath     string `env:"NOTIFY_CONFIG_PATH"`
	NotifyConfigReloadMS int    `env:"NOTIFY_CONFIG_RELOAD_MS" envDefault:"0"`
	NotifyWorkers        int    `env:"NOTIFY_WORKERS" envDefault:"4"`
	NotifyRetryMax       int    `env:"NOTIFY_RETRY_MAX" envDefault:"3"`
	NotifyRetryBaseMS    int    `env:"NOTIFY_RETRY_BASE_MS" envDefault:"500"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
