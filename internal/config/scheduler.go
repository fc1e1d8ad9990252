package config

import "github.com/caarlos0/env/v11"

type SchedulerConfig struct {
	IntervalSeconds   int `env:"SCHEDULER_INTERVAL_SECONDS" envDefault:"300"`
	StartGraceMinutes int `env:"START_GRACE_MINUTES" envDefault:"1440"`
}

func LoadScheduler() (SchedulerConfig, error) {
	var cfg SchedulerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
