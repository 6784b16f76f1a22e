package fakeapi

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config controls the fake upstream. Every field comes from the environment.
type Config struct {
	Port                    int           `env:"FAKEAPI_PORT"              envDefault:"9090"`
	PageSize                int           `env:"FAKEAPI_PAGE_SIZE"         envDefault:"5"`
	Latency                 time.Duration `env:"FAKEAPI_LATENCY"           envDefault:"0s"`
	FailureRate             float64       `env:"FAKEAPI_FAILURE_RATE"      envDefault:"0"`
	Seed                    int64         `env:"FAKEAPI_SEED"              envDefault:"1"`
	Employees               int           `env:"FAKEAPI_EMPLOYEES"         envDefault:"8"`
	TransactionsPerEmployee int           `env:"FAKEAPI_TX_PER_EMPLOYEE"   envDefault:"4"`
	LogLevel                string        `env:"FAKEAPI_LOG_LEVEL"         envDefault:"info"`
}

// LoadConfig parses the environment into a Config and validates it.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("FAKEAPI_PORT must be between 1 and 65535, got %d", c.Port))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("FAKEAPI_PAGE_SIZE must be positive"))
	}
	if c.Latency < 0 {
		errs = append(errs, fmt.Errorf("FAKEAPI_LATENCY must not be negative"))
	}
	if c.FailureRate < 0 || c.FailureRate > 1 {
		errs = append(errs, fmt.Errorf("FAKEAPI_FAILURE_RATE must be between 0 and 1, got %v", c.FailureRate))
	}
	if c.Employees < 0 || c.TransactionsPerEmployee < 0 {
		errs = append(errs, fmt.Errorf("FAKEAPI_EMPLOYEES and FAKEAPI_TX_PER_EMPLOYEE must not be negative"))
	}
	return errors.Join(errs...)
}
