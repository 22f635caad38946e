// Package config loads the wagerpool server configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the complete server configuration.
type Config struct {
	Listen         string           `yaml:"listen"`
	Operator       string           `yaml:"operator"`
	CustodyAccount string           `yaml:"custody_account"`
	GatewayToken   string           `yaml:"gateway_token"`
	DrawInterval   time.Duration    `yaml:"draw_interval"`
	Storage        StorageConfig    `yaml:"storage"`
	RateLimit      RateLimitConfig  `yaml:"rate_limit"`
	Accounts       map[string]int64 `yaml:"accounts"` // initial balances in base units
}

// StorageConfig selects where accounts and pool state live.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// RateLimitConfig throttles each caller on the state-changing routes.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:         ":8080",
		CustodyAccount: "pool",
		Storage:        StorageConfig{Driver: DriverMemory},
		RateLimit:      RateLimitConfig{RPS: 5, Burst: 10},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first problem that would prevent the server from
// starting.
func (c Config) Validate() error {
	if c.Operator == "" {
		return errors.New("operator is required")
	}
	if c.CustodyAccount == "" {
		return errors.New("custody_account is required")
	}
	if c.CustodyAccount == c.Operator {
		return errors.New("custody_account must differ from operator")
	}
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.DrawInterval < 0 {
		return errors.New("draw_interval must not be negative")
	}
	for id, bal := range c.Accounts {
		if bal < 0 {
			return fmt.Errorf("account %s has a negative balance", id)
		}
	}
	return nil
}
