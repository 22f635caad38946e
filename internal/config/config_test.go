package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wagerpool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Error(t, cfg.Validate(), "operator is required")
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
listen: ":9090"
operator: manager
gateway_token: secret
draw_interval: 1h30m
storage:
  driver: sqlite
  dsn: /var/lib/wagerpool/pool.db
rate_limit:
  rps: 2
accounts:
  alice: 1000000
  bob: 20000
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "manager", cfg.Operator)
	assert.Equal(t, "pool", cfg.CustodyAccount, "default kept")
	assert.Equal(t, "secret", cfg.GatewayToken)
	assert.Equal(t, 90*time.Minute, cfg.DrawInterval)
	assert.Equal(t, StorageConfig{Driver: DriverSQLite, DSN: "/var/lib/wagerpool/pool.db"}, cfg.Storage)
	assert.Equal(t, 2.0, cfg.RateLimit.RPS)
	assert.Equal(t, 10, cfg.RateLimit.Burst, "default kept")
	assert.Equal(t, map[string]int64{"alice": 1000000, "bob": 20000}, cfg.Accounts)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "listen: [unterminated"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Default()
	valid.Operator = "manager"
	require.NoError(t, valid.Validate())

	cases := map[string]func(c *Config){
		"missing custody":   func(c *Config) { c.CustodyAccount = "" },
		"custody operator":  func(c *Config) { c.CustodyAccount = "manager" },
		"unknown driver":    func(c *Config) { c.Storage.Driver = "mongo" },
		"missing dsn":       func(c *Config) { c.Storage.Driver = DriverPostgres },
		"negative interval": func(c *Config) { c.DrawInterval = -time.Second },
		"negative account":  func(c *Config) { c.Accounts = map[string]int64{"alice": -1} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
