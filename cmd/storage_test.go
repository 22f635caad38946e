package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wagerpool/internal/config"
	"wagerpool/internal/entropy"
	"wagerpool/internal/models"
	"wagerpool/internal/services"
)

func TestMain(m *testing.M) {
	l := logger.Init("wagerpool-test", false, false, io.Discard)
	code := m.Run()
	l.Close()
	os.Exit(code)
}

func TestOpenLedgerSQLiteSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	storage := config.StorageConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "pool.db"),
	}
	accounts := map[string]int64{"manager": 0, "alice": int64(models.Coin), "bob": int64(models.Coin)}

	l, closeLedger, err := openLedger(ctx, storage)
	require.NoError(t, err)
	require.NoError(t, openAccounts(ctx, l, accounts))

	pool, err := services.OpenPool(ctx, l, entropy.Fixed(1), "manager")
	require.NoError(t, err)
	require.NoError(t, pool.Enter(ctx, "alice", models.MinimumStake))
	require.NoError(t, pool.Enter(ctx, "bob", models.MinimumStake))
	require.NoError(t, closeLedger())

	l, closeLedger, err = openLedger(ctx, storage)
	require.NoError(t, err)
	defer closeLedger()
	// Reopening must not reset balances.
	require.NoError(t, openAccounts(ctx, l, accounts))

	pool, err = services.OpenPool(ctx, l, entropy.Fixed(1), "manager")
	require.NoError(t, err)
	assert.Equal(t, []models.AccountID{"alice", "bob"}, pool.GetPlayers())
	assert.Equal(t, 2*models.MinimumStake, pool.Balance())

	settlement, err := pool.PickWinner(ctx, "manager")
	require.NoError(t, err)
	assert.Equal(t, models.AccountID("bob"), settlement.Winner)

	bob, err := l.Balance(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, models.Coin+models.MinimumStake, bob)

	custody, err := l.Balance(ctx, services.DefaultCustodyAccount)
	require.NoError(t, err)
	assert.Equal(t, models.Amount(0), custody)
}

func TestOpenLedgerMemory(t *testing.T) {
	l, closeLedger, err := openLedger(context.Background(), config.StorageConfig{Driver: config.DriverMemory})
	require.NoError(t, err)
	assert.NotNil(t, l)
	assert.NoError(t, closeLedger())
}

func TestOpenLedgerUnknownDriver(t *testing.T) {
	_, _, err := openLedger(context.Background(), config.StorageConfig{Driver: "mongo"})
	assert.Error(t, err)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	_, err := loadConfig("")
	assert.Error(t, err, "operator is required")
}
