package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/glebarez/sqlite"
	"github.com/google/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"wagerpool/internal/config"
	"wagerpool/internal/ledger"
	"wagerpool/internal/models"
)

// openLedger opens the configured ledger backend. SQL backends are migrated
// before use. The returned close function releases the database handle.
func openLedger(ctx context.Context, cfg config.StorageConfig) (ledger.Ledger, func() error, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverMemory:
		logger.Warningf("storage: using in-memory ledger, state is lost on exit")
		return ledger.NewMemoryLedger(), func() error { return nil }, nil
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", cfg.Driver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("database handle: %w", err)
	}

	l := ledger.NewGormLedger(db)
	if err := l.Migrate(ctx); err != nil {
		sqlDB.Close()
		return nil, nil, err
	}
	logger.Infof("storage: %s ledger ready", cfg.Driver)
	return l, sqlDB.Close, nil
}

// openAccounts creates the configured accounts that do not exist yet.
func openAccounts(ctx context.Context, l ledger.Ledger, accounts map[string]int64) error {
	ids := make([]string, 0, len(accounts))
	for id := range accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := l.OpenAccount(ctx, models.AccountID(id), models.Amount(accounts[id])); err != nil {
			return err
		}
	}
	if len(ids) > 0 {
		logger.Infof("storage: %d configured accounts open", len(ids))
	}
	return nil
}
