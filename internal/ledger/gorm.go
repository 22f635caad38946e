package ledger

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"wagerpool/internal/models"
)

// GormLedger stores accounts and pool state in a SQL database. Atomically
// maps onto a database transaction.
type GormLedger struct {
	db *gorm.DB
}

// NewGormLedger wraps an open database handle.
func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

// Migrate creates or updates the ledger tables.
func (l *GormLedger) Migrate(ctx context.Context) error {
	if err := l.db.WithContext(ctx).AutoMigrate(
		&models.AccountRecord{},
		&models.PoolRecord{},
		&models.EntryRecord{},
	); err != nil {
		return fmt.Errorf("migrate ledger: %w", err)
	}
	return nil
}

func (l *GormLedger) Atomically(ctx context.Context, fn func(tx Tx) error) error {
	return l.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&gormTx{db: db})
	})
}

func (l *GormLedger) LoadPool(ctx context.Context) (models.PoolSnapshot, bool, error) {
	db := l.db.WithContext(ctx)

	var rec models.PoolRecord
	if err := db.First(&rec, models.PoolRecordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PoolSnapshot{}, false, nil
		}
		return models.PoolSnapshot{}, false, fmt.Errorf("load pool: %w", err)
	}

	var entries []models.EntryRecord
	if err := db.Where("pool_id = ?", rec.ID).Order("position").Find(&entries).Error; err != nil {
		return models.PoolSnapshot{}, false, fmt.Errorf("load pool entries: %w", err)
	}

	snapshot := models.PoolSnapshot{
		Operator:     models.AccountID(rec.Operator),
		Participants: make([]models.AccountID, 0, len(entries)),
		Balance:      models.Amount(rec.Balance),
	}
	for _, e := range entries {
		snapshot.Participants = append(snapshot.Participants, models.AccountID(e.Account))
	}
	return snapshot, true, nil
}

func (l *GormLedger) Balance(ctx context.Context, id models.AccountID) (models.Amount, error) {
	var rec models.AccountRecord
	if err := l.db.WithContext(ctx).First(&rec, "id = ?", string(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: %s", ErrUnknownAccount, id)
		}
		return 0, fmt.Errorf("load account %s: %w", id, err)
	}
	return models.Amount(rec.Balance), nil
}

func (l *GormLedger) OpenAccount(ctx context.Context, id models.AccountID, initial models.Amount) error {
	if initial < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, initial)
	}

	var rec models.AccountRecord
	err := l.db.WithContext(ctx).
		Where(models.AccountRecord{ID: string(id)}).
		Attrs(models.AccountRecord{Balance: int64(initial)}).
		FirstOrCreate(&rec).Error
	if err != nil {
		return fmt.Errorf("open account %s: %w", id, err)
	}
	return nil
}

// SetFrozen freezes or thaws an account.
func (l *GormLedger) SetFrozen(ctx context.Context, id models.AccountID, frozen bool) error {
	res := l.db.WithContext(ctx).
		Model(&models.AccountRecord{}).
		Where("id = ?", string(id)).
		Update("frozen", frozen)
	if res.Error != nil {
		return fmt.Errorf("freeze account %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, id)
	}
	return nil
}

type gormTx struct {
	db *gorm.DB
}

func (tx *gormTx) Transfer(from, to models.AccountID, amount models.Amount) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	if from == to {
		return fmt.Errorf("%w: %s", ErrSelfTransfer, from)
	}

	// Guarded updates keep the balance check and the write in one statement.
	debit := tx.db.Model(&models.AccountRecord{}).
		Where("id = ? AND frozen = ? AND balance >= ?", string(from), false, int64(amount)).
		Update("balance", gorm.Expr("balance - ?", int64(amount)))
	if debit.Error != nil {
		return fmt.Errorf("debit %s: %w", from, debit.Error)
	}
	if debit.RowsAffected == 0 {
		return tx.explainDebit(from, amount)
	}

	credit := tx.db.Model(&models.AccountRecord{}).
		Where("id = ? AND frozen = ?", string(to), false).
		Update("balance", gorm.Expr("balance + ?", int64(amount)))
	if credit.Error != nil {
		return fmt.Errorf("credit %s: %w", to, credit.Error)
	}
	if credit.RowsAffected == 0 {
		return tx.explainCredit(to)
	}
	return nil
}

func (tx *gormTx) explainDebit(id models.AccountID, amount models.Amount) error {
	rec, err := tx.find(id)
	if err != nil {
		return err
	}
	if rec.Frozen {
		return fmt.Errorf("%w: %s", ErrAccountFrozen, id)
	}
	return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientFunds, id, models.Amount(rec.Balance), amount)
}

func (tx *gormTx) explainCredit(id models.AccountID) error {
	if _, err := tx.find(id); err != nil {
		return err
	}
	return fmt.Errorf("%w: %s", ErrAccountFrozen, id)
}

func (tx *gormTx) find(id models.AccountID) (models.AccountRecord, error) {
	var rec models.AccountRecord
	if err := tx.db.First(&rec, "id = ?", string(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rec, fmt.Errorf("%w: %s", ErrUnknownAccount, id)
		}
		return rec, fmt.Errorf("load account %s: %w", id, err)
	}
	return rec, nil
}

func (tx *gormTx) SavePool(snapshot models.PoolSnapshot) error {
	rec := models.PoolRecord{
		ID:       models.PoolRecordID,
		Operator: string(snapshot.Operator),
		Balance:  int64(snapshot.Balance),
	}
	if err := tx.db.Save(&rec).Error; err != nil {
		return fmt.Errorf("save pool: %w", err)
	}

	if err := tx.db.Where("pool_id = ?", rec.ID).Delete(&models.EntryRecord{}).Error; err != nil {
		return fmt.Errorf("clear pool entries: %w", err)
	}
	if len(snapshot.Participants) == 0 {
		return nil
	}

	entries := make([]models.EntryRecord, len(snapshot.Participants))
	for i, p := range snapshot.Participants {
		entries[i] = models.EntryRecord{PoolID: rec.ID, Position: i, Account: string(p)}
	}
	if err := tx.db.CreateInBatches(entries, 500).Error; err != nil {
		return fmt.Errorf("save pool entries: %w", err)
	}
	return nil
}
