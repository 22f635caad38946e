package models

import "time"

// AccountRecord is a ledger account.
// Table name: accounts
type AccountRecord struct {
	ID        string    `gorm:"primaryKey;type:varchar(128);not null" json:"id"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
	Frozen    bool      `gorm:"not null;default:false" json:"frozen"` // frozen accounts neither send nor receive
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (AccountRecord) TableName() string { return "accounts" }

// PoolRecord holds the operator and balance of the pool. There is a single
// row, keyed by PoolRecordID.
// Table name: pools
type PoolRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Operator  string    `gorm:"type:varchar(128);not null" json:"operator"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (PoolRecord) TableName() string { return "pools" }

// PoolRecordID is the primary key of the only pool row.
const PoolRecordID uint = 1

// EntryRecord is one position in the ordered participant list.
// Table name: pool_entries
type EntryRecord struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PoolID   uint   `gorm:"not null;uniqueIndex:idx_pool_position" json:"pool_id"`
	Position int    `gorm:"not null;uniqueIndex:idx_pool_position" json:"position"`
	Account  string `gorm:"type:varchar(128);not null" json:"account"`
}

func (EntryRecord) TableName() string { return "pool_entries" }
