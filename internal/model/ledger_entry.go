package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerAction identifies which task mutation triggered a reconciliation.
type LedgerAction string

const (
	LedgerActionCreate LedgerAction = "create"
	LedgerActionUpdate LedgerAction = "update"
	LedgerActionDelete LedgerAction = "delete"
)

// LedgerEntry is an audit record of a single reconciliation pass.
// Entries are written asynchronously after the mutation commits; they are
// informational only and never consulted by the reconciliation itself.
type LedgerEntry struct {
	ID        uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID       `json:"user_id" gorm:"type:char(36);not null;index"`
	TaskID    uuid.UUID       `json:"task_id" gorm:"type:char(36);not null;index"`
	Action    LedgerAction    `json:"action" gorm:"type:varchar(20);not null;index"`
	Diff      decimal.Decimal `json:"diff" gorm:"type:decimal(10,2);not null"`
	Credit    decimal.Decimal `json:"credit" gorm:"type:decimal(10,2);not null;default:0"`
	Balance   decimal.Decimal `json:"balance" gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time       `json:"created_at"`
	DeletedAt gorm.DeletedAt  `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
