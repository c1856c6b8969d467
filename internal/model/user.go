package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Role determines what a user may do. The first registered user becomes
// an admin; everyone after that is a client.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleClient Role = "CLIENT"
)

// User represents a client account in the hours ledger.
//
// AccumulatedHours is the signed rollover balance (positive = banked
// surplus, negative = overage owed). It is written only by the ledger
// service during reconciliation; profile edits never touch it.
type User struct {
	ID               uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	Name             string          `json:"name" gorm:"size:255;not null"`
	Email            string          `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash     string          `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role             Role            `json:"role" gorm:"type:varchar(20);not null;default:'CLIENT';index"`
	ContractedHours  decimal.Decimal `json:"contracted_hours" gorm:"type:decimal(10,2);not null;default:0"`
	AccumulatedHours decimal.Decimal `json:"accumulated_hours" gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `json:"-" gorm:"index"`

	// Relations
	Tasks []Task `json:"tasks,omitempty" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
