package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TaskStatus represents the status of a time-log entry.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

// Valid reports whether s is one of the known statuses. There is no
// transition table: any status may be set to any other.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// Task represents a single time-log entry against a user's contracted
// hours. Date decides which month and quarter the entry counts toward;
// CANCELLED entries never count toward usage.
type Task struct {
	ID          uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	UserID      uuid.UUID       `json:"user_id" gorm:"type:char(36);not null;index"`
	Description string          `json:"description" gorm:"type:text;not null"`
	Link        string          `json:"link,omitempty" gorm:"size:2048"`
	HoursSpent  decimal.Decimal `json:"hours_spent" gorm:"type:decimal(10,2);not null;default:0"`
	Date        time.Time       `json:"date" gorm:"not null;index"`
	Status      TaskStatus      `json:"status" gorm:"type:varchar(20);not null;default:'COMPLETED';index"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
