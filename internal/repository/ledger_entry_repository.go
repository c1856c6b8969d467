package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hourledger/internal/model"
)

// LedgerEntryRepository defines reconciliation audit log persistence.
type LedgerEntryRepository interface {
	Create(ctx context.Context, entry *model.LedgerEntry) error
	CreateBatch(ctx context.Context, entries []model.LedgerEntry) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.LedgerEntry, error)
}

type ledgerEntryRepository struct {
	db *gorm.DB
}

// NewLedgerEntryRepository creates a new ledger entry repository.
func NewLedgerEntryRepository(db *gorm.DB) LedgerEntryRepository {
	return &ledgerEntryRepository{db: db}
}

// Create creates a new ledger entry.
func (r *ledgerEntryRepository) Create(ctx context.Context, entry *model.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// CreateBatch creates multiple ledger entries in a single statement batch.
func (r *ledgerEntryRepository) CreateBatch(ctx context.Context, entries []model.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(entries, 100).Error
}

// ListByUser lists a user's reconciliation history newest first.
func (r *ledgerEntryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
