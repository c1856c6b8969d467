package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hourledger/internal/cache"
	"hourledger/internal/errors"
	"hourledger/internal/model"
	"hourledger/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// Summary is the read-side view of a user's hours for one period.
type Summary struct {
	Contracted  decimal.Decimal `json:"contracted"`
	Used        decimal.Decimal `json:"used"`
	Accumulated decimal.Decimal `json:"accumulated"`
	Remaining   decimal.Decimal `json:"remaining"`
}

// SummaryService computes monthly and quarterly usage figures. Pure
// reads; the ledger service owns all balance mutations.
type SummaryService interface {
	Monthly(ctx context.Context, userID uuid.UUID, month, year int) (*Summary, error)
	Quarterly(ctx context.Context, userID uuid.UUID, quarter, year int) (*Summary, error)
}

type summaryService struct {
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
	cache    *cache.Client
}

// NewSummaryService creates a new summary service.
func NewSummaryService(userRepo repository.UserRepository, taskRepo repository.TaskRepository, cache *cache.Client) SummaryService {
	return &summaryService{
		userRepo: userRepo,
		taskRepo: taskRepo,
		cache:    cache,
	}
}

func (s *summaryService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id.String())
}

// getUser retrieves a user by ID with caching.
func (s *summaryService) getUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

// Monthly returns contracted/used/accumulated/remaining for one month.
func (s *summaryService) Monthly(ctx context.Context, userID uuid.UUID, month, year int) (*Summary, error) {
	if month < 1 || month > 12 {
		return nil, errors.ErrInvalidPeriod
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	start, end := MonthWindow(year, month)
	used, err := s.taskRepo.SumActiveHours(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("sum active hours: %w", err)
	}

	return &Summary{
		Contracted:  user.ContractedHours,
		Used:        used,
		Accumulated: user.AccumulatedHours,
		Remaining:   decimal.Max(decimal.Zero, user.ContractedHours.Sub(used)),
	}, nil
}

// Quarterly returns the same shape scaled to a quarter: contracted is the
// monthly allotment times three.
func (s *summaryService) Quarterly(ctx context.Context, userID uuid.UUID, quarter, year int) (*Summary, error) {
	if quarter < 1 || quarter > 4 {
		return nil, errors.ErrInvalidPeriod
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	start, end := QuarterWindow(year, quarter)
	used, err := s.taskRepo.SumActiveHours(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("sum active hours: %w", err)
	}

	contracted := user.ContractedHours.Mul(decimal.NewFromInt(3))
	return &Summary{
		Contracted:  contracted,
		Used:        used,
		Accumulated: user.AccumulatedHours,
		Remaining:   decimal.Max(decimal.Zero, contracted.Sub(used)),
	}, nil
}
