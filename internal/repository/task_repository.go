package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hourledger/internal/model"
)

// TaskRepository defines task persistence operations.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	ListByUser(ctx context.Context, userID uuid.UUID, start, end *time.Time) ([]model.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	SumActiveHours(ctx context.Context, userID uuid.UUID, start, end time.Time) (decimal.Decimal, error)
	// WithTransaction runs fn with task and user repositories bound to a
	// single database transaction.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tasks TaskRepository, users UserRepository) error) error
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// Create creates a new task.
func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// Update updates an existing task.
func (r *taskRepository) Update(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// FindByID finds a task by ID.
func (r *taskRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByUser lists a user's tasks newest first, optionally restricted to
// a half-open [start, end) date window.
func (r *taskRepository) ListByUser(ctx context.Context, userID uuid.UUID, start, end *time.Time) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if start != nil && end != nil {
		q = q.Where("date >= ? AND date < ?", *start, *end)
	}
	var tasks []model.Task
	if err := q.Order("date DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Delete deletes a task by ID.
func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id).Error
}

// DeleteByUser deletes all tasks owned by a user.
func (r *taskRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Task{}, "user_id = ?", userID).Error
}

// SumActiveHours sums hours_spent over the user's tasks with date in
// [start, end), excluding CANCELLED entries. Returns zero when no rows match.
func (r *taskRepository) SumActiveHours(ctx context.Context, userID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("COALESCE(SUM(hours_spent), 0)").
		Where("user_id = ? AND date >= ? AND date < ? AND status <> ?",
			userID, start, end, model.TaskStatusCancelled).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// WithTransaction executes a function within a database transaction.
func (r *taskRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, tasks TaskRepository, users UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &taskRepository{db: tx}, &userRepository{db: tx})
	})
}
