package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hourledger/internal/cache"
	"hourledger/internal/errors"
	"hourledger/internal/model"
	"hourledger/internal/repository"
)

// CreateTaskInput carries the fields for a new time-log entry.
type CreateTaskInput struct {
	UserID      uuid.UUID
	Description string
	Link        string
	HoursSpent  decimal.Decimal
	Date        *time.Time       // defaults to now
	Status      model.TaskStatus // defaults to COMPLETED
}

// UpdateTaskInput carries the mutable fields of an existing entry.
// Only status and hours may change after creation.
type UpdateTaskInput struct {
	Status     *model.TaskStatus
	HoursSpent *decimal.Decimal
}

// LedgerService owns task mutations and the accumulated-hours balance.
//
// Every mutation runs a reconciliation pass: recompute the reference
// month's non-cancelled usage and add contracted − used to the owner's
// accumulated balance. Create and delete reconcile against the wall-clock
// current month; update reconciles against the month of the task's own
// date. Delete additionally credits back the deleted entry's hours when
// it was not cancelled. The asymmetry is the billing rule, not an
// accident; tests pin it.
type LedgerService interface {
	CreateTask(ctx context.Context, input CreateTaskInput) (*model.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, input UpdateTaskInput) (*model.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
	ListTasks(ctx context.Context, userID uuid.UUID, start, end *time.Time) ([]model.Task, error)
	History(ctx context.Context, userID uuid.UUID) ([]model.LedgerEntry, error)
}

type ledgerService struct {
	taskRepo   repository.TaskRepository
	userRepo   repository.UserRepository
	ledgerRepo repository.LedgerEntryRepository
	cache      *cache.Client
	now        func() time.Time
	// Mutex map for per-user locking
	userMutexes sync.Map
	// Channel for async audit logging
	logChannel chan model.LedgerEntry
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	ledgerRepo repository.LedgerEntryRepository,
	cache *cache.Client,
) LedgerService {
	service := &ledgerService{
		taskRepo:   taskRepo,
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
		cache:      cache,
		now:        time.Now,
		logChannel: make(chan model.LedgerEntry, 100),
	}

	// Start async audit log worker
	go service.logWorker(context.Background())

	return service
}

// getMutex returns a mutex for a specific user ID.
func (s *ledgerService) getMutex(userID uuid.UUID) *sync.Mutex {
	value, _ := s.userMutexes.LoadOrStore(userID.String(), &sync.Mutex{})
	return value.(*sync.Mutex)
}

// logWorker persists audit entries in batches.
func (s *ledgerService) logWorker(ctx context.Context) {
	batch := make([]model.LedgerEntry, 0, 10)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case entry, ok := <-s.logChannel:
			if !ok {
				if len(batch) > 0 {
					_ = s.ledgerRepo.CreateBatch(ctx, batch)
				}
				return
			}
			batch = append(batch, entry)
			if len(batch) >= 10 {
				_ = s.ledgerRepo.CreateBatch(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				_ = s.ledgerRepo.CreateBatch(ctx, batch)
				batch = batch[:0]
			}
		case <-ctx.Done():
			return
		}
	}
}

// logEntry queues an audit entry without blocking the mutation path.
func (s *ledgerService) logEntry(ctx context.Context, entry model.LedgerEntry) {
	select {
	case s.logChannel <- entry:
	default:
		// Channel full, log synchronously as fallback
		_ = s.ledgerRepo.Create(ctx, &entry)
	}
}

// reconcile recomputes usage over [start, end) and adds contracted − used
// to the owner's accumulated balance. A missing user skips the balance
// write silently; the triggering mutation stands.
func (s *ledgerService) reconcile(ctx context.Context, tasks repository.TaskRepository, users repository.UserRepository, userID uuid.UUID, start, end time.Time) (diff, balance decimal.Decimal, applied bool, err error) {
	used, err := tasks.SumActiveHours(ctx, userID, start, end)
	if err != nil {
		return decimal.Zero, decimal.Zero, false, fmt.Errorf("sum active hours: %w", err)
	}

	user, err := users.FindByIDForUpdate(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return decimal.Zero, decimal.Zero, false, nil
		}
		return decimal.Zero, decimal.Zero, false, fmt.Errorf("find user: %w", err)
	}

	// diff positive => leftover, negative => overage
	diff = user.ContractedHours.Sub(used)
	balance = user.AccumulatedHours.Add(diff)
	if err := users.UpdateAccumulated(ctx, userID, balance); err != nil {
		return decimal.Zero, decimal.Zero, false, fmt.Errorf("update accumulated: %w", err)
	}
	return diff, balance, true, nil
}

// CreateTask persists a new entry and reconciles the owner's balance
// against the current calendar month.
func (s *ledgerService) CreateTask(ctx context.Context, input CreateTaskInput) (*model.Task, error) {
	status := input.Status
	if status == "" {
		status = model.TaskStatusCompleted
	}
	if !status.Valid() {
		return nil, errors.ErrInvalidStatus
	}

	date := s.now()
	if input.Date != nil {
		date = *input.Date
	}

	task := &model.Task{
		UserID:      input.UserID,
		Description: input.Description,
		Link:        input.Link,
		HoursSpent:  input.HoursSpent,
		Date:        date,
		Status:      status,
	}

	mutex := s.getMutex(input.UserID)
	mutex.Lock()
	defer mutex.Unlock()

	var diff, balance decimal.Decimal
	var applied bool
	err := s.taskRepo.WithTransaction(ctx, func(ctx context.Context, tasks repository.TaskRepository, users repository.UserRepository) error {
		if err := tasks.Create(ctx, task); err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		// Window moves with wall-clock time regardless of the task's own date.
		start, end := MonthWindowOf(s.now())
		var err error
		diff, balance, applied, err = s.reconcile(ctx, tasks, users, input.UserID, start, end)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterReconcile(ctx, task, model.LedgerActionCreate, diff, decimal.Zero, balance, applied)
	return task, nil
}

// UpdateTask applies status and/or hours changes and reconciles against
// the month containing the task's own date.
func (s *ledgerService) UpdateTask(ctx context.Context, id uuid.UUID, input UpdateTaskInput) (*model.Task, error) {
	if id == uuid.Nil {
		return nil, errors.ErrMissingID
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, errors.ErrInvalidStatus
	}

	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}

	mutex := s.getMutex(task.UserID)
	mutex.Lock()
	defer mutex.Unlock()

	var diff, balance decimal.Decimal
	var applied bool
	err = s.taskRepo.WithTransaction(ctx, func(ctx context.Context, tasks repository.TaskRepository, users repository.UserRepository) error {
		// The pre-lock read only located the owner. Re-read under the
		// lock so a concurrent edit is not clobbered and a concurrent
		// delete surfaces as not found.
		fresh, err := tasks.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrTaskNotFound
			}
			return fmt.Errorf("find task: %w", err)
		}
		task = fresh
		if input.Status != nil {
			task.Status = *input.Status
		}
		if input.HoursSpent != nil {
			task.HoursSpent = *input.HoursSpent
		}
		if err := tasks.Update(ctx, task); err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		start, end := MonthWindowOf(task.Date)
		diff, balance, applied, err = s.reconcile(ctx, tasks, users, task.UserID, start, end)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterReconcile(ctx, task, model.LedgerActionUpdate, diff, decimal.Zero, balance, applied)
	return task, nil
}

// DeleteTask removes an entry, reconciles against the current calendar
// month, and credits back the deleted hours when the entry was active.
func (s *ledgerService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errors.ErrMissingID
	}

	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrTaskNotFound
		}
		return fmt.Errorf("find task: %w", err)
	}

	mutex := s.getMutex(task.UserID)
	mutex.Lock()
	defer mutex.Unlock()

	var diff, credit, balance decimal.Decimal
	var applied bool
	err = s.taskRepo.WithTransaction(ctx, func(ctx context.Context, tasks repository.TaskRepository, users repository.UserRepository) error {
		// Re-read under the lock: a concurrent delete of the same task
		// must not apply the diff and credit a second time.
		fresh, err := tasks.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrTaskNotFound
			}
			return fmt.Errorf("find task: %w", err)
		}
		task = fresh
		if err := tasks.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		start, end := MonthWindowOf(s.now())
		diff, balance, applied, err = s.reconcile(ctx, tasks, users, task.UserID, start, end)
		if err != nil || !applied {
			return err
		}
		// A deleted active entry hands its hours back, on top of the
		// month recomputation above.
		if task.Status != model.TaskStatusCancelled {
			credit = task.HoursSpent
			if err := users.AddAccumulated(ctx, task.UserID, credit); err != nil {
				return fmt.Errorf("credit deleted hours: %w", err)
			}
			balance = balance.Add(credit)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.afterReconcile(ctx, task, model.LedgerActionDelete, diff, credit, balance, applied)
	return nil
}

// afterReconcile invalidates the cached user record and queues the audit
// entry once a mutation has committed.
func (s *ledgerService) afterReconcile(ctx context.Context, task *model.Task, action model.LedgerAction, diff, credit, balance decimal.Decimal, applied bool) {
	_ = s.cache.Delete(ctx, fmt.Sprintf("user:%s", task.UserID.String()))
	if !applied {
		return
	}
	s.logEntry(ctx, model.LedgerEntry{
		UserID:  task.UserID,
		TaskID:  task.ID,
		Action:  action,
		Diff:    diff,
		Credit:  credit,
		Balance: balance,
	})
}

// ListTasks lists a user's entries newest first, optionally windowed.
func (s *ledgerService) ListTasks(ctx context.Context, userID uuid.UUID, start, end *time.Time) ([]model.Task, error) {
	return s.taskRepo.ListByUser(ctx, userID, start, end)
}

// History returns a user's reconciliation audit trail.
func (s *ledgerService) History(ctx context.Context, userID uuid.UUID) ([]model.LedgerEntry, error) {
	return s.ledgerRepo.ListByUser(ctx, userID)
}
