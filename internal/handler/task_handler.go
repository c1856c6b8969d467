package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"hourledger/internal/errors"
	"hourledger/internal/model"
	"hourledger/internal/service"
)

// TaskHandler handles time-log entry endpoints.
type TaskHandler struct {
	ledgerService service.LedgerService
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(ledgerService service.LedgerService) *TaskHandler {
	return &TaskHandler{ledgerService: ledgerService}
}

// CreateTaskRequest represents a new time-log entry.
type CreateTaskRequest struct {
	UserID      string          `json:"user_id" validate:"required,uuid"`
	Description string          `json:"description" validate:"required"`
	Link        string          `json:"link,omitempty" validate:"omitempty,url"`
	HoursSpent  decimal.Decimal `json:"hours_spent"`
	Date        string          `json:"date,omitempty"`
	Status      string          `json:"status,omitempty" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED CANCELLED"`
}

// UpdateTaskRequest represents a partial task edit. Only status and
// hours may change after creation.
type UpdateTaskRequest struct {
	Status     *string          `json:"status,omitempty" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED CANCELLED"`
	HoursSpent *decimal.Decimal `json:"hours_spent,omitempty"`
}

// parseDate accepts RFC 3339 timestamps and plain dates.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", value, time.Local)
}

// ListTasks godoc
// @Summary List a user's tasks
// @Description Optionally filtered to a month (month+year) or quarter (quarter+year). Year defaults to the current year. Invalid filter values are ignored.
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param user_id query string true "User ID"
// @Param month query int false "Month 1-12"
// @Param quarter query int false "Quarter 1-4"
// @Param year query int false "Year"
// @Success 200 {array} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c echo.Context) error {
	userID, err := uuid.Parse(c.QueryParam("user_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid user_id",
			Code:  "INVALID_UUID",
		})
	}

	year := time.Now().Year()
	if y, err := strconv.Atoi(c.QueryParam("year")); err == nil {
		year = y
	}

	var start, end *time.Time
	if q, err := strconv.Atoi(c.QueryParam("quarter")); err == nil && q >= 1 && q <= 4 {
		s, e := service.QuarterWindow(year, q)
		start, end = &s, &e
	} else if m, err := strconv.Atoi(c.QueryParam("month")); err == nil && m >= 1 && m <= 12 {
		s, e := service.MonthWindow(year, m)
		start, end = &s, &e
	}

	tasks, err := h.ledgerService.ListTasks(c.Request().Context(), userID, start, end)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, tasks)
}

// CreateTask godoc
// @Summary Log a time entry
// @Description Creates the task and reconciles the owner's accumulated balance against the current calendar month. Status defaults to COMPLETED, date to now.
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTaskRequest true "Task data"
// @Success 201 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid user_id",
			Code:  "INVALID_UUID",
		})
	}

	input := service.CreateTaskInput{
		UserID:      userID,
		Description: req.Description,
		Link:        req.Link,
		HoursSpent:  req.HoursSpent,
		Status:      model.TaskStatus(req.Status),
	}
	if req.Date != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "invalid date",
				Code:  "INVALID_DATE",
			})
		}
		input.Date = &date
	}

	task, err := h.ledgerService.CreateTask(c.Request().Context(), input)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, task)
}

// UpdateTask godoc
// @Summary Update a task's status and/or hours
// @Description Applies the change and reconciles the owner's balance against the month of the task's own date.
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param request body UpdateTaskRequest true "Fields to update"
// @Success 200 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: errors.ErrMissingID.Error(),
			Code:  "MISSING_ID",
		})
	}

	var req UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input := service.UpdateTaskInput{HoursSpent: req.HoursSpent}
	if req.Status != nil {
		status := model.TaskStatus(*req.Status)
		input.Status = &status
	}

	task, err := h.ledgerService.UpdateTask(c.Request().Context(), id, input)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, task)
}

// DeleteTask godoc
// @Summary Delete a task
// @Description Deletes the entry, reconciles against the current month, and credits the deleted hours back when the entry was not cancelled.
// @Tags tasks
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 204 "deleted"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: errors.ErrMissingID.Error(),
			Code:  "MISSING_ID",
		})
	}

	if err := h.ledgerService.DeleteTask(c.Request().Context(), id); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.NoContent(http.StatusNoContent)
}

// LedgerHistory godoc
// @Summary Reconciliation history for a user
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {array} model.LedgerEntry
// @Failure 400 {object} errors.ErrorResponse
// @Router /users/{id}/ledger [get]
func (h *TaskHandler) LedgerHistory(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid user ID",
			Code:  "INVALID_UUID",
		})
	}

	entries, err := h.ledgerService.History(c.Request().Context(), userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, entries)
}
