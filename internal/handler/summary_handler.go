package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"hourledger/internal/errors"
	"hourledger/internal/service"
)

// SummaryHandler handles usage summary endpoints.
type SummaryHandler struct {
	summaryService service.SummaryService
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(summaryService service.SummaryService) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService}
}

// GetSummary godoc
// @Summary Monthly or quarterly usage summary
// @Description Pass quarter+year for a quarterly view, otherwise month+year. Defaults to the current month of the current year.
// @Tags summaries
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param month query int false "Month 1-12"
// @Param quarter query int false "Quarter 1-4"
// @Param year query int false "Year"
// @Success 200 {object} service.Summary
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id}/summary [get]
func (h *SummaryHandler) GetSummary(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid user ID",
			Code:  "INVALID_UUID",
		})
	}

	now := time.Now()
	year := now.Year()
	if y, err := strconv.Atoi(c.QueryParam("year")); err == nil {
		year = y
	}

	var summary *service.Summary
	if q := c.QueryParam("quarter"); q != "" {
		quarter, err := strconv.Atoi(q)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: errors.ErrInvalidPeriod.Error(),
				Code:  "INVALID_PERIOD",
			})
		}
		summary, err = h.summaryService.Quarterly(c.Request().Context(), userID, quarter, year)
		if err != nil {
			httpErr := errors.MapErrorToHTTP(err)
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		return c.JSON(http.StatusOK, summary)
	}

	month := int(now.Month())
	if m, err := strconv.Atoi(c.QueryParam("month")); err == nil {
		month = m
	}
	summary, err = h.summaryService.Monthly(c.Request().Context(), userID, month, year)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, summary)
}
