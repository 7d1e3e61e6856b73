package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/employee"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/ledger"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/report"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/timesheet"
	"github.com/nikkisuraj26/cafe54-timecard/pkg/logger"
)

const internalErrorMessage = "internal server error"

type errorResponse struct {
	Error string `json:"error"`
}

func toHTTPError(err error) (int, string) {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code, fmt.Sprint(he.Message)
	case errors.Is(err, employee.ErrInvalidName),
		errors.Is(err, timesheet.ErrInvalidEmployeeName),
		errors.Is(err, timesheet.ErrInvalidWeekPeriod),
		errors.Is(err, timesheet.ErrInvalidTotalMinutes),
		errors.Is(err, timesheet.ErrMissingTotal),
		errors.Is(err, timesheet.ErrTooManyDays),
		errors.Is(err, timesheet.ErrInvalidDayDetails),
		errors.Is(err, ledger.ErrInvalidReading):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, employee.ErrEmployeeAlreadyExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, timesheet.ErrEmployeeNotFound), errors.Is(err, report.ErrEmpty):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, employee.ErrStoreUnavailable), errors.Is(err, timesheet.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "storage unavailable"
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}

// HTTPErrorHandler はハンドラのエラーを {"error": "..."} 形式へ変換します。
func (h *Handler) HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, msg := toHTTPError(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(c.Request().Context(), "request failed",
			logger.String("method", c.Request().Method),
			logger.String("path", c.Path()),
			logger.Int("status", status),
			logger.Error(err),
		)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, errorResponse{Error: msg})
	}
	if werr != nil {
		h.log.Error(c.Request().Context(), "write error response", logger.Error(werr))
	}
}
