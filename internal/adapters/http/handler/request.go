package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/employee"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/ledger"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/timesheet"
)

type addEmployeeRequest struct {
	Name string `json:"name"`
}

func (r addEmployeeRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return employee.ErrInvalidName
	}
	return nil
}

type saveTimesheetRequest struct {
	EmployeeName string            `json:"employeeName"`
	WeekPeriod   string            `json:"weekPeriod"`
	TotalMinutes *int              `json:"totalMinutes,omitempty"`
	Days         []ledger.DayEntry `json:"days,omitempty"`
	DayDetails   json.RawMessage   `json:"dayDetails,omitempty"`
}

func (r saveTimesheetRequest) validate() error {
	if strings.TrimSpace(r.EmployeeName) == "" {
		return timesheet.ErrInvalidEmployeeName
	}
	if strings.TrimSpace(r.WeekPeriod) == "" {
		return timesheet.ErrInvalidWeekPeriod
	}
	if r.TotalMinutes != nil && *r.TotalMinutes < 0 {
		return timesheet.ErrInvalidTotalMinutes
	}
	if r.TotalMinutes == nil && len(r.Days) == 0 {
		return timesheet.ErrMissingTotal
	}
	if len(r.Days) > ledger.DaysPerWeek {
		return timesheet.ErrTooManyDays
	}
	return nil
}

func (r saveTimesheetRequest) toInput() timesheet.SaveTimesheetInput {
	return timesheet.SaveTimesheetInput{
		EmployeeName: r.EmployeeName,
		WeekPeriod:   r.WeekPeriod,
		TotalMinutes: r.TotalMinutes,
		Days:         r.Days,
		DayDetails:   r.DayDetails,
	}
}

type computeWeekRequest struct {
	Days []ledger.DayEntry `json:"days"`
}

func (r computeWeekRequest) validate() error {
	if len(r.Days) > ledger.DaysPerWeek {
		return timesheet.ErrTooManyDays
	}
	for i, d := range r.Days {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("day %d: %w", i, err)
		}
	}
	return nil
}

// bindJSON はボディをデコードし、失敗時は 400 を返します。
func bindJSON(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return nil
}

// weekParam はパス上の週ラベルを返します。
// RawPath でルーティングされた場合に限りデコードします。
func weekParam(c echo.Context) (string, error) {
	week := c.Param("weekPeriod")
	if c.Request().URL.RawPath != "" {
		decoded, err := url.PathUnescape(week)
		if err != nil {
			return "", echo.NewHTTPError(http.StatusBadRequest, "invalid week period encoding")
		}
		week = decoded
	}
	if strings.TrimSpace(week) == "" {
		return "", timesheet.ErrInvalidWeekPeriod
	}
	return week, nil
}
