package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/ledger"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/timesheet"
	"github.com/nikkisuraj26/cafe54-timecard/pkg/logger"
)

const weekDateLayout = "2006-01-02"

type timesheetResponse struct {
	ID           string          `json:"id"`
	EmployeeName string          `json:"employee_name"`
	WeekPeriod   string          `json:"week_period"`
	TotalMinutes int             `json:"total_minutes"`
	DayDetails   json.RawMessage `json:"day_details"`
	DateSaved    time.Time       `json:"date_saved"`
}

type weekTimesheetResponse struct {
	EmployeeName string          `json:"employee_name"`
	WeekPeriod   string          `json:"week_period"`
	TotalMinutes int             `json:"total_minutes"`
	DayDetails   json.RawMessage `json:"day_details"`
}

type currentWeekResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

// SaveTimesheet は (従業員, 週) 単位でタイムシートを保存します。新規なら 201、上書きなら 200 を返します。
func (h *Handler) SaveTimesheet(c echo.Context) error {
	var req saveTimesheetRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}

	ctx := c.Request().Context()
	res, err := h.timesheets.SaveTimesheet(ctx, req.toInput())
	if err != nil {
		return err
	}

	h.metrics.IncTimesheetSaved(res.Created)
	h.log.Info(ctx, "timesheet saved",
		logger.String("employee", res.Timesheet.EmployeeName),
		logger.String("week_period", res.Timesheet.WeekPeriod),
		logger.Int("total_minutes", res.Timesheet.TotalMinutes),
		logger.Bool("created", res.Created),
	)

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	return c.JSON(status, toTimesheetResponse(res.Timesheet))
}

// GetTimesheetsForWeek は指定週のタイムシートを従業員名順で返します。
func (h *Handler) GetTimesheetsForWeek(c echo.Context) error {
	week, err := weekParam(c)
	if err != nil {
		return err
	}

	sheets, err := h.timesheets.GetTimesheetsForWeek(c.Request().Context(), week)
	if err != nil {
		return err
	}

	out := make([]weekTimesheetResponse, 0, len(sheets))
	for _, s := range sheets {
		out = append(out, weekTimesheetResponse{
			EmployeeName: s.EmployeeName,
			WeekPeriod:   s.WeekPeriod,
			TotalMinutes: s.TotalMinutes,
			DayDetails:   s.DayDetails,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// ListWeekPeriods は保存済みの週ラベルを降順で返します。
func (h *Handler) ListWeekPeriods(c echo.Context) error {
	periods, err := h.timesheets.ListWeekPeriods(c.Request().Context())
	if err != nil {
		return err
	}
	if periods == nil {
		periods = []string{}
	}
	return c.JSON(http.StatusOK, periods)
}

// CurrentWeekPeriod は今日を含む月曜から日曜の週ラベルを返します。
func (h *Handler) CurrentWeekPeriod(c echo.Context) error {
	monday, sunday := ledger.WeekRange(h.now())
	return c.JSON(http.StatusOK, currentWeekResponse{
		Start: monday.Format(weekDateLayout),
		End:   sunday.Format(weekDateLayout),
		Label: ledger.WeekPeriodLabel(monday, sunday),
	})
}

func toTimesheetResponse(t *timesheet.Timesheet) timesheetResponse {
	return timesheetResponse{
		ID:           t.ID,
		EmployeeName: t.EmployeeName,
		WeekPeriod:   t.WeekPeriod,
		TotalMinutes: t.TotalMinutes,
		DayDetails:   t.DayDetails,
		DateSaved:    t.SavedAt,
	}
}
