package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/labstack/echo/v4"
	"github.com/nikkisuraj26/cafe54-timecard/internal/adapters/export/xlsx"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/ledger"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/report"
)

type dayResultResponse struct {
	Minutes float64 `json:"minutes"`
	Display string  `json:"display"`
	// Counted は開始と終了が両方そろった日だけ true です。
	Counted bool `json:"counted"`
}

type computeWeekResponse struct {
	Days         []dayResultResponse `json:"days"`
	TotalMinutes float64             `json:"total_minutes"`
	TotalDisplay string              `json:"total_display"`
}

// GetReport は指定週の集計を JSON で返します。
func (h *Handler) GetReport(c echo.Context) error {
	r, err := h.buildReport(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

// ExportReport は指定週の集計を XLSX の添付ファイルとして返します。
func (h *Handler) ExportReport(c echo.Context) error {
	r, err := h.buildReport(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := xlsx.Write(&buf, r); err != nil {
		return fmt.Errorf("render xlsx: %w", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", reportFileName(r.WeekPeriod)))
	return c.Blob(http.StatusOK, xlsx.ContentType, buf.Bytes())
}

// ComputeWeek は保存せずに日別と週合計の勤務時間を計算します。
func (h *Handler) ComputeWeek(c echo.Context) error {
	var req computeWeekRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}

	resp := computeWeekResponse{Days: make([]dayResultResponse, 0, len(req.Days))}
	for _, d := range req.Days {
		minutes := ledger.DayTotal(d)
		resp.Days = append(resp.Days, dayResultResponse{
			Minutes: minutes,
			Display: ledger.FormatDuration(minutes),
			Counted: d.Complete(),
		})
	}
	resp.TotalMinutes = ledger.WeeklyTotal(req.Days)
	resp.TotalDisplay = ledger.FormatDuration(resp.TotalMinutes)
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) buildReport(c echo.Context) (*report.Report, error) {
	week, err := weekParam(c)
	if err != nil {
		return nil, err
	}
	sheets, err := h.timesheets.GetTimesheetsForWeek(c.Request().Context(), week)
	if err != nil {
		return nil, err
	}
	return report.Build(strings.TrimSpace(week), sheets)
}

// reportFileName は週ラベルをファイル名に使える文字だけに置き換えます。
func reportFileName(week string) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			return r
		}
		return '_'
	}, week)
	name = strings.Trim(name, "_")
	if name == "" {
		name = "report"
	}
	return "timesheets_" + name + ".xlsx"
}
