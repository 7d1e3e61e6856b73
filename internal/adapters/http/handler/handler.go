// Package handler は勤怠 API の HTTP (echo) 実装です。
package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/employee"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/health"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/timesheet"
	"github.com/nikkisuraj26/cafe54-timecard/pkg/logger"
)

// Recorder は業務イベントのメトリクス出力先です。
type Recorder interface {
	IncTimesheetSaved(created bool)
	IncEmployeeAdded()
}

type nopRecorder struct{}

func (nopRecorder) IncTimesheetSaved(bool) {}
func (nopRecorder) IncEmployeeAdded()      {}

// Option は Handler の設定を変更します。
type Option func(*Handler)

// WithLogger はログ出力先を設定します。
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// WithRecorder はメトリクス出力先を設定します。
func WithRecorder(r Recorder) Option {
	return func(h *Handler) {
		if r != nil {
			h.metrics = r
		}
	}
}

// WithClock は現在週の算出に使う時刻の取得元を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// Handler は /api 配下のエンドポイントをまとめます。
type Handler struct {
	employees  employee.UseCase
	timesheets timesheet.UseCase
	health     health.Checker
	metrics    Recorder
	log        logger.Logger
	now        func() time.Time
}

// New は Handler を生成します。
func New(employees employee.UseCase, timesheets timesheet.UseCase, checker health.Checker, opts ...Option) *Handler {
	h := &Handler{
		employees:  employees,
		timesheets: timesheets,
		health:     checker,
		metrics:    nopRecorder{},
		log:        logger.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register はルートをグループへ登録します。
func (h *Handler) Register(api *echo.Group) {
	api.GET("/employees", h.ListEmployees)
	api.POST("/employees", h.AddEmployee)

	api.POST("/timesheets", h.SaveTimesheet)
	api.GET("/timesheets/:weekPeriod", h.GetTimesheetsForWeek)

	api.GET("/week-periods", h.ListWeekPeriods)
	api.GET("/week-periods/current", h.CurrentWeekPeriod)

	api.GET("/reports/:weekPeriod", h.GetReport)
	api.GET("/reports/:weekPeriod/xlsx", h.ExportReport)

	api.POST("/ledger/week", h.ComputeWeek)

	api.GET("/health", h.Health)
}

// Health はプロセスとストレージの状態を返します。
func (h *Handler) Health(c echo.Context) error {
	report, err := h.health.Check(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}
