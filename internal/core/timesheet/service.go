package timesheet

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/employee"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/ledger"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// UseCase はタイムシートユースケースの公開インターフェースです。
type UseCase interface {
	SaveTimesheet(ctx context.Context, in SaveTimesheetInput) (*SaveResult, error)
	ListWeekPeriods(ctx context.Context) ([]string, error)
	GetTimesheetsForWeek(ctx context.Context, weekPeriod string) ([]*Timesheet, error)
}

// Option は Service の設定を変更します。
type Option func(*Service)

// WithAutoRegisterEmployees は未登録の従業員を保存時に自動登録するかを設定します。
func WithAutoRegisterEmployees(enabled bool) Option {
	return func(s *Service) {
		s.autoRegister = enabled
	}
}

// Service はタイムシートに関するユースケースをまとめます。
type Service struct {
	repo         Repository
	clock        Clock
	newID        func() string
	autoRegister bool
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	s := &Service{repo: repo, clock: clock, newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveTimesheetInput は保存時の入力です。TotalMinutes が nil なら Days から計算します。
type SaveTimesheetInput struct {
	EmployeeName string
	WeekPeriod   string
	TotalMinutes *int
	Days         []ledger.DayEntry
	DayDetails   json.RawMessage
}

// SaveResult は保存結果です。Created は新規作成なら true です。
type SaveResult struct {
	Timesheet *Timesheet
	Created   bool
}

// SaveTimesheet は (従業員, 週) をキーにタイムシートを保存します。
func (s *Service) SaveTimesheet(ctx context.Context, in SaveTimesheetInput) (*SaveResult, error) {
	name, err := employee.NormalizeName(in.EmployeeName)
	if err != nil {
		return nil, ErrInvalidEmployeeName
	}

	week, err := normalizeWeekPeriod(in.WeekPeriod)
	if err != nil {
		return nil, err
	}

	total, details, err := resolveTotal(in)
	if err != nil {
		return nil, err
	}

	sheet := &Timesheet{
		ID:           s.newID(),
		EmployeeName: name,
		WeekPeriod:   week,
		TotalMinutes: total,
		DayDetails:   details,
		SavedAt:      s.clock.Now(),
	}

	opts := UpsertOptions{}
	if s.autoRegister {
		opts.RegisterEmployee = true
		opts.NewEmployeeID = s.newID()
	}

	saved, created, err := s.repo.Upsert(ctx, sheet, opts)
	if err != nil {
		return nil, err
	}
	return &SaveResult{Timesheet: saved, Created: created}, nil
}

// ListWeekPeriods は保存済みの週ラベルを新しい順に返します。
func (s *Service) ListWeekPeriods(ctx context.Context) ([]string, error) {
	return s.repo.ListWeekPeriods(ctx)
}

// GetTimesheetsForWeek は指定週のタイムシートを従業員名順に返します。
func (s *Service) GetTimesheetsForWeek(ctx context.Context, weekPeriod string) ([]*Timesheet, error) {
	week, err := normalizeWeekPeriod(weekPeriod)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByWeek(ctx, week)
}

func normalizeWeekPeriod(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || ledger.IsPlaceholderLabel(trimmed) {
		return "", ErrInvalidWeekPeriod
	}
	return trimmed, nil
}

func resolveTotal(in SaveTimesheetInput) (int, json.RawMessage, error) {
	if len(in.Days) > ledger.DaysPerWeek {
		return 0, nil, ErrTooManyDays
	}
	for i, d := range in.Days {
		if err := d.Validate(); err != nil {
			return 0, nil, fmt.Errorf("day %d: %w", i, err)
		}
	}

	details := in.DayDetails
	if len(details) > 0 && !json.Valid(details) {
		return 0, nil, ErrInvalidDayDetails
	}

	if in.TotalMinutes != nil {
		if *in.TotalMinutes < 0 {
			return 0, nil, ErrInvalidTotalMinutes
		}
		return *in.TotalMinutes, details, nil
	}

	if len(in.Days) == 0 {
		return 0, nil, ErrMissingTotal
	}

	total := int(math.Round(ledger.WeeklyTotal(in.Days)))
	if len(details) == 0 {
		raw, err := json.Marshal(in.Days)
		if err != nil {
			return 0, nil, fmt.Errorf("timesheet: encode day entries: %w", err)
		}
		details = raw
	}
	return total, details, nil
}
