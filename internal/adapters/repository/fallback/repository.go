package fallback

import (
	"context"
	"errors"

	"github.com/nikkisuraj26/cafe54-timecard/internal/adapters/repository/memory"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/employee"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/timesheet"
)

// EmployeeRepository は primary の成功結果をメモリへ複製し、primary が到達不能ならメモリで応答します。
type EmployeeRepository struct {
	primary employee.Repository
	mirror  *memory.Store
	memory  *memory.EmployeeRepository
	monitor *Monitor
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(primary employee.Repository, mirror *memory.Store, monitor *Monitor) *EmployeeRepository {
	return &EmployeeRepository{
		primary: primary,
		mirror:  mirror,
		memory:  memory.NewEmployeeRepository(mirror),
		monitor: monitor,
	}
}

// List は従業員一覧を返します。
func (r *EmployeeRepository) List(ctx context.Context) ([]*employee.Employee, error) {
	employees, err := r.primary.List(ctx)
	if err == nil {
		for _, e := range employees {
			r.mirror.PutEmployee(e)
		}
		r.monitor.MarkHealthy(ctx)
		return employees, nil
	}
	if !errors.Is(err, employee.ErrStoreUnavailable) {
		return nil, err
	}

	r.monitor.MarkDegraded(ctx, "list_employees", err)
	return r.memory.List(ctx)
}

// Create は従業員を登録します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	created, err := r.primary.Create(ctx, e)
	if err == nil {
		r.mirror.PutEmployee(created)
		r.monitor.MarkHealthy(ctx)
		return created, nil
	}
	if !errors.Is(err, employee.ErrStoreUnavailable) {
		return nil, err
	}

	r.monitor.MarkDegraded(ctx, "create_employee", err)
	return r.memory.Create(ctx, e)
}

// TimesheetRepository はタイムシート版の EmployeeRepository です。
type TimesheetRepository struct {
	primary timesheet.Repository
	mirror  *memory.Store
	memory  *memory.TimesheetRepository
	monitor *Monitor
}

// NewTimesheetRepository は TimesheetRepository を生成します。
func NewTimesheetRepository(primary timesheet.Repository, mirror *memory.Store, monitor *Monitor) *TimesheetRepository {
	return &TimesheetRepository{
		primary: primary,
		mirror:  mirror,
		memory:  memory.NewTimesheetRepository(mirror),
		monitor: monitor,
	}
}

// Upsert はタイムシートを保存します。
func (r *TimesheetRepository) Upsert(ctx context.Context, sheet *timesheet.Timesheet, opts timesheet.UpsertOptions) (*timesheet.Timesheet, bool, error) {
	saved, created, err := r.primary.Upsert(ctx, sheet, opts)
	if err == nil {
		r.mirror.PutTimesheet(saved)
		r.monitor.MarkHealthy(ctx)
		return saved, created, nil
	}
	if !errors.Is(err, timesheet.ErrStoreUnavailable) {
		return nil, false, err
	}

	r.monitor.MarkDegraded(ctx, "upsert_timesheet", err)
	return r.memory.Upsert(ctx, sheet, opts)
}

// ListWeekPeriods は週ラベルの一覧を返します。
func (r *TimesheetRepository) ListWeekPeriods(ctx context.Context) ([]string, error) {
	periods, err := r.primary.ListWeekPeriods(ctx)
	if err == nil {
		r.monitor.MarkHealthy(ctx)
		return periods, nil
	}
	if !errors.Is(err, timesheet.ErrStoreUnavailable) {
		return nil, err
	}

	r.monitor.MarkDegraded(ctx, "list_week_periods", err)
	return r.memory.ListWeekPeriods(ctx)
}

// ListByWeek は指定週のタイムシートを返します。
func (r *TimesheetRepository) ListByWeek(ctx context.Context, weekPeriod string) ([]*timesheet.Timesheet, error) {
	sheets, err := r.primary.ListByWeek(ctx, weekPeriod)
	if err == nil {
		for _, s := range sheets {
			r.mirror.PutTimesheet(s)
		}
		r.monitor.MarkHealthy(ctx)
		return sheets, nil
	}
	if !errors.Is(err, timesheet.ErrStoreUnavailable) {
		return nil, err
	}

	r.monitor.MarkDegraded(ctx, "list_timesheets", err)
	return r.memory.ListByWeek(ctx, weekPeriod)
}
