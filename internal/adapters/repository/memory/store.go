// Package memory はプロセス内メモリに保持するリポジトリ実装を提供します。
// プロセス終了とともにデータは失われます。
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/nikkisuraj26/cafe54-timecard/internal/core/employee"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/timesheet"
)

// Store は従業員とタイムシートを共有するメモリ上のストアです。
type Store struct {
	mu         sync.RWMutex
	employees  map[string]*employee.Employee
	timesheets map[timesheet.Key]*timesheet.Timesheet
}

// NewStore は空の Store を返します。
func NewStore() *Store {
	return &Store{
		employees:  make(map[string]*employee.Employee),
		timesheets: make(map[timesheet.Key]*timesheet.Timesheet),
	}
}

// PutEmployee は名前が未登録の場合のみ従業員を追加します。
func (s *Store) PutEmployee(e *employee.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[e.Name]; ok {
		return
	}
	clone := *e
	s.employees[e.Name] = &clone
}

// PutTimesheet はタイムシートをキー単位で置き換えます。従業員が未登録なら併せて登録します。
func (s *Store) PutTimesheet(sheet *timesheet.Timesheet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[sheet.EmployeeName]; !ok {
		s.employees[sheet.EmployeeName] = &employee.Employee{ID: sheet.EmployeeID, Name: sheet.EmployeeName, CreatedAt: sheet.SavedAt}
	}
	clone := *sheet
	s.timesheets[sheet.Key()] = &clone
}

// EmployeeRepository は employee.Repository のメモリ実装です。
type EmployeeRepository struct {
	store *Store
}

// NewEmployeeRepository は Store を共有する従業員リポジトリを返します。
func NewEmployeeRepository(store *Store) *EmployeeRepository {
	return &EmployeeRepository{store: store}
}

// List は大文字小文字を無視した名前順で返します。
func (r *EmployeeRepository) List(_ context.Context) ([]*employee.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*employee.Employee, 0, len(r.store.employees))
	for _, e := range r.store.employees {
		clone := *e
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if li != lj {
			return li < lj
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Create は従業員を登録します。
func (r *EmployeeRepository) Create(_ context.Context, e *employee.Employee) (*employee.Employee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.employees[e.Name]; ok {
		return nil, employee.ErrEmployeeAlreadyExists
	}
	clone := *e
	r.store.employees[e.Name] = &clone
	out := clone
	return &out, nil
}

// TimesheetRepository は timesheet.Repository のメモリ実装です。
type TimesheetRepository struct {
	store *Store
}

// NewTimesheetRepository は Store を共有するタイムシートリポジトリを返します。
func NewTimesheetRepository(store *Store) *TimesheetRepository {
	return &TimesheetRepository{store: store}
}

// Upsert は (従業員名, 週ラベル) で挿入または更新します。
func (r *TimesheetRepository) Upsert(_ context.Context, sheet *timesheet.Timesheet, opts timesheet.UpsertOptions) (*timesheet.Timesheet, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	emp, ok := r.store.employees[sheet.EmployeeName]
	if !ok {
		if !opts.RegisterEmployee {
			return nil, false, timesheet.ErrEmployeeNotFound
		}
		emp = &employee.Employee{ID: opts.NewEmployeeID, Name: sheet.EmployeeName, CreatedAt: sheet.SavedAt}
		r.store.employees[emp.Name] = emp
	}

	key := sheet.Key()
	if existing, ok := r.store.timesheets[key]; ok {
		existing.TotalMinutes = sheet.TotalMinutes
		existing.DayDetails = sheet.DayDetails
		existing.SavedAt = sheet.SavedAt
		out := *existing
		return &out, false, nil
	}

	stored := *sheet
	stored.EmployeeID = emp.ID
	r.store.timesheets[key] = &stored
	out := stored
	return &out, true, nil
}

// ListWeekPeriods は重複を除いた週ラベルを降順で返します。
func (r *TimesheetRepository) ListWeekPeriods(_ context.Context) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for key := range r.store.timesheets {
		if _, ok := seen[key.WeekPeriod]; ok {
			continue
		}
		seen[key.WeekPeriod] = struct{}{}
		out = append(out, key.WeekPeriod)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out, nil
}

// ListByWeek は指定週のタイムシートを従業員名の昇順で返します。
func (r *TimesheetRepository) ListByWeek(_ context.Context, weekPeriod string) ([]*timesheet.Timesheet, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*timesheet.Timesheet, 0)
	for key, sheet := range r.store.timesheets {
		if key.WeekPeriod != weekPeriod {
			continue
		}
		clone := *sheet
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeName < out[j].EmployeeName })
	return out, nil
}
