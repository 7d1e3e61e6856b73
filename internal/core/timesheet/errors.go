package timesheet

import "errors"

var (
	// ErrInvalidEmployeeName は従業員名が空の場合に返却されます。
	ErrInvalidEmployeeName = errors.New("timesheet: employee name is required")
	// ErrInvalidWeekPeriod は週ラベルが空の場合に返却されます。
	ErrInvalidWeekPeriod = errors.New("timesheet: week period is required")
	// ErrInvalidTotalMinutes は合計分が負の場合に返却されます。
	ErrInvalidTotalMinutes = errors.New("timesheet: total minutes must not be negative")
	// ErrMissingTotal は合計分も日別入力も無い場合に返却されます。
	ErrMissingTotal = errors.New("timesheet: total minutes or day entries are required")
	// ErrTooManyDays は日別入力が 7 件を超えた場合に返却されます。
	ErrTooManyDays = errors.New("timesheet: at most 7 day entries are allowed")
	// ErrInvalidDayDetails は日別詳細が JSON として不正な場合に返却されます。
	ErrInvalidDayDetails = errors.New("timesheet: day details must be valid JSON")
	// ErrEmployeeNotFound は保存対象の従業員が未登録の場合に返却されます。
	ErrEmployeeNotFound = errors.New("timesheet: employee not found")
	// ErrStoreUnavailable は永続ストアに接続できない場合に返却されます。
	ErrStoreUnavailable = errors.New("timesheet: store unavailable")
)
