package timesheet

import (
	"encoding/json"
	"time"
)

// Timesheet は従業員 1 人の 1 週間分の集計です。(EmployeeName, WeekPeriod) が一意です。
type Timesheet struct {
	ID           string
	EmployeeID   string
	EmployeeName string
	WeekPeriod   string
	TotalMinutes int
	// DayDetails は日別入力の生データです。ストアは中身を解釈しません。
	DayDetails json.RawMessage
	SavedAt    time.Time
}

// Key は一意キーを返します。
func (t *Timesheet) Key() Key {
	return Key{EmployeeName: t.EmployeeName, WeekPeriod: t.WeekPeriod}
}

// Key は (従業員名, 週ラベル) の組です。
type Key struct {
	EmployeeName string
	WeekPeriod   string
}
