// Package ledger は 12 時間表記の打刻から勤務時間を計算する純粋関数をまとめます。
package ledger

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour
	noonHour       = 12
)

// ErrInvalidReading は打刻値が範囲外の場合に返却されます。
var ErrInvalidReading = errors.New("ledger: invalid clock reading")

// Meridiem は午前・午後の区別です。
type Meridiem string

const (
	AM Meridiem = "AM"
	PM Meridiem = "PM"
)

// ParseMeridiem は大文字小文字を区別せずに AM/PM を解釈します。
func ParseMeridiem(raw string) (Meridiem, error) {
	switch Meridiem(strings.ToUpper(strings.TrimSpace(raw))) {
	case AM:
		return AM, nil
	case PM:
		return PM, nil
	default:
		return "", fmt.Errorf("meridiem %q: %w", raw, ErrInvalidReading)
	}
}

// ClockReading は 12 時間表記の打刻です。
type ClockReading struct {
	Hour     int      `json:"hour"`
	Minute   int      `json:"minute"`
	Meridiem Meridiem `json:"meridiem"`
}

// Validate は時 1-12、分 0-59、AM/PM であることを確認します。
func (c ClockReading) Validate() error {
	if c.Hour < 1 || c.Hour > noonHour {
		return fmt.Errorf("hour %d: %w", c.Hour, ErrInvalidReading)
	}
	if c.Minute < 0 || c.Minute >= minutesPerHour {
		return fmt.Errorf("minute %d: %w", c.Minute, ErrInvalidReading)
	}
	if c.Meridiem != AM && c.Meridiem != PM {
		return fmt.Errorf("meridiem %q: %w", c.Meridiem, ErrInvalidReading)
	}
	return nil
}

// ClockToMinutes は打刻を 0 時からの経過分に変換します。12:00 AM は 0、12:00 PM は 720 です。
func ClockToMinutes(c ClockReading) int {
	hour := c.Hour
	switch {
	case c.Meridiem == PM && hour != noonHour:
		hour += noonHour
	case c.Meridiem == AM && hour == noonHour:
		hour = 0
	}
	return hour*minutesPerHour + c.Minute
}

// ElapsedMinutes は start から end までの分数を返します。
// end が start より前なら翌日として扱います。同じ打刻は 0 分です。
func ElapsedMinutes(start, end ClockReading) int {
	diff := ClockToMinutes(end) - ClockToMinutes(start)
	if diff < 0 {
		diff += minutesPerDay
	}
	return diff
}

// ApplyBreak は休憩時間 (時間単位) を差し引きます。結果は負になりません。
func ApplyBreak(elapsed int, breakHours float64) float64 {
	if breakHours < 0 || math.IsNaN(breakHours) {
		breakHours = 0
	}
	return math.Max(0, float64(elapsed)-breakHours*minutesPerHour)
}

// FormatDuration は分数を "1 hr 30 minutes" の形式に整形します。
func FormatDuration(minutes float64) string {
	if minutes <= 0 || math.IsNaN(minutes) {
		return "0 hrs 0 minutes"
	}

	hours := int(math.Floor(minutes / minutesPerHour))
	mins := int(math.Round(math.Mod(minutes, minutesPerHour)))

	clauses := make([]string, 0, 2)
	if hours != 0 {
		clauses = append(clauses, fmt.Sprintf("%d %s", hours, plural(hours, "hr", "hrs")))
	}
	if mins != 0 {
		clauses = append(clauses, fmt.Sprintf("%d %s", mins, plural(mins, "minute", "minutes")))
	}
	if len(clauses) == 0 {
		return "0 hrs 0 minutes"
	}
	return strings.Join(clauses, " ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// DayEntry は 1 日分の入力です。Start か End が欠けている日は集計されません。
type DayEntry struct {
	Start      *ClockReading `json:"start,omitempty"`
	End        *ClockReading `json:"end,omitempty"`
	BreakHours float64       `json:"breakHours"`
}

// Complete は開始・終了の両方が入力されているかを返します。
func (d DayEntry) Complete() bool {
	return d.Start != nil && d.End != nil
}

// Validate は入力済みの打刻と休憩時間を検証します。
func (d DayEntry) Validate() error {
	if d.Start != nil {
		if err := d.Start.Validate(); err != nil {
			return fmt.Errorf("start: %w", err)
		}
	}
	if d.End != nil {
		if err := d.End.Validate(); err != nil {
			return fmt.Errorf("end: %w", err)
		}
	}
	if d.BreakHours < 0 || math.IsNaN(d.BreakHours) || math.IsInf(d.BreakHours, 0) {
		return fmt.Errorf("break hours %v: %w", d.BreakHours, ErrInvalidReading)
	}
	return nil
}

// DayTotal は休憩控除後の勤務分数を返します。
func DayTotal(d DayEntry) float64 {
	if !d.Complete() {
		return 0
	}
	return ApplyBreak(ElapsedMinutes(*d.Start, *d.End), d.BreakHours)
}

// WeeklyTotal は各日の DayTotal を合計します。
func WeeklyTotal(days []DayEntry) float64 {
	var total float64
	for _, d := range days {
		total += DayTotal(d)
	}
	return total
}
