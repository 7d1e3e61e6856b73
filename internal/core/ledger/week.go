package ledger

import (
	"fmt"
	"time"
)

const (
	labelDateLayout  = "02/01/2006"
	placeholderLabel = "{startdate-enddate}"
)

// DaysPerWeek は 1 週間の入力行数です。
const DaysPerWeek = 7

// WeekRange は t を含む週の月曜 00:00 と日曜 00:00 を返します。
func WeekRange(t time.Time) (time.Time, time.Time) {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	monday := time.Date(t.Year(), t.Month(), t.Day()-(wd-1), 0, 0, 0, 0, t.Location())
	sunday := monday.AddDate(0, 0, DaysPerWeek-1)
	return monday, sunday
}

// WeekPeriodLabel は "{dd/mm/yyyy-dd/mm/yyyy}" 形式の週ラベルを生成します。
// ゼロ値の日付は空欄になり、両方ゼロならプレースホルダを返します。
func WeekPeriodLabel(start, end time.Time) string {
	if start.IsZero() && end.IsZero() {
		return placeholderLabel
	}
	return fmt.Sprintf("{%s-%s}", formatLabelDate(start), formatLabelDate(end))
}

// IsPlaceholderLabel は日付未選択のラベルかどうかを返します。
func IsPlaceholderLabel(label string) bool {
	return label == placeholderLabel
}

func formatLabelDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(labelDateLayout)
}
