// Package report は週ごとのタイムシートを集計し、合計付きの帳票として書き出します。
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nikkisuraj26/cafe54-timecard/internal/core/ledger"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/timesheet"
)

// ErrEmpty は対象週にタイムシートが 1 件も無い場合に返却されます。
var ErrEmpty = errors.New("report: no timesheets for week period")

// Line は従業員 1 人分の行です。
type Line struct {
	EmployeeName string `json:"employee_name"`
	WeekPeriod   string `json:"week_period"`
	TotalMinutes int    `json:"total_minutes"`
	Display      string `json:"display"`
}

// Report は週単位の集計表です。
type Report struct {
	WeekPeriod        string `json:"week_period"`
	Lines             []Line `json:"lines"`
	GrandTotalMinutes int    `json:"grand_total_minutes"`
	GrandTotalDisplay string `json:"grand_total_display"`
}

// Build はタイムシートの一覧から週次レポートを組み立てます。
// 行の順序は入力の順序を保ちます。
func Build(weekPeriod string, sheets []*timesheet.Timesheet) (*Report, error) {
	if len(sheets) == 0 {
		return nil, ErrEmpty
	}

	r := &Report{WeekPeriod: weekPeriod, Lines: make([]Line, 0, len(sheets))}
	for _, s := range sheets {
		r.Lines = append(r.Lines, Line{
			EmployeeName: s.EmployeeName,
			WeekPeriod:   s.WeekPeriod,
			TotalMinutes: s.TotalMinutes,
			Display:      ledger.FormatDuration(float64(s.TotalMinutes)),
		})
		r.GrandTotalMinutes += s.TotalMinutes
	}
	r.GrandTotalDisplay = ledger.FormatDuration(float64(r.GrandTotalMinutes))
	return r, nil
}

const ruleWidth = 44

// WriteText は端末向けの表形式で書き出します。
func WriteText(w io.Writer, r *Report) error {
	rule := strings.Repeat("-", ruleWidth)

	var b strings.Builder
	fmt.Fprintf(&b, "Week %s\n", r.WeekPeriod)
	b.WriteString(rule + "\n")
	for _, l := range r.Lines {
		fmt.Fprintf(&b, "%-20s%s\n", l.EmployeeName, l.Display)
	}
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "%-20s%s\n", "Grand Total", r.GrandTotalDisplay)

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteCSV はヘッダ付き CSV を書き出します。最終行は合計です。
func WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"employee_name", "week_period", "total_minutes", "display"}); err != nil {
		return err
	}
	for _, l := range r.Lines {
		if err := cw.Write([]string{l.EmployeeName, l.WeekPeriod, strconv.Itoa(l.TotalMinutes), l.Display}); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"Grand Total", r.WeekPeriod, strconv.Itoa(r.GrandTotalMinutes), r.GrandTotalDisplay}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
