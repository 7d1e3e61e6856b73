// Package xlsx は週次レポートを Excel ブックとして書き出します。
package xlsx

import (
	"fmt"
	"io"

	"github.com/nikkisuraj26/cafe54-timecard/internal/core/report"
	"github.com/xuri/excelize/v2"
)

// SheetName は出力するシート名です。週ラベルはシート名に使えない文字を含むため固定にしています。
const SheetName = "Timesheets"

// ContentType は XLSX の MIME タイプです。
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const headerRow = 3

var header = []string{"Employee", "Week Period", "Total Minutes", "Total"}

// Write は r を 1 シートのブックとして w に書き出します。
func Write(w io.Writer, r *report.Report) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: create style: %w", err)
	}

	if err := setRow(f, 1, []any{"Week", r.WeekPeriod}); err != nil {
		return err
	}

	headerValues := make([]any, len(header))
	for i, h := range header {
		headerValues[i] = h
	}
	if err := setRow(f, headerRow, headerValues); err != nil {
		return err
	}

	row := headerRow + 1
	for _, l := range r.Lines {
		if err := setRow(f, row, []any{l.EmployeeName, l.WeekPeriod, l.TotalMinutes, l.Display}); err != nil {
			return err
		}
		row++
	}

	if err := setRow(f, row, []any{"Grand Total", "", r.GrandTotalMinutes, r.GrandTotalDisplay}); err != nil {
		return err
	}

	for _, cells := range [][2]string{{"A1", "A1"}, {"A3", "D3"}, {cellName(1, row), cellName(len(header), row)}} {
		if err := f.SetCellStyle(SheetName, cells[0], cells[1], bold); err != nil {
			return fmt.Errorf("xlsx: style %s: %w", cells[0], err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "B", 26); err != nil {
		return fmt.Errorf("xlsx: column width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "C", "D", 18); err != nil {
		return fmt.Errorf("xlsx: column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []any) error {
	for i, v := range values {
		if err := f.SetCellValue(SheetName, cellName(i+1, row), v); err != nil {
			return fmt.Errorf("xlsx: set cell: %w", err)
		}
	}
	return nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
