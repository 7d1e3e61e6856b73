package xlsx

import (
	"bytes"
	"testing"

	"github.com/nikkisuraj26/cafe54-timecard/internal/core/report"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/timesheet"
	"github.com/xuri/excelize/v2"
)

func TestWrite(t *testing.T) {
	t.Parallel()

	r, err := report.Build("{01/01/2024-07/01/2024}", []*timesheet.Timesheet{
		{EmployeeName: "AMY", WeekPeriod: "{01/01/2024-07/01/2024}", TotalMinutes: 90},
		{EmployeeName: "BOB", WeekPeriod: "{01/01/2024-07/01/2024}", TotalMinutes: 480},
	})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, r); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("output is not a workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	if name := f.GetSheetName(0); name != SheetName {
		t.Fatalf("expected sheet %s, got %s", SheetName, name)
	}

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows returned error: %v", err)
	}

	// title, blank, header, 2 employees, grand total
	if len(rows) != 6 {
		t.Fatalf("expected 6 rows, got %d: %v", len(rows), rows)
	}
	if rows[0][1] != "{01/01/2024-07/01/2024}" {
		t.Fatalf("unexpected title row %v", rows[0])
	}
	if rows[2][0] != "Employee" {
		t.Fatalf("unexpected header %v", rows[2])
	}
	if rows[4][0] != "BOB" || rows[4][2] != "480" || rows[4][3] != "8 hrs" {
		t.Fatalf("unexpected employee row %v", rows[4])
	}
	if rows[5][0] != "Grand Total" || rows[5][2] != "570" || rows[5][3] != "9 hrs 30 minutes" {
		t.Fatalf("unexpected total row %v", rows[5])
	}
}
