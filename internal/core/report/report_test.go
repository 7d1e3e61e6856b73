package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/nikkisuraj26/cafe54-timecard/internal/core/timesheet"
)

func sampleSheets() []*timesheet.Timesheet {
	return []*timesheet.Timesheet{
		{EmployeeName: "AMY", WeekPeriod: "W1", TotalMinutes: 90},
		{EmployeeName: "BOB", WeekPeriod: "W1", TotalMinutes: 480},
		{EmployeeName: "ZED", WeekPeriod: "W1", TotalMinutes: 0},
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	r, err := Build("W1", sampleSheets())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if len(r.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(r.Lines))
	}
	if r.Lines[0].Display != "1 hr 30 minutes" || r.Lines[1].Display != "8 hrs" || r.Lines[2].Display != "0 hrs 0 minutes" {
		t.Fatalf("unexpected displays: %+v", r.Lines)
	}
	if r.GrandTotalMinutes != 570 {
		t.Fatalf("expected grand total 570, got %d", r.GrandTotalMinutes)
	}
	if r.GrandTotalDisplay != "9 hrs 30 minutes" {
		t.Fatalf("unexpected grand total display %q", r.GrandTotalDisplay)
	}
}

func TestBuild_Empty(t *testing.T) {
	t.Parallel()

	if _, err := Build("W9", nil); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	r, err := Build("W1", sampleSheets())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteText(&buf, r); err != nil {
		t.Fatalf("WriteText returned error: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "Week W1\n") {
		t.Fatalf("missing heading: %q", out)
	}
	if !strings.Contains(out, "BOB") || !strings.Contains(out, "8 hrs") {
		t.Fatalf("missing employee line: %q", out)
	}
	if !strings.Contains(out, "Grand Total") || !strings.Contains(out, "9 hrs 30 minutes") {
		t.Fatalf("missing grand total: %q", out)
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	r, err := Build("W1", sampleSheets())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, r); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected header, 3 rows and total, got %d records", len(records))
	}
	if records[0][0] != "employee_name" {
		t.Fatalf("unexpected header %v", records[0])
	}
	if last := records[4]; last[0] != "Grand Total" || last[2] != "570" {
		t.Fatalf("unexpected total row %v", last)
	}
}

func TestPackageDocumented(t *testing.T) {
	t.Parallel()

	f, err := parser.ParseFile(token.NewFileSet(), "report.go", nil, parser.PackageClauseOnly|parser.ParseComments)
	if err != nil {
		t.Fatalf("parse report.go: %v", err)
	}
	if f.Doc == nil || !strings.HasPrefix(f.Doc.Text(), "Package report ") {
		t.Fatalf("report.go must carry the package doc comment")
	}
}
