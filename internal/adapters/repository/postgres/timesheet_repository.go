package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/timesheet"
	pgdb "github.com/nikkisuraj26/cafe54-timecard/internal/platform/db/postgres"
)

const (
	ensureEmployeeQuery = `
        INSERT INTO employees (id, name, created_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (name) DO NOTHING
    `
	upsertTimesheetQuery = `
        INSERT INTO timesheets (id, employee_id, week_period, total_minutes, day_details, date_saved)
        SELECT $1::uuid, e.id, $3::text, $4::integer, $5::jsonb, $6::timestamptz
          FROM employees e
         WHERE e.name = $2
        ON CONFLICT (employee_id, week_period) DO UPDATE
           SET total_minutes = EXCLUDED.total_minutes,
               day_details = EXCLUDED.day_details,
               date_saved = EXCLUDED.date_saved
        RETURNING id, employee_id, week_period, total_minutes, day_details, date_saved, (xmax = 0) AS inserted
    `
	listWeekPeriodsQuery = `
        SELECT DISTINCT week_period
          FROM timesheets
         ORDER BY week_period COLLATE "C" DESC
    `
	listTimesheetsByWeekQuery = `
        SELECT t.id, t.employee_id, e.name, t.week_period, t.total_minutes, t.day_details, t.date_saved
          FROM timesheets t
          JOIN employees e ON e.id = t.employee_id
         WHERE t.week_period = $1
         ORDER BY e.name COLLATE "C"
    `
)

// TimesheetRepository は PostgreSQL を利用したタイムシート永続化の実装です。
type TimesheetRepository struct {
	pool pgdb.Queryer
	tx   *pgdb.TransactionManager
}

// NewTimesheetRepository は TimesheetRepository を生成します。tx が nil の場合は従業員の自動登録を単独の文で行います。
func NewTimesheetRepository(pool pgdb.Queryer, tx *pgdb.TransactionManager) *TimesheetRepository {
	return &TimesheetRepository{pool: pool, tx: tx}
}

// Upsert は (従業員, 週ラベル) を一意キーとして挿入または上書きします。
func (r *TimesheetRepository) Upsert(ctx context.Context, sheet *timesheet.Timesheet, opts timesheet.UpsertOptions) (*timesheet.Timesheet, bool, error) {
	var (
		saved   *timesheet.Timesheet
		created bool
	)

	run := func(ctx context.Context) error {
		exec := pgdb.QueryerFromContext(ctx, r.pool)

		if opts.RegisterEmployee {
			if _, err := exec.Exec(ctx, ensureEmployeeQuery, opts.NewEmployeeID, sheet.EmployeeName, sheet.SavedAt); err != nil {
				return err
			}
		}

		row := exec.QueryRow(ctx, upsertTimesheetQuery,
			sheet.ID,
			sheet.EmployeeName,
			sheet.WeekPeriod,
			sheet.TotalMinutes,
			nullableJSON(sheet.DayDetails),
			sheet.SavedAt,
		)

		var err error
		saved, created, err = scanUpsertedTimesheet(row, sheet.EmployeeName)
		return err
	}

	var err error
	if opts.RegisterEmployee {
		err = r.tx.WithinReadWrite(ctx, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		return nil, false, translateTimesheetPgError(err)
	}
	return saved, created, nil
}

// ListWeekPeriods は保存済みの週ラベルを重複なしの降順で返します。
func (r *TimesheetRepository) ListWeekPeriods(ctx context.Context) ([]string, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, listWeekPeriodsQuery)
	if err != nil {
		return nil, translateTimesheetPgError(err)
	}
	defer rows.Close()

	periods := make([]string, 0)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, translateTimesheetPgError(err)
		}
		periods = append(periods, p)
	}

	if err := rows.Err(); err != nil {
		return nil, translateTimesheetPgError(err)
	}
	return periods, nil
}

// ListByWeek は指定週のタイムシートを従業員名順で返します。
func (r *TimesheetRepository) ListByWeek(ctx context.Context, weekPeriod string) ([]*timesheet.Timesheet, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, listTimesheetsByWeekQuery, weekPeriod)
	if err != nil {
		return nil, translateTimesheetPgError(err)
	}
	defer rows.Close()

	sheets := make([]*timesheet.Timesheet, 0)
	for rows.Next() {
		s, err := scanTimesheet(rows)
		if err != nil {
			return nil, translateTimesheetPgError(err)
		}
		sheets = append(sheets, s)
	}

	if err := rows.Err(); err != nil {
		return nil, translateTimesheetPgError(err)
	}
	return sheets, nil
}

func scanTimesheet(row pgx.Row) (*timesheet.Timesheet, error) {
	var (
		s       timesheet.Timesheet
		details []byte
		savedAt time.Time
	)
	if err := row.Scan(&s.ID, &s.EmployeeID, &s.EmployeeName, &s.WeekPeriod, &s.TotalMinutes, &details, &savedAt); err != nil {
		return nil, err
	}
	s.DayDetails = details
	s.SavedAt = savedAt.UTC()
	return &s, nil
}

func scanUpsertedTimesheet(row pgx.Row, employeeName string) (*timesheet.Timesheet, bool, error) {
	var (
		s        timesheet.Timesheet
		details  []byte
		savedAt  time.Time
		inserted bool
	)
	if err := row.Scan(&s.ID, &s.EmployeeID, &s.WeekPeriod, &s.TotalMinutes, &details, &savedAt, &inserted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, timesheet.ErrEmployeeNotFound
		}
		return nil, false, err
	}
	s.EmployeeName = employeeName
	s.DayDetails = details
	s.SavedAt = savedAt.UTC()
	return &s, inserted, nil
}

func translateTimesheetPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, timesheet.ErrEmployeeNotFound) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case foreignKeyViolationCode:
			return timesheet.ErrEmployeeNotFound
		case checkViolationCode:
			return timesheet.ErrInvalidTotalMinutes
		}
	}

	if isUnavailable(err) {
		return unavailable(timesheet.ErrStoreUnavailable, err)
	}
	return err
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
