package postgres

import (
	"context"
	"errors"
	"net"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/employee"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestEmployeeRepository_List(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "name", "created_at"}).
		AddRow("emp-1", "ADAM", now).
		AddRow("emp-2", "JILL", now)

	mock.ExpectQuery(regexp.QuoteMeta(listEmployeesQuery)).WillReturnRows(rows)

	employees, err := NewEmployeeRepository(mock).List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(employees) != 2 || employees[0].Name != "ADAM" || employees[1].ID != "emp-2" {
		t.Fatalf("unexpected employees: %+v", employees)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_Create(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(insertEmployeeQuery)).
		WithArgs("emp-1", "BOB", now).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "created_at"}).AddRow("emp-1", "BOB", now))

	created, err := NewEmployeeRepository(mock).Create(context.Background(), &employee.Employee{ID: "emp-1", Name: "BOB", CreatedAt: now})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.Name != "BOB" || !created.CreatedAt.Equal(now) {
		t.Fatalf("unexpected employee: %+v", created)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_CreateDuplicate(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(insertEmployeeQuery)).
		WithArgs("emp-1", "BOB", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "employees_name_key"})

	_, err = NewEmployeeRepository(mock).Create(context.Background(), &employee.Employee{ID: "emp-1", Name: "BOB"})
	if !errors.Is(err, employee.ErrEmployeeAlreadyExists) {
		t.Fatalf("expected ErrEmployeeAlreadyExists, got %v", err)
	}
}

func TestTranslateEmployeePgError(t *testing.T) {
	t.Parallel()

	if !errors.Is(translateEmployeePgError(&pgconn.PgError{Code: uniqueViolationCode}), employee.ErrEmployeeAlreadyExists) {
		t.Fatalf("expected unique violation to map to ErrEmployeeAlreadyExists")
	}

	if !errors.Is(translateEmployeePgError(&pgconn.PgError{Code: "08006"}), employee.ErrStoreUnavailable) {
		t.Fatalf("expected connection failure to map to ErrStoreUnavailable")
	}

	if !errors.Is(translateEmployeePgError(&pgconn.PgError{Code: "57P01"}), employee.ErrStoreUnavailable) {
		t.Fatalf("expected admin shutdown to map to ErrStoreUnavailable")
	}

	dialErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	if !errors.Is(translateEmployeePgError(dialErr), employee.ErrStoreUnavailable) {
		t.Fatalf("expected dial error to map to ErrStoreUnavailable")
	}

	other := errors.New("other")
	if translateEmployeePgError(other) != other {
		t.Fatalf("unexpected translation for generic error")
	}
}
