package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nikkisuraj26/cafe54-timecard/internal/adapters/export/xlsx"
	"github.com/nikkisuraj26/cafe54-timecard/internal/adapters/http/handler"
	"github.com/nikkisuraj26/cafe54-timecard/internal/adapters/repository/memory"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/employee"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/health"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/timesheet"
	. "github.com/smartystreets/goconvey/convey"
)

type recordedRequest struct {
	route  string
	method string
	status int
}

type fakeRecorder struct {
	requests []recordedRequest
	saved    map[bool]int
	added    int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{saved: make(map[bool]int)}
}

func (f *fakeRecorder) RecordHTTPRequest(route, method string, status int, _ time.Duration) {
	f.requests = append(f.requests, recordedRequest{route: route, method: method, status: status})
}

func (f *fakeRecorder) IncTimesheetSaved(created bool) { f.saved[created]++ }
func (f *fakeRecorder) IncEmployeeAdded()              { f.added++ }

type failingTimesheets struct {
	err error
}

func (f failingTimesheets) SaveTimesheet(context.Context, timesheet.SaveTimesheetInput) (*timesheet.SaveResult, error) {
	return nil, f.err
}

func (f failingTimesheets) ListWeekPeriods(context.Context) ([]string, error) {
	return nil, f.err
}

func (f failingTimesheets) GetTimesheetsForWeek(context.Context, string) ([]*timesheet.Timesheet, error) {
	return nil, f.err
}

type fixedProbe struct {
	status health.StorageStatus
}

func (p fixedProbe) StorageStatus() health.StorageStatus { return p.status }

var testNow = time.Date(2024, 1, 3, 15, 0, 0, 0, time.UTC)

func newTestServer(ts timesheet.UseCase, rec *fakeRecorder) *echo.Echo {
	store := memory.NewStore()
	employees := employee.NewService(memory.NewEmployeeRepository(store), nil)
	if ts == nil {
		ts = timesheet.NewService(memory.NewTimesheetRepository(store), nil)
	}

	h := handler.New(employees, ts, health.NewService(nil),
		handler.WithRecorder(rec),
		handler.WithClock(func() time.Time { return testNow }),
	)

	e := echo.New()
	e.HTTPErrorHandler = h.HTTPErrorHandler
	e.Use(handler.MetricsMiddleware(rec))
	h.Register(e.Group("/api"))
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder, dst any) {
	So(json.Unmarshal(w.Body.Bytes(), dst), ShouldBeNil)
}

func TestEmployeeEndpoints(t *testing.T) {
	Convey("Given an API backed by the in-memory store", t, func() {
		rec := newFakeRecorder()
		e := newTestServer(nil, rec)

		Convey("When adding an employee", func() {
			w := do(e, http.MethodPost, "/api/employees", `{"name":"  bob "}`)

			Convey("Then it is created with a normalised name", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				var body map[string]string
				decode(w, &body)
				So(body["name"], ShouldEqual, "BOB")
				So(body["id"], ShouldNotBeEmpty)
				So(rec.added, ShouldEqual, 1)
			})

			Convey("And adding the same name again conflicts", func() {
				w := do(e, http.MethodPost, "/api/employees", `{"name":"Bob"}`)
				So(w.Code, ShouldEqual, http.StatusConflict)
				var body map[string]string
				decode(w, &body)
				So(body["error"], ShouldContainSubstring, "already exists")
			})
		})

		Convey("When adding a blank name", func() {
			w := do(e, http.MethodPost, "/api/employees", `{"name":"   "}`)

			Convey("Then it is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the body is not JSON", func() {
			w := do(e, http.MethodPost, "/api/employees", `{"name":`)

			Convey("Then a 400 with an error body is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				var body map[string]string
				decode(w, &body)
				So(body["error"], ShouldEqual, "invalid request body")
			})
		})

		Convey("When several employees exist", func() {
			for _, name := range []string{"zoe", "Adam", "mike"} {
				So(do(e, http.MethodPost, "/api/employees", `{"name":"`+name+`"}`).Code, ShouldEqual, http.StatusCreated)
			}
			w := do(e, http.MethodGet, "/api/employees", "")

			Convey("Then they are listed alphabetically", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var names []string
				decode(w, &names)
				So(names, ShouldResemble, []string{"ADAM", "MIKE", "ZOE"})
			})
		})

		Convey("When nobody is registered", func() {
			w := do(e, http.MethodGet, "/api/employees", "")

			Convey("Then an empty array is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
			})
		})
	})
}

func TestTimesheetEndpoints(t *testing.T) {
	Convey("Given a registered employee", t, func() {
		rec := newFakeRecorder()
		e := newTestServer(nil, rec)
		So(do(e, http.MethodPost, "/api/employees", `{"name":"bob"}`).Code, ShouldEqual, http.StatusCreated)

		Convey("When saving a week twice", func() {
			first := do(e, http.MethodPost, "/api/timesheets", `{"employeeName":"bob","weekPeriod":"W1","totalMinutes":480}`)
			second := do(e, http.MethodPost, "/api/timesheets", `{"employeeName":"BOB","weekPeriod":"W1","totalMinutes":300,"dayDetails":{"note":"edited"}}`)

			Convey("Then the first creates and the second overwrites in place", func() {
				So(first.Code, ShouldEqual, http.StatusCreated)
				So(second.Code, ShouldEqual, http.StatusOK)

				var a, b map[string]any
				decode(first, &a)
				decode(second, &b)
				So(b["id"], ShouldEqual, a["id"])
				So(b["employee_name"], ShouldEqual, "BOB")
				So(b["total_minutes"], ShouldEqual, float64(300))
				So(b["date_saved"], ShouldNotBeEmpty)
				So(rec.saved[true], ShouldEqual, 1)
				So(rec.saved[false], ShouldEqual, 1)
			})

			Convey("And the week lists a single record", func() {
				w := do(e, http.MethodGet, "/api/timesheets/W1", "")
				So(w.Code, ShouldEqual, http.StatusOK)

				var rows []map[string]any
				decode(w, &rows)
				So(len(rows), ShouldEqual, 1)
				So(rows[0]["employee_name"], ShouldEqual, "BOB")
				So(rows[0]["total_minutes"], ShouldEqual, float64(300))
				So(rows[0]["day_details"], ShouldResemble, map[string]any{"note": "edited"})
				_, hasID := rows[0]["id"]
				So(hasID, ShouldBeFalse)
			})

			Convey("And the week period is listed once", func() {
				w := do(e, http.MethodGet, "/api/week-periods", "")
				var periods []string
				decode(w, &periods)
				So(periods, ShouldResemble, []string{"W1"})
			})
		})

		Convey("When saving from day entries", func() {
			body := `{"employeeName":"bob","weekPeriod":"W2","days":[
				{"start":{"hour":9,"minute":0,"meridiem":"AM"},"end":{"hour":5,"minute":0,"meridiem":"PM"},"breakHours":0.5},
				{"start":{"hour":11,"minute":0,"meridiem":"PM"},"end":{"hour":7,"minute":0,"meridiem":"AM"},"breakHours":0}
			]}`
			w := do(e, http.MethodPost, "/api/timesheets", body)

			Convey("Then the total is computed", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				var out map[string]any
				decode(w, &out)
				So(out["total_minutes"], ShouldEqual, float64(930))
				So(out["day_details"], ShouldHaveLength, 2)
			})
		})

		Convey("When the employee is unknown", func() {
			w := do(e, http.MethodPost, "/api/timesheets", `{"employeeName":"ghost","weekPeriod":"W1","totalMinutes":10}`)

			Convey("Then 404 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the payload is invalid", func() {
			cases := []string{
				`{"weekPeriod":"W1","totalMinutes":10}`,
				`{"employeeName":"bob","totalMinutes":10}`,
				`{"employeeName":"bob","weekPeriod":"W1","totalMinutes":-1}`,
				`{"employeeName":"bob","weekPeriod":"W1"}`,
				`{"employeeName":"bob","weekPeriod":"W1","days":[{},{},{},{},{},{},{},{}]}`,
				`{"employeeName":"bob","weekPeriod":"W1","days":[{"start":{"hour":13,"minute":0,"meridiem":"AM"},"breakHours":0}]}`,
				`{"employeeName":"bob","weekPeriod":"{startdate-enddate}","totalMinutes":10}`,
			}

			Convey("Then every case is a 400", func() {
				for _, body := range cases {
					So(do(e, http.MethodPost, "/api/timesheets", body).Code, ShouldEqual, http.StatusBadRequest)
				}
			})
		})

		Convey("When the week label contains slashes", func() {
			label := "{01/01/2024-07/01/2024}"
			So(do(e, http.MethodPost, "/api/timesheets", `{"employeeName":"bob","weekPeriod":"`+label+`","totalMinutes":60}`).Code, ShouldEqual, http.StatusCreated)
			w := do(e, http.MethodGet, "/api/timesheets/"+url.PathEscape(label), "")

			Convey("Then the escaped path segment finds it", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var rows []map[string]any
				decode(w, &rows)
				So(len(rows), ShouldEqual, 1)
				So(rows[0]["week_period"], ShouldEqual, label)
			})
		})

		Convey("When week labels contain percent signs", func() {
			for _, label := range []string{"W%41", "100%", "{1%/2}"} {
				So(do(e, http.MethodPost, "/api/timesheets", `{"employeeName":"bob","weekPeriod":"`+label+`","totalMinutes":60}`).Code, ShouldEqual, http.StatusCreated)
			}

			Convey("Then each label reads back exactly once decoded", func() {
				for _, label := range []string{"W%41", "100%", "{1%/2}"} {
					w := do(e, http.MethodGet, "/api/timesheets/"+url.PathEscape(label), "")
					So(w.Code, ShouldEqual, http.StatusOK)
					var rows []map[string]any
					decode(w, &rows)
					So(len(rows), ShouldEqual, 1)
					So(rows[0]["week_period"], ShouldEqual, label)
				}
			})

			Convey("Then the decoded neighbour label is not matched", func() {
				w := do(e, http.MethodGet, "/api/timesheets/WA", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
			})
		})

		Convey("When asking for the current week", func() {
			w := do(e, http.MethodGet, "/api/week-periods/current", "")

			Convey("Then the Monday to Sunday range is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var out map[string]string
				decode(w, &out)
				So(out["start"], ShouldEqual, "2024-01-01")
				So(out["end"], ShouldEqual, "2024-01-07")
				So(out["label"], ShouldEqual, "{01/01/2024-07/01/2024}")
			})
		})
	})
}

func TestReportEndpoints(t *testing.T) {
	Convey("Given two saved timesheets for a week", t, func() {
		e := newTestServer(nil, newFakeRecorder())
		for _, name := range []string{"zed", "amy"} {
			So(do(e, http.MethodPost, "/api/employees", `{"name":"`+name+`"}`).Code, ShouldEqual, http.StatusCreated)
		}
		So(do(e, http.MethodPost, "/api/timesheets", `{"employeeName":"zed","weekPeriod":"W1","totalMinutes":90}`).Code, ShouldEqual, http.StatusCreated)
		So(do(e, http.MethodPost, "/api/timesheets", `{"employeeName":"amy","weekPeriod":"W1","totalMinutes":120}`).Code, ShouldEqual, http.StatusCreated)

		Convey("When requesting the JSON report", func() {
			w := do(e, http.MethodGet, "/api/reports/W1", "")

			Convey("Then lines are ordered with a grand total", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var out struct {
					WeekPeriod        string `json:"week_period"`
					GrandTotalMinutes int    `json:"grand_total_minutes"`
					GrandTotalDisplay string `json:"grand_total_display"`
					Lines             []struct {
						EmployeeName string `json:"employee_name"`
						Display      string `json:"display"`
					} `json:"lines"`
				}
				decode(w, &out)
				So(out.WeekPeriod, ShouldEqual, "W1")
				So(len(out.Lines), ShouldEqual, 2)
				So(out.Lines[0].EmployeeName, ShouldEqual, "AMY")
				So(out.Lines[0].Display, ShouldEqual, "2 hrs")
				So(out.Lines[1].Display, ShouldEqual, "1 hr 30 minutes")
				So(out.GrandTotalMinutes, ShouldEqual, 210)
				So(out.GrandTotalDisplay, ShouldEqual, "3 hrs 30 minutes")
			})
		})

		Convey("When exporting to xlsx", func() {
			w := do(e, http.MethodGet, "/api/reports/W1/xlsx", "")

			Convey("Then a workbook attachment is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get(echo.HeaderContentType), ShouldEqual, xlsx.ContentType)
				So(w.Header().Get(echo.HeaderContentDisposition), ShouldContainSubstring, "timesheets_W1.xlsx")
				So(w.Body.Len(), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the week has no timesheets", func() {
			w := do(e, http.MethodGet, "/api/reports/W9", "")

			Convey("Then 404 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestComputeWeekEndpoint(t *testing.T) {
	Convey("Given the ledger endpoint", t, func() {
		e := newTestServer(nil, newFakeRecorder())

		Convey("When computing a partial week", func() {
			body := `{"days":[
				{"start":{"hour":9,"minute":0,"meridiem":"AM"},"end":{"hour":5,"minute":0,"meridiem":"PM"},"breakHours":0.5},
				{"start":{"hour":9,"minute":0,"meridiem":"AM"},"breakHours":0}
			]}`
			w := do(e, http.MethodPost, "/api/ledger/week", body)

			Convey("Then only complete days count", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var out struct {
					Days []struct {
						Minutes float64 `json:"minutes"`
						Display string  `json:"display"`
						Counted bool    `json:"counted"`
					} `json:"days"`
					TotalMinutes float64 `json:"total_minutes"`
					TotalDisplay string  `json:"total_display"`
				}
				decode(w, &out)
				So(len(out.Days), ShouldEqual, 2)
				So(out.Days[0].Minutes, ShouldEqual, 450)
				So(out.Days[0].Display, ShouldEqual, "7 hrs 30 minutes")
				So(out.Days[1].Counted, ShouldBeFalse)
				So(out.Days[1].Display, ShouldEqual, "0 hrs 0 minutes")
				So(out.TotalMinutes, ShouldEqual, 450)
				So(out.TotalDisplay, ShouldEqual, "7 hrs 30 minutes")
			})
		})

		Convey("When a reading is out of range", func() {
			w := do(e, http.MethodPost, "/api/ledger/week", `{"days":[{"end":{"hour":9,"minute":60,"meridiem":"PM"},"breakHours":0}]}`)

			Convey("Then 400 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given a health checker reporting a degraded store", t, func() {
		store := memory.NewStore()
		probe := fixedProbe{status: health.StorageStatus{Backend: "postgres", Persistent: true, Degraded: true, LastError: "connection refused"}}
		h := handler.New(
			employee.NewService(memory.NewEmployeeRepository(store), nil),
			timesheet.NewService(memory.NewTimesheetRepository(store), nil),
			health.NewService(probe),
		)
		e := echo.New()
		h.Register(e.Group("/api"))

		Convey("When calling the health endpoint", func() {
			w := do(e, http.MethodGet, "/api/health", "")

			Convey("Then status is OK with the storage details", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var out health.Report
				decode(w, &out)
				So(out.Status, ShouldEqual, health.StatusOK)
				So(out.Storage.Backend, ShouldEqual, "postgres")
				So(out.Storage.Degraded, ShouldBeTrue)
				So(out.Storage.LastError, ShouldEqual, "connection refused")
			})
		})
	})
}

func TestErrorMapping(t *testing.T) {
	Convey("Given a timesheet use case that fails", t, func() {
		Convey("When the store is unavailable", func() {
			rec := newFakeRecorder()
			e := newTestServer(failingTimesheets{err: timesheet.ErrStoreUnavailable}, rec)
			w := do(e, http.MethodGet, "/api/week-periods", "")

			Convey("Then 503 is returned and recorded", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(len(rec.requests), ShouldEqual, 1)
				So(rec.requests[0], ShouldResemble, recordedRequest{route: "/api/week-periods", method: http.MethodGet, status: http.StatusServiceUnavailable})
			})
		})

		Convey("When an unexpected error occurs", func() {
			e := newTestServer(failingTimesheets{err: errors.New("pq: secret detail")}, newFakeRecorder())
			w := do(e, http.MethodGet, "/api/timesheets/W1", "")

			Convey("Then a generic 500 hides the cause", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldNotContainSubstring, "secret")
				var body map[string]string
				decode(w, &body)
				So(body["error"], ShouldEqual, "internal server error")
			})
		})

		Convey("When the route does not exist", func() {
			rec := newFakeRecorder()
			e := newTestServer(nil, rec)
			w := do(e, http.MethodGet, "/api/nope", "")

			Convey("Then 404 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				var body map[string]string
				decode(w, &body)
				So(body["error"], ShouldNotBeEmpty)
			})
		})
	})
}
