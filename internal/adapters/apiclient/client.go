// Package apiclient は勤怠 HTTP API のクライアントです。
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nikkisuraj26/cafe54-timecard/internal/core/health"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/ledger"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/report"
)

const defaultTimeout = 10 * time.Second

// ErrNotFound は API が 404 を返した場合に errors.Is で一致します。
var ErrNotFound = errors.New("apiclient: not found")

// APIError は API が返したエラー応答です。
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Is は 404 を ErrNotFound として扱います。
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Employee は追加した従業員です。
type Employee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Timesheet は保存結果です。
type Timesheet struct {
	ID           string          `json:"id"`
	EmployeeName string          `json:"employee_name"`
	WeekPeriod   string          `json:"week_period"`
	TotalMinutes int             `json:"total_minutes"`
	DayDetails   json.RawMessage `json:"day_details"`
	DateSaved    time.Time       `json:"date_saved"`
}

// SaveTimesheetRequest は保存リクエストです。
type SaveTimesheetRequest struct {
	EmployeeName string            `json:"employeeName"`
	WeekPeriod   string            `json:"weekPeriod"`
	TotalMinutes *int              `json:"totalMinutes,omitempty"`
	Days         []ledger.DayEntry `json:"days,omitempty"`
}

// CurrentWeek は今週の範囲とラベルです。
type CurrentWeek struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

// Client は API のベース URL に対してリクエストを送ります。
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option は Client の設定を変更します。
type Option func(*Client)

// WithHTTPClient は内部で使う http.Client を差し替えます。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New は baseURL (例: http://localhost:5000) 向けの Client を返します。
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListEmployees は従業員名の一覧を返します。
func (c *Client) ListEmployees(ctx context.Context) ([]string, error) {
	var out []string
	err := c.doJSON(ctx, http.MethodGet, "/api/employees", nil, &out)
	return out, err
}

// AddEmployee は従業員を追加します。
func (c *Client) AddEmployee(ctx context.Context, name string) (*Employee, error) {
	var out Employee
	if err := c.doJSON(ctx, http.MethodPost, "/api/employees", map[string]string{"name": name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveTimesheet はタイムシートを保存します。
func (c *Client) SaveTimesheet(ctx context.Context, req SaveTimesheetRequest) (*Timesheet, error) {
	var out Timesheet
	if err := c.doJSON(ctx, http.MethodPost, "/api/timesheets", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListWeekPeriods は保存済みの週ラベルを返します。
func (c *Client) ListWeekPeriods(ctx context.Context) ([]string, error) {
	var out []string
	err := c.doJSON(ctx, http.MethodGet, "/api/week-periods", nil, &out)
	return out, err
}

// CurrentWeek は今週のラベルを返します。
func (c *Client) CurrentWeek(ctx context.Context) (*CurrentWeek, error) {
	var out CurrentWeek
	if err := c.doJSON(ctx, http.MethodGet, "/api/week-periods/current", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Report は週次レポートを返します。
func (c *Client) Report(ctx context.Context, weekPeriod string) (*report.Report, error) {
	var out report.Report
	if err := c.doJSON(ctx, http.MethodGet, "/api/reports/"+url.PathEscape(weekPeriod), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReportXLSX は週次レポートの XLSX をそのまま返します。
func (c *Client) ReportXLSX(ctx context.Context, weekPeriod string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/reports/"+url.PathEscape(weekPeriod)+"/xlsx", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// Health はサーバーのヘルス情報を返します。
func (c *Client) Health(ctx context.Context) (*health.Report, error) {
	var out health.Report
	if err := c.doJSON(ctx, http.MethodGet, "/api/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	resp, err := c.do(ctx, method, path, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("apiclient: decode %s %s: %w", method, path, err)
	}
	return nil
}

// do はリクエストを送り、2xx 以外を *APIError に変換します。
func (c *Client) do(ctx context.Context, method, path string, in any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("apiclient: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apiclient: %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
	}
	return nil, apiErr
}
