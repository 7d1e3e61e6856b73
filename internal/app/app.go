// Package app は設定からストレージ、ユースケース、HTTP / gRPC サーバーを組み立てます。
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nikkisuraj26/cafe54-timecard/internal/adapters/http/handler"
	"github.com/nikkisuraj26/cafe54-timecard/internal/adapters/repository/fallback"
	"github.com/nikkisuraj26/cafe54-timecard/internal/adapters/repository/memory"
	pgrepo "github.com/nikkisuraj26/cafe54-timecard/internal/adapters/repository/postgres"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/employee"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/health"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/timesheet"
	"github.com/nikkisuraj26/cafe54-timecard/internal/platform/config"
	pg "github.com/nikkisuraj26/cafe54-timecard/internal/platform/db/postgres"
	"github.com/nikkisuraj26/cafe54-timecard/internal/platform/roster"
	"github.com/nikkisuraj26/cafe54-timecard/internal/platform/server"
	"github.com/nikkisuraj26/cafe54-timecard/pkg/logger"
	"github.com/nikkisuraj26/cafe54-timecard/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

const (
	backendPostgres = "postgres"
	backendMemory   = "memory"
)

// App は組み立て済みのアプリケーションです。
type App struct {
	cfg     *config.Config
	log     logger.Logger
	metrics *metrics.Manager
	now     func() time.Time

	pool       *pgxpool.Pool
	monitor    *fallback.Monitor
	health     *health.Service
	memoryOnly bool

	employees  *employee.Service
	timesheets *timesheet.Service
	echo       *echo.Echo
}

// Option は App の設定を変更します。
type Option func(*App)

// WithLogger はロガーを設定します。
func WithLogger(l logger.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.log = l
		}
	}
}

// WithMetrics はメトリクスの Manager を設定します。
func WithMetrics(m *metrics.Manager) Option {
	return func(a *App) {
		if m != nil {
			a.metrics = m
		}
	}
}

// WithClock は時刻の取得元を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		if now != nil {
			a.now = now
		}
	}
}

// New はストレージを開き、名簿を投入して HTTP ルーターまで組み立てます。
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{
		cfg: cfg,
		log: logger.Nop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.metrics == nil {
		a.metrics = metrics.NewManager()
	}

	employeeRepo, timesheetRepo, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	clock := clockFunc(a.now)
	a.employees = employee.NewService(employeeRepo, clock)
	// メモリのみで動作する場合は初回保存で従業員を登録します。
	a.timesheets = timesheet.NewService(timesheetRepo, clock,
		timesheet.WithAutoRegisterEmployees(cfg.Storage.AutoRegisterEmployees || a.memoryOnly))
	a.health = health.NewService(a.monitor)

	if err := a.seed(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.echo = a.newRouter()
	return a, nil
}

// Handler は HTTP ハンドラを返します。
func (a *App) Handler() http.Handler {
	return a.echo
}

// Health はヘルスチェックのユースケースを返します。
func (a *App) Health() health.Checker {
	return a.health
}

// Run は HTTP サーバーと、設定されていれば gRPC ヘルスサーバーを起動します。
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	httpServer := server.NewHTTP(a.cfg.Server.ListenAddr, a.echo, a.cfg.Server.ShutdownTimeout)
	g.Go(func() error {
		a.log.Info(ctx, "http server listening", logger.String("addr", a.cfg.Server.ListenAddr))
		return httpServer.Run(ctx)
	})

	if addr := a.cfg.Server.GRPCHealthAddr; addr != "" {
		healthServer := server.NewHealthServer(addr, a.health, a.cfg.Server.HealthPollInterval, a.log.Named("grpc-health"))
		g.Go(func() error {
			a.log.Info(ctx, "grpc health server listening", logger.String("addr", addr))
			return healthServer.Run(ctx)
		})
	}

	return g.Wait()
}

// Close はデータベース接続を閉じます。
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}

func (a *App) openStorage(ctx context.Context) (employee.Repository, timesheet.Repository, error) {
	mirror := memory.NewStore()
	log := a.log.Named("storage")

	if a.cfg.Storage.Driver == config.DriverMemory {
		a.monitor = fallback.NewMonitor(backendMemory, false, fallback.WithLogger(log), fallback.WithRecorder(a.metrics))
		a.memoryOnly = true
		log.Warn(ctx, "storage driver is memory; data will NOT persist")
		return memory.NewEmployeeRepository(mirror), memory.NewTimesheetRepository(mirror), nil
	}

	pool, err := pg.NewPool(ctx, a.cfg.Database)
	if err != nil {
		a.monitor = fallback.NewMonitor(backendMemory, false, fallback.WithLogger(log), fallback.WithRecorder(a.metrics))
		a.memoryOnly = true
		log.Warn(ctx, "durable store unreachable at startup; serving from memory, data will NOT persist", logger.Error(err))
		return memory.NewEmployeeRepository(mirror), memory.NewTimesheetRepository(mirror), nil
	}

	if a.cfg.Storage.AutoMigrate {
		res, err := pg.NewMigrator(a.cfg.Database.DSN()).Run(pg.MigrateUp)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		log.Info(ctx, "database migrated", logger.Any("version", res.Version), logger.Bool("applied", res.Applied))
	}

	a.pool = pool
	a.monitor = fallback.NewMonitor(backendPostgres, true, fallback.WithLogger(log), fallback.WithRecorder(a.metrics))

	employees := fallback.NewEmployeeRepository(pgrepo.NewEmployeeRepository(pool), mirror, a.monitor)
	timesheets := fallback.NewTimesheetRepository(pgrepo.NewTimesheetRepository(pool, pg.NewTransactionManager(pool)), mirror, a.monitor)

	if err := warmMirror(ctx, employees, timesheets); err != nil {
		log.Warn(ctx, "could not copy stored data into memory", logger.Error(err))
	}
	return employees, timesheets, nil
}

// warmMirror は保存済みデータを一通り読み、フォールバック用の複製を満たします。
func warmMirror(ctx context.Context, employees employee.Repository, timesheets timesheet.Repository) error {
	if _, err := employees.List(ctx); err != nil {
		return err
	}
	periods, err := timesheets.ListWeekPeriods(ctx)
	if err != nil {
		return err
	}
	for _, week := range periods {
		if _, err := timesheets.ListByWeek(ctx, week); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) seed(ctx context.Context) error {
	names, err := roster.Load(a.cfg.Storage.RosterFile)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	names = append(names, a.cfg.Storage.SeedEmployees...)
	if len(names) == 0 {
		return nil
	}

	added, err := a.employees.SeedEmployees(ctx, names)
	if err != nil {
		return err
	}
	a.log.Info(ctx, "roster seeded", logger.Int("requested", len(names)), logger.Int("added", added))
	return nil
}

func (a *App) newRouter() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	h := handler.New(a.employees, a.timesheets, a.health,
		handler.WithLogger(a.log.Named("http")),
		handler.WithRecorder(a.metrics),
		handler.WithClock(a.now),
	)
	e.HTTPErrorHandler = h.HTTPErrorHandler

	e.Use(middleware.Recover())
	e.Use(handler.RequestLogger(a.log.Named("access")))
	e.Use(handler.MetricsMiddleware(a.metrics))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: a.cfg.Server.CORSAllowOrigins,
	}))

	h.Register(e.Group("/api"))
	e.GET("/metrics", echo.WrapHandler(a.metrics.Handler()))
	return e
}

type clockFunc func() time.Time

func (f clockFunc) Now() time.Time { return f().UTC() }
