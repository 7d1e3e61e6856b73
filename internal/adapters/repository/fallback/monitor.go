// Package fallback は永続ストアが応答しない間、メモリ上の複製で処理を継続するリポジトリを提供します。
package fallback

import (
	"context"
	"sync"
	"time"

	"github.com/nikkisuraj26/cafe54-timecard/internal/core/health"
	"github.com/nikkisuraj26/cafe54-timecard/pkg/logger"
)

// Recorder はストレージ状態のメトリクス出力先です。
type Recorder interface {
	SetStoragePersistent(persistent bool)
	SetStorageDegraded(degraded bool)
	IncStorageFallback(operation string)
}

type nopRecorder struct{}

func (nopRecorder) SetStoragePersistent(bool) {}
func (nopRecorder) SetStorageDegraded(bool)   {}
func (nopRecorder) IncStorageFallback(string) {}

// MonitorOption は Monitor の設定を変更します。
type MonitorOption func(*Monitor)

// WithLogger はログ出力先を設定します。
func WithLogger(l logger.Logger) MonitorOption {
	return func(m *Monitor) {
		if l != nil {
			m.log = l
		}
	}
}

// WithRecorder はメトリクス出力先を設定します。
func WithRecorder(r Recorder) MonitorOption {
	return func(m *Monitor) {
		if r != nil {
			m.metrics = r
		}
	}
}

// WithClock は時刻の取得元を差し替えます。
func WithClock(now func() time.Time) MonitorOption {
	return func(m *Monitor) {
		if now != nil {
			m.now = now
		}
	}
}

// Monitor はストレージのバックエンド種別と劣化状態を保持します。health.StorageProbe を満たします。
type Monitor struct {
	backend    string
	persistent bool
	log        logger.Logger
	metrics    Recorder
	now        func() time.Time

	mu        sync.RWMutex
	degraded  bool
	lastError string
	changedAt time.Time
}

// NewMonitor は Monitor を生成し、永続性をメトリクスへ反映します。
func NewMonitor(backend string, persistent bool, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		backend:    backend,
		persistent: persistent,
		log:        logger.Nop(),
		metrics:    nopRecorder{},
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	m.changedAt = m.now()
	m.metrics.SetStoragePersistent(persistent)
	m.metrics.SetStorageDegraded(false)
	return m
}

// StorageStatus は現在の状態を返します。
func (m *Monitor) StorageStatus() health.StorageStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return health.StorageStatus{
		Backend:    m.backend,
		Persistent: m.persistent,
		Degraded:   m.degraded,
		LastError:  m.lastError,
		ChangedAt:  m.changedAt,
	}
}

// Degraded は永続ストアに到達できない状態かを返します。
func (m *Monitor) Degraded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.degraded
}

// MarkDegraded は operation がメモリで代替されたことを記録します。警告は状態が変わった時だけ出します。
func (m *Monitor) MarkDegraded(ctx context.Context, operation string, cause error) {
	m.metrics.IncStorageFallback(operation)

	m.mu.Lock()
	transitioned := !m.degraded
	m.degraded = true
	if cause != nil {
		m.lastError = cause.Error()
	}
	if transitioned {
		m.changedAt = m.now()
	}
	m.mu.Unlock()

	if transitioned {
		m.metrics.SetStorageDegraded(true)
		m.log.Warn(ctx, "durable store unavailable; serving from memory, data will NOT persist",
			logger.String("backend", m.backend),
			logger.String("operation", operation),
			logger.Error(cause),
		)
	}
}

// MarkHealthy は永続ストアへの操作が成功したことを記録します。
func (m *Monitor) MarkHealthy(ctx context.Context) {
	m.mu.Lock()
	transitioned := m.degraded
	m.degraded = false
	if transitioned {
		m.lastError = ""
		m.changedAt = m.now()
	}
	m.mu.Unlock()

	if transitioned {
		m.metrics.SetStorageDegraded(false)
		m.log.Info(ctx, "durable store reachable again", logger.String("backend", m.backend))
	}
}
