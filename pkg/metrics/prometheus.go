package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager はサービスのメトリクスをまとめて保持します。
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	storagePersistent prometheus.Gauge
	storageDegraded   prometheus.Gauge
	storageFallbacks  *prometheus.CounterVec

	timesheetsSaved *prometheus.CounterVec
	employeesAdded  prometheus.Counter
}

// NewManager は専用レジストリに登録された Manager を返します。
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "timecard",
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by route, method and status code",
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method", "status_code"})

	m.storagePersistent = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "storage_persistent",
		Help:      "1 when a durable store is configured, 0 when data lives only in memory",
	})

	m.storageDegraded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "storage_degraded",
		Help:      "1 while the durable store is unreachable and requests are served from memory",
	})

	m.storageFallbacks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "storage_fallback_total",
		Help:      "Operations served from memory because the durable store was unavailable",
	}, []string{"operation"})

	m.timesheetsSaved = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "timesheets_saved_total",
		Help:      "Timesheets saved, by whether the row was created or updated",
	}, []string{"result"})

	m.employeesAdded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "employees_added_total",
		Help:      "Employees registered",
	})
}

// RecordHTTPRequest は 1 リクエスト分の件数と処理時間を記録します。
func (m *Manager) RecordHTTPRequest(route, method string, status int, d time.Duration) {
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(route, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(route, method, code).Observe(d.Seconds())
}

// SetStoragePersistent は永続ストアの有無を記録します。
func (m *Manager) SetStoragePersistent(persistent bool) {
	m.storagePersistent.Set(boolToFloat(persistent))
}

// SetStorageDegraded は永続ストアへの到達可否を記録します。
func (m *Manager) SetStorageDegraded(degraded bool) {
	m.storageDegraded.Set(boolToFloat(degraded))
}

// IncStorageFallback はメモリで代替した操作を数えます。
func (m *Manager) IncStorageFallback(operation string) {
	m.storageFallbacks.WithLabelValues(operation).Inc()
}

// IncTimesheetSaved は created または updated を数えます。
func (m *Manager) IncTimesheetSaved(created bool) {
	result := "updated"
	if created {
		result = "created"
	}
	m.timesheetsSaved.WithLabelValues(result).Inc()
}

// IncEmployeeAdded は従業員登録を数えます。
func (m *Manager) IncEmployeeAdded() {
	m.employeesAdded.Inc()
}

// Registry は登録先のレジストリを返します。
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler は /metrics 用のハンドラを返します。
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func boolToFloat(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
