// Package metrics は Prometheus のメトリクスを提供します。
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Option は Manager の設定を変更します。
type Option func(*Manager)

// WithNamespace は全メトリクスの名前空間を設定します。
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem は全メトリクスのサブシステムを設定します。
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		m.subsystem = subsystem
	}
}

// WithHistogramBuckets はレイテンシ用ヒストグラムのバケットを設定します。
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithRegistry は登録先のレジストリを設定します。
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
