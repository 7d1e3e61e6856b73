package health

import (
	"context"
	"time"
)

// StatusOK は API が応答可能であることを示す固定値です。
const StatusOK = "OK"

// StorageStatus はストレージの現在状態です。
type StorageStatus struct {
	Backend    string    `json:"backend"`
	Persistent bool      `json:"persistent"`
	Degraded   bool      `json:"degraded"`
	LastError  string    `json:"last_error,omitempty"`
	ChangedAt  time.Time `json:"changed_at"`
}

// StorageProbe はストレージ状態を返す抽象です。
type StorageProbe interface {
	StorageStatus() StorageStatus
}

// Report はヘルスチェックの応答です。
type Report struct {
	Status  string        `json:"status"`
	Storage StorageStatus `json:"storage"`
}

// Serving はデータが永続化される状態かを返します。
func (r Report) Serving() bool {
	return r.Storage.Persistent && !r.Storage.Degraded
}

// Checker はヘルスチェックのユースケースを定義します。
type Checker interface {
	// Check はプロセスが応答できる限り常に Status=OK を返します。
	Check(ctx context.Context) (Report, error)
}

// Service は Checker のデフォルト実装です。
type Service struct {
	probe StorageProbe
}

// NewService は Checker の新しいインスタンスを返します。probe が nil ならメモリ扱いです。
func NewService(probe StorageProbe) *Service {
	return &Service{probe: probe}
}

// Check はストレージ状態を添えて OK を返します。
func (s *Service) Check(ctx context.Context) (Report, error) {
	report := Report{Status: StatusOK}
	if s.probe == nil {
		report.Storage = StorageStatus{Backend: "memory"}
		return report, nil
	}
	report.Storage = s.probe.StorageStatus()
	return report, nil
}
