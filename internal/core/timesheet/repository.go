package timesheet

import "context"

// Repository はタイムシート永続化の抽象です。
type Repository interface {
	// Upsert は (従業員名, 週ラベル) で挿入または更新し、新規作成だったかを返します。
	// 更新時は既存の ID を保ちます。
	Upsert(ctx context.Context, sheet *Timesheet, opts UpsertOptions) (*Timesheet, bool, error)
	// ListWeekPeriods は重複を除いた週ラベルを降順で返します。
	ListWeekPeriods(ctx context.Context) ([]string, error)
	// ListByWeek は指定週のタイムシートを従業員名の昇順で返します。
	ListByWeek(ctx context.Context, weekPeriod string) ([]*Timesheet, error)
}

// UpsertOptions は Upsert の振る舞いを調整します。
type UpsertOptions struct {
	// RegisterEmployee が true なら未登録の従業員を NewEmployeeID で登録してから保存します。
	RegisterEmployee bool
	NewEmployeeID    string
}
