package employee

import "time"

// Employee は勤怠を記録する従業員です。名前が一意キーを兼ねます。
type Employee struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
