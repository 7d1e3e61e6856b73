package employee

import "context"

// Repository は従業員永続化の抽象です。
type Repository interface {
	// List は名前の大文字小文字を無視した昇順で返します。
	List(ctx context.Context) ([]*Employee, error)
	// Create は重複時に ErrEmployeeAlreadyExists を返します。
	Create(ctx context.Context, employee *Employee) (*Employee, error)
}
