package employee

import "errors"

var (
	// ErrInvalidName は名前が空の場合に返却されます。
	ErrInvalidName = errors.New("employee: name is required")
	// ErrEmployeeAlreadyExists は正規化後の名前が重複した場合に返却されます。
	ErrEmployeeAlreadyExists = errors.New("employee: already exists")
	// ErrStoreUnavailable は永続ストアに接続できない場合に返却されます。
	ErrStoreUnavailable = errors.New("employee: store unavailable")
)
