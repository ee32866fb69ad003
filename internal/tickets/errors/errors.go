package errors

import "errors"

var (
	ErrNotFound = errors.New("ticket not found")

	ErrSoldOut = errors.New("ticket sold out")
)
