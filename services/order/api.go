package order

import (
	"errors"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrCodNotAvailable   = errors.New("cash on delivery not available for this store")
)
