package catalog

import (
	"context"
	"errors"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrStoreNotFound   = errors.New("store not found")
	ErrOutOfStock      = errors.New("insufficient stock available")
)

// Accessor is the read/decrement surface offered to the other services.
// The catalog remains the only authority for price, stock and fee data.
type Accessor interface {
	GetProduct(c context.Context, productUID string) (Product, bool, error)
	GetStore(c context.Context, storeUID string) (Store, bool, error)
	GetStoreFeeConfig(c context.Context, storeUID string) (FeeConfig, error)
	DecrementStock(c context.Context, productUID string, quantity int) error
}
