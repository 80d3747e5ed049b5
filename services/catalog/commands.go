package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/MarcGrol/marketbackend/lib/myerrors"
	"github.com/MarcGrol/marketbackend/lib/mylog"
	"github.com/shopspring/decimal"
)

func (s *service) GetProduct(c context.Context, productUID string) (Product, bool, error) {
	product, found, err := s.productStore.Get(c, productUID)
	if err != nil {
		return Product{}, false, myerrors.NewInternalError(err)
	}

	return product, found, nil
}

func (s *service) GetStore(c context.Context, storeUID string) (Store, bool, error) {
	store, found, err := s.storeStore.Get(c, storeUID)
	if err != nil {
		return Store{}, false, myerrors.NewInternalError(err)
	}

	return store, found, nil
}

func (s *service) GetStoreFeeConfig(c context.Context, storeUID string) (FeeConfig, error) {
	store, found, err := s.storeStore.Get(c, storeUID)
	if err != nil {
		return FeeConfig{}, myerrors.NewInternalError(err)
	}
	if !found {
		return FeeConfig{}, myerrors.NewNotFoundError(fmt.Errorf("store %s: %w", storeUID, ErrStoreNotFound))
	}

	return store.Fees, nil
}

// DecrementStock performs the check-and-decrement as one indivisible unit:
// concurrent orders against the same product can never drive stock negative.
func (s *service) DecrementStock(c context.Context, productUID string, quantity int) error {
	if quantity <= 0 {
		return myerrors.NewInvalidInputErrorf("quantity %d must be positive", quantity)
	}

	return s.productStore.RunInTransaction(c, func(c context.Context) error {
		product, found, err := s.productStore.Get(c, productUID)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("product %s: %w", productUID, ErrProductNotFound))
		}

		if product.Stock < quantity {
			return myerrors.NewConflictError(fmt.Errorf("product %s has %d in stock, need %d: %w",
				productUID, product.Stock, quantity, ErrOutOfStock))
		}

		product.Stock -= quantity

		err = s.productStore.Put(c, productUID, product)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		s.logger.Log(c, productUID, mylog.SeverityInfo, "Decremented stock of product %s by %d to %d", productUID, quantity, product.Stock)

		return nil
	})
}

func (s *service) upsertProduct(c context.Context, product Product) (Product, error) {
	if product.Name == "" {
		return Product{}, myerrors.NewInvalidInputErrorf("missing product name")
	}
	if product.Price.IsNegative() {
		return Product{}, myerrors.NewInvalidInputErrorf("product price %s must not be negative", product.Price)
	}
	if product.Stock < 0 {
		return Product{}, myerrors.NewInvalidInputErrorf("product stock %d must not be negative", product.Stock)
	}

	_, found, err := s.storeStore.Get(c, product.StoreUID)
	if err != nil {
		return Product{}, myerrors.NewInternalError(err)
	}
	if !found {
		return Product{}, myerrors.NewNotFoundError(fmt.Errorf("store %s: %w", product.StoreUID, ErrStoreNotFound))
	}

	if product.UID == "" {
		product.UID = s.uuider.Create()
		product.CreatedAt = s.nower.Now()
	}

	s.logger.Log(c, product.UID, mylog.SeverityInfo, "Storing product %s (%s)", product.UID, product.Name)

	err = s.productStore.Put(c, product.UID, product)
	if err != nil {
		return Product{}, myerrors.NewInternalError(err)
	}

	return product, nil
}

func (s *service) listProducts(c context.Context, storeUID string) ([]Product, error) {
	products, err := s.productStore.List(c)
	if err != nil {
		return nil, myerrors.NewInternalError(err)
	}

	result := make([]Product, 0, len(products))
	for _, p := range products {
		if storeUID != "" && p.StoreUID != storeUID {
			continue
		}
		result = append(result, p)
	}

	// TODO sort in database
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (s *service) upsertStore(c context.Context, store Store) (Store, error) {
	if store.Name == "" {
		return Store{}, myerrors.NewInvalidInputErrorf("missing store name")
	}
	if store.OwnerUID == "" {
		return Store{}, myerrors.NewInvalidInputErrorf("missing store owner")
	}
	if store.Fees.StoreCharges.IsNegative() || store.Fees.CODCharges.IsNegative() {
		return Store{}, myerrors.NewInvalidInputErrorf("store fees must not be negative")
	}
	if store.Fees.GSTPercentage.IsNegative() || store.Fees.GSTPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return Store{}, myerrors.NewInvalidInputErrorf("gst percentage %s out of range", store.Fees.GSTPercentage)
	}

	if store.UID == "" {
		store.UID = s.uuider.Create()
		store.CreatedAt = s.nower.Now()
	}

	s.logger.Log(c, store.UID, mylog.SeverityInfo, "Storing store %s (%s)", store.UID, store.Name)

	err := s.storeStore.Put(c, store.UID, store)
	if err != nil {
		return Store{}, myerrors.NewInternalError(err)
	}

	return store, nil
}

func (s *service) getProductOrError(c context.Context, productUID string) (Product, error) {
	product, found, err := s.GetProduct(c, productUID)
	if err != nil {
		return Product{}, err
	}
	if !found {
		return Product{}, myerrors.NewNotFoundError(fmt.Errorf("product %s: %w", productUID, ErrProductNotFound))
	}

	return product, nil
}

func (s *service) getStoreOrError(c context.Context, storeUID string) (Store, error) {
	store, found, err := s.GetStore(c, storeUID)
	if err != nil {
		return Store{}, err
	}
	if !found {
		return Store{}, myerrors.NewNotFoundError(fmt.Errorf("store %s: %w", storeUID, ErrStoreNotFound))
	}

	return store, nil
}
