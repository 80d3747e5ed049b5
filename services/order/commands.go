package order

import (
	"context"
	"fmt"

	"github.com/MarcGrol/marketbackend/lib/myerrors"
	"github.com/MarcGrol/marketbackend/lib/mylog"
	"github.com/MarcGrol/marketbackend/lib/mystore"
	"github.com/MarcGrol/marketbackend/services/catalog"
	"github.com/MarcGrol/marketbackend/services/order/orderapi"
	"github.com/MarcGrol/marketbackend/services/orderevents"
	"github.com/MarcGrol/marketbackend/services/pricing"
)

// previewPrice computes the breakdown an order for this product would be
// persisted with, without creating anything. It runs the exact same
// validation and calculation path as createOrder.
func (s *service) previewPrice(c context.Context, productUID string, quantity int, paymentMethod string) (pricing.Breakdown, error) {
	_, _, breakdown, err := s.resolvePricing(c, productUID, quantity, paymentMethod)
	return breakdown, err
}

func (s *service) resolvePricing(c context.Context, productUID string, quantity int, paymentMethod string) (catalog.Product, pricing.PaymentMethod, pricing.Breakdown, error) {
	method, err := pricing.ParsePaymentMethod(paymentMethod)
	if err != nil {
		return catalog.Product{}, "", pricing.Breakdown{}, err
	}

	product, found, err := s.catalog.GetProduct(c, productUID)
	if err != nil {
		return catalog.Product{}, "", pricing.Breakdown{}, myerrors.NewInternalError(fmt.Errorf("error fetching product %s: %s", productUID, err))
	}
	if !found || !product.Published {
		return catalog.Product{}, "", pricing.Breakdown{}, myerrors.NewNotFoundError(fmt.Errorf("product %s: %w", productUID, catalog.ErrProductNotFound))
	}

	fees, err := s.catalog.GetStoreFeeConfig(c, product.StoreUID)
	if err != nil {
		return catalog.Product{}, "", pricing.Breakdown{}, err
	}

	if method == pricing.PaymentMethodCOD && !fees.CODAvailable {
		return catalog.Product{}, "", pricing.Breakdown{}, myerrors.NewInvalidInputError(fmt.Errorf("store %s: %w", product.StoreUID, ErrCodNotAvailable))
	}

	breakdown, err := pricing.Calculate(product.Price, quantity, fees, method)
	if err != nil {
		return catalog.Product{}, "", pricing.Breakdown{}, err
	}

	return product, method, breakdown, nil
}

func (s *service) createOrder(c context.Context, buyerUID string, request orderapi.OrderRequest) (Order, error) {
	if buyerUID == "" {
		return Order{}, myerrors.NewAuthenticationError(fmt.Errorf("not authenticated"))
	}

	product, method, breakdown, err := s.resolvePricing(c, request.ProductUID, request.Quantity, request.PaymentMethod)
	if err != nil {
		return Order{}, err
	}

	now := s.nower.Now()
	order := Order{
		UID:              s.uuider.Create(),
		BuyerUID:         buyerUID,
		StoreUID:         product.StoreUID,
		ProductUID:       product.UID,
		Quantity:         request.Quantity,
		UnitPriceAtOrder: product.Price,
		ShippingAddress:  shippingAddressFromRequest(request.ShippingAddress),
		PaymentMethod:    method,
		PaymentReference: request.PaymentReference,
		Breakdown:        breakdown,
		Status:           StatusPlaced,
		StatusHistory: []StatusEvent{
			{
				Status:      StatusPlaced,
				Timestamp:   now,
				Description: "Order has been placed successfully",
			},
		},
		CreatedAt: now,
	}

	err = s.orderStore.RunInTransaction(c, func(c context.Context) error {
		// Stock decrement, order persist and event publish succeed or
		// fail as one unit
		err := s.catalog.DecrementStock(c, product.UID, request.Quantity)
		if err != nil {
			return err
		}

		err = s.orderStore.Put(c, order.UID, order)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing order: %s", err))
		}

		err = s.publisher.Publish(c, orderevents.TopicName, orderevents.OrderPlaced{
			OrderUID: order.UID,
			BuyerUID: order.BuyerUID,
			StoreUID: order.StoreUID,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return Order{}, err
	}

	s.logger.Log(c, order.UID, mylog.SeverityInfo, "Order %s placed by %s at store %s (total %s)",
		order.UID, order.BuyerUID, order.StoreUID, order.Breakdown.FinalTotal)

	return order, nil
}

func (s *service) transitionStatus(c context.Context, callerUID string, orderUID string, targetRaw string, update orderapi.StatusUpdate) (Order, error) {
	if callerUID == "" {
		return Order{}, myerrors.NewAuthenticationError(fmt.Errorf("not authenticated"))
	}

	target, valid := ParseOrderStatus(targetRaw)
	if !valid {
		return Order{}, myerrors.NewInvalidInputErrorf("unknown order status %q", targetRaw)
	}

	var order Order
	err := s.orderStore.RunInTransaction(c, func(c context.Context) error {
		var found bool
		var err error
		order, found, err = s.orderStore.Get(c, orderUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching order %s: %s", orderUID, err))
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("order %s: %w", orderUID, ErrOrderNotFound))
		}

		store, foundStore, err := s.catalog.GetStore(c, order.StoreUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching store %s: %s", order.StoreUID, err))
		}
		if !foundStore || store.OwnerUID != callerUID {
			return myerrors.NewAuthenticationError(fmt.Errorf("caller %s does not own store of order %s", callerUID, orderUID))
		}

		oldStatus := order.Status
		if !isTransitionAllowed(oldStatus, target) {
			return myerrors.NewInvalidInputError(fmt.Errorf("%s -> %s: %w", oldStatus, target, ErrInvalidTransition))
		}

		now := s.nower.Now()
		applyTransitionDetails(&order, target, update)

		description := update.Description
		if description == "" {
			description = fmt.Sprintf("Order status updated to %s", target)
		}

		order.Status = target
		order.LastModified = &now
		order.StatusHistory = append(order.StatusHistory, StatusEvent{
			Status:      target,
			Timestamp:   now,
			Location:    update.Location,
			Description: description,
		})

		err = s.orderStore.Put(c, order.UID, order)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing order: %s", err))
		}

		err = s.publisher.Publish(c, orderevents.TopicName, orderevents.OrderStatusChanged{
			OrderUID:  order.UID,
			StoreUID:  order.StoreUID,
			OldStatus: string(oldStatus),
			NewStatus: string(target),
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return Order{}, err
	}

	s.logger.Log(c, orderUID, mylog.SeverityInfo, "Order %s moved to status %s", orderUID, target)

	return order, nil
}

// applyTransitionDetails copies over only the fields that belong to the
// target status. Anything else in the update is ignored.
func applyTransitionDetails(order *Order, target OrderStatus, update orderapi.StatusUpdate) {
	switch target {
	case StatusShipped:
		order.TrackingID = update.TrackingID
		order.CourierName = update.CourierName
		order.EstimatedDeliveryTime = update.EstimatedDeliveryTime
	case StatusCancelled:
		order.CancellationReason = update.CancellationReason
	}
}

func (s *service) getOrdersForBuyer(c context.Context, buyerUID string) ([]orderSummary, error) {
	if buyerUID == "" {
		// An anonymous visitor has no orders
		return []orderSummary{}, nil
	}

	orders, err := s.orderStore.Query(c, []mystore.Filter{
		{Field: "BuyerUID", Compare: "=", Value: buyerUID},
	}, "CreatedAt")
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error fetching orders of buyer %s: %s", buyerUID, err))
	}

	return s.enrich(c, orders)
}

func (s *service) getOrdersForStore(c context.Context, callerUID string, storeUID string) ([]orderSummary, error) {
	if callerUID == "" {
		return []orderSummary{}, nil
	}

	store, found, err := s.catalog.GetStore(c, storeUID)
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error fetching store %s: %s", storeUID, err))
	}
	if !found {
		return nil, myerrors.NewNotFoundError(fmt.Errorf("store %s: %w", storeUID, catalog.ErrStoreNotFound))
	}
	if store.OwnerUID != callerUID {
		return nil, myerrors.NewAuthenticationError(fmt.Errorf("caller %s does not own store %s", callerUID, storeUID))
	}

	orders, err := s.orderStore.Query(c, []mystore.Filter{
		{Field: "StoreUID", Compare: "=", Value: storeUID},
	}, "CreatedAt")
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error fetching orders of store %s: %s", storeUID, err))
	}

	return s.enrich(c, orders)
}

func (s *service) getOrderDetails(c context.Context, callerUID string, orderUID string) (orderSummary, error) {
	if callerUID == "" {
		return orderSummary{}, myerrors.NewAuthenticationError(fmt.Errorf("not authenticated"))
	}

	order, found, err := s.orderStore.Get(c, orderUID)
	if err != nil {
		return orderSummary{}, myerrors.NewInternalError(fmt.Errorf("error fetching order %s: %s", orderUID, err))
	}
	if !found {
		return orderSummary{}, myerrors.NewNotFoundError(fmt.Errorf("order %s: %w", orderUID, ErrOrderNotFound))
	}

	if callerUID != order.BuyerUID {
		store, foundStore, err := s.catalog.GetStore(c, order.StoreUID)
		if err != nil {
			return orderSummary{}, myerrors.NewInternalError(fmt.Errorf("error fetching store %s: %s", order.StoreUID, err))
		}
		if !foundStore || store.OwnerUID != callerUID {
			return orderSummary{}, myerrors.NewAuthenticationError(fmt.Errorf("caller %s may not view order %s", callerUID, orderUID))
		}
	}

	summaries, err := s.enrich(c, []Order{order})
	if err != nil {
		return orderSummary{}, err
	}

	return summaries[0], nil
}

// enrich decorates orders with display names. Lookups are best effort:
// a vanished product or store leaves the name empty rather than failing
// the whole listing.
func (s *service) enrich(c context.Context, orders []Order) ([]orderSummary, error) {
	productNames := map[string]string{}
	storeNames := map[string]string{}

	summaries := make([]orderSummary, 0, len(orders))
	for _, order := range orders {
		productName, cached := productNames[order.ProductUID]
		if !cached {
			product, found, err := s.catalog.GetProduct(c, order.ProductUID)
			if err == nil && found {
				productName = product.Name
			}
			productNames[order.ProductUID] = productName
		}

		storeName, cached := storeNames[order.StoreUID]
		if !cached {
			store, found, err := s.catalog.GetStore(c, order.StoreUID)
			if err == nil && found {
				storeName = store.Name
			}
			storeNames[order.StoreUID] = storeName
		}

		summaries = append(summaries, orderSummary{
			Order:        order,
			ProductName:  productName,
			StoreName:    storeName,
			CustomerName: order.ShippingAddress.Name,
		})
	}

	return summaries, nil
}

func shippingAddressFromRequest(address orderapi.Address) ShippingAddress {
	return ShippingAddress{
		Name:     address.Name,
		Phone:    address.Phone,
		Street:   address.Street,
		Area:     address.Area,
		Pincode:  address.Pincode,
		City:     address.City,
		State:    address.State,
		Country:  address.Country,
		Landmark: address.Landmark,
	}
}
