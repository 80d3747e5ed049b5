package invoice

import (
	"context"
	"fmt"

	"github.com/MarcGrol/marketbackend/lib/myerrors"
	"github.com/MarcGrol/marketbackend/lib/mylog"
	"github.com/MarcGrol/marketbackend/lib/mystore"
	"github.com/MarcGrol/marketbackend/services/catalog"
	"github.com/MarcGrol/marketbackend/services/order"
)

// generate returns the invoice for an order, creating it on first call.
// Repeated calls return the stored invoice unchanged: the invoice number
// is allocated exactly once.
func (s *service) generate(c context.Context, callerUID string, orderUID string) (Invoice, error) {
	if callerUID == "" {
		return Invoice{}, myerrors.NewAuthenticationError(fmt.Errorf("not authenticated"))
	}

	ord, found, err := s.orderStore.Get(c, orderUID)
	if err != nil {
		return Invoice{}, myerrors.NewInternalError(fmt.Errorf("error fetching order %s: %s", orderUID, err))
	}
	if !found {
		return Invoice{}, myerrors.NewNotFoundError(fmt.Errorf("order %s: %w", orderUID, order.ErrOrderNotFound))
	}

	store, err := s.authorize(c, callerUID, ord)
	if err != nil {
		return Invoice{}, err
	}

	var invoice Invoice
	err = s.invoiceStore.RunInTransaction(c, func(c context.Context) error {
		existing, err := s.invoiceStore.Query(c, []mystore.Filter{
			{Field: "OrderUID", Compare: "=", Value: orderUID},
		}, "")
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching invoice of order %s: %s", orderUID, err))
		}
		if len(existing) > 0 {
			invoice = existing[0]
			return nil
		}

		// The sequence record is claimed inside the transaction so two
		// concurrent generates cannot collide
		sequence, _, err := s.sequenceStore.Get(c, sequenceUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching invoice sequence: %s", err))
		}
		sequence.Value++

		err = s.sequenceStore.Put(c, sequenceUID, sequence)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing invoice sequence: %s", err))
		}

		invoice, err = s.compose(c, ord, store, sequence.Value)
		if err != nil {
			return err
		}

		err = s.invoiceStore.Put(c, invoice.UID, invoice)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing invoice: %s", err))
		}

		s.logger.Log(c, orderUID, mylog.SeverityInfo, "Issued invoice %s for order %s", invoice.InvoiceNumber, orderUID)

		return nil
	})
	if err != nil {
		return Invoice{}, err
	}

	return invoice, nil
}

// authorize allows the buyer, the owning store's owner and the system
// itself. It returns the owning store because every caller needs it next.
func (s *service) authorize(c context.Context, callerUID string, ord order.Order) (catalog.Store, error) {
	store, found, err := s.catalog.GetStore(c, ord.StoreUID)
	if err != nil {
		return catalog.Store{}, myerrors.NewInternalError(fmt.Errorf("error fetching store %s: %s", ord.StoreUID, err))
	}
	if !found {
		return catalog.Store{}, myerrors.NewNotFoundError(fmt.Errorf("store %s: %w", ord.StoreUID, catalog.ErrStoreNotFound))
	}

	if callerUID != systemCaller && callerUID != ord.BuyerUID && callerUID != store.OwnerUID {
		return catalog.Store{}, myerrors.NewAuthenticationError(fmt.Errorf("caller %s may not access invoice of order %s", callerUID, ord.UID))
	}

	return store, nil
}

func (s *service) compose(c context.Context, ord order.Order, store catalog.Store, sequenceNumber int) (Invoice, error) {
	issueDate := s.nower.Now()

	productName := ord.ProductUID
	product, found, err := s.catalog.GetProduct(c, ord.ProductUID)
	if err == nil && found {
		productName = product.Name
	}

	signatureURL := ""
	if store.SignatureBlobUID != "" {
		url, found, err := s.blobResolver.ResolveURL(c, store.SignatureBlobUID)
		if err == nil && found {
			signatureURL = url
		}
	}

	paymentStatus := PaymentStatusPending
	if ord.PaymentReference != "" {
		paymentStatus = PaymentStatusPaid
	}

	return Invoice{
		UID:           s.uuider.Create(),
		OrderUID:      ord.UID,
		BuyerUID:      ord.BuyerUID,
		StoreUID:      ord.StoreUID,
		InvoiceNumber: fmt.Sprintf("INV-%s-%04d", issueDate.Format("20060102"), sequenceNumber),
		IssueDate:     issueDate,
		StoreDetails: StoreDetails{
			Name:      store.Name,
			OwnerName: store.OwnerName,
			Email:     store.OwnerEmail,
			Phone:     store.OwnerPhone,
			Address:   store.BusinessAddress,
			GSTNumber: store.GSTNumber,
		},
		CustomerDetails: CustomerDetails{
			Name:            ord.ShippingAddress.Name,
			Phone:           ord.ShippingAddress.Phone,
			ShippingAddress: ord.ShippingAddress,
		},
		Lines: []InvoiceLine{
			{
				ProductUID:  ord.ProductUID,
				ProductName: productName,
				Quantity:    ord.Quantity,
				UnitPrice:   ord.UnitPriceAtOrder,
				LineTotal:   ord.Breakdown.Subtotal,
			},
		},
		SubTotal:      ord.Breakdown.Subtotal,
		StoreCharges:  ord.Breakdown.StoreCharges,
		TaxAmount:     ord.Breakdown.GSTAmount,
		CODCharges:    ord.Breakdown.CODCharges,
		TotalAmount:   ord.Breakdown.FinalTotal,
		PaymentStatus: paymentStatus,
		PaymentMethod: ord.PaymentMethod,
		SignatureURL:  signatureURL,
		Terms:         store.InvoiceTerms,
	}, nil
}

func (s *service) listForBuyer(c context.Context, buyerUID string) ([]Invoice, error) {
	if buyerUID == "" {
		return []Invoice{}, nil
	}

	invoices, err := s.invoiceStore.Query(c, []mystore.Filter{
		{Field: "BuyerUID", Compare: "=", Value: buyerUID},
	}, "IssueDate")
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error fetching invoices of buyer %s: %s", buyerUID, err))
	}

	return invoices, nil
}

func (s *service) listForStore(c context.Context, callerUID string, storeUID string) ([]Invoice, error) {
	if callerUID == "" {
		return []Invoice{}, nil
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

	invoices, err := s.invoiceStore.Query(c, []mystore.Filter{
		{Field: "StoreUID", Compare: "=", Value: storeUID},
	}, "IssueDate")
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error fetching invoices of store %s: %s", storeUID, err))
	}

	return invoices, nil
}
