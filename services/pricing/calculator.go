package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MarcGrol/marketbackend/lib/myerrors"
	"github.com/MarcGrol/marketbackend/services/catalog"
)

type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodOnline PaymentMethod = "online"
)

func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch PaymentMethod(raw) {
	case PaymentMethodCOD, PaymentMethodOnline:
		return PaymentMethod(raw), nil
	}
	return "", myerrors.NewInvalidInputErrorf("unknown payment method %q", raw)
}

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive number")
	ErrInvalidPrice    = errors.New("unit price must not be negative")
)

// defaultGSTPercentage applies when a store opted into GST without
// configuring a percentage.
var defaultGSTPercentage = decimal.NewFromInt(18)

var oneHundred = decimal.NewFromInt(100)

type Breakdown struct {
	Subtotal     decimal.Decimal
	StoreCharges decimal.Decimal
	GSTAmount    decimal.Decimal
	CODCharges   decimal.Decimal
	FinalTotal   decimal.Decimal
}

// Calculate derives the itemized price breakdown for a purchase. It is a
// pure function: checkout previews and order creation call it with the same
// inputs and must get the same breakdown.
//
// GST is deliberately computed over the subtotal only: store charges and
// COD fee are untaxed. Preserved as-is, pending product-owner confirmation.
func Calculate(unitPrice decimal.Decimal, quantity int, fees catalog.FeeConfig, method PaymentMethod) (Breakdown, error) {
	if quantity <= 0 {
		return Breakdown{}, myerrors.NewInvalidInputError(fmt.Errorf("quantity %d: %w", quantity, ErrInvalidQuantity))
	}
	if unitPrice.IsNegative() {
		return Breakdown{}, myerrors.NewInvalidInputError(fmt.Errorf("unit price %s: %w", unitPrice, ErrInvalidPrice))
	}

	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))

	storeCharges := fees.StoreCharges

	gstAmount := decimal.Zero
	if fees.GSTApplicable {
		percentage := fees.GSTPercentage
		if percentage.IsZero() {
			percentage = defaultGSTPercentage
		}
		gstAmount = subtotal.Mul(percentage).Div(oneHundred).Round(2)
	}

	codCharges := decimal.Zero
	if method == PaymentMethodCOD {
		codCharges = fees.CODCharges
	}

	return Breakdown{
		Subtotal:     subtotal,
		StoreCharges: storeCharges,
		GSTAmount:    gstAmount,
		CODCharges:   codCharges,
		FinalTotal:   subtotal.Add(storeCharges).Add(gstAmount).Add(codCharges),
	}, nil
}
