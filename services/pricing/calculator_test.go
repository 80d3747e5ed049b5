package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/marketbackend/services/catalog"
)

var exampleFees = catalog.FeeConfig{
	StoreCharges:  decimal.NewFromInt(20),
	GSTApplicable: true,
	GSTPercentage: decimal.NewFromInt(18),
	CODAvailable:  true,
	CODCharges:    decimal.NewFromInt(15),
}

func TestCalculate(t *testing.T) {
	testCases := []struct {
		name      string
		unitPrice decimal.Decimal
		quantity  int
		fees      catalog.FeeConfig
		method    PaymentMethod
		expected  Breakdown
	}{
		{
			name:      "Cash on delivery with gst and fees",
			unitPrice: decimal.NewFromInt(500),
			quantity:  3,
			fees:      exampleFees,
			method:    PaymentMethodCOD,
			expected: Breakdown{
				Subtotal:     decimal.NewFromInt(1500),
				StoreCharges: decimal.NewFromInt(20),
				GSTAmount:    decimal.NewFromInt(270),
				CODCharges:   decimal.NewFromInt(15),
				FinalTotal:   decimal.NewFromInt(1805),
			},
		},
		{
			name:      "Online payment skips cod charges",
			unitPrice: decimal.NewFromInt(500),
			quantity:  3,
			fees:      exampleFees,
			method:    PaymentMethodOnline,
			expected: Breakdown{
				Subtotal:     decimal.NewFromInt(1500),
				StoreCharges: decimal.NewFromInt(20),
				GSTAmount:    decimal.NewFromInt(270),
				CODCharges:   decimal.Zero,
				FinalTotal:   decimal.NewFromInt(1790),
			},
		},
		{
			name:      "No fees configured at all",
			unitPrice: decimal.NewFromFloat(9.99),
			quantity:  2,
			fees:      catalog.FeeConfig{},
			method:    PaymentMethodOnline,
			expected: Breakdown{
				Subtotal:     decimal.NewFromFloat(19.98),
				StoreCharges: decimal.Zero,
				GSTAmount:    decimal.Zero,
				CODCharges:   decimal.Zero,
				FinalTotal:   decimal.NewFromFloat(19.98),
			},
		},
		{
			name:      "Gst percentage defaults to 18 when unset",
			unitPrice: decimal.NewFromInt(100),
			quantity:  1,
			fees: catalog.FeeConfig{
				GSTApplicable: true,
			},
			method: PaymentMethodOnline,
			expected: Breakdown{
				Subtotal:     decimal.NewFromInt(100),
				StoreCharges: decimal.Zero,
				GSTAmount:    decimal.NewFromInt(18),
				CODCharges:   decimal.Zero,
				FinalTotal:   decimal.NewFromInt(118),
			},
		},
		{
			name:      "Cod method without cod charges configured",
			unitPrice: decimal.NewFromInt(100),
			quantity:  1,
			fees: catalog.FeeConfig{
				CODAvailable: true,
			},
			method: PaymentMethodCOD,
			expected: Breakdown{
				Subtotal:     decimal.NewFromInt(100),
				StoreCharges: decimal.Zero,
				GSTAmount:    decimal.Zero,
				CODCharges:   decimal.Zero,
				FinalTotal:   decimal.NewFromInt(100),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Calculate(tc.unitPrice, tc.quantity, tc.fees, tc.method)
			assert.NoError(t, err)
			assertDecimalEqual(t, tc.expected.Subtotal, got.Subtotal)
			assertDecimalEqual(t, tc.expected.StoreCharges, got.StoreCharges)
			assertDecimalEqual(t, tc.expected.GSTAmount, got.GSTAmount)
			assertDecimalEqual(t, tc.expected.CODCharges, got.CODCharges)
			assertDecimalEqual(t, tc.expected.FinalTotal, got.FinalTotal)

			// the total must always be the exact sum of its parts
			sum := got.Subtotal.Add(got.StoreCharges).Add(got.GSTAmount).Add(got.CODCharges)
			assertDecimalEqual(t, sum, got.FinalTotal)
		})
	}
}

func TestCalculateInvalidInput(t *testing.T) {
	_, err := Calculate(decimal.NewFromInt(500), 0, exampleFees, PaymentMethodCOD)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidQuantity))

	_, err = Calculate(decimal.NewFromInt(500), -1, exampleFees, PaymentMethodCOD)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidQuantity))

	_, err = Calculate(decimal.NewFromInt(-1), 1, exampleFees, PaymentMethodCOD)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPrice))
}

func TestCalculateIsDeterministic(t *testing.T) {
	// preview and order-creation share this exact call: same input, same output
	first, err := Calculate(decimal.NewFromFloat(123.45), 7, exampleFees, PaymentMethodCOD)
	assert.NoError(t, err)

	second, err := Calculate(decimal.NewFromFloat(123.45), 7, exampleFees, PaymentMethodCOD)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParsePaymentMethod(t *testing.T) {
	method, err := ParsePaymentMethod("cod")
	assert.NoError(t, err)
	assert.Equal(t, PaymentMethodCOD, method)

	method, err = ParsePaymentMethod("online")
	assert.NoError(t, err)
	assert.Equal(t, PaymentMethodOnline, method)

	_, err = ParsePaymentMethod("cheque")
	assert.Error(t, err)
}

func assertDecimalEqual(t *testing.T, expected, got decimal.Decimal) {
	t.Helper()
	assert.True(t, expected.Equal(got), "expected %s, got %s", expected, got)
}
