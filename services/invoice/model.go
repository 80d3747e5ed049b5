package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MarcGrol/marketbackend/services/catalog"
	"github.com/MarcGrol/marketbackend/services/order"
	"github.com/MarcGrol/marketbackend/services/pricing"
)

const (
	PaymentStatusPaid    = "Paid"
	PaymentStatusPending = "Pending"
)

// sequenceUID keys the single Sequence record behind invoice numbers.
const sequenceUID = "invoice"

// Sequence holds the last issued invoice sequence number. It is read and
// incremented inside the issuing transaction.
type Sequence struct {
	Value int
}

// Invoice is a frozen snapshot of an order and the parties involved.
// It deliberately copies display data instead of referencing it: later
// edits to store or product must not change an issued invoice.
type Invoice struct {
	UID           string
	OrderUID      string
	BuyerUID      string
	StoreUID      string
	InvoiceNumber string
	IssueDate     time.Time

	StoreDetails    StoreDetails
	CustomerDetails CustomerDetails

	Lines []InvoiceLine

	SubTotal     decimal.Decimal
	StoreCharges decimal.Decimal
	TaxAmount    decimal.Decimal
	CODCharges   decimal.Decimal
	TotalAmount  decimal.Decimal

	PaymentStatus string
	PaymentMethod pricing.PaymentMethod

	SignatureURL string
	Terms        string
}

type StoreDetails struct {
	Name      string
	OwnerName string
	Email     string
	Phone     string
	Address   catalog.Address
	GSTNumber string
}

type CustomerDetails struct {
	Name            string
	Phone           string
	ShippingAddress order.ShippingAddress
}

type InvoiceLine struct {
	ProductUID  string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}
