package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MarcGrol/marketbackend/services/pricing"
)

type OrderStatus string

const (
	StatusPlaced     OrderStatus = "placed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusRefunded   OrderStatus = "refunded"
)

func ParseOrderStatus(raw string) (OrderStatus, bool) {
	switch OrderStatus(raw) {
	case StatusPlaced, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return OrderStatus(raw), true
	}
	return "", false
}

type Order struct {
	UID        string
	BuyerUID   string
	StoreUID   string
	ProductUID string
	Quantity   int

	// Value snapshot of the unit price the breakdown was computed from.
	// Later catalog price changes never touch a placed order.
	UnitPriceAtOrder decimal.Decimal

	ShippingAddress  ShippingAddress
	PaymentMethod    pricing.PaymentMethod
	PaymentReference string

	Breakdown pricing.Breakdown

	Status                OrderStatus
	TrackingID            string
	CourierName           string
	EstimatedDeliveryTime string
	CancellationReason    string

	StatusHistory []StatusEvent

	CreatedAt    time.Time
	LastModified *time.Time
}

type ShippingAddress struct {
	Name     string
	Phone    string
	Street   string
	Area     string
	Pincode  string
	City     string
	State    string
	Country  string
	Landmark string
}

// StatusEvent is one entry of the append-only audit trail. Entries are
// never modified or removed once written.
type StatusEvent struct {
	Status      OrderStatus
	Timestamp   time.Time
	Location    string
	Description string
}

// orderSummary is the list projection: the order enriched with display
// names the Order record itself does not carry.
type orderSummary struct {
	Order
	ProductName  string
	StoreName    string
	CustomerName string
}
