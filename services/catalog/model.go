package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	UID         string
	StoreUID    string
	Name        string
	Description string
	Category    string
	Brand       string
	Price       decimal.Decimal
	Stock       int
	Published   bool
	CreatedAt   time.Time
}

type Store struct {
	UID             string
	OwnerUID        string
	Name            string
	Description     string
	OwnerName       string
	OwnerEmail      string
	OwnerPhone      string
	BusinessAddress Address
	Fees            FeeConfig

	// Invoice settings
	SignatureBlobUID string
	InvoiceTerms     string
	GSTNumber        string

	CreatedAt time.Time
}

type Address struct {
	Type     string
	Street   string
	Area     string
	Pincode  string
	City     string
	State    string
	Country  string
	Landmark string
}

// FeeConfig holds the per-store fee settings that drive the price breakdown.
type FeeConfig struct {
	StoreCharges  decimal.Decimal
	GSTApplicable bool
	GSTPercentage decimal.Decimal // zero means: use the default when applicable
	CODAvailable  bool
	CODCharges    decimal.Decimal
}
