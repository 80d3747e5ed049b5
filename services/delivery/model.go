package delivery

import (
	"errors"
	"time"
)

var ErrInvalidPincode = errors.New("pincode must be exactly 6 digits")

type ServiceabilityStatus string

const (
	// StatusServiceable: the courier delivers to this pincode.
	StatusServiceable ServiceabilityStatus = "serviceable"
	// StatusNotServiceable: the courier answered and does not cover this pincode.
	StatusNotServiceable ServiceabilityStatus = "not_serviceable"
	// StatusUnavailable: we could not get an answer (misconfigured or unreachable).
	StatusUnavailable ServiceabilityStatus = "unavailable"
)

// Estimate is advisory only: it is shown at checkout time and is not
// stored as part of an order.
type Estimate struct {
	Status         ServiceabilityStatus
	Message        string    `json:",omitempty"`
	CourierPartner string    `json:",omitempty"`
	CashOnDelivery bool      `json:",omitempty"`
	District       string    `json:",omitempty"`
	State          string    `json:",omitempty"`
	EstimatedDays  int       `json:",omitempty"`
	EstimatedDate  time.Time `json:",omitzero"`
}
