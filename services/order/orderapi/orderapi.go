package orderapi

import (
	"net/http"
	"net/url"

	formcodec "github.com/go-playground/form/v4"

	"github.com/MarcGrol/marketbackend/lib/myerrors"
)

// OrderRequest is the form payload that places an order.
type OrderRequest struct {
	ProductUID       string  `form:"productUid"`
	Quantity         int     `form:"quantity"`
	PaymentMethod    string  `form:"paymentMethod"`
	PaymentReference string  `form:"paymentReference"`
	ShippingAddress  Address `form:"shippingAddress"`
}

type Address struct {
	Name     string `form:"name"`
	Phone    string `form:"phone"`
	Street   string `form:"street"`
	Area     string `form:"area"`
	Pincode  string `form:"pincode"`
	City     string `form:"city"`
	State    string `form:"state"`
	Country  string `form:"country"`
	Landmark string `form:"landmark"`
}

// StatusUpdate is the form payload accompanying a status transition.
// Which fields are honoured depends on the target status.
type StatusUpdate struct {
	TrackingID            string `form:"trackingId"`
	CourierName           string `form:"courierName"`
	EstimatedDeliveryTime string `form:"estimatedDeliveryTime"`
	CancellationReason    string `form:"cancellationReason"`
	Location              string `form:"location"`
	Description           string `form:"description"`
}

func NewOrderRequestFromRequest(r *http.Request) (OrderRequest, error) {
	err := r.ParseForm()
	if err != nil {
		return OrderRequest{}, myerrors.NewInvalidInputError(err)
	}
	return newOrderRequestFromValues(r.Form)
}

func newOrderRequestFromValues(values url.Values) (OrderRequest, error) {
	request := OrderRequest{}
	err := formcodec.NewDecoder().Decode(&request, values)
	if err != nil {
		return request, myerrors.NewInvalidInputError(err)
	}

	return request, nil
}

func NewStatusUpdateFromRequest(r *http.Request) (StatusUpdate, error) {
	err := r.ParseForm()
	if err != nil {
		return StatusUpdate{}, myerrors.NewInvalidInputError(err)
	}

	update := StatusUpdate{}
	err = formcodec.NewDecoder().Decode(&update, r.Form)
	if err != nil {
		return update, myerrors.NewInvalidInputError(err)
	}

	return update, nil
}
