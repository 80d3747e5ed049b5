package order

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/marketbackend/lib/myidentity"
	"github.com/MarcGrol/marketbackend/lib/mypublisher"
	"github.com/MarcGrol/marketbackend/lib/mystore"
	"github.com/MarcGrol/marketbackend/lib/mytime"
	"github.com/MarcGrol/marketbackend/lib/myuuid"
	"github.com/MarcGrol/marketbackend/services/catalog"
	"github.com/MarcGrol/marketbackend/services/orderevents"
	"github.com/MarcGrol/marketbackend/services/pricing"
)

var (
	store1 = catalog.Store{
		UID:      "store1",
		OwnerUID: "seller1",
		Name:     "Spice Bazaar",
		Fees: catalog.FeeConfig{
			StoreCharges:  decimal.NewFromInt(20),
			GSTApplicable: true,
			CODAvailable:  true,
			CODCharges:    decimal.NewFromInt(15),
		},
	}
	product1 = catalog.Product{
		UID:       "prod1",
		StoreUID:  "store1",
		Name:      "Saffron 1g",
		Price:     decimal.NewFromInt(500),
		Stock:     10,
		Published: true,
	}
)

func TestOrderService(t *testing.T) {

	t.Run("Create order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		f := setup(t, ctrl)

		// given
		f.nower.EXPECT().Now().Return(mytime.ExampleTime)
		f.uuider.EXPECT().Create().Return("order1")
		f.publisher.EXPECT().Publish(gomock.Any(), orderevents.TopicName, orderevents.OrderPlaced{
			OrderUID: "order1",
			BuyerUID: "buyer1",
			StoreUID: "store1",
		})

		// when
		response := doRequest(f.router, createOrderRequest("buyer1", "cod", 3))

		// then
		assert.Equal(t, 200, response.Code)

		stored, exists, _ := f.orderStore.Get(f.ctx, "order1")
		assert.True(t, exists)
		assert.Equal(t, StatusPlaced, stored.Status)
		assert.Equal(t, "buyer1", stored.BuyerUID)
		assert.True(t, stored.Breakdown.FinalTotal.Equal(decimal.NewFromInt(1805)))
		assert.Len(t, stored.StatusHistory, 1)
		assert.Equal(t, "Order has been placed successfully", stored.StatusHistory[0].Description)

		product, _, _ := f.productStore.Get(f.ctx, "prod1")
		assert.Equal(t, 7, product.Stock)
	})

	t.Run("Create order requires authentication", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		f := setup(t, ctrl)

		// when
		response := doRequest(f.router, createOrderRequest("", "cod", 3))

		// then
		assert.Equal(t, 403, response.Code)
	})

	t.Run("Create order rejects cod when store does not offer it", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		f := setup(t, ctrl)

		// given
		noCodStore := store1
		noCodStore.Fees.CODAvailable = false
		f.storeStore.Put(f.ctx, noCodStore.UID, noCodStore)

		// when
		response := doRequest(f.router, createOrderRequest("buyer1", "cod", 3))

		// then
		assert.Equal(t, 400, response.Code)
		orders, _ := f.orderStore.List(f.ctx)
		assert.Empty(t, orders)
	})

	t.Run("Create order beyond stock leaves everything untouched", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		f := setup(t, ctrl)

		// given
		f.nower.EXPECT().Now().Return(mytime.ExampleTime)
		f.uuider.EXPECT().Create().Return("order1")

		// when
		response := doRequest(f.router, createOrderRequest("buyer1", "cod", 11))

		// then
		assert.Equal(t, 409, response.Code)

		orders, _ := f.orderStore.List(f.ctx)
		assert.Empty(t, orders)
		product, _, _ := f.productStore.Get(f.ctx, "prod1")
		assert.Equal(t, 10, product.Stock)
	})

	t.Run("Create order rolls back when publishing fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		f := setup(t, ctrl)

		// given
		f.nower.EXPECT().Now().Return(mytime.ExampleTime)
		f.uuider.EXPECT().Create().Return("order1")
		f.publisher.EXPECT().Publish(gomock.Any(), orderevents.TopicName, gomock.Any()).
			Return(errors.New("publish failed"))

		// when
		response := doRequest(f.router, createOrderRequest("buyer1", "cod", 3))

		// then: no order stored and no stock decremented
		assert.Equal(t, 500, response.Code)

		orders, _ := f.orderStore.List(f.ctx)
		assert.Empty(t, orders)
		product, _, _ := f.productStore.Get(f.ctx, "prod1")
		assert.Equal(t, 10, product.Stock)
	})

	t.Run("Transition rolls back when publishing fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		f := setup(t, ctrl)

		// given
		f.orderStore.Put(f.ctx, "order1", placedOrder())
		f.nower.EXPECT().Now().Return(mytime.ExampleTime)
		f.publisher.EXPECT().Publish(gomock.Any(), orderevents.TopicName, gomock.Any()).
			Return(errors.New("publish failed"))

		// when
		response := doRequest(f.router, transitionRequest("seller1", "order1", "processing", nil))

		// then: the status change is not persisted
		assert.Equal(t, 500, response.Code)

		stored, _, _ := f.orderStore.Get(f.ctx, "order1")
		assert.Equal(t, StatusPlaced, stored.Status)
		assert.Len(t, stored.StatusHistory, 1)
	})

	t.Run("Concurrent orders for the last item", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		f := setup(t, ctrl)

		// given
		lastItem := product1
		lastItem.Stock = 1
		f.productStore.Put(f.ctx, lastItem.UID, lastItem)

		f.nower.EXPECT().Now().Return(mytime.ExampleTime).Times(2)
		f.uuider.EXPECT().Create().Return("order1")
		f.uuider.EXPECT().Create().Return("order2")
		f.publisher.EXPECT().Publish(gomock.Any(), orderevents.TopicName, gomock.Any()).Times(1)

		// when
		responses := [2]*httptest.ResponseRecorder{}
		wg := sync.WaitGroup{}
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				responses[i] = doRequest(f.router, createOrderRequest("buyer1", "online", 1))
			}(i)
		}
		wg.Wait()

		// then
		statuses := []int{responses[0].Code, responses[1].Code}
		assert.Contains(t, statuses, 200)
		assert.Contains(t, statuses, 409)

		product, _, _ := f.productStore.Get(f.ctx, "prod1")
		assert.Equal(t, 0, product.Stock)
		orders, _ := f.orderStore.List(f.ctx)
		assert.Len(t, orders, 1)
	})

	t.Run("Preview matches what create persists", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		f := setup(t, ctrl)

		// given
		f.nower.EXPECT().Now().Return(mytime.ExampleTime)
		f.uuider.EXPECT().Create().Return("order1")
		f.publisher.EXPECT().Publish(gomock.Any(), orderevents.TopicName, gomock.Any())

		// when
		previewRequest, _ := http.NewRequest(http.MethodGet, "/api/price/preview?productUid=prod1&quantity=3&paymentMethod=cod", nil)
		previewResponse := doRequest(f.router, previewRequest)
		createResponse := doRequest(f.router, createOrderRequest("buyer1", "cod", 3))

		// then
		assert.Equal(t, 200, previewResponse.Code)
		assert.Equal(t, 200, createResponse.Code)

		preview := pricing.Breakdown{}
		err := json.Unmarshal(previewResponse.Body.Bytes(), &preview)
		assert.NoError(t, err)

		stored, _, _ := f.orderStore.Get(f.ctx, "order1")
		assert.True(t, preview.Subtotal.Equal(stored.Breakdown.Subtotal))
		assert.True(t, preview.StoreCharges.Equal(stored.Breakdown.StoreCharges))
		assert.True(t, preview.GSTAmount.Equal(stored.Breakdown.GSTAmount))
		assert.True(t, preview.CODCharges.Equal(stored.Breakdown.CODCharges))
		assert.True(t, preview.FinalTotal.Equal(stored.Breakdown.FinalTotal))
	})

	t.Run("Store owner moves order to processing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		f := setup(t, ctrl)

		// given
		f.orderStore.Put(f.ctx, "order1", placedOrder())
		f.nower.EXPECT().Now().Return(mytime.ExampleTime)
		f.publisher.EXPECT().Publish(gomock.Any(), orderevents.TopicName, orderevents.OrderStatusChanged{
			OrderUID:  "order1",
			StoreUID:  "store1",
			OldStatus: "placed",
			NewStatus: "processing",
		})

		// when
		response := doRequest(f.router, transitionRequest("seller1", "order1", "processing", nil))

		// then
		assert.Equal(t, 200, response.Code)

		stored, _, _ := f.orderStore.Get(f.ctx, "order1")
		assert.Equal(t, StatusProcessing, stored.Status)
		assert.Len(t, stored.StatusHistory, 2)
		assert.Equal(t, "Order status updated to processing", stored.StatusHistory[1].Description)
	})

	t.Run("Shipping records tracking details", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		f := setup(t, ctrl)

		// given
		ord := placedOrder()
		ord.Status = StatusProcessing
		f.orderStore.Put(f.ctx, "order1", ord)
		f.nower.EXPECT().Now().Return(mytime.ExampleTime)
		f.publisher.EXPECT().Publish(gomock.Any(), orderevents.TopicName, gomock.Any())

		// when
		response := doRequest(f.router, transitionRequest("seller1", "order1", "shipped", url.Values{
			"trackingId":            {"TRK123"},
			"courierName":           {"Delhivery"},
			"estimatedDeliveryTime": {"3 days"},
			"location":              {"Delhi hub"},
		}))

		// then
		assert.Equal(t, 200, response.Code)

		stored, _, _ := f.orderStore.Get(f.ctx, "order1")
		assert.Equal(t, StatusShipped, stored.Status)
		assert.Equal(t, "TRK123", stored.TrackingID)
		assert.Equal(t, "Delhivery", stored.CourierName)
		assert.Equal(t, "3 days", stored.EstimatedDeliveryTime)
		assert.Equal(t, "Delhi hub", stored.StatusHistory[len(stored.StatusHistory)-1].Location)
	})

	t.Run("Only the owner of the store may transition", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		f := setup(t, ctrl)

		// given
		f.orderStore.Put(f.ctx, "order1", placedOrder())

		// when
		response := doRequest(f.router, transitionRequest("buyer1", "order1", "processing", nil))

		// then
		assert.Equal(t, 403, response.Code)

		stored, _, _ := f.orderStore.Get(f.ctx, "order1")
		assert.Equal(t, StatusPlaced, stored.Status)
		assert.Len(t, stored.StatusHistory, 1)
	})

	t.Run("Skipping a lifecycle step is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		f := setup(t, ctrl)

		// given
		f.orderStore.Put(f.ctx, "order1", placedOrder())

		// when
		response := doRequest(f.router, transitionRequest("seller1", "order1", "delivered", nil))

		// then
		assert.Equal(t, 400, response.Code)

		stored, _, _ := f.orderStore.Get(f.ctx, "order1")
		assert.Equal(t, StatusPlaced, stored.Status)
		assert.Len(t, stored.StatusHistory, 1)
	})

	t.Run("Buyer sees own orders only", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		f := setup(t, ctrl)

		// given
		mine := placedOrder()
		f.orderStore.Put(f.ctx, mine.UID, mine)
		other := placedOrder()
		other.UID = "order2"
		other.BuyerUID = "buyer2"
		f.orderStore.Put(f.ctx, other.UID, other)

		// when
		request, _ := http.NewRequest(http.MethodGet, "/api/orders", nil)
		request.Header.Set("X-Authenticated-User-Id", "buyer1")
		response := doRequest(f.router, request)

		// then
		assert.Equal(t, 200, response.Code)

		summaries := []orderSummary{}
		err := json.Unmarshal(response.Body.Bytes(), &summaries)
		assert.NoError(t, err)
		assert.Len(t, summaries, 1)
		assert.Equal(t, "order1", summaries[0].UID)
		assert.Equal(t, "Saffron 1g", summaries[0].ProductName)
		assert.Equal(t, "Spice Bazaar", summaries[0].StoreName)
	})

	t.Run("Anonymous visitor gets an empty order list", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		f := setup(t, ctrl)

		// given
		f.orderStore.Put(f.ctx, "order1", placedOrder())

		// when
		request, _ := http.NewRequest(http.MethodGet, "/api/orders", nil)
		response := doRequest(f.router, request)

		// then
		assert.Equal(t, 200, response.Code)

		summaries := []orderSummary{}
		err := json.Unmarshal(response.Body.Bytes(), &summaries)
		assert.NoError(t, err)
		assert.Empty(t, summaries)
	})

	t.Run("Store order listing is owner-only", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		f := setup(t, ctrl)

		// given
		f.orderStore.Put(f.ctx, "order1", placedOrder())

		// when
		request, _ := http.NewRequest(http.MethodGet, "/api/store/store1/orders", nil)
		request.Header.Set("X-Authenticated-User-Id", "buyer1")
		response := doRequest(f.router, request)

		// then
		assert.Equal(t, 403, response.Code)
	})

	t.Run("Order details are visible to buyer and owner only", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		f := setup(t, ctrl)

		// given
		f.orderStore.Put(f.ctx, "order1", placedOrder())

		// when/then: the buyer
		request, _ := http.NewRequest(http.MethodGet, "/api/order/order1", nil)
		request.Header.Set("X-Authenticated-User-Id", "buyer1")
		assert.Equal(t, 200, doRequest(f.router, request).Code)

		// when/then: the store owner
		request, _ = http.NewRequest(http.MethodGet, "/api/order/order1", nil)
		request.Header.Set("X-Authenticated-User-Id", "seller1")
		assert.Equal(t, 200, doRequest(f.router, request).Code)

		// when/then: a stranger
		request, _ = http.NewRequest(http.MethodGet, "/api/order/order1", nil)
		request.Header.Set("X-Authenticated-User-Id", "stranger")
		assert.Equal(t, 403, doRequest(f.router, request).Code)
	})
}

type fixture struct {
	ctx          context.Context
	router       *mux.Router
	orderStore   mystore.Store[Order]
	productStore mystore.Store[catalog.Product]
	storeStore   mystore.Store[catalog.Store]
	nower        *mytime.MockNower
	uuider       *myuuid.MockUUIDer
	publisher    *mypublisher.MockPublisher
}

func setup(t *testing.T, ctrl *gomock.Controller) fixture {
	c := context.TODO()

	orderStore, _, _ := mystore.New[Order](c)
	productStore, _, _ := mystore.New[catalog.Product](c)
	storeStore, _, _ := mystore.New[catalog.Store](c)
	nower := mytime.NewMockNower(ctrl)
	uuider := myuuid.NewMockUUIDer(ctrl)
	publisher := mypublisher.NewMockPublisher(ctrl)

	productStore.Put(c, product1.UID, product1)
	storeStore.Put(c, store1.UID, store1)

	catalogService := catalog.NewService(productStore, storeStore, nower, uuider)

	sut := NewService(orderStore, catalogService.Accessor(), publisher, myidentity.New(), nower, uuider)
	router := mux.NewRouter()
	sut.RegisterEndpoints(c, router)

	return fixture{
		ctx:          c,
		router:       router,
		orderStore:   orderStore,
		productStore: productStore,
		storeStore:   storeStore,
		nower:        nower,
		uuider:       uuider,
		publisher:    publisher,
	}
}

func doRequest(router *mux.Router, request *http.Request) *httptest.ResponseRecorder {
	request.Host = "localhost:8888"
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}

func createOrderRequest(buyerUID string, paymentMethod string, quantity int) *http.Request {
	form := url.Values{
		"productUid":              {"prod1"},
		"quantity":                {strconv.Itoa(quantity)},
		"paymentMethod":           {paymentMethod},
		"shippingAddress.name":    {"Asha Rao"},
		"shippingAddress.phone":   {"9999999999"},
		"shippingAddress.street":  {"1 MG Road"},
		"shippingAddress.pincode": {"560001"},
		"shippingAddress.city":    {"Bengaluru"},
		"shippingAddress.state":   {"Karnataka"},
		"shippingAddress.country": {"India"},
	}

	request, _ := http.NewRequest(http.MethodPost, "/api/order", strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if buyerUID != "" {
		request.Header.Set("X-Authenticated-User-Id", buyerUID)
	}
	return request
}

func transitionRequest(callerUID string, orderUID string, status string, form url.Values) *http.Request {
	body := ""
	if form != nil {
		body = form.Encode()
	}

	request, _ := http.NewRequest(http.MethodPut, "/api/order/"+orderUID+"/status/"+status, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("X-Authenticated-User-Id", callerUID)
	return request
}

func placedOrder() Order {
	return Order{
		UID:              "order1",
		BuyerUID:         "buyer1",
		StoreUID:         "store1",
		ProductUID:       "prod1",
		Quantity:         3,
		UnitPriceAtOrder: decimal.NewFromInt(500),
		ShippingAddress:  ShippingAddress{Name: "Asha Rao", Pincode: "560001"},
		PaymentMethod:    pricing.PaymentMethodCOD,
		Breakdown: pricing.Breakdown{
			Subtotal:     decimal.NewFromInt(1500),
			StoreCharges: decimal.NewFromInt(20),
			GSTAmount:    decimal.NewFromInt(270),
			CODCharges:   decimal.NewFromInt(15),
			FinalTotal:   decimal.NewFromInt(1805),
		},
		Status: StatusPlaced,
		StatusHistory: []StatusEvent{
			{Status: StatusPlaced, Timestamp: mytime.ExampleTime, Description: "Order has been placed successfully"},
		},
		CreatedAt: mytime.ExampleTime,
	}
}
