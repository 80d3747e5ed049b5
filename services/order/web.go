package order

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/marketbackend/lib/mycontext"
	"github.com/MarcGrol/marketbackend/lib/myerrors"
	"github.com/MarcGrol/marketbackend/lib/myhttp"
	"github.com/MarcGrol/marketbackend/lib/myidentity"
	"github.com/MarcGrol/marketbackend/lib/mylog"
	"github.com/MarcGrol/marketbackend/lib/mypublisher"
	"github.com/MarcGrol/marketbackend/lib/mystore"
	"github.com/MarcGrol/marketbackend/lib/mytime"
	"github.com/MarcGrol/marketbackend/lib/myuuid"
	"github.com/MarcGrol/marketbackend/services/catalog"
	"github.com/MarcGrol/marketbackend/services/order/orderapi"
)

type webService struct {
	logger   mylog.Logger
	service  *service
	identity myidentity.Provider
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(orderStore mystore.Store[Order], catalogAccessor catalog.Accessor, publisher mypublisher.Publisher, identity myidentity.Provider, nower mytime.Nower, uuider myuuid.UUIDer) *webService {
	logger := mylog.New("order")
	return &webService{
		logger:   logger,
		service:  newService(orderStore, catalogAccessor, publisher, nower, uuider, logger),
		identity: identity,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/api/price/preview", s.previewPricePage()).Methods("GET")
	router.HandleFunc("/api/order", s.createOrderPage()).Methods("POST")
	router.HandleFunc("/api/order/{orderUID}", s.orderDetailsPage()).Methods("GET")
	router.HandleFunc("/api/order/{orderUID}/status/{status}", s.transitionStatusPage()).Methods("PUT")
	router.HandleFunc("/api/orders", s.buyerOrderListPage()).Methods("GET")
	router.HandleFunc("/api/store/{storeUID}/orders", s.storeOrderListPage()).Methods("GET")
}

func (s *webService) previewPricePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		productUID := r.URL.Query().Get("productUid")
		paymentMethod := r.URL.Query().Get("paymentMethod")
		quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("error parsing quantity: %s", err))
			return
		}

		breakdown, err := s.service.previewPrice(c, productUID, quantity, paymentMethod)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, breakdown)
	}
}

func (s *webService) createOrderPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		request, err := orderapi.NewOrderRequestFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		order, err := s.service.createOrder(c, s.identity.UserIDFromRequest(r), request)
		if err != nil {
			errorWriter.WriteError(c, w, 4, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, order)
	}
}

func (s *webService) orderDetailsPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		orderUID := mux.Vars(r)["orderUID"]

		order, err := s.service.getOrderDetails(c, s.identity.UserIDFromRequest(r), orderUID)
		if err != nil {
			errorWriter.WriteError(c, w, 5, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, order)
	}
}

func (s *webService) transitionStatusPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		orderUID := mux.Vars(r)["orderUID"]
		status := mux.Vars(r)["status"]

		update, err := orderapi.NewStatusUpdateFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 6, err)
			return
		}

		order, err := s.service.transitionStatus(c, s.identity.UserIDFromRequest(r), orderUID, status, update)
		if err != nil {
			errorWriter.WriteError(c, w, 7, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, order)
	}
}

func (s *webService) buyerOrderListPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		orders, err := s.service.getOrdersForBuyer(c, s.identity.UserIDFromRequest(r))
		if err != nil {
			errorWriter.WriteError(c, w, 8, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, orders)
	}
}

func (s *webService) storeOrderListPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		storeUID := mux.Vars(r)["storeUID"]

		orders, err := s.service.getOrdersForStore(c, s.identity.UserIDFromRequest(r), storeUID)
		if err != nil {
			errorWriter.WriteError(c, w, 9, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, orders)
	}
}
