package invoice

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/marketbackend/lib/myblobstore"
	"github.com/MarcGrol/marketbackend/lib/mycontext"
	"github.com/MarcGrol/marketbackend/lib/myhttp"
	"github.com/MarcGrol/marketbackend/lib/myidentity"
	"github.com/MarcGrol/marketbackend/lib/mylog"
	"github.com/MarcGrol/marketbackend/lib/mypubsub"
	"github.com/MarcGrol/marketbackend/lib/mystore"
	"github.com/MarcGrol/marketbackend/lib/mytime"
	"github.com/MarcGrol/marketbackend/lib/myuuid"
	"github.com/MarcGrol/marketbackend/services/catalog"
	"github.com/MarcGrol/marketbackend/services/order"
	"github.com/MarcGrol/marketbackend/services/orderevents"
)

type webService struct {
	logger   mylog.Logger
	service  *service
	identity myidentity.Provider
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(invoiceStore mystore.Store[Invoice], sequenceStore mystore.Store[Sequence], orderStore mystore.Store[order.Order], catalogAccessor catalog.Accessor, subscriber mypubsub.PubSub, blobResolver myblobstore.URLResolver, identity myidentity.Provider, nower mytime.Nower, uuider myuuid.UUIDer) *webService {
	logger := mylog.New("invoice")
	return &webService{
		logger:   logger,
		service:  newService(invoiceStore, sequenceStore, orderStore, catalogAccessor, subscriber, blobResolver, nower, uuider, logger),
		identity: identity,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/api/order/{orderUID}/invoice", s.orderInvoicePage()).Methods("GET")
	router.HandleFunc("/api/invoices", s.buyerInvoiceListPage()).Methods("GET")
	router.HandleFunc("/api/store/{storeUID}/invoices", s.storeInvoiceListPage()).Methods("GET")

	// Pubsub will POST event envelopes to this endpoint
	router.HandleFunc("/api/invoice/event", s.handleEventEnvelope()).Methods("POST")
}

func (s *webService) Subscribe(c context.Context) error {
	return s.service.Subscribe(c)
}

func (s *webService) orderInvoicePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		orderUID := mux.Vars(r)["orderUID"]

		invoice, err := s.service.generate(c, s.identity.UserIDFromRequest(r), orderUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, invoice)
	}
}

func (s *webService) buyerInvoiceListPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		invoices, err := s.service.listForBuyer(c, s.identity.UserIDFromRequest(r))
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, invoices)
	}
}

func (s *webService) storeInvoiceListPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		storeUID := mux.Vars(r)["storeUID"]

		invoices, err := s.service.listForStore(c, s.identity.UserIDFromRequest(r), storeUID)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, invoices)
	}
}

func (s *webService) handleEventEnvelope() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := orderevents.DispatchEvent(c, r.Body, s.service)
		if err != nil {
			errorWriter.WriteError(c, w, 4, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed event",
		})
	}
}
