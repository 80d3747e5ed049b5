package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/marketbackend/lib/mycontext"
	"github.com/MarcGrol/marketbackend/lib/myerrors"
	"github.com/MarcGrol/marketbackend/lib/myhttp"
	"github.com/MarcGrol/marketbackend/lib/mylog"
	"github.com/MarcGrol/marketbackend/lib/mystore"
	"github.com/MarcGrol/marketbackend/lib/mytime"
	"github.com/MarcGrol/marketbackend/lib/myuuid"
)

type webService struct {
	logger  mylog.Logger
	service *service
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(productStore mystore.Store[Product], storeStore mystore.Store[Store], nower mytime.Nower, uuider myuuid.UUIDer) *webService {
	logger := mylog.New("catalog")
	return &webService{
		logger:  logger,
		service: newService(productStore, storeStore, nower, uuider, logger),
	}
}

// Accessor exposes the read/decrement surface to the other services.
func (s *webService) Accessor() Accessor {
	return s.service
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/api/store", s.upsertStorePage()).Methods("PUT")
	router.HandleFunc("/api/store/{storeUID}", s.getStorePage()).Methods("GET")
	router.HandleFunc("/api/product", s.upsertProductPage()).Methods("PUT")
	router.HandleFunc("/api/product/{productUID}", s.getProductPage()).Methods("GET")
	router.HandleFunc("/api/products", s.listProductsPage()).Methods("GET")
}

func (s *webService) upsertStorePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		store := Store{}
		err := json.NewDecoder(r.Body).Decode(&store)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error parsing store: %s", err)))
			return
		}

		store, err = s.service.upsertStore(c, store)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, store)
	}
}

func (s *webService) getStorePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		storeUID := mux.Vars(r)["storeUID"]

		store, err := s.service.getStoreOrError(c, storeUID)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, store)
	}
}

func (s *webService) upsertProductPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		product := Product{}
		err := json.NewDecoder(r.Body).Decode(&product)
		if err != nil {
			errorWriter.WriteError(c, w, 4, myerrors.NewInvalidInputError(fmt.Errorf("error parsing product: %s", err)))
			return
		}

		product, err = s.service.upsertProduct(c, product)
		if err != nil {
			errorWriter.WriteError(c, w, 5, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, product)
	}
}

func (s *webService) getProductPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		productUID := mux.Vars(r)["productUID"]

		product, err := s.service.getProductOrError(c, productUID)
		if err != nil {
			errorWriter.WriteError(c, w, 6, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, product)
	}
}

func (s *webService) listProductsPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		storeUID := r.URL.Query().Get("storeUid")

		products, err := s.service.listProducts(c, storeUID)
		if err != nil {
			errorWriter.WriteError(c, w, 7, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, products)
	}
}
