package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/marketbackend/lib/myblobstore"
	"github.com/MarcGrol/marketbackend/lib/myhttpclient"
	"github.com/MarcGrol/marketbackend/lib/myidentity"
	"github.com/MarcGrol/marketbackend/lib/mypublisher"
	"github.com/MarcGrol/marketbackend/lib/mypubsub"
	"github.com/MarcGrol/marketbackend/lib/myqueue"
	"github.com/MarcGrol/marketbackend/lib/mystore"
	"github.com/MarcGrol/marketbackend/lib/mytime"
	"github.com/MarcGrol/marketbackend/lib/myuuid"
	"github.com/MarcGrol/marketbackend/services/catalog"
	"github.com/MarcGrol/marketbackend/services/delivery"
	"github.com/MarcGrol/marketbackend/services/invoice"
	"github.com/MarcGrol/marketbackend/services/order"
	"github.com/MarcGrol/marketbackend/services/warmup"
)

func main() {
	c := context.Background()

	router := mux.NewRouter()

	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}
	identity := myidentity.New()

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}
	defer pubsubCleanup()

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		log.Fatalf("Error creating task queue: %s", err)
	}
	defer queueCleanup()

	publisher, publisherCleanup, err := mypublisher.New(c, pubsub, queue, nower)
	if err != nil {
		log.Fatalf("Error creating publisher: %s", err)
	}
	defer publisherCleanup()
	publisher.RegisterEndpoints(c, router)

	productStore, productStoreCleanup, err := mystore.New[catalog.Product](c)
	if err != nil {
		log.Fatalf("Error creating product store: %s", err)
	}
	defer productStoreCleanup()

	storeStore, storeStoreCleanup, err := mystore.New[catalog.Store](c)
	if err != nil {
		log.Fatalf("Error creating store store: %s", err)
	}
	defer storeStoreCleanup()

	catalogService := catalog.NewService(productStore, storeStore, nower, uuider)
	catalogService.RegisterEndpoints(c, router)

	deliveryService := delivery.NewService(delivery.Config{
		OracleBaseURL: os.Getenv("DELHIVERY_BASE_URL"),
		OracleAPIKey:  os.Getenv("DELHIVERY_API_KEY"),
		OriginPincode: originPincode(),
	}, myhttpclient.New(), nower)
	deliveryService.RegisterEndpoints(c, router)

	orderStore, orderStoreCleanup, err := mystore.New[order.Order](c)
	if err != nil {
		log.Fatalf("Error creating order store: %s", err)
	}
	defer orderStoreCleanup()

	orderService := order.NewService(orderStore, catalogService.Accessor(), publisher, identity, nower, uuider)
	orderService.RegisterEndpoints(c, router)

	invoiceStore, invoiceStoreCleanup, err := mystore.New[invoice.Invoice](c)
	if err != nil {
		log.Fatalf("Error creating invoice store: %s", err)
	}
	defer invoiceStoreCleanup()

	sequenceStore, sequenceStoreCleanup, err := mystore.New[invoice.Sequence](c)
	if err != nil {
		log.Fatalf("Error creating invoice sequence store: %s", err)
	}
	defer sequenceStoreCleanup()

	invoiceService := invoice.NewService(invoiceStore, sequenceStore, orderStore, catalogService.Accessor(), pubsub, myblobstore.New(), identity, nower, uuider)
	invoiceService.RegisterEndpoints(c, router)

	warmupService := warmup.NewService(productStore)
	warmupService.RegisterEndpoints(c, router)

	err = invoiceService.Subscribe(c)
	if err != nil {
		log.Fatalf("Error subscribing invoice service: %s", err)
	}

	startWebServerBlocking(router)
}

func originPincode() string {
	pincode := os.Getenv("ORIGIN_PINCODE")
	if pincode == "" {
		pincode = "110001"
	}
	return pincode
}

func startWebServerBlocking(router *mux.Router) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
