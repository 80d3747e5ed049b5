package delivery

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/marketbackend/lib/mycontext"
	"github.com/MarcGrol/marketbackend/lib/myhttp"
	"github.com/MarcGrol/marketbackend/lib/myhttpclient"
	"github.com/MarcGrol/marketbackend/lib/mylog"
	"github.com/MarcGrol/marketbackend/lib/mytime"
)

type webService struct {
	logger  mylog.Logger
	service *service
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(config Config, sender myhttpclient.HTTPSender, nower mytime.Nower) *webService {
	logger := mylog.New("delivery")
	return &webService{
		logger:  logger,
		service: newService(config, sender, nower, logger),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/api/delivery/check/{pincode}", s.checkServiceabilityPage()).Methods("GET")
	router.HandleFunc("/api/delivery/estimate/{pincode}", s.fallbackEstimatePage()).Methods("GET")
}

func (s *webService) checkServiceabilityPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		pincode := mux.Vars(r)["pincode"]

		estimate, err := s.service.CheckServiceability(c, pincode)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, estimate)
	}
}

func (s *webService) fallbackEstimatePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		pincode := mux.Vars(r)["pincode"]

		estimate, err := s.service.FallbackEstimate(c, pincode)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, estimate)
	}
}
