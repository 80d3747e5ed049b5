package delivery

import (
	"context"
	"fmt"
	"regexp"

	"github.com/MarcGrol/marketbackend/lib/myerrors"
	"github.com/MarcGrol/marketbackend/lib/myhttpclient"
	"github.com/MarcGrol/marketbackend/lib/mylog"
	"github.com/MarcGrol/marketbackend/lib/mytime"
)

type Config struct {
	OracleBaseURL string
	OracleAPIKey  string
	OriginPincode string
}

type service struct {
	config Config
	oracle *oracleClient
	nower  mytime.Nower
	logger mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(config Config, sender myhttpclient.HTTPSender, nower mytime.Nower, logger mylog.Logger) *service {
	return &service{
		config: config,
		oracle: newOracleClient(config.OracleBaseURL, config.OracleAPIKey, sender),
		nower:  nower,
		logger: logger,
	}
}

var pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// CheckServiceability answers whether the courier can deliver to the given
// pincode. Oracle degradation is a normal outcome, not an error: the only
// error this returns is a malformed pincode.
func (s *service) CheckServiceability(c context.Context, destinationPincode string) (Estimate, error) {
	if !pincodePattern.MatchString(destinationPincode) {
		return Estimate{}, myerrors.NewInvalidInputError(fmt.Errorf("pincode %q: %w", destinationPincode, ErrInvalidPincode))
	}

	if s.config.OracleAPIKey == "" {
		s.logger.Log(c, destinationPincode, mylog.SeverityWarn, "Serviceability oracle not configured")
		return Estimate{
			Status:  StatusUnavailable,
			Message: "Delivery check is currently unavailable. Please try again later.",
		}, nil
	}

	result, err := s.oracle.checkPincode(c, destinationPincode)
	if err != nil {
		// Absorb the failure: the caller renders "unavailable", not an error page
		s.logger.Log(c, destinationPincode, mylog.SeverityWarn, "Serviceability oracle failed: %s", err)
		return Estimate{
			Status:  StatusUnavailable,
			Message: "Unable to reach the delivery service. Please try again later.",
		}, nil
	}

	if !result.found {
		return Estimate{
			Status:  StatusNotServiceable,
			Message: fmt.Sprintf("Delivery to pincode %s is not available yet.", destinationPincode),
		}, nil
	}

	now := s.nower.Now()
	days := estimateDays(s.config.OriginPincode, destinationPincode, now)

	return Estimate{
		Status:         StatusServiceable,
		CourierPartner: result.courierPartner,
		CashOnDelivery: result.cashOnDelivery,
		District:       result.district,
		State:          result.state,
		EstimatedDays:  days,
		EstimatedDate:  estimateDate(now, days),
	}, nil
}

// FallbackEstimate is the offline path: no oracle involved, always
// serviceable, derived from the pincode distance alone.
func (s *service) FallbackEstimate(c context.Context, destinationPincode string) (Estimate, error) {
	if !pincodePattern.MatchString(destinationPincode) {
		return Estimate{}, myerrors.NewInvalidInputError(fmt.Errorf("pincode %q: %w", destinationPincode, ErrInvalidPincode))
	}

	now := s.nower.Now()
	days := estimateDays(s.config.OriginPincode, destinationPincode, now)

	return Estimate{
		Status:        StatusServiceable,
		EstimatedDays: days,
		EstimatedDate: estimateDate(now, days),
	}, nil
}
