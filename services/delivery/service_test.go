package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/marketbackend/lib/myhttpclient"
	"github.com/MarcGrol/marketbackend/lib/mylog"
	"github.com/MarcGrol/marketbackend/lib/mytime"
)

const (
	originPincode      = "110001"
	destinationPincode = "122001"
)

func TestCheckServiceability(t *testing.T) {

	t.Run("Invalid pincode is rejected without calling the oracle", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup: no expectations on the sender: any call would fail the test
		_, sender, sut := setup(t, ctrl, "test-key")
		_ = sender

		// when
		_, err := sut.CheckServiceability(context.TODO(), "12345")

		// then
		assert.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidPincode))
	})

	t.Run("Missing credential degrades to unavailable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, _, sut := setup(t, ctrl, "")

		// when
		estimate, err := sut.CheckServiceability(context.TODO(), destinationPincode)

		// then
		assert.NoError(t, err)
		assert.Equal(t, StatusUnavailable, estimate.Status)
		assert.NotEmpty(t, estimate.Message)

		// an unavailable estimate has no date to show
		payload, err := json.Marshal(estimate)
		assert.NoError(t, err)
		assert.NotContains(t, string(payload), "EstimatedDate")
	})

	t.Run("Matched pincode is serviceable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		nower, sender, sut := setup(t, ctrl, "test-key")

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		sender.EXPECT().Send(gomock.Any(), http.MethodGet,
			"https://track.delhivery.com/c/api/pin-codes/json/?filter_codes=122001",
			map[string]string{"Authorization": "Token test-key"}, gomock.Nil()).
			Return(http.StatusOK, []byte(`{
				"delivery_codes": [
					{"postal_code": {"pin": 122001, "cod": "Y", "district": "Gurgaon", "state_code": "HR"}}
				]
			}`), nil)

		// when
		estimate, err := sut.CheckServiceability(context.TODO(), destinationPincode)

		// then
		assert.NoError(t, err)
		assert.Equal(t, StatusServiceable, estimate.Status)
		assert.Equal(t, "Delhivery", estimate.CourierPartner)
		assert.True(t, estimate.CashOnDelivery)
		assert.Equal(t, "Gurgaon", estimate.District)
		assert.Equal(t, "HR", estimate.State)
		assert.Equal(t, 2, estimate.EstimatedDays)
		assert.Equal(t, time.Date(2023, time.March, 1, 23, 58, 59, 0, time.UTC), estimate.EstimatedDate)
	})

	t.Run("Unmatched pincode is not serviceable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, sender, sut := setup(t, ctrl, "test-key")

		// given
		sender.EXPECT().Send(gomock.Any(), http.MethodGet, gomock.Any(), gomock.Any(), gomock.Nil()).
			Return(http.StatusOK, []byte(`{"delivery_codes": []}`), nil)

		// when
		estimate, err := sut.CheckServiceability(context.TODO(), destinationPincode)

		// then
		assert.NoError(t, err)
		assert.Equal(t, StatusNotServiceable, estimate.Status)
		assert.NotEmpty(t, estimate.Message)
	})

	t.Run("Oracle error response degrades to unavailable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, sender, sut := setup(t, ctrl, "test-key")

		// given
		sender.EXPECT().Send(gomock.Any(), http.MethodGet, gomock.Any(), gomock.Any(), gomock.Nil()).
			Return(http.StatusBadGateway, []byte{}, nil)

		// when
		estimate, err := sut.CheckServiceability(context.TODO(), destinationPincode)

		// then
		assert.NoError(t, err)
		assert.Equal(t, StatusUnavailable, estimate.Status)
	})

	t.Run("Oracle transport failure degrades to unavailable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, sender, sut := setup(t, ctrl, "test-key")

		// given
		sender.EXPECT().Send(gomock.Any(), http.MethodGet, gomock.Any(), gomock.Any(), gomock.Nil()).
			Return(0, []byte{}, errors.New("connection refused"))

		// when
		estimate, err := sut.CheckServiceability(context.TODO(), destinationPincode)

		// then
		assert.NoError(t, err)
		assert.Equal(t, StatusUnavailable, estimate.Status)
	})
}

func TestFallbackEstimate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// setup: fallback never touches the oracle
	nower, _, sut := setup(t, ctrl, "")

	// given
	nower.EXPECT().Now().Return(mytime.ExampleTime)

	// when
	estimate, err := sut.FallbackEstimate(context.TODO(), destinationPincode)

	// then
	assert.NoError(t, err)
	assert.Equal(t, StatusServiceable, estimate.Status)
	assert.Equal(t, 2, estimate.EstimatedDays)
}

func setup(t *testing.T, ctrl *gomock.Controller, apiKey string) (*mytime.MockNower, *myhttpclient.MockHTTPSender, *service) {
	nower := mytime.NewMockNower(ctrl)
	sender := myhttpclient.NewMockHTTPSender(ctrl)

	sut := newService(Config{
		OracleAPIKey:  apiKey,
		OriginPincode: originPincode,
	}, sender, nower, mylog.New("delivery"))

	return nower, sender, sut
}
