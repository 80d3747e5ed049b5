package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/MarcGrol/marketbackend/lib/myhttpclient"
)

const defaultOracleBaseURL = "https://track.delhivery.com"

// oracleResult is what the serviceability oracle told us about one pincode.
// found=false means the oracle answered but has no coverage for the pincode.
type oracleResult struct {
	found          bool
	courierPartner string
	cashOnDelivery bool
	district       string
	state          string
}

type oracleClient struct {
	baseURL string
	apiKey  string
	sender  myhttpclient.HTTPSender
}

func newOracleClient(baseURL string, apiKey string, sender myhttpclient.HTTPSender) *oracleClient {
	if baseURL == "" {
		baseURL = defaultOracleBaseURL
	}
	return &oracleClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		sender:  sender,
	}
}

// Response shape of the Delhivery pincode API.
type pincodeResponse struct {
	DeliveryCodes []struct {
		PostalCode struct {
			Pin          int    `json:"pin"`
			COD          string `json:"cod"`
			District     string `json:"district"`
			DistrictName string `json:"district_name"`
			State        string `json:"state"`
			StateCode    string `json:"state_code"`
		} `json:"postal_code"`
	} `json:"delivery_codes"`
}

func (o oracleClient) checkPincode(c context.Context, pincode string) (oracleResult, error) {
	requestURL := fmt.Sprintf("%s/c/api/pin-codes/json/?filter_codes=%s", o.baseURL, url.QueryEscape(pincode))
	headers := map[string]string{
		"Authorization": fmt.Sprintf("Token %s", o.apiKey),
	}

	httpStatus, respPayload, err := o.sender.Send(c, http.MethodGet, requestURL, headers, nil)
	if err != nil {
		return oracleResult{}, fmt.Errorf("error calling serviceability oracle: %s", err)
	}
	if httpStatus != http.StatusOK {
		return oracleResult{}, fmt.Errorf("serviceability oracle responded %d", httpStatus)
	}

	resp := pincodeResponse{}
	err = json.Unmarshal(respPayload, &resp)
	if err != nil {
		return oracleResult{}, fmt.Errorf("error parsing oracle response: %s", err)
	}

	if len(resp.DeliveryCodes) == 0 || resp.DeliveryCodes[0].PostalCode.Pin == 0 {
		return oracleResult{found: false}, nil
	}

	code := resp.DeliveryCodes[0].PostalCode

	district := code.District
	if district == "" {
		district = code.DistrictName
	}
	state := code.State
	if state == "" {
		state = code.StateCode
	}

	return oracleResult{
		found:          true,
		courierPartner: "Delhivery",
		cashOnDelivery: code.COD == "Y",
		district:       district,
		state:          state,
	}, nil
}
