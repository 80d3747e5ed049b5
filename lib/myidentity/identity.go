package myidentity

import (
	"net/http"
)

// The actual authentication happens upstream (IAP or API-gateway); by the
// time a request reaches us, the authenticated user id is carried in a header.
const userIDHeader = "X-Authenticated-User-Id"

type headerProvider struct {
}

func newHeaderProvider() Provider {
	return &headerProvider{}
}

func (p headerProvider) UserIDFromRequest(r *http.Request) string {
	return r.Header.Get(userIDHeader)
}
