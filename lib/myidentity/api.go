package myidentity

import (
	"net/http"
)

// Provider abstracts the external authentication system. It only tells
// us who the caller is; an empty uid means "not logged in".
type Provider interface {
	UserIDFromRequest(r *http.Request) string
}

func New() Provider {
	return newHeaderProvider()
}
