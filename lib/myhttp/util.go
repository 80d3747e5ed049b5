package myhttp

import (
	"fmt"
	"net/http"
	"os"
)

// GuessHostnameWithScheme derives our own externally reachable base URL
// without having a request at hand. Used for pubsub push subscriptions.
func GuessHostnameWithScheme() string {
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID != "" {
		return fmt.Sprintf("https://%s.appspot.com", projectID)
	}
	return "http://localhost:8080"
}

func HostnameWithScheme(r *http.Request) string {
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}
