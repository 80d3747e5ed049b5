package myblobstore

import (
	"context"
	"fmt"
	"os"
)

type staticResolver struct {
	baseURL string
}

func newStaticResolver() URLResolver {
	baseURL := os.Getenv("BLOB_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080/blob"
	}
	return &staticResolver{
		baseURL: baseURL,
	}
}

func (r staticResolver) ResolveURL(c context.Context, blobUID string) (string, bool, error) {
	if blobUID == "" {
		return "", false, nil
	}
	return fmt.Sprintf("%s/%s", r.baseURL, blobUID), true, nil
}
