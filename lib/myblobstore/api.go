package myblobstore

import (
	"context"
)

// URLResolver resolves an opaque storage id into a servable URL.
// Upload and storage itself live in the external object store.
type URLResolver interface {
	ResolveURL(c context.Context, blobUID string) (string, bool, error)
}

func New() URLResolver {
	return newStaticResolver()
}
