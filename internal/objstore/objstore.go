// Package objstore stores attachment blobs. Objects are addressed by a
// path of the form {domain}/{userId}/{filename} and uploads return a
// durable public URL.
package objstore

import "context"

// Store is the remote object storage as seen by upload adapters and the
// sync engine.
type Store interface {
	Upload(ctx context.Context, path, contentType string, data []byte) (string, error)
}
