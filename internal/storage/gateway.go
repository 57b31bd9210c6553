// Package storage abstracts the remote object store holding source documents
// and extracted results.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound reports that no object exists at the requested key.
var ErrNotFound = errors.New("object not found")

// TransientError wraps a storage failure that is not a definite "not found":
// network errors, provider 5xx responses, timeouts.
type TransientError struct {
	Op     string // "fetch" or "upload"
	Key    string
	Status int // HTTP status when available, 0 otherwise
	Err    error
}

func (e *TransientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("storage %s %q: unexpected status %d", e.Op, e.Key, e.Status)
	}
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Gateway moves document bytes between the service and the object store.
// Implementations must be safe for concurrent use; batch extraction issues
// parallel transfers through a single shared instance.
type Gateway interface {
	// Fetch downloads the document stored at key. It returns ErrNotFound
	// (possibly wrapped) when the document does not exist and a
	// *TransientError for any other failure.
	Fetch(ctx context.Context, key string) ([]byte, error)

	// Upload writes body to the results bucket under key and returns the key
	// the object is reachable at.
	Upload(ctx context.Context, key string, body []byte) (string, error)
}
