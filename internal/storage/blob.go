// Package storage holds the persistent key-value backends. Each backend
// stores one JSON document under a fixed root key.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// DefaultRootKey is the key the timestamp document is stored under.
const DefaultRootKey = "video_timestamps"

var (
	// ErrStorage marks every failure that comes from a backend.
	ErrStorage = errors.New("storage failure")
	// ErrConflict is returned when a conditional write loses to a concurrent writer.
	ErrConflict = errors.New("storage conflict")
)

// Blob is a single JSON document addressed by a root key.
type Blob interface {
	// Load returns the stored document, or nil when nothing is stored yet.
	Load(ctx context.Context) ([]byte, error)
	// Update runs fn on the current document and stores its result. No other
	// Update on the same document interleaves with it. An error from fn
	// aborts the write and is returned as is.
	Update(ctx context.Context, fn func(current []byte) ([]byte, error)) error
}

func wrap(op string, err error) error {
	if errors.Is(err, ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
