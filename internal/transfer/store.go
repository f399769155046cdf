// Package transfer hands grids from the upload step to the viewing step.
//
// A [Channel] stores the canonical JSON form of one grid per session in a
// [BlobStore]. A missing value is a normal state meaning "start from an
// empty grid", not an error.
package transfer

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by BlobStore.Get when the key is absent or expired.
var ErrNotFound = errors.New("blob not found")

// BlobStore is an opaque key-value store for serialized grids.
type BlobStore interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Purge removes expired entries and reports how many were removed.
	Purge(ctx context.Context) (int, error)
}

// DefaultTTL is how long a stored grid lives without being rewritten.
const DefaultTTL = 24 * time.Hour
