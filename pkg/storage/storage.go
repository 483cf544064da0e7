// Package storage reads key material from a local directory or an S3 bucket.
// The session daemon never writes through it: nothing it fetches is persisted
// beyond the process.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested path does not exist in storage.
var ErrNotFound = errors.New("not found")

// Storage is a read-only, key-value style view over files.
type Storage interface {
	Read(ctx context.Context, path string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}
