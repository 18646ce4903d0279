// Package storage implements the blob store backing uploaded media.
package storage

import (
	"context"
	"errors"
)

// BlobStore is the contract the content workflows depend on. Create persists
// raw bytes and hands back an opaque id; ViewURL derives (and may lazily
// materialize) a servable preview for that id; Delete removes the blob and
// everything derived from it.
type BlobStore interface {
	Create(ctx context.Context, filename string, content []byte) (string, error)
	ViewURL(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
}

// ErrBlobNotFound is returned when an id does not resolve to a stored blob.
var ErrBlobNotFound = errors.New("blob not found")

// ErrInvalidImage is returned when uploaded bytes are not a decodable image
// of an allowed format.
var ErrInvalidImage = errors.New("invalid image file")

// ErrBlobTooLarge is returned when an upload exceeds the configured limit.
var ErrBlobTooLarge = errors.New("file too large")
