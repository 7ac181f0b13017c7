// Package source keeps the original uploaded PDF bytes for each document.
// The edit state never rewrites these; they feed download, merge, split and
// OCR.
package source

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("source file not found")

// File is an immutable uploaded document.
type File struct {
	Name string
	Data []byte
}

// Store persists source files keyed by document id.
type Store interface {
	Put(ctx context.Context, documentID string, file File) error
	Get(ctx context.Context, documentID string) (File, error)
	Delete(ctx context.Context, documentID string) error
}
