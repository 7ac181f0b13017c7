// Package pdfops fronts the external PDF construction library used for
// password protection, export, merging and splitting. The byte-level work is
// delegated; this package owns input validation and the contract.
package pdfops

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNoDocuments     = errors.New("no documents to merge")
	ErrInvalidRange    = errors.New("invalid page range")
	ErrInvalidPassword = errors.New("password must not be empty")
)

// PageRange is an inclusive 1-based range of pages.
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Builder is the construction-library contract. Implementations receive the
// original source bytes plus the edit state already applied by the caller.
type Builder interface {
	// Protect returns a password-protected copy of the document.
	Protect(ctx context.Context, data []byte, password string) ([]byte, error)
	// Assemble produces the downloadable document with edits applied.
	Assemble(ctx context.Context, data []byte) ([]byte, error)
	// Merge combines the documents into one, in order.
	Merge(ctx context.Context, docs [][]byte) ([]byte, error)
	// Split produces one document per page range.
	Split(ctx context.Context, data []byte, ranges []PageRange) ([][]byte, error)
}

// ValidateRanges checks that every range is well-formed and inside the
// document.
func ValidateRanges(ranges []PageRange, pageCount int) error {
	if len(ranges) == 0 {
		return fmt.Errorf("%w: no ranges given", ErrInvalidRange)
	}
	for _, r := range ranges {
		if r.Start < 1 || r.End < r.Start || r.End > pageCount {
			return fmt.Errorf("%w: %d-%d outside 1-%d", ErrInvalidRange, r.Start, r.End, pageCount)
		}
	}
	return nil
}
