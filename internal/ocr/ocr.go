// Package ocr defines the contract for the external OCR engine and its
// Tesseract-backed implementation.
package ocr

import "context"

// Engine recognizes text in a rendered page image (PNG bytes).
type Engine interface {
	Recognize(ctx context.Context, png []byte) (string, error)
}
