// Package render wraps the external PDF rendering library behind an opaque
// document-handle contract: the rest of the codebase never touches PDF bytes
// directly.
package render

import (
	"context"
	"errors"
	"image"
)

// ErrBadDocument is returned when the rendering library rejects the input as
// not being a well-formed PDF.
var ErrBadDocument = errors.New("document cannot be parsed")

// TextItem is one positioned run of text on a page, in page-local
// coordinates.
type TextItem struct {
	Str    string
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Viewport is the page box at a given scale.
type Viewport struct {
	Width  float64
	Height float64
}

// Renderer opens raw bytes into a document handle.
type Renderer interface {
	Open(ctx context.Context, data []byte) (Document, error)
}

// Document is an opaque handle over a parsed PDF.
type Document interface {
	PageCount() int
	Page(pageNumber int) (Page, error) // 1-based
	Close() error
}

// Page renders and extracts one page. Render honors context cancellation:
// a superseded render returns ctx.Err() and must not be treated as a
// failure.
type Page interface {
	Viewport(scale float64) Viewport
	Render(ctx context.Context, scale float64) (image.Image, error)
	TextContent() ([]TextItem, error)
}
