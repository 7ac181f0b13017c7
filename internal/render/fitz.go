package render

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/gen2brain/go-fitz"
)

const (
	baseDPI = 72.0

	// Approximate metrics for per-line text items. MuPDF exposes plain page
	// text only, so runs are positioned line by line with estimated
	// dimensions rather than true glyph boxes.
	approxLineHeight = 12.0
	approxCharWidth  = 5.0
)

// FitzRenderer implements the rendering contract on top of MuPDF via
// go-fitz.
type FitzRenderer struct{}

func NewFitzRenderer() *FitzRenderer {
	return &FitzRenderer{}
}

func (*FitzRenderer) Open(_ context.Context, data []byte) (Document, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDocument, err)
	}
	return &fitzDocument{doc: doc}, nil
}

type fitzDocument struct {
	doc *fitz.Document
}

func (d *fitzDocument) PageCount() int {
	return d.doc.NumPage()
}

func (d *fitzDocument) Page(pageNumber int) (Page, error) {
	if pageNumber < 1 || pageNumber > d.doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range [1, %d]", pageNumber, d.doc.NumPage())
	}
	return &fitzPage{doc: d.doc, index: pageNumber - 1}, nil
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}

type fitzPage struct {
	doc   *fitz.Document
	index int // 0-based
}

func (p *fitzPage) Viewport(scale float64) Viewport {
	bound, err := p.doc.Bound(p.index)
	if err != nil {
		return Viewport{}
	}
	return Viewport{
		Width:  float64(bound.Dx()) * scale,
		Height: float64(bound.Dy()) * scale,
	}
}

func (p *fitzPage) Render(ctx context.Context, scale float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := p.doc.ImageDPI(p.index, baseDPI*scale)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", p.index+1, err)
	}

	// The library call is synchronous; if the task was superseded while it
	// ran, discard the output rather than hand back a stale frame.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return img, nil
}

func (p *fitzPage) TextContent() ([]TextItem, error) {
	text, err := p.doc.Text(p.index)
	if err != nil {
		return nil, fmt.Errorf("extract text from page %d: %w", p.index+1, err)
	}

	var items []TextItem
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}
		items = append(items, TextItem{
			Str:    line,
			X:      0,
			Y:      float64(i) * approxLineHeight,
			Width:  float64(len(line)) * approxCharWidth,
			Height: approxLineHeight,
		})
	}
	return items, nil
}
