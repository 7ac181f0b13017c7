// Package loader turns an uploaded file into the initial state of a document
// session: pages with thumbnails and extracted text, plus editable text
// elements materialized from paragraph spans.
package loader

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"log/slog"
	"strings"

	"github.com/pdfease/pdfease/backend-go/internal/document"
	"github.com/pdfease/pdfease/backend-go/internal/render"
	"github.com/pdfease/pdfease/backend-go/internal/typeid"
)

// thumbBaseScale multiplied by the render quality (1–3) gives the thumbnail
// scale.
const thumbBaseScale = 0.2

const (
	defaultFontSize   = 12.0
	defaultFontFamily = "Arial"
	defaultTextColor  = "#000000"
	minElementWidth   = 50.0
	minElementHeight  = 12.0
)

// Result is the seed state for a fresh session. TotalPages always equals
// len(Pages).
type Result struct {
	Pages      []document.Page
	Elements   []document.Element
	TotalPages int
}

type Loader struct {
	renderer render.Renderer
	quality  int
}

func New(renderer render.Renderer, quality int) *Loader {
	if quality < 1 {
		quality = 1
	}
	if quality > 3 {
		quality = 3
	}
	return &Loader{renderer: renderer, quality: quality}
}

// Load parses the uploaded bytes and walks every page, extracting text and a
// thumbnail and grouping text into editable elements. On failure nothing is
// returned: the caller never sees a partially loaded document.
func (l *Loader) Load(ctx context.Context, data []byte) (*Result, error) {
	doc, err := l.renderer.Open(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer doc.Close()

	result := &Result{}
	thumbScale := thumbBaseScale * float64(l.quality)

	for pageNum := 1; pageNum <= doc.PageCount(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := doc.Page(pageNum)
		if err != nil {
			return nil, fmt.Errorf("get page %d: %w", pageNum, err)
		}

		items, err := page.TextContent()
		if err != nil {
			return nil, fmt.Errorf("text content of page %d: %w", pageNum, err)
		}

		result.Pages = append(result.Pages, document.Page{
			ID:          typeid.NewPageID(),
			PageNumber:  pageNum,
			Thumbnail:   l.thumbnail(ctx, page, pageNum, thumbScale),
			TextContent: joinText(items),
		})

		for _, sp := range groupParagraphs(items) {
			result.Elements = append(result.Elements, document.Element{
				ID:         typeid.NewElementID(),
				PageNumber: pageNum,
				Type:       document.ElementText,
				Content:    sp.Text,
				X:          sp.X,
				Y:          sp.Y,
				Width:      max(sp.Width, minElementWidth),
				Height:     max(sp.Height, minElementHeight),
				FontSize:   defaultFontSize,
				FontFamily: defaultFontFamily,
				Color:      defaultTextColor,
			})
		}
	}

	result.TotalPages = len(result.Pages)
	return result, nil
}

// thumbnail renders a page preview as a PNG data URL. A render failure is
// not fatal to the load: the page falls back to a placeholder.
func (l *Loader) thumbnail(ctx context.Context, page render.Page, pageNum int, scale float64) string {
	img, err := page.Render(ctx, scale)
	if err != nil {
		if !render.Canceled(err) {
			slog.Warn("thumbnail render failed", "page", pageNum, "error", err)
		}
		return document.PlaceholderThumbnail(pageNum)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		slog.Warn("thumbnail encode failed", "page", pageNum, "error", err)
		return document.PlaceholderThumbnail(pageNum)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func joinText(items []render.TextItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Str) == "" {
			continue
		}
		parts = append(parts, item.Str)
	}
	return strings.Join(parts, " ")
}
