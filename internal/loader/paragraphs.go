package loader

import (
	"strings"

	"github.com/pdfease/pdfease/backend-go/internal/render"
)

// span is a paragraph-like run of text grouped from raw text items.
type span struct {
	Text   string
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// minSpanChars filters out trivial fragments so the editor is not cluttered
// with one- and two-character elements.
const minSpanChars = 3

// groupParagraphs merges positioned text items into paragraph spans. A new
// line begins when an item's baseline differs from the previous item's by
// more than half the item's height; consecutive items on the same line are
// joined with spaces. Spans of minSpanChars or fewer are discarded.
func groupParagraphs(items []render.TextItem) []span {
	var spans []span
	var current []render.TextItem
	lastY := -1.0
	started := false

	flush := func() {
		if len(current) == 0 {
			return
		}
		first := current[0]
		parts := make([]string, len(current))
		maxRight := first.X
		for i, item := range current {
			parts[i] = item.Str
			if right := item.X + itemWidth(item); right > maxRight {
				maxRight = right
			}
		}
		text := strings.Join(parts, " ")
		if len(strings.TrimSpace(text)) > minSpanChars {
			spans = append(spans, span{
				Text:   text,
				X:      first.X,
				Y:      first.Y,
				Width:  maxRight - first.X,
				Height: itemHeight(first),
			})
		}
		current = current[:0]
	}

	for _, item := range items {
		if strings.TrimSpace(item.Str) == "" {
			continue
		}

		height := itemHeight(item)
		if !started || abs(item.Y-lastY) > height/2 {
			flush()
			started = true
			lastY = item.Y
		}
		current = append(current, item)
	}
	flush()

	return spans
}

func itemHeight(item render.TextItem) float64 {
	if item.Height > 0 {
		return item.Height
	}
	return 12
}

func itemWidth(item render.TextItem) float64 {
	if item.Width > 0 {
		return item.Width
	}
	return float64(len(item.Str)) * 5
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
