package document

import (
	"fmt"

	"github.com/pdfease/pdfease/backend-go/internal/typeid"
)

// NewBlankPage creates an empty page at the given 1-based position with a
// placeholder thumbnail.
func NewBlankPage(pageNumber int) Page {
	return Page{
		ID:         typeid.NewPageID(),
		PageNumber: pageNumber,
		Thumbnail:  PlaceholderThumbnail(pageNumber),
	}
}

// PlaceholderThumbnail is used when a page has no rendered preview, such as
// blank pages or pages whose render failed.
func PlaceholderThumbnail(pageNumber int) string {
	return fmt.Sprintf("/placeholder.svg?height=150&width=100&text=Page %d", pageNumber)
}
