package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixAnnotation = "anno"
	PrefixFormField  = "field"
	PrefixSignature  = "sig"
	PrefixElement    = "elem"
	PrefixPage       = "page"
	PrefixSnapshot   = "snap"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewAnnotationID() string { return New(PrefixAnnotation) }
func NewFormFieldID() string  { return New(PrefixFormField) }
func NewSignatureID() string  { return New(PrefixSignature) }
func NewElementID() string    { return New(PrefixElement) }
func NewPageID() string       { return New(PrefixPage) }
func NewSnapshotID() string   { return New(PrefixSnapshot) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
