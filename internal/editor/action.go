package editor

import "github.com/pdfease/pdfease/backend-go/internal/document"

type ActionType string

const (
	ActionAdd    ActionType = "add"
	ActionUpdate ActionType = "update"
	ActionDelete ActionType = "delete"
)

type ActionTarget string

const (
	TargetAnnotation ActionTarget = "annotation"
	TargetFormField  ActionTarget = "formField"
	TargetSignature  ActionTarget = "signature"
	TargetElement    ActionTarget = "element"
	TargetPage       ActionTarget = "page"
)

// ElementChange carries both sides of an element update so the action can be
// replayed in either direction.
type ElementChange struct {
	Previous document.Element `json:"previousState"`
	New      document.Element `json:"newState"`
}

// PageRemoval carries everything needed to reverse a page delete: the page
// value as it was before renumbering, plus the overlay entities that were
// attached to it and removed along with it.
type PageRemoval struct {
	Page        document.Page         `json:"page"`
	Annotations []document.Annotation `json:"annotations,omitempty"`
	FormFields  []document.FormField  `json:"formFields,omitempty"`
	Signatures  []document.Signature  `json:"signatures,omitempty"`
	Elements    []document.Element    `json:"elements,omitempty"`
}

// Action is one entry in the undo/redo log. Type and Target discriminate
// which payload field is set:
//
//	add/delete + annotation|formField|signature|element → the entity value
//	update + element                                    → Change
//	add + page                                          → Page
//	delete + page                                       → Removal
type Action struct {
	Type   ActionType   `json:"type"`
	Target ActionTarget `json:"target"`
	ID     string       `json:"id,omitempty"`

	Annotation *document.Annotation `json:"annotation,omitempty"`
	FormField  *document.FormField  `json:"formField,omitempty"`
	Signature  *document.Signature  `json:"signature,omitempty"`
	Element    *document.Element    `json:"element,omitempty"`
	Change     *ElementChange       `json:"change,omitempty"`
	Page       *document.Page       `json:"page,omitempty"`
	Removal    *PageRemoval         `json:"removal,omitempty"`
}
