package editor

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdfease/pdfease/backend-go/internal/document"
)

const (
	minZoom = 25
	maxZoom = 400
)

// Session holds the authoritative edit state for one open document: its
// pages, the four overlay collections and the action log. All mutations are
// serialized through the session mutex; no two interleave.
type Session struct {
	mu sync.Mutex

	documentID string
	name       string
	sourceSize int64

	currentPage   int
	zoom          int
	renderQuality int

	pages       []document.Page
	annotations []document.Annotation
	formFields  []document.FormField
	signatures  []document.Signature
	elements    []document.Element

	history []Action
	cursor  int // index of the last applied action, -1 when nothing to undo

	onChange func()
}

// NewSession creates an empty session for a freshly loaded document.
func NewSession(documentID, name string, sourceSize int64) *Session {
	return &Session{
		documentID:    documentID,
		name:          name,
		sourceSize:    sourceSize,
		currentPage:   1,
		zoom:          100,
		renderQuality: 2,
		cursor:        -1,
	}
}

// NewDocumentID generates a document identifier of the form
// <unix-milli>-<random-suffix>.
func NewDocumentID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.New().String()[:8])
}

func (s *Session) DocumentID() string { return s.documentID }
func (s *Session) Name() string       { return s.name }

// SetOnChange registers a callback invoked after every state change,
// including undo/redo. The callback runs with the session lock held and must
// not call back into the session synchronously; it is meant to poke a
// debounced saver.
func (s *Session) SetOnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *Session) notifyLocked() {
	if s.onChange != nil {
		s.onChange()
	}
}

// Seed replaces the page and element collections with the output of the load
// pipeline and clears the history. Used once per load.
func (s *Session) Seed(pages []document.Page, elements []document.Element) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pages = append([]document.Page(nil), pages...)
	s.elements = append([]document.Element(nil), elements...)
	s.annotations = nil
	s.formFields = nil
	s.signatures = nil
	s.history = nil
	s.cursor = -1
	s.currentPage = 1
}

// Snapshot assembles the persisted form of the session. The action log is
// not part of the snapshot.
func (s *Session) Snapshot() document.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return document.Snapshot{
		ID:           s.documentID,
		Name:         s.name,
		LastModified: time.Now().UnixMilli(),
		Pages:        append([]document.Page(nil), s.pages...),
		Annotations:  append([]document.Annotation(nil), s.annotations...),
		FormFields:   append([]document.FormField(nil), s.formFields...),
		Signatures:   append([]document.Signature(nil), s.signatures...),
		Elements:     append([]document.Element(nil), s.elements...),
		TotalPages:   len(s.pages),
	}
}

// Restore replaces the session state wholesale from a stored snapshot and
// resets the action log: loading a snapshot is not itself undoable.
func (s *Session) Restore(snap document.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documentID = snap.ID
	s.name = snap.Name
	s.pages = append([]document.Page(nil), snap.Pages...)
	s.annotations = append([]document.Annotation(nil), snap.Annotations...)
	s.formFields = append([]document.FormField(nil), snap.FormFields...)
	s.signatures = append([]document.Signature(nil), snap.Signatures...)
	s.elements = append([]document.Element(nil), snap.Elements...)
	s.history = nil
	s.cursor = -1
	s.currentPage = 1
}

// State is the JSON view of a session returned to the client.
type State struct {
	DocumentID    string                `json:"documentId"`
	Name          string                `json:"name"`
	CurrentPage   int                   `json:"currentPage"`
	TotalPages    int                   `json:"totalPages"`
	Zoom          int                   `json:"zoom"`
	RenderQuality int                   `json:"renderQuality"`
	Pages         []document.Page       `json:"pages"`
	Annotations   []document.Annotation `json:"annotations"`
	FormFields    []document.FormField  `json:"formFields"`
	Signatures    []document.Signature  `json:"signatures"`
	Elements      []document.Element    `json:"elements"`
	CanUndo       bool                  `json:"canUndo"`
	CanRedo       bool                  `json:"canRedo"`
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		DocumentID:    s.documentID,
		Name:          s.name,
		CurrentPage:   s.currentPage,
		TotalPages:    len(s.pages),
		Zoom:          s.zoom,
		RenderQuality: s.renderQuality,
		Pages:         append([]document.Page{}, s.pages...),
		Annotations:   append([]document.Annotation{}, s.annotations...),
		FormFields:    append([]document.FormField{}, s.formFields...),
		Signatures:    append([]document.Signature{}, s.signatures...),
		Elements:      append([]document.Element{}, s.elements...),
		CanUndo:       s.cursor >= 0,
		CanRedo:       s.cursor < len(s.history)-1,
	}
}

// SetView updates the non-undoable view state. Nil fields are left alone;
// values are clamped to valid ranges.
func (s *Session) SetView(currentPage, zoom, renderQuality *int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if currentPage != nil {
		p := *currentPage
		if p < 1 {
			p = 1
		}
		if n := len(s.pages); n > 0 && p > n {
			p = n
		}
		s.currentPage = p
	}
	if zoom != nil {
		z := *zoom
		if z < minZoom {
			z = minZoom
		}
		if z > maxZoom {
			z = maxZoom
		}
		s.zoom = z
	}
	if renderQuality != nil {
		q := *renderQuality
		if q < 1 {
			q = 1
		}
		if q > 3 {
			q = 3
		}
		s.renderQuality = q
	}
}

func (s *Session) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage
}

func (s *Session) RenderQuality() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderQuality
}

func (s *Session) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// SetPageText backfills a page's extracted text, typically after OCR of a
// scanned page. It is view-like state: no history entry is recorded, but the
// change is persisted.
func (s *Session) SetPageText(pageNumber int, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.pages {
		if s.pages[i].PageNumber == pageNumber {
			s.pages[i].TextContent = text
			s.notifyLocked()
			return true
		}
	}
	return false
}

func (s *Session) Pages() []document.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]document.Page(nil), s.pages...)
}

func (s *Session) Annotations() []document.Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]document.Annotation(nil), s.annotations...)
}

func (s *Session) FormFields() []document.FormField {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]document.FormField(nil), s.formFields...)
}

func (s *Session) Signatures() []document.Signature {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]document.Signature(nil), s.signatures...)
}

func (s *Session) Elements() []document.Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]document.Element(nil), s.elements...)
}
