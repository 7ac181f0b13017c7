package editor

import (
	"github.com/pdfease/pdfease/backend-go/internal/document"
)

// AddBlankPage appends an empty page numbered len+1 and records the action.
func (s *Session) AddBlankPage() document.Page {
	s.mu.Lock()
	defer s.mu.Unlock()

	page := document.NewBlankPage(len(s.pages) + 1)
	s.pages = append(s.pages, page)
	s.record(Action{Type: ActionAdd, Target: TargetPage, Page: &page})
	s.notifyLocked()
	return page
}

// DeletePage removes the page at the given 1-based position. A document must
// always keep at least one page: deleting the last remaining page is a no-op
// that records nothing, as is deleting an unknown page number.
//
// Overlay entities attached to the deleted page are removed along with it
// and restored on undo; entities on later pages have their pageNumber shifted
// down in step with page renumbering so they keep referencing the same
// content.
func (s *Session) DeletePage(pageNumber int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pages) <= 1 {
		return false
	}

	var page *document.Page
	for i := range s.pages {
		if s.pages[i].PageNumber == pageNumber {
			page = &s.pages[i]
			break
		}
	}
	if page == nil {
		return false
	}

	removal := PageRemoval{Page: *page}
	for _, a := range s.annotations {
		if a.PageNumber == pageNumber {
			removal.Annotations = append(removal.Annotations, a)
		}
	}
	for _, f := range s.formFields {
		if f.PageNumber == pageNumber {
			removal.FormFields = append(removal.FormFields, f)
		}
	}
	for _, sig := range s.signatures {
		if sig.PageNumber == pageNumber {
			removal.Signatures = append(removal.Signatures, sig)
		}
	}
	for _, e := range s.elements {
		if e.PageNumber == pageNumber {
			removal.Elements = append(removal.Elements, e)
		}
	}

	s.applyPageRemoval(removal)
	s.record(Action{Type: ActionDelete, Target: TargetPage, Removal: &removal})
	s.notifyLocked()
	return true
}

// applyPageRemoval performs a page delete forward: remove the page, renumber
// the rest, drop the page's overlays and shift later overlays down. Used by
// both DeletePage and redo so the two stay in lockstep.
func (s *Session) applyPageRemoval(rem PageRemoval) {
	num := rem.Page.PageNumber

	for i := range s.pages {
		if s.pages[i].ID == rem.Page.ID {
			s.pages = append(s.pages[:i], s.pages[i+1:]...)
			break
		}
	}
	s.renumberPages()

	for _, a := range rem.Annotations {
		removeByID(&s.annotations, a.ID, func(a document.Annotation) string { return a.ID })
	}
	for _, f := range rem.FormFields {
		removeByID(&s.formFields, f.ID, func(f document.FormField) string { return f.ID })
	}
	for _, sig := range rem.Signatures {
		removeByID(&s.signatures, sig.ID, func(sig document.Signature) string { return sig.ID })
	}
	for _, e := range rem.Elements {
		removeByID(&s.elements, e.ID, func(e document.Element) string { return e.ID })
	}

	s.shiftOverlayPages(num+1, -1)

	// Clamp the current page: it must not point past the shrunken document
	// or at the removed slot.
	if s.currentPage > num || s.currentPage > len(s.pages) {
		s.currentPage--
		if s.currentPage < 1 {
			s.currentPage = 1
		}
	}
}

// revertPageRemoval is the exact inverse of applyPageRemoval: re-insert the
// page at its original slot, renumber, shift later overlays back up and
// restore the cascaded entities.
func (s *Session) revertPageRemoval(rem PageRemoval) {
	num := rem.Page.PageNumber

	idx := num - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(s.pages) {
		idx = len(s.pages)
	}
	s.pages = append(s.pages, document.Page{})
	copy(s.pages[idx+1:], s.pages[idx:])
	s.pages[idx] = rem.Page
	s.renumberPages()

	s.shiftOverlayPages(num, +1)

	s.annotations = append(s.annotations, rem.Annotations...)
	s.formFields = append(s.formFields, rem.FormFields...)
	s.signatures = append(s.signatures, rem.Signatures...)
	s.elements = append(s.elements, rem.Elements...)
}

// renumberPages restores the invariant pages[i].PageNumber == i+1.
func (s *Session) renumberPages() {
	for i := range s.pages {
		s.pages[i].PageNumber = i + 1
	}
}

// shiftOverlayPages adds delta to the pageNumber of every overlay entity
// currently referencing page from or later.
func (s *Session) shiftOverlayPages(from, delta int) {
	for i := range s.annotations {
		if s.annotations[i].PageNumber >= from {
			s.annotations[i].PageNumber += delta
		}
	}
	for i := range s.formFields {
		if s.formFields[i].PageNumber >= from {
			s.formFields[i].PageNumber += delta
		}
	}
	for i := range s.signatures {
		if s.signatures[i].PageNumber >= from {
			s.signatures[i].PageNumber += delta
		}
	}
	for i := range s.elements {
		if s.elements[i].PageNumber >= from {
			s.elements[i].PageNumber += delta
		}
	}
}
