package editor

import (
	"github.com/pdfease/pdfease/backend-go/internal/document"
	"github.com/pdfease/pdfease/backend-go/internal/typeid"
)

// AddAnnotation assigns a fresh id, appends the annotation and records the
// action. The caller-supplied ID field is ignored.
func (s *Session) AddAnnotation(a document.Annotation) document.Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = typeid.NewAnnotationID()
	s.annotations = append(s.annotations, a)
	s.record(Action{Type: ActionAdd, Target: TargetAnnotation, Annotation: &a})
	s.notifyLocked()
	return a
}

// RemoveAnnotation removes the annotation with the given id. Removing an
// unknown id is a silent no-op and records nothing.
func (s *Session) RemoveAnnotation(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, ok := removeByID(&s.annotations, id, func(a document.Annotation) string { return a.ID })
	if !ok {
		return false
	}
	s.record(Action{Type: ActionDelete, Target: TargetAnnotation, Annotation: &removed})
	s.notifyLocked()
	return true
}

func (s *Session) AddFormField(f document.FormField) document.FormField {
	s.mu.Lock()
	defer s.mu.Unlock()

	f.ID = typeid.NewFormFieldID()
	s.formFields = append(s.formFields, f)
	s.record(Action{Type: ActionAdd, Target: TargetFormField, FormField: &f})
	s.notifyLocked()
	return f
}

func (s *Session) RemoveFormField(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, ok := removeByID(&s.formFields, id, func(f document.FormField) string { return f.ID })
	if !ok {
		return false
	}
	s.record(Action{Type: ActionDelete, Target: TargetFormField, FormField: &removed})
	s.notifyLocked()
	return true
}

func (s *Session) AddSignature(sig document.Signature) document.Signature {
	s.mu.Lock()
	defer s.mu.Unlock()

	sig.ID = typeid.NewSignatureID()
	s.signatures = append(s.signatures, sig)
	s.record(Action{Type: ActionAdd, Target: TargetSignature, Signature: &sig})
	s.notifyLocked()
	return sig
}

func (s *Session) RemoveSignature(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, ok := removeByID(&s.signatures, id, func(sig document.Signature) string { return sig.ID })
	if !ok {
		return false
	}
	s.record(Action{Type: ActionDelete, Target: TargetSignature, Signature: &removed})
	s.notifyLocked()
	return true
}

func (s *Session) AddElement(e document.Element) document.Element {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = typeid.NewElementID()
	s.elements = append(s.elements, e)
	s.record(Action{Type: ActionAdd, Target: TargetElement, Element: &e})
	s.notifyLocked()
	return e
}

// UpdateElement replaces the element with the given id in place. The record
// carries both the previous and the new value for bidirectional replay.
// Updating an unknown id is a silent no-op.
func (s *Session) UpdateElement(id string, next document.Element) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.elements {
		if e.ID == id {
			next.ID = id
			s.elements[i] = next
			s.record(Action{
				Type:   ActionUpdate,
				Target: TargetElement,
				ID:     id,
				Change: &ElementChange{Previous: e, New: next},
			})
			s.notifyLocked()
			return true
		}
	}
	return false
}

func (s *Session) RemoveElement(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, ok := removeByID(&s.elements, id, func(e document.Element) string { return e.ID })
	if !ok {
		return false
	}
	s.record(Action{Type: ActionDelete, Target: TargetElement, Element: &removed})
	s.notifyLocked()
	return true
}

// removeByID removes the first entity whose id matches and returns it.
func removeByID[T any](items *[]T, id string, idOf func(T) string) (T, bool) {
	for i, item := range *items {
		if idOf(item) == id {
			*items = append((*items)[:i], (*items)[i+1:]...)
			return item, true
		}
	}
	var zero T
	return zero, false
}
