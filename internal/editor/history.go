package editor

import "github.com/pdfease/pdfease/backend-go/internal/document"

// record truncates any redo tail past the cursor, appends the action and
// moves the cursor onto it. Only mutating session methods call this; the log
// is never appended to from outside.
func (s *Session) record(a Action) {
	s.history = append(s.history[:s.cursor+1], a)
	s.cursor = len(s.history) - 1
}

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor >= 0
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor < len(s.history)-1
}

// Undo reverses the action at the cursor and steps back. At the boundary it
// is a no-op, not an error.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor < 0 {
		return false
	}
	s.applyInverse(s.history[s.cursor])
	s.cursor--
	s.notifyLocked()
	return true
}

// Redo re-applies the action after the cursor and steps forward. At the
// boundary it is a no-op.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor >= len(s.history)-1 {
		return false
	}
	s.cursor++
	s.applyForward(s.history[s.cursor])
	s.notifyLocked()
	return true
}

// applyForward replays an action in its original direction.
func (s *Session) applyForward(a Action) {
	switch a.Type {
	case ActionAdd:
		switch a.Target {
		case TargetAnnotation:
			s.annotations = append(s.annotations, *a.Annotation)
		case TargetFormField:
			s.formFields = append(s.formFields, *a.FormField)
		case TargetSignature:
			s.signatures = append(s.signatures, *a.Signature)
		case TargetElement:
			s.elements = append(s.elements, *a.Element)
		case TargetPage:
			s.pages = append(s.pages, *a.Page)
			s.renumberPages()
		}
	case ActionUpdate:
		if a.Target == TargetElement {
			s.replaceElement(a.ID, a.Change.New)
		}
	case ActionDelete:
		switch a.Target {
		case TargetAnnotation:
			removeByID(&s.annotations, a.Annotation.ID, func(x document.Annotation) string { return x.ID })
		case TargetFormField:
			removeByID(&s.formFields, a.FormField.ID, func(x document.FormField) string { return x.ID })
		case TargetSignature:
			removeByID(&s.signatures, a.Signature.ID, func(x document.Signature) string { return x.ID })
		case TargetElement:
			removeByID(&s.elements, a.Element.ID, func(x document.Element) string { return x.ID })
		case TargetPage:
			s.applyPageRemoval(*a.Removal)
		}
	}
}

// applyInverse reverses an action: adds are removed, deletes re-inserted,
// updates written back to their previous value.
func (s *Session) applyInverse(a Action) {
	switch a.Type {
	case ActionAdd:
		switch a.Target {
		case TargetAnnotation:
			removeByID(&s.annotations, a.Annotation.ID, func(x document.Annotation) string { return x.ID })
		case TargetFormField:
			removeByID(&s.formFields, a.FormField.ID, func(x document.FormField) string { return x.ID })
		case TargetSignature:
			removeByID(&s.signatures, a.Signature.ID, func(x document.Signature) string { return x.ID })
		case TargetElement:
			removeByID(&s.elements, a.Element.ID, func(x document.Element) string { return x.ID })
		case TargetPage:
			removeByID(&s.pages, a.Page.ID, func(x document.Page) string { return x.ID })
			s.renumberPages()
		}
	case ActionUpdate:
		if a.Target == TargetElement {
			s.replaceElement(a.ID, a.Change.Previous)
		}
	case ActionDelete:
		switch a.Target {
		case TargetAnnotation:
			s.annotations = append(s.annotations, *a.Annotation)
		case TargetFormField:
			s.formFields = append(s.formFields, *a.FormField)
		case TargetSignature:
			s.signatures = append(s.signatures, *a.Signature)
		case TargetElement:
			s.elements = append(s.elements, *a.Element)
		case TargetPage:
			s.revertPageRemoval(*a.Removal)
		}
	}
}

func (s *Session) replaceElement(id string, value document.Element) {
	for i := range s.elements {
		if s.elements[i].ID == id {
			s.elements[i] = value
			return
		}
	}
}
