package document

// Page is one page of an open document. PageNumber is the 1-based position
// and is kept contiguous with the page's index at all times; ID is stable
// across renumbering.
type Page struct {
	ID          string `json:"id"`
	PageNumber  int    `json:"pageNumber"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	TextContent string `json:"textContent,omitempty"`
}

type AnnotationType string

const (
	AnnotationHighlight AnnotationType = "highlight"
	AnnotationNote      AnnotationType = "note"
	AnnotationDrawing   AnnotationType = "drawing"
)

type Annotation struct {
	ID         string         `json:"id"`
	PageNumber int            `json:"pageNumber"`
	Type       AnnotationType `json:"type"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Width      float64        `json:"width"`
	Height     float64        `json:"height"`
	Color      string         `json:"color,omitempty"`
	Text       string         `json:"text,omitempty"`
}

type FormFieldType string

const (
	FormFieldText     FormFieldType = "text"
	FormFieldCheckbox FormFieldType = "checkbox"
	FormFieldRadio    FormFieldType = "radio"
	FormFieldDropdown FormFieldType = "dropdown"
)

type FormField struct {
	ID         string        `json:"id"`
	PageNumber int           `json:"pageNumber"`
	Type       FormFieldType `json:"type"`
	Label      string        `json:"label"`
	X          float64       `json:"x"`
	Y          float64       `json:"y"`
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	Required   bool          `json:"required,omitempty"`
	Options    []string      `json:"options,omitempty"`
}

type Signature struct {
	ID         string  `json:"id"`
	PageNumber int     `json:"pageNumber"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	DataURL    string  `json:"dataUrl,omitempty"`
	Author     string  `json:"author,omitempty"`
	Date       string  `json:"date,omitempty"`
}

type ElementType string

const (
	ElementText  ElementType = "text"
	ElementImage ElementType = "image"
)

// Element is a free-form text or image overlay, the only overlay kind that
// supports in-place updates.
type Element struct {
	ID         string      `json:"id"`
	PageNumber int         `json:"pageNumber"`
	Type       ElementType `json:"type"`
	Content    string      `json:"content"`
	X          float64     `json:"x"`
	Y          float64     `json:"y"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	FontSize   float64     `json:"fontSize,omitempty"`
	FontFamily string      `json:"fontFamily,omitempty"`
	Color      string      `json:"color,omitempty"`
	Rotation   float64     `json:"rotation,omitempty"`
	Opacity    float64     `json:"opacity,omitempty"`
}

// Snapshot is the persisted form of a document session. The action log is
// deliberately absent: loading a snapshot establishes a new history baseline.
type Snapshot struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	LastModified int64        `json:"lastModified"`
	Pages        []Page       `json:"pages"`
	Annotations  []Annotation `json:"annotations"`
	FormFields   []FormField  `json:"formFields"`
	Signatures   []Signature  `json:"signatures"`
	Elements     []Element    `json:"elements"`
	TotalPages   int          `json:"totalPages"`
}

// Info is the listing view of a stored snapshot.
type Info struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	LastModified int64  `json:"lastModified"`
}
