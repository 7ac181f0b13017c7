package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdfease/pdfease/backend-go/internal/docstore"
	"github.com/pdfease/pdfease/backend-go/internal/document"
	"github.com/pdfease/pdfease/backend-go/internal/loader"
	"github.com/pdfease/pdfease/backend-go/internal/render"
	"github.com/pdfease/pdfease/backend-go/internal/source"
)

// stubRenderer produces a fixed two-page document for any input, or rejects
// everything when bad is set.
type stubRenderer struct {
	bad bool
}

func (r *stubRenderer) Open(_ context.Context, _ []byte) (render.Document, error) {
	if r.bad {
		return nil, render.ErrBadDocument
	}
	return stubDocument{}, nil
}

type stubDocument struct{}

func (stubDocument) PageCount() int { return 2 }
func (stubDocument) Page(pageNumber int) (render.Page, error) {
	if pageNumber < 1 || pageNumber > 2 {
		return nil, errors.New("bad page")
	}
	return stubPage{}, nil
}
func (stubDocument) Close() error { return nil }

type stubPage struct{}

func (stubPage) Viewport(scale float64) render.Viewport {
	return render.Viewport{Width: 612 * scale, Height: 792 * scale}
}
func (stubPage) Render(ctx context.Context, _ float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}
func (stubPage) TextContent() ([]render.TextItem, error) {
	return []render.TextItem{
		{Str: "Stub page text", X: 72, Y: 100, Width: 80, Height: 12},
	}, nil
}

type stubOCR struct {
	text string
	err  error
}

func (o stubOCR) Recognize(_ context.Context, _ []byte) (string, error) {
	return o.text, o.err
}

type testEnv struct {
	handler *Handler
	router  *mux.Router
	store   *docstore.Service
	sources source.Store
	manager *Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, &stubRenderer{})
}

func newTestEnvWith(t *testing.T, renderer render.Renderer) *testEnv {
	t.Helper()

	store := docstore.NewService(docstore.NewMemoryKV())
	sources := source.NewMemoryStore()
	manager := NewManager()
	t.Cleanup(manager.CloseAll)

	h := NewHandler(
		manager, store, sources,
		loader.New(renderer, 2),
		renderer,
		stubOCR{text: "recognized words"},
		false, 10*time.Millisecond,
	)

	r := mux.NewRouter()
	r.HandleFunc("/documents", h.List).Methods("GET")
	r.HandleFunc("/documents", h.Upload).Methods("POST")
	r.HandleFunc("/documents/{docId}", h.Get).Methods("GET")
	r.HandleFunc("/documents/{docId}", h.Delete).Methods("DELETE")
	r.HandleFunc("/documents/{docId}/save", h.Save).Methods("POST")
	r.HandleFunc("/documents/{docId}/view", h.View).Methods("PATCH")
	r.HandleFunc("/documents/{docId}/undo", h.Undo).Methods("POST")
	r.HandleFunc("/documents/{docId}/redo", h.Redo).Methods("POST")
	r.HandleFunc("/documents/{docId}/annotations", h.AddAnnotation).Methods("POST")
	r.HandleFunc("/documents/{docId}/annotations/{id}", h.RemoveAnnotation).Methods("DELETE")
	r.HandleFunc("/documents/{docId}/elements", h.AddElement).Methods("POST")
	r.HandleFunc("/documents/{docId}/elements/{id}", h.UpdateElement).Methods("PUT")
	r.HandleFunc("/documents/{docId}/elements/{id}", h.RemoveElement).Methods("DELETE")
	r.HandleFunc("/documents/{docId}/pages", h.AddPage).Methods("POST")
	r.HandleFunc("/documents/{docId}/pages/{pageNumber}", h.DeletePage).Methods("DELETE")
	r.HandleFunc("/documents/{docId}/pages/{pageNumber}/render", h.RenderPage).Methods("GET")
	r.HandleFunc("/documents/{docId}/pages/{pageNumber}/ocr", h.OCRPage).Methods("POST")
	r.HandleFunc("/documents/{docId}/source", h.Source).Methods("GET")

	return &testEnv{handler: h, router: r, store: store, sources: sources, manager: manager}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) upload(t *testing.T) State {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "sample.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.7 fake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var state State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	return state
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) State {
	t.Helper()
	var state State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	return state
}

func TestUploadCreatesDocument(t *testing.T) {
	env := newTestEnv(t)

	state := env.upload(t)
	assert.NotEmpty(t, state.DocumentID)
	assert.Equal(t, "sample.pdf", state.Name)
	assert.Equal(t, 2, state.TotalPages)
	assert.Equal(t, 1, state.CurrentPage)
	assert.Len(t, state.Elements, 2, "one text element per stub page")
	assert.False(t, state.CanUndo)

	// The initial snapshot is persisted immediately.
	snap, err := env.store.Load(context.Background(), state.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.TotalPages)

	// The source file is retained.
	src, err := env.sources.Get(context.Background(), state.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "sample.pdf", src.Name)
}

func TestUploadRejectsUnparsableFile(t *testing.T) {
	env := newTestEnvWith(t, &stubRenderer{bad: true})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "junk.pdf")
	require.NoError(t, err)
	fw.Write([]byte("not a pdf"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Nothing is retained for a failed load.
	infos, err := env.store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestUploadWithoutFileField(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUnknownDocument(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/documents/1-missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRehydratesFromSnapshot(t *testing.T) {
	env := newTestEnv(t)

	snap := document.Snapshot{
		ID:   "7-stored",
		Name: "stored.pdf",
		Pages: []document.Page{
			{ID: "page_1", PageNumber: 1},
			{ID: "page_2", PageNumber: 2},
		},
		Annotations: []document.Annotation{
			{ID: "anno_1", PageNumber: 1, Type: document.AnnotationNote},
		},
		TotalPages: 2,
	}
	require.NoError(t, env.store.Save(context.Background(), snap))

	w := env.do(t, http.MethodGet, "/documents/7-stored", nil)
	require.Equal(t, http.StatusOK, w.Code)

	state := decodeState(t, w)
	assert.Equal(t, "7-stored", state.DocumentID)
	assert.Equal(t, 2, state.TotalPages)
	assert.Len(t, state.Annotations, 1)
	assert.False(t, state.CanUndo, "rehydration starts a fresh history")

	// Now resident in memory.
	_, ok := env.manager.Get("7-stored")
	assert.True(t, ok)
}

func TestListDocuments(t *testing.T) {
	env := newTestEnv(t)
	env.upload(t)

	w := env.do(t, http.MethodGet, "/documents", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var infos []document.Info
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "sample.pdf", infos[0].Name)
}

func TestAnnotationLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	state := env.upload(t)
	base := "/documents/" + state.DocumentID

	w := env.do(t, http.MethodPost, base+"/annotations", document.Annotation{
		PageNumber: 1, Type: document.AnnotationHighlight, X: 1, Y: 2, Width: 10, Height: 4,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created document.Annotation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Contains(t, created.ID, "anno_")

	w = env.do(t, http.MethodDelete, base+"/annotations/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodPost, base+"/undo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	undone := decodeState(t, w)
	require.Len(t, undone.Annotations, 1)
	assert.Equal(t, created.ID, undone.Annotations[0].ID)
	assert.True(t, undone.CanRedo)

	w = env.do(t, http.MethodPost, base+"/redo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeState(t, w).Annotations)
}

func TestAddAnnotationRejectsUnknownPage(t *testing.T) {
	env := newTestEnv(t)
	state := env.upload(t)

	w := env.do(t, http.MethodPost, "/documents/"+state.DocumentID+"/annotations", document.Annotation{
		PageNumber: 99, Type: document.AnnotationNote,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestElementUpdateOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	state := env.upload(t)
	base := "/documents/" + state.DocumentID

	elem := state.Elements[0]
	elem.Content = "rewritten"
	w := env.do(t, http.MethodPut, base+"/elements/"+elem.ID, elem)
	require.Equal(t, http.StatusOK, w.Code)

	updated := decodeState(t, w)
	assert.Equal(t, "rewritten", updated.Elements[0].Content)
	assert.True(t, updated.CanUndo)
}

func TestPageEndpoints(t *testing.T) {
	env := newTestEnv(t)
	state := env.upload(t)
	base := "/documents/" + state.DocumentID

	w := env.do(t, http.MethodPost, base+"/pages", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var page document.Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 3, page.PageNumber)

	w = env.do(t, http.MethodDelete, base+"/pages/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decodeState(t, w).TotalPages)

	w = env.do(t, http.MethodDelete, base+"/pages/notanumber", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteLastPageConflict(t *testing.T) {
	env := newTestEnv(t)
	state := env.upload(t)
	base := "/documents/" + state.DocumentID

	w := env.do(t, http.MethodDelete, base+"/pages/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, base+"/pages/1", nil)
	assert.Equal(t, http.StatusConflict, w.Code, "the last page can never be deleted")
}

func TestViewPatch(t *testing.T) {
	env := newTestEnv(t)
	state := env.upload(t)

	w := env.do(t, http.MethodPatch, "/documents/"+state.DocumentID+"/view",
		map[string]int{"currentPage": 2, "zoom": 150})
	require.Equal(t, http.StatusOK, w.Code)

	got := decodeState(t, w)
	assert.Equal(t, 2, got.CurrentPage)
	assert.Equal(t, 150, got.Zoom)
	assert.False(t, got.CanUndo, "view changes are not undoable")
}

func TestDeleteDocument(t *testing.T) {
	env := newTestEnv(t)
	state := env.upload(t)

	w := env.do(t, http.MethodDelete, "/documents/"+state.DocumentID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	_, err := env.store.Load(context.Background(), state.DocumentID)
	assert.ErrorIs(t, err, docstore.ErrNotFound)
	_, err = env.sources.Get(context.Background(), state.DocumentID)
	assert.ErrorIs(t, err, source.ErrNotFound)
	_, ok := env.manager.Get(state.DocumentID)
	assert.False(t, ok)

	w = env.do(t, http.MethodGet, "/documents/"+state.DocumentID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestManualSave(t *testing.T) {
	env := newTestEnv(t)
	state := env.upload(t)
	base := "/documents/" + state.DocumentID

	env.do(t, http.MethodPost, base+"/annotations", document.Annotation{
		PageNumber: 1, Type: document.AnnotationNote, Text: "remember",
	})

	// Auto-save is disabled in the test env; only the manual save persists
	// the annotation.
	w := env.do(t, http.MethodPost, base+"/save", nil)
	require.Equal(t, http.StatusOK, w.Code)

	snap, err := env.store.Load(context.Background(), state.DocumentID)
	require.NoError(t, err)
	require.Len(t, snap.Annotations, 1)
	assert.Equal(t, "remember", snap.Annotations[0].Text)
}

func TestRenderPageEndpoint(t *testing.T) {
	env := newTestEnv(t)
	state := env.upload(t)

	w := env.do(t, http.MethodGet, "/documents/"+state.DocumentID+"/pages/1/render?scale=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = env.do(t, http.MethodGet, "/documents/"+state.DocumentID+"/pages/9/render", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOCRPageEndpoint(t *testing.T) {
	env := newTestEnv(t)
	state := env.upload(t)
	base := "/documents/" + state.DocumentID

	w := env.do(t, http.MethodPost, base+"/pages/2/ocr", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "recognized words", resp["text"])

	// The recognized text lands on the page.
	s, ok := env.manager.Get(state.DocumentID)
	require.True(t, ok)
	assert.Equal(t, "recognized words", s.Pages()[1].TextContent)

	w = env.do(t, http.MethodPost, base+"/pages/9/ocr", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSourceEndpoint(t *testing.T) {
	env := newTestEnv(t)
	state := env.upload(t)

	w := env.do(t, http.MethodGet, "/documents/"+state.DocumentID+"/source", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.Contains(w.Header().Get("Content-Disposition"), "sample.pdf"))
	assert.Equal(t, "%PDF-1.7 fake", w.Body.String())
}
