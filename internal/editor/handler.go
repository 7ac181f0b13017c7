package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/pdfease/pdfease/backend-go/internal/docstore"
	"github.com/pdfease/pdfease/backend-go/internal/document"
	"github.com/pdfease/pdfease/backend-go/internal/loader"
	"github.com/pdfease/pdfease/backend-go/internal/ocr"
	"github.com/pdfease/pdfease/backend-go/internal/render"
	"github.com/pdfease/pdfease/backend-go/internal/source"
)

const maxUploadSize = 50 << 20 // 50MB

// Handler exposes the document session operations over HTTP.
type Handler struct {
	manager  *Manager
	store    *docstore.Service
	sources  source.Store
	loader   *loader.Loader
	renderer render.Renderer
	engine   ocr.Engine

	autoSave       bool
	autoSaveWindow time.Duration

	mu       sync.Mutex
	trackers map[string]*render.Tracker // documentID -> viewer render tracker
}

func NewHandler(
	manager *Manager,
	store *docstore.Service,
	sources source.Store,
	ldr *loader.Loader,
	renderer render.Renderer,
	engine ocr.Engine,
	autoSave bool,
	autoSaveWindow time.Duration,
) *Handler {
	return &Handler{
		manager:        manager,
		store:          store,
		sources:        sources,
		loader:         ldr,
		renderer:       renderer,
		engine:         engine,
		autoSave:       autoSave,
		autoSaveWindow: autoSaveWindow,
		trackers:       make(map[string]*render.Tracker),
	}
}

// attach wires a session into the manager with a debounced auto-saver.
func (h *Handler) attach(s *Session) {
	saver := docstore.NewAutoSaver(h.autoSaveWindow, h.autoSave, func() {
		// Snapshot outside the session callback; this runs on the timer
		// goroutine.
		ctx, cancel := contextWithTimeout()
		defer cancel()
		if err := h.store.Save(ctx, s.Snapshot()); err != nil {
			slog.Error("auto-save failed", "documentId", s.DocumentID(), "error", err)
		}
	})
	s.SetOnChange(saver.Notify)
	h.manager.Put(s, saver.Close)
}

// Upload handles POST /documents: run the load pipeline and open a session.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file too large (max 50MB)"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file field"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read file"})
		return
	}

	result, err := h.loader.Load(r.Context(), data)
	if err != nil {
		if errors.Is(err, render.ErrBadDocument) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "file cannot be parsed as a PDF"})
			return
		}
		slog.Error("load document failed", "name", header.Filename, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	documentID := NewDocumentID()
	session := NewSession(documentID, header.Filename, int64(len(data)))
	session.Seed(result.Pages, result.Elements)

	if err := h.sources.Put(r.Context(), documentID, source.File{Name: header.Filename, Data: data}); err != nil {
		slog.Error("store source failed", "documentId", documentID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	if err := h.store.Save(r.Context(), session.Snapshot()); err != nil {
		slog.Error("initial snapshot failed", "documentId", documentID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	h.attach(session)
	writeJSON(w, http.StatusCreated, session.State())
}

// List handles GET /documents.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	infos, err := h.store.List(r.Context())
	if err != nil {
		slog.Error("list documents failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

// session returns the open session for the request, rehydrating it from the
// snapshot store when the document is not in memory.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	documentID := mux.Vars(r)["docId"]

	if s, ok := h.manager.Get(documentID); ok {
		return s, true
	}

	snap, err := h.store.Load(r.Context(), documentID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return nil, false
		}
		slog.Error("load snapshot failed", "documentId", documentID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return nil, false
	}

	s := NewSession(snap.ID, snap.Name, 0)
	s.Restore(snap)
	h.attach(s)
	return s, true
}

// Get handles GET /documents/{docId}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.State())
}

// Delete handles DELETE /documents/{docId}: the session is discarded without
// a trailing save so the deleted snapshot cannot be resurrected.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["docId"]

	h.manager.Discard(documentID)
	h.stopTracker(documentID)

	if err := h.store.Delete(r.Context(), documentID); err != nil {
		slog.Error("delete snapshot failed", "documentId", documentID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if err := h.sources.Delete(r.Context(), documentID); err != nil && !errors.Is(err, source.ErrNotFound) {
		slog.Warn("delete source failed", "documentId", documentID, "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

// Save handles POST /documents/{docId}/save: a manual snapshot that bypasses
// the debounce and the auto-save gate.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.store.Save(r.Context(), s.Snapshot()); err != nil {
		slog.Error("save failed", "documentId", s.DocumentID(), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

type viewRequest struct {
	CurrentPage   *int `json:"currentPage"`
	Zoom          *int `json:"zoom"`
	RenderQuality *int `json:"renderQuality"`
}

// View handles PATCH /documents/{docId}/view.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req viewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	s.SetView(req.CurrentPage, req.Zoom, req.RenderQuality)
	writeJSON(w, http.StatusOK, s.State())
}

// Undo handles POST /documents/{docId}/undo. At the history boundary it is a
// no-op, not an error.
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Undo()
	writeJSON(w, http.StatusOK, s.State())
}

// Redo handles POST /documents/{docId}/redo.
func (h *Handler) Redo(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Redo()
	writeJSON(w, http.StatusOK, s.State())
}

// AddAnnotation handles POST /documents/{docId}/annotations.
func (h *Handler) AddAnnotation(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var a document.Annotation
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !validPage(s, a.PageNumber) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pageNumber does not reference an existing page"})
		return
	}

	created := s.AddAnnotation(a)
	writeJSON(w, http.StatusCreated, created)
}

// RemoveAnnotation handles DELETE /documents/{docId}/annotations/{id}.
// Removing an unknown id is tolerated silently.
func (h *Handler) RemoveAnnotation(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.RemoveAnnotation(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

// AddFormField handles POST /documents/{docId}/fields.
func (h *Handler) AddFormField(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var f document.FormField
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !validPage(s, f.PageNumber) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pageNumber does not reference an existing page"})
		return
	}

	created := s.AddFormField(f)
	writeJSON(w, http.StatusCreated, created)
}

// RemoveFormField handles DELETE /documents/{docId}/fields/{id}.
func (h *Handler) RemoveFormField(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.RemoveFormField(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

// AddSignature handles POST /documents/{docId}/signatures.
func (h *Handler) AddSignature(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var sig document.Signature
	if err := json.NewDecoder(r.Body).Decode(&sig); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !validPage(s, sig.PageNumber) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pageNumber does not reference an existing page"})
		return
	}

	created := s.AddSignature(sig)
	writeJSON(w, http.StatusCreated, created)
}

// RemoveSignature handles DELETE /documents/{docId}/signatures/{id}.
func (h *Handler) RemoveSignature(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.RemoveSignature(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

// AddElement handles POST /documents/{docId}/elements.
func (h *Handler) AddElement(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var e document.Element
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !validPage(s, e.PageNumber) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pageNumber does not reference an existing page"})
		return
	}

	created := s.AddElement(e)
	writeJSON(w, http.StatusCreated, created)
}

// UpdateElement handles PUT /documents/{docId}/elements/{id}. Updating an
// unknown id is a silent no-op.
func (h *Handler) UpdateElement(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var e document.Element
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	s.UpdateElement(mux.Vars(r)["id"], e)
	writeJSON(w, http.StatusOK, s.State())
}

// RemoveElement handles DELETE /documents/{docId}/elements/{id}.
func (h *Handler) RemoveElement(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.RemoveElement(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

// AddPage handles POST /documents/{docId}/pages.
func (h *Handler) AddPage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	page := s.AddBlankPage()
	writeJSON(w, http.StatusCreated, page)
}

// DeletePage handles DELETE /documents/{docId}/pages/{pageNumber}. Deleting
// the only remaining page is refused.
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	pageNumber, err := strconv.Atoi(mux.Vars(r)["pageNumber"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid page number"})
		return
	}

	if !s.DeletePage(pageNumber) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "page cannot be deleted"})
		return
	}
	writeJSON(w, http.StatusOK, s.State())
}

// RenderPage handles GET /documents/{docId}/pages/{pageNumber}/render. Only
// one render per document may be outstanding: a new request supersedes the
// previous one, which ends quietly with a cancellation.
func (h *Handler) RenderPage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	pageNumber, err := strconv.Atoi(mux.Vars(r)["pageNumber"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid page number"})
		return
	}

	scale := 1.0
	if raw := r.URL.Query().Get("scale"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 && parsed <= 8 {
			scale = parsed
		}
	}

	src, err := h.sources.Get(r.Context(), s.DocumentID())
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "source file not found"})
		return
	}

	ctx, cancel := h.tracker(s.DocumentID()).Begin(r.Context())
	defer cancel()

	doc, err := h.renderer.Open(ctx, src.Data)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "document cannot be rendered"})
		return
	}
	defer doc.Close()

	page, err := doc.Page(pageNumber)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid page number"})
		return
	}

	img, err := page.Render(ctx, scale)
	if err != nil {
		if render.Canceled(err) {
			// Superseded by a newer render; expected, not a failure.
			w.WriteHeader(http.StatusNoContent)
			return
		}
		slog.Error("render page failed", "documentId", s.DocumentID(), "page", pageNumber, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "render failed"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		slog.Debug("write render response", "error", err)
	}
}

// OCRPage handles POST /documents/{docId}/pages/{pageNumber}/ocr: renders
// the page and backfills its text content with the recognized text.
func (h *Handler) OCRPage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	pageNumber, err := strconv.Atoi(mux.Vars(r)["pageNumber"])
	if err != nil || !validPage(s, pageNumber) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid page number"})
		return
	}

	src, err := h.sources.Get(r.Context(), s.DocumentID())
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "source file not found"})
		return
	}

	doc, err := h.renderer.Open(r.Context(), src.Data)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "document cannot be rendered"})
		return
	}
	defer doc.Close()

	page, err := doc.Page(pageNumber)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid page number"})
		return
	}

	// Render at double scale; OCR accuracy drops off quickly at screen
	// resolution.
	img, err := page.Render(r.Context(), 2.0)
	if err != nil {
		slog.Error("ocr render failed", "documentId", s.DocumentID(), "page", pageNumber, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "render failed"})
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	text, err := h.engine.Recognize(r.Context(), buf.Bytes())
	if err != nil {
		slog.Error("ocr failed", "documentId", s.DocumentID(), "page", pageNumber, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "text recognition failed"})
		return
	}

	s.SetPageText(pageNumber, text)
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// Source handles GET /documents/{docId}/source, serving the original upload.
func (h *Handler) Source(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["docId"]

	src, err := h.sources.Get(r.Context(), documentID)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		slog.Error("get source failed", "documentId", documentID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+src.Name+`"`)
	w.Write(src.Data)
}

func (h *Handler) tracker(documentID string) *render.Tracker {
	h.mu.Lock()
	defer h.mu.Unlock()
	t, ok := h.trackers[documentID]
	if !ok {
		t = render.NewTracker()
		h.trackers[documentID] = t
	}
	return t
}

func (h *Handler) stopTracker(documentID string) {
	h.mu.Lock()
	t, ok := h.trackers[documentID]
	delete(h.trackers, documentID)
	h.mu.Unlock()
	if ok {
		t.Stop()
	}
}

// contextWithTimeout bounds background saves that have no request context.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func validPage(s *Session, pageNumber int) bool {
	return pageNumber >= 1 && pageNumber <= s.TotalPages()
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
