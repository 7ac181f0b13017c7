package pdfops

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/pdfease/pdfease/backend-go/internal/editor"
	"github.com/pdfease/pdfease/backend-go/internal/source"
)

// Handler serves the whole-document operations: download, protect, merge
// and split. It works on the stored source files, not the overlay state.
type Handler struct {
	builder Builder
	sources source.Store
	manager *editor.Manager
}

func NewHandler(builder Builder, sources source.Store, manager *editor.Manager) *Handler {
	return &Handler{builder: builder, sources: sources, manager: manager}
}

// Download handles GET /documents/{docId}/download: assembles the document
// and streams it as an attachment.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["docId"]

	src, err := h.sources.Get(r.Context(), documentID)
	if err != nil {
		h.sourceError(w, documentID, err)
		return
	}

	out, err := h.builder.Assemble(r.Context(), src.Data)
	if err != nil {
		slog.Error("assemble failed", "documentId", documentID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	streamPDF(w, downloadName(src.Name), out)
}

type protectRequest struct {
	Password string `json:"password"`
}

// Protect handles POST /documents/{docId}/protect.
func (h *Handler) Protect(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["docId"]

	var req protectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	src, err := h.sources.Get(r.Context(), documentID)
	if err != nil {
		h.sourceError(w, documentID, err)
		return
	}

	out, err := h.builder.Protect(r.Context(), src.Data, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password must not be empty"})
			return
		}
		slog.Error("protect failed", "documentId", documentID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	streamPDF(w, protectedName(src.Name), out)
}

type mergeRequest struct {
	DocumentIDs []string `json:"documentIds"`
	Name        string   `json:"name"`
}

// Merge handles POST /documents/merge: combines the stored sources of the
// listed documents, in order.
func (h *Handler) Merge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.DocumentIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "documentIds must not be empty"})
		return
	}

	docs := make([][]byte, 0, len(req.DocumentIDs))
	for _, id := range req.DocumentIDs {
		src, err := h.sources.Get(r.Context(), id)
		if err != nil {
			h.sourceError(w, id, err)
			return
		}
		docs = append(docs, src.Data)
	}

	out, err := h.builder.Merge(r.Context(), docs)
	if err != nil {
		if errors.Is(err, ErrNoDocuments) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "nothing to merge"})
			return
		}
		slog.Error("merge failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	name := req.Name
	if name == "" {
		name = "merged.pdf"
	}
	streamPDF(w, name, out)
}

type splitRequest struct {
	Ranges []PageRange `json:"ranges"`
}

// Split handles POST /documents/{docId}/split: produces one document per
// page range, zipped.
func (h *Handler) Split(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["docId"]

	var req splitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	pageCount := 0
	if s, ok := h.manager.Get(documentID); ok {
		pageCount = s.TotalPages()
	}
	if pageCount > 0 {
		if err := ValidateRanges(req.Ranges, pageCount); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	} else if len(req.Ranges) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ranges must not be empty"})
		return
	}

	src, err := h.sources.Get(r.Context(), documentID)
	if err != nil {
		h.sourceError(w, documentID, err)
		return
	}

	parts, err := h.builder.Split(r.Context(), src.Data, req.Ranges)
	if err != nil {
		if errors.Is(err, ErrInvalidRange) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		slog.Error("split failed", "documentId", documentID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	base := strings.TrimSuffix(src.Name, ".pdf")
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, part := range parts {
		entry, err := zw.Create(fmt.Sprintf("%s-part-%d.pdf", base, i+1))
		if err == nil {
			_, err = entry.Write(part)
		}
		if err != nil {
			slog.Error("zip split parts failed", "documentId", documentID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
	}
	if err := zw.Close(); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", base+"-split.zip"))
	w.Write(buf.Bytes())
}

func (h *Handler) sourceError(w http.ResponseWriter, documentID string, err error) {
	if errors.Is(err, source.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
		return
	}
	slog.Error("get source failed", "documentId", documentID, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func streamPDF(w http.ResponseWriter, name string, data []byte) {
	if !strings.HasSuffix(name, ".pdf") {
		name += ".pdf"
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(data)
}

func downloadName(name string) string {
	if name == "" {
		return "document.pdf"
	}
	return name
}

func protectedName(name string) string {
	base := strings.TrimSuffix(downloadName(name), ".pdf")
	return base + "-protected.pdf"
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
