package pdfops

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdfease/pdfease/backend-go/internal/document"
	"github.com/pdfease/pdfease/backend-go/internal/editor"
	"github.com/pdfease/pdfease/backend-go/internal/source"
)

func newOpsEnv(t *testing.T) (*mux.Router, source.Store, *editor.Manager) {
	t.Helper()

	sources := source.NewMemoryStore()
	manager := editor.NewManager()
	t.Cleanup(manager.CloseAll)

	h := NewHandler(NewStubBuilder(), sources, manager)

	r := mux.NewRouter()
	r.HandleFunc("/documents/merge", h.Merge).Methods("POST")
	r.HandleFunc("/documents/{docId}/download", h.Download).Methods("GET")
	r.HandleFunc("/documents/{docId}/protect", h.Protect).Methods("POST")
	r.HandleFunc("/documents/{docId}/split", h.Split).Methods("POST")

	return r, sources, manager
}

func seedSource(t *testing.T, sources source.Store, id, name string) {
	t.Helper()
	err := sources.Put(context.Background(), id, source.File{Name: name, Data: []byte("%PDF-" + id)})
	require.NoError(t, err)
}

func seedSession(t *testing.T, manager *editor.Manager, id string, pageCount int) {
	t.Helper()
	s := editor.NewSession(id, id+".pdf", 0)
	pages := make([]document.Page, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		pages = append(pages, document.NewBlankPage(i))
	}
	s.Seed(pages, nil)
	manager.Put(s, func() {})
}

func doJSON(t *testing.T, r *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDownload(t *testing.T) {
	r, sources, _ := newOpsEnv(t)
	seedSource(t, sources, "1-a", "report.pdf")

	req := httptest.NewRequest(http.MethodGet, "/documents/1-a/download", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `"report.pdf"`)
	assert.Equal(t, "%PDF-1-a", w.Body.String())
}

func TestDownloadUnknownDocument(t *testing.T) {
	r, _, _ := newOpsEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/documents/1-missing/download", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProtect(t *testing.T) {
	r, sources, _ := newOpsEnv(t)
	seedSource(t, sources, "1-a", "contract.pdf")

	w := doJSON(t, r, http.MethodPost, "/documents/1-a/protect", map[string]string{"password": "s3cret"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "contract-protected.pdf")

	w = doJSON(t, r, http.MethodPost, "/documents/1-a/protect", map[string]string{"password": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMerge(t *testing.T) {
	r, sources, _ := newOpsEnv(t)
	seedSource(t, sources, "1-a", "a.pdf")
	seedSource(t, sources, "2-b", "b.pdf")

	w := doJSON(t, r, http.MethodPost, "/documents/merge", map[string]interface{}{
		"documentIds": []string{"1-a", "2-b"},
		"name":        "combined.pdf",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "combined.pdf")

	w = doJSON(t, r, http.MethodPost, "/documents/merge", map[string]interface{}{
		"documentIds": []string{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/documents/merge", map[string]interface{}{
		"documentIds": []string{"1-a", "9-missing"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSplit(t *testing.T) {
	r, sources, manager := newOpsEnv(t)
	seedSource(t, sources, "1-a", "big.pdf")
	seedSession(t, manager, "1-a", 10)

	w := doJSON(t, r, http.MethodPost, "/documents/1-a/split", map[string]interface{}{
		"ranges": []PageRange{{1, 5}, {6, 10}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))

	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "big-part-1.pdf", zr.File[0].Name)
	assert.Equal(t, "big-part-2.pdf", zr.File[1].Name)
}

func TestSplitRejectsRangeOutsideDocument(t *testing.T) {
	r, sources, manager := newOpsEnv(t)
	seedSource(t, sources, "1-a", "big.pdf")
	seedSession(t, manager, "1-a", 4)

	w := doJSON(t, r, http.MethodPost, "/documents/1-a/split", map[string]interface{}{
		"ranges": []PageRange{{1, 5}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/documents/1-a/split", map[string]interface{}{
		"ranges": []PageRange{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
