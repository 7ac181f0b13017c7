package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/pdfease/pdfease/backend-go/internal/config"
	"github.com/pdfease/pdfease/backend-go/internal/docstore"
	"github.com/pdfease/pdfease/backend-go/internal/editor"
	"github.com/pdfease/pdfease/backend-go/internal/loader"
	mw "github.com/pdfease/pdfease/backend-go/internal/middleware"
	"github.com/pdfease/pdfease/backend-go/internal/ocr"
	"github.com/pdfease/pdfease/backend-go/internal/pdfops"
	"github.com/pdfease/pdfease/backend-go/internal/render"
	"github.com/pdfease/pdfease/backend-go/internal/source"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kv, closeKV, err := newSnapshotKV(ctx, cfg)
	if err != nil {
		slog.Error("connect snapshot store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer closeKV()
	store := docstore.NewService(kv)

	sources, err := newSourceStore(ctx, cfg)
	if err != nil {
		slog.Error("connect source store", "error", err)
		os.Exit(1)
	}

	renderer := render.NewFitzRenderer()
	manager := editor.NewManager()

	editorHandler := editor.NewHandler(
		manager,
		store,
		sources,
		loader.New(renderer, cfg.RenderQuality),
		renderer,
		ocr.NewTesseractEngine(cfg.OCRLanguage),
		cfg.AutoSave,
		time.Duration(cfg.AutoSaveWindowMS)*time.Millisecond,
	)
	opsHandler := pdfops.NewHandler(pdfops.NewStubBuilder(), sources, manager)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.AllowedOrigins))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/documents", editorHandler.List).Methods("GET")
	api.HandleFunc("/documents", editorHandler.Upload).Methods("POST", "OPTIONS")
	api.HandleFunc("/documents/merge", opsHandler.Merge).Methods("POST", "OPTIONS")
	api.HandleFunc("/documents/{docId}", editorHandler.Get).Methods("GET")
	api.HandleFunc("/documents/{docId}", editorHandler.Delete).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/documents/{docId}/save", editorHandler.Save).Methods("POST", "OPTIONS")
	api.HandleFunc("/documents/{docId}/view", editorHandler.View).Methods("PATCH", "OPTIONS")
	api.HandleFunc("/documents/{docId}/undo", editorHandler.Undo).Methods("POST", "OPTIONS")
	api.HandleFunc("/documents/{docId}/redo", editorHandler.Redo).Methods("POST", "OPTIONS")

	api.HandleFunc("/documents/{docId}/annotations", editorHandler.AddAnnotation).Methods("POST", "OPTIONS")
	api.HandleFunc("/documents/{docId}/annotations/{id}", editorHandler.RemoveAnnotation).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/documents/{docId}/fields", editorHandler.AddFormField).Methods("POST", "OPTIONS")
	api.HandleFunc("/documents/{docId}/fields/{id}", editorHandler.RemoveFormField).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/documents/{docId}/signatures", editorHandler.AddSignature).Methods("POST", "OPTIONS")
	api.HandleFunc("/documents/{docId}/signatures/{id}", editorHandler.RemoveSignature).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/documents/{docId}/elements", editorHandler.AddElement).Methods("POST", "OPTIONS")
	api.HandleFunc("/documents/{docId}/elements/{id}", editorHandler.UpdateElement).Methods("PUT", "OPTIONS")
	api.HandleFunc("/documents/{docId}/elements/{id}", editorHandler.RemoveElement).Methods("DELETE", "OPTIONS")

	api.HandleFunc("/documents/{docId}/pages", editorHandler.AddPage).Methods("POST", "OPTIONS")
	api.HandleFunc("/documents/{docId}/pages/{pageNumber}", editorHandler.DeletePage).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/documents/{docId}/pages/{pageNumber}/render", editorHandler.RenderPage).Methods("GET")
	api.HandleFunc("/documents/{docId}/pages/{pageNumber}/ocr", editorHandler.OCRPage).Methods("POST", "OPTIONS")

	api.HandleFunc("/documents/{docId}/source", editorHandler.Source).Methods("GET")
	api.HandleFunc("/documents/{docId}/download", opsHandler.Download).Methods("GET")
	api.HandleFunc("/documents/{docId}/protect", opsHandler.Protect).Methods("POST", "OPTIONS")
	api.HandleFunc("/documents/{docId}/split", opsHandler.Split).Methods("POST", "OPTIONS")

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Flush every open session before draining connections so pending
		// debounced saves are not lost.
		manager.CloseAll()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "storeBackend", cfg.StoreBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newSnapshotKV(ctx context.Context, cfg *config.Config) (docstore.KV, func(), error) {
	switch cfg.StoreBackend {
	case "postgres":
		kv, err := docstore.NewPostgresKV(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv.Close, nil
	case "redis":
		kv, err := docstore.NewRedisKV(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() { kv.Close() }, nil
	case "memory":
		return docstore.NewMemoryKV(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func newSourceStore(ctx context.Context, cfg *config.Config) (source.Store, error) {
	if cfg.S3Endpoint == "" {
		slog.Warn("S3_ENDPOINT not set, storing uploaded files in memory")
		return source.NewMemoryStore(), nil
	}
	return source.NewMinioStore(ctx, source.MinioConfig{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		UseSSL:    cfg.S3UseSSL,
	})
}
