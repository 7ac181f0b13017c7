// Package docstore persists document session snapshots in a key-value
// namespace, one entry per document under key "doc-<documentId>".
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/pdfease/pdfease/backend-go/internal/document"
)

const keyPrefix = "doc-"

var ErrNotFound = errors.New("document not found")

// KV is the key-value store contract the snapshot service runs on. Get
// returns ErrNotFound for missing keys. Writes to the same key are
// last-write-wins; there is no cross-key transaction.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Service serializes snapshots into a KV backend.
type Service struct {
	kv KV
}

func NewService(kv KV) *Service {
	return &Service{kv: kv}
}

func key(documentID string) string {
	return keyPrefix + documentID
}

func (s *Service) Save(ctx context.Context, snap document.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.kv.Set(ctx, key(snap.ID), string(data)); err != nil {
		return fmt.Errorf("save snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// Load reads the snapshot for a document id. A missing key and a corrupt
// entry both surface as ErrNotFound: a snapshot that fails to parse must
// never crash the caller.
func (s *Service) Load(ctx context.Context, documentID string) (document.Snapshot, error) {
	raw, err := s.kv.Get(ctx, key(documentID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return document.Snapshot{}, ErrNotFound
		}
		return document.Snapshot{}, fmt.Errorf("load snapshot %s: %w", documentID, err)
	}

	var snap document.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		slog.Warn("corrupt snapshot", "documentId", documentID, "error", err)
		return document.Snapshot{}, ErrNotFound
	}
	return snap, nil
}

// List enumerates stored documents newest-first, parsing each entry just far
// enough for the listing. Corrupt entries are skipped, not fatal.
func (s *Service) List(ctx context.Context) ([]document.Info, error) {
	keys, err := s.kv.Keys(ctx, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list snapshot keys: %w", err)
	}

	infos := make([]document.Info, 0, len(keys))
	for _, k := range keys {
		raw, err := s.kv.Get(ctx, k)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue // deleted between Keys and Get
			}
			return nil, fmt.Errorf("read snapshot %s: %w", k, err)
		}

		var info document.Info
		if err := json.Unmarshal([]byte(raw), &info); err != nil || info.ID == "" {
			slog.Warn("skipping corrupt snapshot entry", "key", k, "error", err)
			continue
		}
		if info.Name == "" {
			info.Name = "Untitled Document"
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].LastModified > infos[j].LastModified
	})
	return infos, nil
}

func (s *Service) Delete(ctx context.Context, documentID string) error {
	if err := s.kv.Delete(ctx, key(documentID)); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", documentID, err)
	}
	return nil
}
