// Package store provides GenerationRepository backends: SQLite (default),
// Firestore and in-memory.
package store

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
	"github.com/webcreatorLuke/roblox-code-bot/internal/pkg/filesystem"
	"github.com/webcreatorLuke/roblox-code-bot/internal/ports"
)

// Open builds the repository selected by cfg.Storage.Backend.
func Open(ctx context.Context, cfg domain.StorageSettings) (ports.GenerationRepository, error) {
	switch cfg.Backend {
	case "", domain.BackendSQLite:
		return NewSQLite(ctx, SQLitePath(cfg))
	case domain.BackendFirestore:
		return NewFirestore(ctx, cfg.FirestoreProject, WithCollectionPrefix(cfg.CollectionPrefix))
	case domain.BackendMemory:
		return NewMemory(), nil
	default:
		return nil, goerr.New("unsupported storage backend", goerr.V("backend", cfg.Backend))
	}
}

// SQLitePath resolves the database location, defaulting to ~/.robloxcoder/history.db.
func SQLitePath(cfg domain.StorageSettings) string {
	if cfg.SQLitePath != "" {
		return filesystem.ExpandPath(cfg.SQLitePath)
	}
	return filepath.Join(filesystem.AppDir(), "history.db")
}

// ExportJSONL writes up to limit records (0 for all) to w, one JSON object per line.
func ExportJSONL(ctx context.Context, repo ports.GenerationRepository, w io.Writer, limit int) (int, error) {
	records, err := repo.List(ctx, limit)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list records for export")
	}
	buf := bufio.NewWriter(w)
	enc := json.NewEncoder(buf)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return 0, goerr.Wrap(err, "failed to encode record", goerr.V("id", rec.ID))
		}
	}
	if err := buf.Flush(); err != nil {
		return 0, goerr.Wrap(err, "failed to flush export")
	}
	return len(records), nil
}

// newRecordID returns a time-ordered UUIDv7 string.
func newRecordID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate record id")
	}
	return id.String(), nil
}
