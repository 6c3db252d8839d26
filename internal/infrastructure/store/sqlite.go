package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	_ "modernc.org/sqlite"

	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
	"github.com/webcreatorLuke/roblox-code-bot/internal/ports"
)

// SQLiteStore persists generations in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewSQLite creates (or opens) the database at path.
func NewSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("path", path))
	}

	dsn := path + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("path", path))
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to ping database", goerr.V("path", path))
	}

	s := &SQLiteStore{db: db, path: path, now: time.Now}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS generations (
		id TEXT PRIMARY KEY,
		prompt TEXT NOT NULL,
		artifact TEXT NOT NULL,
		artifact_kind TEXT NOT NULL,
		placement TEXT NOT NULL,
		category TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_generations_created ON generations(created_at DESC);
	`)
	if err != nil {
		return goerr.Wrap(err, "failed to initialize schema")
	}
	return nil
}

// Create inserts a new record. The single INSERT is atomic.
func (s *SQLiteStore) Create(ctx context.Context, gen domain.NewGeneration) (domain.GenerationRecord, error) {
	id, err := newRecordID()
	if err != nil {
		return domain.GenerationRecord{}, err
	}
	record := gen.Record(id, s.now().UTC())

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, `INSERT INTO generations
		(id, prompt, artifact, artifact_kind, placement, category, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Prompt,
		record.Artifact,
		string(record.ArtifactKind),
		record.Placement,
		string(record.Category),
		record.CreatedAt.UnixNano(),
	)
	if err != nil {
		return domain.GenerationRecord{}, goerr.Wrap(err, "failed to insert generation", goerr.V("id", record.ID))
	}
	return record, nil
}

// List returns up to limit records (0 for all), newest first.
// UUIDv7 ids break ties between records created in the same nanosecond.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]domain.GenerationRecord, error) {
	query := `SELECT id, prompt, artifact, artifact_kind, placement, category, created_at
		FROM generations ORDER BY created_at DESC, id DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query generations")
	}
	defer rows.Close()

	records := make([]domain.GenerationRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate generations")
	}
	return records, nil
}

// Get returns a single record.
func (s *SQLiteStore) Get(ctx context.Context, id string) (domain.GenerationRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, prompt, artifact, artifact_kind, placement, category, created_at
		FROM generations WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GenerationRecord{}, goerr.Wrap(domain.ErrRecordNotFound, "generation not found", goerr.V("id", id))
	}
	return rec, err
}

// Clear deletes all generations.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, "DELETE FROM generations"); err != nil {
		return goerr.Wrap(err, "failed to clear generations")
	}
	return nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return goerr.Wrap(err, "sqlite ping failed", goerr.V("path", s.path))
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (domain.GenerationRecord, error) {
	var rec domain.GenerationRecord
	var kind, category string
	var created int64
	if err := row.Scan(&rec.ID, &rec.Prompt, &rec.Artifact, &kind, &rec.Placement, &category, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, goerr.Wrap(err, "failed to scan generation")
	}
	rec.ArtifactKind = domain.ArtifactKind(kind)
	rec.Category = domain.Category(category)
	rec.CreatedAt = time.Unix(0, created).UTC()
	return rec, nil
}

var _ ports.GenerationRepository = (*SQLiteStore)(nil)
