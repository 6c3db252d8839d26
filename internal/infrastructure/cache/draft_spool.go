// Package cache holds on-disk spools for data that has not reached the
// generation store yet.
package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
	"github.com/webcreatorLuke/roblox-code-bot/internal/pkg/filesystem"
	"github.com/webcreatorLuke/roblox-code-bot/internal/ports"
)

var draftKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// FileDraftSpool stores drafts as JSON blobs addressed by key.
type FileDraftSpool struct {
	dir        string
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
}

// DraftOption configures a FileDraftSpool.
type DraftOption func(*FileDraftSpool)

// WithDir overrides the spool directory.
func WithDir(dir string) DraftOption {
	return func(s *FileDraftSpool) { s.dir = dir }
}

// WithTTL sets how long a draft is kept. Zero keeps drafts forever.
func WithTTL(ttl time.Duration) DraftOption {
	return func(s *FileDraftSpool) { s.ttl = ttl }
}

// WithMaxEntries caps the number of drafts; the oldest are evicted first.
func WithMaxEntries(n int) DraftOption {
	return func(s *FileDraftSpool) { s.maxEntries = n }
}

// WithNow overrides the clock used for expiry.
func WithNow(now func() time.Time) DraftOption {
	return func(s *FileDraftSpool) { s.now = now }
}

// NewFileDraftSpool returns a spool rooted under ~/.robloxcoder/drafts.
func NewFileDraftSpool(opts ...DraftOption) *FileDraftSpool {
	s := &FileDraftSpool{
		dir:        filepath.Join(filesystem.AppDir(), "drafts"),
		maxEntries: domain.DefaultMaxDraftEntries,
		ttl:        domain.DefaultDraftTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromSettings applies config values on top of the defaults.
func NewFromSettings(cfg *domain.Config) *FileDraftSpool {
	opts := []DraftOption{WithTTL(cfg.GetDraftTTL()), WithMaxEntries(cfg.GetDraftMaxEntries())}
	if cfg.Drafts.Dir != "" {
		opts = append(opts, WithDir(filesystem.ExpandPath(cfg.Drafts.Dir)))
	}
	return NewFileDraftSpool(opts...)
}

// Put stores a draft, replacing any draft with the same key.
func (s *FileDraftSpool) Put(_ context.Context, draft domain.Draft) error {
	if !draftKeyPattern.MatchString(draft.Key) {
		return goerr.New("invalid draft key", goerr.V("key", draft.Key))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dir, domain.DirectoryPermissions); err != nil {
		return goerr.Wrap(err, "failed to create draft directory", goerr.V("dir", s.dir))
	}
	data, err := json.Marshal(draft)
	if err != nil {
		return goerr.Wrap(err, "failed to encode draft", goerr.V("key", draft.Key))
	}
	if err := os.WriteFile(s.pathFor(draft.Key), data, domain.SecureFilePermissions); err != nil {
		return goerr.Wrap(err, "failed to write draft", goerr.V("key", draft.Key))
	}
	return s.evictIfNeeded()
}

// Get returns the draft stored under key. Expired drafts are removed and reported missing.
func (s *FileDraftSpool) Get(_ context.Context, key string) (domain.Draft, error) {
	if !draftKeyPattern.MatchString(key) {
		return domain.Draft{}, goerr.Wrap(domain.ErrDraftNotFound, "invalid draft key", goerr.V("key", key))
	}
	path := s.pathFor(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Draft{}, goerr.Wrap(domain.ErrDraftNotFound, "draft not found", goerr.V("key", key))
		}
		return domain.Draft{}, goerr.Wrap(err, "failed to read draft", goerr.V("key", key))
	}
	var draft domain.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return domain.Draft{}, goerr.Wrap(err, "failed to decode draft", goerr.V("key", key))
	}
	if s.expired(draft) {
		_ = os.Remove(path)
		return domain.Draft{}, goerr.Wrap(domain.ErrDraftNotFound, "draft expired", goerr.V("key", key))
	}
	return draft, nil
}

// List returns live drafts, newest failure first (best-effort: unreadable files are skipped).
func (s *FileDraftSpool) List(context.Context) ([]domain.Draft, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to read draft directory", goerr.V("dir", s.dir))
	}
	var drafts []domain.Draft
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, f.Name()))
		if err != nil {
			continue
		}
		var draft domain.Draft
		if err := json.Unmarshal(data, &draft); err != nil {
			continue
		}
		if s.expired(draft) {
			_ = os.Remove(filepath.Join(s.dir, f.Name()))
			continue
		}
		drafts = append(drafts, draft)
	}
	sort.Slice(drafts, func(i, j int) bool { return drafts[i].FailedAt.After(drafts[j].FailedAt) })
	return drafts, nil
}

// Delete removes the draft stored under key.
func (s *FileDraftSpool) Delete(_ context.Context, key string) error {
	if !draftKeyPattern.MatchString(key) {
		return goerr.Wrap(domain.ErrDraftNotFound, "invalid draft key", goerr.V("key", key))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.pathFor(key)); err != nil {
		if os.IsNotExist(err) {
			return goerr.Wrap(domain.ErrDraftNotFound, "draft not found", goerr.V("key", key))
		}
		return goerr.Wrap(err, "failed to delete draft", goerr.V("key", key))
	}
	return nil
}

// Dir exposes the spool directory path.
func (s *FileDraftSpool) Dir() string {
	return s.dir
}

func (s *FileDraftSpool) pathFor(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileDraftSpool) expired(d domain.Draft) bool {
	return s.ttl > 0 && s.now().Sub(d.FailedAt) > s.ttl
}

func (s *FileDraftSpool) evictIfNeeded() error {
	if s.maxEntries <= 0 {
		return nil
	}
	files, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return goerr.Wrap(err, "failed to read draft directory", goerr.V("dir", s.dir))
	}
	if len(files) <= s.maxEntries {
		return nil
	}
	type fileInfo struct {
		name string
		mod  time.Time
	}
	var infos []fileInfo
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		infos = append(infos, fileInfo{name: f.Name(), mod: info.ModTime()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].mod.Before(infos[j].mod) })
	for len(infos) > s.maxEntries {
		_ = os.Remove(filepath.Join(s.dir, infos[0].name))
		infos = infos[1:]
	}
	return nil
}

var _ ports.DraftSpool = (*FileDraftSpool)(nil)
