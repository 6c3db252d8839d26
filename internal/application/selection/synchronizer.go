// Package selection keeps the displayed record consistent with the history list.
package selection

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/webcreatorLuke/roblox-code-bot/internal/application/session"
	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
	"github.com/webcreatorLuke/roblox-code-bot/internal/ports"
)

// Synchronizer owns the selection inside a session.State.
//
// Three triggers move the selection: a history load auto-selects the newest
// record once, an explicit pick selects any listed record, and a completed
// generation is always force-selected.
type Synchronizer struct {
	State      *session.State
	Repository ports.GenerationRepository
	Logger     ports.Logger
	Limit      int
}

// New builds a Synchronizer bounded to limit history entries.
func New(state *session.State, repo ports.GenerationRepository, logger ports.Logger, limit int) *Synchronizer {
	if limit <= 0 {
		limit = domain.HistoryLimit
	}
	return &Synchronizer{State: state, Repository: repo, Logger: logger, Limit: limit}
}

// Refresh re-lists history from the store and applies OnHistoryLoaded.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	if s.State == nil || s.Repository == nil {
		return errors.New("selection.Synchronizer dependencies not satisfied")
	}
	listStartedAt := time.Now()
	records, err := s.Repository.List(ctx, s.limit())
	if err != nil {
		return goerr.Wrap(err, "failed to list generation history", goerr.V("limit", s.limit()))
	}
	s.OnHistoryLoaded(records, listStartedAt)
	return nil
}

// OnHistoryLoaded replaces the history snapshot with records read by a list
// that started at listStartedAt. When nothing is selected and the user never
// picked a record, the newest record becomes selected. It reports whether
// that auto-selection happened.
//
// A selected record missing from records is kept at the head only when it was
// created after the list started and is newer than every listed record: its
// insertion was not yet visible to the read. Any other missing selection was
// removed from the store and is dropped.
func (s *Synchronizer) OnHistoryLoaded(records []domain.GenerationRecord, listStartedAt time.Time) bool {
	autoSelected := false
	dropped := ""
	s.State.Update(func(d *session.Data) {
		history := boundHistory(records, s.limit())
		if d.Selected != nil && !contains(history, d.Selected.ID) {
			if !d.Selected.CreatedAt.Before(listStartedAt) && newerThanAll(*d.Selected, history) {
				history = boundHistory(append([]domain.GenerationRecord{*d.Selected}, history...), s.limit())
			} else {
				dropped = d.Selected.ID
				d.Selected = nil
			}
		}
		d.History = history

		if len(history) == 0 || d.Selected != nil || d.UserHasSelected {
			return
		}
		first := history[0]
		d.Selected = &first
		autoSelected = true
	})
	if dropped != "" {
		s.debug("dropped selection missing from store", map[string]interface{}{"id": dropped})
	}
	if autoSelected {
		s.debug("auto-selected newest record", map[string]interface{}{"id": records[0].ID})
	}
	return autoSelected
}

// Pick selects the listed record with the given id. Unknown ids leave the
// selection and the displayed fields untouched and return false.
func (s *Synchronizer) Pick(id string) bool {
	found := false
	s.State.Update(func(d *session.Data) {
		for _, rec := range d.History {
			if rec.ID != id {
				continue
			}
			picked := rec
			d.Selected = &picked
			d.UserHasSelected = true
			found = true
			return
		}
	})
	if !found {
		s.debug("ignored pick of unknown record", map[string]interface{}{"id": id})
	}
	return found
}

// PickIndex selects the record at position i of the current history.
func (s *Synchronizer) PickIndex(i int) bool {
	history := s.History()
	if i < 0 || i >= len(history) {
		return false
	}
	return s.Pick(history[i].ID)
}

// ForceSelect selects a freshly created record regardless of the current
// selection and places it at the head of the history snapshot.
func (s *Synchronizer) ForceSelect(record domain.GenerationRecord) {
	s.State.Update(func(d *session.Data) {
		selected := record
		d.Selected = &selected
		if !contains(d.History, record.ID) {
			d.History = boundHistory(append([]domain.GenerationRecord{record}, d.History...), s.limit())
		}
	})
}

// Reset forgets history and selection, as after the store was cleared.
// The next history load may auto-select again.
func (s *Synchronizer) Reset() {
	s.State.Update(func(d *session.Data) {
		d.History = nil
		d.Selected = nil
		d.UserHasSelected = false
	})
}

// Current returns the displayed view, if any record is selected.
func (s *Synchronizer) Current() (domain.DisplayView, bool) {
	snap := s.State.Snapshot()
	return snap.View, snap.HasSelection
}

// History returns a copy of the history snapshot, newest first.
func (s *Synchronizer) History() []domain.GenerationRecord {
	return s.State.Snapshot().History
}

func (s *Synchronizer) limit() int {
	if s.Limit <= 0 {
		return domain.HistoryLimit
	}
	return s.Limit
}

func (s *Synchronizer) debug(msg string, fields map[string]interface{}) {
	if s.Logger != nil {
		s.Logger.Debug(msg, fields)
	}
}

func boundHistory(records []domain.GenerationRecord, limit int) []domain.GenerationRecord {
	if len(records) > limit {
		records = records[:limit]
	}
	return append([]domain.GenerationRecord(nil), records...)
}

func contains(records []domain.GenerationRecord, id string) bool {
	for _, rec := range records {
		if rec.ID == id {
			return true
		}
	}
	return false
}

func newerThanAll(rec domain.GenerationRecord, records []domain.GenerationRecord) bool {
	for _, other := range records {
		if other.CreatedAt.After(rec.CreatedAt) {
			return false
		}
	}
	return true
}
