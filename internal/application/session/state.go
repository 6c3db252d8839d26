// Package session holds the application state shared by the generation
// orchestrator, the selection synchronizer and the presentation surfaces.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
)

// Phase is the externally observable orchestrator state.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhasePending Phase = "pending"
)

// Outcome records how the last admitted request ended.
type Outcome string

const (
	OutcomeNone   Outcome = ""
	OutcomeDone   Outcome = "done"
	OutcomeFailed Outcome = "failed"
)

// InFlight is the single request between admission and resolution.
type InFlight struct {
	Prompt    string
	StartedAt time.Time
}

// Data is the mutable content of State. It is only reachable inside Update.
type Data struct {
	History         []domain.GenerationRecord
	Selected        *domain.GenerationRecord
	UserHasSelected bool
	InFlight        *InFlight
	PromptInput     string
	LastOutcome     Outcome
	LastError       error
}

// State is the owned application-state container. All mutations go through
// Update so that check-and-set rules (admission, auto-select) are atomic.
type State struct {
	mu   sync.Mutex
	data Data
}

// New returns an empty state: no history, nothing selected, idle.
func New() *State {
	return &State{}
}

// Update runs fn with exclusive access to the state.
// fn must not block; never call a port from inside it.
func (s *State) Update(fn func(*Data)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.data)
}

// Snapshot is a read-only copy of the state for presentation.
type Snapshot struct {
	Phase           Phase
	History         []domain.GenerationRecord
	View            domain.DisplayView
	HasSelection    bool
	UserHasSelected bool
	InFlight        InFlight
	PromptInput     string
	LastOutcome     Outcome
	LastError       error
}

// SelectedID returns the selected record id or "" when nothing is selected.
func (s Snapshot) SelectedID() string {
	if !s.HasSelection {
		return ""
	}
	return s.View.RecordID
}

// Snapshot copies the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Phase:           PhaseIdle,
		History:         append([]domain.GenerationRecord(nil), s.data.History...),
		UserHasSelected: s.data.UserHasSelected,
		PromptInput:     s.data.PromptInput,
		LastOutcome:     s.data.LastOutcome,
		LastError:       s.data.LastError,
	}
	if s.data.InFlight != nil {
		snap.Phase = PhasePending
		snap.InFlight = *s.data.InFlight
	}
	if s.data.Selected != nil {
		snap.HasSelection = true
		snap.View = domain.ViewOf(*s.data.Selected)
	}
	return snap
}

// Phase reports whether a request is in flight.
func (s *State) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.InFlight != nil {
		return PhasePending
	}
	return PhaseIdle
}

// SetPromptInput records what the user is typing.
func (s *State) SetPromptInput(prompt string) {
	s.Update(func(d *Data) { d.PromptInput = prompt })
}

// PromptInput returns the current prompt input.
func (s *State) PromptInput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.PromptInput
}

// TryBegin admits prompt as the in-flight request. It refuses blank prompts
// and any prompt while another request is pending.
func (s *State) TryBegin(prompt string, now time.Time) bool {
	if strings.TrimSpace(prompt) == "" {
		return false
	}
	admitted := false
	s.Update(func(d *Data) {
		if d.InFlight != nil {
			return
		}
		d.InFlight = &InFlight{Prompt: prompt, StartedAt: now}
		d.PromptInput = prompt
		admitted = true
	})
	return admitted
}

// Finish destroys the in-flight request. A successful finish clears the prompt input.
func (s *State) Finish(outcome Outcome, err error) {
	s.Update(func(d *Data) {
		if outcome == OutcomeDone {
			d.PromptInput = ""
		}
		d.InFlight = nil
		d.LastOutcome = outcome
		d.LastError = err
	})
}
