package session_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/webcreatorLuke/roblox-code-bot/internal/application/session"
	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
)

func TestTryBegin(t *testing.T) {
	now := time.Now()

	t.Run("rejects blank prompts", func(t *testing.T) {
		state := session.New()
		gt.Bool(t, state.TryBegin("", now)).False()
		gt.Bool(t, state.TryBegin(" \n\t", now)).False()
		gt.Value(t, state.Phase()).Equal(session.PhaseIdle)
	})

	t.Run("admits one request at a time", func(t *testing.T) {
		state := session.New()
		gt.Bool(t, state.TryBegin("make a sword", now)).True()
		gt.Value(t, state.Phase()).Equal(session.PhasePending)
		gt.Bool(t, state.TryBegin("make a shield", now)).False()
		gt.Value(t, state.Snapshot().InFlight.Prompt).Equal("make a sword")
	})

	t.Run("concurrent admission lets exactly one through", func(t *testing.T) {
		state := session.New()
		var wg sync.WaitGroup
		var mu sync.Mutex
		admitted := 0
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if state.TryBegin("race", now) {
					mu.Lock()
					admitted++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		gt.Value(t, admitted).Equal(1)
	})
}

func TestFinish(t *testing.T) {
	now := time.Now()

	t.Run("done clears the prompt input", func(t *testing.T) {
		state := session.New()
		gt.Bool(t, state.TryBegin("coins", now)).True()
		state.Finish(session.OutcomeDone, nil)

		snap := state.Snapshot()
		gt.Value(t, snap.Phase).Equal(session.PhaseIdle)
		gt.Value(t, snap.PromptInput).Equal("")
		gt.Value(t, snap.LastOutcome).Equal(session.OutcomeDone)
	})

	t.Run("failure keeps the prompt input and records the error", func(t *testing.T) {
		state := session.New()
		gt.Bool(t, state.TryBegin("coins", now)).True()
		boom := errors.New("boom")
		state.Finish(session.OutcomeFailed, boom)

		snap := state.Snapshot()
		gt.Value(t, snap.Phase).Equal(session.PhaseIdle)
		gt.Value(t, snap.PromptInput).Equal("coins")
		gt.Error(t, snap.LastError).Is(boom)
	})
}

func TestSnapshotIsACopy(t *testing.T) {
	state := session.New()
	rec := domain.GenerationRecord{ID: "a", Prompt: "p"}
	state.Update(func(d *session.Data) {
		d.History = []domain.GenerationRecord{rec}
		d.Selected = &rec
	})

	snap := state.Snapshot()
	snap.History[0].Prompt = "mutated"

	again := state.Snapshot()
	gt.Value(t, again.History[0].Prompt).Equal("p")
	gt.Value(t, again.SelectedID()).Equal("a")
	gt.Bool(t, again.HasSelection).True()
}
