// Package tui is the interactive terminal front end: a prompt box, the
// recent history and the selected script.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/webcreatorLuke/roblox-code-bot/internal/application/generation"
	"github.com/webcreatorLuke/roblox-code-bot/internal/application/selection"
	"github.com/webcreatorLuke/roblox-code-bot/internal/application/session"
	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
	"github.com/webcreatorLuke/roblox-code-bot/internal/ports"
)

type focus int

const (
	focusPrompt focus = iota
	focusHistory
)

// Deps are the services the TUI drives.
type Deps struct {
	State        *session.State
	Orchestrator *generation.Orchestrator
	Synchronizer *selection.Synchronizer
	Clipboard    ports.Clipboard
}

type historyLoadedMsg struct{ err error }

type generationDoneMsg struct {
	res generation.Result
	err error
}

type copiedExpiredMsg struct{ seq int }

// Model is the bubbletea model.
type Model struct {
	ctx  context.Context
	deps Deps
	th   theme

	input   textarea.Model
	spinner spinner.Model

	width  int
	height int

	focus      focus
	cursor     int
	exampleIdx int
	examples   []domain.ExamplePrompt

	submitting bool
	errLine    string
	copied     bool
	copiedSeq  int
}

// New builds the model. ctx bounds every generation started from the UI.
func New(ctx context.Context, deps Deps) Model {
	ta := textarea.New()
	ta.Placeholder = "Describe the script you want, e.g. \"Make a double jump script\""
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetHeight(3)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:      ctx,
		deps:     deps,
		th:       defaultTheme(),
		input:    ta,
		spinner:  sp,
		examples: domain.ExamplePrompts(),
	}
}

// Run starts the program on the alternate screen.
func Run(ctx context.Context, deps Deps) error {
	_, err := tea.NewProgram(New(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.loadHistory())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(max(20, msg.Width-4))
		return m, nil

	case historyLoadedMsg:
		if msg.err != nil {
			m.errLine = "Could not load history: " + msg.err.Error()
		}
		m.clampCursor()
		return m, nil

	case generationDoneMsg:
		m.submitting = false
		switch {
		case msg.err != nil:
			m.errLine = failureLine(msg.res, msg.err)
		case msg.res.Status == generation.StatusDone:
			m.errLine = ""
			m.cursor = 0
		}
		m.restorePrompt()
		return m, nil

	case copiedExpiredMsg:
		if msg.seq == m.copiedSeq {
			m.copied = false
		}
		return m, nil

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.mirrorPrompt()
	return m, cmd
}

func (m Model) updateKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+s", "alt+enter":
		return m.submit()
	case "ctrl+e":
		return m.nextExample(), nil
	case "ctrl+y":
		return m.copySelected()
	case "tab", "shift+tab":
		return m.toggleFocus(), nil
	}

	if m.focus == focusHistory {
		return m.updateHistoryKey(k)
	}

	if k.String() == "esc" {
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(k)
	m.mirrorPrompt()
	return m, cmd
}

func (m Model) updateHistoryKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.deps.Synchronizer.History())-1 {
			m.cursor++
		}
	case "enter":
		m.deps.Synchronizer.PickIndex(m.cursor)
	case "esc":
		return m.toggleFocus(), nil
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.submitting || m.deps.State.Phase() == session.PhasePending {
		return m, nil
	}
	prompt := m.input.Value()
	m.submitting = true
	m.errLine = ""

	ctx, orch := m.ctx, m.deps.Orchestrator
	run := func() tea.Msg {
		res, err := orch.SubmitRequest(ctx, generation.Request{Prompt: prompt})
		return generationDoneMsg{res: res, err: err}
	}
	return m, tea.Batch(run, m.spinner.Tick)
}

func (m Model) nextExample() Model {
	if len(m.examples) == 0 {
		return m
	}
	example := m.examples[m.exampleIdx%len(m.examples)]
	m.exampleIdx = (m.exampleIdx + 1) % len(m.examples)
	m.input.SetValue(example.Text)
	m.mirrorPrompt()
	m.focus = focusPrompt
	m.input.Focus()
	return m
}

// mirrorPrompt records the textarea content in the session state.
func (m *Model) mirrorPrompt() {
	m.deps.State.SetPromptInput(m.input.Value())
}

// restorePrompt loads the textarea from the session state, which a
// successful generation clears.
func (m *Model) restorePrompt() {
	prompt := m.deps.State.PromptInput()
	if prompt == m.input.Value() {
		return
	}
	if prompt == "" {
		m.input.Reset()
		return
	}
	m.input.SetValue(prompt)
}

func (m Model) copySelected() (tea.Model, tea.Cmd) {
	view, ok := m.deps.Synchronizer.Current()
	if !ok || m.deps.Clipboard == nil || !m.deps.Clipboard.Enabled() {
		return m, nil
	}
	if err := m.deps.Clipboard.Copy(view.Artifact); err != nil {
		m.errLine = "Copy failed: " + err.Error()
		return m, nil
	}
	m.copied = true
	m.copiedSeq++
	seq := m.copiedSeq
	return m, tea.Tick(domain.CopiedNoticeDuration, func(time.Time) tea.Msg {
		return copiedExpiredMsg{seq: seq}
	})
}

func (m Model) toggleFocus() Model {
	if m.focus == focusPrompt {
		m.focus = focusHistory
		m.input.Blur()
		m.clampCursor()
		return m
	}
	m.focus = focusPrompt
	m.input.Focus()
	return m
}

func (m *Model) clampCursor() {
	n := len(m.deps.Synchronizer.History())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) loadHistory() tea.Cmd {
	ctx, syncer := m.ctx, m.deps.Synchronizer
	return func() tea.Msg {
		return historyLoadedMsg{err: syncer.Refresh(ctx)}
	}
}

func failureLine(res generation.Result, err error) string {
	line := "Generation failed: " + err.Error()
	if res.DraftKey != "" {
		line += fmt.Sprintf(" (kept as draft %s)", res.DraftKey)
	}
	return line
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.th.Header.Render("Roblox Script Generator"))
	b.WriteString("\n\n")

	promptBox := m.th.Panel
	if m.focus == focusPrompt {
		promptBox = m.th.Focused
	}
	b.WriteString(promptBox.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.th.Muted.Render("ctrl+s/alt+enter generate · ctrl+e example · tab history · ctrl+y copy · ctrl+c quit"))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	historyBox := m.th.Panel
	if m.focus == focusHistory {
		historyBox = m.th.Focused
	}
	b.WriteString(historyBox.Render(m.historyView()))
	b.WriteString("\n")
	b.WriteString(m.selectedView())

	return b.String()
}

func (m Model) statusLine() string {
	switch {
	case m.submitting:
		return m.spinner.View() + " Generating..."
	case m.errLine != "":
		return m.th.Danger.Render(m.errLine)
	case m.copied:
		return m.th.Success.Render("Copied!")
	default:
		return ""
	}
}

func (m Model) historyView() string {
	history := m.deps.Synchronizer.History()
	if len(history) == 0 {
		return m.th.Muted.Render("No generations yet. Press ctrl+e for an example.")
	}
	selectedID := m.deps.State.Snapshot().SelectedID()

	lines := make([]string, 0, len(history)+1)
	lines = append(lines, m.th.Accent.Render("Recent generations"))
	for i, rec := range history {
		marker := "  "
		if m.focus == focusHistory && i == m.cursor {
			marker = m.th.Accent.Render("> ")
		}
		prompt := truncate(rec.Prompt, 48)
		if rec.ID == selectedID {
			prompt = m.th.Selected.Render(prompt)
		}
		lines = append(lines, fmt.Sprintf("%s%s  %s %s",
			marker,
			m.th.Muted.Render(rec.Timestamp()),
			m.th.badge(rec.Category),
			prompt))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) selectedView() string {
	view, ok := m.deps.Synchronizer.Current()
	if !ok {
		return ""
	}
	header := fmt.Sprintf("%s %s  %s %s",
		m.th.Muted.Render("Go in:"), view.Placement,
		m.th.Muted.Render("This is a:"), m.th.kind(view.ArtifactKind))
	return header + "\n" + m.th.Code.Render(view.Artifact)
}

func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
