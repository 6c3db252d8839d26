package helpers

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
)

// promptPreviewWidth caps how much of a prompt a history row shows.
const promptPreviewWidth = 48

var paletteColors = map[domain.Palette]*color.Color{
	domain.PaletteBlue:   color.New(color.FgBlue, color.Bold),
	domain.PalettePurple: color.New(color.FgMagenta, color.Bold),
	domain.PaletteGreen:  color.New(color.FgGreen, color.Bold),
	domain.PaletteOrange: color.New(color.FgYellow, color.Bold),
	domain.PalettePink:   color.New(color.FgHiMagenta, color.Bold),
	domain.PaletteCyan:   color.New(color.FgCyan, color.Bold),
	domain.PaletteGray:   color.New(color.FgHiBlack, color.Bold),
}

var (
	dim     = color.New(color.Faint)
	heading = color.New(color.Bold)
	okColor = color.New(color.FgGreen)
	warnCol = color.New(color.FgYellow)
	errCol  = color.New(color.FgRed, color.Bold)
)

// Badge renders the category label in its palette colour.
func Badge(category domain.Category) string {
	c, ok := paletteColors[category.Palette()]
	if !ok {
		c = paletteColors[domain.PaletteGray]
	}
	return c.Sprintf("[%s]", category.Label())
}

// KindBadge renders the artifact kind in its palette colour.
func KindBadge(kind domain.ArtifactKind) string {
	c, ok := paletteColors[kind.Palette()]
	if !ok {
		c = paletteColors[domain.PaletteGray]
	}
	return c.Sprint(string(kind))
}

// RenderRecord prints a generation with its annotated artifact.
func RenderRecord(out io.Writer, record domain.GenerationRecord) {
	fmt.Fprintf(out, "%s %s\n", Badge(record.Category), heading.Sprint(record.Prompt))
	fmt.Fprintf(out, "%s %s  %s %s  %s\n",
		dim.Sprint("kind:"), KindBadge(record.ArtifactKind),
		dim.Sprint("place in:"), record.Placement,
		dim.Sprint(record.Timestamp()))
	fmt.Fprintf(out, "%s %s\n\n", dim.Sprint("id:"), record.ID)
	fmt.Fprintln(out, record.Artifact)
}

// RenderHistory prints one line per record, marking the selected one.
func RenderHistory(out io.Writer, records []domain.GenerationRecord, selectedID string) {
	if len(records) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return
	}
	for i, record := range records {
		marker := " "
		if record.ID == selectedID {
			marker = okColor.Sprint(">")
		}
		fmt.Fprintf(out, "%s %2d  %-16s %s %s  %s\n",
			marker, i+1,
			record.Timestamp(),
			Badge(record.Category),
			Preview(record.Prompt, promptPreviewWidth),
			dim.Sprint(record.ID))
	}
}

// RenderReport prints doctor checks with coloured status tags.
func RenderReport(out io.Writer, report domain.HealthReport) {
	for _, check := range report.Checks {
		fmt.Fprintf(out, "%s %s - %s\n", statusTag(check.Status), check.Name, check.Details)
	}
}

// RenderDrafts prints spooled drafts newest first.
func RenderDrafts(out io.Writer, drafts []domain.Draft) {
	if len(drafts) == 0 {
		fmt.Fprintln(out, MsgNoDrafts)
		return
	}
	for _, draft := range drafts {
		fmt.Fprintf(out, "%s  %s  %s %s\n    %s\n",
			draft.Key,
			draft.FailedAt.Local().Format(domain.HistoryTimestampLayout),
			Badge(draft.Generation.Category),
			Preview(draft.Generation.Prompt, promptPreviewWidth),
			dim.Sprint(Preview(draft.Reason, 96)))
	}
}

// RenderExamples prints the built-in example prompts.
func RenderExamples(out io.Writer, examples []domain.ExamplePrompt) {
	for i, example := range examples {
		fmt.Fprintf(out, "%d. %s %s\n", i+1, heading.Sprint(example.Title), dim.Sprintf("%q", example.Text))
	}
}

// Preview collapses whitespace and cuts s to at most width runes.
func Preview(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-1]) + "…"
}

func statusTag(status domain.HealthStatus) string {
	tag := "[" + strings.ToUpper(string(status)) + "]"
	switch status {
	case domain.HealthOK:
		return okColor.Sprint(tag)
	case domain.HealthWarn:
		return warnCol.Sprint(tag)
	default:
		return errCol.Sprint(tag)
	}
}
