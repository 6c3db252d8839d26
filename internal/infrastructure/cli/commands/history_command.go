package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"

	"github.com/webcreatorLuke/roblox-code-bot/internal/app"
	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
	"github.com/webcreatorLuke/roblox-code-bot/internal/infrastructure/cli/helpers"
	"github.com/webcreatorLuke/roblox-code-bot/internal/infrastructure/store"
)

// NewHistoryCommand creates the history command with all subcommands
func NewHistoryCommand(container *app.Container) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past generations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistory(cmd.Context(), cmd.OutOrStdout(), container, 0)
		},
	}

	historyCmd.AddCommand(
		newHistoryListCommand(container),
		newHistoryShowCommand(container),
		newHistoryClearCommand(container),
		newHistoryExportCommand(container),
		newHistoryStatsCommand(container),
	)

	return historyCmd
}

func newHistoryListCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent generations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistory(cmd.Context(), cmd.OutOrStdout(), container, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Max entries to show (default generation.history_limit)")
	return cmd
}

func newHistoryShowCommand(container *app.Container) *cobra.Command {
	var raw, codeOnly bool

	cmd := &cobra.Command{
		Use:   "show <id|index>",
		Short: "Show one generation by id or by its position in `history list`",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := resolveRecord(cmd.Context(), container, args[0])
			if err != nil {
				return err
			}
			switch {
			case codeOnly:
				_, _, code, _ := domain.ParseArtifact(record.Artifact)
				fmt.Fprintln(cmd.OutOrStdout(), code)
				return nil
			case raw:
				fmt.Fprintln(cmd.OutOrStdout(), record.Artifact)
				return nil
			}
			helpers.RenderRecord(cmd.OutOrStdout(), record)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print only the annotated script")
	cmd.Flags().BoolVar(&codeOnly, "code", false, "Print only the Lua code, without the placement header")
	cmd.MarkFlagsMutuallyExclusive("raw", "code")
	return cmd
}

func newHistoryClearCommand(container *app.Container) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !helpers.Confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), "Delete all generations?", yes) {
				fmt.Fprintln(cmd.OutOrStdout(), helpers.MsgCancelled)
				return nil
			}
			if err := container.Repository.Clear(cmd.Context()); err != nil {
				return goerr.Wrap(err, "failed to clear history")
			}
			container.Synchronizer.Reset()
			fmt.Fprintln(cmd.OutOrStdout(), helpers.MsgHistoryCleared)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newHistoryExportCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "export <path|->",
		Short: "Export generations as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportHistory(cmd, container, args[0], limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Max entries to export (0 exports all)")
	return cmd
}

func newHistoryStatsCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show how generations spread over categories and script kinds",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := container.Repository.List(cmd.Context(), 0)
			if err != nil {
				return goerr.Wrap(err, "failed to list history")
			}
			displayHistoryStatistics(cmd.OutOrStdout(), records)
			return nil
		},
	}
}

func listHistory(ctx context.Context, out io.Writer, container *app.Container, limit int) error {
	if limit > 0 {
		records, err := container.Repository.List(ctx, limit)
		if err != nil {
			return goerr.Wrap(err, "failed to list history")
		}
		helpers.RenderHistory(out, records, "")
		return nil
	}
	if err := container.Synchronizer.Refresh(ctx); err != nil {
		return goerr.Wrap(err, "failed to list history")
	}
	snap := container.State.Snapshot()
	helpers.RenderHistory(out, snap.History, snap.SelectedID())
	return nil
}

// resolveRecord accepts a record id or a 1-based index into the newest records.
func resolveRecord(ctx context.Context, container *app.Container, ref string) (domain.GenerationRecord, error) {
	if idx, err := strconv.Atoi(ref); err == nil && idx > 0 && idx <= container.Config.GetHistoryLimit() {
		records, err := container.Repository.List(ctx, idx)
		if err != nil {
			return domain.GenerationRecord{}, goerr.Wrap(err, "failed to list history")
		}
		if idx <= len(records) {
			return records[idx-1], nil
		}
		return domain.GenerationRecord{}, goerr.Wrap(domain.ErrRecordNotFound, "no generation at that position", goerr.V("index", idx))
	}
	return container.Repository.Get(ctx, ref)
}

func exportHistory(cmd *cobra.Command, container *app.Container, path string, limit int) error {
	out := cmd.OutOrStdout()
	if path != "-" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, domain.SecureFilePermissions)
		if err != nil {
			return goerr.Wrap(err, "failed to open export file", goerr.V("path", path))
		}
		defer f.Close()
		out = f
	}

	n, err := store.ExportJSONL(cmd.Context(), container.Repository, out, limit)
	if err != nil {
		return err
	}
	if path != "-" {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d generations to %s\n", n, path)
	}
	return nil
}

type countEntry struct {
	name  string
	count int
}

func displayHistoryStatistics(out io.Writer, records []domain.GenerationRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, helpers.MsgNoHistoryRecorded)
		return
	}

	categories := map[string]int{}
	kinds := map[string]int{}
	for _, rec := range records {
		categories[rec.Category.Badge().Label()]++
		kinds[string(rec.ArtifactKind)]++
	}

	fmt.Fprintf(out, "Generations: %d\n", len(records))
	fmt.Fprintf(out, "First: %s\nLatest: %s\n", records[len(records)-1].Timestamp(), records[0].Timestamp())
	fmt.Fprintln(out, "Categories:")
	for _, entry := range sortedCounts(categories) {
		fmt.Fprintf(out, "  %-14s %d\n", entry.name, entry.count)
	}
	fmt.Fprintln(out, "Script kinds:")
	for _, entry := range sortedCounts(kinds) {
		fmt.Fprintf(out, "  %-14s %d\n", entry.name, entry.count)
	}
}

// sortedCounts orders by count descending, then by name.
func sortedCounts(counts map[string]int) []countEntry {
	entries := make([]countEntry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, countEntry{name: name, count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})
	return entries
}
