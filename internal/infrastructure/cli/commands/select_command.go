package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"

	"github.com/webcreatorLuke/roblox-code-bot/internal/app"
	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
	"github.com/webcreatorLuke/roblox-code-bot/internal/infrastructure/cli/helpers"
)

// NewSelectCommand creates the select command
func NewSelectCommand(container *app.Container) *cobra.Command {
	var (
		copyOut bool
		writeTo string
	)

	cmd := &cobra.Command{
		Use:   "select <id>",
		Short: "Select a generation from the recent history and display it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.Synchronizer.Refresh(cmd.Context()); err != nil {
				return err
			}
			if !container.Synchronizer.Pick(args[0]) {
				return goerr.Wrap(domain.ErrRecordNotFound, "generation is not in the recent history", goerr.V("id", args[0]))
			}
			view, _ := container.Synchronizer.Current()
			record := domain.GenerationRecord{
				ID: view.RecordID, Prompt: view.Prompt, Artifact: view.Artifact,
				ArtifactKind: view.ArtifactKind, Placement: view.Placement,
				Category: view.Category, CreatedAt: view.CreatedAt,
			}
			helpers.RenderRecord(cmd.OutOrStdout(), record)

			if writeTo != "" {
				path := filepath.Join(writeTo, view.ArtifactKind.FileName())
				if err := os.WriteFile(path, []byte(view.Artifact), 0o644); err != nil {
					return goerr.Wrap(err, "failed to write script", goerr.V("path", path))
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
			}
			if copyOut {
				if err := container.Clipboard.Copy(view.Artifact); err != nil {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), helpers.MsgCopied)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&copyOut, "copy", "c", false, "Copy the annotated script to the clipboard")
	cmd.Flags().StringVar(&writeTo, "write", "", "Write the script into this directory as <Kind>.lua")
	return cmd
}

// NewExamplesCommand creates the examples command
func NewExamplesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "examples",
		Short:       "List example requests",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{AnnotationNoContainer: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			helpers.RenderExamples(cmd.OutOrStdout(), domain.ExamplePrompts())
			return nil
		},
	}
}
