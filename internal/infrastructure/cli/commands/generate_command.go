package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"

	"github.com/webcreatorLuke/roblox-code-bot/internal/app"
	"github.com/webcreatorLuke/roblox-code-bot/internal/application/generation"
	"github.com/webcreatorLuke/roblox-code-bot/internal/infrastructure/cli/helpers"
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand(container *app.Container) *cobra.Command {
	var (
		model   string
		copyOut bool
		asJSON  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:     "generate [request]",
		Aliases: []string{"gen"},
		Short:   "Generate a Roblox script from a natural-language request",
		Example: `  robloxcoder generate "Make a double jump script"
  echo "Create a sword tool" | robloxcoder generate -`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("timeout") {
				container.Orchestrator.Timeout = timeout
			}
			if !cmd.Flags().Changed("copy") {
				copyOut = container.Config.Preferences.CopyOnGenerate
			}

			spinner := helpers.NewSpinner(cmd.ErrOrStderr(), "Generating...")
			spinner.Start()
			res, err := container.Orchestrator.SubmitRequest(cmd.Context(), generation.Request{
				Prompt:          prompt,
				Model:           model,
				CopyToClipboard: copyOut,
			})
			spinner.Stop()

			copied := copyOut && container.Clipboard != nil && container.Clipboard.Enabled()
			return renderResult(cmd, res, err, copied, asJSON)
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Override model name (default from config)")
	cmd.Flags().BoolVarP(&copyOut, "copy", "c", false, "Copy the annotated script to the clipboard")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the stored record as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Bound the service call (0 waits indefinitely)")

	return cmd
}

func renderResult(cmd *cobra.Command, res generation.Result, err error, copied, asJSON bool) error {
	out := cmd.OutOrStdout()
	switch res.Status {
	case generation.StatusSkipped:
		return goerr.New("nothing to generate: the request is empty or another generation is pending")
	case generation.StatusFailed:
		if res.DraftKey != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "The script was generated but could not be saved. Kept as draft %s; run `robloxcoder drafts retry %s`.\n",
				res.DraftKey, res.DraftKey)
		}
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Record)
	}
	helpers.RenderRecord(out, res.Record)
	if copied {
		fmt.Fprintln(cmd.ErrOrStderr(), helpers.MsgCopied)
	}
	return nil
}

// readPrompt joins args, or reads stdin when the only argument is "-".
func readPrompt(in io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		raw, err := io.ReadAll(in)
		if err != nil {
			return "", goerr.Wrap(err, "failed to read request from stdin")
		}
		return strings.TrimSpace(string(raw)), nil
	}
	return strings.TrimSpace(strings.Join(args, " ")), nil
}
