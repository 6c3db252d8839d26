package commands

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"

	"github.com/webcreatorLuke/roblox-code-bot/internal/app"
	"github.com/webcreatorLuke/roblox-code-bot/internal/application/generation"
	"github.com/webcreatorLuke/roblox-code-bot/internal/infrastructure/cli/helpers"
)

// NewDraftsCommand creates the drafts command with all subcommands
func NewDraftsCommand(container *app.Container) *cobra.Command {
	draftsCmd := &cobra.Command{
		Use:   "drafts",
		Short: "Manage generations that could not be saved",
	}

	draftsCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List unsaved generations",
			RunE: func(cmd *cobra.Command, args []string) error {
				if container.Drafts == nil {
					return goerr.New(helpers.ErrDraftsDisabled)
				}
				drafts, err := container.Drafts.List(cmd.Context())
				if err != nil {
					return err
				}
				helpers.RenderDrafts(cmd.OutOrStdout(), drafts)
				return nil
			},
		},
		newDraftsRetryCommand(container),
		newDraftsDropCommand(container),
	)

	return draftsCmd
}

func newDraftsRetryCommand(container *app.Container) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "retry [key]",
		Short: "Store an unsaved generation again",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Drafts == nil {
				return goerr.New(helpers.ErrDraftsDisabled)
			}
			keys := args
			if all {
				drafts, err := container.Drafts.List(cmd.Context())
				if err != nil {
					return err
				}
				keys = keys[:0]
				for _, draft := range drafts {
					keys = append(keys, draft.Key)
				}
			}
			if len(keys) == 0 {
				return goerr.New("pass a draft key or --all")
			}

			for _, key := range keys {
				res, err := container.Orchestrator.RetryDraft(cmd.Context(), key)
				if err != nil {
					return err
				}
				if res.Status == generation.StatusDone {
					fmt.Fprintf(cmd.OutOrStdout(), "Stored draft %s as %s\n", key, res.Record.ID)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Retry every draft")
	return cmd
}

func newDraftsDropCommand(container *app.Container) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "drop <key>",
		Short: "Discard an unsaved generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Drafts == nil {
				return goerr.New(helpers.ErrDraftsDisabled)
			}
			if _, err := container.Drafts.Get(cmd.Context(), args[0]); err != nil {
				return err
			}
			if !helpers.Confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), "Discard draft "+args[0]+"?", yes) {
				fmt.Fprintln(cmd.OutOrStdout(), helpers.MsgCancelled)
				return nil
			}
			return container.Drafts.Delete(cmd.Context(), args[0])
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
