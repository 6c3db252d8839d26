package commands

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"

	"github.com/webcreatorLuke/roblox-code-bot/internal/app"
	"github.com/webcreatorLuke/roblox-code-bot/internal/infrastructure/cli/helpers"
)

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration, storage and model credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := container.Doctor.Run(cmd.Context())
			// Display report even if there were errors
			helpers.RenderReport(cmd.OutOrStdout(), report)
			if err != nil {
				return goerr.Wrap(err, "diagnostics completed with errors")
			}
			if !report.Healthy() {
				return goerr.New("one or more checks failed")
			}
			return nil
		},
	}
}
