package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/webcreatorLuke/roblox-code-bot/internal/app"
	"github.com/webcreatorLuke/roblox-code-bot/internal/infrastructure/httpapi"
)

// NewServeCommand creates the serve command
func NewServeCommand(container *app.Container) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:         "serve",
		Short:       "Serve the generation API over HTTP",
		Annotations: map[string]string{AnnotationJSONLogs: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = container.Config.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := httpapi.NewServer(addr, container.Config.GetReadHeaderTimeout(), &httpapi.Handler{
				State:        container.State,
				Orchestrator: container.Orchestrator,
				Synchronizer: container.Synchronizer,
				Repository:   container.Repository,
				Logger:       container.Logger,
			})
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default server.addr)")
	return cmd
}
