package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"

	"github.com/webcreatorLuke/roblox-code-bot/internal/app"
	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
	"github.com/webcreatorLuke/roblox-code-bot/internal/infrastructure/cli/commands"
	"github.com/webcreatorLuke/roblox-code-bot/internal/infrastructure/tui"
	"github.com/webcreatorLuke/roblox-code-bot/internal/pkg/errutil"
	"github.com/webcreatorLuke/roblox-code-bot/internal/pkg/filesystem"
)

// tuiLogFile receives logs while the TUI owns the terminal.
const tuiLogFile = "robloxcoder.log"

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
	// Container skips BuildContainer when set. Used by tests.
	Container *app.Container
}

// NewRootCmd wires the cobra root command. The container is built lazily
// before the selected command runs; the returned cleanup releases it.
func NewRootCmd(opts Options) (*cobra.Command, func()) {
	container := &app.Container{}
	var (
		configPath string
		verbose    bool
		ephemeral  bool
		closers    []io.Closer
	)

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
		closers = nil
		errutil.Flush()
	}

	root := &cobra.Command{
		Use:   "robloxcoder",
		Short: "Roblox Script Generator",
		Long: `robloxcoder turns natural-language requests into Roblox Lua scripts,
tells you which script type to use and where to put it in Studio,
and keeps a history of everything it generated.

Run without arguments to open the interactive editor.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsContainer(cmd) {
				return nil
			}
			if opts.Container != nil {
				*container = *opts.Container
				return nil
			}

			buildOpts := app.Options{
				ConfigPath: configPath,
				Verbose:    opts.Verbose || verbose,
				Ephemeral:  ephemeral,
				JSONLogs:   cmd.Annotations[commands.AnnotationJSONLogs] == "true",
			}
			if cmd == cmd.Root() {
				logFile, err := openTUILog()
				if err != nil {
					return err
				}
				closers = append(closers, logFile)
				buildOpts.LogWriter = logFile
			}

			built, err := app.BuildContainer(cmd.Context(), buildOpts)
			if err != nil {
				return err
			}
			*container = *built
			closers = append(closers, container)

			telemetry := container.Config.Telemetry
			if err := errutil.InitSentry(telemetry.SentryDSN, telemetry.Environment); err != nil {
				container.Logger.Warn("sentry disabled", map[string]interface{}{"error": err.Error()})
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(cmd.Context(), tui.Deps{
				State:        container.State,
				Orchestrator: container.Orchestrator,
				Synchronizer: container.Synchronizer,
				Clipboard:    container.Clipboard,
			})
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.robloxcoder/config.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep history in memory for this run only")

	root.AddCommand(
		commands.NewGenerateCommand(container),
		commands.NewHistoryCommand(container),
		commands.NewSelectCommand(container),
		commands.NewExamplesCommand(),
		commands.NewDraftsCommand(container),
		commands.NewConfigCommand(container),
		commands.NewModelsCommand(container),
		commands.NewDoctorCommand(container),
		commands.NewServeCommand(container),
		commands.NewVersionCommand(),
	)
	return root, cleanup
}

// needsContainer reports whether cmd loads config and opens the store.
func needsContainer(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return false
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[commands.AnnotationNoContainer] == "true" {
			return false
		}
	}
	return true
}

func openTUILog() (*os.File, error) {
	dir := filesystem.AppDir()
	if err := os.MkdirAll(dir, domain.DirectoryPermissions); err != nil {
		return nil, goerr.Wrap(err, "failed to create app directory", goerr.V("dir", dir))
	}
	path := filepath.Join(dir, tuiLogFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, domain.SecureFilePermissions)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", path))
	}
	return f, nil
}
