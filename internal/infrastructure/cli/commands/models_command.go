package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"

	"github.com/webcreatorLuke/roblox-code-bot/internal/app"
	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
	"github.com/webcreatorLuke/roblox-code-bot/internal/infrastructure/cli/helpers"
	"github.com/webcreatorLuke/roblox-code-bot/internal/ports"
)

// modelProbePrompt is a tiny request used to check that a model answers with
// the expected JSON triple.
const modelProbePrompt = "Print hello world when the server starts"

// NewModelsCommand creates the models command with all subcommands
func NewModelsCommand(container *app.Container) *cobra.Command {
	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect and choose AI models",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listModels(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}

	modelsCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List configured models",
			RunE: func(cmd *cobra.Command, args []string) error {
				return listModels(cmd.Context(), cmd.OutOrStdout(), container)
			},
		},
		&cobra.Command{
			Use:   "test <name>",
			Short: "Send a probe request to a model",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return testModel(cmd.Context(), cmd.OutOrStdout(), container, args[0])
			},
		},
		&cobra.Command{
			Use:   "use <name>",
			Short: "Set the default model",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := setDefaultModel(cmd.Context(), container, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Default model set to %s\n", args[0])
				return nil
			},
		},
	)

	return modelsCmd
}

func listModels(ctx context.Context, out io.Writer, container *app.Container) error {
	cfg, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to load configuration")
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPROVIDER\tMODEL ID\tTARGET\tDEFAULT")
	for _, model := range cfg.Models {
		defaultMarker := ""
		if cfg.Preferences.DefaultModel == model.Name {
			defaultMarker = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			model.Name, model.Kind(), model.ModelID, modelTarget(model), defaultMarker)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(cfg.Preferences.FallbackModels) > 0 {
		fmt.Fprintf(out, "Fallbacks: %s\n", strings.Join(cfg.Preferences.FallbackModels, ", "))
	}
	return nil
}

func modelTarget(model domain.ModelDefinition) string {
	switch model.Kind() {
	case domain.ProviderKindHTTP:
		return model.Endpoint
	case domain.ProviderKindGemini:
		return model.Project + "/" + model.Location
	default:
		return "offline"
	}
}

func testModel(ctx context.Context, out io.Writer, container *app.Container, modelName string) error {
	cfg, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to load configuration")
	}
	model, exists := cfg.FindModelByName(modelName)
	if !exists {
		return goerr.Wrap(domain.ErrModelNotConfigured, "model not found", goerr.V("model", modelName))
	}

	provider, err := container.Orchestrator.ProviderFactory.ForModel(ctx, model)
	if err != nil {
		return goerr.Wrap(err, "failed to create provider", goerr.V("model", modelName))
	}

	testCtx, cancel := context.WithTimeout(ctx, domain.DefaultModelTestTimeout)
	defer cancel()

	resp, err := provider.Generate(testCtx, ports.ProviderRequest{Prompt: modelProbePrompt, Model: model})
	if err != nil {
		return goerr.Wrap(err, "model test failed", goerr.V("model", modelName))
	}
	if missing := resp.Result().Missing(); len(missing) > 0 {
		return goerr.Wrap(domain.ErrMalformedResponse, "model answered without required fields",
			goerr.V("model", modelName), goerr.V("missing", missing))
	}

	fmt.Fprintf(out, "Model %s responded with a %s for %s.\n", modelName, resp.ScriptType, resp.Location)
	return nil
}

func setDefaultModel(ctx context.Context, container *app.Container, modelName string) error {
	cfg, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to load configuration")
	}
	if !cfg.HasModel(modelName) {
		return goerr.Wrap(domain.ErrModelNotConfigured, "model not found", goerr.V("model", modelName))
	}
	cfg.Preferences.DefaultModel = modelName
	return helpers.SaveConfigWithValidation(container.ConfigLoader, cfg)
}
