package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/webcreatorLuke/roblox-code-bot/internal/app"
	configapp "github.com/webcreatorLuke/roblox-code-bot/internal/application/config"
	"github.com/webcreatorLuke/roblox-code-bot/internal/infrastructure/cli/helpers"
	"github.com/webcreatorLuke/roblox-code-bot/internal/pkg/logger"
)

// NewConfigCommand creates the config command with all subcommands
func NewConfigCommand(container *app.Container) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect robloxcoder configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show full configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return showConfiguration(cmd.Context(), cmd.OutOrStdout(), container)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), container.ConfigLoader.Path())
				return nil
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Validate the configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := container.ConfigProvider.Load(cmd.Context())
				if err != nil {
					return err
				}
				if err := configapp.Validate(cfg); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), helpers.MsgConfigurationValid)
				return nil
			},
		},
		newConfigGetCommand(container),
		newConfigSetCommand(container),
	)

	return configCmd
}

func newConfigGetCommand(container *app.Container) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Get a specific configuration value",
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				return goerr.New(helpers.ErrKeyRequired)
			}
			return getConfigurationValue(cmd.Context(), cmd.OutOrStdout(), container, key)
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Key path (e.g., preferences.default_model)")
	return cmd
}

func newConfigSetCommand(container *app.Container) *cobra.Command {
	var key, value string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set a configuration value (a backup of the old file is kept)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				return goerr.New(helpers.ErrKeyRequired)
			}
			if err := setConfigurationValue(cmd.Context(), container, key, value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", key)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Key path (e.g., generation.timeout)")
	cmd.Flags().StringVar(&value, "value", "", "New value, parsed as YAML")
	return cmd
}

// showConfiguration prints the configuration as YAML with secrets masked.
func showConfiguration(ctx context.Context, out io.Writer, container *app.Container) error {
	cfg, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to load configuration")
	}
	if cfg.Telemetry.SentryDSN != "" {
		cfg.Telemetry.SentryDSN = logger.MaskedValue
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal configuration")
	}
	fmt.Fprint(out, string(data))
	return nil
}

func getConfigurationValue(ctx context.Context, out io.Writer, container *app.Container, keyPath string) error {
	cfg, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to load configuration")
	}
	cfgMap, err := helpers.ConfigToMap(cfg)
	if err != nil {
		return err
	}

	value, found := helpers.TraverseNestedMap(cfgMap, helpers.SplitKeyPath(keyPath))
	if !found {
		return goerr.New("key not found in configuration", goerr.V("key", keyPath))
	}

	data, err := yaml.Marshal(value)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal value")
	}
	fmt.Fprint(out, string(data))
	return nil
}

func setConfigurationValue(ctx context.Context, container *app.Container, keyPath, value string) error {
	cfg, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to load configuration")
	}
	cfgMap, err := helpers.ConfigToMap(cfg)
	if err != nil {
		return err
	}

	if !helpers.SetNestedMapValue(cfgMap, helpers.SplitKeyPath(keyPath), helpers.ParseYAMLValue(value)) {
		return goerr.New("unable to set key", goerr.V("key", keyPath))
	}
	updated, err := helpers.MapToConfig(cfgMap)
	if err != nil {
		return err
	}
	return helpers.SaveConfigWithValidation(container.ConfigLoader, updated)
}
