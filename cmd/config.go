package cmd

import (
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/kvb/internal/config"
	"github.com/oakwood-commons/kvb/internal/ui"
	"github.com/oakwood-commons/kvb/pkg/logger"
	"github.com/oakwood-commons/kvb/pkg/settings"
)

// errNotInteractive is returned by config init when there is nobody to ask.
var errNotInteractive = errors.New("stdin is not a terminal: pass --vault to set the key vault")

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize the configuration",
	}
	cmd.AddCommand(newConfigInitCmd(opts))
	cmd.AddCommand(newConfigGetCmd(opts))
	cmd.AddCommand(newConfigPathCmd(opts))
	cmd.AddCommand(newConfigThemesCmd(opts))
	return cmd
}

func newConfigInitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Ask for the key vault name and write the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("vault") {
				if !stdinIsTerminal() {
					return errNotInteractive
				}
				name, err := ui.PromptVault(cmd.Context(), cfg.KeyVault, opts.run.NoColor, cmd.InOrStdin(), cmd.OutOrStdout())
				if err != nil {
					return err
				}
				cfg.KeyVault = name
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			path := opts.configPath()
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			logger.FromContext(cmd.Context()).V(1).Info("saved config", "path", path, logger.VaultKey, cfg.KeyVault)
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			return nil
		},
	}
}

func newConfigGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the effective configuration as TOML",
		Long:  "Get prints the config file merged with the flags given on the command line.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			b, err := toml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}

func newConfigPathCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Long:  "Path prints --config, $" + settings.EnvConfig + ", or the default location, in that order.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), opts.configPath())
		},
	}
}

func newConfigThemesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "themes",
		Aliases: []string{"theme"},
		Short:   "List the available color themes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			defaults, err := ui.EmbeddedDefaultConfig()
			if err != nil {
				return err
			}
			current := cfg.Theme
			if current == "" {
				current = defaults.Theme.Default
			}
			if err := ui.InitializeThemes(current); err != nil {
				return err
			}
			for _, name := range ui.ThemeNames() {
				marker := " "
				if name == current {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
			}
			return nil
		},
	}
}
