package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/PolarWolf314/handoff/internal/configs"
	herrors "github.com/PolarWolf314/handoff/internal/errors"
	"github.com/PolarWolf314/handoff/internal/ui"
	"github.com/spf13/cobra"
)

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing config file")
	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configInitCmd)
}

func resetConfigState() {
	configInitForce = false
}

// ConfigCmd groups the config subcommands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and create the handoff config file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Prints the configuration in effect: config.toml merged over the defaults,
followed by the paths handoff uses.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := configs.UserHandoffSettings
		config, err := configs.LoadConfig(settings.ConfigPath)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "# config: %s\n# key:    %s\n# data:   %s\n\n", settings.ConfigPath, settings.KeyPath, settings.DataPath)
		return toml.NewEncoder(cmd.OutOrStdout()).Encode(config)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Long: `Writes config.toml with every setting at its default, ready to edit.

Examples:
  handoff config init
  HANDOFF_CONFIG_DIR=./conf handoff config init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configs.UserHandoffSettings.ConfigPath
		if _, err := os.Stat(path); err == nil && !configInitForce {
			return fmt.Errorf("%w: %s already exists (use --force to overwrite)", herrors.ErrInvalidUsage, path)
		}

		if err := configs.SaveConfig(path, configs.DefaultConfig()); err != nil {
			return err
		}
		cmd.PrintErrln(ui.Success.Sprint("✓") + " Wrote " + ui.Path.Sprint(path))
		return nil
	},
}
