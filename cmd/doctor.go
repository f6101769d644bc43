package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/PolarWolf314/handoff/internal/configs"
	herrors "github.com/PolarWolf314/handoff/internal/errors"
	"github.com/PolarWolf314/handoff/internal/ui"
	"github.com/PolarWolf314/handoff/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	doctorJSONOutput bool
	// doctorExitFunc is overridden by tests.
	doctorExitFunc = os.Exit
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSONOutput, "json", false, "output in JSON format")
}

func resetDoctorState() {
	doctorJSONOutput = false
	doctorExitFunc = os.Exit
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the local handoff setup",
	Long: `Runs local health checks and reports issues. Nothing is sent over the network
and nothing is prompted for.

The doctor command checks:
  - Config file validity
  - Key file existence, format and permissions
  - Transport settings
  - History file writability

Exits with 1 if any check found an error. Use --json for machine-readable output.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting doctor command")

		settings := configs.UserHandoffSettings
		config, configErr := configs.LoadConfig(settings.ConfigPath)

		result, err := workflows.Doctor(cmd.Context(), workflows.DoctorOptions{
			Settings:  settings,
			Config:    config,
			ConfigErr: configErr,
		})
		if err != nil {
			return err
		}

		for _, check := range result.Checks {
			Logger.Debugf("Check %s: status=%s, message=%s", check.Name, check.Status.String(), check.Message)
		}

		if doctorJSONOutput {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(result); err != nil {
				return err
			}
		} else {
			printDoctorResults(cmd, result)
		}

		if result.Summary.Errors > 0 {
			doctorExitFunc(herrors.ExitGeneric)
		}
		return nil
	},
}

func printDoctorResults(cmd *cobra.Command, result *workflows.DoctorResult) {
	for _, check := range result.Checks {
		var statusIcon string
		switch check.Status {
		case workflows.CheckPass:
			statusIcon = ui.Success.Sprint("✓")
		case workflows.CheckWarning:
			statusIcon = ui.Warning.Sprint("⚠")
		case workflows.CheckError:
			statusIcon = ui.Error.Sprint("✗")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %-16s %s\n", statusIcon, check.Name, check.Message)
	}

	fmt.Fprintln(cmd.OutOrStdout())
	summary := fmt.Sprintf("Summary: %d passed", result.Summary.Passed)
	if result.Summary.Warnings > 0 {
		summary += ", " + ui.Warning.Sprint(fmt.Sprintf("%d warning(s)", result.Summary.Warnings))
	}
	if result.Summary.Errors > 0 {
		summary += ", " + ui.Error.Sprint(fmt.Sprintf("%d error(s)", result.Summary.Errors))
	}
	fmt.Fprintln(cmd.OutOrStdout(), summary)

	if len(result.Suggestions) > 0 {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), "Suggestions:")
		for _, suggestion := range result.Suggestions {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", ui.Info.Sprint("→"), suggestion)
		}
	}
}
