package cmd

import (
	"github.com/PolarWolf314/handoff/internal/ui"
	"github.com/PolarWolf314/handoff/internal/workflows"
	"github.com/spf13/cobra"
)

var revokeCmd = &cobra.Command{
	Use:   "revoke [token]",
	Short: "Revoke a published record",
	Long: `Replaces a record with a signed tombstone so it can no longer be picked up.
Without a token, revokes your most recent record that is not revoked yet.

Examples:
  handoff revoke
  handoff revoke <identity>/<id>`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting revoke command")

		token := ""
		if len(args) == 1 {
			token = args[0]
		}

		spinner, cleanup := startSpinner("Revoking handoff...")
		defer cleanup()

		env, release, err := loadEnv(cmd.Context(), spinner, true)
		if err != nil {
			return err
		}
		defer release()

		result, err := workflows.Revoke(cmd.Context(), workflows.RevokeOptions{Env: env, Token: token})
		if err != nil {
			return err
		}

		finalMessage := ui.Success.Sprint("✓") + " Revoked " + ui.Token.Sprint(result.Token.String())
		if result.FromHistory {
			finalMessage += " " + ui.Muted.Sprint("latest from history")
		}
		spinner.FinalMSG = finalMessage
		return nil
	},
}
