package cmd

import (
	logger "github.com/PolarWolf314/handoff/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	// HandoffCmd is the root command.
	HandoffCmd = &cobra.Command{
		Use:   "handoff",
		Short: "Hand off a private reference to your other devices",
		Long: `handoff publishes an encrypted, signed pointer to a private resource under your
own Ed25519 identity and picks it up, verified and decrypted, on another device.

Examples:
  # Create your identity (once per device profile)
  handoff init

  # Publish for yourself, readable once, for ten minutes
  handoff send --burn --ttl 10m "ssh://devbox/~/src/api"

  # Pick up your latest record on another device
  handoff pickup

  # Share with someone else's identity
  handoff send --to <identity> "https://example.com/review/42"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing %s with verbose=%t, debug=%t", cmd.Name(), verbose, debug)
		},
	}
)

func init() {
	HandoffCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	HandoffCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	HandoffCmd.AddCommand(initCmd)
	HandoffCmd.AddCommand(sendCmd)
	HandoffCmd.AddCommand(pickupCmd)
	HandoffCmd.AddCommand(revokeCmd)
	HandoffCmd.AddCommand(whoamiCmd)
	HandoffCmd.AddCommand(passphraseCmd)
	HandoffCmd.AddCommand(backupCmd)
	HandoffCmd.AddCommand(logCmd)
	HandoffCmd.AddCommand(serveCmd)
	HandoffCmd.AddCommand(doctorCmd)
	HandoffCmd.AddCommand(ConfigCmd)
}

// GetHandoffCmd returns the HandoffCmd for testing.
func GetHandoffCmd() *cobra.Command {
	return HandoffCmd
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	resetInitState()
	resetSendState()
	resetPickupState()
	resetPassphraseState()
	resetLogState()
	resetServeState()
	resetDoctorState()
	resetConfigState()
	resetCobraFlagState(HandoffCmd)
}

// resetCobraFlagState clears Changed on every flag so one test's flags do
// not leak into the next.
func resetCobraFlagState(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
	})
	for _, sub := range cmd.Commands() {
		resetCobraFlagState(sub)
	}
}
