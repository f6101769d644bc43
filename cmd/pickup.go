package cmd

import (
	"fmt"
	"time"

	"github.com/PolarWolf314/handoff/internal/crypto"
	"github.com/PolarWolf314/handoff/internal/ui"
	"github.com/PolarWolf314/handoff/internal/utils"
	"github.com/PolarWolf314/handoff/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	pickupPIN  bool
	pickupInfo bool
)

func init() {
	pickupCmd.Flags().BoolVar(&pickupPIN, "pin", false, "prompt for the record's PIN up front")
	pickupCmd.Flags().BoolVar(&pickupInfo, "info", false, "show the record's labels without decrypting or burning it")
}

func resetPickupState() {
	pickupPIN = false
	pickupInfo = false
}

var pickupCmd = &cobra.Command{
	Use:   "pickup [identity|token]",
	Short: "Retrieve and decrypt a handoff record",
	Long: `Fetches the latest record of an identity (your own by default) or the record a
token names, verifies its signature, checks expiry and prints the payload on
stdout. Status goes to stderr, so the payload can be piped.

Examples:
  handoff pickup
  handoff pickup <identity>
  handoff pickup --info <identity>/<id>`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting pickup command")

		ref := ""
		if len(args) == 1 {
			ref = args[0]
		}

		spinner, cleanup := startSpinner("Picking up handoff...")
		defer cleanup()

		env, release, err := loadEnv(cmd.Context(), spinner, true)
		if err != nil {
			return err
		}
		defer release()

		var pin []byte
		if pickupPIN {
			pin, err = env.Keys.Prompter.Passphrase("Enter PIN: ")
			if err != nil {
				return err
			}
			defer crypto.Zeroize(pin)
		}

		result, err := workflows.Pickup(cmd.Context(), workflows.PickupOptions{
			Env:          env,
			Ref:          ref,
			PIN:          pin,
			MetadataOnly: pickupInfo,
		})
		if err != nil {
			return err
		}
		defer crypto.Zeroize(result.Payload)

		now := time.Now()
		labels := fmt.Sprintf("from %s, project %s, sent %s, expires %s",
			ui.Label(result.Metadata.Hostname),
			ui.Label(result.Metadata.Project),
			ui.Relative(result.CreatedAt, now),
			ui.Relative(result.ExpiresAt, now))

		if pickupInfo {
			flags := ""
			if result.Burn {
				flags += " burn"
			}
			if result.Protected {
				flags += " pin"
			}
			if result.Shared {
				flags += " shared"
			}
			spinner.FinalMSG = ui.Success.Sprint("✓") + " Record " + ui.Token.Sprint(result.Token.String()) + "\n  " + labels +
				"\n  " + ui.Muted.Sprint("sent "+formatTime(result.CreatedAt)+", expires "+formatTime(result.ExpiresAt))
			if flags != "" {
				spinner.FinalMSG += "\n  flags:" + flags
			}
			return nil
		}

		finalMessage := ui.Success.Sprint("✓") + " Picked up " + labels
		if result.Burned {
			finalMessage += "\n" + ui.Info.Sprint("→") + " The record has been burned"
		} else if result.Burn {
			finalMessage += "\n" + ui.Warning.Sprint("!") + " Could not burn the record; it stays until it expires"
		}
		spinner.FinalMSG = finalMessage

		out := cmd.OutOrStdout()
		if _, err := out.Write(result.Payload); err != nil {
			return err
		}
		if utils.IsStdoutTerminal() {
			fmt.Fprintln(out)
		}
		return nil
	},
}
