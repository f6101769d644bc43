package cmd

import (
	"fmt"
	"time"

	"github.com/PolarWolf314/handoff/internal/crypto"
	herrors "github.com/PolarWolf314/handoff/internal/errors"
	"github.com/PolarWolf314/handoff/internal/record"
	"github.com/PolarWolf314/handoff/internal/ui"
	"github.com/PolarWolf314/handoff/internal/utils"
	"github.com/PolarWolf314/handoff/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	sendTo       string
	sendPIN      bool
	sendBurn     bool
	sendTTL      time.Duration
	sendProject  string
	sendHostname string
)

func init() {
	sendCmd.Flags().StringVar(&sendTo, "to", "", "share with this identity instead of yourself")
	sendCmd.Flags().BoolVar(&sendPIN, "pin", false, "protect the payload with a PIN (prompted)")
	sendCmd.Flags().BoolVar(&sendBurn, "burn", false, "delete the record after its first pickup")
	sendCmd.Flags().DurationVar(&sendTTL, "ttl", 0, "record lifetime (default from config, 15m)")
	sendCmd.Flags().StringVar(&sendProject, "project", "", "project label (default: current directory name)")
	sendCmd.Flags().StringVar(&sendHostname, "hostname", "", "hostname label (default: this machine)")
}

func resetSendState() {
	sendTo = ""
	sendPIN = false
	sendBurn = false
	sendTTL = 0
	sendProject = ""
	sendHostname = ""
}

var sendCmd = &cobra.Command{
	Use:     "send [payload]",
	Aliases: []string{"publish"},
	Short:   "Publish an encrypted handoff record",
	Long: `Seals the payload (an argument, or piped on stdin) to your own identity or,
with --to, to someone else's, signs it and publishes it.

--burn and --to cannot be combined: only the publisher can delete a record,
so a shared record cannot be burned by its reader.

Examples:
  handoff send "ssh://devbox/~/src/api"
  git remote get-url origin | handoff send --burn --ttl 5m
  handoff send --to <identity> --pin "https://example.com/doc/7"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting send command")

		var payload []byte
		if len(args) == 1 {
			payload = []byte(args[0])
		} else {
			if interactiveInput(cmd) {
				return fmt.Errorf("%w: give the payload as an argument or pipe it on stdin", herrors.ErrInvalidUsage)
			}
			data, err := utils.ReadLimited(cmd.InOrStdin(), record.MaxPayloadSize)
			if err != nil {
				return fmt.Errorf("%w: %v", herrors.ErrInvalidUsage, err)
			}
			payload = data
		}

		spinner, cleanup := startSpinner("Publishing handoff...")
		defer cleanup()

		env, release, err := loadEnv(cmd.Context(), spinner, true)
		if err != nil {
			return err
		}
		defer release()

		var pin []byte
		if sendPIN {
			pin, err = env.Keys.Prompter.Passphrase("Enter PIN for this handoff: ")
			if err != nil {
				return err
			}
			defer crypto.Zeroize(pin)
			if len(pin) == 0 {
				return fmt.Errorf("%w: --pin given but the PIN is empty", herrors.ErrInvalidUsage)
			}
		}

		result, err := workflows.Publish(cmd.Context(), workflows.PublishOptions{
			Env:       env,
			Payload:   payload,
			Recipient: sendTo,
			PIN:       pin,
			Burn:      sendBurn,
			TTL:       sendTTL,
			Project:   sendProject,
			Hostname:  sendHostname,
		})
		if err != nil {
			return err
		}

		details := "expires " + ui.Relative(result.ExpiresAt, time.Now())
		if result.Burn {
			details += ", burns after reading"
		}
		if result.Protected {
			details += ", PIN protected"
		}
		finalMessage := ui.Success.Sprint("✓") + " Published " + ui.Token.Sprint(result.Token.ID) + " " + ui.Muted.Sprint(details)
		if sendTo != "" {
			finalMessage += "\n" + ui.Info.Sprint("→") + " Sealed for " + ui.Identity.Sprint(ui.ShortIdentity(sendTo))
		}
		if result.Shared {
			finalMessage += "\n" + ui.Info.Sprint("→") + " The recipient picks it up with " +
				ui.Code.Sprint("handoff pickup "+result.Identity)
		}
		if result.PointerStale {
			finalMessage += "\n" + ui.Warning.Sprint("!") + " Only the token below finds this record"
		}
		spinner.FinalMSG = finalMessage

		fmt.Fprintln(cmd.OutOrStdout(), result.Token.String())
		return nil
	},
}
