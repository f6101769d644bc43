package cmd

import (
	"fmt"

	"github.com/PolarWolf314/handoff/internal/ui"
	"github.com/PolarWolf314/handoff/internal/utils"
	"github.com/PolarWolf314/handoff/internal/workflows"
	"github.com/spf13/cobra"
)

var passphraseRemove bool

func init() {
	passphraseCmd.Flags().BoolVar(&passphraseRemove, "remove", false, "store the key without passphrase protection")
}

func resetPassphraseState() {
	passphraseRemove = false
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show your public identity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, release, err := loadEnv(cmd.Context(), nil, false)
		if err != nil {
			return err
		}
		defer release()

		result, err := workflows.Whoami(cmd.Context(), workflows.WhoamiOptions{Env: env})
		if err != nil {
			return err
		}

		protection := "passphrase protected"
		if !result.Encrypted {
			protection = "not protected"
		}
		cmd.PrintErrln("Identity " + ui.Identity.Sprint(ui.ShortIdentity(result.Identity)) + ", key file " + ui.Path.Sprint(result.KeyPath) + " " + ui.Muted.Sprint(protection))
		if verbose || debug {
			cmd.PrintErrln("Encryption key: " + result.EncryptionKey)
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Identity)
		return nil
	},
}

var passphraseCmd = &cobra.Command{
	Use:   "passphrase",
	Short: "Change the key file passphrase",
	Long: `Re-encrypts the key file under a new passphrase. The old file is replaced
only once the new one is completely written.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, release, err := loadEnv(cmd.Context(), nil, false)
		if err != nil {
			return err
		}
		defer release()

		result, err := workflows.ChangePassphrase(cmd.Context(), workflows.ChangePassphraseOptions{
			Env:    env,
			Remove: passphraseRemove,
		})
		if err != nil {
			return err
		}

		if result.Encrypted {
			cmd.PrintErrln(ui.Success.Sprint("✓") + " Passphrase changed")
		} else {
			cmd.PrintErrln(ui.Warning.Sprint("!") + " Passphrase removed; the key file is not protected")
		}
		return nil
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Print your identity as a recovery phrase",
	Long: `Prints the 24-word recovery phrase for your identity. Anyone holding the phrase
holds your identity. Restore it with 'handoff init --restore'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, release, err := loadEnv(cmd.Context(), nil, false)
		if err != nil {
			return err
		}
		defer release()

		result, err := workflows.Backup(cmd.Context(), workflows.BackupOptions{Env: env})
		if err != nil {
			return err
		}

		if utils.IsStdoutTerminal() {
			cmd.PrintErrln(ui.Warning.Sprint("!") + " Write this down and keep it offline:")
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Mnemonic)
		return nil
	},
}
