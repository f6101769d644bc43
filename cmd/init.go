package cmd

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/handoff/internal/crypto"
	"github.com/PolarWolf314/handoff/internal/ui"
	"github.com/PolarWolf314/handoff/internal/utils"
	"github.com/PolarWolf314/handoff/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	initRestore      bool
	initNoPassphrase bool
	initForce        bool
	initFromSSH      string
)

func init() {
	initCmd.Flags().BoolVar(&initRestore, "restore", false, "restore the identity from a recovery phrase (read from stdin or prompted)")
	initCmd.Flags().BoolVar(&initNoPassphrase, "no-passphrase", false, "store the key without passphrase protection")
	initCmd.Flags().StringVar(&initFromSSH, "from-ssh", "", "import an OpenSSH ed25519 private key as the identity")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "replace an existing identity without asking")
}

func resetInitState() {
	initRestore = false
	initNoPassphrase = false
	initForce = false
	initFromSSH = ""
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create your handoff identity",
	Long: `Generates an Ed25519 identity and writes it to the key file, protected by a
passphrase unless --no-passphrase is given. An existing identity is only
replaced after confirmation.

Examples:
  handoff init
  handoff init --from-ssh ~/.ssh/id_ed25519
  handoff backup > phrase.txt && handoff init --restore < phrase.txt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting init command")
		env, release, err := loadEnv(cmd.Context(), nil, false)
		if err != nil {
			return err
		}
		defer release()

		opts := workflows.InitOptions{
			Env:          env,
			NoPassphrase: initNoPassphrase,
			Force:        initForce,
		}

		if initRestore {
			phrase, err := readRecoveryPhrase(cmd, env)
			if err != nil {
				return err
			}
			defer crypto.Zeroize(phrase)
			opts.Mnemonic = string(phrase)
		}

		if initFromSSH != "" {
			data, err := os.ReadFile(initFromSSH)
			if err != nil {
				return fmt.Errorf("reading ssh key: %w", err)
			}
			defer crypto.Zeroize(data)
			opts.SSHKey = data
		}

		result, err := workflows.Init(cmd.Context(), opts)
		if err != nil {
			return err
		}

		verb := "created"
		switch {
		case result.Restored:
			verb = "restored"
		case result.Imported:
			verb = "imported"
		}
		cmd.PrintErrln(ui.Success.Sprint("✓") + " Identity " + verb + " at " + ui.Path.Sprint(result.KeyPath))
		if !result.Encrypted {
			cmd.PrintErrln(ui.Warning.Sprint("!") + " The key file is not passphrase protected")
		}
		cmd.PrintErrln(ui.Info.Sprint("→") + " Share this identity to receive handoffs " + ui.Muted.Sprint(ui.ShortIdentity(result.Identity)) + ":")
		fmt.Fprintln(cmd.OutOrStdout(), result.Identity)
		return nil
	},
}

// readRecoveryPhrase takes the phrase from piped input, or prompts for it
// without echo.
func readRecoveryPhrase(cmd *cobra.Command, env *workflows.Env) ([]byte, error) {
	if interactiveInput(cmd) {
		return env.Keys.Prompter.Passphrase("Enter recovery phrase: ")
	}
	return utils.ReadLimited(cmd.InOrStdin(), 4096)
}
