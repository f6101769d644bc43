package keystore

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	herrors "github.com/PolarWolf314/handoff/internal/errors"
	"github.com/PolarWolf314/handoff/internal/utils"
)

// Prompter asks the user for secrets and confirmations.
type Prompter interface {
	// Passphrase reads a secret without echo. The caller wipes the result.
	Passphrase(prompt string) ([]byte, error)
	// Confirm asks a yes/no question; anything but an explicit yes is no.
	Confirm(prompt string) (bool, error)
}

// TerminalPrompter prompts on the controlling terminal. Both methods fail
// with ErrNoTTY instead of blocking when there is no terminal to ask on.
// Passphrase falls back to /dev/tty when stdin is a pipe.
type TerminalPrompter struct{}

func (TerminalPrompter) Passphrase(prompt string) ([]byte, error) {
	if utils.IsTerminal() {
		return utils.ReadPassphrase(prompt)
	}
	if utils.IsTTYAvailable() {
		return utils.ReadPassphraseFromTTY(prompt)
	}
	return nil, herrors.ErrNoTTY
}

func (TerminalPrompter) Confirm(prompt string) (bool, error) {
	if !utils.IsTerminal() {
		return false, herrors.ErrNoTTY
	}

	fmt.Fprintf(os.Stderr, "%s [y/N]: ", prompt)
	response, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("reading response: %w", err)
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
