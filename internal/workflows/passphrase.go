package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/handoff/internal/crypto"
	herrors "github.com/PolarWolf314/handoff/internal/errors"
)

// ChangePassphraseOptions configures the passphrase workflow.
type ChangePassphraseOptions struct {
	Env *Env

	// Old opens the current key file. If nil and the file is encrypted,
	// the user is prompted.
	Old []byte

	// New protects the rewritten file. If nil, the user is prompted.
	New []byte

	// Remove writes the unprotected plaintext format.
	Remove bool
}

// ChangePassphraseResult contains the outcome of a passphrase change.
type ChangePassphraseResult struct {
	Identity  string
	Encrypted bool
}

// ChangePassphrase re-encrypts the key file. The old file is only replaced
// once the new one is fully written.
func ChangePassphrase(ctx context.Context, opts ChangePassphraseOptions) (*ChangePassphraseResult, error) {
	env := opts.Env
	keys := env.Keys

	old := opts.Old
	if old == nil && keys.IsEncrypted() {
		if keys.Prompter == nil {
			return nil, herrors.ErrNoTTY
		}
		var err error
		old, err = keys.Prompter.Passphrase("Enter current passphrase: ")
		if err != nil {
			return nil, err
		}
		defer crypto.Zeroize(old)
	}

	kp, err := keys.LoadWithPassphrase(old)
	if err != nil {
		return nil, err
	}
	defer kp.Destroy()

	newPass := opts.New
	if opts.Remove {
		newPass = nil
	} else if newPass == nil {
		newPass, err = promptNew(keys.Prompter, "passphrase")
		if err != nil {
			return nil, err
		}
		defer crypto.Zeroize(newPass)
		if newPass == nil {
			return nil, fmt.Errorf("%w: use --remove to store the key unprotected", herrors.ErrPassphraseRequired)
		}
	}

	if err := keys.Save(kp, newPass); err != nil {
		return nil, fmt.Errorf("saving identity: %w", err)
	}

	return &ChangePassphraseResult{Identity: kp.ID(), Encrypted: len(newPass) > 0}, nil
}
