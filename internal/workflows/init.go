package workflows

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PolarWolf314/handoff/internal/crypto"
	herrors "github.com/PolarWolf314/handoff/internal/errors"
	"github.com/PolarWolf314/handoff/internal/keystore"
)

// InitOptions configures the init workflow.
type InitOptions struct {
	Env *Env

	// Mnemonic restores an identity from a backup phrase instead of generating one.
	Mnemonic string

	// SSHKey imports an OpenSSH ed25519 private key as the identity. A
	// protected key prompts for its passphrase.
	SSHKey []byte

	// Passphrase protects the key file. If nil, the user is prompted.
	Passphrase []byte

	// NoPassphrase writes the unprotected plaintext format without prompting.
	NoPassphrase bool

	// Force replaces an existing identity without asking.
	Force bool
}

// InitResult contains the outcome of an init operation.
type InitResult struct {
	// Identity is the public identity, safe to share.
	Identity string

	// KeyPath is where the key file was written.
	KeyPath string

	// Encrypted reports whether the key file is passphrase protected.
	Encrypted bool

	// Restored is true when the identity came from a mnemonic.
	Restored bool

	// Imported is true when the identity came from an ssh key.
	Imported bool

	// Replaced is true when an existing identity was overwritten.
	Replaced bool
}

// Init creates the user's identity.
//
// An existing identity is only replaced after confirmation (or Force).
// Returns ErrIdentityExists if the user declines, ErrNoTTY if confirmation
// or a passphrase is needed but cannot be prompted for.
func Init(ctx context.Context, opts InitOptions) (*InitResult, error) {
	env := opts.Env
	keys := env.Keys

	if opts.Mnemonic != "" && opts.SSHKey != nil {
		return nil, fmt.Errorf("%w: a mnemonic and an ssh key cannot both be restored", herrors.ErrInvalidUsage)
	}

	replaced := false
	if keys.Exists() {
		if !opts.Force {
			ok, err := keys.ConfirmOverwrite()
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, herrors.ErrIdentityExists
			}
		}
		replaced = true
	}

	var kp *keystore.Keypair
	var err error
	switch {
	case opts.Mnemonic != "":
		kp, err = keystore.FromMnemonic(strings.TrimSpace(opts.Mnemonic))
	case opts.SSHKey != nil:
		kp, err = importSSHKey(keys.Prompter, opts.SSHKey)
	default:
		kp, err = keystore.Generate()
	}
	if err != nil {
		return nil, err
	}
	defer kp.Destroy()

	passphrase := opts.Passphrase
	if passphrase == nil && !opts.NoPassphrase {
		passphrase, err = promptNew(keys.Prompter, "passphrase")
		if err != nil {
			return nil, err
		}
		defer crypto.Zeroize(passphrase)
	}
	if opts.NoPassphrase {
		passphrase = nil
	}

	if err := keys.Save(kp, passphrase); err != nil {
		return nil, fmt.Errorf("saving identity: %w", err)
	}
	env.Logger.Infof("Identity %s written to %s", kp.ID(), keys.Path)

	return &InitResult{
		Identity:  kp.ID(),
		KeyPath:   keys.Path,
		Encrypted: len(passphrase) > 0,
		Restored:  opts.Mnemonic != "",
		Imported:  opts.SSHKey != nil,
		Replaced:  replaced,
	}, nil
}

func importSSHKey(p keystore.Prompter, pemBytes []byte) (*keystore.Keypair, error) {
	kp, err := keystore.FromSSHKey(pemBytes, nil)
	if !errors.Is(err, herrors.ErrPassphraseRequired) {
		return kp, err
	}

	if p == nil {
		return nil, herrors.ErrNoTTY
	}
	passphrase, err := p.Passphrase("Enter ssh key passphrase: ")
	if err != nil {
		return nil, err
	}
	defer crypto.Zeroize(passphrase)
	return keystore.FromSSHKey(pemBytes, passphrase)
}
