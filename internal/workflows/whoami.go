package workflows

import (
	"context"

	"github.com/mr-tron/base58"
)

// WhoamiOptions configures the whoami workflow.
type WhoamiOptions struct {
	Env *Env
}

// WhoamiResult describes the local identity.
type WhoamiResult struct {
	// Identity is the base58 Ed25519 public key others share to.
	Identity string

	// EncryptionKey is the base58 X25519 key derived from Identity.
	EncryptionKey string

	KeyPath   string
	Encrypted bool
}

// Whoami loads the identity and reports its public halves and how the key
// file is protected. An encrypted key file prompts for its passphrase.
func Whoami(ctx context.Context, opts WhoamiOptions) (*WhoamiResult, error) {
	env := opts.Env

	kp, err := env.loadIdentity()
	if err != nil {
		return nil, err
	}
	defer kp.Destroy()

	encKey, err := kp.EncryptionPublicKey()
	if err != nil {
		return nil, err
	}

	return &WhoamiResult{
		Identity:      kp.ID(),
		EncryptionKey: base58.Encode(encKey[:]),
		KeyPath:       env.Keys.Path,
		Encrypted:     env.Keys.IsEncrypted(),
	}, nil
}
