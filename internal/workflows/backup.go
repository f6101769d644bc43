package workflows

import (
	"context"

	"github.com/PolarWolf314/handoff/internal/keystore"
)

// BackupOptions configures the backup workflow.
type BackupOptions struct {
	Env *Env
}

// BackupResult holds the recovery phrase. Anyone with it holds the identity.
type BackupResult struct {
	Identity string
	Mnemonic string
}

// Backup renders the identity seed as a 24-word BIP-39 phrase that
// `init --restore` accepts.
func Backup(ctx context.Context, opts BackupOptions) (*BackupResult, error) {
	kp, err := opts.Env.loadIdentity()
	if err != nil {
		return nil, err
	}
	defer kp.Destroy()

	words, err := keystore.Mnemonic(kp)
	if err != nil {
		return nil, err
	}
	return &BackupResult{Identity: kp.ID(), Mnemonic: words}, nil
}
