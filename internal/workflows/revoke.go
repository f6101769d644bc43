package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/handoff/internal/audit"
	herrors "github.com/PolarWolf314/handoff/internal/errors"
	"github.com/PolarWolf314/handoff/internal/record"
)

// RevokeOptions configures the revoke workflow.
type RevokeOptions struct {
	Env *Env

	// Token names the record to revoke. Empty revokes the newest record in
	// the local history that has not been revoked yet.
	Token string
}

// RevokeResult contains the outcome of a revoke operation.
type RevokeResult struct {
	Token record.Ref

	// FromHistory is true when the token came from the local history.
	FromHistory bool
}

// Revoke replaces a published record with a tombstone. A record that no
// longer exists counts as revoked.
//
// Returns ErrNoToken if no token was given and the history has none, and
// ErrInvalidUsage for a token published by another identity.
func Revoke(ctx context.Context, opts RevokeOptions) (*RevokeResult, error) {
	env := opts.Env
	client, err := env.client()
	if err != nil {
		return nil, err
	}

	kp, err := env.loadIdentity()
	if err != nil {
		return nil, err
	}
	defer kp.Destroy()

	result := &RevokeResult{}
	raw := opts.Token
	if raw == "" {
		last, found, err := audit.LastToken(kp.ID())
		if err != nil {
			return nil, fmt.Errorf("reading history: %w", err)
		}
		if !found {
			return nil, herrors.ErrNoToken
		}
		raw = last
		result.FromHistory = true
	}

	ref, err := record.ParseRef(raw)
	if err != nil {
		return nil, err
	}
	if !ref.IsToken() {
		return nil, fmt.Errorf("%w: revoke needs a token, not an identity", herrors.ErrInvalidUsage)
	}
	result.Token = ref

	if err := client.Revoke(ctx, ref, kp); err != nil {
		return nil, err
	}

	audit.Log(audit.Entry{
		Operation: audit.OpRevoke,
		Token:     ref.String(),
		Identity:  kp.ID(),
	})
	return result, nil
}
