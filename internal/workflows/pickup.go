package workflows

import (
	"context"
	"errors"
	"time"

	"github.com/PolarWolf314/handoff/internal/audit"
	"github.com/PolarWolf314/handoff/internal/crypto"
	herrors "github.com/PolarWolf314/handoff/internal/errors"
	"github.com/PolarWolf314/handoff/internal/keystore"
	"github.com/PolarWolf314/handoff/internal/record"
)

// PickupOptions configures the pickup workflow.
type PickupOptions struct {
	Env *Env

	// Ref is an identity (its latest record) or a token. Empty means our
	// own latest record.
	Ref string

	// PIN opens PIN-protected records. If nil and one is needed, the user
	// is prompted.
	PIN []byte

	// MetadataOnly verifies the record and reports its labels without
	// decrypting it. A burn record is left in place.
	MetadataOnly bool
}

// PickupResult contains the outcome of a pickup operation.
type PickupResult struct {
	Token     record.Ref
	Publisher string
	Metadata  record.Metadata
	CreatedAt time.Time
	ExpiresAt time.Time
	Shared    bool
	Protected bool
	Burn      bool

	// Payload is nil for a metadata-only pickup. The caller wipes it.
	Payload []byte

	// Burned is true when a burn record was revoked after reading.
	Burned bool
}

// Pickup retrieves, verifies and decrypts a record.
//
// Returns ErrNotFound if there is no record or it was revoked, an
// *record.ExpiredError once the TTL has elapsed, ErrNotRecipient if the
// record is sealed to someone else, and ErrWrongPIN or ErrPINRequired for
// PIN records.
func Pickup(ctx context.Context, opts PickupOptions) (*PickupResult, error) {
	env := opts.Env
	client, err := env.client()
	if err != nil {
		return nil, err
	}

	var kp *keystore.Keypair
	defer func() {
		if kp != nil {
			kp.Destroy()
		}
	}()

	var ref record.Ref
	if opts.Ref == "" {
		if kp, err = env.loadIdentity(); err != nil {
			return nil, err
		}
		ref = record.Ref{Pubkey: kp.ID()}
	} else if ref, err = record.ParseRef(opts.Ref); err != nil {
		return nil, err
	}

	env.Logger.Debugf("Retrieving %s", ref)
	rec, token, err := client.Retrieve(ctx, ref)
	if err != nil {
		return nil, err
	}

	if err := record.CheckExpiry(rec, env.now()); err != nil {
		return nil, err
	}

	result := &PickupResult{
		Token:     token,
		Publisher: rec.Pubkey,
		Metadata:  rec.Metadata(),
		CreatedAt: time.Unix(rec.CreatedAt, 0),
		ExpiresAt: rec.ExpiresAt(),
		Shared:    rec.Recipient != "",
		Protected: len(rec.PinSalt) > 0,
		Burn:      rec.Burn,
	}
	if opts.MetadataOnly {
		return result, nil
	}

	if kp == nil {
		if kp, err = env.loadIdentity(); err != nil {
			return nil, err
		}
	}

	payload, err := openRecord(env, rec, kp, opts.PIN)
	if err != nil {
		return nil, err
	}
	result.Payload = payload

	if rec.Burn {
		result.Burned = burn(ctx, env, token, kp)
	}

	audit.Log(audit.Entry{
		Operation: audit.OpPickup,
		Token:     token.String(),
		Identity:  kp.ID(),
		Burn:      rec.Burn,
		Shared:    result.Shared,
	})

	return result, nil
}

// openRecord decrypts rec, prompting for a PIN when the record needs one
// and none was given.
func openRecord(env *Env, rec *record.HandoffRecord, kp *keystore.Keypair, pin []byte) ([]byte, error) {
	payload, err := record.Open(rec, kp, pin)
	if !errors.Is(err, herrors.ErrPINRequired) || pin != nil || env.Keys.Prompter == nil {
		return payload, err
	}

	prompted, perr := env.Keys.Prompter.Passphrase("Enter PIN: ")
	if perr != nil {
		if isNoTTY(perr) {
			return nil, err
		}
		return nil, perr
	}
	defer crypto.Zeroize(prompted)

	if len(prompted) == 0 {
		return nil, herrors.ErrPINRequired
	}
	return record.Open(rec, kp, prompted)
}

// burn revokes a read-once record. Only the publisher can do so; a failure
// leaves the record until it expires and is reported, not returned.
func burn(ctx context.Context, env *Env, token record.Ref, kp *keystore.Keypair) bool {
	if token.Pubkey != kp.ID() {
		env.Logger.Warnf("Record %s is marked burn but belongs to another identity; it stays until it expires", token)
		return false
	}

	if err := env.Transport.Revoke(ctx, token, kp); err != nil {
		env.Logger.Warnf("Could not burn %s, it stays readable until it expires: %v", token, err)
		return false
	}

	audit.Log(audit.Entry{
		Operation: audit.OpRevoke,
		Token:     token.String(),
		Identity:  kp.ID(),
		Burn:      true,
	})
	return true
}
