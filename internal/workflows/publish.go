package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/PolarWolf314/handoff/internal/audit"
	"github.com/PolarWolf314/handoff/internal/crypto"
	herrors "github.com/PolarWolf314/handoff/internal/errors"
	"github.com/PolarWolf314/handoff/internal/record"
	"github.com/PolarWolf314/handoff/internal/utils"
)

// PublishOptions configures the publish workflow.
type PublishOptions struct {
	Env *Env

	// Payload is the reference being handed off. It is wiped after sealing.
	Payload []byte

	// Recipient shares the record with another identity instead of sealing
	// it to ourselves.
	Recipient string

	// PIN adds a second factor the reader must supply.
	PIN []byte

	// Burn deletes the record after its first successful pickup.
	Burn bool

	// TTL is the record lifetime. Zero uses record.default_ttl.
	TTL time.Duration

	// Project and Hostname label the record. Empty values use the working
	// directory and the hostname.
	Project  string
	Hostname string
}

// PublishResult contains the outcome of a publish operation.
type PublishResult struct {
	Token     record.Ref
	Identity  string
	ExpiresAt time.Time
	Burn      bool
	Shared    bool
	Protected bool

	// PointerStale is true when the record was stored but the latest
	// pointer could not be updated, so only the token finds it.
	PointerStale bool
}

// Publish seals the payload under the user's identity and stores it.
//
// Options are validated before the key file is read or the store is
// contacted, so share+burn and bad TTLs fail without side effects.
func Publish(ctx context.Context, opts PublishOptions) (*PublishResult, error) {
	env := opts.Env
	defer crypto.Zeroize(opts.Payload)

	sealOpts := record.Options{
		Mode:      record.ModeSelf,
		Recipient: opts.Recipient,
		PIN:       opts.PIN,
		Burn:      opts.Burn,
		TTL:       opts.TTL,
		MaxTTL:    env.Config.Record.MaxTTL.Duration,
	}
	if opts.Recipient != "" {
		sealOpts.Mode = record.ModeShared
	}
	if sealOpts.TTL == 0 {
		sealOpts.TTL = env.Config.Record.DefaultTTL.Duration
	}
	if err := sealOpts.Validate(); err != nil {
		return nil, err
	}
	if len(opts.Payload) > record.MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes, limit is %d", herrors.ErrPayloadTooLarge, len(opts.Payload), record.MaxPayloadSize)
	}

	client, err := env.client()
	if err != nil {
		return nil, err
	}

	kp, err := env.loadIdentity()
	if err != nil {
		return nil, err
	}
	defer kp.Destroy()

	meta := record.Metadata{
		Project:  utils.SanitizeLabel(opts.Project),
		Hostname: utils.SanitizeLabel(opts.Hostname),
	}
	if meta.Project == "" {
		meta.Project = utils.DefaultProject()
	}
	if meta.Hostname == "" {
		meta.Hostname = utils.DefaultHostname()
	}

	now := env.now()
	rec, err := record.Seal(opts.Payload, meta, sealOpts, kp, now)
	if err != nil {
		return nil, err
	}

	token, err := client.Publish(ctx, rec, kp)
	stale := false
	if err != nil {
		if !token.IsToken() {
			return nil, err
		}
		env.Logger.Warnf("Record stored but the latest pointer was not updated: %v", err)
		stale = true
	}

	audit.Log(audit.Entry{
		Operation: audit.OpPublish,
		Token:     token.String(),
		Identity:  kp.ID(),
		Burn:      sealOpts.Burn,
		Shared:    sealOpts.Mode == record.ModeShared,
		TTL:       int64(sealOpts.TTL / time.Second),
	})

	return &PublishResult{
		Token:        token,
		Identity:     kp.ID(),
		ExpiresAt:    rec.ExpiresAt(),
		Burn:         sealOpts.Burn,
		Shared:       sealOpts.Mode == record.ModeShared,
		Protected:    len(opts.PIN) > 0,
		PointerStale: stale,
	}, nil
}
