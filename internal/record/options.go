package record

import (
	"fmt"
	"time"

	"github.com/PolarWolf314/handoff/internal/crypto"
	herrors "github.com/PolarWolf314/handoff/internal/errors"
	"github.com/PolarWolf314/handoff/internal/keystore"
)

// Mode selects whose key the payload is sealed to.
type Mode int

const (
	// ModeSelf seals to the publisher's own identity.
	ModeSelf Mode = iota
	// ModeShared seals to a named recipient identity.
	ModeShared
)

func (m Mode) String() string {
	switch m {
	case ModeSelf:
		return "self"
	case ModeShared:
		return "shared"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Options control how a payload is sealed. PIN protection and Burn compose
// with either mode, except that Shared and Burn are mutually exclusive.
type Options struct {
	Mode      Mode
	Recipient string
	PIN       []byte
	Burn      bool
	TTL       time.Duration

	// MaxTTL caps TTL when non-zero.
	MaxTTL time.Duration
}

// Validate rejects option combinations the protocol cannot honor. It runs
// before any key is loaded or any store is contacted.
func (o Options) Validate() error {
	switch o.Mode {
	case ModeSelf:
		if o.Recipient != "" {
			return fmt.Errorf("%w: a recipient requires shared mode", herrors.ErrInvalidUsage)
		}
	case ModeShared:
		if o.Burn {
			return herrors.ErrShareBurn
		}
		if _, err := recipientKey(o.Recipient); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown mode %v", herrors.ErrInvalidUsage, o.Mode)
	}

	if o.TTL < time.Second {
		return fmt.Errorf("%w: must be at least one second", herrors.ErrInvalidTTL)
	}
	if o.MaxTTL > 0 && o.TTL > o.MaxTTL {
		return fmt.Errorf("%w: %s exceeds the maximum of %s", herrors.ErrInvalidTTL, o.TTL, o.MaxTTL)
	}
	return nil
}

// recipientKey resolves a base58 identity to its X25519 encryption key.
func recipientKey(id string) ([crypto.X25519KeySize]byte, error) {
	var zero [crypto.X25519KeySize]byte
	if id == "" {
		return zero, fmt.Errorf("%w: shared mode needs a recipient", herrors.ErrInvalidRecipient)
	}
	pub, err := keystore.ParseID(id)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", herrors.ErrInvalidRecipient, err)
	}
	return crypto.EncryptionPublicKey(pub)
}
