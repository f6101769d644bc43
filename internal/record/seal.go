package record

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/PolarWolf314/handoff/internal/crypto"
	herrors "github.com/PolarWolf314/handoff/internal/errors"
	"github.com/PolarWolf314/handoff/internal/keystore"
)

const (
	// MaxPayloadSize bounds the plaintext a record may carry.
	MaxPayloadSize = 8 * 1024

	// PINSaltSize is the size of the per-record PIN salt.
	PINSaltSize = 16
)

// PINParams are the argon2id costs for PIN-derived keys. Records do not carry
// their parameters, so changing these breaks PIN records already published.
var PINParams = crypto.Params{Time: 3, MemoryKiB: 64 * 1024, Threads: 1}

// Seal encrypts payload per opts and returns the signed record. With a PIN the
// payload is first sealed under a PIN-derived key; the result is then sealed
// to the publisher (ModeSelf) or the recipient (ModeShared).
func Seal(payload []byte, meta Metadata, opts Options, kp *keystore.Keypair, now time.Time) (*HandoffRecord, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes, limit is %d", herrors.ErrPayloadTooLarge, len(payload), MaxPayloadSize)
	}

	inner := payload
	var pinSalt []byte
	if len(opts.PIN) > 0 {
		pinSalt = make([]byte, PINSaltSize)
		if _, err := io.ReadFull(rand.Reader, pinSalt); err != nil {
			return nil, fmt.Errorf("generating PIN salt: %w", err)
		}

		key, err := crypto.DeriveKey(opts.PIN, pinSalt, crypto.ContextPIN, PINParams)
		if err != nil {
			return nil, err
		}
		sealed, err := crypto.SealSymmetric(key, payload)
		key.Destroy()
		if err != nil {
			return nil, err
		}
		inner = sealed
	}

	var target [crypto.X25519KeySize]byte
	var err error
	if opts.Mode == ModeShared {
		target, err = recipientKey(opts.Recipient)
	} else {
		target, err = kp.EncryptionPublicKey()
	}
	if err != nil {
		return nil, err
	}

	blob, err := crypto.EncryptTo(inner, target)
	if err != nil {
		return nil, err
	}

	recipient := ""
	if opts.Mode == ModeShared {
		recipient = opts.Recipient
	}
	return Sign(Build(blob, meta, opts.TTL, opts.Burn, recipient, pinSalt, kp.Public, now), kp)
}

// Open verifies rec and decrypts its payload with kp, and pin if the record
// is PIN protected. It does not check expiry.
//
// Returns ErrBadSignature for an unverifiable record, ErrNotFound for a
// tombstone, ErrNotRecipient if the payload is not sealed to kp,
// ErrPINRequired if a PIN is needed but empty, and ErrWrongPIN if it is wrong.
func Open(rec *HandoffRecord, kp *keystore.Keypair, pin []byte) ([]byte, error) {
	if !Verify(rec) {
		return nil, herrors.ErrBadSignature
	}
	if IsTombstone(rec) {
		return nil, herrors.ErrNotFound
	}
	if !AddressedTo(rec, kp.ID()) {
		return nil, herrors.ErrNotRecipient
	}
	if len(rec.PinSalt) > 0 && len(pin) == 0 {
		return nil, herrors.ErrPINRequired
	}

	secret, err := kp.EncryptionSecret()
	if err != nil {
		return nil, err
	}
	inner, err := crypto.DecryptWith(rec.Blob, secret)
	secret.Destroy()
	if err != nil {
		return nil, herrors.ErrNotRecipient
	}

	if len(rec.PinSalt) == 0 {
		return inner, nil
	}
	defer crypto.Zeroize(inner)

	key, err := crypto.DeriveKey(pin, rec.PinSalt, crypto.ContextPIN, PINParams)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	payload, err := crypto.OpenSymmetric(key, inner)
	if err != nil {
		return nil, herrors.ErrWrongPIN
	}
	return payload, nil
}

// AddressedTo reports whether id can open rec: the recipient of a shared
// record, or the publisher of a self record.
func AddressedTo(rec *HandoffRecord, id string) bool {
	if rec.Recipient != "" {
		return rec.Recipient == id
	}
	return rec.Pubkey == id
}
