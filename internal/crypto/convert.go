package crypto

import (
	"crypto/ed25519"
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"

	herrors "github.com/PolarWolf314/handoff/internal/errors"
)

// X25519KeySize is the size of X25519 scalars and public keys.
const X25519KeySize = 32

// DeriveEncryptionSecret maps an Ed25519 seed to the X25519 scalar used for
// public-key encryption. The result matches libsodium's
// crypto_sign_ed25519_sk_to_curve25519: SHA-512 of the seed, lower half, clamped.
func DeriveEncryptionSecret(seed []byte) (*Secret, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: seed must be %d bytes, got %d", herrors.ErrInvalidParams, ed25519.SeedSize, len(seed))
	}

	digest := sha512.Sum512(seed)
	defer Zeroize(digest[:])

	scalar := make([]byte, X25519KeySize)
	copy(scalar, digest[:X25519KeySize])
	scalar[0] &= 248
	scalar[31] &= 127
	scalar[31] |= 64

	return NewSecret(scalar), nil
}

// EncryptionPublicKey maps an Ed25519 public key to its X25519 counterpart
// with the birational map u = (1 + y) / (1 - y). Matching
// DeriveEncryptionSecret, X25519(scalar, basepoint) equals this value.
func EncryptionPublicKey(pub ed25519.PublicKey) ([X25519KeySize]byte, error) {
	var out [X25519KeySize]byte
	if len(pub) != ed25519.PublicKeySize {
		return out, fmt.Errorf("%w: public key must be %d bytes, got %d", herrors.ErrInvalidRecipient, ed25519.PublicKeySize, len(pub))
	}

	point, err := new(edwards25519.Point).SetBytes(pub)
	if err != nil {
		return out, fmt.Errorf("%w: not a curve point", herrors.ErrInvalidRecipient)
	}

	copy(out[:], point.BytesMontgomery())
	return out, nil
}
