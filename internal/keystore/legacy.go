package keystore

import (
	"crypto/ed25519"
	"encoding/hex"

	"github.com/PolarWolf314/handoff/internal/crypto"
	herrors "github.com/PolarWolf314/handoff/internal/errors"
)

// encodeLegacy renders the seed in the plaintext key file format: 64 lowercase
// hex characters and a newline.
func encodeLegacy(seed []byte) []byte {
	out := make([]byte, hex.EncodedLen(len(seed))+1)
	hex.Encode(out, seed)
	out[len(out)-1] = '\n'
	return out
}

// decodeLegacy parses a plaintext key file. Exactly 64 hex characters are
// accepted, in either case, with at most one trailing newline.
func decodeLegacy(data []byte) (*crypto.Secret, error) {
	if n := len(data); n > 0 && data[n-1] == '\n' {
		data = data[:n-1]
		if n := len(data); n > 0 && data[n-1] == '\r' {
			data = data[:n-1]
		}
	}
	if len(data) != hex.EncodedLen(ed25519.SeedSize) {
		return nil, herrors.ErrMalformedSeed
	}

	seed := make([]byte, ed25519.SeedSize)
	if _, err := hex.Decode(seed, data); err != nil {
		crypto.Zeroize(seed)
		return nil, herrors.ErrMalformedSeed
	}
	return crypto.NewSecret(seed), nil
}
