package crypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"
	"golang.org/x/crypto/nacl/secretbox"

	herrors "github.com/PolarWolf314/handoff/internal/errors"
)

const (
	// SealOverhead is the number of bytes EncryptTo adds to the plaintext.
	SealOverhead = box.AnonymousOverhead

	// SymmetricOverhead is the number of bytes SealSymmetric adds to the plaintext.
	SymmetricOverhead = nonceSize + secretbox.Overhead

	nonceSize = 24
)

// EncryptTo seals plaintext for the holder of the X25519 key recipient.
// The output is a libsodium crypto_box_seal blob:
//
//	[ephemeral_public_key:32][poly1305_tag:16][ciphertext]
func EncryptTo(plaintext []byte, recipient [X25519KeySize]byte) ([]byte, error) {
	out, err := box.SealAnonymous(nil, plaintext, &recipient, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("sealing payload: %w", err)
	}
	return out, nil
}

// DecryptWith opens a blob produced by EncryptTo. A wrong key and a tampered
// blob fail the same way, with ErrDecrypt and no plaintext.
func DecryptWith(ciphertext []byte, secret *Secret) ([]byte, error) {
	priv := secret.Array32()
	if priv == nil {
		return nil, fmt.Errorf("%w: encryption secret must be %d bytes", herrors.ErrInvalidParams, X25519KeySize)
	}
	if len(ciphertext) < SealOverhead {
		return nil, herrors.ErrDecrypt
	}

	pubBytes, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return nil, herrors.ErrDecrypt
	}
	var pub [X25519KeySize]byte
	copy(pub[:], pubBytes)

	plaintext, ok := box.OpenAnonymous(nil, ciphertext, &pub, priv)
	if !ok {
		return nil, herrors.ErrDecrypt
	}
	return plaintext, nil
}

// SealSymmetric encrypts plaintext with a 32-byte key using NaCl secretbox.
// A random nonce is prepended to the ciphertext.
func SealSymmetric(key *Secret, plaintext []byte) ([]byte, error) {
	k := key.Array32()
	if k == nil {
		return nil, fmt.Errorf("%w: symmetric key must be 32 bytes", herrors.ErrInvalidParams)
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	return secretbox.Seal(nonce[:], plaintext, &nonce, k), nil
}

// OpenSymmetric reverses SealSymmetric. Any failure is ErrDecrypt.
func OpenSymmetric(key *Secret, blob []byte) ([]byte, error) {
	k := key.Array32()
	if k == nil {
		return nil, fmt.Errorf("%w: symmetric key must be 32 bytes", herrors.ErrInvalidParams)
	}
	if len(blob) < SymmetricOverhead {
		return nil, herrors.ErrDecrypt
	}

	var nonce [nonceSize]byte
	copy(nonce[:], blob[:nonceSize])

	plaintext, ok := secretbox.Open(nil, blob[nonceSize:], &nonce, k)
	if !ok {
		return nil, herrors.ErrDecrypt
	}
	return plaintext, nil
}
