package envelope

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/PolarWolf314/handoff/internal/crypto"
	herrors "github.com/PolarWolf314/handoff/internal/errors"
)

// Magic marks the start of every envelope.
var Magic = [8]byte{'H', 'N', 'D', 'F', 'K', 'E', 'Y', 0}

const (
	// Version is the only format version this package writes and reads.
	Version byte = 0x01

	// SaltSize is the size of the random KDF salt.
	SaltSize = 32

	// HeaderSize is the fixed size of the header preceding the ciphertext.
	HeaderSize = len(Magic) + 1 + 3*4 + SaltSize

	// SeedSize is the size of the sealed plaintext.
	SeedSize = 32

	minCiphertext = chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead
)

// Header is the fixed-size prefix of an envelope.
type Header struct {
	Version byte
	Params  crypto.Params
	Salt    [SaltSize]byte
}

// MarshalBinary encodes the header in its on-disk form.
func (h Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	copy(buf, Magic[:])
	off := len(Magic)
	buf[off] = h.Version
	off++
	binary.BigEndian.PutUint32(buf[off:], h.Params.Time)
	binary.BigEndian.PutUint32(buf[off+4:], h.Params.MemoryKiB)
	binary.BigEndian.PutUint32(buf[off+8:], h.Params.Threads)
	off += 12
	copy(buf[off:], h.Salt[:])
	return buf, nil
}

// ParseHeader decodes the header at the start of data. Length and magic are
// checked before anything is read out of the buffer.
func ParseHeader(data []byte) (Header, error) {
	var h Header

	if !IsEnvelope(data) {
		if len(data) < len(Magic) && bytes.HasPrefix(Magic[:], data) {
			return h, herrors.ErrTruncated
		}
		return h, herrors.ErrBadMagic
	}
	if len(data) < HeaderSize {
		return h, herrors.ErrTruncated
	}

	off := len(Magic)
	h.Version = data[off]
	if h.Version != Version {
		return h, fmt.Errorf("%w: version %d", herrors.ErrUnsupportedVersion, h.Version)
	}
	off++
	h.Params = crypto.Params{
		Time:      binary.BigEndian.Uint32(data[off:]),
		MemoryKiB: binary.BigEndian.Uint32(data[off+4:]),
		Threads:   binary.BigEndian.Uint32(data[off+8:]),
	}
	off += 12
	copy(h.Salt[:], data[off:off+SaltSize])

	if err := h.Params.Validate(); err != nil {
		return h, fmt.Errorf("%w: %v", herrors.ErrFormat, err)
	}
	return h, nil
}

// IsEnvelope reports whether data starts with the envelope magic.
func IsEnvelope(data []byte) bool {
	return bytes.HasPrefix(data, Magic[:])
}

// Encode seals a 32-byte seed under passphrase with a fresh salt and nonce.
// The header records params exactly as used.
func Encode(seed, passphrase []byte, params crypto.Params) ([]byte, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("%w: seed must be %d bytes", herrors.ErrInvalidParams, SeedSize)
	}
	if len(passphrase) == 0 {
		return nil, herrors.ErrPassphraseRequired
	}

	h := Header{Version: Version, Params: params}
	if _, err := io.ReadFull(rand.Reader, h.Salt[:]); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}

	key, err := crypto.DeriveKey(passphrase, h.Salt[:], crypto.ContextKeyFile, params)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	aead, err := chacha20poly1305.NewX(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: aead setup failed", herrors.ErrInvalidParams)
	}

	header, _ := h.MarshalBinary()

	out := make([]byte, HeaderSize+chacha20poly1305.NonceSizeX, HeaderSize+minCiphertext+SeedSize)
	copy(out, header)
	nonce := out[HeaderSize:]
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	return aead.Seal(out, nonce, seed, header), nil
}

// Decode opens an envelope and returns the 32-byte seed. The caller owns
// the returned Secret and must Destroy it.
//
// Returns ErrTruncated, ErrBadMagic or ErrUnsupportedVersion for bytes that
// are not a readable envelope, ErrWrongPassphrase if authentication fails, and
// ErrMalformedSeed if the plaintext is not exactly 32 bytes.
func Decode(data, passphrase []byte) (*crypto.Secret, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if len(data) < HeaderSize+minCiphertext {
		return nil, herrors.ErrTruncated
	}

	key, err := crypto.DeriveKey(passphrase, h.Salt[:], crypto.ContextKeyFile, h.Params)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	aead, err := chacha20poly1305.NewX(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: aead setup failed", herrors.ErrInvalidParams)
	}

	header := data[:HeaderSize]
	nonce := data[HeaderSize : HeaderSize+chacha20poly1305.NonceSizeX]
	sealed := data[HeaderSize+chacha20poly1305.NonceSizeX:]

	plaintext, err := aead.Open(nil, nonce, sealed, header)
	if err != nil {
		return nil, herrors.ErrWrongPassphrase
	}
	if len(plaintext) != SeedSize {
		crypto.Zeroize(plaintext)
		return nil, herrors.ErrMalformedSeed
	}

	return crypto.NewSecret(plaintext), nil
}
