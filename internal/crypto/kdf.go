package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"

	herrors "github.com/PolarWolf314/handoff/internal/errors"
)

// KeySize is the size of every key DeriveKey produces.
const KeySize = 32

// Derivation contexts. The PIN and key-file contexts must never share a
// string, or one human secret would unlock both roles.
const (
	ContextPIN     = "handoff/v1/pin-payload-key"
	ContextKeyFile = "handoff/v1/key-file-passphrase"
)

const (
	// MinSaltSize is the smallest salt DeriveKey accepts.
	MinSaltSize = 16

	// MaxMemoryKiB bounds the memory cost so a hostile header cannot exhaust RAM.
	MaxMemoryKiB = 4 * 1024 * 1024

	maxThreads = 255
)

// Params are the argon2id cost parameters.
type Params struct {
	Time      uint32 `toml:"time"`
	MemoryKiB uint32 `toml:"memory_kib"`
	Threads   uint32 `toml:"threads"`
}

// DefaultParams are used for new key files and PIN-protected records.
var DefaultParams = Params{Time: 3, MemoryKiB: 64 * 1024, Threads: 1}

// Validate reports ErrInvalidParams for parameters argon2 cannot run with.
func (p Params) Validate() error {
	switch {
	case p.Time < 1:
		return fmt.Errorf("%w: argon2 time cost must be at least 1", herrors.ErrInvalidParams)
	case p.Threads < 1 || p.Threads > maxThreads:
		return fmt.Errorf("%w: argon2 parallelism must be between 1 and %d", herrors.ErrInvalidParams, maxThreads)
	case p.MemoryKiB < 8*p.Threads:
		return fmt.Errorf("%w: argon2 memory cost must be at least 8 KiB per lane", herrors.ErrInvalidParams)
	case p.MemoryKiB > MaxMemoryKiB:
		return fmt.Errorf("%w: argon2 memory cost above %d KiB", herrors.ErrInvalidParams, MaxMemoryKiB)
	}
	return nil
}

// DeriveKey stretches a human secret with argon2id and expands the result
// with HKDF-SHA256 keyed by context. The call blocks for the full cost of the
// parameters and cannot be cancelled.
func DeriveKey(secret, salt []byte, context string, params Params) (key *Secret, err error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(salt) < MinSaltSize {
		return nil, fmt.Errorf("%w: salt must be at least %d bytes", herrors.ErrInvalidParams, MinSaltSize)
	}
	if context == "" {
		return nil, fmt.Errorf("%w: derivation context is required", herrors.ErrInvalidParams)
	}

	defer func() {
		if r := recover(); r != nil {
			key = nil
			err = fmt.Errorf("%w: key derivation failed", herrors.ErrInvalidParams)
		}
	}()

	stretched := argon2.IDKey(secret, salt, params.Time, params.MemoryKiB, uint8(params.Threads), KeySize)
	defer Zeroize(stretched)

	out := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, stretched, []byte(context)), out); err != nil {
		Zeroize(out)
		return nil, fmt.Errorf("%w: key expansion failed", herrors.ErrInvalidParams)
	}

	return NewSecret(out), nil
}
