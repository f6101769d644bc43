package keystore

import (
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"

	"github.com/PolarWolf314/handoff/internal/crypto"
	herrors "github.com/PolarWolf314/handoff/internal/errors"
)

// Mnemonic encodes the identity seed as a 24-word BIP-39 phrase. The phrase
// is the identity: anyone holding it can restore the key.
func Mnemonic(kp *Keypair) (string, error) {
	seed := kp.Seed()
	defer seed.Destroy()

	words, err := bip39.NewMnemonic(seed.Bytes())
	if err != nil {
		return "", fmt.Errorf("encoding recovery phrase: %w", err)
	}
	return words, nil
}

// FromMnemonic restores an identity from a phrase written by Mnemonic.
func FromMnemonic(words string) (*Keypair, error) {
	words = strings.Join(strings.Fields(strings.ToLower(words)), " ")

	entropy, err := bip39.EntropyFromMnemonic(words)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid recovery phrase", herrors.ErrFormat)
	}
	defer crypto.Zeroize(entropy)

	return FromSeed(entropy)
}
