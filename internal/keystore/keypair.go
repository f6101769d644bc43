package keystore

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/PolarWolf314/handoff/internal/crypto"
	herrors "github.com/PolarWolf314/handoff/internal/errors"
)

// Keypair is a loaded Ed25519 identity. Call Destroy when done with it.
type Keypair struct {
	Public  ed25519.PublicKey
	private ed25519.PrivateKey
}

// Generate creates a fresh identity from the system random source.
func Generate() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating identity: %w", err)
	}
	return &Keypair{Public: pub, private: priv}, nil
}

// FromSeed rebuilds an identity from its 32-byte seed. The seed is copied,
// so the caller still owns and wipes its own buffer.
func FromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, herrors.ErrMalformedSeed
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(pub, priv[ed25519.SeedSize:])
	return &Keypair{Public: pub, private: priv}, nil
}

// Seed returns a copy of the seed in a Secret the caller must Destroy.
func (k *Keypair) Seed() *crypto.Secret {
	out := make([]byte, ed25519.SeedSize)
	copy(out, k.private.Seed())
	return crypto.NewSecret(out)
}

// Sign signs msg with the identity key.
func (k *Keypair) Sign(msg []byte) []byte {
	return ed25519.Sign(k.private, msg)
}

// ID is the public identity as shown to users and used in store keys.
func (k *Keypair) ID() string {
	return EncodeID(k.Public)
}

// EncryptionSecret is the X25519 scalar for opening payloads sealed to this identity.
func (k *Keypair) EncryptionSecret() (*crypto.Secret, error) {
	seed := k.Seed()
	defer seed.Destroy()
	return crypto.DeriveEncryptionSecret(seed.Bytes())
}

// EncryptionPublicKey is the X25519 key others seal payloads to.
func (k *Keypair) EncryptionPublicKey() ([crypto.X25519KeySize]byte, error) {
	return crypto.EncryptionPublicKey(k.Public)
}

// Destroy zeroes the private key. The Keypair cannot sign afterwards.
func (k *Keypair) Destroy() {
	if k == nil {
		return
	}
	crypto.Zeroize(k.private)
	k.private = nil
}

// EncodeID renders a public key as a base58 identity string.
func EncodeID(pub ed25519.PublicKey) string {
	return base58.Encode(pub)
}

// ParseID decodes a base58 identity string into a public key.
func ParseID(id string) (ed25519.PublicKey, error) {
	raw, err := base58.Decode(id)
	if err != nil || len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: %q is not a public identity", herrors.ErrMalformedReference, id)
	}
	return ed25519.PublicKey(raw), nil
}
