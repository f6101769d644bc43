package keystore

import (
	"crypto/ed25519"
	"crypto/x509"
	"errors"
	"fmt"

	"golang.org/x/crypto/ssh"

	"github.com/PolarWolf314/handoff/internal/crypto"
	herrors "github.com/PolarWolf314/handoff/internal/errors"
)

// FromSSHKey imports an identity from an OpenSSH ed25519 private key. The key
// keeps its public half, so the identity matches the key's ssh fingerprint.
//
// A protected key with a nil passphrase returns ErrPassphraseRequired. Keys of
// any other type are ErrFormat.
func FromSSHKey(pemBytes, passphrase []byte) (*Keypair, error) {
	var raw interface{}
	var err error
	if passphrase == nil {
		raw, err = ssh.ParseRawPrivateKey(pemBytes)
	} else {
		raw, err = ssh.ParseRawPrivateKeyWithPassphrase(pemBytes, passphrase)
	}

	var missing *ssh.PassphraseMissingError
	switch {
	case errors.As(err, &missing):
		return nil, herrors.ErrPassphraseRequired
	case errors.Is(err, x509.IncorrectPasswordError):
		return nil, herrors.ErrWrongPassphrase
	case err != nil:
		return nil, fmt.Errorf("%w: not an OpenSSH private key: %v", herrors.ErrFormat, err)
	}

	var priv ed25519.PrivateKey
	switch k := raw.(type) {
	case *ed25519.PrivateKey:
		priv = *k
	case ed25519.PrivateKey:
		priv = k
	default:
		return nil, fmt.Errorf("%w: ssh key is %T, only ed25519 keys can be imported", herrors.ErrFormat, raw)
	}
	defer crypto.Zeroize(priv)

	return FromSeed(priv.Seed())
}
