package envelope

import (
	"testing"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/PolarWolf314/handoff/internal/crypto"
)

// sealRaw seals plaintext behind header with a zero nonce.
func sealRaw(t *testing.T, key *crypto.Secret, header, plaintext []byte) []byte {
	t.Helper()
	aead, err := chacha20poly1305.NewX(key.Bytes())
	if err != nil {
		t.Fatalf("NewX failed: %v", err)
	}
	out := append([]byte(nil), header...)
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, header)
}
