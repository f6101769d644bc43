package crypto

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"testing"

	herrors "github.com/PolarWolf314/handoff/internal/errors"
)

func newX25519Pair(t *testing.T) (*Secret, [X25519KeySize]byte) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	secret, err := DeriveEncryptionSecret(priv.Seed())
	if err != nil {
		t.Fatalf("DeriveEncryptionSecret failed: %v", err)
	}
	xpub, err := EncryptionPublicKey(pub)
	if err != nil {
		t.Fatalf("EncryptionPublicKey failed: %v", err)
	}
	return secret, xpub
}

func TestEncryptTo_RoundTrip(t *testing.T) {
	secret, pub := newX25519Pair(t)
	defer secret.Destroy()

	for _, msg := range [][]byte{{}, []byte("hello"), bytes.Repeat([]byte{0xAB}, 4096)} {
		sealed, err := EncryptTo(msg, pub)
		if err != nil {
			t.Fatalf("EncryptTo failed: %v", err)
		}
		if len(sealed) != len(msg)+SealOverhead {
			t.Errorf("Expected %d bytes, got: %d", len(msg)+SealOverhead, len(sealed))
		}

		opened, err := DecryptWith(sealed, secret)
		if err != nil {
			t.Fatalf("DecryptWith failed: %v", err)
		}
		if !bytes.Equal(opened, msg) {
			t.Errorf("Round trip mismatch for %d byte message", len(msg))
		}
	}
}

func TestEncryptTo_Randomized(t *testing.T) {
	secret, pub := newX25519Pair(t)
	defer secret.Destroy()

	a, _ := EncryptTo([]byte("same"), pub)
	b, _ := EncryptTo([]byte("same"), pub)
	if bytes.Equal(a, b) {
		t.Error("Two seals of the same plaintext should differ")
	}
}

func TestDecryptWith_WrongKey(t *testing.T) {
	_, pub := newX25519Pair(t)
	other, _ := newX25519Pair(t)
	defer other.Destroy()

	sealed, err := EncryptTo([]byte("secret"), pub)
	if err != nil {
		t.Fatalf("EncryptTo failed: %v", err)
	}

	plaintext, err := DecryptWith(sealed, other)
	if !errors.Is(err, herrors.ErrDecrypt) {
		t.Errorf("Expected ErrDecrypt, got: %v", err)
	}
	if plaintext != nil {
		t.Error("Expected no plaintext on failure")
	}
}

func TestDecryptWith_Tampered(t *testing.T) {
	secret, pub := newX25519Pair(t)
	defer secret.Destroy()

	sealed, _ := EncryptTo([]byte("secret"), pub)
	for i := range sealed {
		mutated := append([]byte(nil), sealed...)
		mutated[i] ^= 0x01
		if _, err := DecryptWith(mutated, secret); !errors.Is(err, herrors.ErrDecrypt) {
			t.Fatalf("byte %d: expected ErrDecrypt, got: %v", i, err)
		}
	}

	if _, err := DecryptWith(sealed[:SealOverhead-1], secret); !errors.Is(err, herrors.ErrDecrypt) {
		t.Errorf("Expected ErrDecrypt for short input, got: %v", err)
	}
}

func TestSymmetric_RoundTripAndTamper(t *testing.T) {
	key := NewSecret(bytes.Repeat([]byte{9}, KeySize))
	defer key.Destroy()

	blob, err := SealSymmetric(key, []byte("inner"))
	if err != nil {
		t.Fatalf("SealSymmetric failed: %v", err)
	}
	if len(blob) != len("inner")+SymmetricOverhead {
		t.Errorf("Unexpected blob length: %d", len(blob))
	}

	opened, err := OpenSymmetric(key, blob)
	if err != nil {
		t.Fatalf("OpenSymmetric failed: %v", err)
	}
	if string(opened) != "inner" {
		t.Errorf("Expected 'inner', got: %q", opened)
	}

	blob[len(blob)-1] ^= 0xFF
	if _, err := OpenSymmetric(key, blob); !errors.Is(err, herrors.ErrDecrypt) {
		t.Errorf("Expected ErrDecrypt for tampered blob, got: %v", err)
	}

	wrong := NewSecret(bytes.Repeat([]byte{8}, KeySize))
	defer wrong.Destroy()
	blob[len(blob)-1] ^= 0xFF
	if _, err := OpenSymmetric(wrong, blob); !errors.Is(err, herrors.ErrDecrypt) {
		t.Errorf("Expected ErrDecrypt for wrong key, got: %v", err)
	}
}

func TestSymmetric_RejectsBadKeySize(t *testing.T) {
	short := NewSecret(make([]byte, 16))
	if _, err := SealSymmetric(short, []byte("x")); !errors.Is(err, herrors.ErrInvalidParams) {
		t.Errorf("Expected ErrInvalidParams, got: %v", err)
	}
}
