package keystore

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	herrors "github.com/PolarWolf314/handoff/internal/errors"
)

func TestFromSeed_KnownVector(t *testing.T) {
	seed, _ := hex.DecodeString("9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60")
	kp, err := FromSeed(seed)
	if err != nil {
		t.Fatalf("FromSeed failed: %v", err)
	}
	defer kp.Destroy()

	if hex.EncodeToString(kp.Public) != "d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a" {
		t.Errorf("Unexpected public key: %x", kp.Public)
	}

	xpub, err := kp.EncryptionPublicKey()
	if err != nil {
		t.Fatalf("EncryptionPublicKey failed: %v", err)
	}
	if hex.EncodeToString(xpub[:]) != "d85e07ec22b0ad881537c2f44d662d1a143cf830c57aca4305d85c7a90f6b62e" {
		t.Errorf("Unexpected X25519 public key: %x", xpub)
	}
}

func TestKeypair_SignAndID(t *testing.T) {
	kp, err := Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	defer kp.Destroy()

	sig := kp.Sign([]byte("msg"))
	if !ed25519.Verify(kp.Public, []byte("msg"), sig) {
		t.Error("Signature does not verify")
	}

	pub, err := ParseID(kp.ID())
	if err != nil {
		t.Fatalf("ParseID failed: %v", err)
	}
	if !bytes.Equal(pub, kp.Public) {
		t.Error("ID does not round trip")
	}
}

func TestParseID_Rejects(t *testing.T) {
	for _, id := range []string{"", "0OIl", "abc", strings.Repeat("z", 60)} {
		if _, err := ParseID(id); !errors.Is(err, herrors.ErrMalformedReference) {
			t.Errorf("%q: expected ErrMalformedReference, got: %v", id, err)
		}
	}
}

func TestKeypair_Destroy(t *testing.T) {
	kp, _ := Generate()
	priv := kp.private
	kp.Destroy()

	for _, b := range priv {
		if b != 0 {
			t.Fatal("private key not wiped")
		}
	}
	kp.Destroy()
}

func TestFromSeed_RejectsBadLength(t *testing.T) {
	if _, err := FromSeed(make([]byte, 31)); !errors.Is(err, herrors.ErrMalformedSeed) {
		t.Errorf("Expected ErrMalformedSeed, got: %v", err)
	}
}

func TestMnemonic_RoundTrip(t *testing.T) {
	kp, _ := Generate()
	defer kp.Destroy()

	words, err := Mnemonic(kp)
	if err != nil {
		t.Fatalf("Mnemonic failed: %v", err)
	}
	if n := len(strings.Fields(words)); n != 24 {
		t.Errorf("Expected 24 words, got: %d", n)
	}

	restored, err := FromMnemonic("  " + strings.ToUpper(words) + "\n")
	if err != nil {
		t.Fatalf("FromMnemonic failed: %v", err)
	}
	defer restored.Destroy()
	if restored.ID() != kp.ID() {
		t.Error("Restored identity differs")
	}
}

func TestFromMnemonic_Rejects(t *testing.T) {
	kp, _ := Generate()
	defer kp.Destroy()
	words, _ := Mnemonic(kp)
	fields := strings.Fields(words)
	fields[0], fields[1] = fields[1], fields[0]

	for _, phrase := range []string{"", "not a phrase", strings.Join(fields[:12], " ")} {
		if _, err := FromMnemonic(phrase); !errors.Is(err, herrors.ErrFormat) {
			t.Errorf("%q: expected format error, got: %v", phrase, err)
		}
	}
}
