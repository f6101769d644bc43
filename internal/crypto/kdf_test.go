package crypto

import (
	"bytes"
	"errors"
	"testing"

	herrors "github.com/PolarWolf314/handoff/internal/errors"
)

// fastParams keeps the tests quick; the real cost is exercised by envelope tests.
var fastParams = Params{Time: 1, MemoryKiB: 64, Threads: 1}

func TestDeriveKey_Deterministic(t *testing.T) {
	salt := bytes.Repeat([]byte{7}, 32)

	a, err := DeriveKey([]byte("1234"), salt, ContextPIN, fastParams)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	defer a.Destroy()

	b, err := DeriveKey([]byte("1234"), salt, ContextPIN, fastParams)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	defer b.Destroy()

	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("Expected identical keys for identical inputs")
	}
	if a.Len() != KeySize {
		t.Errorf("Expected %d byte key, got: %d", KeySize, a.Len())
	}
}

func TestDeriveKey_DomainSeparation(t *testing.T) {
	salt := bytes.Repeat([]byte{7}, 32)

	pin, err := DeriveKey([]byte("hunter2"), salt, ContextPIN, fastParams)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	defer pin.Destroy()

	file, err := DeriveKey([]byte("hunter2"), salt, ContextKeyFile, fastParams)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	defer file.Destroy()

	if bytes.Equal(pin.Bytes(), file.Bytes()) {
		t.Error("PIN and key-file contexts produced the same key")
	}
}

func TestDeriveKey_SaltAndSecretMatter(t *testing.T) {
	saltA := bytes.Repeat([]byte{1}, 32)
	saltB := bytes.Repeat([]byte{2}, 32)

	base, _ := DeriveKey([]byte("pw"), saltA, ContextPIN, fastParams)
	otherSalt, _ := DeriveKey([]byte("pw"), saltB, ContextPIN, fastParams)
	otherSecret, _ := DeriveKey([]byte("pw2"), saltA, ContextPIN, fastParams)
	defer base.Destroy()
	defer otherSalt.Destroy()
	defer otherSecret.Destroy()

	if bytes.Equal(base.Bytes(), otherSalt.Bytes()) {
		t.Error("Different salts produced the same key")
	}
	if bytes.Equal(base.Bytes(), otherSecret.Bytes()) {
		t.Error("Different secrets produced the same key")
	}
}

func TestDeriveKey_InvalidInput(t *testing.T) {
	salt := make([]byte, 32)

	testCases := []struct {
		name    string
		salt    []byte
		context string
		params  Params
	}{
		{name: "ZeroTime", salt: salt, context: ContextPIN, params: Params{Time: 0, MemoryKiB: 64, Threads: 1}},
		{name: "ZeroThreads", salt: salt, context: ContextPIN, params: Params{Time: 1, MemoryKiB: 64, Threads: 0}},
		{name: "TooManyThreads", salt: salt, context: ContextPIN, params: Params{Time: 1, MemoryKiB: 1 << 16, Threads: 256}},
		{name: "MemoryBelowLanes", salt: salt, context: ContextPIN, params: Params{Time: 1, MemoryKiB: 8, Threads: 4}},
		{name: "MemoryTooLarge", salt: salt, context: ContextPIN, params: Params{Time: 1, MemoryKiB: MaxMemoryKiB + 1, Threads: 1}},
		{name: "ShortSalt", salt: make([]byte, MinSaltSize-1), context: ContextPIN, params: fastParams},
		{name: "EmptyContext", salt: salt, context: "", params: fastParams},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			key, err := DeriveKey([]byte("x"), tc.salt, tc.context, tc.params)
			if !errors.Is(err, herrors.ErrInvalidParams) {
				t.Errorf("Expected ErrInvalidParams, got: %v", err)
			}
			if key != nil {
				t.Error("Expected no key on error")
			}
		})
	}
}

func TestDefaultParams_Valid(t *testing.T) {
	if err := DefaultParams.Validate(); err != nil {
		t.Errorf("DefaultParams should validate, got: %v", err)
	}
}
