package envelope

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/PolarWolf314/handoff/internal/crypto"
	herrors "github.com/PolarWolf314/handoff/internal/errors"
)

var testParams = crypto.Params{Time: 1, MemoryKiB: 64, Threads: 1}

func randomSeed(t *testing.T) []byte {
	t.Helper()
	seed := make([]byte, SeedSize)
	if _, err := rand.Read(seed); err != nil {
		t.Fatalf("rand failed: %v", err)
	}
	return seed
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for i := 0; i < 8; i++ {
		seed := randomSeed(t)
		pass := []byte("pass-" + string(rune('a'+i)))

		data, err := Encode(seed, pass, testParams)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if len(data) != HeaderSize+24+SeedSize+16 {
			t.Errorf("Unexpected envelope length: %d", len(data))
		}

		got, err := Decode(data, pass)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if !bytes.Equal(got.Bytes(), seed) {
			t.Errorf("Round trip mismatch")
		}
		got.Destroy()
	}
}

func TestDecode_WrongPassphrase(t *testing.T) {
	data, err := Encode(randomSeed(t), []byte("A"), testParams)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, err := Decode(data, []byte("B"))
	if !errors.Is(err, herrors.ErrWrongPassphrase) {
		t.Errorf("Expected ErrWrongPassphrase, got: %v", err)
	}
	if !errors.Is(err, herrors.ErrCredential) {
		t.Errorf("Expected credential class, got: %v", err)
	}
	if got != nil {
		t.Error("Expected no seed on failure")
	}
}

func TestDecode_ParamsReadFromHeader(t *testing.T) {
	old := crypto.Params{Time: 2, MemoryKiB: 32768, Threads: 1}
	seed := randomSeed(t)

	data, err := Encode(seed, []byte("pw"), old)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	h, err := ParseHeader(data)
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}
	if h.Params != old {
		t.Errorf("Expected header params %+v, got: %+v", old, h.Params)
	}

	saved := crypto.DefaultParams
	crypto.DefaultParams = crypto.Params{Time: 3, MemoryKiB: 65536, Threads: 1}
	defer func() { crypto.DefaultParams = saved }()

	got, err := Decode(data, []byte("pw"))
	if err != nil {
		t.Fatalf("Decode failed after defaults changed: %v", err)
	}
	defer got.Destroy()
	if !bytes.Equal(got.Bytes(), seed) {
		t.Error("Seed mismatch after defaults changed")
	}
}

func TestEncode_ZeroSeedScenario(t *testing.T) {
	seed := make([]byte, SeedSize)

	data, err := Encode(seed, []byte("correct-horse-battery-staple"), crypto.DefaultParams)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if !bytes.Equal(data[:8], Magic[:]) {
		t.Errorf("Expected magic prefix, got: %x", data[:8])
	}
	if data[8] != 0x01 {
		t.Errorf("Expected version 0x01, got: %#x", data[8])
	}
	if binary.BigEndian.Uint32(data[9:]) != crypto.DefaultParams.Time {
		t.Errorf("Header does not carry the time cost used")
	}

	got, err := Decode(data, []byte("correct-horse-battery-staple"))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(got.Bytes(), seed) {
		t.Errorf("Expected 32 zero bytes, got: %x", got.Bytes())
	}
	got.Destroy()

	_, err = Decode(data, []byte("wrong-horse"))
	if !errors.Is(err, herrors.ErrCredential) {
		t.Errorf("Expected credential error, got: %v", err)
	}
}

func TestDecode_MalformedInput(t *testing.T) {
	valid, err := Encode(randomSeed(t), []byte("pw"), testParams)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	badVersion := append([]byte(nil), valid...)
	badVersion[8] = 0x02

	badMagic := append([]byte(nil), valid...)
	badMagic[0] = 'X'

	hugeMemory := append([]byte(nil), valid...)
	binary.BigEndian.PutUint32(hugeMemory[13:], crypto.MaxMemoryKiB+1)

	testCases := []struct {
		name string
		data []byte
		want error
	}{
		{name: "Empty", data: nil, want: herrors.ErrTruncated},
		{name: "PartialMagic", data: Magic[:4], want: herrors.ErrTruncated},
		{name: "HeaderOnly", data: valid[:HeaderSize-1], want: herrors.ErrTruncated},
		{name: "NoCiphertext", data: valid[:HeaderSize+10], want: herrors.ErrTruncated},
		{name: "BadMagic", data: badMagic, want: herrors.ErrBadMagic},
		{name: "LegacyHex", data: bytes.Repeat([]byte("ab"), 32), want: herrors.ErrBadMagic},
		{name: "UnsupportedVersion", data: badVersion, want: herrors.ErrUnsupportedVersion},
		{name: "HostileParams", data: hugeMemory, want: herrors.ErrFormat},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.data, []byte("pw"))
			if !errors.Is(err, tc.want) {
				t.Errorf("Expected %v, got: %v", tc.want, err)
			}
			if !errors.Is(err, herrors.ErrFormat) {
				t.Errorf("Expected format class, got: %v", err)
			}
		})
	}
}

func TestDecode_HeaderIsAuthenticated(t *testing.T) {
	data, err := Encode(randomSeed(t), []byte("pw"), testParams)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// Still valid parameters, but not the ones the file was sealed with.
	binary.BigEndian.PutUint32(data[9:], testParams.Time+1)

	if _, err := Decode(data, []byte("pw")); !errors.Is(err, herrors.ErrWrongPassphrase) {
		t.Errorf("Expected ErrWrongPassphrase for altered header, got: %v", err)
	}
}

func TestDecode_RejectsNon32BytePlaintext(t *testing.T) {
	// Build an envelope around a 31-byte plaintext by hand.
	h := Header{Version: Version, Params: testParams}
	header, _ := h.MarshalBinary()

	key, err := crypto.DeriveKey([]byte("pw"), h.Salt[:], crypto.ContextKeyFile, testParams)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	defer key.Destroy()

	data := sealRaw(t, key, header, make([]byte, 31))

	if _, err := Decode(data, []byte("pw")); !errors.Is(err, herrors.ErrMalformedSeed) {
		t.Errorf("Expected ErrMalformedSeed, got: %v", err)
	}
}

func TestEncode_RejectsBadInput(t *testing.T) {
	if _, err := Encode(make([]byte, 31), []byte("pw"), testParams); !errors.Is(err, herrors.ErrInvalidParams) {
		t.Errorf("Expected ErrInvalidParams for short seed, got: %v", err)
	}
	if _, err := Encode(make([]byte, 32), nil, testParams); !errors.Is(err, herrors.ErrPassphraseRequired) {
		t.Errorf("Expected ErrPassphraseRequired, got: %v", err)
	}
	if _, err := Encode(make([]byte, 32), []byte("pw"), crypto.Params{}); !errors.Is(err, herrors.ErrInvalidParams) {
		t.Errorf("Expected ErrInvalidParams for zero params, got: %v", err)
	}
}
