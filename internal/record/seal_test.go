package record

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/PolarWolf314/handoff/internal/crypto"
	herrors "github.com/PolarWolf314/handoff/internal/errors"
)

func init() {
	// Keep PIN derivation fast in tests.
	PINParams = crypto.Params{Time: 1, MemoryKiB: 64, Threads: 1}
}

var meta = Metadata{Project: "api", Hostname: "laptop"}

func TestSealOpen_Self(t *testing.T) {
	kp := newKeypair(t)

	rec, err := Seal([]byte("ssh://laptop/api"), meta, Options{Mode: ModeSelf, TTL: time.Hour}, kp, time.Now())
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if rec.Recipient != "" || rec.PinSalt != nil {
		t.Errorf("Unexpected optional fields: %+v", rec.Signable)
	}
	if bytes.Contains(rec.Blob, []byte("ssh://")) {
		t.Error("Payload visible in blob")
	}

	got, err := Open(rec, kp, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if string(got) != "ssh://laptop/api" {
		t.Errorf("Expected payload back, got: %q", got)
	}

	stranger := newKeypair(t)
	if _, err := Open(rec, stranger, nil); !errors.Is(err, herrors.ErrNotRecipient) {
		t.Errorf("Expected ErrNotRecipient for a stranger, got: %v", err)
	}
}

func TestSealOpen_Shared(t *testing.T) {
	publisher := newKeypair(t)
	recipient := newKeypair(t)

	opts := Options{Mode: ModeShared, Recipient: recipient.ID(), TTL: time.Hour}
	rec, err := Seal([]byte("payload"), meta, opts, publisher, time.Now())
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if rec.Recipient != recipient.ID() {
		t.Errorf("Expected recipient %s, got: %s", recipient.ID(), rec.Recipient)
	}

	got, err := Open(rec, recipient, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("Expected payload, got: %q", got)
	}

	if _, err := Open(rec, publisher, nil); !errors.Is(err, herrors.ErrNotRecipient) {
		t.Errorf("Expected publisher unable to open a shared record, got: %v", err)
	}
}

func TestSealOpen_PIN(t *testing.T) {
	kp := newKeypair(t)

	rec, err := Seal([]byte("payload"), meta, Options{Mode: ModeSelf, PIN: []byte("4821"), TTL: time.Hour}, kp, time.Now())
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if len(rec.PinSalt) != PINSaltSize {
		t.Errorf("Expected %d byte PIN salt, got: %d", PINSaltSize, len(rec.PinSalt))
	}

	if _, err := Open(rec, kp, nil); !errors.Is(err, herrors.ErrPINRequired) {
		t.Errorf("Expected ErrPINRequired, got: %v", err)
	}
	if _, err := Open(rec, kp, []byte("0000")); !errors.Is(err, herrors.ErrWrongPIN) {
		t.Errorf("Expected ErrWrongPIN, got: %v", err)
	}

	got, err := Open(rec, kp, []byte("4821"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("Expected payload, got: %q", got)
	}
}

func TestSealOpen_SharedWithPIN(t *testing.T) {
	publisher := newKeypair(t)
	recipient := newKeypair(t)

	opts := Options{Mode: ModeShared, Recipient: recipient.ID(), PIN: []byte("pin"), TTL: time.Minute}
	rec, err := Seal([]byte("x"), meta, opts, publisher, time.Now())
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	got, err := Open(rec, recipient, []byte("pin"))
	if err != nil || string(got) != "x" {
		t.Errorf("Expected payload, got: %q, %v", got, err)
	}
}

func TestOpen_RejectsTamperedAndTombstone(t *testing.T) {
	kp := newKeypair(t)
	rec, _ := Seal([]byte("x"), meta, Options{Mode: ModeSelf, TTL: time.Hour}, kp, time.Now())

	rec.Burn = true
	if _, err := Open(rec, kp, nil); !errors.Is(err, herrors.ErrBadSignature) {
		t.Errorf("Expected ErrBadSignature, got: %v", err)
	}

	tomb, _ := Tombstone(kp, time.Now())
	if _, err := Open(tomb, kp, nil); !errors.Is(err, herrors.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for tombstone, got: %v", err)
	}
}

func TestOptions_Validate(t *testing.T) {
	recipient := newKeypair(t)

	testCases := []struct {
		name string
		opts Options
		want error
	}{
		{name: "Self", opts: Options{Mode: ModeSelf, TTL: time.Hour}},
		{name: "SelfBurnPIN", opts: Options{Mode: ModeSelf, TTL: time.Hour, Burn: true, PIN: []byte("1")}},
		{name: "Shared", opts: Options{Mode: ModeShared, Recipient: recipient.ID(), TTL: time.Hour}},
		{name: "ShareBurn", opts: Options{Mode: ModeShared, Recipient: recipient.ID(), Burn: true, TTL: time.Hour}, want: herrors.ErrShareBurn},
		{name: "ShareBurnNoRecipient", opts: Options{Mode: ModeShared, Burn: true, TTL: time.Hour}, want: herrors.ErrShareBurn},
		{name: "SharedNoRecipient", opts: Options{Mode: ModeShared, TTL: time.Hour}, want: herrors.ErrInvalidRecipient},
		{name: "SharedBadRecipient", opts: Options{Mode: ModeShared, Recipient: "nope", TTL: time.Hour}, want: herrors.ErrInvalidRecipient},
		{name: "SelfWithRecipient", opts: Options{Mode: ModeSelf, Recipient: recipient.ID(), TTL: time.Hour}, want: herrors.ErrInvalidUsage},
		{name: "ZeroTTL", opts: Options{Mode: ModeSelf}, want: herrors.ErrInvalidTTL},
		{name: "SubSecondTTL", opts: Options{Mode: ModeSelf, TTL: time.Millisecond}, want: herrors.ErrInvalidTTL},
		{name: "NegativeTTL", opts: Options{Mode: ModeSelf, TTL: -time.Hour}, want: herrors.ErrInvalidTTL},
		{name: "AboveMax", opts: Options{Mode: ModeSelf, TTL: 2 * time.Hour, MaxTTL: time.Hour}, want: herrors.ErrInvalidTTL},
		{name: "UnknownMode", opts: Options{Mode: Mode(7), TTL: time.Hour}, want: herrors.ErrInvalidUsage},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.opts.Validate()
			if tc.want == nil {
				if err != nil {
					t.Errorf("Expected valid options, got: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("Expected %v, got: %v", tc.want, err)
			}
			if !errors.Is(err, herrors.ErrInvalidUsage) {
				t.Errorf("Expected usage class, got: %v", err)
			}
		})
	}
}

func TestSeal_PayloadTooLarge(t *testing.T) {
	kp := newKeypair(t)
	_, err := Seal(make([]byte, MaxPayloadSize+1), meta, Options{Mode: ModeSelf, TTL: time.Hour}, kp, time.Now())
	if !errors.Is(err, herrors.ErrPayloadTooLarge) {
		t.Errorf("Expected ErrPayloadTooLarge, got: %v", err)
	}
}
