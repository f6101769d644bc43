package record

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"time"

	herrors "github.com/PolarWolf314/handoff/internal/errors"
	"github.com/PolarWolf314/handoff/internal/keystore"
)

// Metadata is the plaintext context published next to the payload.
type Metadata struct {
	Project  string
	Hostname string
}

// Signable is every signed field of a record. Fields are declared in
// alphabetical order of their JSON names, which fixes the canonical form.
type Signable struct {
	Blob      []byte `json:"blob"`
	Burn      bool   `json:"burn"`
	CreatedAt int64  `json:"created_at"`
	Hostname  string `json:"hostname"`
	PinSalt   []byte `json:"pin_salt,omitempty"`
	Project   string `json:"project"`
	Pubkey    string `json:"pubkey"`
	Recipient string `json:"recipient,omitempty"`
	TTL       int64  `json:"ttl"`
}

// HandoffRecord is a Signable with the publisher's signature.
type HandoffRecord struct {
	Signable
	Sig []byte `json:"sig"`
}

// Build assembles the signable fields. ttl is truncated to whole seconds.
func Build(blob []byte, meta Metadata, ttl time.Duration, burn bool, recipient string, pinSalt []byte, publisher ed25519.PublicKey, now time.Time) Signable {
	return Signable{
		Blob:      blob,
		Burn:      burn,
		CreatedAt: now.Unix(),
		Hostname:  meta.Hostname,
		PinSalt:   pinSalt,
		Project:   meta.Project,
		Pubkey:    keystore.EncodeID(publisher),
		Recipient: recipient,
		TTL:       int64(ttl / time.Second),
	}
}

// Canonical is the byte string that is signed and verified.
func Canonical(s Signable) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	return b, nil
}

// Metadata returns the plaintext metadata of the record.
func (s Signable) Metadata() Metadata {
	return Metadata{Project: s.Project, Hostname: s.Hostname}
}

// Sign signs s with kp. The publisher field must name kp.
func Sign(s Signable, kp *keystore.Keypair) (*HandoffRecord, error) {
	if s.Pubkey != kp.ID() {
		return nil, fmt.Errorf("%w: record publisher is not the signing identity", herrors.ErrInvalidUsage)
	}
	msg, err := Canonical(s)
	if err != nil {
		return nil, err
	}
	return &HandoffRecord{Signable: s, Sig: kp.Sign(msg)}, nil
}

// Verify recomputes the canonical form from the claimed fields and checks the
// signature against the claimed publisher. Any mismatch is false.
func Verify(rec *HandoffRecord) bool {
	if rec == nil || len(rec.Sig) != ed25519.SignatureSize {
		return false
	}
	pub, err := keystore.ParseID(rec.Pubkey)
	if err != nil {
		return false
	}
	msg, err := Canonical(rec.Signable)
	if err != nil {
		return false
	}
	return ed25519.Verify(pub, msg, rec.Sig)
}

// Marshal encodes a record for the store.
func Marshal(rec *HandoffRecord) ([]byte, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	return b, nil
}

// Unmarshal decodes a record from the store. Unknown fields are rejected.
// It does not verify the signature.
func Unmarshal(data []byte) (*HandoffRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var rec HandoffRecord
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrMalformedRecord, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data", herrors.ErrMalformedRecord)
	}
	return &rec, nil
}

// Tombstone is a signed empty record with zero TTL. It replaces a record on
// stores that cannot delete.
func Tombstone(kp *keystore.Keypair, now time.Time) (*HandoffRecord, error) {
	return Sign(Signable{CreatedAt: now.Unix(), Pubkey: kp.ID()}, kp)
}

// IsTombstone reports whether rec marks a revoked record.
func IsTombstone(rec *HandoffRecord) bool {
	return len(rec.Blob) == 0 && rec.TTL == 0
}
