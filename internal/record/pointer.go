package record

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"time"

	herrors "github.com/PolarWolf314/handoff/internal/errors"
	"github.com/PolarWolf314/handoff/internal/keystore"
)

// Pointer is the signed "latest" entry for an identity. UpdatedAt is in
// Unix nanoseconds so two publishes within a second still order.
type Pointer struct {
	Pubkey    string `json:"pubkey"`
	Token     string `json:"token"`
	UpdatedAt int64  `json:"updated_at"`
	Sig       []byte `json:"sig"`
}

type pointerSignable struct {
	Pubkey    string `json:"pubkey"`
	Token     string `json:"token"`
	UpdatedAt int64  `json:"updated_at"`
}

func (p *Pointer) canonical() ([]byte, error) {
	return json.Marshal(pointerSignable{Pubkey: p.Pubkey, Token: p.Token, UpdatedAt: p.UpdatedAt})
}

// NewPointer signs a pointer from kp's identity to token.
func NewPointer(token Ref, kp *keystore.Keypair, now time.Time) (*Pointer, error) {
	if token.Pubkey != kp.ID() || !token.IsToken() {
		return nil, fmt.Errorf("%w: pointer must reference a token of the signing identity", herrors.ErrInvalidUsage)
	}
	p := &Pointer{Pubkey: kp.ID(), Token: token.String(), UpdatedAt: now.UnixNano()}
	msg, err := p.canonical()
	if err != nil {
		return nil, fmt.Errorf("encoding pointer: %w", err)
	}
	p.Sig = kp.Sign(msg)
	return p, nil
}

// Verify checks the signature and that the token belongs to the signer.
func (p *Pointer) Verify() bool {
	if p == nil || len(p.Sig) != ed25519.SignatureSize {
		return false
	}
	pub, err := keystore.ParseID(p.Pubkey)
	if err != nil {
		return false
	}
	ref, err := ParseRef(p.Token)
	if err != nil || ref.Pubkey != p.Pubkey || !ref.IsToken() {
		return false
	}
	msg, err := p.canonical()
	if err != nil {
		return false
	}
	return ed25519.Verify(pub, msg, p.Sig)
}

// MarshalPointer encodes a pointer for the store.
func MarshalPointer(p *Pointer) ([]byte, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding pointer: %w", err)
	}
	return b, nil
}

// UnmarshalPointer decodes a pointer. It does not verify the signature.
func UnmarshalPointer(data []byte) (*Pointer, error) {
	var p Pointer
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrMalformedRecord, err)
	}
	return &p, nil
}
