package crypto

import "runtime"

// Secret owns key material that must be wiped once the holding scope ends.
// Callers pair every constructor with a deferred Destroy.
type Secret struct {
	b []byte
}

// NewSecret takes ownership of b. The caller must not keep other references.
func NewSecret(b []byte) *Secret {
	return &Secret{b: b}
}

// Bytes returns the backing slice. It is valid until Destroy.
func (s *Secret) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.b
}

// Array32 returns a pointer to the first 32 bytes, as the NaCl APIs expect.
// The pointer aliases the secret and must not outlive it.
func (s *Secret) Array32() *[32]byte {
	if s == nil || len(s.b) < 32 {
		return nil
	}
	return (*[32]byte)(s.b[:32])
}

// Len returns the secret length in bytes.
func (s *Secret) Len() int {
	if s == nil {
		return 0
	}
	return len(s.b)
}

// Destroy zeroes the secret. Safe to call more than once and on nil.
func (s *Secret) Destroy() {
	if s == nil {
		return
	}
	Zeroize(s.b)
	s.b = nil
}

// Zeroize overwrites b with zeros.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// Zeroize32 overwrites a fixed-size key array with zeros.
func Zeroize32(b *[32]byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
