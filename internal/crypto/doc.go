// Package crypto holds the pure cryptographic functions behind handoff.
//
// Nothing in this package performs I/O beyond reading the system random source.
//
// # Key Spaces
//
// An identity is an Ed25519 signing key. Payloads are encrypted with X25519
// sealed boxes, so both halves of the identity have an X25519 counterpart:
//
//   - DeriveEncryptionSecret maps the Ed25519 seed to an X25519 scalar.
//   - EncryptionPublicKey maps the Ed25519 public key to an X25519 public key.
//
// Both follow libsodium's crypto_sign_ed25519_*_to_curve25519 and are tested
// against known vectors in convert_test.go.
//
// # Key Derivation
//
// DeriveKey runs argon2id followed by an HKDF-SHA256 expansion keyed by a
// context string. ContextPIN protects record payloads and ContextKeyFile
// protects the identity key file; the same PIN or passphrase yields unrelated
// keys in the two roles.
//
// # Secret Handling
//
// Secret wraps derived keys and scalars. Callers defer Destroy immediately
// after a successful constructor so the bytes are zeroed on every return
// path. Go's runtime may move or copy heap memory before Destroy runs and
// strings cannot be wiped at all, so this reduces the exposure window of key
// material but does not guarantee that no copy survives in process memory.
package crypto
