// Package record defines the signed, encrypted handoff record.
//
// A record is built from an opaque payload and plaintext metadata, sealed
// (see Seal), and signed by the publisher. The signature covers the canonical
// JSON of every field except sig itself, in alphabetical field order:
//
//	blob, burn, created_at, hostname, pin_salt, project, pubkey, recipient, ttl
//
// Consumers check the signature with Verify and then the expiry with
// CheckExpiry. The store may keep an expired record around; it is the reader
// that refuses it.
//
// # Burn After Read
//
// A burn record is revoked by its owner after the first successful pickup.
// The store offers no compare-and-delete, so two pickups racing each other
// may both succeed before the tombstone lands. Burn is a best-effort
// single-use flag, not a guarantee.
//
// Sharing and burn cannot be combined: only the publisher can write the
// tombstone, and a recipient on another identity cannot.
package record
