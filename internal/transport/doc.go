// Package transport publishes and retrieves handoff records against a
// public-key-addressed store.
//
// Records live under /handoff/<pubkey>/<id> and each identity has a signed
// pointer at /handoff/<pubkey>/latest. Client writes the record before the
// pointer, so a pointer never names a record that was not stored.
//
// Two Store implementations exist. DHTStore puts values into a private
// libp2p Kademlia DHT; it has no delete, so a revoke overwrites the record
// with a signed tombstone. DatastoreStore wraps an ipfs/go-datastore, backed
// by LevelDB on disk for hand-offs through a shared or synced directory.
//
// Every record Retrieve returns has passed record.Verify and names the
// identity it was stored under. Store reads are retried with a RetryPolicy to
// ride out propagation delay; a not-found answer is final.
package transport
