// Package audit keeps a local history of handoff operations.
//
// Every publish, pickup and revoke is appended to a JSON Lines file under
// the data directory (configs.UserHandoffSettings.HistoryPath):
//
//	{"ts":"2026-01-02T15:04:05.000000Z","op":"publish","token":"<pub>/<id>","identity":"<pub>","burn":true,"ttl":900}
//
// Entries carry tokens and flags only. Payloads, PINs, passphrases and
// key material are never written.
//
// # Failure Handling
//
// Logging is best-effort. A history that cannot be written never fails the
// operation that produced it.
//
// # Reading History
//
// ReadEntries parses the file, skipping malformed lines left by partial
// writes. LastToken finds the newest published token that was not revoked,
// which is what `handoff revoke` targets when given no token.
package audit
