// Package errors provides typed error values for handoff.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Classes
//
// Every specific error unwraps to one class:
//
//   - ErrFormat: bad magic, unsupported version, truncated buffer. Not retried.
//   - ErrCredential: wrong passphrase or PIN, signature mismatch. Not retried.
//   - ErrPermission: key file not owner-restricted, no terminal to prompt on.
//   - ErrExpired: the record TTL has elapsed.
//   - ErrNotFound: the store has no such record. Permanent, not retried.
//   - ErrTransient: connectivity failure. Retried with bounded backoff.
//   - ErrRetriesExhausted: transient failures outlasted the retry budget.
//   - ErrInvalidParams: impossible KDF parameters (programmer error).
//   - ErrInvalidUsage: option combinations the protocol refuses.
//
// # Usage
//
// Check the class in the CLI layer:
//
//	_, err := workflows.Pickup(ctx, opts)
//	if errors.Is(err, herrors.ErrCredential) {
//	    // ask the user to re-enter the PIN
//	}
//
// Or map straight to an exit code:
//
//	os.Exit(herrors.ExitCode(err))
package errors
