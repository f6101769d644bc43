// Package workflows provides high-level orchestration for handoff commands.
//
// Workflows coordinate the keystore, record and transport packages to
// implement complete user-facing features. Each workflow handles a single
// command's logic, independent of CLI concerns like flag parsing, spinners
// and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Builds an Env and calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Validating options before any key is loaded
//   - Loading the identity and prompting through the Env's Prompter
//   - Performing the operation against the transport
//   - Recording history entries
//
// # Available Workflows
//
//   - Init: creates or restores the identity
//   - Publish: seals a payload and stores it under the identity
//   - Pickup: retrieves, verifies, checks expiry and decrypts a record
//   - Revoke: replaces a record with a tombstone
//   - Whoami, ChangePassphrase, Backup: identity management
//   - Log, Doctor: local history and health checks
//
// # Error Handling
//
// Workflows return errors that unwrap to the classes in internal/errors:
//
//	result, err := workflows.Pickup(ctx, opts)
//	if errors.Is(err, herrors.ErrExpired) {
//	    // Show when it expired
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first
// parameter. Network calls honour its cancellation; key derivation does not.
package workflows
