// Package logger provides leveled diagnostics for handoff commands.
//
// # Verbosity Levels
//
//   - --verbose: info messages
//   - --debug: info and debug messages, including transport retries
//
// Warnings and errors are always shown. All output goes to stderr, never
// stdout, so `handoff pickup > file` captures only the payload.
//
// Nothing secret is ever passed to a Logger: no payloads, PINs,
// passphrases or key material. Tokens and public identities are fine.
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Debugf("Putting record %s", token)
package logger
