// Package utils provides shared helpers for the handoff CLI.
//
// # System Utilities
//
//   - GetUsername, GetHostname: operating system identity
//   - SanitizeLabel: normalizes hostnames and project names for record metadata
//   - DefaultHostname, DefaultProject: the metadata a record carries unless overridden
//
// # I/O Utilities
//
//   - ReadLimited: bounded reads of a piped payload
//
// # Terminal Utilities
//
//   - IsTerminal, IsStdoutTerminal, IsTTYAvailable: terminal detection
//   - ReadPassphrase, ReadPassphraseFromTTY: hidden input via golang.org/x/term
package utils
