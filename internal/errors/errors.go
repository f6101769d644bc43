package errors

import "errors"

// Error classes. Every error returned by handoff packages unwraps to exactly
// one of these, so the CLI layer can map outcomes without string matching.
var (
	// ErrFormat indicates bytes that do not parse as the expected format.
	ErrFormat = errors.New("malformed data")

	// ErrCredential indicates a wrong passphrase, PIN, or signature.
	ErrCredential = errors.New("credential rejected")

	// ErrPermission indicates a key file that is readable by other users.
	ErrPermission = errors.New("permission error")

	// ErrExpired indicates a record whose TTL has elapsed.
	ErrExpired = errors.New("record expired")

	// ErrNotFound indicates the remote store has no record for the reference.
	ErrNotFound = errors.New("record not found")

	// ErrTransient indicates a connectivity failure worth retrying.
	ErrTransient = errors.New("transient network error")

	// ErrRetriesExhausted indicates transient failures outlasted the retry budget.
	ErrRetriesExhausted = errors.New("exhausted retries")

	// ErrInvalidParams indicates a programming error such as impossible KDF parameters.
	ErrInvalidParams = errors.New("invalid parameters")

	// ErrInvalidUsage indicates option combinations the protocol refuses.
	ErrInvalidUsage = errors.New("invalid usage")
)

// Format errors.
var (
	// ErrTruncated indicates a buffer shorter than its fixed header.
	ErrTruncated = classed(ErrFormat, "truncated key file")

	// ErrBadMagic indicates a buffer that does not start with the envelope marker.
	ErrBadMagic = classed(ErrFormat, "key file has no envelope marker")

	// ErrUnsupportedVersion indicates an envelope written by a newer format version.
	ErrUnsupportedVersion = classed(ErrFormat, "unsupported key file version")

	// ErrMalformedSeed indicates decrypted or legacy key material that is not a 32-byte seed.
	ErrMalformedSeed = classed(ErrFormat, "key file does not contain a 32-byte seed")

	// ErrMalformedRecord indicates a record that does not decode.
	ErrMalformedRecord = classed(ErrFormat, "malformed handoff record")

	// ErrMalformedReference indicates an identity or token string that does not parse.
	ErrMalformedReference = classed(ErrFormat, "malformed identity or token")
)

// Credential errors.
var (
	// ErrWrongPassphrase indicates the key file passphrase did not open the envelope.
	ErrWrongPassphrase = classed(ErrCredential, "wrong passphrase")

	// ErrWrongPIN indicates the PIN did not open the payload.
	ErrWrongPIN = classed(ErrCredential, "wrong PIN")

	// ErrPINRequired indicates a PIN-protected record was opened without a PIN.
	ErrPINRequired = classed(ErrCredential, "record is PIN protected")

	// ErrBadSignature indicates a record whose signature does not match its fields.
	ErrBadSignature = classed(ErrCredential, "record signature is invalid")

	// ErrNotRecipient indicates a payload that was encrypted for another identity.
	ErrNotRecipient = classed(ErrCredential, "record is not addressed to this identity")

	// ErrDecrypt indicates an authenticated decryption that did not verify.
	ErrDecrypt = classed(ErrCredential, "decryption failed")

	// ErrPassphraseRequired indicates an empty passphrase where one is mandatory.
	ErrPassphraseRequired = classed(ErrCredential, "passphrase is required")
)

// Permission errors.
var (
	// ErrInsecurePermissions indicates a protected key file with group or world access bits.
	ErrInsecurePermissions = classed(ErrPermission, "key file permissions are too open (want 0600)")

	// ErrNoTTY indicates a prompt was needed but no interactive terminal is attached.
	ErrNoTTY = classed(ErrPermission, "cannot prompt: no interactive terminal")
)

// Usage errors.
var (
	// ErrShareBurn indicates a shared record with burn-after-read, which the store cannot honor.
	ErrShareBurn = classed(ErrInvalidUsage, "burn-after-read cannot be combined with sharing")

	// ErrInvalidRecipient indicates a share target that is not a valid public identity.
	ErrInvalidRecipient = classed(ErrInvalidUsage, "invalid recipient identity")

	// ErrInvalidTTL indicates a TTL that is zero, negative, or above the configured maximum.
	ErrInvalidTTL = classed(ErrInvalidUsage, "invalid ttl")

	// ErrPayloadTooLarge indicates a payload above the record size limit.
	ErrPayloadTooLarge = classed(ErrInvalidUsage, "payload too large")

	// ErrIdentityExists indicates init would overwrite an identity without confirmation.
	ErrIdentityExists = classed(ErrInvalidUsage, "an identity already exists")

	// ErrIdentityNotFound indicates no key file exists at the configured path.
	ErrIdentityNotFound = classed(ErrInvalidUsage, "no identity found, run init first")

	// ErrNoToken indicates revoke was called with no token and no history.
	ErrNoToken = classed(ErrInvalidUsage, "no token given and none in history")
)

// classError is a specific error that belongs to a class.
type classError struct {
	class error
	msg   string
}

func classed(class error, msg string) error {
	return &classError{class: class, msg: msg}
}

func (e *classError) Error() string { return e.msg }

func (e *classError) Unwrap() error { return e.class }

// Exit codes used by the command layer.
const (
	ExitOK         = 0
	ExitGeneric    = 1
	ExitCredential = 2
	ExitExpired    = 3
	ExitNotFound   = 4
	ExitPermission = 5
	ExitNetwork    = 6
	ExitFormat     = 7
	ExitUsage      = 8
)

// ExitCode maps an error to the process exit code for its class.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrCredential):
		return ExitCredential
	case errors.Is(err, ErrExpired):
		return ExitExpired
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	case errors.Is(err, ErrPermission):
		return ExitPermission
	case errors.Is(err, ErrRetriesExhausted), errors.Is(err, ErrTransient):
		return ExitNetwork
	case errors.Is(err, ErrFormat):
		return ExitFormat
	case errors.Is(err, ErrInvalidUsage):
		return ExitUsage
	default:
		return ExitGeneric
	}
}
