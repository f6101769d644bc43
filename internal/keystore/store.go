package keystore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/PolarWolf314/handoff/internal/crypto"
	"github.com/PolarWolf314/handoff/internal/envelope"
	herrors "github.com/PolarWolf314/handoff/internal/errors"
	logger "github.com/PolarWolf314/handoff/internal/logging"
)

// ProtectedPreview is shown instead of the identity when the key file is encrypted.
const ProtectedPreview = "(protected, cannot preview)"

// Store manages the identity key file at Path.
type Store struct {
	Path     string
	Prompter Prompter
	Params   crypto.Params
	Logger   logger.Logger

	// beforeRename runs after the temp file is written and synced. Tests use
	// it to stop a write at the last moment before the swap.
	beforeRename func(tmpPath string) error
}

// NewStore returns a Store that prompts on the terminal and writes new
// envelopes with the default KDF parameters.
func NewStore(path string, log logger.Logger) *Store {
	return &Store{
		Path:     path,
		Prompter: TerminalPrompter{},
		Params:   crypto.DefaultParams,
		Logger:   log,
	}
}

// Exists reports whether a key file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

// Load reads the identity. Encrypted files must be owner-only and are
// opened with a passphrase from the Prompter; legacy plaintext files load
// without a prompt.
//
// Returns ErrIdentityNotFound if there is no key file, ErrInsecurePermissions
// if an encrypted file is readable by others, ErrNoTTY if a passphrase is
// needed but cannot be prompted for, and the envelope errors from Decode.
func (s *Store) Load() (*Keypair, error) {
	data, err := s.read()
	if err != nil {
		return nil, err
	}
	defer crypto.Zeroize(data)

	if !envelope.IsEnvelope(data) {
		s.Logger.Debugf("Key file %s has no envelope marker, reading plaintext format", s.Path)
		return loadLegacy(data)
	}

	if err := s.checkPermissions(); err != nil {
		return nil, err
	}
	if s.Prompter == nil {
		return nil, herrors.ErrNoTTY
	}

	passphrase, err := s.Prompter.Passphrase("Enter passphrase for " + s.Path + ": ")
	if err != nil {
		return nil, err
	}
	defer crypto.Zeroize(passphrase)

	return decodeEnvelope(data, passphrase)
}

// LoadWithPassphrase opens the identity with a passphrase the caller already
// holds. Plaintext files ignore the passphrase.
func (s *Store) LoadWithPassphrase(passphrase []byte) (*Keypair, error) {
	data, err := s.read()
	if err != nil {
		return nil, err
	}
	defer crypto.Zeroize(data)

	if !envelope.IsEnvelope(data) {
		return loadLegacy(data)
	}
	if err := s.checkPermissions(); err != nil {
		return nil, err
	}
	return decodeEnvelope(data, passphrase)
}

// Save writes kp to Path. A non-empty passphrase produces an envelope; an
// empty one writes the plaintext format.
func (s *Store) Save(kp *Keypair, passphrase []byte) error {
	seed := kp.Seed()
	defer seed.Destroy()

	var data []byte
	if len(passphrase) > 0 {
		params := s.Params
		if params == (crypto.Params{}) {
			params = crypto.DefaultParams
		}
		encoded, err := envelope.Encode(seed.Bytes(), passphrase, params)
		if err != nil {
			return err
		}
		data = encoded
	} else {
		s.Logger.Warnf("Writing %s without passphrase protection", s.Path)
		data = encodeLegacy(seed.Bytes())
		defer crypto.Zeroize(data)
	}

	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return fmt.Errorf("creating key directory: %w", err)
	}

	s.Logger.Debugf("Writing key file %s", s.Path)
	return writeAtomic(s.Path, data, s.beforeRename)
}

// IsEncrypted reports whether the key file at Path is an envelope.
func (s *Store) IsEncrypted() bool {
	return IsEncryptedFormat(s.Path)
}

// Preview returns the public identity of the existing key file, or
// ProtectedPreview if it is encrypted.
func (s *Store) Preview() (string, error) {
	data, err := s.read()
	if err != nil {
		return "", err
	}
	defer crypto.Zeroize(data)

	if envelope.IsEnvelope(data) {
		return ProtectedPreview, nil
	}

	kp, err := loadLegacy(data)
	if err != nil {
		return "", err
	}
	defer kp.Destroy()
	return kp.ID(), nil
}

// ConfirmOverwrite asks before an existing identity is replaced. It returns
// true without prompting when no key file exists.
func (s *Store) ConfirmOverwrite() (bool, error) {
	if !s.Exists() {
		return true, nil
	}

	preview, err := s.Preview()
	if err != nil {
		// An unreadable file is still an identity worth asking about.
		s.Logger.Debugf("Could not preview %s: %v", s.Path, err)
		preview = "(unreadable)"
	}
	if s.Prompter == nil {
		return false, herrors.ErrNoTTY
	}

	return s.Prompter.Confirm(fmt.Sprintf("An identity already exists at %s\n  %s\nReplace it?", s.Path, preview))
}

// ChangePassphrase re-encrypts the identity under newPassphrase. An empty
// newPassphrase removes protection. oldPassphrase is ignored for plaintext files.
func (s *Store) ChangePassphrase(oldPassphrase, newPassphrase []byte) error {
	kp, err := s.LoadWithPassphrase(oldPassphrase)
	if err != nil {
		return err
	}
	defer kp.Destroy()

	return s.Save(kp, newPassphrase)
}

func (s *Store) read() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, herrors.ErrIdentityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	return data, nil
}

// checkPermissions refuses encrypted key files with any group or world bits.
// Windows has no such bits and is skipped.
func (s *Store) checkPermissions() error {
	if runtime.GOOS == "windows" {
		return nil
	}
	info, err := os.Stat(s.Path)
	if err != nil {
		return fmt.Errorf("checking key file permissions: %w", err)
	}
	if mode := info.Mode().Perm(); mode&0o077 != 0 {
		return fmt.Errorf("%w: %s has mode %04o", herrors.ErrInsecurePermissions, s.Path, mode)
	}
	return nil
}

// IsEncryptedFormat reports whether the file at path starts with the
// envelope marker. Missing or unreadable files are not encrypted.
func IsEncryptedFormat(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	prefix := make([]byte, len(envelope.Magic))
	if _, err := io.ReadFull(f, prefix); err != nil {
		return false
	}
	return envelope.IsEnvelope(prefix)
}

func loadLegacy(data []byte) (*Keypair, error) {
	seed, err := decodeLegacy(data)
	if err != nil {
		return nil, err
	}
	defer seed.Destroy()
	return FromSeed(seed.Bytes())
}

func decodeEnvelope(data, passphrase []byte) (*Keypair, error) {
	seed, err := envelope.Decode(data, passphrase)
	if err != nil {
		return nil, err
	}
	defer seed.Destroy()
	return FromSeed(seed.Bytes())
}
