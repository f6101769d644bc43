package workflows

import (
	"errors"
	"fmt"
	"time"

	"github.com/PolarWolf314/handoff/internal/configs"
	"github.com/PolarWolf314/handoff/internal/crypto"
	herrors "github.com/PolarWolf314/handoff/internal/errors"
	"github.com/PolarWolf314/handoff/internal/keystore"
	logger "github.com/PolarWolf314/handoff/internal/logging"
	"github.com/PolarWolf314/handoff/internal/transport"
)

// Env holds what every workflow needs: the loaded config, the key store and,
// for network operations, the transport client. The cmd layer builds one
// per invocation; tests build one over an in-memory datastore.
type Env struct {
	Config    *configs.Config
	Keys      *keystore.Store
	Transport *transport.Client
	Logger    logger.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// NewEnv builds an Env without a transport from config and settings.
func NewEnv(config *configs.Config, settings *configs.UserSettings, log logger.Logger) *Env {
	keys := keystore.NewStore(settings.KeyPath, log)
	keys.Params = config.KDF
	return &Env{Config: config, Keys: keys, Logger: log}
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Env) client() (*transport.Client, error) {
	if e.Transport == nil {
		return nil, fmt.Errorf("%w: no transport configured", herrors.ErrInvalidParams)
	}
	return e.Transport, nil
}

// loadIdentity opens the key file, prompting for its passphrase if needed.
func (e *Env) loadIdentity() (*keystore.Keypair, error) {
	kp, err := e.Keys.Load()
	if err != nil {
		return nil, fmt.Errorf("loading identity: %w", err)
	}
	return kp, nil
}

// RetryPolicy converts the [retry] config section.
func RetryPolicy(config *configs.Config) transport.RetryPolicy {
	policy := transport.DefaultRetryPolicy
	if d := config.Retry.InitialInterval.Duration; d > 0 {
		policy.InitialInterval = d
	}
	if d := config.Retry.MaxInterval.Duration; d > 0 {
		policy.MaxInterval = d
	}
	if d := config.Retry.MaxElapsed.Duration; d > 0 {
		policy.MaxElapsedTime = d
	}
	return policy
}

// promptNew asks for a new secret twice. An empty first answer returns nil
// so the caller can decide whether that is allowed.
func promptNew(p keystore.Prompter, what string) ([]byte, error) {
	if p == nil {
		return nil, herrors.ErrNoTTY
	}

	first, err := p.Passphrase(fmt.Sprintf("Enter new %s: ", what))
	if err != nil {
		return nil, err
	}
	if len(first) == 0 {
		return nil, nil
	}

	second, err := p.Passphrase(fmt.Sprintf("Confirm %s: ", what))
	if err != nil {
		crypto.Zeroize(first)
		return nil, err
	}
	defer crypto.Zeroize(second)

	if string(first) != string(second) {
		crypto.Zeroize(first)
		return nil, fmt.Errorf("%w: %ss do not match", herrors.ErrInvalidUsage, what)
	}
	return first, nil
}

// isNoTTY reports whether err is a failed prompt.
func isNoTTY(err error) bool {
	return errors.Is(err, herrors.ErrNoTTY)
}
