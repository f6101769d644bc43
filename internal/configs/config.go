package configs

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/PolarWolf314/handoff/internal/crypto"
	herrors "github.com/PolarWolf314/handoff/internal/errors"
)

// Transport modes.
const (
	TransportDHT   = "dht"
	TransportLocal = "local"
)

// Config is the user's config.toml. Missing keys keep their defaults.
type Config struct {
	Record    RecordConfig    `toml:"record"`
	KDF       crypto.Params   `toml:"kdf"`
	Transport TransportConfig `toml:"transport"`
	Retry     RetryConfig     `toml:"retry"`
}

type RecordConfig struct {
	DefaultTTL Duration `toml:"default_ttl"`
	MaxTTL     Duration `toml:"max_ttl"`
}

type TransportConfig struct {
	Mode           string   `toml:"mode"`
	LocalPath      string   `toml:"local_path"`
	BootstrapPeers []string `toml:"bootstrap_peers"`
	ListenAddrs    []string `toml:"listen_addrs"`
}

type RetryConfig struct {
	InitialInterval Duration `toml:"initial_interval"`
	MaxInterval     Duration `toml:"max_interval"`
	MaxElapsed      Duration `toml:"max_elapsed"`
}

// Duration is a time.Duration written as a Go duration string ("15m").
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// DefaultConfig is used when there is no config file.
func DefaultConfig() *Config {
	return &Config{
		Record: RecordConfig{
			DefaultTTL: Duration{15 * time.Minute},
			MaxTTL:     Duration{24 * time.Hour},
		},
		KDF: crypto.DefaultParams,
		Transport: TransportConfig{
			Mode: TransportDHT,
		},
		Retry: RetryConfig{
			InitialInterval: Duration{500 * time.Millisecond},
			MaxInterval:     Duration{5 * time.Second},
			MaxElapsed:      Duration{30 * time.Second},
		},
	}
}

// LoadConfig reads the config file at path over the defaults. A missing file
// is not an error.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return config, nil
	}

	if err := LoadTOML(path, config); err != nil {
		return nil, fmt.Errorf("%w: failed to load config %s: %v", herrors.ErrFormat, path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig writes config to path.
func SaveConfig(path string, config *Config) error {
	if err := SaveTOML(path, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	if c.Record.DefaultTTL.Duration < time.Second {
		return fmt.Errorf("%w: record.default_ttl must be at least 1s", herrors.ErrInvalidUsage)
	}
	if c.Record.MaxTTL.Duration > 0 && c.Record.DefaultTTL.Duration > c.Record.MaxTTL.Duration {
		return fmt.Errorf("%w: record.default_ttl exceeds record.max_ttl", herrors.ErrInvalidUsage)
	}
	if err := c.KDF.Validate(); err != nil {
		return fmt.Errorf("%w: kdf: %v", herrors.ErrInvalidUsage, err)
	}

	switch c.Transport.Mode {
	case TransportDHT:
	case TransportLocal:
	default:
		return fmt.Errorf("%w: transport.mode must be %q or %q, got %q", herrors.ErrInvalidUsage, TransportDHT, TransportLocal, c.Transport.Mode)
	}
	return nil
}
