package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/PolarWolf314/handoff/internal/configs"
	"github.com/PolarWolf314/handoff/internal/keystore"
	logger "github.com/PolarWolf314/handoff/internal/logging"
	"github.com/PolarWolf314/handoff/internal/p2p"
)

// CheckStatus represents the result status of a health check.
type CheckStatus int

const (
	// CheckPass means the check passed.
	CheckPass CheckStatus = iota
	// CheckWarning means the check found a non-critical issue.
	CheckWarning
	// CheckError means the check found a critical issue.
	CheckError
)

// String returns a string representation of CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "pass"
	case CheckWarning:
		return "warning"
	case CheckError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for CheckStatus.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// CheckResult holds the result of a single health check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// DoctorResult holds the complete result of the doctor workflow.
type DoctorResult struct {
	Checks      []CheckResult `json:"checks"`
	Summary     DoctorSummary `json:"summary"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

// DoctorSummary holds counts of checks by status.
type DoctorSummary struct {
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// DoctorOptions configures the doctor workflow.
type DoctorOptions struct {
	Settings *configs.UserSettings
	Config   *configs.Config

	// ConfigErr is the error LoadConfig returned, if any. Doctor reports it
	// instead of failing.
	ConfigErr error
}

// Doctor runs local health checks. It never touches the network and never
// prompts.
//
// The doctor workflow checks:
//   - Config file validity
//   - Key file existence, format and permissions
//   - Transport settings
//   - History file writability
func Doctor(ctx context.Context, opts DoctorOptions) (*DoctorResult, error) {
	checks := []func(DoctorOptions) CheckResult{
		checkConfig,
		checkKeyExists,
		checkKeyProtection,
		checkKeyPermissions,
		checkTransport,
		checkHistory,
	}

	var results []CheckResult
	for _, check := range checks {
		results = append(results, check(opts))
	}

	summary := calculateDoctorSummary(results)

	// Collect suggestions (deduplicated).
	var suggestions []string
	seen := make(map[string]bool)
	for _, result := range results {
		if result.Suggestion != "" && result.Status != CheckPass && !seen[result.Suggestion] {
			suggestions = append(suggestions, result.Suggestion)
			seen[result.Suggestion] = true
		}
	}

	return &DoctorResult{
		Checks:      results,
		Summary:     summary,
		Suggestions: suggestions,
	}, nil
}

func checkConfig(opts DoctorOptions) CheckResult {
	if opts.ConfigErr != nil {
		return CheckResult{
			Name:       "Config file",
			Status:     CheckError,
			Message:    fmt.Sprintf("Config is invalid: %v", opts.ConfigErr),
			Suggestion: fmt.Sprintf("Fix or remove %s", opts.Settings.ConfigPath),
		}
	}
	if _, err := os.Stat(opts.Settings.ConfigPath); os.IsNotExist(err) {
		return CheckResult{
			Name:    "Config file",
			Status:  CheckPass,
			Message: "No config file, using defaults",
		}
	}
	return CheckResult{
		Name:    "Config file",
		Status:  CheckPass,
		Message: "Config file is valid",
	}
}

func checkKeyExists(opts DoctorOptions) CheckResult {
	info, err := os.Stat(opts.Settings.KeyPath)
	if os.IsNotExist(err) {
		return CheckResult{
			Name:       "Identity",
			Status:     CheckError,
			Message:    "No key file found",
			Suggestion: "Run 'handoff init' to create an identity",
		}
	}
	if err != nil {
		return CheckResult{
			Name:       "Identity",
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to stat key file: %v", err),
			Suggestion: "Check that the key file is accessible",
		}
	}
	if info.IsDir() {
		return CheckResult{
			Name:       "Identity",
			Status:     CheckError,
			Message:    fmt.Sprintf("%s is a directory", opts.Settings.KeyPath),
			Suggestion: "Set HANDOFF_KEY_PATH to a file path",
		}
	}
	return CheckResult{
		Name:    "Identity",
		Status:  CheckPass,
		Message: "Key file found",
	}
}

func checkKeyProtection(opts DoctorOptions) CheckResult {
	if _, err := os.Stat(opts.Settings.KeyPath); err != nil {
		return CheckResult{
			Name:    "Key protection",
			Status:  CheckWarning,
			Message: "Key file not found (skipping protection check)",
		}
	}

	if keystore.IsEncryptedFormat(opts.Settings.KeyPath) {
		return CheckResult{
			Name:    "Key protection",
			Status:  CheckPass,
			Message: "Key file is passphrase protected",
		}
	}

	store := keystore.NewStore(opts.Settings.KeyPath, logger.Logger{})
	if _, err := store.Preview(); err != nil {
		return CheckResult{
			Name:       "Key protection",
			Status:     CheckError,
			Message:    fmt.Sprintf("Key file is unreadable: %v", err),
			Suggestion: "Restore the identity with 'handoff init --restore'",
		}
	}
	return CheckResult{
		Name:       "Key protection",
		Status:     CheckWarning,
		Message:    "Key file is stored without a passphrase",
		Suggestion: "Run 'handoff passphrase' to protect the key file",
	}
}

func checkKeyPermissions(opts DoctorOptions) CheckResult {
	if runtime.GOOS == "windows" {
		return CheckResult{
			Name:    "Key permissions",
			Status:  CheckPass,
			Message: "Permission bits are not checked on Windows",
		}
	}

	info, err := os.Stat(opts.Settings.KeyPath)
	if err != nil {
		return CheckResult{
			Name:    "Key permissions",
			Status:  CheckWarning,
			Message: "Key file not found (skipping permissions check)",
		}
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		status := CheckWarning
		if keystore.IsEncryptedFormat(opts.Settings.KeyPath) {
			// Load refuses these.
			status = CheckError
		}
		return CheckResult{
			Name:       "Key permissions",
			Status:     status,
			Message:    fmt.Sprintf("Key file has insecure permissions (%04o)", mode),
			Suggestion: fmt.Sprintf("Run 'chmod 600 %s' to fix permissions", opts.Settings.KeyPath),
		}
	}

	return CheckResult{
		Name:    "Key permissions",
		Status:  CheckPass,
		Message: "Key file has correct permissions (0600)",
	}
}

func checkTransport(opts DoctorOptions) CheckResult {
	config := opts.Config
	if config == nil {
		return CheckResult{
			Name:    "Transport",
			Status:  CheckWarning,
			Message: "Config not loaded (skipping transport check)",
		}
	}

	switch config.Transport.Mode {
	case configs.TransportLocal:
		path := config.Transport.LocalPath
		if path == "" {
			path = opts.Settings.LocalStore
		}
		return CheckResult{
			Name:    "Transport",
			Status:  CheckPass,
			Message: fmt.Sprintf("Local store at %s", path),
		}
	default:
		peers := config.Transport.BootstrapPeers
		listens := len(config.Transport.ListenAddrs) > 0
		if len(peers) == 0 && !listens {
			return CheckResult{
				Name:       "Transport",
				Status:     CheckError,
				Message:    "DHT mode has no bootstrap peers",
				Suggestion: fmt.Sprintf("Run \"handoff serve\" on one device and add its address to transport.bootstrap_peers in %s, or set transport.mode = \"local\"", opts.Settings.ConfigPath),
			}
		}
		if _, err := p2p.ParseBootstrapPeers(peers); err != nil {
			return CheckResult{
				Name:       "Transport",
				Status:     CheckError,
				Message:    err.Error(),
				Suggestion: "Bootstrap peers must be multiaddrs ending in /p2p/<peer id>",
			}
		}
		if len(peers) == 0 {
			return CheckResult{
				Name:    "Transport",
				Status:  CheckPass,
				Message: fmt.Sprintf("DHT server on %d listen addresses, no bootstrap peers", len(config.Transport.ListenAddrs)),
			}
		}
		return CheckResult{
			Name:    "Transport",
			Status:  CheckPass,
			Message: fmt.Sprintf("DHT with %d bootstrap peers", len(peers)),
		}
	}
}

func checkHistory(opts DoctorOptions) CheckResult {
	dir := filepath.Dir(opts.Settings.HistoryPath)
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return CheckResult{
			Name:    "History",
			Status:  CheckPass,
			Message: "No history yet",
		}
	}
	if err != nil || !info.IsDir() {
		return CheckResult{
			Name:       "History",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("History directory %s is not usable", dir),
			Suggestion: "Revoke without a token needs the history; check the data directory",
		}
	}
	return CheckResult{
		Name:    "History",
		Status:  CheckPass,
		Message: "History directory is usable",
	}
}

// calculateDoctorSummary calculates the counts of checks by status.
func calculateDoctorSummary(results []CheckResult) DoctorSummary {
	var summary DoctorSummary
	for _, result := range results {
		switch result.Status {
		case CheckPass:
			summary.Passed++
		case CheckWarning:
			summary.Warnings++
		case CheckError:
			summary.Errors++
		}
	}
	return summary
}
