package configs

import (
	"log"
	"os"
	"path/filepath"
)

// Environment overrides for the default locations.
const (
	EnvKeyPath   = "HANDOFF_KEY_PATH"
	EnvConfigDir = "HANDOFF_CONFIG_DIR"
)

type UserSettings struct {
	KeyPath     string
	DataPath    string
	ConfigPath  string
	HistoryPath string
	LocalStore  string
}

// UserHandoffSettings holds the resolved paths for the current user.
var UserHandoffSettings *UserSettings

func init() {
	settings, err := ResolveUserSettings()
	if err != nil {
		log.Fatalf("error resolving handoff directories: %s", err)
	}
	UserHandoffSettings = settings
}

// ResolveUserSettings computes paths from the XDG directories and the
// HANDOFF_* overrides.
func ResolveUserSettings() (*UserSettings, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configDir := os.Getenv(EnvConfigDir)
	if configDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(base, "handoff")
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	dataDir = filepath.Join(dataDir, "handoff")

	keyPath := os.Getenv(EnvKeyPath)
	if keyPath == "" {
		keyPath = filepath.Join(dataDir, "identity.key")
	}

	return &UserSettings{
		KeyPath:     keyPath,
		DataPath:    dataDir,
		ConfigPath:  filepath.Join(configDir, "config.toml"),
		HistoryPath: filepath.Join(dataDir, "history.jsonl"),
		LocalStore:  filepath.Join(dataDir, "store"),
	}, nil
}
