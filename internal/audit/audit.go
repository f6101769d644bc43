package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/PolarWolf314/handoff/internal/configs"
)

// Operation names.
const (
	OpPublish = "publish"
	OpPickup  = "pickup"
	OpRevoke  = "revoke"
)

// Entry represents a single history entry. It never carries payloads, PINs
// or key material.
type Entry struct {
	Timestamp string `json:"ts"`       // RFC3339 with microseconds.
	Operation string `json:"op"`       // Operation name.
	Token     string `json:"token"`    // pubkey:id of the record.
	Identity  string `json:"identity"` // Local identity performing the operation.

	Burn   bool  `json:"burn,omitempty"`
	Shared bool  `json:"shared,omitempty"`
	TTL    int64 `json:"ttl,omitempty"` // Seconds, for publish.
}

// Log appends an entry to the history file.
// Operations should not fail just because history logging failed, so
// errors are dropped.
func Log(entry Entry) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	logPath := LogPath()
	if logPath == "" {
		return
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// LogPath returns the path to the history file, or "" when settings are
// unavailable.
func LogPath() string {
	if configs.UserHandoffSettings == nil {
		return ""
	}
	return configs.UserHandoffSettings.HistoryPath
}

// ReadEntries reads all entries from the history file.
// Returns an empty slice if the file doesn't exist.
func ReadEntries() ([]Entry, error) {
	logPath := LogPath()
	if logPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into history entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				// Skip malformed entries.
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// LastToken returns the most recent token identity published that has not
// been revoked since. The second result is false when there is none.
func LastToken(identity string) (string, bool, error) {
	entries, err := ReadEntries()
	if err != nil {
		return "", false, err
	}

	revoked := make(map[string]bool)
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Identity != identity {
			continue
		}
		switch e.Operation {
		case OpRevoke:
			revoked[e.Token] = true
		case OpPublish:
			if !revoked[e.Token] {
				return e.Token, true, nil
			}
		}
	}
	return "", false, nil
}
