package utils

import (
	"os"
	"os/user"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	unsafeLabelChars = regexp.MustCompile(`[^a-z0-9\-_.]`)
	repeatedHyphens  = regexp.MustCompile(`-+`)
)

// GetUsername returns the current username.
func GetUsername() (string, error) {
	user, err := user.Current()
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

// GetHostname returns the system hostname.
func GetHostname() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", err
	}
	return hostname, nil
}

// SanitizeLabel normalizes a hostname or project name for record metadata.
// It lowercases, turns spaces into hyphens and drops anything else unusual.
func SanitizeLabel(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")
	name = unsafeLabelChars.ReplaceAllString(name, "")
	name = repeatedHyphens.ReplaceAllString(name, "-")
	return strings.Trim(name, "-")
}

// DefaultHostname returns the sanitized hostname, falling back to the
// username and then to "device".
func DefaultHostname() string {
	hostname, err := GetHostname()
	if err != nil {
		if username, userErr := GetUsername(); userErr == nil {
			hostname = username
		}
	}
	if label := SanitizeLabel(hostname); label != "" {
		return label
	}
	return "device"
}

// DefaultProject returns the sanitized name of the working directory.
func DefaultProject() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return SanitizeLabel(filepath.Base(wd))
}
