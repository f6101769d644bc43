package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"LowercaseSimple", "MacBook", "macbook"},
		{"SpacesToHyphens", "My Device", "my-device"},
		{"RemoveSpecialChars", "My@Device#123!", "mydevice123"},
		{"RemoveConsecutiveHyphens", "my--device", "my-device"},
		{"TrimHyphens", "-my-device-", "my-device"},
		{"Empty", "", ""},
		{"OnlySpecialChars", "@#$%", ""},
		{"PreserveUnderscores", "my_device", "my_device"},
		{"PreserveDots", "host.local", "host.local"},
		{"TrimWhitespace", "  mydevice  ", "mydevice"},
		{"ComplexName", "  My MacBook Pro! #1  ", "my-macbook-pro-1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := SanitizeLabel(tc.input)
			if result != tc.expected {
				t.Errorf("SanitizeLabel(%q) = %q, expected %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestDefaultHostname(t *testing.T) {
	name := DefaultHostname()
	if name == "" {
		t.Error("Expected non-empty hostname label")
	}
	if SanitizeLabel(name) != name {
		t.Errorf("Expected sanitized hostname, got: %q", name)
	}
}

func TestDefaultProject(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "My Project")
	if err := os.Mkdir(dir, 0700); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	t.Chdir(dir)

	if got := DefaultProject(); got != "my-project" {
		t.Errorf("Expected my-project, got: %q", got)
	}
}

func TestReadLimited(t *testing.T) {
	data, err := ReadLimited(bytes.NewReader(make([]byte, 20)), 8)
	if err != nil {
		t.Fatalf("ReadLimited failed: %v", err)
	}
	if len(data) != 9 {
		t.Errorf("Expected limit+1 bytes, got: %d", len(data))
	}

	if _, err := ReadLimited(bytes.NewReader(nil), 8); err == nil {
		t.Error("Expected error for empty input")
	}
}
