package utils

import (
	"fmt"
	"io"
)

// ReadLimited reads r up to limit+1 bytes. Reading one byte past the limit
// lets callers tell "exactly at the limit" from "over it". Empty input is an
// error.
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("no input provided")
	}

	return data, nil
}
