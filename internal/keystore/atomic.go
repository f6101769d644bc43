package keystore

import (
	"fmt"
	"os"

	"github.com/facebookgo/atomicfile"
)

// WriteAtomic replaces path with data. The bytes go to a temp file in the
// same directory that is owner-only before and after the rename, so a crash
// leaves either the old file or the new one at path, never a partial write.
func WriteAtomic(path string, data []byte) error {
	return writeAtomic(path, data, nil)
}

func writeAtomic(path string, data []byte, beforeRename func(tmpPath string) error) (err error) {
	f, err := atomicfile.New(path, 0600)
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}

	renamed := false
	defer func() {
		if err != nil && !renamed {
			// Abort stops at the first error, so remove the temp file explicitly too.
			_ = f.Abort()
			_ = os.Remove(f.Name())
		}
	}()

	if err = f.Chmod(0600); err != nil {
		return fmt.Errorf("restricting temp file: %w", err)
	}
	if _, err = f.Write(data); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if beforeRename != nil {
		if err = beforeRename(f.Name()); err != nil {
			return err
		}
	}

	if err = f.Close(); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	renamed = true

	if err = os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("restricting %s: %w", path, err)
	}
	return nil
}
