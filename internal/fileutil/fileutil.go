// Package fileutil holds file permission constants and the guarded output
// writer used by the CLI.
package fileutil

import (
	"fmt"
	"os"
)

// OwnerReadWrite is the file permission mode for bundled or resolved
// documents, which may contain sensitive API data (owner read/write only).
const OwnerReadWrite os.FileMode = 0o600

// WriteOutput sanitizes path and writes data to it with OwnerReadWrite.
func WriteOutput(path string, data []byte) error {
	safe, err := SanitizeOutputPath(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(safe, data, OwnerReadWrite); err != nil {
		return fmt.Errorf("fileutil: writing %s: %w", safe, err)
	}
	return nil
}
