package pipeline

import (
	"errors"
	"os"
)

// removeAll removes each path, ignoring "does not exist" so cleanup
// is safe to call even when an earlier phase never created the file.
func removeAll(paths ...string) error {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}
