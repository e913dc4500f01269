package diskimage

import (
	"fmt"
	"os"
)

// NewSparseImage creates (or truncates) the file at path and sizes it to size
// bytes without allocating any block.
func NewSparseImage(path string, size int64) (err error) {
	if size < 0 {
		return fmt.Errorf("image size can't be negative: %d", size)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("could not create image file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("could not close image file: %w", cerr)
		}
	}()

	if err := f.Truncate(size); err != nil {
		return fmt.Errorf("could not set image size: %w", err)
	}

	return nil
}
