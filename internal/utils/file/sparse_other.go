//go:build !linux

package file

import (
	"os"
)

// newExtentFinder always uses the dense fallback outside Linux: the whole
// file is copied as a single data extent.
func newExtentFinder(_ *os.File, size int64) (extentFinder, bool, error) {
	return denseFinder{size: size}, false, nil
}

// SparseSupported is always false on non-Linux platforms.
func SparseSupported(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		return false, err
	}
	return false, nil
}

// SizeStats returns the virtual size and actual allocated size of a file.
// On non-Linux platforms, allocated size is reported as equal to virtual size.
func SizeStats(path string) (virtualSize int64, allocatedSize int64, err error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, 0, err
	}
	return fi.Size(), fi.Size(), nil
}
