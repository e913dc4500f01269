package file

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// seekFinder queries extents with lseek(2) SEEK_DATA/SEEK_HOLE.
type seekFinder struct {
	fd int
}

func (s seekFinder) nextData(off int64) (Position, error) {
	return s.seek(off, unix.SEEK_DATA)
}

func (s seekFinder) nextHole(off int64) (Position, error) {
	return s.seek(off, unix.SEEK_HOLE)
}

func (s seekFinder) seek(off int64, whence int) (Position, error) {
	pos, err := unix.Seek(s.fd, off, whence)
	if err != nil {
		// ENXIO means there is no data (or hole) past off.
		if errors.Is(err, syscall.ENXIO) {
			return EndOfExtents, nil
		}
		return Position{}, err
	}
	return Found(pos), nil
}

// newExtentFinder probes SEEK_DATA support on f and returns the finder to use.
// When the filesystem can't answer extent queries it falls back to a dense
// finder and sparse is false.
func newExtentFinder(f *os.File, size int64) (finder extentFinder, sparse bool, err error) {
	fd := int(f.Fd())
	if err := probeSparse(fd); err != nil {
		if errors.Is(err, ErrSparseUnsupported) {
			return denseFinder{size: size}, false, nil
		}
		return nil, false, err
	}

	return seekFinder{fd: fd}, true, nil
}

// probeSparse asks for the first data extent of fd. Errnos meaning the
// filesystem can't answer extent queries are wrapped with ErrSparseUnsupported.
func probeSparse(fd int) error {
	_, err := unix.Seek(fd, 0, unix.SEEK_DATA)
	return probeError(err)
}

func probeError(err error) error {
	switch {
	case err == nil, errors.Is(err, syscall.ENXIO):
		// ENXIO: empty or fully sparse file.
		return nil
	case isSeekDataUnsupported(err):
		return fmt.Errorf("%w: %w", ErrSparseUnsupported, err)
	default:
		return fmt.Errorf("could not probe sparse support: %w", err)
	}
}

// SparseSupported reports whether the filesystem holding path answers
// SEEK_DATA/SEEK_HOLE queries.
func SparseSupported(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	err = probeSparse(int(f.Fd()))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrSparseUnsupported):
		return false, nil
	default:
		return false, err
	}
}

// SizeStats returns the virtual size and actual allocated size of a file.
// For sparse files, allocatedSize will be less than virtualSize.
func SizeStats(path string) (virtualSize int64, allocatedSize int64, err error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, 0, err
	}
	virtualSize = fi.Size()
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return virtualSize, virtualSize, nil
	}
	return virtualSize, st.Blocks * 512, nil
}

func isSeekDataUnsupported(err error) bool {
	return errors.Is(err, syscall.ENOSYS) ||
		errors.Is(err, syscall.EINVAL) ||
		errors.Is(err, syscall.ENOTSUP) ||
		errors.Is(err, syscall.EOPNOTSUPP)
}
