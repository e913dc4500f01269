package file

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/slok/vfatimg/internal/log"
)

// DefaultChunkSize is the maximum number of bytes copied per read/write call.
const DefaultChunkSize = 64 * 1024 * 1024

// PrefixCopierConfig is the configuration for the prefix copier.
type PrefixCopierConfig struct {
	// ChunkSize bounds the copy buffer (default: DefaultChunkSize).
	ChunkSize int
	// Logger for logging.
	Logger log.Logger
}

func (c *PrefixCopierConfig) defaults() error {
	if c.ChunkSize < 0 {
		return fmt.Errorf("chunk size can't be negative")
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "file.PrefixCopier"})
	return nil
}

// destination is the writable side of a prefix copy.
type destination interface {
	io.WriteSeeker
	io.Closer
	Truncate(size int64) error
	Sync() error
}

// PrefixCopier copies files into a destination shifted by a prefix offset,
// keeping the holes of the source as holes in the destination.
type PrefixCopier struct {
	chunkSize int
	logger    log.Logger

	openDestination func(path string) (destination, error)
	newFinder       func(f *os.File, size int64) (extentFinder, bool, error)
}

// NewPrefixCopier returns a new prefix copier.
func NewPrefixCopier(cfg PrefixCopierConfig) (*PrefixCopier, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &PrefixCopier{
		chunkSize:       cfg.ChunkSize,
		logger:          cfg.Logger,
		openDestination: openDestinationFile,
		newFinder:       newExtentFinder,
	}, nil
}

func openDestinationFile(path string) (destination, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
}

// CopyWithPrefix copies srcPath into dstPath shifted forward by offset bytes
// using the default prefix copier.
func CopyWithPrefix(srcPath, dstPath string, offset int64) error {
	c, err := NewPrefixCopier(PrefixCopierConfig{})
	if err != nil {
		return err
	}
	return c.Copy(srcPath, dstPath, offset)
}

// Copy writes dstPath so that its size is offset plus the source size and
// bytes [offset, offset+size) equal the source. Bytes [0, offset) are left as a
// hole for a later writer. Only data extents of the source are written, so its
// holes stay unallocated in the destination where the filesystem allows it.
//
// On error the destination content is undefined and must be discarded by the
// caller.
func (p *PrefixCopier) Copy(srcPath, dstPath string, offset int64) (err error) {
	if offset < 0 {
		return fmt.Errorf("offset %d: %w", offset, ErrInvalidOffset)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("could not open source: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("could not stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("source %q is not a regular file", srcPath)
	}

	// Truncating the destination would wipe the source.
	if dstInfo, err := os.Stat(dstPath); err == nil && os.SameFile(info, dstInfo) {
		return fmt.Errorf("%q and %q: %w", srcPath, dstPath, ErrSameFile)
	}

	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("could not get source size: %w", err)
	}

	dst, err := p.openDestination(dstPath)
	if err != nil {
		return fmt.Errorf("could not open destination: %w", err)
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("could not close destination: %w", cerr)
		}
	}()

	// A single length-setting call, everything not written later stays a hole.
	if err := dst.Truncate(size + offset); err != nil {
		return fmt.Errorf("could not set destination size to %d: %w", size+offset, err)
	}

	finder, sparse, err := p.newFinder(src, size)
	if err != nil {
		return err
	}
	if !sparse {
		p.logger.Debugf("Copying %s as a single data extent: %v", srcPath, ErrSparseUnsupported)
	}

	bufSize := int64(p.chunkSize)
	if size < bufSize {
		bufSize = size
	}
	buf := make([]byte, bufSize)

	var (
		pos     int64
		copied  int64
		extents int
	)
	for {
		ext, ok, err := dataExtent(finder, pos, size)
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		if err := copyExtent(src, dst, ext, offset, buf); err != nil {
			return err
		}

		copied += ext.Len()
		extents++
		pos = ext.End
	}

	if err := dst.Sync(); err != nil {
		return fmt.Errorf("could not sync destination: %w", err)
	}

	p.logger.Debugf("Copied %d bytes in %d data extents from %s to %s at offset %d (%d bytes left as holes)",
		copied, extents, srcPath, dstPath, offset, size-copied)

	return nil
}

func copyExtent(src io.ReadSeeker, dst io.WriteSeeker, ext Extent, offset int64, buf []byte) error {
	if _, err := src.Seek(ext.Start, io.SeekStart); err != nil {
		return fmt.Errorf("could not seek source to %d: %w", ext.Start, err)
	}
	if _, err := dst.Seek(ext.Start+offset, io.SeekStart); err != nil {
		return fmt.Errorf("could not seek destination to %d: %w", ext.Start+offset, err)
	}

	pos := ext.Start
	for pos < ext.End {
		chunk := int64(len(buf))
		if rem := ext.End - pos; rem < chunk {
			chunk = rem
		}

		rn, err := io.ReadFull(src, buf[:chunk])
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return fmt.Errorf("source ended at %d, expected data up to %d: %w", pos+int64(rn), ext.End, io.ErrUnexpectedEOF)
			}
			return fmt.Errorf("could not read source at %d: %w", pos, err)
		}

		wn, err := dst.Write(buf[:rn])
		if wn != rn {
			if err != nil {
				return fmt.Errorf("wrote %d of %d bytes at destination offset %d: %w: %w", wn, rn, pos+offset, ErrShortWrite, err)
			}
			return fmt.Errorf("wrote %d of %d bytes at destination offset %d: %w", wn, rn, pos+offset, ErrShortWrite)
		}
		if err != nil {
			return fmt.Errorf("could not write destination at %d: %w", pos+offset, err)
		}

		pos += int64(rn)
	}

	return nil
}
