// Package compress compresses finished disk images for distribution.
package compress

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jamespfennell/xz"
	"github.com/klauspost/compress/zstd"

	"github.com/slok/vfatimg/internal/log"
	"github.com/slok/vfatimg/internal/model"
)

const copyBufferSize = 4 * 1024 * 1024

// ParseAlgorithm parses a compression algorithm name.
func ParseAlgorithm(s string) (model.Compression, error) {
	switch c := model.Compression(strings.ToLower(strings.TrimSpace(s))); c {
	case "", model.CompressionNone:
		return model.CompressionNone, nil
	case model.CompressionZstd, model.CompressionXZ:
		return c, nil
	case "zst":
		return model.CompressionZstd, nil
	default:
		return "", fmt.Errorf("unknown compression algorithm %q: %w", s, model.ErrNotValid)
	}
}

// CompressorConfig is the configuration of the Compressor.
type CompressorConfig struct {
	// StatusWriter receives the progress bar, nil disables it.
	StatusWriter io.Writer
	Logger       log.Logger
}

func (c *CompressorConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "compress.Compressor"})
	return nil
}

// Compressor compresses files with zstd or xz.
type Compressor struct {
	statusWriter io.Writer
	logger       log.Logger
}

// NewCompressor returns a new Compressor.
func NewCompressor(cfg CompressorConfig) (*Compressor, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Compressor{
		statusWriter: cfg.StatusWriter,
		logger:       cfg.Logger,
	}, nil
}

// Compress compresses srcPath into dstPath using the default compressor.
func Compress(ctx context.Context, srcPath, dstPath string, algo model.Compression) error {
	c, err := NewCompressor(CompressorConfig{})
	if err != nil {
		return err
	}
	return c.Compress(ctx, srcPath, dstPath, algo)
}

// Compress compresses srcPath into dstPath. Holes are read as zeros. On error
// dstPath is removed.
func (c *Compressor) Compress(ctx context.Context, srcPath, dstPath string, algo model.Compression) (err error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("could not open source: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("could not stat source: %w", err)
	}

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("could not create destination: %w", err)
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("could not close destination: %w", cerr)
		}
		if err != nil {
			os.Remove(dstPath)
		}
	}()

	enc, err := newEncoder(dst, algo)
	if err != nil {
		return err
	}

	var w io.Writer = enc
	var pw *ProgressWriter
	if c.statusWriter != nil {
		pw = NewProgressWriter(enc, c.statusWriter, info.Size())
		w = pw
	}

	c.logger.Debugf("Compressing %s with %s", srcPath, algo)

	buf := make([]byte, copyBufferSize)
	_, err = io.CopyBuffer(w, &ctxReader{ctx: ctx, r: src}, buf)
	if pw != nil {
		pw.Finish()
	}
	if err != nil {
		enc.Close()
		return fmt.Errorf("could not compress: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("could not finish %s stream: %w", algo, err)
	}

	return nil
}

func newEncoder(w io.Writer, algo model.Compression) (io.WriteCloser, error) {
	switch algo {
	case model.CompressionZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("could not create zstd encoder: %w", err)
		}
		return enc, nil
	case model.CompressionXZ:
		return xz.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm %q: %w", algo, model.ErrNotValid)
	}
}

// ctxReader stops reading once the context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
