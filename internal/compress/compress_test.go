package compress_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/jamespfennell/xz"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/vfatimg/internal/compress"
	"github.com/slok/vfatimg/internal/model"
)

// newTestReader decompresses r.
func newTestReader(r io.Reader, algo model.Compression) (io.ReadCloser, error) {
	switch algo {
	case model.CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case model.CompressionXZ:
		return io.NopCloser(xz.NewReader(r)), nil
	default:
		return io.NopCloser(r), nil
	}
}

func TestParseAlgorithm(t *testing.T) {
	tests := map[string]struct {
		in     string
		exp    model.Compression
		expErr bool
	}{
		"Empty should be none.":          {in: "", exp: model.CompressionNone},
		"None should be none.":           {in: "none", exp: model.CompressionNone},
		"Zstd should be zstd.":           {in: "zstd", exp: model.CompressionZstd},
		"Zst alias should be zstd.":      {in: "zst", exp: model.CompressionZstd},
		"Uppercase XZ should be xz.":     {in: "XZ", exp: model.CompressionXZ},
		"Unknown algorithm should fail.": {in: "gzip", expErr: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := compress.ParseAlgorithm(test.in)
			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.exp, got)
		})
	}
}

func TestCompressorCompress(t *testing.T) {
	tests := map[string]struct {
		algo model.Compression
	}{
		"Zstd compressed images should decompress to the original.": {algo: model.CompressionZstd},
		"XZ compressed images should decompress to the original.":   {algo: model.CompressionXZ},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			dir := t.TempDir()
			src := filepath.Join(dir, "disk.img")
			dst := filepath.Join(dir, "disk.img"+test.algo.Extension())

			// Mostly zeros with some data, like a sparse image.
			data := make([]byte, 2*1024*1024)
			copy(data[1024*1024:], bytes.Repeat([]byte("vfat"), 1024))
			require.NoError(os.WriteFile(src, data, 0o644))

			var status bytes.Buffer
			c, err := compress.NewCompressor(compress.CompressorConfig{StatusWriter: &status})
			require.NoError(err)

			err = c.Compress(context.TODO(), src, dst, test.algo)
			require.NoError(err)
			assert.Contains(status.String(), "100%")

			info, err := os.Stat(dst)
			require.NoError(err)
			assert.Less(info.Size(), int64(len(data)))

			f, err := os.Open(dst)
			require.NoError(err)
			defer f.Close()

			r, err := newTestReader(f, test.algo)
			require.NoError(err)
			defer r.Close()

			got, err := io.ReadAll(r)
			require.NoError(err)
			assert.Equal(data, got)
		})
	}
}

func TestCompressErrors(t *testing.T) {
	tests := map[string]struct {
		ctx    func() context.Context
		algo   model.Compression
		expErr error
	}{
		"An unsupported algorithm should fail and remove the destination.": {
			ctx:    context.TODO,
			algo:   model.CompressionNone,
			expErr: model.ErrNotValid,
		},

		"A cancelled context should fail and remove the destination.": {
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			algo:   model.CompressionZstd,
			expErr: context.Canceled,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "disk.img")
			dst := filepath.Join(dir, "disk.img.out")
			require.NoError(t, os.WriteFile(src, []byte("data"), 0o644))

			err := compress.Compress(test.ctx(), src, dst, test.algo)
			assert.ErrorIs(t, err, test.expErr)

			_, err = os.Stat(dst)
			assert.ErrorIs(t, err, os.ErrNotExist)
		})
	}
}

func TestCompressMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := compress.Compress(context.TODO(), filepath.Join(dir, "missing.img"), filepath.Join(dir, "out.zst"), model.CompressionZstd)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
