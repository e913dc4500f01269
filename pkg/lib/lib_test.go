package lib_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/vfatimg/pkg/lib"
)

const mib = 1024 * 1024

func newTestSource(t *testing.T) string {
	t.Helper()

	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "files", "boot"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "files", "config.txt"), []byte("arm_64bit=1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "files", "boot", "kernel.img"), []byte("kernel"), 0o644))

	return src
}

func TestBuild(t *testing.T) {
	tests := map[string]struct {
		opts        func(src, out string) lib.BuildOpts
		preexisting bool
		expImage    func(out string) *lib.Image
		expErrIs    error
	}{
		"Building an image should create it with the partition offset in front.": {
			opts: func(src, out string) lib.BuildOpts {
				return lib.BuildOpts{SourceDir: src, Output: out, Size: 4 * mib, Label: "BOOT"}
			},
			expImage: func(out string) *lib.Image {
				return &lib.Image{Path: out, Label: "BOOT", PartitionOffset: mib, VirtualSizeBytes: 4 * mib}
			},
		},

		"Building over an existing output without force should fail.": {
			opts: func(src, out string) lib.BuildOpts {
				return lib.BuildOpts{SourceDir: src, Output: out, Size: 4 * mib}
			},
			preexisting: true,
			expErrIs:    lib.ErrAlreadyExists,
		},

		"Building over an existing output with force should replace it.": {
			opts: func(src, out string) lib.BuildOpts {
				return lib.BuildOpts{SourceDir: src, Output: out, Size: 4 * mib, Force: true}
			},
			preexisting: true,
			expImage: func(out string) *lib.Image {
				return &lib.Image{Path: out, Label: "vfat", PartitionOffset: mib, VirtualSizeBytes: 4 * mib}
			},
		},

		"Building with an invalid label should fail.": {
			opts: func(src, out string) lib.BuildOpts {
				return lib.BuildOpts{SourceDir: src, Output: out, Size: 4 * mib, Label: "THIS-IS-TOO-LONG"}
			},
			expErrIs: lib.ErrNotValid,
		},

		"Building with an unaligned partition offset should fail.": {
			opts: func(src, out string) lib.BuildOpts {
				return lib.BuildOpts{SourceDir: src, Output: out, Size: 4 * mib, PartitionOffset: 1000}
			},
			expErrIs: lib.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			client, err := lib.New(lib.Config{Backend: lib.BackendFake})
			require.NoError(err)

			src := newTestSource(t)
			out := filepath.Join(t.TempDir(), "disk.img")
			if test.preexisting {
				require.NoError(os.WriteFile(out, []byte("old"), 0o644))
			}

			img, err := client.Build(context.Background(), test.opts(src, out))

			if test.expErrIs != nil {
				require.Error(err)
				assert.ErrorIs(err, test.expErrIs)
				return
			}
			require.NoError(err)

			exp := test.expImage(out)
			assert.Equal(exp.Path, img.Path)
			assert.Equal(exp.Label, img.Label)
			assert.Equal(exp.PartitionOffset, img.PartitionOffset)
			assert.Equal(exp.VirtualSizeBytes, img.VirtualSizeBytes)
			assert.NotEmpty(img.BuildID)

			info, err := os.Stat(out)
			require.NoError(err)
			assert.Equal(exp.VirtualSizeBytes, info.Size())
		})
	}
}

func TestCopyWithPrefix(t *testing.T) {
	tests := map[string]struct {
		source   []byte
		missing  bool
		offset   int64
		expData  []byte
		expErrIs error
	}{
		"Copying with a prefix should shift the content.": {
			source:  []byte("hello"),
			offset:  3,
			expData: []byte("\x00\x00\x00hello"),
		},

		"Copying with a zero offset should clone the file.": {
			source:  []byte("hello"),
			expData: []byte("hello"),
		},

		"Copying a missing source should fail.": {
			missing:  true,
			offset:   3,
			expErrIs: lib.ErrNotFound,
		},

		"Copying with a negative offset should fail.": {
			source:   []byte("hello"),
			offset:   -1,
			expErrIs: lib.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			client, err := lib.New(lib.Config{Backend: lib.BackendFake})
			require.NoError(err)

			dir := t.TempDir()
			src := filepath.Join(dir, "src.bin")
			out := filepath.Join(dir, "out.bin")
			if !test.missing {
				require.NoError(os.WriteFile(src, test.source, 0o644))
			}

			img, err := client.CopyWithPrefix(context.Background(), src, out, test.offset, false)

			if test.expErrIs != nil {
				require.Error(err)
				assert.ErrorIs(err, test.expErrIs)
				return
			}
			require.NoError(err)

			got, err := os.ReadFile(out)
			require.NoError(err)
			assert.Equal(test.expData, got)
			assert.Equal(int64(len(test.expData)), img.VirtualSizeBytes)
		})
	}
}

func TestExtents(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	client, err := lib.New(lib.Config{Backend: lib.BackendFake})
	require.NoError(err)

	path := filepath.Join(t.TempDir(), "dense.bin")
	require.NoError(os.WriteFile(path, []byte("0123456789"), 0o644))

	em, err := client.Extents(context.Background(), path)
	require.NoError(err)
	assert.Equal(int64(10), em.VirtualSizeBytes)
	require.Len(em.Extents, 1)
	assert.Equal(lib.Extent{Start: 0, End: 10, Kind: lib.ExtentKindData}, em.Extents[0])

	_, err = client.Extents(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(err, lib.ErrNotFound)
}

func TestNewInvalidBackend(t *testing.T) {
	_, err := lib.New(lib.Config{Backend: "potato"})
	assert.ErrorIs(t, err, lib.ErrNotValid)
}

func TestDoctor(t *testing.T) {
	client, err := lib.New(lib.Config{Backend: lib.BackendDiskfs})
	require.NoError(t, err)

	results := client.Doctor(context.Background())
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Equal(t, lib.CheckStatusOK, r.Status)
	}
}
