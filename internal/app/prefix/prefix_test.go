package prefix_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/vfatimg/internal/app/prefix"
	"github.com/slok/vfatimg/internal/model"
)

func TestServiceRun(t *testing.T) {
	tests := map[string]struct {
		source    []byte
		noSource  bool
		sameFile  bool
		preOutput bool
		force     bool
		offset    int64
		expErr    error
		expData   []byte
	}{
		"A file should be copied after the offset.": {
			source:  []byte("hello"),
			offset:  3,
			expData: []byte("\x00\x00\x00hello"),
		},

		"A zero offset should clone the file.": {
			source:  []byte("hello"),
			expData: []byte("hello"),
		},

		"An existing output should fail without force.": {
			source:    []byte("hello"),
			preOutput: true,
			expErr:    model.ErrAlreadyExists,
		},

		"An existing output should be replaced with force.": {
			source:    []byte("hi"),
			offset:    1,
			preOutput: true,
			force:     true,
			expData:   []byte("\x00hi"),
		},

		"A missing source should fail with not found.": {
			noSource: true,
			expErr:   model.ErrNotFound,
		},

		"Copying a file into itself should fail and keep the source.": {
			source:    []byte("hello"),
			sameFile:  true,
			offset:    3,
			preOutput: true,
			force:     true,
			expErr:    model.ErrNotValid,
			expData:   []byte("hello"),
		},

		"A negative offset should fail.": {
			source: []byte("hello"),
			offset: -1,
			expErr: model.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			dir := t.TempDir()
			src := filepath.Join(dir, "src.img")
			out := filepath.Join(dir, "out.img")
			if !test.noSource {
				require.NoError(os.WriteFile(src, test.source, 0o644))
			}
			if test.sameFile {
				out = src
			} else if test.preOutput {
				require.NoError(os.WriteFile(out, []byte("previous content"), 0o644))
			}

			svc, err := prefix.NewService(prefix.ServiceConfig{})
			require.NoError(err)

			img, err := svc.Run(context.TODO(), prefix.Request{Source: src, Output: out, Offset: test.offset, Force: test.force})
			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				if test.expData != nil {
					got, err := os.ReadFile(out)
					require.NoError(err)
					assert.Equal(test.expData, got)
				}
				return
			}
			require.NoError(err)

			got, err := os.ReadFile(out)
			require.NoError(err)
			assert.Equal(test.expData, got)
			assert.Equal(int64(len(test.expData)), img.VirtualSizeBytes)
			assert.Equal(test.offset, img.PartitionOffset)
		})
	}
}
