package inspect_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/vfatimg/internal/app/inspect"
	"github.com/slok/vfatimg/internal/model"
)

func TestServiceRun(t *testing.T) {
	tests := map[string]struct {
		data   []byte
		noFile bool
		path   string
		expErr error
	}{
		"A dense file should be covered by its extents.": {
			data: []byte("hello world"),
		},

		"An empty file should have no extents.": {
			data: []byte{},
		},

		"A missing file should fail with not found.": {
			noFile: true,
			expErr: model.ErrNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			path := filepath.Join(t.TempDir(), "disk.img")
			if !test.noFile {
				require.NoError(os.WriteFile(path, test.data, 0o644))
			}

			svc, err := inspect.NewService(inspect.ServiceConfig{})
			require.NoError(err)

			em, err := svc.Run(context.TODO(), inspect.Request{Path: path})
			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				return
			}
			require.NoError(err)

			assert.Equal(path, em.Path)
			assert.Equal(int64(len(test.data)), em.VirtualSizeBytes)

			var covered int64
			for _, e := range em.Extents {
				assert.Equal(covered, e.Start)
				covered = e.End
			}
			assert.Equal(int64(len(test.data)), covered)
		})
	}
}

func TestServiceRunRequiresPath(t *testing.T) {
	svc, err := inspect.NewService(inspect.ServiceConfig{})
	require.NoError(t, err)

	_, err = svc.Run(context.TODO(), inspect.Request{})
	assert.ErrorIs(t, err, model.ErrNotValid)
}
