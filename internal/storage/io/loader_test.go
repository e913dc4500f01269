package io

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/vfatimg/internal/model"
)

func TestBuildConfigYAMLRepository_ApplyConfig(t *testing.T) {
	tests := map[string]struct {
		fs     fstest.MapFS
		path   string
		expCfg func() model.BuildConfig
		expErr error
		errMsg string
	}{
		"A full config should override every field.": {
			fs: fstest.MapFS{
				"image.yaml": &fstest.MapFile{
					Data: []byte(`size: 2GiB
label: BOOT
partition_offset: 4MiB
fat_size: 32
files_dir: root
backend: diskfs
compress: zstd
`),
				},
			},
			path: "image.yaml",
			expCfg: func() model.BuildConfig {
				return model.BuildConfig{
					Size:            2 * 1024 * 1024 * 1024,
					Label:           "BOOT",
					PartitionOffset: 4 * 1024 * 1024,
					FATSize:         32,
					FilesDir:        "root",
					Backend:         model.BackendDiskfs,
					Compression:     model.CompressionZstd,
				}
			},
		},

		"A partial config should keep the base values.": {
			fs: fstest.MapFS{
				"image.yaml": &fstest.MapFile{
					Data: []byte(`size: 1024
`),
				},
			},
			path: "image.yaml",
			expCfg: func() model.BuildConfig {
				c := model.DefaultBuildConfig()
				c.Size = 1024 * 1024 * 1024
				return c
			},
		},

		"An empty config should keep the base values.": {
			fs: fstest.MapFS{
				"image.yaml": &fstest.MapFile{Data: []byte(``)},
			},
			path:   "image.yaml",
			expCfg: model.DefaultBuildConfig,
		},

		"A missing file should return not found.": {
			fs:     fstest.MapFS{},
			path:   "image.yaml",
			expErr: model.ErrNotFound,
		},

		"An invalid YAML should fail.": {
			fs: fstest.MapFS{
				"image.yaml": &fstest.MapFile{Data: []byte(`size: [1`)},
			},
			path:   "image.yaml",
			errMsg: "parsing YAML",
		},

		"An invalid size should fail.": {
			fs: fstest.MapFS{
				"image.yaml": &fstest.MapFile{Data: []byte(`size: huge`)},
			},
			path:   "image.yaml",
			expErr: model.ErrNotValid,
		},

		"An invalid label should fail.": {
			fs: fstest.MapFS{
				"image.yaml": &fstest.MapFile{Data: []byte(`label: THIS-IS-TOO-LONG`)},
			},
			path:   "image.yaml",
			expErr: model.ErrNotValid,
		},

		"An empty files dir should fail.": {
			fs: fstest.MapFS{
				"image.yaml": &fstest.MapFile{Data: []byte(`files_dir: ""`)},
			},
			path:   "image.yaml",
			errMsg: "files_dir",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			repo := NewBuildConfigYAMLRepository(test.fs)
			base := model.DefaultBuildConfig()
			gotCfg, err := repo.ApplyConfig(context.TODO(), test.path, base)

			switch {
			case test.expErr != nil:
				assert.ErrorIs(err, test.expErr)
				assert.Equal(base, gotCfg)
			case test.errMsg != "":
				require.Error(err)
				assert.Contains(err.Error(), test.errMsg)
				assert.Equal(base, gotCfg)
			default:
				require.NoError(err)
				assert.Equal(test.expCfg(), gotCfg)
			}
		})
	}
}

func TestBuildConfigYAMLRepository_ApplyConfigLayers(t *testing.T) {
	require := require.New(t)

	fs := fstest.MapFS{
		"defaults.yaml": &fstest.MapFile{Data: []byte("label: GLOBAL\ncompress: xz\ntool_env:\n  A: global\n  B: global\n")},
		"image.yaml":    &fstest.MapFile{Data: []byte("label: LOCAL\ntool_env:\n  B: local\n")},
	}
	repo := NewBuildConfigYAMLRepository(fs)

	cfg, err := repo.ApplyConfig(context.TODO(), "defaults.yaml", model.DefaultBuildConfig())
	require.NoError(err)
	cfg, err = repo.ApplyConfig(context.TODO(), "image.yaml", cfg)
	require.NoError(err)

	assert.Equal(t, "LOCAL", cfg.Label)
	assert.Equal(t, model.CompressionXZ, cfg.Compression)
	assert.Equal(t, map[string]string{"A": "global", "B": "local"}, cfg.ToolEnv)
}
