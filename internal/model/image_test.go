package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/vfatimg/internal/model"
)

func TestBuildConfigValidate(t *testing.T) {
	tests := map[string]struct {
		config func() model.BuildConfig
		expErr bool
	}{
		"Default config should be valid.": {
			config: model.DefaultBuildConfig,
		},

		"A zero partition offset should fail.": {
			config: func() model.BuildConfig {
				c := model.DefaultBuildConfig()
				c.PartitionOffset = 0
				return c
			},
			expErr: true,
		},

		"A partition offset not aligned to sectors should fail.": {
			config: func() model.BuildConfig {
				c := model.DefaultBuildConfig()
				c.PartitionOffset = 1000
				return c
			},
			expErr: true,
		},

		"A size equal to the offset should fail.": {
			config: func() model.BuildConfig {
				c := model.DefaultBuildConfig()
				c.Size = c.PartitionOffset
				return c
			},
			expErr: true,
		},

		"A partition size not aligned to sectors should fail.": {
			config: func() model.BuildConfig {
				c := model.DefaultBuildConfig()
				c.Size = 10*1024*1024 + 100
				return c
			},
			expErr: true,
		},

		"A long label should fail.": {
			config: func() model.BuildConfig {
				c := model.DefaultBuildConfig()
				c.Label = "THISISTOOLONG"
				return c
			},
			expErr: true,
		},

		"An invalid FAT size should fail.": {
			config: func() model.BuildConfig {
				c := model.DefaultBuildConfig()
				c.FATSize = 64
				return c
			},
			expErr: true,
		},

		"FAT 16 should be valid.": {
			config: func() model.BuildConfig {
				c := model.DefaultBuildConfig()
				c.FATSize = 16
				return c
			},
		},

		"A missing files dir should fail.": {
			config: func() model.BuildConfig {
				c := model.DefaultBuildConfig()
				c.FilesDir = ""
				return c
			},
			expErr: true,
		},

		"An unknown backend should fail.": {
			config: func() model.BuildConfig {
				c := model.DefaultBuildConfig()
				c.Backend = "qemu"
				return c
			},
			expErr: true,
		},

		"An unknown compression should fail.": {
			config: func() model.BuildConfig {
				c := model.DefaultBuildConfig()
				c.Compression = "gzip"
				return c
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.config().Validate()
			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateLabel(t *testing.T) {
	tests := map[string]struct {
		label  string
		expErr bool
	}{
		"A simple label should be valid.":        {label: "BOOT"},
		"A lowercase label should be valid.":     {label: "vfat"},
		"An 11 character label should be valid.": {label: "ABCDEFGHIJK"},
		"A label with spaces should be valid.":   {label: "MY DISK"},
		"An empty label should fail.":            {label: "", expErr: true},
		"A 12 character label should fail.":      {label: "ABCDEFGHIJKL", expErr: true},
		"A label with a dot should fail.":        {label: "BOOT.A", expErr: true},
		"A label with a slash should fail.":      {label: "A/B", expErr: true},
		"A non ASCII label should fail.":         {label: "BOÖT", expErr: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := model.ValidateLabel(test.label)
			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCompressionExtension(t *testing.T) {
	assert.Equal(t, ".zst", model.CompressionZstd.Extension())
	assert.Equal(t, ".xz", model.CompressionXZ.Extension())
	assert.Equal(t, "", model.CompressionNone.Extension())
}

func TestBuildConfigPartitionSize(t *testing.T) {
	c := model.DefaultBuildConfig()
	assert.Equal(t, int64(31743*1024*1024), c.PartitionSize())
}
