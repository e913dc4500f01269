package io

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/slok/vfatimg/internal/model"
	"github.com/slok/vfatimg/internal/storage"
	"github.com/slok/vfatimg/internal/utils/env"
	"github.com/slok/vfatimg/internal/utils/size"
)

// BuildConfigYAMLRepository loads image build configuration from YAML files.
type BuildConfigYAMLRepository struct {
	fs fs.FS
}

// NewBuildConfigYAMLRepository creates a new YAML build config repository.
func NewBuildConfigYAMLRepository(filesystem fs.FS) *BuildConfigYAMLRepository {
	return &BuildConfigYAMLRepository{fs: filesystem}
}

// ApplyConfig loads the YAML file at path and sets every field present in it
// on top of base. A missing file returns model.ErrNotFound.
func (r *BuildConfigYAMLRepository) ApplyConfig(ctx context.Context, path string, base model.BuildConfig) (model.BuildConfig, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return base, fmt.Errorf("config file %q: %w", path, model.ErrNotFound)
		}
		return base, fmt.Errorf("reading config file: %w", err)
	}

	if ctx.Err() != nil {
		return base, ctx.Err()
	}

	var cfg BuildConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parsing YAML: %w", err)
	}

	res, err := cfg.apply(base)
	if err != nil {
		return base, fmt.Errorf("invalid configuration: %w", err)
	}

	return res, nil
}

// BuildConfig represents the YAML structure for image build configuration.
// Unset fields keep the base value.
type BuildConfig struct {
	Size            *string           `yaml:"size"`
	Label           *string           `yaml:"label"`
	PartitionOffset *string           `yaml:"partition_offset"`
	FATSize         *int              `yaml:"fat_size"`
	FilesDir        *string           `yaml:"files_dir"`
	Backend         *string           `yaml:"backend"`
	Compress        *string           `yaml:"compress"`
	ToolEnv         map[string]string `yaml:"tool_env"`
}

func (c BuildConfig) apply(base model.BuildConfig) (model.BuildConfig, error) {
	res := base

	if c.Size != nil {
		s, err := size.Parse(*c.Size)
		if err != nil {
			return base, fmt.Errorf("size: %w", err)
		}
		res.Size = s
	}

	if c.PartitionOffset != nil {
		s, err := size.Parse(*c.PartitionOffset)
		if err != nil {
			return base, fmt.Errorf("partition_offset: %w", err)
		}
		res.PartitionOffset = s
	}

	if c.Label != nil {
		if err := model.ValidateLabel(*c.Label); err != nil {
			return base, fmt.Errorf("label: %w", err)
		}
		res.Label = *c.Label
	}

	if c.FATSize != nil {
		res.FATSize = *c.FATSize
	}
	if c.FilesDir != nil {
		if *c.FilesDir == "" {
			return base, fmt.Errorf("files_dir can't be empty")
		}
		res.FilesDir = *c.FilesDir
	}
	if c.Backend != nil {
		res.Backend = model.Backend(*c.Backend)
	}
	if c.Compress != nil {
		res.Compression = model.Compression(*c.Compress)
	}

	if c.ToolEnv != nil {
		res.ToolEnv = env.MergeMaps(base.ToolEnv, c.ToolEnv)
	}

	return res, nil
}

var _ storage.BuildConfigRepository = &BuildConfigYAMLRepository{}
