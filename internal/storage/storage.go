package storage

import (
	"context"

	"github.com/slok/vfatimg/internal/model"
)

// BuildConfigRepository is the interface for build configuration sources.
type BuildConfigRepository interface {
	// ApplyConfig layers the config stored at path on top of base. A missing
	// config returns model.ErrNotFound.
	ApplyConfig(ctx context.Context, path string, base model.BuildConfig) (model.BuildConfig, error)
}
