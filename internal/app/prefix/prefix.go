package prefix

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/slok/vfatimg/internal/log"
	"github.com/slok/vfatimg/internal/model"
	"github.com/slok/vfatimg/internal/utils/file"
)

// Copier copies a file shifted forward by an offset.
type Copier interface {
	Copy(srcPath, dstPath string, offset int64) error
}

// ServiceConfig is the configuration for the prefix service.
type ServiceConfig struct {
	Copier Copier
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Prefix"})

	if c.Copier == nil {
		cp, err := file.NewPrefixCopier(file.PrefixCopierConfig{Logger: c.Logger})
		if err != nil {
			return fmt.Errorf("could not create prefix copier: %w", err)
		}
		c.Copier = cp
	}

	return nil
}

// Service copies a file with room in front of it, keeping holes.
type Service struct {
	copier Copier
	logger log.Logger
}

// NewService creates a new prefix service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		copier: cfg.Copier,
		logger: cfg.Logger,
	}, nil
}

// Request represents a prefix copy request.
type Request struct {
	Source string
	Output string
	Offset int64
	Force  bool
}

// Run copies the source into the output shifted by the offset.
func (s *Service) Run(ctx context.Context, req Request) (*model.Image, error) {
	if req.Source == "" || req.Output == "" {
		return nil, fmt.Errorf("source and output are required: %w", model.ErrNotValid)
	}
	if req.Offset < 0 {
		return nil, fmt.Errorf("offset can't be negative: %w", model.ErrNotValid)
	}

	if _, err := os.Stat(req.Output); err == nil {
		if !req.Force {
			return nil, fmt.Errorf("output %q: %w", req.Output, model.ErrAlreadyExists)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not stat output: %w", err)
	}

	if err := s.copier.Copy(req.Source, req.Output, req.Offset); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not copy: %w: %w", err, model.ErrNotFound)
		}
		if errors.Is(err, file.ErrSameFile) {
			return nil, fmt.Errorf("could not copy: %w: %w", err, model.ErrNotValid)
		}
		return nil, fmt.Errorf("could not copy: %w", err)
	}

	virtualSize, allocatedSize, err := file.SizeStats(req.Output)
	if err != nil {
		return nil, fmt.Errorf("could not get output size: %w", err)
	}

	s.logger.Infof("Copied %s into %s at offset %d", req.Source, req.Output, req.Offset)

	return &model.Image{
		Path:               req.Output,
		PartitionOffset:    req.Offset,
		VirtualSizeBytes:   virtualSize,
		AllocatedSizeBytes: allocatedSize,
		CreatedAt:          time.Now().UTC(),
	}, nil
}
