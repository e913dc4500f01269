package inspect

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/slok/vfatimg/internal/log"
	"github.com/slok/vfatimg/internal/model"
	"github.com/slok/vfatimg/internal/utils/file"
)

// ServiceConfig is the configuration for the inspect service.
type ServiceConfig struct {
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Inspect"})
	return nil
}

// Service lists the data and hole extents of files.
type Service struct {
	logger log.Logger
}

// NewService creates a new inspect service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{logger: cfg.Logger}, nil
}

// Request represents an inspect request.
type Request struct {
	Path string
}

// Run returns the extent map of the file.
func (s *Service) Run(ctx context.Context, req Request) (*model.ExtentMap, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("path is required: %w", model.ErrNotValid)
	}

	extents, sparse, err := file.ListExtents(req.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file %q: %w", req.Path, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not list extents: %w", err)
	}
	if !sparse {
		s.logger.Warningf("Filesystem does not report holes, %s is shown as data", req.Path)
	}

	virtualSize, allocatedSize, err := file.SizeStats(req.Path)
	if err != nil {
		return nil, fmt.Errorf("could not get file size: %w", err)
	}

	em := &model.ExtentMap{
		Path:               req.Path,
		VirtualSizeBytes:   virtualSize,
		AllocatedSizeBytes: allocatedSize,
		Sparse:             sparse,
		Extents:            make([]model.Extent, 0, len(extents)),
	}
	for _, e := range extents {
		kind := model.ExtentKindData
		if e.Kind == file.ExtentHole {
			kind = model.ExtentKindHole
		}
		em.Extents = append(em.Extents, model.Extent{Start: e.Start, End: e.End, Kind: kind})
	}

	return em, nil
}
