package lib

import (
	"context"
	"fmt"

	"github.com/slok/vfatimg/internal/app/build"
	"github.com/slok/vfatimg/internal/app/inspect"
	"github.com/slok/vfatimg/internal/app/prefix"
	"github.com/slok/vfatimg/internal/diskimage"
	"github.com/slok/vfatimg/internal/diskimage/diskfs"
	"github.com/slok/vfatimg/internal/diskimage/fake"
	"github.com/slok/vfatimg/internal/diskimage/tools"
	"github.com/slok/vfatimg/internal/log"
	"github.com/slok/vfatimg/internal/model"
)

// Config configures the SDK client.
//
// All fields are optional. An empty Config{} uses the external tools backend
// and a silent logger.
type Config struct {
	// Backend creates the FAT filesystem and the partition table.
	// Default: [BackendTools].
	Backend Backend

	// ToolEnv is extra environment for the external tools.
	// Only used when Backend is [BackendTools].
	ToolEnv map[string]string

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.Backend == "" {
		c.Backend = BackendTools
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Client is the main SDK entry point.
//
// A Client holds no open resources and is safe for concurrent use.
type Client struct {
	backend     diskimage.Backend
	backendType Backend
	logger      log.Logger
}

// New creates a new SDK client.
func New(cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	backend, err := newBackend(cfg)
	if err != nil {
		return nil, mapError(err)
	}

	return &Client{
		backend:     backend,
		backendType: cfg.Backend,
		logger:      cfg.Logger,
	}, nil
}

func newBackend(cfg Config) (diskimage.Backend, error) {
	switch cfg.Backend {
	case BackendTools:
		return tools.NewBackend(tools.BackendConfig{Env: cfg.ToolEnv, Logger: cfg.Logger})
	case BackendDiskfs:
		return diskfs.NewBackend(diskfs.BackendConfig{Logger: cfg.Logger})
	case BackendFake:
		return fake.NewBackend(fake.BackendConfig{Logger: cfg.Logger})
	default:
		return nil, fmt.Errorf("unsupported backend: %s: %w", cfg.Backend, model.ErrNotValid)
	}
}

// Build creates a disk image with a single FAT partition holding the files
// of opts.SourceDir/opts.FilesDir.
//
// Returns [ErrAlreadyExists] if the output exists and opts.Force is not set,
// or [ErrNotValid] if the options are invalid.
func (c *Client) Build(ctx context.Context, opts BuildOpts) (*Image, error) {
	svc, err := build.NewService(build.ServiceConfig{
		Backend: c.backend,
		Logger:  c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	img, err := svc.Run(ctx, build.Request{
		SourceDir: opts.SourceDir,
		Output:    opts.Output,
		Config:    toInternalBuildConfig(c.backendType, opts),
		Force:     opts.Force,
		TmpDir:    opts.TmpDir,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalImage(*img), nil
}

// CopyWithPrefix copies source into output shifted forward by offset bytes,
// preserving holes when the filesystem supports it.
//
// Returns [ErrNotFound] if the source does not exist.
func (c *Client) CopyWithPrefix(ctx context.Context, source, output string, offset int64, force bool) (*Image, error) {
	svc, err := prefix.NewService(prefix.ServiceConfig{Logger: c.logger})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	img, err := svc.Run(ctx, prefix.Request{
		Source: source,
		Output: output,
		Offset: offset,
		Force:  force,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalImage(*img), nil
}

// Extents returns the data and hole extents of a file.
func (c *Client) Extents(ctx context.Context, path string) (*ExtentMap, error) {
	svc, err := inspect.NewService(inspect.ServiceConfig{Logger: c.logger})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	em, err := svc.Run(ctx, inspect.Request{Path: path})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalExtentMap(*em), nil
}

// Doctor runs preflight health checks for the configured backend.
func (c *Client) Doctor(ctx context.Context) []CheckResult {
	return fromInternalCheckResults(c.backend.Check(ctx))
}
