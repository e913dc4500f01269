package build

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/oklog/ulid/v2"

	"github.com/slok/vfatimg/internal/compress"
	"github.com/slok/vfatimg/internal/conventions"
	"github.com/slok/vfatimg/internal/diskimage"
	"github.com/slok/vfatimg/internal/log"
	"github.com/slok/vfatimg/internal/model"
	"github.com/slok/vfatimg/internal/utils/file"
)

// Copier copies a file shifted forward by an offset.
type Copier interface {
	Copy(srcPath, dstPath string, offset int64) error
}

// Compressor compresses a file.
type Compressor interface {
	Compress(ctx context.Context, srcPath, dstPath string, algo model.Compression) error
}

// ServiceConfig is the configuration for the build service.
type ServiceConfig struct {
	Backend    diskimage.Backend
	Copier     Copier
	Compressor Compressor
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Backend == nil {
		return fmt.Errorf("backend is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Build"})

	if c.Copier == nil {
		cp, err := file.NewPrefixCopier(file.PrefixCopierConfig{Logger: c.Logger})
		if err != nil {
			return fmt.Errorf("could not create prefix copier: %w", err)
		}
		c.Copier = cp
	}

	if c.Compressor == nil {
		cp, err := compress.NewCompressor(compress.CompressorConfig{Logger: c.Logger})
		if err != nil {
			return fmt.Errorf("could not create compressor: %w", err)
		}
		c.Compressor = cp
	}

	return nil
}

// Service builds disk images with a single FAT partition.
type Service struct {
	backend    diskimage.Backend
	copier     Copier
	compressor Compressor
	logger     log.Logger
}

// NewService creates a new build service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		backend:    cfg.Backend,
		copier:     cfg.Copier,
		compressor: cfg.Compressor,
		logger:     cfg.Logger,
	}, nil
}

// Request represents an image build request.
type Request struct {
	// SourceDir contains the files directory (and optionally image.yaml).
	SourceDir string
	Output    string
	Config    model.BuildConfig
	// Force overwrites an existing output.
	Force bool
	// TmpDir is where the work directory is created, defaults to the OS temp dir.
	TmpDir string
}

func (r Request) validate() error {
	if r.SourceDir == "" {
		return fmt.Errorf("source directory is required: %w", model.ErrNotValid)
	}
	if r.Output == "" {
		return fmt.Errorf("output is required: %w", model.ErrNotValid)
	}
	if err := r.Config.Validate(); err != nil {
		return err
	}

	filesDir := r.filesDir()
	info, err := os.Stat(filesDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("files directory %q does not exist: %w", filesDir, model.ErrNotValid)
		}
		return fmt.Errorf("could not stat files directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("files directory %q is not a directory: %w", filesDir, model.ErrNotValid)
	}

	return nil
}

func (r Request) filesDir() string {
	if filepath.IsAbs(r.Config.FilesDir) {
		return r.Config.FilesDir
	}
	return filepath.Join(r.SourceDir, r.Config.FilesDir)
}

func (r Request) compressedOutput() string {
	if r.Config.Compression == model.CompressionNone {
		return ""
	}
	return r.Output + r.Config.Compression.Extension()
}

// Run builds the disk image.
func (s *Service) Run(ctx context.Context, req Request) (*model.Image, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	outputs := []string{req.Output}
	if co := req.compressedOutput(); co != "" {
		outputs = append(outputs, co)
	}
	for _, o := range outputs {
		if err := s.prepareOutput(o, req.Force); err != nil {
			return nil, err
		}
	}

	buildID := ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader).String()
	logger := s.logger.WithValues(log.Kv{"build-id": buildID})

	tmpDir := req.TmpDir
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	workDir := conventions.WorkDir(tmpDir, buildID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create work directory: %w", err)
	}
	defer func() {
		logger.Debugf("Cleaning up %s", workDir)
		if err := os.RemoveAll(workDir); err != nil {
			logger.Warningf("Could not remove work directory %s: %v", workDir, err)
		}
	}()

	img, err := s.build(ctx, logger, req, workDir)
	if err != nil {
		// A half built output is garbage.
		for _, o := range outputs {
			if rmErr := os.Remove(o); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				logger.Warningf("Could not remove output %s after failure: %v", o, rmErr)
			}
		}
		return nil, err
	}
	img.BuildID = buildID

	return img, nil
}

func (s *Service) build(ctx context.Context, logger log.Logger, req Request, workDir string) (*model.Image, error) {
	cfg := req.Config
	part := diskimage.PartitionSpec{Offset: cfg.PartitionOffset, Size: cfg.PartitionSize()}
	partImage := filepath.Join(workDir, conventions.PartitionImageFile)

	logger.Infof("Creating image file (%s)", humanize.IBytes(uint64(part.Size)))
	if err := diskimage.NewSparseImage(partImage, part.Size); err != nil {
		return nil, fmt.Errorf("could not create partition image: %w", err)
	}

	logger.Infof("Creating filesystem %q", cfg.Label)
	err := s.backend.Format(ctx, partImage, diskimage.FormatOpts{Label: cfg.Label, FATSize: cfg.FATSize})
	if err != nil {
		return nil, fmt.Errorf("could not format partition: %w", err)
	}

	filesDir := req.filesDir()
	logger.Infof("Copying files from %s", filesDir)
	if err := s.backend.Populate(ctx, partImage, filesDir); err != nil {
		return nil, fmt.Errorf("could not populate partition: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Infof("Copying partition and making room for the partition table (%s)", humanize.IBytes(uint64(part.Offset)))
	if err := s.copier.Copy(partImage, req.Output, part.Offset); err != nil {
		return nil, fmt.Errorf("could not copy partition into image: %w", err)
	}

	logger.Infof("Creating partition table")
	if err := s.backend.Partition(ctx, req.Output, part); err != nil {
		return nil, fmt.Errorf("could not partition image: %w", err)
	}

	virtualSize, allocatedSize, err := file.SizeStats(req.Output)
	if err != nil {
		return nil, fmt.Errorf("could not get image size: %w", err)
	}

	img := &model.Image{
		Path:               req.Output,
		Label:              cfg.Label,
		PartitionOffset:    part.Offset,
		VirtualSizeBytes:   virtualSize,
		AllocatedSizeBytes: allocatedSize,
		CreatedAt:          time.Now().UTC(),
	}

	if co := req.compressedOutput(); co != "" {
		logger.Infof("Compressing image with %s", cfg.Compression)
		if err := s.compressor.Compress(ctx, req.Output, co, cfg.Compression); err != nil {
			return nil, fmt.Errorf("could not compress image: %w", err)
		}
		img.CompressedPath = co
	}

	logger.Infof("Image %s created (%s, %s allocated)", req.Output, humanize.IBytes(uint64(virtualSize)), humanize.IBytes(uint64(allocatedSize)))

	return img, nil
}

// prepareOutput fails if the output exists, unless forced, in which case it's removed.
func (s *Service) prepareOutput(path string, force bool) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not stat output: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("output %q is a directory: %w", path, model.ErrNotValid)
	}
	if !force {
		return fmt.Errorf("output %q: %w", path, model.ErrAlreadyExists)
	}

	s.logger.Infof("Deleting %s", path)
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("could not remove existing output: %w", err)
	}

	return nil
}
