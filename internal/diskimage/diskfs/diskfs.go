// Package diskfs implements the disk image collaborators in process with
// github.com/diskfs/go-diskfs, without external tools.
package diskfs

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path"
	"path/filepath"

	"github.com/diskfs/go-diskfs/filesystem/fat32"
	"github.com/diskfs/go-diskfs/partition/mbr"

	"github.com/slok/vfatimg/internal/diskimage"
	"github.com/slok/vfatimg/internal/log"
	"github.com/slok/vfatimg/internal/model"
)

// BackendConfig is the configuration of the go-diskfs backend.
type BackendConfig struct {
	Logger log.Logger
}

func (c *BackendConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "diskimage.Diskfs"})
	return nil
}

// Backend formats, populates and partitions images with go-diskfs.
type Backend struct {
	logger log.Logger
}

// NewBackend returns a new go-diskfs backend.
func NewBackend(cfg BackendConfig) (*Backend, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Backend{logger: cfg.Logger}, nil
}

var _ diskimage.Backend = &Backend{}

// Format creates a FAT32 filesystem spanning the whole image.
func (b *Backend) Format(ctx context.Context, imagePath string, opts diskimage.FormatOpts) error {
	if opts.FATSize != 0 && opts.FATSize != 32 {
		return fmt.Errorf("FAT%d is not supported by the diskfs backend, only FAT32: %w", opts.FATSize, model.ErrNotValid)
	}

	f, size, err := openImage(imagePath)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := fat32.Create(f, size, 0, model.SectorSize, opts.Label); err != nil {
		return fmt.Errorf("could not create FAT32 filesystem: %w", err)
	}

	b.logger.Debugf("FAT32 filesystem %q created on %s", opts.Label, imagePath)

	return f.Close()
}

// Populate copies the srcDir tree into the root of the FAT32 filesystem.
func (b *Backend) Populate(ctx context.Context, imagePath string, srcDir string) error {
	f, size, err := openImage(imagePath)
	if err != nil {
		return err
	}
	defer f.Close()

	fatfs, err := fat32.Read(f, size, 0, model.SectorSize)
	if err != nil {
		return fmt.Errorf("could not read FAT32 filesystem: %w", err)
	}

	// WalkDir visits entries in lexical order, which keeps the directory tables deterministic.
	err = filepath.WalkDir(srcDir, func(hostPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(srcDir, hostPath)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		fatPath := path.Join("/", filepath.ToSlash(rel))

		switch {
		case d.IsDir():
			if err := fatfs.Mkdir(fatPath); err != nil {
				return fmt.Errorf("could not create directory %q: %w", fatPath, err)
			}
		case d.Type().IsRegular():
			if err := copyFile(fatfs, hostPath, fatPath); err != nil {
				return err
			}
		default:
			b.logger.Warningf("Ignoring %q, FAT only stores regular files and directories", hostPath)
			return nil
		}

		b.logger.Debugf("Copied %s", fatPath)
		return nil
	})
	if err != nil {
		return fmt.Errorf("could not copy files into FAT filesystem: %w", err)
	}

	return f.Close()
}

func copyFile(fatfs *fat32.FileSystem, hostPath, fatPath string) error {
	src, err := os.Open(hostPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := fatfs.OpenFile(fatPath, os.O_CREATE|os.O_RDWR)
	if err != nil {
		return fmt.Errorf("could not create file %q: %w", fatPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("could not write file %q: %w", fatPath, err)
	}

	return nil
}

// Partition writes a DOS partition table with a single W95 FAT32 (LBA) partition.
func (b *Backend) Partition(ctx context.Context, imagePath string, part diskimage.PartitionSpec) error {
	table, err := partitionTable(part)
	if err != nil {
		return err
	}

	f, size, err := openImage(imagePath)
	if err != nil {
		return err
	}
	defer f.Close()

	if part.Offset+part.Size > size {
		return fmt.Errorf("partition end %d is beyond image size %d: %w", part.Offset+part.Size, size, model.ErrNotValid)
	}

	if err := table.Write(f, size); err != nil {
		return fmt.Errorf("could not write partition table: %w", err)
	}

	return f.Close()
}

func partitionTable(part diskimage.PartitionSpec) (*mbr.Table, error) {
	if part.Offset <= 0 || part.Offset%model.SectorSize != 0 {
		return nil, fmt.Errorf("partition offset %d must be a positive multiple of %d: %w", part.Offset, model.SectorSize, model.ErrNotValid)
	}
	if part.Size <= 0 || part.Size%model.SectorSize != 0 {
		return nil, fmt.Errorf("partition size %d must be a positive multiple of %d: %w", part.Size, model.SectorSize, model.ErrNotValid)
	}

	if (part.Offset+part.Size)/model.SectorSize > math.MaxUint32 {
		return nil, fmt.Errorf("partition end is beyond the MBR 2TiB limit: %w", model.ErrNotValid)
	}

	return &mbr.Table{
		LogicalSectorSize:  model.SectorSize,
		PhysicalSectorSize: model.SectorSize,
		Partitions: []*mbr.Partition{
			{
				Type:  mbr.Fat32LBA,
				Start: uint32(part.Offset / model.SectorSize),
				Size:  uint32(part.Size / model.SectorSize),
			},
		},
	}, nil
}

// Check always succeeds, everything runs in process.
func (b *Backend) Check(ctx context.Context) []model.CheckResult {
	return []model.CheckResult{
		{
			ID:      "diskfs_backend",
			Message: "go-diskfs backend runs in process, no external tools needed",
			Status:  model.CheckStatusOK,
		},
	}
}

func openImage(imagePath string) (*os.File, int64, error) {
	f, err := os.OpenFile(imagePath, os.O_RDWR, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("could not open image: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("could not stat image: %w", err)
	}

	return f, info.Size(), nil
}
