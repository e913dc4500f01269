// Package diskimage has the collaborators that turn a raw file into a FAT
// partition and a partitioned disk image.
package diskimage

import (
	"context"

	"github.com/slok/vfatimg/internal/model"
)

// FormatOpts are the options used to create a FAT filesystem.
type FormatOpts struct {
	Label string
	// FATSize is 12, 16 or 32. 0 lets the formatter decide.
	FATSize int
}

// PartitionSpec is the single partition written in the partition table.
type PartitionSpec struct {
	// Offset is the start of the partition in bytes, multiple of the sector size.
	Offset int64
	// Size is the partition size in bytes.
	Size int64
}

// Formatter creates a FAT filesystem spanning the whole image file.
type Formatter interface {
	Format(ctx context.Context, imagePath string, opts FormatOpts) error
}

// Populator copies the contents of a host directory into the root of a FAT image.
type Populator interface {
	Populate(ctx context.Context, imagePath string, srcDir string) error
}

// Partitioner writes a DOS partition table with one W95 FAT32 (LBA) partition.
type Partitioner interface {
	Partition(ctx context.Context, imagePath string, part PartitionSpec) error
}

// Checker performs preflight checks of a backend.
type Checker interface {
	Check(ctx context.Context) []model.CheckResult
}

// Backend groups all the collaborators a build needs.
type Backend interface {
	Formatter
	Populator
	Partitioner
	Checker
}
