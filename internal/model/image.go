package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	// SectorSize is the logical sector size used for partition tables.
	SectorSize = 512
	// DefaultPartitionOffset is the space reserved in front of the FAT
	// partition for the partition table.
	DefaultPartitionOffset = 1024 * 1024
	// DefaultImageSize is the default total disk image size (31744 MiB).
	DefaultImageSize = 31744 * 1024 * 1024
	// DefaultLabel is the default FAT volume label.
	DefaultLabel = "vfat"
	// DefaultFilesDir is the directory inside the source with the tree copied
	// into the FAT root.
	DefaultFilesDir = "files"

	maxLabelLength = 11
)

// Backend selects the implementation used to format, populate and partition images.
type Backend string

const (
	// BackendTools uses the external dosfstools, mtools and util-linux binaries.
	BackendTools Backend = "tools"
	// BackendDiskfs uses the go-diskfs library.
	BackendDiskfs Backend = "diskfs"
	// BackendFake writes markers instead of filesystems, used for testing.
	BackendFake Backend = "fake"
)

// Compression is the algorithm used to compress the final image.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
	CompressionXZ   Compression = "xz"
)

// Extension returns the file extension for the compressed image.
func (c Compression) Extension() string {
	switch c {
	case CompressionZstd:
		return ".zst"
	case CompressionXZ:
		return ".xz"
	default:
		return ""
	}
}

// BuildConfig is the configuration of a disk image build.
type BuildConfig struct {
	Size            int64
	Label           string
	PartitionOffset int64
	// FATSize is the FAT type (12, 16 or 32), 0 lets the formatter decide.
	FATSize     int
	FilesDir    string
	Backend     Backend
	Compression Compression
	// ToolEnv is extra environment for the external tools backend.
	ToolEnv map[string]string
}

// DefaultBuildConfig returns a build configuration with the default values.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		Size:            DefaultImageSize,
		Label:           DefaultLabel,
		PartitionOffset: DefaultPartitionOffset,
		FilesDir:        DefaultFilesDir,
		Backend:         BackendTools,
		Compression:     CompressionNone,
	}
}

// PartitionSize returns the size of the FAT partition.
func (c BuildConfig) PartitionSize() int64 {
	return c.Size - c.PartitionOffset
}

// Validate validates the build configuration.
func (c BuildConfig) Validate() error {
	if c.PartitionOffset <= 0 {
		return fmt.Errorf("partition offset must be positive: %w", ErrNotValid)
	}
	if c.PartitionOffset%SectorSize != 0 {
		return fmt.Errorf("partition offset %d is not a multiple of %d: %w", c.PartitionOffset, SectorSize, ErrNotValid)
	}
	if c.Size <= c.PartitionOffset {
		return fmt.Errorf("image size %d must be bigger than the partition offset %d: %w", c.Size, c.PartitionOffset, ErrNotValid)
	}
	if c.PartitionSize()%SectorSize != 0 {
		return fmt.Errorf("partition size %d is not a multiple of %d: %w", c.PartitionSize(), SectorSize, ErrNotValid)
	}

	if err := ValidateLabel(c.Label); err != nil {
		return err
	}

	switch c.FATSize {
	case 0, 12, 16, 32:
	default:
		return fmt.Errorf("FAT size %d is invalid (allowed: 12, 16, 32): %w", c.FATSize, ErrNotValid)
	}

	if c.FilesDir == "" {
		return fmt.Errorf("files dir is required: %w", ErrNotValid)
	}

	switch c.Backend {
	case BackendTools, BackendDiskfs, BackendFake:
	default:
		return fmt.Errorf("backend %q is invalid: %w", c.Backend, ErrNotValid)
	}

	switch c.Compression {
	case CompressionNone, CompressionZstd, CompressionXZ:
	default:
		return fmt.Errorf("compression %q is invalid: %w", c.Compression, ErrNotValid)
	}

	return nil
}

// ValidateLabel validates a FAT volume label.
func ValidateLabel(label string) error {
	if label == "" {
		return fmt.Errorf("label is required: %w", ErrNotValid)
	}
	if len(label) > maxLabelLength {
		return fmt.Errorf("label %q is longer than %d characters: %w", label, maxLabelLength, ErrNotValid)
	}
	for _, r := range label {
		if r < 0x20 || r > 0x7e || strings.ContainsRune(`"*+,./:;<=>?[\]|`, r) {
			return fmt.Errorf("label %q has invalid character %q: %w", label, r, ErrNotValid)
		}
	}
	return nil
}

// Image is a built disk image.
type Image struct {
	BuildID            string
	Path               string
	Label              string
	PartitionOffset    int64
	VirtualSizeBytes   int64
	AllocatedSizeBytes int64
	// CompressedPath is empty when the image was not compressed.
	CompressedPath string
	CreatedAt      time.Time
}

// ExtentKind classifies a file extent.
type ExtentKind string

const (
	ExtentKindData ExtentKind = "data"
	ExtentKindHole ExtentKind = "hole"
)

// Extent is a [Start, End) byte range of a file.
type Extent struct {
	Start int64
	End   int64
	Kind  ExtentKind
}

// ExtentMap is the layout of a file on disk.
type ExtentMap struct {
	Path               string
	VirtualSizeBytes   int64
	AllocatedSizeBytes int64
	// Sparse is false when the filesystem could not report holes and the
	// whole file is shown as data.
	Sparse  bool
	Extents []Extent
}
