package lib

import (
	"errors"
	"time"

	"github.com/slok/vfatimg/internal/model"
)

var (
	// ErrNotFound is returned when a file does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when the output exists and overwriting was not forced.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned on invalid input.
	ErrNotValid = errors.New("not valid")
)

// Backend identifies the implementation that creates the FAT filesystem and
// the partition table.
type Backend string

const (
	// BackendTools uses the mkfs.vfat, mcopy and sfdisk binaries.
	BackendTools Backend = "tools"
	// BackendDiskfs uses a pure Go implementation (FAT32 only).
	BackendDiskfs Backend = "diskfs"
	// BackendFake writes markers instead of real filesystems.
	// Use this for unit testing without infrastructure dependencies.
	BackendFake Backend = "fake"
)

// Compression is the algorithm used to compress the final image.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
	CompressionXZ   Compression = "xz"
)

// BuildOpts are the options of [Client.Build].
//
// Zero values take the CLI defaults: 31744 MiB image, "vfat" label, 1 MiB
// partition offset and the "files" directory.
type BuildOpts struct {
	// SourceDir contains the files directory.
	SourceDir string
	// Output is the image file to be written.
	Output string
	// Size is the total image size in bytes.
	Size int64
	// Label is the FAT volume label (1 to 11 characters).
	Label string
	// PartitionOffset is the room in bytes reserved in front of the partition.
	// Must be a multiple of 512.
	PartitionOffset int64
	// FATSize forces the FAT type (12, 16, 32), 0 lets the formatter decide.
	FATSize int
	// FilesDir is the directory, relative to SourceDir, copied into the partition root.
	FilesDir string
	// Compression compresses the image next to the output.
	Compression Compression
	// Force overwrites an existing output.
	Force bool
	// TmpDir is where the work directory is created. Default: OS temp dir.
	TmpDir string
}

// Image is a built or prefixed image file.
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

// ExtentKind is the kind of a file extent.
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

// ExtentMap is the extent layout of a file.
type ExtentMap struct {
	Path               string
	VirtualSizeBytes   int64
	AllocatedSizeBytes int64
	// Sparse is false when the filesystem could not report holes.
	Sparse  bool
	Extents []Extent
}

// --- Doctor types ---

// CheckStatus represents the status of a preflight check.
type CheckStatus string

const (
	// CheckStatusOK indicates the check passed.
	CheckStatusOK CheckStatus = "ok"
	// CheckStatusWarning indicates the check passed with a warning.
	CheckStatusWarning CheckStatus = "warning"
	// CheckStatusError indicates the check failed.
	CheckStatusError CheckStatus = "error"
)

// CheckResult represents the result of a single preflight check.
type CheckResult struct {
	// ID is a unique identifier for the check (e.g. "mcopy_binary").
	ID string
	// Message is a human-readable description of the result.
	Message string
	// Status is the check status.
	Status CheckStatus
}

// --- Internal conversion helpers ---

func toInternalBuildConfig(backend Backend, opts BuildOpts) model.BuildConfig {
	cfg := model.DefaultBuildConfig()
	cfg.Backend = model.Backend(backend)

	if opts.Size != 0 {
		cfg.Size = opts.Size
	}
	if opts.Label != "" {
		cfg.Label = opts.Label
	}
	if opts.PartitionOffset != 0 {
		cfg.PartitionOffset = opts.PartitionOffset
	}
	if opts.FilesDir != "" {
		cfg.FilesDir = opts.FilesDir
	}
	if opts.Compression != "" {
		cfg.Compression = model.Compression(opts.Compression)
	}
	cfg.FATSize = opts.FATSize

	return cfg
}

func fromInternalImage(img model.Image) *Image {
	return &Image{
		BuildID:            img.BuildID,
		Path:               img.Path,
		Label:              img.Label,
		PartitionOffset:    img.PartitionOffset,
		VirtualSizeBytes:   img.VirtualSizeBytes,
		AllocatedSizeBytes: img.AllocatedSizeBytes,
		CompressedPath:     img.CompressedPath,
		CreatedAt:          img.CreatedAt,
	}
}

func fromInternalExtentMap(em model.ExtentMap) *ExtentMap {
	extents := make([]Extent, 0, len(em.Extents))
	for _, e := range em.Extents {
		kind := ExtentKindData
		if e.Kind == model.ExtentKindHole {
			kind = ExtentKindHole
		}
		extents = append(extents, Extent{Start: e.Start, End: e.End, Kind: kind})
	}

	return &ExtentMap{
		Path:               em.Path,
		VirtualSizeBytes:   em.VirtualSizeBytes,
		AllocatedSizeBytes: em.AllocatedSizeBytes,
		Sparse:             em.Sparse,
		Extents:            extents,
	}
}

func fromInternalCheckResults(rs []model.CheckResult) []CheckResult {
	out := make([]CheckResult, 0, len(rs))
	for _, r := range rs {
		out = append(out, CheckResult{
			ID:      r.ID,
			Message: r.Message,
			Status:  CheckStatus(r.Status),
		})
	}
	return out
}

// --- Error mapping ---

func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return joinErrors(err, ErrNotFound)
	case errors.Is(err, model.ErrAlreadyExists):
		return joinErrors(err, ErrAlreadyExists)
	case errors.Is(err, model.ErrNotValid):
		return joinErrors(err, ErrNotValid)
	default:
		return err
	}
}

func joinErrors(original, sentinel error) error {
	return &mappedError{original: original, sentinel: sentinel}
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *mappedError) Unwrap() error { return e.original }
