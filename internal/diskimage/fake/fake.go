package fake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/slok/vfatimg/internal/diskimage"
	"github.com/slok/vfatimg/internal/log"
	"github.com/slok/vfatimg/internal/model"
)

// BackendConfig is the configuration for the fake backend.
type BackendConfig struct {
	Logger log.Logger
}

func (c *BackendConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "diskimage.Fake"})
	return nil
}

// Call is a recorded backend call.
type Call struct {
	Op        string
	ImagePath string
	Arg       any
}

// Backend is a fake implementation of the diskimage.Backend interface.
// It writes a small marker instead of real filesystems so the rest of the
// build flow can run without external tools.
type Backend struct {
	calls  []Call
	mu     sync.Mutex
	logger log.Logger
}

// NewBackend creates a new fake backend.
func NewBackend(cfg BackendConfig) (*Backend, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Backend{logger: cfg.Logger}, nil
}

var _ diskimage.Backend = &Backend{}

// Format writes a marker with the label at the image start.
func (b *Backend) Format(ctx context.Context, imagePath string, opts diskimage.FormatOpts) error {
	b.record(Call{Op: "format", ImagePath: imagePath, Arg: opts})
	return writeAt(imagePath, []byte("FAKEFAT "+opts.Label), 0)
}

// Populate records the files that would be copied.
func (b *Backend) Populate(ctx context.Context, imagePath string, srcDir string) error {
	var files []string
	err := filepath.WalkDir(srcDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			rel, err := filepath.Rel(srcDir, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("could not walk source directory: %w", err)
	}

	b.record(Call{Op: "populate", ImagePath: imagePath, Arg: files})
	return nil
}

// Partition writes the MBR boot signature.
func (b *Backend) Partition(ctx context.Context, imagePath string, part diskimage.PartitionSpec) error {
	b.record(Call{Op: "partition", ImagePath: imagePath, Arg: part})
	return writeAt(imagePath, []byte{0x55, 0xaa}, 510)
}

// Check always succeeds.
func (b *Backend) Check(ctx context.Context) []model.CheckResult {
	return []model.CheckResult{
		{ID: "fake_backend", Message: "Fake backend is always available", Status: model.CheckStatusOK},
	}
}

// Calls returns the recorded calls.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()

	calls := make([]Call, len(b.calls))
	copy(calls, b.calls)
	return calls
}

func (b *Backend) record(c Call) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.logger.Debugf("%s %s", c.Op, c.ImagePath)
	b.calls = append(b.calls, c)
}

func writeAt(path string, data []byte, off int64) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("could not open image: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteAt(data, off); err != nil {
		return fmt.Errorf("could not write image: %w", err)
	}

	return f.Close()
}
