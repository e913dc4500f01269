// Package tools implements the disk image collaborators using the external
// dosfstools, mtools and util-linux binaries.
package tools

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/slok/vfatimg/internal/diskimage"
	"github.com/slok/vfatimg/internal/log"
	"github.com/slok/vfatimg/internal/model"
)

const (
	defaultMkfsBinary   = "mkfs.vfat"
	defaultMcopyBinary  = "mcopy"
	defaultSfdiskBinary = "sfdisk"
)

// command is a single external tool execution.
type command struct {
	Name  string
	Args  []string
	Env   []string
	Stdin io.Reader
}

// commandRunner runs a command and returns its combined output.
type commandRunner func(ctx context.Context, cmd command) ([]byte, error)

func execRunner(ctx context.Context, c command) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Stdin = c.Stdin
	return cmd.CombinedOutput()
}

// BackendConfig is the configuration of the tools backend.
type BackendConfig struct {
	// MkfsBinary is the mkfs.vfat binary name or path.
	MkfsBinary string
	// McopyBinary is the mcopy binary name or path.
	McopyBinary string
	// SfdiskBinary is the sfdisk binary name or path.
	SfdiskBinary string
	// Env is set on every tool execution (e.g. mtools MTOOLS_* settings).
	Env    map[string]string
	Logger log.Logger

	runner   commandRunner
	lookPath func(file string) (string, error)
}

func (c *BackendConfig) defaults() error {
	if c.MkfsBinary == "" {
		c.MkfsBinary = defaultMkfsBinary
	}
	if c.McopyBinary == "" {
		c.McopyBinary = defaultMcopyBinary
	}
	if c.SfdiskBinary == "" {
		c.SfdiskBinary = defaultSfdiskBinary
	}
	if c.runner == nil {
		c.runner = execRunner
	}
	if c.lookPath == nil {
		c.lookPath = exec.LookPath
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "diskimage.Tools"})
	return nil
}

// Backend formats, populates and partitions images with external tools.
type Backend struct {
	mkfs     string
	mcopy    string
	sfdisk   string
	env      []string
	run      commandRunner
	lookPath func(file string) (string, error)
	logger   log.Logger
}

// NewBackend returns a new tools backend.
func NewBackend(cfg BackendConfig) (*Backend, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	env := make([]string, 0, len(cfg.Env))
	for k, v := range cfg.Env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)

	return &Backend{
		env:      env,
		mkfs:     cfg.MkfsBinary,
		mcopy:    cfg.McopyBinary,
		sfdisk:   cfg.SfdiskBinary,
		run:      cfg.runner,
		lookPath: cfg.lookPath,
		logger:   cfg.Logger,
	}, nil
}

var _ diskimage.Backend = &Backend{}

// Format creates a FAT filesystem on the image with mkfs.vfat.
func (b *Backend) Format(ctx context.Context, imagePath string, opts diskimage.FormatOpts) error {
	args := []string{"-n", opts.Label}
	if opts.FATSize != 0 {
		args = append(args, "-F", strconv.Itoa(opts.FATSize))
	}
	args = append(args, imagePath)

	if err := b.runCommand(ctx, command{Name: b.mkfs, Args: args}); err != nil {
		return fmt.Errorf("could not create FAT filesystem: %w", err)
	}

	return nil
}

// Populate copies every entry of srcDir recursively into the FAT root with mcopy.
func (b *Backend) Populate(ctx context.Context, imagePath string, srcDir string) error {
	absDir, err := filepath.Abs(srcDir)
	if err != nil {
		return fmt.Errorf("could not resolve source directory: %w", err)
	}

	dirEntries, err := os.ReadDir(absDir)
	if err != nil {
		return fmt.Errorf("could not read source directory: %w", err)
	}

	// mcopy fails without source entries.
	if len(dirEntries) == 0 {
		b.logger.Warningf("Source directory %q is empty, nothing to copy", absDir)
		return nil
	}

	entries := make([]string, 0, len(dirEntries))
	for _, e := range dirEntries {
		entries = append(entries, filepath.Join(absDir, e.Name()))
	}
	sort.Strings(entries)

	args := []string{"-i", imagePath, "-s", "-v"}
	args = append(args, entries...)
	args = append(args, "::")

	// Without the skip the partition image is rejected because it has no partition table.
	err = b.runCommand(ctx, command{Name: b.mcopy, Args: args, Env: []string{"MTOOLS_SKIP_CHECK=1"}})
	if err != nil {
		return fmt.Errorf("could not copy files into FAT filesystem: %w", err)
	}

	return nil
}

// Partition writes a DOS partition table with sfdisk.
func (b *Backend) Partition(ctx context.Context, imagePath string, part diskimage.PartitionSpec) error {
	script, err := sfdiskScript(part)
	if err != nil {
		return err
	}

	err = b.runCommand(ctx, command{Name: b.sfdisk, Args: []string{imagePath}, Stdin: bytes.NewBufferString(script)})
	if err != nil {
		return fmt.Errorf("could not create partition table: %w", err)
	}

	return nil
}

// sfdiskScript returns the sfdisk input for a single W95 FAT32 (LBA) partition.
func sfdiskScript(part diskimage.PartitionSpec) (string, error) {
	if part.Offset <= 0 || part.Offset%model.SectorSize != 0 {
		return "", fmt.Errorf("partition offset %d must be a positive multiple of %d: %w", part.Offset, model.SectorSize, model.ErrNotValid)
	}
	if part.Size <= 0 || part.Size%model.SectorSize != 0 {
		return "", fmt.Errorf("partition size %d must be a positive multiple of %d: %w", part.Size, model.SectorSize, model.ErrNotValid)
	}

	return fmt.Sprintf("label: dos\n%d,%d,c\n", part.Offset/model.SectorSize, part.Size/model.SectorSize), nil
}

func (b *Backend) runCommand(ctx context.Context, cmd command) error {
	b.logger.Debugf("Running %s %v", cmd.Name, cmd.Args)
	if len(b.env) > 0 {
		cmd.Env = append(append([]string{}, b.env...), cmd.Env...)
	}

	out, err := b.run(ctx, cmd)
	if len(out) > 0 {
		b.logger.Debugf("%s output: %s", cmd.Name, out)
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w, output: %s", cmd.Name, err, bytes.TrimSpace(out))
	}

	return nil
}

// Check verifies that every needed binary is available.
func (b *Backend) Check(ctx context.Context) []model.CheckResult {
	return []model.CheckResult{
		b.checkBinary("mkfs_vfat_binary", b.mkfs, "dosfstools"),
		b.checkBinary("mcopy_binary", b.mcopy, "mtools"),
		b.checkBinary("sfdisk_binary", b.sfdisk, "util-linux"),
	}
}

func (b *Backend) checkBinary(id, binary, pkg string) model.CheckResult {
	path, err := b.lookPath(binary)
	if err != nil {
		return model.CheckResult{
			ID:      id,
			Message: fmt.Sprintf("%s not found in PATH (install %s)", binary, pkg),
			Status:  model.CheckStatusError,
		}
	}

	return model.CheckResult{
		ID:      id,
		Message: fmt.Sprintf("%s found at %s", binary, path),
		Status:  model.CheckStatusOK,
	}
}
