package vfatimg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/slok/vfatimg/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary string
}

func (c *Config) defaults() error {
	// go test changes the CWD to the test package directory, relative paths
	// would point to the wrong place.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("VFATIMG_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("vfatimg binary not found at %q: %w", c.Binary, err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "VFATIMG_INTEGRATION"
		envBinary     = "VFATIMG_INTEGRATION_BINARY"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{Binary: os.Getenv(envBinary)}
	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// RunCmd runs a vfatimg command isolated from the user global defaults.
func RunCmd(ctx context.Context, config Config, configDir string, args ...string) (stdout, stderr []byte, err error) {
	args = append([]string{"--config-dir", configDir}, args...)
	return testutils.RunVfatimg(ctx, nil, config.Binary, args, true)
}

// RunBuild builds an image in JSON output mode.
func RunBuild(ctx context.Context, config Config, configDir, source, output string, extraArgs ...string) (stdout, stderr []byte, err error) {
	args := append([]string{"build", source, output, "--format", "json"}, extraArgs...)
	return RunCmd(ctx, config, configDir, args...)
}

// RunExtents lists the extents of a file in JSON format.
func RunExtents(ctx context.Context, config Config, configDir, path string) (stdout, stderr []byte, err error) {
	return RunCmd(ctx, config, configDir, "extents", path, "--format", "json")
}
