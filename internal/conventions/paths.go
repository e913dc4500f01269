package conventions

import "path/filepath"

const (
	// DefaultConfigDir is the default vfatimg config directory name (relative to home).
	DefaultConfigDir = ".vfatimg"
	// DefaultsFile is the global build config file inside the config directory.
	DefaultsFile = "defaults.yaml"
	// SourceConfigFile is the build config file looked up inside a source directory.
	SourceConfigFile = "image.yaml"

	// Work directory files.

	// WorkDirPrefix prefixes the per build work directory name.
	WorkDirPrefix = "vfatimg-"
	// PartitionImageFile is the filename of the bare partition image before it's prefixed.
	PartitionImageFile = "part1.img"
)

// WorkDir returns the work directory of a build.
func WorkDir(tmpDir, buildID string) string {
	return filepath.Join(tmpDir, WorkDirPrefix+buildID)
}

// DefaultsFilePath returns the path to the global build config file.
func DefaultsFilePath(configDir string) string {
	return filepath.Join(configDir, DefaultsFile)
}

// SourceConfigPath returns the path to the build config file of a source directory.
func SourceConfigPath(sourceDir string) string {
	return filepath.Join(sourceDir, SourceConfigFile)
}
