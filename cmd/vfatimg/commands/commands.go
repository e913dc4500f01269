package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/vfatimg/internal/conventions"
	"github.com/slok/vfatimg/internal/diskimage"
	"github.com/slok/vfatimg/internal/diskimage/diskfs"
	"github.com/slok/vfatimg/internal/diskimage/fake"
	"github.com/slok/vfatimg/internal/diskimage/tools"
	"github.com/slok/vfatimg/internal/log"
	"github.com/slok/vfatimg/internal/model"
	"github.com/slok/vfatimg/internal/printer"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"

	formatTable = "table"
	formatJSON  = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string
	ConfigDir  string

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	defaultConfigDir := filepath.Join(homedir.HomeDir(), conventions.DefaultConfigDir)
	app.Flag("config-dir", "Directory with the global defaults.yaml build config.").Default(defaultConfigDir).StringVar(&c.ConfigDir)

	return c
}

// newBackend returns the disk image backend by name.
func newBackend(name model.Backend, toolEnv map[string]string, logger log.Logger) (diskimage.Backend, error) {
	switch name {
	case model.BackendTools:
		return tools.NewBackend(tools.BackendConfig{Env: toolEnv, Logger: logger})
	case model.BackendDiskfs:
		return diskfs.NewBackend(diskfs.BackendConfig{Logger: logger})
	case model.BackendFake:
		return fake.NewBackend(fake.BackendConfig{Logger: logger})
	default:
		return nil, fmt.Errorf("unknown backend %q: %w", name, model.ErrNotValid)
	}
}

func newPrinter(format string, w io.Writer) printer.Printer {
	if format == formatJSON {
		return printer.NewJSONPrinter(w)
	}
	return printer.NewTablePrinter(w)
}

// absFSPath returns the path relative to the root, as os.DirFS("/") expects.
func absFSPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return abs[1:], nil
}

var rootFS = os.DirFS("/")
