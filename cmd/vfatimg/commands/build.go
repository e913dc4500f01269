package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/vfatimg/internal/app/build"
	"github.com/slok/vfatimg/internal/compress"
	"github.com/slok/vfatimg/internal/conventions"
	"github.com/slok/vfatimg/internal/log"
	"github.com/slok/vfatimg/internal/model"
	"github.com/slok/vfatimg/internal/storage"
	"github.com/slok/vfatimg/internal/storage/io"
	utilsenv "github.com/slok/vfatimg/internal/utils/env"
	"github.com/slok/vfatimg/internal/utils/size"
)

// BuildCommand builds a disk image with a FAT partition from a directory.
type BuildCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	source     string
	output     string
	configFile string
	tmpDir     string
	force      bool
	format     string
	envSpecs   []string

	size           string
	sizeSet        bool
	label          string
	labelSet       bool
	partOffset     string
	partOffsetSet  bool
	fatSize        int
	fatSizeSet     bool
	filesDir       string
	filesDirSet    bool
	backend        string
	backendSet     bool
	compression    string
	compressionSet bool
}

// NewBuildCommand returns the build command.
func NewBuildCommand(rootCmd *RootCommand, app *kingpin.Application) *BuildCommand {
	c := &BuildCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("build", "Create a disk image with a vfat partition containing the files of a directory.")
	c.Cmd.Arg("source", "Input directory containing the configuration (image.yaml) and the root tree (files/).").Required().StringVar(&c.source)
	c.Cmd.Arg("output", "The image file to be written.").Required().StringVar(&c.output)

	c.Cmd.Flag("size", "Size of the disk image, bare numbers are MiB (default: 31744).").IsSetByUser(&c.sizeSet).StringVar(&c.size)
	c.Cmd.Flag("label", "Label for the FAT partition (default: vfat).").IsSetByUser(&c.labelSet).StringVar(&c.label)
	c.Cmd.Flag("partition-offset", "Room reserved for the partition table in front of the partition (default: 1MiB).").IsSetByUser(&c.partOffsetSet).StringVar(&c.partOffset)
	c.Cmd.Flag("fat-size", "FAT type (12, 16, 32), by default the formatter decides.").IsSetByUser(&c.fatSizeSet).IntVar(&c.fatSize)
	c.Cmd.Flag("files-dir", "Directory inside the source copied into the partition root (default: files).").IsSetByUser(&c.filesDirSet).StringVar(&c.filesDir)
	c.Cmd.Flag("backend", "Backend used to create the filesystem and the partition table (tools, diskfs, fake).").IsSetByUser(&c.backendSet).EnumVar(&c.backend, string(model.BackendTools), string(model.BackendDiskfs), string(model.BackendFake))
	c.Cmd.Flag("compress", "Compress the final image (none, zstd, xz).").IsSetByUser(&c.compressionSet).EnumVar(&c.compression, string(model.CompressionNone), string(model.CompressionZstd), string(model.CompressionXZ))
	c.Cmd.Flag("tool-env", "Environment for the external tools in KEY=VALUE or KEY (inherit) form. Repeatable.").StringsVar(&c.envSpecs)
	c.Cmd.Flag("config", "Build config file, by default <source>/image.yaml if present.").StringVar(&c.configFile)
	c.Cmd.Flag("tmp-dir", "Directory for the temporary work files.").StringVar(&c.tmpDir)
	c.Cmd.Flag("force", "Force to overwrite an existing output file.").BoolVar(&c.force)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c BuildCommand) Name() string { return c.Cmd.FullCommand() }

func (c BuildCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	cfg, err := c.buildConfig(ctx, logger)
	if err != nil {
		return fmt.Errorf("could not load build config: %w", err)
	}

	backend, err := newBackend(cfg.Backend, cfg.ToolEnv, logger)
	if err != nil {
		return fmt.Errorf("could not create backend: %w", err)
	}

	compressorCfg := compress.CompressorConfig{Logger: logger}
	if !c.rootCmd.NoLog && c.rootCmd.LoggerType == LoggerTypeDefault {
		compressorCfg.StatusWriter = c.rootCmd.Stderr
	}
	compressor, err := compress.NewCompressor(compressorCfg)
	if err != nil {
		return fmt.Errorf("could not create compressor: %w", err)
	}

	svc, err := build.NewService(build.ServiceConfig{
		Backend:    backend,
		Compressor: compressor,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	img, err := svc.Run(ctx, build.Request{
		SourceDir: c.source,
		Output:    c.output,
		Config:    cfg,
		Force:     c.force,
		TmpDir:    c.tmpDir,
	})
	if err != nil {
		return fmt.Errorf("could not build image: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintImage(*img); err != nil {
		return fmt.Errorf("could not print image: %w", err)
	}

	return nil
}

// buildConfig layers the build config: defaults, global defaults file, source
// config file and finally the flags set by the user.
func (c BuildCommand) buildConfig(ctx context.Context, logger log.Logger) (model.BuildConfig, error) {
	cfg := model.DefaultBuildConfig()
	var repo storage.BuildConfigRepository = io.NewBuildConfigYAMLRepository(rootFS)

	apply := func(path string, required bool) error {
		fsPath, err := absFSPath(path)
		if err != nil {
			return fmt.Errorf("could not resolve config path: %w", err)
		}
		res, err := repo.ApplyConfig(ctx, fsPath, cfg)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) && !required {
				return nil
			}
			return err
		}
		logger.Debugf("Loaded build config %s", path)
		cfg = res
		return nil
	}

	if err := apply(conventions.DefaultsFilePath(c.rootCmd.ConfigDir), false); err != nil {
		return cfg, err
	}

	if c.configFile != "" {
		if err := apply(c.configFile, true); err != nil {
			return cfg, err
		}
	} else if err := apply(conventions.SourceConfigPath(c.source), false); err != nil {
		return cfg, err
	}

	if c.sizeSet {
		s, err := size.Parse(c.size)
		if err != nil {
			return cfg, fmt.Errorf("invalid --size: %w", err)
		}
		cfg.Size = s
	}
	if c.partOffsetSet {
		s, err := size.Parse(c.partOffset)
		if err != nil {
			return cfg, fmt.Errorf("invalid --partition-offset: %w", err)
		}
		cfg.PartitionOffset = s
	}
	if c.labelSet {
		cfg.Label = c.label
	}
	if c.fatSizeSet {
		cfg.FATSize = c.fatSize
	}
	if c.filesDirSet {
		cfg.FilesDir = c.filesDir
	}
	if c.backendSet {
		cfg.Backend = model.Backend(c.backend)
	}
	if c.compressionSet {
		algo, err := compress.ParseAlgorithm(c.compression)
		if err != nil {
			return cfg, fmt.Errorf("invalid --compress: %w", err)
		}
		cfg.Compression = algo
	}

	cliEnv, err := utilsenv.ParseSpecs(c.envSpecs)
	if err != nil {
		return cfg, fmt.Errorf("invalid --tool-env value: %w", err)
	}
	cfg.ToolEnv = utilsenv.MergeMaps(cfg.ToolEnv, cliEnv)

	return cfg, nil
}
