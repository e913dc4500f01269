package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/vfatimg/internal/app/prefix"
	"github.com/slok/vfatimg/internal/utils/size"
)

// PrefixCommand copies a file shifted forward by an offset keeping its holes.
type PrefixCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	source string
	output string
	offset string
	force  bool
	format string
}

// NewPrefixCommand returns the prefix command.
func NewPrefixCommand(rootCmd *RootCommand, app *kingpin.Application) *PrefixCommand {
	c := &PrefixCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("prefix", "Copy a file into a new one with room in front of it, preserving sparse holes.")
	c.Cmd.Arg("source", "Source file.").Required().StringVar(&c.source)
	c.Cmd.Arg("output", "Output file.").Required().StringVar(&c.output)
	c.Cmd.Flag("offset", "Bytes reserved in front of the copy, bare numbers are MiB.").Default("1MiB").StringVar(&c.offset)
	c.Cmd.Flag("force", "Force to overwrite an existing output file.").BoolVar(&c.force)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c PrefixCommand) Name() string { return c.Cmd.FullCommand() }

func (c PrefixCommand) Run(ctx context.Context) error {
	offset, err := size.Parse(c.offset)
	if err != nil {
		return fmt.Errorf("invalid --offset: %w", err)
	}

	svc, err := prefix.NewService(prefix.ServiceConfig{Logger: c.rootCmd.Logger})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	img, err := svc.Run(ctx, prefix.Request{
		Source: c.source,
		Output: c.output,
		Offset: offset,
		Force:  c.force,
	})
	if err != nil {
		return fmt.Errorf("could not prefix file: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintImage(*img); err != nil {
		return fmt.Errorf("could not print result: %w", err)
	}

	return nil
}
