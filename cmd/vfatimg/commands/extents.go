package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/vfatimg/internal/app/inspect"
)

// ExtentsCommand shows the data and hole extents of a file.
type ExtentsCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	path   string
	format string
}

// NewExtentsCommand returns the extents command.
func NewExtentsCommand(rootCmd *RootCommand, app *kingpin.Application) *ExtentsCommand {
	c := &ExtentsCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("extents", "Show the data and hole extents of a file.")
	c.Cmd.Arg("file", "File to inspect.").Required().StringVar(&c.path)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c ExtentsCommand) Name() string { return c.Cmd.FullCommand() }

func (c ExtentsCommand) Run(ctx context.Context) error {
	svc, err := inspect.NewService(inspect.ServiceConfig{Logger: c.rootCmd.Logger})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	em, err := svc.Run(ctx, inspect.Request{Path: c.path})
	if err != nil {
		return fmt.Errorf("could not inspect file: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintExtents(*em); err != nil {
		return fmt.Errorf("could not print extents: %w", err)
	}

	return nil
}
