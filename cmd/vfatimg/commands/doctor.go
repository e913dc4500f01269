package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/vfatimg/internal/diskimage"
	"github.com/slok/vfatimg/internal/model"
)

type DoctorCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	backend string
	tmpDir  string
}

// NewDoctorCommand returns the doctor command.
func NewDoctorCommand(rootCmd *RootCommand, app *kingpin.Application) *DoctorCommand {
	c := &DoctorCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("doctor", "Run preflight checks for the image backends.")
	c.Cmd.Flag("backend", "Backend to check (tools, diskfs, all).").Default("all").EnumVar(&c.backend, string(model.BackendTools), string(model.BackendDiskfs), "all")
	c.Cmd.Flag("tmp-dir", "Work directory checked for sparse file support.").Default(os.TempDir()).StringVar(&c.tmpDir)

	return c
}

func (c DoctorCommand) Name() string { return c.Cmd.FullCommand() }

func (c DoctorCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger
	out := c.rootCmd.Stdout

	allResults := []backendCheckResults{{
		name:    "host",
		results: []model.CheckResult{diskimage.CheckSparseSupport(c.tmpDir)},
	}}
	for _, name := range []model.Backend{model.BackendTools, model.BackendDiskfs} {
		if c.backend != "all" && c.backend != string(name) {
			continue
		}

		backend, err := newBackend(name, nil, logger)
		if err != nil {
			return fmt.Errorf("could not create %s backend: %w", name, err)
		}

		allResults = append(allResults, backendCheckResults{
			name:    string(name) + " backend",
			results: backend.Check(ctx),
		})
	}

	// Print results
	totalErrors := 0
	totalWarnings := 0

	for _, br := range allResults {
		fmt.Fprintf(out, "\nChecking %s...\n", br.name)
		for _, r := range br.results {
			fmt.Fprintf(out, "  %s %-20s %s\n", getStatusIcon(r.Status), r.ID, r.Message)
		}
		_, warnings, errors := model.CountByStatus(br.results)
		totalErrors += errors
		totalWarnings += warnings
	}

	// Summary
	fmt.Fprintln(out)
	if totalErrors == 0 && totalWarnings == 0 {
		fmt.Fprintln(out, "All checks passed!")
	} else {
		var summary []string
		if totalErrors > 0 {
			summary = append(summary, fmt.Sprintf("%d error(s)", totalErrors))
		}
		if totalWarnings > 0 {
			summary = append(summary, fmt.Sprintf("%d warning(s)", totalWarnings))
		}
		fmt.Fprintf(out, "%s\n", strings.Join(summary, ", "))
	}

	if totalErrors > 0 {
		return fmt.Errorf("preflight checks failed with %d error(s)", totalErrors)
	}

	return nil
}

type backendCheckResults struct {
	name    string
	results []model.CheckResult
}

func getStatusIcon(status model.CheckStatus) string {
	switch status {
	case model.CheckStatusOK:
		return "OK"
	case model.CheckStatusWarning:
		return "!!"
	case model.CheckStatusError:
		return "XX"
	default:
		return "??"
	}
}
