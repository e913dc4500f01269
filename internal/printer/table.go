package printer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/slok/vfatimg/internal/model"
)

// TablePrinter prints image information in a human format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintImage prints the details of a built image.
func (t *TablePrinter) PrintImage(img model.Image) error {
	fmt.Fprintf(t.writer, "Path:        %s\n", img.Path)
	if img.BuildID != "" {
		fmt.Fprintf(t.writer, "Build:       %s\n", img.BuildID)
	}
	if img.Label != "" {
		fmt.Fprintf(t.writer, "Label:       %s\n", img.Label)
	}
	fmt.Fprintf(t.writer, "Offset:      %s (%d)\n", FormatBytes(img.PartitionOffset), img.PartitionOffset)
	fmt.Fprintf(t.writer, "Virt size:   %s\n", FormatBytes(img.VirtualSizeBytes))
	fmt.Fprintf(t.writer, "Disk size:   %s\n", FormatBytes(img.AllocatedSizeBytes))
	if img.CompressedPath != "" {
		fmt.Fprintf(t.writer, "Compressed:  %s\n", img.CompressedPath)
	}
	fmt.Fprintf(t.writer, "Created:     %s\n", FormatTimestamp(img.CreatedAt))

	return nil
}

// PrintExtents prints the extent map of a file in a table format.
func (t *TablePrinter) PrintExtents(em model.ExtentMap) error {
	fmt.Fprintf(t.writer, "Path:       %s\n", em.Path)
	fmt.Fprintf(t.writer, "Virt size:  %s\n", FormatBytes(em.VirtualSizeBytes))
	fmt.Fprintf(t.writer, "Disk size:  %s\n", FormatBytes(em.AllocatedSizeBytes))
	fmt.Fprintf(t.writer, "Sparse:     %t\n", em.Sparse)

	if len(em.Extents) == 0 {
		return nil
	}

	fmt.Fprintln(t.writer)
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "KIND\tSTART\tEND\tSIZE")
	for _, e := range em.Extents {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", e.Kind, e.Start, e.End, FormatBytes(e.End-e.Start))
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}
