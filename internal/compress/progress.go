package compress

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
)

// ProgressWriter wraps an io.Writer to display compression progress.
type ProgressWriter struct {
	dst          io.Writer
	statusWriter io.Writer
	total        int64
	written      int64
	lastPct      int
	mu           sync.Mutex
}

// NewProgressWriter creates a new progress writer.
// dst receives the actual data, statusWriter receives progress output.
// If total is 0 or negative, only bytes written are shown (no percentage).
func NewProgressWriter(dst io.Writer, statusWriter io.Writer, total int64) *ProgressWriter {
	return &ProgressWriter{
		dst:          dst,
		statusWriter: statusWriter,
		total:        total,
		lastPct:      -1,
	}
}

func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.dst.Write(p)

	pw.mu.Lock()
	pw.written += int64(n)
	pw.printProgress()
	pw.mu.Unlock()

	return n, err
}

// Finish prints the final progress line with a newline.
func (pw *ProgressWriter) Finish() {
	fmt.Fprintln(pw.statusWriter)
}

func (pw *ProgressWriter) printProgress() {
	if pw.total <= 0 {
		fmt.Fprintf(pw.statusWriter, "\r  %s compressed", humanize.IBytes(uint64(pw.written)))
		return
	}

	pct := int(pw.written * 100 / pw.total)
	if pct > 100 {
		pct = 100
	}
	// Only redraw when the percentage changes, images are big.
	if pct == pw.lastPct {
		return
	}
	pw.lastPct = pct

	barWidth := 40
	filled := pct * barWidth / 100
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", barWidth-filled)
	fmt.Fprintf(pw.statusWriter, "\r  [%s] %3d%% %s / %s", bar, pct, humanize.IBytes(uint64(pw.written)), humanize.IBytes(uint64(pw.total)))
}
