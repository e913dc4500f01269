// Package size parses human size strings.
package size

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/docker/go-units"

	"github.com/slok/vfatimg/internal/model"
)

const mib = 1024 * 1024

// Parse parses a size like "512MiB", "1.5g" or "31744". Bare integers are MiB.
func Parse(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size: %w", model.ErrNotValid)
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("size %q can't be negative: %w", s, model.ErrNotValid)
		}
		return n * mib, nil
	}

	n, err := units.RAMInBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, model.ErrNotValid)
	}
	if n < 0 {
		return 0, fmt.Errorf("size %q can't be negative: %w", s, model.ErrNotValid)
	}

	return n, nil
}
