package printer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/vfatimg/internal/printer"
)

func TestFormatBytes(t *testing.T) {
	tests := map[string]struct {
		bytes int64
		exp   string
	}{
		"Negative should be zero.": {bytes: -1, exp: "0 B"},
		"Zero bytes.":              {bytes: 0, exp: "0 B"},
		"Bytes.":                   {bytes: 512, exp: "512 B"},
		"Kibibytes.":               {bytes: 1536, exp: "1.5 KiB"},
		"Mebibytes.":               {bytes: 1024 * 1024, exp: "1.0 MiB"},
		"Default image size.":      {bytes: 31744 * 1024 * 1024, exp: "31 GiB"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, printer.FormatBytes(test.bytes))
		})
	}
}
