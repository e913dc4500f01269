package conventions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/vfatimg/internal/conventions"
)

func TestPaths(t *testing.T) {
	tests := map[string]struct {
		got string
		exp string
	}{
		"Work dir should be prefixed with the tool name.": {
			got: conventions.WorkDir("/tmp", "01ARZ3NDEKTSV4RRFFQ69G5FAV"),
			exp: "/tmp/vfatimg-01ARZ3NDEKTSV4RRFFQ69G5FAV",
		},
		"Defaults file should be inside the config dir.": {
			got: conventions.DefaultsFilePath("/home/user/.vfatimg"),
			exp: "/home/user/.vfatimg/defaults.yaml",
		},
		"Source config should be inside the source dir.": {
			got: conventions.SourceConfigPath("/src/boot"),
			exp: "/src/boot/image.yaml",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, test.got)
		})
	}
}
