package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/vfatimg/internal/model"
)

func TestCheckResults(t *testing.T) {
	tests := map[string]struct {
		results     []model.CheckResult
		expErrors   bool
		expWarnings bool
		expCounts   [3]int
	}{
		"No results should have nothing.": {},

		"All ok results should not have errors nor warnings.": {
			results: []model.CheckResult{
				{ID: "mcopy_binary", Status: model.CheckStatusOK},
				{ID: "sfdisk_binary", Status: model.CheckStatusOK},
			},
			expCounts: [3]int{2, 0, 0},
		},

		"Mixed results should be counted by status.": {
			results: []model.CheckResult{
				{ID: "mkfs_vfat_binary", Status: model.CheckStatusError},
				{ID: "mcopy_binary", Status: model.CheckStatusWarning},
				{ID: "sfdisk_binary", Status: model.CheckStatusOK},
			},
			expErrors:   true,
			expWarnings: true,
			expCounts:   [3]int{1, 1, 1},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(test.expErrors, model.HasErrors(test.results))
			assert.Equal(test.expWarnings, model.HasWarnings(test.results))
			ok, warnings, errors := model.CountByStatus(test.results)
			assert.Equal(test.expCounts, [3]int{ok, warnings, errors})
		})
	}
}
