package diskimage

import (
	"fmt"
	"os"

	"github.com/slok/vfatimg/internal/model"
	"github.com/slok/vfatimg/internal/utils/file"
)

const sparseProbeSize = 1024 * 1024

// CheckSparseSupport checks if the filesystem holding dir answers extent
// queries. Without them images are copied as a single data extent and the
// output is fully allocated.
func CheckSparseSupport(dir string) model.CheckResult {
	const id = "sparse_support"

	f, err := os.CreateTemp(dir, ".vfatimg-sparse-*")
	if err != nil {
		return model.CheckResult{ID: id, Status: model.CheckStatusError, Message: fmt.Sprintf("Could not create probe file in %s: %v", dir, err)}
	}
	path := f.Name()
	defer os.Remove(path)

	err = f.Truncate(sparseProbeSize)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return model.CheckResult{ID: id, Status: model.CheckStatusError, Message: fmt.Sprintf("Could not size probe file in %s: %v", dir, err)}
	}

	ok, err := file.SparseSupported(path)
	switch {
	case err != nil:
		return model.CheckResult{ID: id, Status: model.CheckStatusError, Message: fmt.Sprintf("Could not query extents in %s: %v", dir, err)}
	case !ok:
		return model.CheckResult{ID: id, Status: model.CheckStatusWarning, Message: fmt.Sprintf("Extent queries not supported in %s, images will be fully allocated", dir)}
	default:
		return model.CheckResult{ID: id, Status: model.CheckStatusOK, Message: fmt.Sprintf("Extent queries supported in %s", dir)}
	}
}
