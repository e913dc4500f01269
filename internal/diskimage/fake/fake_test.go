package fake_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/vfatimg/internal/diskimage"
	"github.com/slok/vfatimg/internal/diskimage/fake"
)

func TestBackendRecordsCalls(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	dir := t.TempDir()
	filesDir := filepath.Join(dir, "files")
	require.NoError(os.MkdirAll(filepath.Join(filesDir, "boot"), 0o755))
	require.NoError(os.WriteFile(filepath.Join(filesDir, "boot", "a.txt"), []byte("a"), 0o644))

	img := filepath.Join(dir, "disk.img")
	require.NoError(diskimage.NewSparseImage(img, 4096))

	b, err := fake.NewBackend(fake.BackendConfig{})
	require.NoError(err)

	ctx := context.TODO()
	require.NoError(b.Format(ctx, img, diskimage.FormatOpts{Label: "vfat"}))
	require.NoError(b.Populate(ctx, img, filesDir))
	require.NoError(b.Partition(ctx, img, diskimage.PartitionSpec{Offset: 512, Size: 3584}))

	exp := []fake.Call{
		{Op: "format", ImagePath: img, Arg: diskimage.FormatOpts{Label: "vfat"}},
		{Op: "populate", ImagePath: img, Arg: []string{"boot/a.txt"}},
		{Op: "partition", ImagePath: img, Arg: diskimage.PartitionSpec{Offset: 512, Size: 3584}},
	}
	assert.Equal(exp, b.Calls())

	got, err := os.ReadFile(img)
	require.NoError(err)
	assert.Equal("FAKEFAT vfat", string(got[:12]))
	assert.Equal([]byte{0x55, 0xaa}, got[510:512])
}
