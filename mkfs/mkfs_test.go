package mkfs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larderfs/larderfs/common"
	"github.com/larderfs/larderfs/disk"
	"github.com/larderfs/larderfs/fs"
	"github.com/larderfs/larderfs/fsck"
	"github.com/larderfs/larderfs/inode"
	"github.com/larderfs/larderfs/mkfs"
)

func TestFormatProducesMountableImage(t *testing.T) {
	d := disk.NewMemDisk(common.NBlocks)
	require.NoError(t, mkfs.Format(d))

	fsys, err := fs.Mount(d)
	require.NoError(t, err)
	assert.Equal(t, common.NInodes-1, fsys.Super().NumFreeInodes())
	assert.Equal(t, common.NBlocks-3, fsys.Super().NumFreeDataBlocks())

	root, err := fsys.GetInode(common.RootInum)
	require.NoError(t, err)
	assert.True(t, root.IsDir())

	// A fresh root lists only the synthetic entries.
	e, next, ok, err := fsys.ReadDirent(root, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ".", e.Name)
	e, next, ok, err = fsys.ReadDirent(root, next)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "..", e.Name)
	_, _, ok, err = fsys.ReadDirent(root, next)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFormatBootstrapsRootRecord(t *testing.T) {
	d := disk.NewMemDisk(common.NBlocks)
	require.NoError(t, mkfs.Format(d))

	blk, err := d.Read(common.InodeBlkno)
	require.NoError(t, err)
	di := inode.Decode(blk[:common.InodeSize])
	assert.Equal(t, common.ModeDir|uint64(0777), di.Mode)
	assert.Equal(t, uint64(2), di.Nlink)
	assert.Equal(t, common.BlockSize, di.Size)
	assert.Equal(t, common.RootDataBlkno, di.DataBlock)
}

func TestFormatIsClean(t *testing.T) {
	d := disk.NewMemDisk(common.NBlocks)
	require.NoError(t, mkfs.Format(d))
	report, err := fsck.Check(d)
	require.NoError(t, err)
	assert.True(t, report.Ok(), "fresh image should check clean: %v", report.Problems)
}

func TestFormatRejectsTinyDisk(t *testing.T) {
	assert.Error(t, mkfs.Format(disk.NewMemDisk(2)))
}

func TestReformatErasesOldContents(t *testing.T) {
	d := disk.NewMemDisk(common.NBlocks)
	require.NoError(t, mkfs.Format(d))
	fsys, err := fs.Mount(d)
	require.NoError(t, err)
	root, err := fsys.GetInode(common.RootInum)
	require.NoError(t, err)
	_, err = fsys.Create(root, "stale", 0644)
	require.NoError(t, err)

	require.NoError(t, mkfs.Format(d))
	fsys, err = fs.Mount(d)
	require.NoError(t, err)
	root, err = fsys.GetInode(common.RootInum)
	require.NoError(t, err)
	_, err = fsys.Lookup(root, "stale")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
