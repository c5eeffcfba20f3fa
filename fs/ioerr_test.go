package fs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larderfs/larderfs/common"
	"github.com/larderfs/larderfs/disk"
	"github.com/larderfs/larderfs/fs"
	"github.com/larderfs/larderfs/mkfs"
)

// Disk failures surface to the caller verbatim; nothing retries.
func TestIOErrorsPropagate(t *testing.T) {
	d := disk.NewMemDisk(common.NBlocks)
	require.NoError(t, mkfs.Format(d))
	fd := &faultDisk{Disk: d}
	fsys, err := fs.Mount(fd)
	require.NoError(t, err)
	root, err := fsys.GetInode(common.RootInum)
	require.NoError(t, err)
	ip, err := fsys.Create(root, "a", 0644)
	require.NoError(t, err)

	fd.tripped = true

	_, err = fsys.Lookup(root, "a")
	assert.ErrorIs(t, err, errInjected)
	_, err = fsys.Create(root, "b", 0644)
	assert.ErrorIs(t, err, errInjected)
	assert.ErrorIs(t, fsys.Unlink(root, "a", nil), errInjected)
	_, err = fsys.Read(ip, 0, make([]byte, 8))
	assert.ErrorIs(t, err, errInjected)
	_, err = fsys.Write(ip, 0, []byte("x"), false)
	assert.ErrorIs(t, err, errInjected)
	assert.ErrorIs(t, fsys.WriteBack(ip), errInjected)
	_, err = fsys.GetInode(ip.Ino)
	assert.ErrorIs(t, err, errInjected)

	// The engine keeps working once the device recovers.
	fd.tripped = false
	got, err := fsys.Lookup(root, "a")
	require.NoError(t, err)
	assert.Equal(t, ip.Ino, got.Ino)
}
