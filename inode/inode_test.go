package inode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larderfs/larderfs/buf"
	"github.com/larderfs/larderfs/common"
	"github.com/larderfs/larderfs/disk"
)

func sample(ino common.Inum) *Dinode {
	return &Dinode{
		Mode:      common.ModeRegular | 0644,
		Nlink:     1,
		Uid:       1000,
		Gid:       100,
		Atime:     1700000000,
		Mtime:     1700000001,
		Ctime:     1700000002,
		Size:      42,
		DataBlock: 3 + uint64(ino),
	}
}

func TestEncodeSize(t *testing.T) {
	assert.Equal(t, int(common.InodeSize), len(sample(2).Encode()))
}

func TestTableRoundTrip(t *testing.T) {
	tbl := MkTable(buf.MkStore(disk.NewMemDisk(common.NBlocks)))

	// Every valid slot must round-trip an equal record.
	for ino := common.Inum(1); uint64(ino) <= common.NInodes; ino++ {
		require.NoError(t, tbl.WriteDinode(ino, sample(ino)))
	}
	for ino := common.Inum(1); uint64(ino) <= common.NInodes; ino++ {
		got, err := tbl.ReadDinode(ino)
		require.NoError(t, err)
		assert.Equal(t, sample(ino), got, "inode %d", ino)
	}
}

func TestClearZeroFills(t *testing.T) {
	tbl := MkTable(buf.MkStore(disk.NewMemDisk(common.NBlocks)))
	require.NoError(t, tbl.WriteDinode(5, sample(5)))
	require.NoError(t, tbl.ClearDinode(5))

	got, err := tbl.ReadDinode(5)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	// Neighbors untouched.
	require.NoError(t, tbl.WriteDinode(4, sample(4)))
	require.NoError(t, tbl.ClearDinode(5))
	got, err = tbl.ReadDinode(4)
	require.NoError(t, err)
	assert.Equal(t, sample(4), got)
}

func TestRejectsInumZero(t *testing.T) {
	tbl := MkTable(buf.MkStore(disk.NewMemDisk(common.NBlocks)))
	_, err := tbl.ReadDinode(common.NullInum)
	assert.ErrorIs(t, err, common.ErrInternal)
	assert.ErrorIs(t, tbl.WriteDinode(common.NullInum, sample(1)), common.ErrInternal)
	_, err = tbl.ReadDinode(common.Inum(common.NInodes + 1))
	assert.ErrorIs(t, err, common.ErrInternal)
}

func TestInodeMapping(t *testing.T) {
	di := sample(9)
	ip := MkInode(9, di)
	assert.Equal(t, common.Inum(9), ip.Ino)
	assert.Equal(t, di, ip.Dinode(), "populate then write back is the identity")
	assert.False(t, ip.IsDir())

	ip.Mode = common.ModeDir | 0755
	assert.True(t, ip.IsDir())
}
