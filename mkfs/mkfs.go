// Package mkfs writes a fresh larderfs image: superblock, a root inode,
// an empty root directory, and zeroed data blocks. Formatting is a
// tool-side job; the filesystem core only ever opens images this
// package (or a compatible formatter) produced.
package mkfs

import (
	"time"

	"github.com/larderfs/larderfs/buf"
	"github.com/larderfs/larderfs/common"
	"github.com/larderfs/larderfs/disk"
	"github.com/larderfs/larderfs/inode"
	"github.com/larderfs/larderfs/super"
)

// Format writes a fresh filesystem onto d, which must hold at least
// common.NBlocks blocks. Existing contents are destroyed.
func Format(d disk.Disk) error {
	sz, err := d.Size()
	if err != nil {
		return err
	}
	if sz < common.NBlocks {
		return common.ErrNoSpace
	}
	store := buf.MkStore(d)

	// Root directory block and all file data blocks start zeroed.
	for bno := common.RootDataBlkno; bno < common.NBlocks; bno++ {
		b := buf.MkBuf(bno, make([]byte, common.BlockSize))
		b.SetDirty()
		if err := store.Flush(b); err != nil {
			return err
		}
	}

	// Inode table: the root record in slot 0, the rest zero-filled.
	now := uint64(time.Now().Unix())
	root := &inode.Dinode{
		Mode:      common.ModeDir | 0777,
		Nlink:     2,
		Atime:     now,
		Mtime:     now,
		Ctime:     now,
		Size:      common.BlockSize,
		DataBlock: common.RootDataBlkno,
	}
	tblBlk := make([]byte, common.BlockSize)
	copy(tblBlk[:common.InodeSize], root.Encode())
	tb := buf.MkBuf(common.InodeBlkno, tblBlk)
	tb.SetDirty()
	if err := store.Flush(tb); err != nil {
		return err
	}

	// Superblock last, so a crash mid-format leaves no valid magic.
	sb := buf.MkBuf(common.SuperBlkno, super.MkSb().Encode())
	sb.SetDirty()
	return store.Flush(sb)
}
