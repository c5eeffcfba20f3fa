// Package file reads and writes a file's single data block. A file's
// addressable range is exactly [0, BlockSize): there is no block
// growth, so transfers are clipped and short counts are normal.
package file

import (
	"github.com/larderfs/larderfs/buf"
	"github.com/larderfs/larderfs/common"
	"github.com/larderfs/larderfs/inode"
	"github.com/larderfs/larderfs/util"
)

type Engine struct {
	store *buf.Store
	tbl   *inode.Table
}

func MkEngine(store *buf.Store, tbl *inode.Table) *Engine {
	return &Engine{store: store, tbl: tbl}
}

// Read copies up to len(dst) bytes starting at off into dst and returns
// the count. off == BlockSize is a clean EOF (zero bytes); anything
// past that is ErrOutOfRange. The requested length is clipped so that
// off+len never exceeds the block.
func (e *Engine) Read(ip *inode.Inode, off uint64, dst []byte) (uint64, error) {
	if off == common.BlockSize {
		return 0, nil
	}
	if off > common.BlockSize {
		return 0, common.ErrOutOfRange
	}
	n := util.Min(uint64(len(dst)), common.BlockSize-off)
	b, err := e.store.Bread(ip.Datablk)
	if err != nil {
		return 0, err
	}
	copy(dst[:n], b.Data[off:off+n])
	util.DPrintf(5, "Read ino %d off %d -> %d bytes\n", ip.Ino, off, n)
	return n, nil
}

// Write copies up to len(src) bytes from src into the block at off and
// returns the count, clipped the same way as Read. Append mode forces
// off to the current size. Offsets past the current size are rejected;
// gaps cannot exist under this policy, so nothing is ever zero-filled
// here. A write that extends the file persists the record's new size.
func (e *Engine) Write(ip *inode.Inode, off uint64, src []byte, appendMode bool) (uint64, error) {
	if appendMode {
		off = ip.Size
	}
	if off > ip.Size {
		return 0, common.ErrOutOfRange
	}
	n := util.Min(uint64(len(src)), common.BlockSize-off)
	if n == 0 {
		return 0, nil
	}
	b, err := e.store.Bread(ip.Datablk)
	if err != nil {
		return 0, err
	}
	copy(b.Data[off:off+n], src[:n])
	b.SetDirty()
	if err := e.store.Flush(b); err != nil {
		return 0, err
	}
	if off+n > ip.Size {
		ip.Size = off + n
		if err := e.tbl.WriteDinode(ip.Ino, ip.Dinode()); err != nil {
			return 0, err
		}
	}
	util.DPrintf(5, "Write ino %d off %d -> %d bytes\n", ip.Ino, off, n)
	return n, nil
}
