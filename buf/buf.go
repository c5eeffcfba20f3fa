// Package buf provides borrowed disk blocks with a dirty flag, and the
// Store that hands them out and flushes them back.
//
// The mutation discipline throughout the filesystem is
// read-modify-SetDirty-Flush: a caller borrows a block's bytes for the
// duration of one operation, mutates fields in place, and flushes the
// block synchronously before the operation returns.
package buf

import (
	"github.com/larderfs/larderfs/common"
	"github.com/larderfs/larderfs/disk"
	"github.com/larderfs/larderfs/util"
)

// A Buf is one borrowed disk block.
type Buf struct {
	Blkno common.Bnum
	Data  disk.Block
	dirty bool
}

func MkBuf(blkno common.Bnum, data disk.Block) *Buf {
	return &Buf{Blkno: blkno, Data: data}
}

func (b *Buf) IsDirty() bool {
	return b.dirty
}

func (b *Buf) SetDirty() {
	b.dirty = true
}

// Store reads and flushes whole blocks on a Disk.
type Store struct {
	d disk.Disk
}

func MkStore(d disk.Disk) *Store {
	return &Store{d: d}
}

// Bread borrows block blkno.
func (s *Store) Bread(blkno common.Bnum) (*Buf, error) {
	data, err := s.d.Read(blkno)
	if err != nil {
		return nil, err
	}
	util.DPrintf(10, "Bread %d\n", blkno)
	return MkBuf(blkno, data), nil
}

// Flush writes b back and issues a barrier. A clean buf is a no-op.
func (s *Store) Flush(b *Buf) error {
	if !b.dirty {
		return nil
	}
	if err := s.d.Write(b.Blkno, b.Data); err != nil {
		return err
	}
	if err := s.d.Barrier(); err != nil {
		return err
	}
	util.DPrintf(10, "Flush %d\n", b.Blkno)
	b.dirty = false
	return nil
}
