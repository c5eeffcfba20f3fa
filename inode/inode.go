// Package inode manages block 1, the inode table: a fixed array of
// on-disk inode records indexed by inode number, plus the in-memory
// representation handed to the host's inode cache.
package inode

import (
	"github.com/tchajed/marshal"

	"github.com/larderfs/larderfs/buf"
	"github.com/larderfs/larderfs/common"
	"github.com/larderfs/larderfs/util"
)

// Dinode is the on-disk inode record. All fields are 64-bit
// little-endian on disk; the record is padded to common.InodeSize.
type Dinode struct {
	Mode      uint64
	Nlink     uint64
	Uid       uint64
	Gid       uint64
	Atime     uint64 // unix seconds
	Mtime     uint64
	Ctime     uint64
	Size      uint64
	DataBlock common.Bnum
}

func (di *Dinode) Encode() []byte {
	enc := marshal.NewEnc(common.InodeSize)
	enc.PutInt(di.Mode)
	enc.PutInt(di.Nlink)
	enc.PutInt(di.Uid)
	enc.PutInt(di.Gid)
	enc.PutInt(di.Atime)
	enc.PutInt(di.Mtime)
	enc.PutInt(di.Ctime)
	enc.PutInt(di.Size)
	enc.PutInt(di.DataBlock)
	return enc.Finish()
}

func Decode(rec []byte) *Dinode {
	dec := marshal.NewDec(rec)
	return &Dinode{
		Mode:      dec.GetInt(),
		Nlink:     dec.GetInt(),
		Uid:       dec.GetInt(),
		Gid:       dec.GetInt(),
		Atime:     dec.GetInt(),
		Mtime:     dec.GetInt(),
		Ctime:     dec.GetInt(),
		Size:      dec.GetInt(),
		DataBlock: dec.GetInt(),
	}
}

// IsZero reports whether the record is a cleared slot.
func (di *Dinode) IsZero() bool {
	return *di == Dinode{}
}

// Table reads and writes inode records by direct slot offset into the
// inode-table block. Slot index = inode number - 1. Every mutation
// flushes the block before returning.
type Table struct {
	store *buf.Store
}

func MkTable(store *buf.Store) *Table {
	return &Table{store: store}
}

func slotOff(ino common.Inum) uint64 {
	return (uint64(ino) - 1) * common.InodeSize
}

func checkInum(ino common.Inum) error {
	if ino == common.NullInum || uint64(ino) > common.NInodes {
		return common.ErrInternal
	}
	return nil
}

func (tbl *Table) ReadDinode(ino common.Inum) (*Dinode, error) {
	if err := checkInum(ino); err != nil {
		return nil, err
	}
	b, err := tbl.store.Bread(common.InodeBlkno)
	if err != nil {
		return nil, err
	}
	off := slotOff(ino)
	return Decode(b.Data[off : off+common.InodeSize]), nil
}

func (tbl *Table) WriteDinode(ino common.Inum, di *Dinode) error {
	if err := checkInum(ino); err != nil {
		return err
	}
	b, err := tbl.store.Bread(common.InodeBlkno)
	if err != nil {
		return err
	}
	off := slotOff(ino)
	copy(b.Data[off:off+common.InodeSize], di.Encode())
	b.SetDirty()
	util.DPrintf(5, "WriteDinode %d: %v\n", ino, di)
	return tbl.store.Flush(b)
}

// ClearDinode zero-fills ino's slot.
func (tbl *Table) ClearDinode(ino common.Inum) error {
	return tbl.WriteDinode(ino, &Dinode{})
}

// Inode is the in-memory representation owned by the host inode cache.
// Ino is the back-reference used to find the on-disk record again;
// Datablk is cached from the record at materialization time.
type Inode struct {
	Ino     common.Inum
	Mode    uint64
	Nlink   uint64
	Uid     uint64
	Gid     uint64
	Atime   uint64
	Mtime   uint64
	Ctime   uint64
	Size    uint64
	Datablk common.Bnum
}

// MkInode materializes the in-memory form of an on-disk record.
func MkInode(ino common.Inum, di *Dinode) *Inode {
	return &Inode{
		Ino:     ino,
		Mode:    di.Mode,
		Nlink:   di.Nlink,
		Uid:     di.Uid,
		Gid:     di.Gid,
		Atime:   di.Atime,
		Mtime:   di.Mtime,
		Ctime:   di.Ctime,
		Size:    di.Size,
		Datablk: di.DataBlock,
	}
}

// Dinode maps the in-memory form back to its on-disk record.
func (ip *Inode) Dinode() *Dinode {
	return &Dinode{
		Mode:      ip.Mode,
		Nlink:     ip.Nlink,
		Uid:       ip.Uid,
		Gid:       ip.Gid,
		Atime:     ip.Atime,
		Mtime:     ip.Mtime,
		Ctime:     ip.Ctime,
		Size:      ip.Size,
		DataBlock: ip.Datablk,
	}
}

// IsDir selects the directory arm of the two inode kinds; everything
// else is a regular file.
func (ip *Inode) IsDir() bool {
	return ip.Mode&common.ModeTypeMask == common.ModeDir
}
