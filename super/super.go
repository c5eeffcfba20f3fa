// Package super owns block 0: the format identity and the two
// free-space bitmaps, with allocation that persists the superblock
// synchronously on every mutation.
package super

import (
	"sync"

	"github.com/tchajed/marshal"

	"github.com/larderfs/larderfs/alloc"
	"github.com/larderfs/larderfs/buf"
	"github.com/larderfs/larderfs/common"
	"github.com/larderfs/larderfs/util"
)

// Sb is the superblock as serialized on disk: version, magic, the two
// bitmaps, and zero padding to the block size.
//
// free_inodes bit i covers inode number i+1 (inode 0 is the error
// sentinel and owns no bit). free_data_blocks bit i covers absolute
// block number i; the reserved blocks 0..2 have their bits set at
// format time.
type Sb struct {
	Version   uint64
	Magic     uint64
	FreeInode []byte
	FreeData  []byte
}

func (sb *Sb) Encode() []byte {
	enc := marshal.NewEnc(common.BlockSize)
	enc.PutInt(sb.Version)
	enc.PutInt(sb.Magic)
	enc.PutBytes(sb.FreeInode)
	enc.PutBytes(sb.FreeData)
	return enc.Finish()
}

func Decode(blk []byte) *Sb {
	dec := marshal.NewDec(blk)
	return &Sb{
		Version:   dec.GetInt(),
		Magic:     dec.GetInt(),
		FreeInode: dec.GetBytes(common.BitmapSize),
		FreeData:  dec.GetBytes(common.BitmapSize),
	}
}

// MkSb builds a fresh superblock: root inode allocated, reserved blocks
// marked used, everything else free.
func MkSb() *Sb {
	sb := &Sb{
		Version:   common.Version,
		Magic:     common.Magic,
		FreeInode: make([]byte, common.BitmapSize),
		FreeData:  make([]byte, common.BitmapSize),
	}
	alloc.MkBitmap(sb.FreeInode, common.NInodes).MarkUsed(uint64(common.RootInum) - 1)
	data := alloc.MkBitmap(sb.FreeData, common.NBlocks)
	data.MarkUsed(common.SuperBlkno)
	data.MarkUsed(common.InodeBlkno)
	data.MarkUsed(common.RootDataBlkno)
	return sb
}

// Super is the mounted superblock. Bitmap mutations are serialized by
// an internal mutex and flushed to disk before returning.
type Super struct {
	mu     sync.Mutex
	store  *buf.Store
	sb     *Sb
	inodes *alloc.Bitmap
	data   *alloc.Bitmap
}

// LoadSuper reads and validates block 0. A magic or version mismatch is
// a fatal "not this format" error.
func LoadSuper(store *buf.Store) (*Super, error) {
	b, err := store.Bread(common.SuperBlkno)
	if err != nil {
		return nil, err
	}
	sb := Decode(b.Data)
	if sb.Magic != common.Magic || sb.Version != common.Version {
		util.DPrintf(1, "LoadSuper: magic 0x%x version %d\n", sb.Magic, sb.Version)
		return nil, common.ErrFormatMismatch
	}
	return &Super{
		store:  store,
		sb:     sb,
		inodes: alloc.MkBitmap(sb.FreeInode, common.NInodes),
		data:   alloc.MkBitmap(sb.FreeData, common.NBlocks),
	}, nil
}

// persist writes the superblock back. Caller holds mu.
func (s *Super) persist() error {
	b := buf.MkBuf(common.SuperBlkno, s.sb.Encode())
	b.SetDirty()
	return s.store.Flush(b)
}

// AllocInode reserves the lowest free inode slot and persists the
// bitmap before returning the 1-based inode number.
func (s *Super) AllocInode() (common.Inum, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bit, ok := s.inodes.FindFree()
	if !ok {
		return common.NullInum, common.ErrNoSpace
	}
	s.inodes.MarkUsed(bit)
	if err := s.persist(); err != nil {
		s.inodes.Clear(bit)
		return common.NullInum, err
	}
	ino := common.Inum(bit + 1)
	util.DPrintf(5, "AllocInode: %d\n", ino)
	return ino, nil
}

// AllocDataBlock reserves the lowest free data block. The reserved
// blocks 0..2 never come back because their bits are set at format time.
func (s *Super) AllocDataBlock() (common.Bnum, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bit, ok := s.data.FindFree()
	if !ok {
		return 0, common.ErrNoSpace
	}
	s.data.MarkUsed(bit)
	if err := s.persist(); err != nil {
		s.data.Clear(bit)
		return 0, err
	}
	util.DPrintf(5, "AllocDataBlock: %d\n", bit)
	return common.Bnum(bit), nil
}

func (s *Super) FreeInode(ino common.Inum) error {
	if ino == common.NullInum || uint64(ino) > common.NInodes {
		return common.ErrInternal
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inodes.Clear(uint64(ino) - 1)
	return s.persist()
}

func (s *Super) FreeDataBlock(bno common.Bnum) error {
	if bno < 3 || bno >= common.NBlocks {
		return common.ErrInternal
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Clear(bno)
	return s.persist()
}

// FreeInodeAndBlock clears an inode bit and its owned data-block bit
// together, persisting the superblock once. This is the reclaim step of
// a full delete.
func (s *Super) FreeInodeAndBlock(ino common.Inum, bno common.Bnum) error {
	if ino == common.NullInum || uint64(ino) > common.NInodes {
		return common.ErrInternal
	}
	if bno < 3 || bno >= common.NBlocks {
		return common.ErrInternal
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inodes.Clear(uint64(ino) - 1)
	s.data.Clear(bno)
	return s.persist()
}

// InodeInUse reports whether ino's bit is set, treating out-of-range
// numbers as free.
func (s *Super) InodeInUse(ino common.Inum) bool {
	if ino == common.NullInum || uint64(ino) > common.NInodes {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inodes.IsSet(uint64(ino) - 1)
}

func (s *Super) NumFreeInodes() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inodes.NumFree()
}

func (s *Super) NumFreeDataBlocks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.NumFree()
}
