// Package dir is the codec for a directory's single data block: a
// packed array of fixed-size entries with a tombstone flag. A deleted
// entry leaves a hole that later inserts reuse; slot order is the
// iteration order. There is no free-list bookkeeping, so every
// operation is a linear scan over at most MaxChildren slots.
package dir

import (
	"github.com/tchajed/marshal"

	"github.com/larderfs/larderfs/common"
)

// Entry is one live (name, inode) pair.
type Entry struct {
	Name string
	Inum common.Inum
}

type dentry struct {
	inum   common.Inum
	active bool
	name   []byte // common.FilenameSize wide, zero padded
}

func decodeSlot(blk []byte, i uint64) dentry {
	dec := marshal.NewDec(blk[i*common.DirentSize : (i+1)*common.DirentSize])
	inum := common.Inum(dec.GetInt())
	active := dec.GetBytes(1)[0] != 0
	name := dec.GetBytes(common.FilenameSize)
	return dentry{inum: inum, active: active, name: name}
}

func encodeSlot(blk []byte, i uint64, de dentry) {
	enc := marshal.NewEnc(common.DirentSize)
	enc.PutInt(uint64(de.inum))
	flag := byte(0)
	if de.active {
		flag = 1
	}
	enc.PutBytes([]byte{flag})
	enc.PutBytes(de.name)
	copy(blk[i*common.DirentSize:(i+1)*common.DirentSize], enc.Finish())
}

// clip bounds a name to the fixed filename field: truncated if long,
// zero padded if short. A full-width name carries no NUL terminator.
func clip(name string) []byte {
	buf := make([]byte, common.FilenameSize)
	copy(buf, name)
	return buf
}

// storedName recovers the name from a fixed-width field.
func storedName(field []byte) string {
	n := len(field)
	for i, c := range field {
		if c == 0 {
			n = i
			break
		}
	}
	return string(field[:n])
}

func match(de dentry, name string) bool {
	return de.active && string(de.name) == string(clip(name))
}

// Find returns the inode number of the first active entry matching
// name, or (NullInum, false).
func Find(blk []byte, name string) (common.Inum, bool) {
	for i := uint64(0); i < common.MaxChildren; i++ {
		if de := decodeSlot(blk, i); match(de, name) {
			return de.inum, true
		}
	}
	return common.NullInum, false
}

// Insert writes (name, inum) into the first inactive slot, truncating
// or padding name to the fixed field width. ErrDirFull when every slot
// is active. Duplicate detection is the caller's job.
func Insert(blk []byte, name string, inum common.Inum) error {
	for i := uint64(0); i < common.MaxChildren; i++ {
		if decodeSlot(blk, i).active {
			continue
		}
		encodeSlot(blk, i, dentry{inum: inum, active: true, name: clip(name)})
		return nil
	}
	return common.ErrDirFull
}

// Remove zero-fills the slot of the first active entry matching name,
// clearing the active flag as a side effect.
func Remove(blk []byte, name string) error {
	for i := uint64(0); i < common.MaxChildren; i++ {
		if match(decodeSlot(blk, i), name) {
			encodeSlot(blk, i, dentry{name: make([]byte, common.FilenameSize)})
			return nil
		}
	}
	return common.ErrNotFound
}

// NumActive counts live entries.
func NumActive(blk []byte) uint64 {
	var n uint64
	for i := uint64(0); i < common.MaxChildren; i++ {
		if decodeSlot(blk, i).active {
			n++
		}
	}
	return n
}

// Iter walks active entries in slot order. It is finite and restarts
// from the given slot, so a caller can stop early and resume with the
// position a previous Next returned.
type Iter struct {
	blk []byte
	pos uint64
}

func MkIter(blk []byte, pos uint64) *Iter {
	return &Iter{blk: blk, pos: pos}
}

// Next yields the next active entry and the slot after it.
func (it *Iter) Next() (Entry, uint64, bool) {
	for ; it.pos < common.MaxChildren; it.pos++ {
		de := decodeSlot(it.blk, it.pos)
		if !de.active {
			continue
		}
		it.pos++
		return Entry{Name: storedName(de.name), Inum: de.inum}, it.pos, true
	}
	return Entry{}, it.pos, false
}
