package fs

import (
	"github.com/larderfs/larderfs/common"
	"github.com/larderfs/larderfs/dir"
	"github.com/larderfs/larderfs/inode"
)

// Directory enumeration uses an opaque position cursor so a caller can
// stop and resume. Positions 0 and 1 are the synthetic "." and ".."
// entries; position 2+i is directory slot i; any position past the last
// slot (including the sentinel a full pass leaves behind) means done.

const doneCursor = common.MaxChildren + 3

// ReadDirent returns the entry at or after pos, the cursor to resume
// from, and whether an entry was produced.
func (fsys *FileSys) ReadDirent(dp *inode.Inode, pos uint64) (dir.Entry, uint64, bool, error) {
	if !dp.IsDir() {
		return dir.Entry{}, pos, false, common.ErrNotDir
	}
	switch pos {
	case 0:
		return dir.Entry{Name: ".", Inum: dp.Ino}, 1, true, nil
	case 1:
		// The namespace is flat, so the root is its own parent.
		return dir.Entry{Name: "..", Inum: common.RootInum}, 2, true, nil
	}
	if pos-2 >= common.MaxChildren {
		return dir.Entry{}, doneCursor, false, nil
	}

	held := fsys.acquire(dp.Datablk)
	defer fsys.release(held)
	db, err := fsys.store.Bread(dp.Datablk)
	if err != nil {
		return dir.Entry{}, pos, false, err
	}
	e, next, ok := dir.MkIter(db.Data, pos-2).Next()
	if !ok {
		return dir.Entry{}, doneCursor, false, nil
	}
	return e, next + 2, true, nil
}
