// Package fs is the filesystem instance: name resolution and the
// create/unlink/write-back/evict lifecycle over the superblock, the
// inode table, and the root directory block.
//
// Operations are serialized per on-disk block. Every operation acquires
// the block locks it needs in ascending block-number order and holds
// them to completion, so the multi-step sequences over superblock,
// inode table, and directory block never interleave on shared state.
package fs

import (
	"sort"
	"time"

	"github.com/larderfs/larderfs/buf"
	"github.com/larderfs/larderfs/common"
	"github.com/larderfs/larderfs/dir"
	"github.com/larderfs/larderfs/disk"
	"github.com/larderfs/larderfs/file"
	"github.com/larderfs/larderfs/inode"
	"github.com/larderfs/larderfs/lockmap"
	"github.com/larderfs/larderfs/super"
	"github.com/larderfs/larderfs/util"
)

type FileSys struct {
	store *buf.Store
	sb    *super.Super
	tbl   *inode.Table
	eng   *file.Engine
	locks *lockmap.LockMap
}

// Mount opens an existing image. A magic or version mismatch fails
// before anything else is trusted.
func Mount(d disk.Disk) (*FileSys, error) {
	store := buf.MkStore(d)
	sb, err := super.LoadSuper(store)
	if err != nil {
		return nil, err
	}
	tbl := inode.MkTable(store)
	fsys := &FileSys{
		store: store,
		sb:    sb,
		tbl:   tbl,
		eng:   file.MkEngine(store, tbl),
		locks: lockmap.MkLockMap(),
	}
	util.DPrintf(1, "Mount: %d free inodes, %d free data blocks\n",
		sb.NumFreeInodes(), sb.NumFreeDataBlocks())
	return fsys, nil
}

// Super exposes the mounted superblock (for tools and tests).
func (fsys *FileSys) Super() *super.Super {
	return fsys.sb
}

// acquire takes the locks for blks in ascending order and returns the
// ordered list for release.
func (fsys *FileSys) acquire(blks ...common.Bnum) []common.Bnum {
	sort.Slice(blks, func(i, j int) bool { return blks[i] < blks[j] })
	var held []common.Bnum
	for _, b := range blks {
		if len(held) > 0 && held[len(held)-1] == b {
			continue
		}
		fsys.locks.Acquire(b)
		held = append(held, b)
	}
	return held
}

func (fsys *FileSys) release(held []common.Bnum) {
	for i := len(held) - 1; i >= 0; i-- {
		fsys.locks.Release(held[i])
	}
}

func now() uint64 {
	return uint64(time.Now().Unix())
}

// getInode materializes ino's record. Caller holds the inode-table
// lock. The root inode's mode is synthesized as a world-accessible
// directory rather than read from disk, matching the record the
// formatter bootstraps.
func (fsys *FileSys) getInode(ino common.Inum) (*inode.Inode, error) {
	if !fsys.sb.InodeInUse(ino) {
		return nil, common.ErrNotFound
	}
	di, err := fsys.tbl.ReadDinode(ino)
	if err != nil {
		return nil, err
	}
	ip := inode.MkInode(ino, di)
	if ino == common.RootInum {
		ip.Mode = common.ModeDir | 0777
		ip.Size = common.BlockSize
	}
	return ip, nil
}

// GetInode populates an in-memory inode from its on-disk record. This
// is the surface the host inode cache calls on a miss.
func (fsys *FileSys) GetInode(ino common.Inum) (*inode.Inode, error) {
	held := fsys.acquire(common.InodeBlkno)
	defer fsys.release(held)
	return fsys.getInode(ino)
}

// Lookup resolves name inside parent to an in-memory inode. Overlong
// names are rejected before any I/O happens.
func (fsys *FileSys) Lookup(parent *inode.Inode, name string) (*inode.Inode, error) {
	if uint64(len(name)) > common.MaxNameLen {
		return nil, common.ErrNameTooLong
	}
	if !parent.IsDir() {
		return nil, common.ErrNotDir
	}
	held := fsys.acquire(common.InodeBlkno, parent.Datablk)
	defer fsys.release(held)

	db, err := fsys.store.Bread(parent.Datablk)
	if err != nil {
		return nil, err
	}
	ino, ok := dir.Find(db.Data, name)
	if !ok {
		return nil, common.ErrNotFound
	}
	return fsys.getInode(ino)
}

// Create allocates an inode and a data block, writes the new record,
// zeroes the data block, and inserts the directory entry, in that
// order, flushing each structure before touching the next. A full
// directory rolls the allocations back.
func (fsys *FileSys) Create(parent *inode.Inode, name string, mode uint64) (*inode.Inode, error) {
	if uint64(len(name)) > common.MaxNameLen {
		return nil, common.ErrNameTooLong
	}
	if !parent.IsDir() {
		return nil, common.ErrNotDir
	}
	if mode&common.ModeTypeMask == 0 {
		mode |= common.ModeRegular
	}
	held := fsys.acquire(common.SuperBlkno, common.InodeBlkno, parent.Datablk)
	defer fsys.release(held)

	db, err := fsys.store.Bread(parent.Datablk)
	if err != nil {
		return nil, err
	}
	if _, ok := dir.Find(db.Data, name); ok {
		return nil, common.ErrExists
	}

	ino, err := fsys.sb.AllocInode()
	if err != nil {
		return nil, err
	}
	bno, err := fsys.sb.AllocDataBlock()
	if err != nil {
		fsys.sb.FreeInode(ino)
		return nil, err
	}
	util.DPrintf(2, "Create %q: ino %d block %d\n", name, ino, bno)

	t := now()
	di := &inode.Dinode{
		Mode:      mode,
		Nlink:     1,
		Uid:       parent.Uid,
		Gid:       parent.Gid,
		Atime:     t,
		Mtime:     t,
		Ctime:     t,
		Size:      0,
		DataBlock: bno,
	}
	if err := fsys.tbl.WriteDinode(ino, di); err != nil {
		return nil, err
	}

	// Zero the fresh block so stale bytes from a previous owner never
	// become file contents.
	zb := buf.MkBuf(bno, make([]byte, common.BlockSize))
	zb.SetDirty()
	if err := fsys.store.Flush(zb); err != nil {
		return nil, err
	}

	if err := dir.Insert(db.Data, name, ino); err != nil {
		// No free slot: undo the allocations so nothing leaks.
		fsys.tbl.ClearDinode(ino)
		fsys.sb.FreeInodeAndBlock(ino, bno)
		return nil, err
	}
	db.SetDirty()
	if err := fsys.store.Flush(db); err != nil {
		return nil, err
	}
	return inode.MkInode(ino, di), nil
}

// reclaim clears the bitmap bits and zero-fills the record of a fully
// unlinked inode. Callers hold the superblock and inode-table locks.
// A slot that is already free is left alone, so the unlink and evict
// paths cannot double-reclaim.
func (fsys *FileSys) reclaim(ino common.Inum, bno common.Bnum) error {
	if !fsys.sb.InodeInUse(ino) {
		return nil
	}
	if err := fsys.sb.FreeInodeAndBlock(ino, bno); err != nil {
		return err
	}
	util.DPrintf(2, "reclaim: ino %d block %d\n", ino, bno)
	return fsys.tbl.ClearDinode(ino)
}

// Unlink removes name from parent and decrements the target's link
// count, on disk and in the cached representation ip if the caller
// holds one (ip may be nil). At link count zero the inode and its data
// block are reclaimed.
func (fsys *FileSys) Unlink(parent *inode.Inode, name string, ip *inode.Inode) error {
	if uint64(len(name)) > common.MaxNameLen {
		return common.ErrNameTooLong
	}
	if !parent.IsDir() {
		return common.ErrNotDir
	}
	held := fsys.acquire(common.SuperBlkno, common.InodeBlkno, parent.Datablk)
	defer fsys.release(held)

	db, err := fsys.store.Bread(parent.Datablk)
	if err != nil {
		return err
	}
	ino, ok := dir.Find(db.Data, name)
	if !ok {
		return common.ErrNotFound
	}
	if ip != nil && ip.Ino != ino {
		return common.ErrInternal
	}
	if err := dir.Remove(db.Data, name); err != nil {
		return err
	}
	db.SetDirty()
	if err := fsys.store.Flush(db); err != nil {
		return err
	}

	di, err := fsys.tbl.ReadDinode(ino)
	if err != nil {
		return err
	}
	di.Nlink--
	di.Ctime = now()
	if err := fsys.tbl.WriteDinode(ino, di); err != nil {
		return err
	}
	if ip != nil {
		ip.Nlink = di.Nlink
		ip.Ctime = di.Ctime
	}
	util.DPrintf(2, "Unlink %q: ino %d nlink %d\n", name, ino, di.Nlink)

	if di.Nlink != 0 {
		return nil
	}
	return fsys.reclaim(ino, di.DataBlock)
}

// WriteBack copies the in-memory representation into the on-disk
// record and persists it, called when the host cache flushes a dirty
// inode.
func (fsys *FileSys) WriteBack(ip *inode.Inode) error {
	held := fsys.acquire(common.InodeBlkno)
	defer fsys.release(held)
	return fsys.tbl.WriteDinode(ip.Ino, ip.Dinode())
}

// Evict runs when the host cache drops its last reference to an inode
// whose link count already reached zero, and reclaims the on-disk slot
// if unlink has not done so. Evicting a still-linked inode is an
// internal-consistency violation.
func (fsys *FileSys) Evict(ip *inode.Inode) error {
	if ip.Nlink != 0 {
		return common.ErrInternal
	}
	held := fsys.acquire(common.SuperBlkno, common.InodeBlkno)
	defer fsys.release(held)
	return fsys.reclaim(ip.Ino, ip.Datablk)
}

// Read and Write transfer file bytes, clipped to the single-block
// range; directories are not readable this way.

func (fsys *FileSys) Read(ip *inode.Inode, off uint64, dst []byte) (uint64, error) {
	if ip.IsDir() {
		return 0, common.ErrIsDir
	}
	held := fsys.acquire(ip.Datablk)
	defer fsys.release(held)
	return fsys.eng.Read(ip, off, dst)
}

func (fsys *FileSys) Write(ip *inode.Inode, off uint64, src []byte, appendMode bool) (uint64, error) {
	if ip.IsDir() {
		return 0, common.ErrIsDir
	}
	held := fsys.acquire(common.InodeBlkno, ip.Datablk)
	defer fsys.release(held)
	return fsys.eng.Write(ip, off, src, appendMode)
}
