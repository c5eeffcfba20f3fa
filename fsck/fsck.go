// Package fsck cross-checks the on-disk structures (superblock
// bitmaps, inode table, directory entries) against each other. The
// filesystem core flushes each block synchronously but has no
// multi-block atomicity, so a crash between the steps of create or
// unlink can leave them disagreeing; this checker is the tool that
// finds the damage. It only reads.
package fsck

import (
	"fmt"

	"github.com/larderfs/larderfs/alloc"
	"github.com/larderfs/larderfs/common"
	"github.com/larderfs/larderfs/dir"
	"github.com/larderfs/larderfs/disk"
	"github.com/larderfs/larderfs/inode"
	"github.com/larderfs/larderfs/super"
)

// Report collects everything wrong with an image.
type Report struct {
	Problems []string
}

func (r *Report) Ok() bool {
	return len(r.Problems) == 0
}

func (r *Report) addf(format string, a ...interface{}) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, a...))
}

// Check examines the image on d. The returned error covers I/O failures
// only; format damage lands in the report.
func Check(d disk.Disk) (*Report, error) {
	r := &Report{}

	sbBlk, err := d.Read(common.SuperBlkno)
	if err != nil {
		return nil, err
	}
	sb := super.Decode(sbBlk)
	if sb.Magic != common.Magic {
		r.addf("bad magic 0x%x (want 0x%x)", sb.Magic, common.Magic)
		return r, nil
	}
	if sb.Version != common.Version {
		r.addf("unsupported version %d (want %d)", sb.Version, common.Version)
		return r, nil
	}
	inoBits := alloc.MkBitmap(sb.FreeInode, common.NInodes)
	dataBits := alloc.MkBitmap(sb.FreeData, common.NBlocks)

	for bno := common.SuperBlkno; bno <= common.RootDataBlkno; bno++ {
		if !dataBits.IsSet(bno) {
			r.addf("reserved block %d is marked free", bno)
		}
	}

	tblBlk, err := d.Read(common.InodeBlkno)
	if err != nil {
		return nil, err
	}
	live := make(map[common.Inum]*inode.Dinode)
	owner := make(map[common.Bnum]common.Inum)
	for slot := uint64(0); slot < common.NInodes; slot++ {
		ino := common.Inum(slot + 1)
		di := inode.Decode(tblBlk[slot*common.InodeSize : (slot+1)*common.InodeSize])
		used := inoBits.IsSet(slot)
		if used && di.IsZero() {
			r.addf("inode %d: bit set but record is zero", ino)
			continue
		}
		if !used {
			if !di.IsZero() {
				r.addf("inode %d: record present but bit is clear", ino)
			}
			continue
		}
		live[ino] = di

		wantMin := common.Bnum(3)
		if ino == common.RootInum {
			wantMin = common.RootDataBlkno
		}
		if di.DataBlock < wantMin || di.DataBlock >= common.NBlocks {
			r.addf("inode %d: data block %d out of range", ino, di.DataBlock)
			continue
		}
		if prev, taken := owner[di.DataBlock]; taken {
			r.addf("block %d owned by both inode %d and inode %d", di.DataBlock, prev, ino)
			continue
		}
		owner[di.DataBlock] = ino
		if !dataBits.IsSet(di.DataBlock) {
			r.addf("inode %d: owns block %d but its bit is clear", ino, di.DataBlock)
		}
	}

	for bno := common.Bnum(3); bno < common.NBlocks; bno++ {
		if dataBits.IsSet(bno) && owner[bno] == common.NullInum {
			r.addf("block %d: bit set but no inode owns it", bno)
		}
	}

	rootDi, rootLive := live[common.RootInum]
	if !rootLive {
		r.addf("root inode is not allocated")
		return r, nil
	}
	dirBlk, err := d.Read(rootDi.DataBlock)
	if err != nil {
		return nil, err
	}

	refs := make(map[common.Inum]uint64)
	seen := make(map[string]bool)
	it := dir.MkIter(dirBlk, 0)
	for {
		e, _, ok := it.Next()
		if !ok {
			break
		}
		if seen[e.Name] {
			r.addf("directory: duplicate entry %q", e.Name)
		}
		seen[e.Name] = true
		if e.Inum == common.NullInum || uint64(e.Inum) > common.NInodes {
			r.addf("directory: entry %q has invalid inode %d", e.Name, e.Inum)
			continue
		}
		if _, ok := live[e.Inum]; !ok {
			r.addf("directory: entry %q points at free inode %d", e.Name, e.Inum)
			continue
		}
		refs[e.Inum]++
	}

	for ino, di := range live {
		if ino == common.RootInum {
			continue
		}
		if di.Nlink != refs[ino] {
			r.addf("inode %d: nlink %d but %d directory references", ino, di.Nlink, refs[ino])
		}
	}
	return r, nil
}
