// Package common holds the larderfs format constants and the integer
// types shared by every layer.
package common

// Inum is a 1-based inode number. 0 means "no inode" and is what
// fallible lookups return on failure.
type Inum uint64

// Bnum is an absolute disk block number.
type Bnum = uint64

const (
	NullInum Inum = 0
	RootInum Inum = 1
)

const (
	// BlockSize is the unit of all I/O in this format.
	BlockSize uint64 = 4096

	Magic   uint64 = 0x4c415244 // "LARD"
	Version uint64 = 1

	// Fixed block layout.
	SuperBlkno    Bnum = 0
	InodeBlkno    Bnum = 1
	RootDataBlkno Bnum = 2

	// InodeSize is the on-disk size of one inode record. The inode
	// table is a single block, so this bounds the number of inodes.
	InodeSize uint64 = 128
	NInodes   uint64 = BlockSize / InodeSize

	// NBlocks is the total image size: the three reserved blocks plus
	// one data block per inode slot.
	NBlocks uint64 = 3 + NInodes

	// DirentSize is the on-disk size of one directory entry.
	DirentSize  uint64 = 128
	MaxChildren uint64 = BlockSize / DirentSize

	// FilenameSize is the fixed width of the dentry name buffer. A
	// name of exactly this length is stored with no NUL terminator.
	FilenameSize uint64 = DirentSize - 8 - 1
	MaxNameLen   uint64 = FilenameSize

	// BitmapSize is the byte width of each superblock bitmap.
	BitmapSize uint64 = 8
)

// Mode bits. Only the type bits matter to this core; permission bits are
// carried verbatim.
const (
	ModeTypeMask uint64 = 0170000
	ModeDir      uint64 = 0040000
	ModeRegular  uint64 = 0100000
)
