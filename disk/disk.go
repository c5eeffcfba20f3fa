// Package disk is the block device underneath the filesystem: fixed-size
// blocks addressed by number, with a barrier for durability.
package disk

import "github.com/larderfs/larderfs/common"

// Block is a BlockSize-byte buffer.
type Block = []byte

const BlockSize uint64 = common.BlockSize

// Disk provides access to a logical block-based device.
//
// All methods expect a < Size(). Errors are surfaced to the caller
// verbatim; no method retries.
type Disk interface {
	// Read reads a disk block by address.
	Read(a uint64) (Block, error)

	// ReadTo reads the disk block at a into b.
	ReadTo(a uint64, b Block) error

	// Write updates a disk block by address.
	Write(a uint64, v Block) error

	// Size reports how big the disk is, in blocks.
	Size() (uint64, error)

	// Barrier ensures data is persisted. When it returns, all
	// outstanding writes are durably on disk.
	Barrier() error

	// Close releases any resources used by the disk.
	Close() error
}
