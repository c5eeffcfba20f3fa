package disk

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

var _ Disk = (*fileDisk)(nil)

// fileDisk is a disk backed by a regular file or block device, accessed
// with pread/pwrite so no seek state is shared.
type fileDisk struct {
	fd        int
	numBlocks uint64
}

func NewFileDisk(path string, numBlocks uint64) (Disk, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT, 0666)
	if err != nil {
		return nil, err
	}
	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		unix.Close(fd)
		return nil, err
	}
	if (stat.Mode&unix.S_IFREG) != 0 && uint64(stat.Size) != numBlocks*BlockSize {
		if err := unix.Ftruncate(fd, int64(numBlocks*BlockSize)); err != nil {
			unix.Close(fd)
			return nil, err
		}
	}
	return &fileDisk{fd: fd, numBlocks: numBlocks}, nil
}

func (d *fileDisk) ReadTo(a uint64, buf Block) error {
	if uint64(len(buf)) != BlockSize {
		return fmt.Errorf("disk: read buffer is not block-sized (%d bytes)", len(buf))
	}
	if a >= d.numBlocks {
		return fmt.Errorf("disk: out-of-bounds read at %d", a)
	}
	_, err := unix.Pread(d.fd, buf, int64(a*BlockSize))
	return err
}

func (d *fileDisk) Read(a uint64) (Block, error) {
	buf := make(Block, BlockSize)
	err := d.ReadTo(a, buf)
	return buf, err
}

func (d *fileDisk) Write(a uint64, v Block) error {
	if uint64(len(v)) != BlockSize {
		return fmt.Errorf("disk: write buffer is not block-sized (%d bytes)", len(v))
	}
	if a >= d.numBlocks {
		return fmt.Errorf("disk: out-of-bounds write at %d", a)
	}
	_, err := unix.Pwrite(d.fd, v, int64(a*BlockSize))
	return err
}

func (d *fileDisk) Size() (uint64, error) {
	return d.numBlocks, nil
}

func (d *fileDisk) Barrier() error {
	return unix.Fsync(d.fd)
}

func (d *fileDisk) Close() error {
	return unix.Close(d.fd)
}

var _ Disk = (*memDisk)(nil)

// memDisk is an in-memory disk for tests.
type memDisk struct {
	l      sync.RWMutex
	blocks []Block
}

func NewMemDisk(numBlocks uint64) Disk {
	blocks := make([]Block, numBlocks)
	for i := range blocks {
		blocks[i] = make(Block, BlockSize)
	}
	return &memDisk{blocks: blocks}
}

func (d *memDisk) ReadTo(a uint64, buf Block) error {
	d.l.RLock()
	defer d.l.RUnlock()
	if a >= uint64(len(d.blocks)) {
		return fmt.Errorf("disk: out-of-bounds read at %d", a)
	}
	copy(buf, d.blocks[a])
	return nil
}

func (d *memDisk) Read(a uint64) (Block, error) {
	buf := make(Block, BlockSize)
	err := d.ReadTo(a, buf)
	return buf, err
}

func (d *memDisk) Write(a uint64, v Block) error {
	if uint64(len(v)) != BlockSize {
		return fmt.Errorf("disk: write buffer is not block-sized (%d bytes)", len(v))
	}
	d.l.Lock()
	defer d.l.Unlock()
	if a >= uint64(len(d.blocks)) {
		return fmt.Errorf("disk: out-of-bounds write at %d", a)
	}
	copy(d.blocks[a], v)
	return nil
}

func (d *memDisk) Size() (uint64, error) {
	return uint64(len(d.blocks)), nil
}

func (d *memDisk) Barrier() error { return nil }

func (d *memDisk) Close() error { return nil }
