package fs_test

import (
	"errors"

	"github.com/larderfs/larderfs/disk"
)

// countingDisk counts block reads, to show an operation did no I/O.
type countingDisk struct {
	disk.Disk
	reads int
}

func (d *countingDisk) Read(a uint64) (disk.Block, error) {
	d.reads++
	return d.Disk.Read(a)
}

func (d *countingDisk) ReadTo(a uint64, b disk.Block) error {
	d.reads++
	return d.Disk.ReadTo(a, b)
}

var errInjected = errors.New("injected disk failure")

// faultDisk fails every access once tripped.
type faultDisk struct {
	disk.Disk
	tripped bool
}

func (d *faultDisk) Read(a uint64) (disk.Block, error) {
	if d.tripped {
		return nil, errInjected
	}
	return d.Disk.Read(a)
}

func (d *faultDisk) ReadTo(a uint64, b disk.Block) error {
	if d.tripped {
		return errInjected
	}
	return d.Disk.ReadTo(a, b)
}

func (d *faultDisk) Write(a uint64, v disk.Block) error {
	if d.tripped {
		return errInjected
	}
	return d.Disk.Write(a, v)
}
