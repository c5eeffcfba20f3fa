package fs

import (
	"github.com/larderfs/larderfs/common"
	"github.com/larderfs/larderfs/inode"
)

// The format has a single root directory and link counting only, so
// every structural operation below is a deliberate no-op. These are
// format limitations, not omissions.

func (fsys *FileSys) Mkdir(parent *inode.Inode, name string, mode uint64) error {
	return common.ErrNotPermitted
}

func (fsys *FileSys) Rmdir(parent *inode.Inode, name string) error {
	return common.ErrNotPermitted
}

func (fsys *FileSys) Link(old *inode.Inode, parent *inode.Inode, name string) error {
	return common.ErrNotPermitted
}

func (fsys *FileSys) Symlink(parent *inode.Inode, name string, target string) error {
	return common.ErrNotPermitted
}

func (fsys *FileSys) Readlink(ip *inode.Inode) (string, error) {
	return "", common.ErrNotPermitted
}
