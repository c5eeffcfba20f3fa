package common

import "errors"

// Every operation either returns its result or exactly one of these
// kinds. I/O errors from the disk layer are surfaced verbatim instead.
var (
	ErrNoSpace        = errors.New("no free inode or data block")
	ErrDirFull        = errors.New("no free directory entry")
	ErrNotFound       = errors.New("no such file or directory")
	ErrExists         = errors.New("file exists")
	ErrNameTooLong    = errors.New("file name too long")
	ErrOutOfRange     = errors.New("offset beyond block size")
	ErrNotPermitted   = errors.New("operation not permitted")
	ErrFormatMismatch = errors.New("not a larderfs image")
	ErrNotDir         = errors.New("not a directory")
	ErrIsDir          = errors.New("is a directory")
	ErrInternal       = errors.New("internal consistency violation")
)
