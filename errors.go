package virtfs

import "errors"

// Operation failures reported across the API boundary. Every mutating
// operation either commits completely or frees what it provisionally
// allocated before returning one of these; Append alone may commit a
// prefix and report how much (see Append). Backing-store I/O errors
// are not represented here: the disk layer treats them as fatal and
// panics, since engine invariants cannot be trusted past a failed
// read or write.
var (
	ErrNotFound        = errors.New("no such file or directory")
	ErrExists          = errors.New("name already exists")
	ErrNotDir          = errors.New("not a directory")
	ErrIsDir           = errors.New("is a directory")
	ErrNotEmpty        = errors.New("directory not empty")
	ErrOutOfInodes     = errors.New("out of inodes")
	ErrOutOfDataBlocks = errors.New("out of data blocks")
	ErrFileTooLarge    = errors.New("file too large")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrRootRemoval     = errors.New("cannot remove root directory")
	ErrDirFull         = errors.New("directory full")
	ErrBadVolume       = errors.New("volume too small")
)
