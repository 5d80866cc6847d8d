package dir

import "errors"

var (
	// ErrFull: every slot in every direct block is live and the inode
	// has no pointer left for another block.
	ErrFull = errors.New("directory full")
	// ErrNoSpace: the data-block allocator is exhausted.
	ErrNoSpace = errors.New("out of data blocks")
)
