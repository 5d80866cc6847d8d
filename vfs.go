// Package virtfs implements a minimal Unix-style filesystem stored in
// a single flat backing store addressed in 4096-byte blocks: an inode
// table, two allocation bitmaps, and hard-linked directories of
// fixed-size entries.
package virtfs

import (
	"github.com/mit-pdos/go-journal/util"
	"github.com/tchajed/goose/machine/disk"

	"github.com/virtfs/virtfs/common"
	"github.com/virtfs/virtfs/fstate"
	"github.com/virtfs/virtfs/super"
)

// Vfs is a mounted volume. All mutable process state lives here: the
// bitmap mirrors (inside fs) and the current-directory pointer used to
// resolve relative paths. One Vfs serves one caller at a time; there
// is no locking and no background activity.
type Vfs struct {
	fs  *fstate.FsState
	cwd common.Inum
}

// Mount reads the superblock and bitmaps from d. The volume must have
// been formatted (see Format).
func Mount(d disk.Disk) *Vfs {
	sup := super.Decode(d.Read(common.SUPERBLK))
	util.DPrintf(0, "Mount: %d bytes, %d inodes, %d data blocks\n",
		sup.TotalSize, sup.NInodes, sup.NDataBlocks)
	return &Vfs{
		fs:  fstate.MkFsState(d, sup),
		cwd: common.ROOTINUM,
	}
}

// Close flushes and releases the backing store.
func (v *Vfs) Close() {
	v.fs.Disk.Barrier()
	v.fs.Disk.Close()
}
