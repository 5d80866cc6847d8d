package virtfs

import (
	"github.com/mit-pdos/go-journal/util"
	"github.com/tchajed/goose/machine/disk"

	"github.com/virtfs/virtfs/alloc"
	"github.com/virtfs/virtfs/common"
	"github.com/virtfs/virtfs/dir"
	"github.com/virtfs/virtfs/fstate"
	"github.com/virtfs/virtfs/inode"
	"github.com/virtfs/virtfs/super"
)

// Format lays down a fresh filesystem of sz bytes on d: superblock,
// both bitmaps with inode 0 and data block 0 pre-marked for the root,
// the root inode, and the root's "." / ".." entries. Everything the
// engine later reads is written here; mkfs must run once before
// Mount.
func Format(d disk.Disk, sz uint64) error {
	sup, ok := super.MkFsSuper(sz)
	if !ok {
		return ErrBadVolume
	}
	if nblocks := d.Size(); sup.DataStart+sup.NDataBlocks > nblocks {
		return ErrBadVolume
	}
	d.Write(common.SUPERBLK, sup.Encode())

	st := &fstate.FsState{
		Disk:   d,
		Super:  sup,
		Ialloc: alloc.MkMaxAlloc(sup.NInodes),
		Balloc: alloc.MkMaxAlloc(sup.NDataBlocks),
	}
	st.Ialloc.MarkUsed(uint64(common.ROOTINUM))
	st.Balloc.MarkUsed(0)
	st.FlushBitmaps()

	// Zero the whole inode table so stale bytes never decode as live
	// records.
	zero := make(disk.Block, disk.BlockSize)
	for b := sup.InodeStart; b < sup.DataStart; b++ {
		d.Write(b, zero)
	}

	root := inode.MkInode(common.ROOTINUM, inode.KindDir)
	root.Size = 2 * common.DIRENTSZ
	root.Blks[0] = 0
	st.WriteInode(root)

	blk := make(disk.Block, disk.BlockSize)
	dir.InitDirBlock(blk, common.ROOTINUM, common.ROOTINUM)
	st.WriteData(0, blk)

	d.Barrier()
	util.DPrintf(0, "Format: %d bytes, data blocks %d..%d of disk\n",
		sz, sup.DataStart, sup.DataStart+sup.NDataBlocks-1)
	return nil
}
