// Package fstate holds the state of a mounted volume: the disk, the
// superblock, and the in-memory bitmap allocators, plus the inode and
// data-block I/O built on them. Allocator mutations live in memory
// until FlushBitmaps writes them back; every operation must flush
// before it reports completion, on the failure path too.
package fstate

import (
	"github.com/mit-pdos/go-journal/util"
	"github.com/tchajed/goose/machine/disk"

	"github.com/virtfs/virtfs/alloc"
	"github.com/virtfs/virtfs/common"
	"github.com/virtfs/virtfs/inode"
	"github.com/virtfs/virtfs/super"
)

type FsState struct {
	Disk   disk.Disk
	Super  *super.FsSuper
	Ialloc *alloc.Alloc
	Balloc *alloc.Alloc
}

func readBitmap(d disk.Disk, blkno uint64, nbits uint64) []byte {
	blk := d.Read(blkno)
	return blk[:(nbits+7)/8]
}

// MkFsState mounts the volume described by sup, loading both bitmaps
// into memory.
func MkFsState(d disk.Disk, sup *super.FsSuper) *FsState {
	ialloc := alloc.MkAlloc(readBitmap(d, sup.InodeBitmapBlk, sup.NInodes),
		sup.NInodes)
	balloc := alloc.MkAlloc(readBitmap(d, sup.DataBitmapBlk, common.NDATAMAX),
		sup.NDataBlocks)
	return &FsState{
		Disk:   d,
		Super:  sup,
		Ialloc: ialloc,
		Balloc: balloc,
	}
}

// FlushBitmaps writes both bitmaps to their on-disk blocks.
func (st *FsState) FlushBitmaps() {
	blk := make(disk.Block, disk.BlockSize)
	copy(blk, st.Ialloc.Bytes())
	st.Disk.Write(st.Super.InodeBitmapBlk, blk)

	blk = make(disk.Block, disk.BlockSize)
	copy(blk, st.Balloc.Bytes())
	st.Disk.Write(st.Super.DataBitmapBlk, blk)
}

func (st *FsState) ReadInode(inum common.Inum) *inode.Inode {
	if uint64(inum) >= st.Super.NInodes {
		panic("ReadInode: inum out of range")
	}
	blkno, off := st.Super.Inum2Blkno(inum)
	blk := st.Disk.Read(blkno)
	return inode.Decode(blk[off:off+common.INODESZ], inum)
}

// WriteInode read-modify-writes the table block containing ip; inode
// records are not block-aligned.
func (st *FsState) WriteInode(ip *inode.Inode) {
	if uint64(ip.Inum) >= st.Super.NInodes {
		panic("WriteInode: inum out of range")
	}
	blkno, off := st.Super.Inum2Blkno(ip.Inum)
	blk := st.Disk.Read(blkno)
	copy(blk[off:off+common.INODESZ], ip.Encode())
	st.Disk.Write(blkno, blk)
	util.DPrintf(5, "WriteInode %v\n", ip)
}

// ReadData reads a data-area block by its data-area-relative number.
func (st *FsState) ReadData(b common.Bnum) disk.Block {
	return st.Disk.Read(st.Super.Data2Blkno(b))
}

func (st *FsState) WriteData(b common.Bnum, blk disk.Block) {
	st.Disk.Write(st.Super.Data2Blkno(b), blk)
}

// ZeroData overwrites a data block with zeros.
func (st *FsState) ZeroData(b common.Bnum) {
	st.WriteData(b, make(disk.Block, disk.BlockSize))
}

func (st *FsState) AllocInum() (common.Inum, bool) {
	n, ok := st.Ialloc.AllocNum()
	return common.Inum(n), ok
}

func (st *FsState) FreeInum(inum common.Inum) {
	st.Ialloc.FreeNum(uint64(inum))
}

func (st *FsState) AllocData() (common.Bnum, bool) {
	return st.Balloc.AllocNum()
}

func (st *FsState) FreeData(b common.Bnum) {
	st.Balloc.FreeNum(b)
}
