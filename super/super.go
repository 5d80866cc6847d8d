// Package super implements the superblock: volume geometry written at
// format time and read-only afterwards.
package super

import (
	"github.com/tchajed/goose/machine/disk"
	"github.com/tchajed/marshal"

	"github.com/virtfs/virtfs/common"
)

type FsSuper struct {
	TotalSize      uint64 // volume size in bytes
	NInodes        uint64
	NDataBlocks    uint64
	InodeBitmapBlk uint64
	DataBitmapBlk  uint64
	InodeStart     uint64 // first block of the inode table
	DataStart      uint64 // first block of the data area
}

// NInodeBlocks is the number of blocks the inode table occupies.
func NInodeBlocks() uint64 {
	return (common.NINODES*common.INODESZ + disk.BlockSize - 1) / disk.BlockSize
}

// MkFsSuper computes the region layout for a volume of sz bytes. The
// data-block count is whatever remains after the fixed regions, capped
// at NDATAMAX. ok is false if the volume cannot hold the fixed regions
// plus at least one data block.
func MkFsSuper(sz uint64) (*FsSuper, bool) {
	nblocks := sz / disk.BlockSize
	dataStart := common.INODESTART + NInodeBlocks()
	if nblocks <= dataStart {
		return nil, false
	}
	ndata := nblocks - dataStart
	if ndata > common.NDATAMAX {
		ndata = common.NDATAMAX
	}
	fs := &FsSuper{
		TotalSize:      sz,
		NInodes:        common.NINODES,
		NDataBlocks:    ndata,
		InodeBitmapBlk: common.INODEBITMAPBLK,
		DataBitmapBlk:  common.DATABITMAPBLK,
		InodeStart:     common.INODESTART,
		DataStart:      dataStart,
	}
	return fs, true
}

func (fs *FsSuper) Encode() disk.Block {
	enc := marshal.NewEnc(disk.BlockSize)
	enc.PutInt(fs.TotalSize)
	enc.PutInt(fs.NInodes)
	enc.PutInt(fs.NDataBlocks)
	enc.PutInt(fs.InodeBitmapBlk)
	enc.PutInt(fs.DataBitmapBlk)
	enc.PutInt(fs.InodeStart)
	enc.PutInt(fs.DataStart)
	return enc.Finish()
}

func Decode(blk disk.Block) *FsSuper {
	dec := marshal.NewDec(blk)
	fs := &FsSuper{}
	fs.TotalSize = dec.GetInt()
	fs.NInodes = dec.GetInt()
	fs.NDataBlocks = dec.GetInt()
	fs.InodeBitmapBlk = dec.GetInt()
	fs.DataBitmapBlk = dec.GetInt()
	fs.InodeStart = dec.GetInt()
	fs.DataStart = dec.GetInt()
	return fs
}

// Inum2Blkno locates inode inum: the table block holding it and the
// byte offset within that block. Records are smaller than a block, so
// writers must read-modify-write the containing block.
func (fs *FsSuper) Inum2Blkno(inum common.Inum) (uint64, uint64) {
	off := uint64(inum) * common.INODESZ
	return fs.InodeStart + off/disk.BlockSize, off % disk.BlockSize
}

// Data2Blkno translates a data-area-relative block number to an
// absolute disk block number.
func (fs *FsSuper) Data2Blkno(b common.Bnum) uint64 {
	return fs.DataStart + b
}
