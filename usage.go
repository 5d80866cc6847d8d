package virtfs

import (
	"github.com/tchajed/goose/machine/disk"
)

// Usage reports allocator occupancy for the df verb.
type Usage struct {
	InodesUsed  uint64
	InodesFree  uint64
	InodesTotal uint64

	BlocksUsed  uint64
	BlocksFree  uint64
	BlocksTotal uint64

	BytesUsed  uint64
	BytesFree  uint64
	BytesTotal uint64
}

func (v *Vfs) Usage() Usage {
	iused := v.fs.Ialloc.NumUsed()
	bused := v.fs.Balloc.NumUsed()
	sup := v.fs.Super
	return Usage{
		InodesUsed:  iused,
		InodesFree:  sup.NInodes - iused,
		InodesTotal: sup.NInodes,
		BlocksUsed:  bused,
		BlocksFree:  sup.NDataBlocks - bused,
		BlocksTotal: sup.NDataBlocks,
		BytesUsed:   bused * disk.BlockSize,
		BytesFree:   (sup.NDataBlocks - bused) * disk.BlockSize,
		BytesTotal:  sup.TotalSize,
	}
}
