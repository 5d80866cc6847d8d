// Package common holds the geometry constants and scalar types shared
// by every layer of the filesystem.
package common

import (
	"github.com/tchajed/goose/machine/disk"
)

const (
	// On-disk sizes of the fixed-layout records.
	INODESZ  uint64 = 128
	DIRENTSZ uint64 = 264 // 256-byte name + 8-byte inum

	INODEBLK uint64 = disk.BlockSize / INODESZ  // inodes per table block
	DIRBLK   uint64 = disk.BlockSize / DIRENTSZ // dirent slots per block

	NINODES    uint64 = 512
	NDATAMAX   uint64 = 8192
	NDIRECT    uint64 = 12
	MAXNAMELEN uint64 = 255

	// Fixed region layout, in block numbers.
	SUPERBLK       uint64 = 0
	INODEBITMAPBLK uint64 = 1
	DATABITMAPBLK  uint64 = 2
	INODESTART     uint64 = 3

	MAXPATHDEPTH uint64 = 64
)

// MAXFILESZ is the hard file-size ceiling: direct pointers only, no
// indirect blocks.
const MAXFILESZ uint64 = NDIRECT * disk.BlockSize

// Inum indexes the inode table; Bnum indexes the data area (relative
// to the data-area start block, not the whole disk).
type Inum uint64
type Bnum = uint64

const ROOTINUM Inum = 0

// NULLBNUM marks an unused direct-pointer slot.
const NULLBNUM Bnum = ^Bnum(0)
