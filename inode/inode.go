// Package inode implements the fixed-size on-disk inode record: kind,
// size, link count, timestamps, and the direct data-block pointers.
package inode

import (
	"fmt"
	"time"

	"github.com/tchajed/goose/machine/disk"
	"github.com/tchajed/marshal"

	"github.com/virtfs/virtfs/common"
)

type Kind uint32

const (
	KindFile Kind = 0
	KindDir  Kind = 1
)

type Inode struct {
	// in-memory only
	Inum common.Inum

	// the on-disk record
	Kind  Kind
	Size  uint64
	Nlink uint32
	Ctime uint64
	Mtime uint64
	Blks  []common.Bnum // len NDIRECT; NULLBNUM marks unused slots
}

func TimeNow() uint64 {
	return uint64(time.Now().Unix())
}

// MkInode returns a fresh inode with all pointers unused. Directories
// start with two links (".", and the parent's entry), files with one.
func MkInode(inum common.Inum, kind Kind) *Inode {
	ip := &Inode{
		Inum: inum,
		Kind: kind,
		Size: 0,
	}
	if kind == KindDir {
		ip.Nlink = 2
	} else {
		ip.Nlink = 1
	}
	ip.Ctime = TimeNow()
	ip.Mtime = ip.Ctime
	ip.Blks = make([]common.Bnum, common.NDIRECT)
	for i := range ip.Blks {
		ip.Blks[i] = common.NULLBNUM
	}
	return ip
}

func (ip *Inode) String() string {
	return fmt.Sprintf("# %d k %d n %d sz %d %v", ip.Inum, ip.Kind, ip.Nlink, ip.Size, ip.Blks)
}

func (ip *Inode) IsDir() bool {
	return ip.Kind == KindDir
}

func (ip *Inode) Encode() []byte {
	enc := marshal.NewEnc(common.INODESZ)
	enc.PutInt32(uint32(ip.Kind))
	enc.PutInt(ip.Size)
	enc.PutInt32(ip.Nlink)
	enc.PutInt(ip.Ctime)
	enc.PutInt(ip.Mtime)
	enc.PutInts(ip.Blks)
	return enc.Finish()
}

func Decode(d []byte, inum common.Inum) *Inode {
	dec := marshal.NewDec(d)
	ip := &Inode{Inum: inum}
	ip.Kind = Kind(dec.GetInt32())
	ip.Size = dec.GetInt()
	ip.Nlink = dec.GetInt32()
	ip.Ctime = dec.GetInt()
	ip.Mtime = dec.GetInt()
	ip.Blks = dec.GetInts(common.NDIRECT)
	return ip
}

func MaxFileSize() uint64 {
	return common.MAXFILESZ
}

// NBlocks is the number of data blocks a file of ip.Size occupies.
func (ip *Inode) NBlocks() uint64 {
	return (ip.Size + disk.BlockSize - 1) / disk.BlockSize
}
