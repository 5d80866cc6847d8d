package inode

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/virtfs/virtfs/common"
)

func TestMkInode(t *testing.T) {
	assert := assert.New(t)

	fp := MkInode(5, KindFile)
	assert.Equal(uint32(1), fp.Nlink)
	assert.False(fp.IsDir())

	dp := MkInode(7, KindDir)
	assert.Equal(uint32(2), dp.Nlink, "a directory links itself via \".\"")
	assert.True(dp.IsDir())
	for _, b := range dp.Blks {
		assert.Equal(common.NULLBNUM, b)
	}
}

func TestEncodeDecode(t *testing.T) {
	assert := assert.New(t)

	ip := MkInode(3, KindFile)
	ip.Size = 5000
	ip.Blks[0] = 17
	ip.Blks[1] = 2

	d := ip.Encode()
	assert.Equal(int(common.INODESZ), len(d), "record must fill its table slot exactly")

	ip2 := Decode(d, 3)
	assert.Equal(ip.Kind, ip2.Kind)
	assert.Equal(ip.Size, ip2.Size)
	assert.Equal(ip.Nlink, ip2.Nlink)
	assert.Equal(ip.Blks, ip2.Blks, "unused-pointer sentinels must survive the trip")
}

func TestNBlocks(t *testing.T) {
	ip := MkInode(1, KindFile)
	assert.Equal(t, uint64(0), ip.NBlocks())
	ip.Size = 1
	assert.Equal(t, uint64(1), ip.NBlocks())
	ip.Size = 4096
	assert.Equal(t, uint64(1), ip.NBlocks())
	ip.Size = 4097
	assert.Equal(t, uint64(2), ip.NBlocks())
	ip.Size = MaxFileSize()
	assert.Equal(t, common.NDIRECT, ip.NBlocks())
}
