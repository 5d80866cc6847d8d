package super

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tchajed/goose/machine/disk"

	"github.com/virtfs/virtfs/common"
)

func TestGeometry(t *testing.T) {
	assert := assert.New(t)

	// 512 inodes at 128 bytes = 16 table blocks, data area at block 19.
	assert.Equal(uint64(16), NInodeBlocks())

	fs, ok := MkFsSuper(100 * disk.BlockSize)
	require.True(t, ok)
	assert.Equal(uint64(19), fs.DataStart)
	assert.Equal(uint64(100-19), fs.NDataBlocks)

	blkno, off := fs.Inum2Blkno(0)
	assert.Equal(uint64(3), blkno)
	assert.Equal(uint64(0), off)

	// 32 inodes per table block.
	blkno, off = fs.Inum2Blkno(33)
	assert.Equal(uint64(4), blkno)
	assert.Equal(common.INODESZ, off)

	assert.Equal(fs.DataStart+7, fs.Data2Blkno(7))
}

func TestDataBlockCap(t *testing.T) {
	// A huge volume caps out at NDATAMAX data blocks.
	fs, ok := MkFsSuper(16 * 1024 * 1024 * 1024)
	require.True(t, ok)
	assert.Equal(t, common.NDATAMAX, fs.NDataBlocks)
}

func TestTooSmall(t *testing.T) {
	_, ok := MkFsSuper(19 * disk.BlockSize)
	assert.False(t, ok, "no room for a single data block")
	_, ok = MkFsSuper(20 * disk.BlockSize)
	assert.True(t, ok)
}

func TestEncodeDecode(t *testing.T) {
	fs, ok := MkFsSuper(100 * disk.BlockSize)
	require.True(t, ok)

	fs2 := Decode(fs.Encode())
	assert.Equal(t, fs, fs2)
}
