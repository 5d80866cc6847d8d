package dir

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tchajed/goose/machine/disk"

	"github.com/virtfs/virtfs/common"
	"github.com/virtfs/virtfs/fstate"
	"github.com/virtfs/virtfs/inode"
	"github.com/virtfs/virtfs/super"
)

const testDiskBlocks = 64

func mkTestState(t *testing.T) *fstate.FsState {
	d := disk.NewMemDisk(testDiskBlocks)
	sup, ok := super.MkFsSuper(testDiskBlocks * disk.BlockSize)
	require.True(t, ok)
	return fstate.MkFsState(d, sup)
}

// mkTestDir builds a directory inode with its mandatory entries, the
// way mkdir does.
func mkTestDir(t *testing.T, st *fstate.FsState, inum common.Inum) *inode.Inode {
	n, ok := st.AllocInum()
	require.True(t, ok)
	require.Equal(t, inum, n)
	b, ok := st.AllocData()
	require.True(t, ok)

	dip := inode.MkInode(inum, inode.KindDir)
	dip.Size = 2 * DIRENTSZ
	dip.Blks[0] = b
	st.WriteInode(dip)

	blk := make(disk.Block, disk.BlockSize)
	InitDirBlock(blk, inum, inum)
	st.WriteData(b, blk)
	return dip
}

func TestScanName(t *testing.T) {
	assert := assert.New(t)
	st := mkTestState(t)
	dip := mkTestDir(t, st, 0)

	self, ok := ScanName(st, dip, ".")
	assert.True(ok)
	assert.Equal(common.Inum(0), self)

	_, ok = ScanName(st, dip, "missing")
	assert.False(ok)

	require.NoError(t, AddName(st, dip, "f", 3))
	inum, ok := ScanName(st, dip, "f")
	assert.True(ok)
	assert.Equal(common.Inum(3), inum)
	assert.Equal(3*DIRENTSZ, dip.Size)
}

func TestTombstoneReuse(t *testing.T) {
	assert := assert.New(t)
	st := mkTestState(t)
	dip := mkTestDir(t, st, 0)

	require.NoError(t, AddName(st, dip, "a", 1))
	require.NoError(t, AddName(st, dip, "b", 2))
	sz := dip.Size

	assert.True(RemoveName(st, dip, "a"))
	dip.Size -= DIRENTSZ
	st.WriteInode(dip)

	_, ok := ScanName(st, dip, "a")
	assert.False(ok, "removed name must not resolve")
	inum, ok := ScanName(st, dip, "b")
	assert.True(ok, "entries past the tombstone stay reachable")
	assert.Equal(common.Inum(2), inum)

	// Reusing the tombstone below the logical end must not grow size.
	require.NoError(t, AddName(st, dip, "c", 4))
	assert.Equal(sz, dip.Size)
	inum, ok = ScanName(st, dip, "c")
	assert.True(ok)
	assert.Equal(common.Inum(4), inum)
}

func TestAddNameGrowsBlocks(t *testing.T) {
	assert := assert.New(t)
	st := mkTestState(t)
	dip := mkTestDir(t, st, 0)

	// Fill the first block (two slots hold "." / "..") and spill into
	// a second.
	for i := uint64(0); i < common.DIRBLK-2+1; i++ {
		require.NoError(t, AddName(st, dip, fmt.Sprintf("f%d", i), common.Inum(i+1)))
	}
	assert.NotEqual(common.NULLBNUM, dip.Blks[1], "spill must allocate a second block")
	assert.Equal((common.DIRBLK+1)*DIRENTSZ, dip.Size)

	inum, ok := ScanName(st, dip, fmt.Sprintf("f%d", common.DIRBLK-2))
	assert.True(ok)
	assert.Equal(common.Inum(common.DIRBLK-1), inum)
}

func TestEntriesOrder(t *testing.T) {
	assert := assert.New(t)
	st := mkTestState(t)
	dip := mkTestDir(t, st, 0)

	require.NoError(t, AddName(st, dip, "x", 9))
	ents := Entries(st, dip)
	assert.Equal(3, len(ents))
	assert.Equal(".", ents[0].Name)
	assert.Equal("..", ents[1].Name)
	assert.Equal("x", ents[2].Name)
	assert.Equal(common.Inum(9), ents[2].Inum)
}

func TestIllegalName(t *testing.T) {
	assert.True(t, IllegalName("."))
	assert.True(t, IllegalName(".."))
	assert.False(t, IllegalName("..."))
	assert.False(t, IllegalName("a"))
}
