package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPopCnt(t *testing.T) {
	assert.Equal(t, uint64(0), popCnt(0))
	assert.Equal(t, uint64(1), popCnt(1))
	assert.Equal(t, uint64(1), popCnt(2))
	assert.Equal(t, uint64(2), popCnt(3))
	assert.Equal(t, uint64(8), popCnt(255))
}

func TestAlloc(t *testing.T) {
	assert := assert.New(t)
	max := uint64(32)
	a := MkMaxAlloc(max)

	assert.Equal(max, a.NumFree(), "everything should be initially free")

	n, ok := a.AllocNum()
	assert.True(ok)
	assert.Equal(uint64(0), n, "first-fit should hand out the lowest index")

	a.MarkUsed(n + 1)
	n2, ok := a.AllocNum()
	assert.True(ok)
	assert.Equal(uint64(2), n2, "should skip indices marked used")

	assert.Equal(max-3, a.NumFree())

	a.FreeNum(n)
	a.FreeNum(n2)
	assert.Equal(max-1, a.NumFree(), "should have freed")

	n3, ok := a.AllocNum()
	assert.True(ok)
	assert.Equal(uint64(0), n3, "freed indices are reused lowest-first")
}

func TestAllocExhaustion(t *testing.T) {
	assert := assert.New(t)
	max := uint64(9) // not byte-aligned on purpose
	a := MkMaxAlloc(max)

	for i := uint64(0); i < max; i++ {
		n, ok := a.AllocNum()
		assert.True(ok)
		assert.Equal(i, n)
	}
	_, ok := a.AllocNum()
	assert.False(ok, "allocator should report exhaustion")
	assert.Equal(uint64(0), a.NumFree())

	a.FreeNum(8)
	n, ok := a.AllocNum()
	assert.True(ok)
	assert.Equal(uint64(8), n)
}

func TestAllocFromBitmap(t *testing.T) {
	assert := assert.New(t)
	bits := make([]byte, 4)
	bits[0] = 0b0000_0111
	a := MkAlloc(bits, 16)

	assert.Equal(uint64(13), a.NumFree())
	n, ok := a.AllocNum()
	assert.True(ok)
	assert.Equal(uint64(3), n)
	assert.Equal(byte(0b0000_1111), bits[0], "mutations land in the caller's bitmap")
}
