// Package alloc implements a bitmap allocator over an in-memory byte
// bitmap. Allocation is first-fit from index 0 so that allocation
// order is deterministic. The caller is responsible for flushing the
// bitmap bytes back to disk after mutating.
package alloc

import (
	"github.com/mit-pdos/go-journal/util"
)

type Alloc struct {
	bitmap []byte
	max    uint64 // number of allocatable indices
}

// MkAlloc wraps an on-disk bitmap. bitmap must hold at least max bits;
// extra trailing bits are ignored.
func MkAlloc(bitmap []byte, max uint64) *Alloc {
	if uint64(len(bitmap))*8 < max {
		panic("MkAlloc: bitmap too small")
	}
	return &Alloc{bitmap: bitmap, max: max}
}

// MkMaxAlloc makes an allocator with a fresh zeroed bitmap.
func MkMaxAlloc(max uint64) *Alloc {
	nbytes := (max + 7) / 8
	return &Alloc{bitmap: make([]byte, nbytes), max: max}
}

func (a *Alloc) bit(n uint64) bool {
	return a.bitmap[n/8]&(1<<(n%8)) != 0
}

// MarkUsed sets bit n unconditionally.
func (a *Alloc) MarkUsed(n uint64) {
	if n >= a.max {
		panic("MarkUsed")
	}
	a.bitmap[n/8] |= 1 << (n % 8)
}

// AllocNum returns the lowest free index and marks it used. ok is
// false when the bitmap is exhausted, with no state change.
func (a *Alloc) AllocNum() (uint64, bool) {
	for n := uint64(0); n < a.max; n++ {
		if !a.bit(n) {
			a.bitmap[n/8] |= 1 << (n % 8)
			util.DPrintf(10, "AllocNum -> %d\n", n)
			return n, true
		}
	}
	return 0, false
}

// FreeNum clears bit n. The caller must own n; prior allocation state
// is not validated.
func (a *Alloc) FreeNum(n uint64) {
	if n >= a.max {
		panic("FreeNum")
	}
	util.DPrintf(10, "FreeNum %d\n", n)
	a.bitmap[n/8] &^= 1 << (n % 8)
}

func popCnt(b byte) uint64 {
	var n uint64
	for ; b != 0; b >>= 1 {
		n += uint64(b & 1)
	}
	return n
}

// NumFree counts clear bits below max.
func (a *Alloc) NumFree() uint64 {
	var used uint64
	for _, b := range a.bitmap[:a.max/8] {
		used += popCnt(b)
	}
	for n := a.max - a.max%8; n < a.max; n++ {
		if a.bit(n) {
			used++
		}
	}
	return a.max - used
}

// NumUsed counts set bits below max.
func (a *Alloc) NumUsed() uint64 {
	return a.max - a.NumFree()
}

// Bytes exposes the backing bitmap for flushing to disk.
func (a *Alloc) Bytes() []byte {
	return a.bitmap
}
