// Package dir implements the directory store: fixed-size name/inum
// entries packed into a directory inode's data blocks. An entry with
// an empty name is a tombstone and may be reused. A directory's size
// counts live entries only; scans stop once size/DIRENTSZ live entries
// have been seen, so stale bytes past the logical end are never
// interpreted.
package dir

import (
	"bytes"

	"github.com/mit-pdos/go-journal/util"
	"github.com/tchajed/goose/machine/disk"
	"github.com/tchajed/marshal"

	"github.com/virtfs/virtfs/common"
	"github.com/virtfs/virtfs/fstate"
	"github.com/virtfs/virtfs/inode"
)

const DIRENTSZ = common.DIRENTSZ
const nameFieldSz = 256

type DirEnt struct {
	Name string // <= MAXNAMELEN bytes, never empty for a live entry
	Inum common.Inum
}

func encodeDirEnt(de *DirEnt) []byte {
	name := make([]byte, nameFieldSz)
	copy(name, de.Name)
	enc := marshal.NewEnc(DIRENTSZ)
	enc.PutBytes(name)
	enc.PutInt(uint64(de.Inum))
	return enc.Finish()
}

func decodeDirEnt(d []byte) *DirEnt {
	dec := marshal.NewDec(d)
	name := dec.GetBytes(nameFieldSz)
	inum := dec.GetInt()
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return &DirEnt{Name: string(name), Inum: common.Inum(inum)}
}

// IllegalName reports names that every directory owns implicitly.
func IllegalName(name string) bool {
	return name == "." || name == ".."
}

// ScanName looks name up in dip, scanning entries in block-then-slot
// order and stopping after the live-entry count given by dip.Size.
func ScanName(st *fstate.FsState, dip *inode.Inode, name string) (common.Inum, bool) {
	if !dip.IsDir() {
		return 0, false
	}
	nlive := dip.Size / DIRENTSZ
	var seen uint64
	for _, b := range dip.Blks {
		if b == common.NULLBNUM || seen >= nlive {
			break
		}
		blk := st.ReadData(b)
		for s := uint64(0); s < common.DIRBLK; s++ {
			if seen >= nlive {
				break
			}
			d := blk[s*DIRENTSZ : (s+1)*DIRENTSZ]
			if d[0] == 0 {
				continue // tombstone
			}
			seen++
			de := decodeDirEnt(d)
			if de.Name == name {
				return de.Inum, true
			}
		}
	}
	return 0, false
}

// AddName places a (name, inum) entry in the first tombstone or
// never-used slot, allocating a zeroed data block if every existing
// slot is taken. It grows dip.Size only when the slot lies at or past
// the logical end, stamps dip's mtime, and writes dip back. Callers
// must have ruled out duplicates via ScanName.
func AddName(st *fstate.FsState, dip *inode.Inode, name string, inum common.Inum) error {
	ent := encodeDirEnt(&DirEnt{Name: name, Inum: inum})
	for i, b := range dip.Blks {
		var blk disk.Block
		if b == common.NULLBNUM {
			nb, ok := st.AllocData()
			if !ok {
				return ErrNoSpace
			}
			dip.Blks[i] = nb
			b = nb
			blk = make(disk.Block, disk.BlockSize)
		} else {
			blk = st.ReadData(b)
		}
		for s := uint64(0); s < common.DIRBLK; s++ {
			if blk[s*DIRENTSZ] != 0 {
				continue
			}
			copy(blk[s*DIRENTSZ:(s+1)*DIRENTSZ], ent)
			st.WriteData(b, blk)

			slot := uint64(i)*common.DIRBLK + s
			if slot*DIRENTSZ >= dip.Size {
				dip.Size += DIRENTSZ
			}
			dip.Mtime = inode.TimeNow()
			st.WriteInode(dip)
			util.DPrintf(5, "AddName # %v: %q -> %d slot %d\n",
				dip.Inum, name, inum, slot)
			return nil
		}
	}
	return ErrFull
}

// RemoveName zeroes name's slot, leaving a tombstone. It does not
// touch dip.Size; the caller decrements it to keep the live-entry
// count invariant.
func RemoveName(st *fstate.FsState, dip *inode.Inode, name string) bool {
	nlive := dip.Size / DIRENTSZ
	var seen uint64
	for _, b := range dip.Blks {
		if b == common.NULLBNUM || seen >= nlive {
			break
		}
		blk := st.ReadData(b)
		for s := uint64(0); s < common.DIRBLK; s++ {
			if seen >= nlive {
				break
			}
			d := blk[s*DIRENTSZ : (s+1)*DIRENTSZ]
			if d[0] == 0 {
				continue
			}
			seen++
			if decodeDirEnt(d).Name == name {
				for j := range d {
					d[j] = 0
				}
				st.WriteData(b, blk)
				util.DPrintf(5, "RemoveName # %v: %q\n", dip.Inum, name)
				return true
			}
		}
	}
	return false
}

// Entries returns the live entries of dip in block-then-slot order.
func Entries(st *fstate.FsState, dip *inode.Inode) []DirEnt {
	nlive := dip.Size / DIRENTSZ
	ents := make([]DirEnt, 0, nlive)
	for _, b := range dip.Blks {
		if b == common.NULLBNUM || uint64(len(ents)) >= nlive {
			break
		}
		blk := st.ReadData(b)
		for s := uint64(0); s < common.DIRBLK; s++ {
			if uint64(len(ents)) >= nlive {
				break
			}
			d := blk[s*DIRENTSZ : (s+1)*DIRENTSZ]
			if d[0] == 0 {
				continue
			}
			ents = append(ents, *decodeDirEnt(d))
		}
	}
	return ents
}

// InitDirBlock fills blk with the two mandatory entries of a fresh
// directory: "." (self) and ".." (parent).
func InitDirBlock(blk disk.Block, self common.Inum, parent common.Inum) {
	copy(blk[0:DIRENTSZ], encodeDirEnt(&DirEnt{Name: ".", Inum: self}))
	copy(blk[DIRENTSZ:2*DIRENTSZ], encodeDirEnt(&DirEnt{Name: "..", Inum: parent}))
}
