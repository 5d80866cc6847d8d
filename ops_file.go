package virtfs

import (
	"github.com/goose-lang/std"
	"github.com/mit-pdos/go-journal/util"
	"github.com/tchajed/goose/machine/disk"

	"github.com/virtfs/virtfs/common"
	"github.com/virtfs/virtfs/dir"
	"github.com/virtfs/virtfs/inode"
)

// CreateFile writes data as a new file at p. Either the file appears
// in its parent with all blocks written, or nothing changes: the
// directory entry is added only after every block and the inode are
// in place, and a mid-copy allocation failure frees everything this
// call allocated.
func (v *Vfs) CreateFile(p string, data []byte) error {
	util.DPrintf(1, "CreateFile %q (%d bytes)\n", p, len(data))
	if uint64(len(data)) > common.MAXFILESZ {
		return ErrFileTooLarge
	}
	dip, name, err := v.resolveParent(p)
	if err != nil {
		return err
	}
	if _, ok := dir.ScanName(v.fs, dip, name); ok {
		return ErrExists
	}

	inum, ok := v.fs.AllocInum()
	if !ok {
		return ErrOutOfInodes
	}
	ip := inode.MkInode(inum, inode.KindFile)
	ip.Size = uint64(len(data))

	undo := func() {
		for _, b := range ip.Blks {
			if b != common.NULLBNUM {
				v.fs.FreeData(b)
			}
		}
		v.fs.FreeInum(inum)
		v.fs.FlushBitmaps()
	}

	for i := 0; uint64(i)*disk.BlockSize < uint64(len(data)); i++ {
		b, ok := v.fs.AllocData()
		if !ok {
			undo()
			return ErrOutOfDataBlocks
		}
		ip.Blks[i] = b
		blk := make(disk.Block, disk.BlockSize)
		copy(blk, data[uint64(i)*disk.BlockSize:]) // final block zero-padded
		v.fs.WriteData(b, blk)
	}
	v.fs.WriteInode(ip)

	if err := dir.AddName(v.fs, dip, name, inum); err != nil {
		undo()
		return mapDirErr(err)
	}
	v.fs.FlushBitmaps()
	return nil
}

// ReadFile returns the contents of the file at p: Size bytes streamed
// across the direct blocks, with only the used prefix of the final
// block.
func (v *Vfs) ReadFile(p string) ([]byte, error) {
	ip, err := v.resolveFile(p)
	if err != nil {
		return nil, err
	}
	data := make([]byte, 0, ip.Size)
	remaining := ip.Size
	for _, b := range ip.Blks {
		if remaining == 0 || b == common.NULLBNUM {
			break
		}
		blk := v.fs.ReadData(b)
		n := util.Min(disk.BlockSize, remaining)
		data = append(data, blk[:n]...)
		remaining -= n
	}
	return data, nil
}

// Append extends the file at p by n zero bytes: first filling the
// trailing partial block, then allocating zeroed blocks. If the
// allocator runs dry mid-append the bytes committed so far stay
// committed; the returned count says how many, alongside
// ErrOutOfDataBlocks.
func (v *Vfs) Append(p string, n uint64) (uint64, error) {
	util.DPrintf(1, "Append %q %d\n", p, n)
	if n == 0 {
		return 0, ErrInvalidArgument
	}
	ip, err := v.resolveFile(p)
	if err != nil {
		return 0, err
	}
	if !std.SumNoOverflow(ip.Size, n) || ip.Size+n > common.MAXFILESZ {
		return 0, ErrFileTooLarge
	}

	remaining := n
	if ip.Size%disk.BlockSize != 0 {
		idx := (ip.Size - 1) / disk.BlockSize
		b := ip.Blks[idx]
		blk := v.fs.ReadData(b)
		off := ip.Size % disk.BlockSize
		k := util.Min(disk.BlockSize-off, remaining)
		for j := uint64(0); j < k; j++ {
			blk[off+j] = 0
		}
		v.fs.WriteData(b, blk)
		remaining -= k
	}

	var appendErr error
	for idx := util.RoundUp(ip.Size+n-remaining, disk.BlockSize); remaining > 0; idx++ {
		b, ok := v.fs.AllocData()
		if !ok {
			appendErr = ErrOutOfDataBlocks
			break
		}
		v.fs.ZeroData(b)
		ip.Blks[idx] = b
		remaining -= util.Min(disk.BlockSize, remaining)
	}

	committed := n - remaining
	ip.Size += committed
	ip.Mtime = inode.TimeNow()
	v.fs.WriteInode(ip)
	v.fs.FlushBitmaps()
	return committed, appendErr
}

// Truncate shortens the file at p by n bytes (to zero at most) and
// frees every block past the new last byte.
func (v *Vfs) Truncate(p string, n uint64) (uint64, error) {
	util.DPrintf(1, "Truncate %q %d\n", p, n)
	if n == 0 {
		return 0, ErrInvalidArgument
	}
	ip, err := v.resolveFile(p)
	if err != nil {
		return 0, err
	}

	var newSize uint64
	if n < ip.Size {
		newSize = ip.Size - n
	}
	keep := util.RoundUp(newSize, disk.BlockSize)
	for i := keep; i < common.NDIRECT; i++ {
		if ip.Blks[i] != common.NULLBNUM {
			v.fs.FreeData(ip.Blks[i])
			ip.Blks[i] = common.NULLBNUM
		}
	}
	ip.Size = newSize
	ip.Mtime = inode.TimeNow()
	v.fs.WriteInode(ip)
	v.fs.FlushBitmaps()
	return newSize, nil
}

// Remove unlinks the file at p. The inode and its blocks are
// reclaimed only when the last hard link goes away.
func (v *Vfs) Remove(p string) error {
	util.DPrintf(1, "Remove %q\n", p)
	dip, name, err := v.resolveParent(p)
	if err != nil {
		return err
	}
	inum, ok := dir.ScanName(v.fs, dip, name)
	if !ok {
		return ErrNotFound
	}
	ip := v.fs.ReadInode(inum)
	if ip.IsDir() {
		return ErrIsDir
	}

	dir.RemoveName(v.fs, dip, name)
	dip.Size -= common.DIRENTSZ
	v.fs.WriteInode(dip)

	ip.Nlink -= 1
	v.fs.WriteInode(ip)
	if ip.Nlink == 0 {
		for _, b := range ip.Blks {
			if b != common.NULLBNUM {
				v.fs.FreeData(b)
			}
		}
		v.fs.FreeInum(inum)
	}
	v.fs.FlushBitmaps()
	return nil
}

// Link adds a hard link at linkPath to the file at target. Directories
// cannot be hard-linked.
func (v *Vfs) Link(target string, linkPath string) error {
	util.DPrintf(1, "Link %q -> %q\n", linkPath, target)
	tnum, err := v.resolve(target)
	if err != nil {
		return err
	}
	tip := v.fs.ReadInode(tnum)
	if tip.IsDir() {
		return ErrIsDir
	}

	dip, name, err := v.resolveParent(linkPath)
	if err != nil {
		return err
	}
	if _, ok := dir.ScanName(v.fs, dip, name); ok {
		return ErrExists
	}
	if err := dir.AddName(v.fs, dip, name, tnum); err != nil {
		return mapDirErr(err)
	}

	tip.Nlink += 1
	v.fs.WriteInode(tip)
	v.fs.FlushBitmaps()
	return nil
}
