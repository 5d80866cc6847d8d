package virtfs

import (
	"errors"
	"strings"

	"github.com/mit-pdos/go-journal/util"
	"github.com/tchajed/goose/machine/disk"

	"github.com/virtfs/virtfs/common"
	"github.com/virtfs/virtfs/dir"
	"github.com/virtfs/virtfs/inode"
)

func mapDirErr(err error) error {
	if errors.Is(err, dir.ErrNoSpace) {
		return ErrOutOfDataBlocks
	}
	if errors.Is(err, dir.ErrFull) {
		return ErrDirFull
	}
	return err
}

// Mkdir creates an empty directory at p. The new directory gets one
// data block holding "." and ".."; the parent gains one link for the
// child's "..".
func (v *Vfs) Mkdir(p string) error {
	util.DPrintf(1, "Mkdir %q\n", p)
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
	b, ok := v.fs.AllocData()
	if !ok {
		v.fs.FreeInum(inum)
		v.fs.FlushBitmaps()
		return ErrOutOfDataBlocks
	}

	child := inode.MkInode(inum, inode.KindDir)
	child.Size = 2 * common.DIRENTSZ
	child.Blks[0] = b
	v.fs.WriteInode(child)

	blk := make(disk.Block, disk.BlockSize)
	dir.InitDirBlock(blk, inum, dip.Inum)
	v.fs.WriteData(b, blk)

	if err := dir.AddName(v.fs, dip, name, inum); err != nil {
		v.fs.FreeData(b)
		v.fs.FreeInum(inum)
		v.fs.FlushBitmaps()
		return mapDirErr(err)
	}

	dip.Nlink += 1
	v.fs.WriteInode(dip)

	v.fs.FlushBitmaps()
	return nil
}

// Rmdir removes the empty directory at p. A directory holding
// anything beyond its two mandatory entries is not empty.
func (v *Vfs) Rmdir(p string) error {
	util.DPrintf(1, "Rmdir %q\n", p)
	inum, err := v.resolve(p)
	if err != nil {
		return err
	}
	if inum == common.ROOTINUM {
		return ErrRootRemoval
	}
	ip := v.fs.ReadInode(inum)
	if !ip.IsDir() {
		return ErrNotDir
	}
	if ip.Size/common.DIRENTSZ > 2 {
		return ErrNotEmpty
	}

	dip, name, err := v.resolveParent(p)
	if err != nil {
		return err
	}
	if dir.IllegalName(name) {
		return ErrInvalidArgument
	}
	if !dir.RemoveName(v.fs, dip, name) {
		return ErrNotFound
	}
	dip.Size -= common.DIRENTSZ
	dip.Nlink -= 1
	v.fs.WriteInode(dip)

	for _, b := range ip.Blks {
		if b != common.NULLBNUM {
			v.fs.FreeData(b)
		}
	}
	v.fs.FreeInum(inum)
	v.fs.FlushBitmaps()
	return nil
}

// EntryInfo describes one directory entry for listings.
type EntryInfo struct {
	Name  string
	IsDir bool
	Size  uint64
	Inum  common.Inum
}

// List returns the live entries of the directory at p in storage
// order, including "." and "..". Listing a file returns the file
// itself as a single entry.
func (v *Vfs) List(p string) ([]EntryInfo, error) {
	inum, err := v.resolve(p)
	if err != nil {
		return nil, err
	}
	ip := v.fs.ReadInode(inum)
	if !ip.IsDir() {
		_, name := splitPath(p)
		return []EntryInfo{{Name: name, IsDir: false, Size: ip.Size, Inum: inum}}, nil
	}

	ents := dir.Entries(v.fs, ip)
	infos := make([]EntryInfo, 0, len(ents))
	for _, de := range ents {
		ep := v.fs.ReadInode(de.Inum)
		infos = append(infos, EntryInfo{
			Name:  de.Name,
			IsDir: ep.IsDir(),
			Size:  ep.Size,
			Inum:  de.Inum,
		})
	}
	return infos, nil
}

// ChDir moves the current-directory pointer to p.
func (v *Vfs) ChDir(p string) error {
	dip, err := v.resolveDir(p)
	if err != nil {
		return err
	}
	v.cwd = dip.Inum
	return nil
}

// findNameForInode finds the name the parent directory uses for child,
// skipping the dot entries.
func (v *Vfs) findNameForInode(parent common.Inum, child common.Inum) (string, bool) {
	dip := v.fs.ReadInode(parent)
	for _, de := range dir.Entries(v.fs, dip) {
		if de.Inum == child && !dir.IllegalName(de.Name) {
			return de.Name, true
		}
	}
	return "", false
}

// WorkingDir reconstructs the absolute path of the current directory
// by walking ".." links up to the root.
func (v *Vfs) WorkingDir() (string, error) {
	if v.cwd == common.ROOTINUM {
		return "/", nil
	}
	var names []string
	cur := v.cwd
	for cur != common.ROOTINUM {
		if uint64(len(names)) >= common.MAXPATHDEPTH {
			return "", ErrInvalidArgument
		}
		parent, ok := dir.ScanName(v.fs, v.fs.ReadInode(cur), "..")
		if !ok {
			return "", ErrNotFound
		}
		name, ok := v.findNameForInode(parent, cur)
		if !ok {
			return "", ErrNotFound
		}
		names = append(names, name)
		if parent == cur {
			break
		}
		cur = parent
	}
	// names were collected leaf-first
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return "/" + strings.Join(names, "/"), nil
}
