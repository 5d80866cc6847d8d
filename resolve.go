package virtfs

import (
	"strings"

	"github.com/mit-pdos/go-journal/util"

	"github.com/virtfs/virtfs/common"
	"github.com/virtfs/virtfs/dir"
	"github.com/virtfs/virtfs/inode"
)

// resolve walks a slash-separated path to an inode number. Absolute
// paths start at the root, everything else at the current directory.
// Empty segments (repeated separators, trailing slash) are skipped.
// Each non-terminal segment must resolve to a directory; the terminal
// segment may be any kind.
func (v *Vfs) resolve(p string) (common.Inum, error) {
	if p == "" {
		return 0, ErrInvalidArgument
	}
	if p == "." {
		return v.cwd, nil
	}

	cur := v.cwd
	if p[0] == '/' {
		cur = common.ROOTINUM
	}

	segs := strings.Split(p, "/")
	for i, seg := range segs {
		if seg == "" {
			continue
		}
		dip := v.fs.ReadInode(cur)
		if !dip.IsDir() {
			return 0, ErrNotDir
		}
		next, ok := dir.ScanName(v.fs, dip, seg)
		if !ok {
			return 0, ErrNotFound
		}
		if rest := segs[i+1:]; hasNonEmpty(rest) {
			ip := v.fs.ReadInode(next)
			if !ip.IsDir() {
				return 0, ErrNotDir
			}
		}
		cur = next
	}
	util.DPrintf(10, "resolve %q -> # %d\n", p, cur)
	return cur, nil
}

func hasNonEmpty(segs []string) bool {
	for _, s := range segs {
		if s != "" {
			return true
		}
	}
	return false
}

// resolveDir resolves p and requires a directory.
func (v *Vfs) resolveDir(p string) (*inode.Inode, error) {
	inum, err := v.resolve(p)
	if err != nil {
		return nil, err
	}
	ip := v.fs.ReadInode(inum)
	if !ip.IsDir() {
		return nil, ErrNotDir
	}
	return ip, nil
}

// resolveFile resolves p and requires a regular file.
func (v *Vfs) resolveFile(p string) (*inode.Inode, error) {
	inum, err := v.resolve(p)
	if err != nil {
		return nil, err
	}
	ip := v.fs.ReadInode(inum)
	if ip.IsDir() {
		return nil, ErrIsDir
	}
	return ip, nil
}

// splitPath separates p into its parent directory and final component,
// with dirname/basename semantics: trailing slashes belong to no
// component, and the parent of a bare name is ".".
func splitPath(p string) (string, string) {
	for len(p) > 1 && p[len(p)-1] == '/' {
		p = p[:len(p)-1]
	}
	i := strings.LastIndexByte(p, '/')
	if i < 0 {
		return ".", p
	}
	name := p[i+1:]
	parent := p[:i]
	if parent == "" {
		parent = "/"
	}
	return parent, name
}

// resolveParent resolves p's parent directory and validates the final
// component's length.
func (v *Vfs) resolveParent(p string) (*inode.Inode, string, error) {
	parent, name := splitPath(p)
	if name == "" {
		return nil, "", ErrInvalidArgument
	}
	if uint64(len(name)) > common.MAXNAMELEN {
		return nil, "", ErrInvalidArgument
	}
	dip, err := v.resolveDir(parent)
	if err != nil {
		return nil, "", err
	}
	return dip, name, nil
}
