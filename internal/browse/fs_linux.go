//go:build linux
// +build linux

package browse

import (
	"context"
	"os"
	"sort"
	"time"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/ostafen/scandisk/internal/fat12"
)

// VolumeFS is a read-only bazil.org/fuse filesystem backed by a FAT12
// volume's directory tree, adapted from the teacher's RecoverFS (internal
// /fuse/fuse.go) to navigate real subdirectories instead of a flat
// recovered-file map.
type VolumeFS struct {
	v    *fat12.Volume
	root *node
}

// New builds a VolumeFS from v and the tree built by internal/walk.
func New(v *fat12.Volume, root *node) *VolumeFS {
	return &VolumeFS{v: v, root: root}
}

func (fs *VolumeFS) Root() (fusefs.Node, error) {
	return &Dir{fs: fs, n: fs.root}, nil
}

// Dir implements fs.Node and fs.HandleReadDirAller for one directory
// level of the volume's tree.
type Dir struct {
	fs *VolumeFS
	n  *node
}

func (*Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0555
	return nil
}

func (d *Dir) Lookup(ctx context.Context, name string) (fusefs.Node, error) {
	child, ok := d.n.children[name]
	if !ok {
		return nil, fuse.ENOENT
	}
	if child.isDir {
		return &Dir{fs: d.fs, n: child}, nil
	}
	return &File{v: d.fs.v, dirent: child.dirent}, nil
}

func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	out := make([]fuse.Dirent, 0, len(d.n.children))
	for name, child := range d.n.children {
		kind := fuse.DT_File
		if child.isDir {
			kind = fuse.DT_Dir
		}
		out = append(out, fuse.Dirent{Name: name, Type: kind})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	for i := range out {
		out[i].Inode = uint64(i + 1)
	}
	return out, nil
}

// File implements fs.Node and fs.HandleReader for one regular file,
// reading its contents on demand via a chainReader over the volume.
type File struct {
	v      *fat12.Volume
	dirent fat12.Dirent
}

func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = 0444
	a.Size = uint64(f.dirent.FileSize)
	a.Mtime = time.Now()
	return nil
}

func (f *File) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	r := newChainReader(f.v, f.dirent)

	buf := make([]byte, req.Size)
	n, err := r.ReadAt(buf, req.Offset)
	if err != nil && n == 0 {
		resp.Data = []byte{}
		return nil
	}
	resp.Data = buf[:n]
	return nil
}
