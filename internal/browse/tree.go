// Package browse serves a read-only view of a FAT12 volume's directory
// tree over FUSE, so a repaired (or dry-run-inspected) image can be
// explored with ordinary filesystem tools instead of a bespoke CLI.
package browse

import (
	"strings"

	"github.com/ostafen/scandisk/internal/fat12"
	"github.com/ostafen/scandisk/internal/walk"
)

// node is one entry in the in-memory directory tree built from a
// walk.Walk result. Regular files carry their Dirent directly; the root
// has a zero-value Dirent.
type node struct {
	dirent   fat12.Dirent
	isDir    bool
	children map[string]*node
}

func newTree(entries []walk.Entry) *node {
	root := &node{isDir: true, children: map[string]*node{}}

	for _, e := range entries {
		parts := strings.Split(e.Path, "/")
		cur := root
		for i, part := range parts {
			last := i == len(parts)-1
			child, ok := cur.children[part]
			if !ok {
				child = &node{children: map[string]*node{}}
				cur.children[part] = child
			}
			if last {
				child.dirent = e.Dirent
				child.isDir = e.Dirent.IsDirectory()
			}
			cur = child
		}
	}

	return root
}
