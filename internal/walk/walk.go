// Package walk implements the directory walker of spec §4.3: a
// breadth-first traversal of the root directory and subdirectory FAT
// chains, using an explicit FIFO work queue rather than native recursion
// so a pathological (cyclic or very deep) directory tree can't blow the
// stack. Entries are not yielded in depth-first order: every entry of a
// directory comes before any entry of its subdirectories.
package walk

import (
	"fmt"

	"github.com/ostafen/scandisk/internal/clustermap"
	"github.com/ostafen/scandisk/internal/fat12"
)

// MaxDepth bounds subdirectory recursion, per spec §9 ("stack recursion
// is acceptable if depth is bounded at ~256").
const MaxDepth = 256

// Entry is one yielded directory entry together with the path it was
// found at and its depth from the root.
type Entry struct {
	Dirent fat12.Dirent
	Path   string
	Depth  int
}

// Diagnostic is a non-fatal issue found while walking, such as a
// directory tree deeper than MaxDepth. It never aborts the walk.
type Diagnostic struct {
	Path    string
	Message string
}

type queueItem struct {
	isRoot bool
	start  uint32
	path   string
	depth  int
}

// Walk performs the breadth-first traversal described in the package
// comment: directories are read in the order they leave a FIFO queue, and
// each directory's entries are yielded together, in slot order. For
// every yielded subdirectory entry, its start cluster is marked POINTED
// in cm (Open Question #1 in spec §9: the subdirectory's own chain is
// never traced for reachability, only its start cluster is marked).
func Walk(v *fat12.Volume, cm *clustermap.Map) ([]Entry, []Diagnostic) {
	var entries []Entry
	var diags []Diagnostic

	queue := []queueItem{{isRoot: true, path: "", depth: 0}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if item.depth > MaxDepth {
			diags = append(diags, Diagnostic{
				Path:    item.path,
				Message: fmt.Sprintf("directory tree exceeds max depth %d, not descending further", MaxDepth),
			})
			continue
		}

		var slots []fat12.Dirent
		var labelDiags []Diagnostic
		if item.isRoot {
			slots, labelDiags = readRootDirectory(v, item.path)
		} else {
			slots, labelDiags = readSubdirectory(v, item.start, item.path)
		}
		diags = append(diags, labelDiags...)

		for _, d := range slots {
			path := d.Name
			if item.path != "" {
				path = item.path + "/" + d.Name
			}
			entries = append(entries, Entry{Dirent: d, Path: path, Depth: item.depth})

			if d.IsDirectory() {
				if d.StartCluster != 0 {
					cm.Set(uint32(d.StartCluster), clustermap.POINTED)
				}
				queue = append(queue, queueItem{start: uint32(d.StartCluster), path: path, depth: item.depth + 1})
			}
		}
	}

	return entries, diags
}

// readRootDirectory decodes the fixed-size root directory region, per
// spec §4.3 ("Root directory: R fixed entries at the BPB-specified
// offset").
func readRootDirectory(v *fat12.Volume, path string) ([]fat12.Dirent, []Diagnostic) {
	return decodeRegion(v.Data, v.BPB.RootDirOffset, v.BPB.RootDirSizeBytes, path)
}

// readSubdirectory follows start's FAT chain, decoding every cluster's
// entries in order and stopping at the first EMPTY slot or end of chain.
// Per Open Question #1, clusters beyond the first are never marked
// POINTED and never checked for LESS/DEAD/DUPE here -- only the Chain
// Tracer does that, and only for regular files.
func readSubdirectory(v *fat12.Volume, start uint32, path string) ([]fat12.Dirent, []Diagnostic) {
	var out []fat12.Dirent
	var diags []Diagnostic

	c := start
	visited := uint32(0)
	maxSteps := v.Table.TotalClusters() + 1

	for v.Table.IsValidCluster(uint16(c)) && visited < maxSteps {
		visited++

		off := v.ClusterOffset(c)
		entries, labelDiags, terminated := decodeRegionUntilEnd(v.Data, off, v.BPB.BytesPerCluster, path)
		out = append(out, entries...)
		diags = append(diags, labelDiags...)
		if terminated {
			break
		}

		next := v.Table.Get(c)
		if fat12.IsEndOfFile(next) {
			break
		}
		c = uint32(next)
	}

	return out, diags
}

// decodeRegion decodes every slot in [offset, offset+size), stopping
// early at the first EMPTY slot.
func decodeRegion(data []byte, offset, size uint32, path string) ([]fat12.Dirent, []Diagnostic) {
	entries, diags, _ := decodeRegionUntilEnd(data, offset, size, path)
	return entries, diags
}

// decodeRegionUntilEnd decodes every slot in [offset, offset+size). A
// volume-label slot (EntryVolumeLabel) is reported as a Diagnostic and
// never added to the yielded entries, per spec §4.3's "reported but not
// yielded for further processing".
func decodeRegionUntilEnd(data []byte, offset, size uint32, path string) ([]fat12.Dirent, []Diagnostic, bool) {
	var out []fat12.Dirent
	var diags []Diagnostic

	for pos := offset; pos+fat12.DirentSize <= offset+size; pos += fat12.DirentSize {
		d, kind := fat12.DecodeAt(data, pos)
		switch kind {
		case fat12.EntryEndOfDirectory:
			return out, diags, true
		case fat12.EntrySkip:
			continue
		case fat12.EntryVolumeLabel:
			diags = append(diags, Diagnostic{
				Path:    path,
				Message: fmt.Sprintf("volume label %q skipped", d.Name),
			})
		case fat12.EntryRegular:
			out = append(out, d)
		}
	}
	return out, diags, false
}
