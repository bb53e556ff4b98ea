package repair

import (
	"fmt"

	"github.com/boljen/go-bitmap"

	"github.com/ostafen/scandisk/internal/chain"
	"github.com/ostafen/scandisk/internal/clustermap"
	"github.com/ostafen/scandisk/internal/fat12"
)

const foundExtension = "DAT"

// FoundFile is one orphan cluster turned into a new root-directory entry
// by the orphan-adoption sweep.
type FoundFile struct {
	Name         string
	StartCluster uint32
}

// Sweep runs the two cluster-map sweeps of spec §4.7, in order: orphan
// adoption, then the ghost-pointer sweep. findings must be computed by
// re-running the validator after Anomalies has run, per spec §5's
// ordering rule ("orphan adoption must run after per-file repairs so that
// clusters freed by MORE become available").
func Sweep(v *fat12.Volume, cm *clustermap.Map, findings []chain.Finding) []FoundFile {
	alloc := newSlotAllocator(v)
	found := adoptOrphans(v, cm, findings, alloc)
	sweepGhostPointers(v, findings)
	return found
}

// adoptOrphans implements spec §4.7 sweep 1: every USED-but-not-POINTED
// cluster is isolated as a one-cluster chain and filed as FOUNDn.DAT in
// the first available root-directory slot. A full root directory leaves
// the cluster isolated but unfiled -- the FAT mutation already makes it
// self-consistent, so it's not reported as a further anomaly.
func adoptOrphans(v *fat12.Volume, cm *clustermap.Map, findings []chain.Finding, alloc *slotAllocator) []FoundFile {
	var found []FoundFile
	n := 1

	for _, f := range findings {
		if f.Kind != chain.UsedButNotPointed {
			continue
		}

		v.Table.Set(f.Cluster, fat12.EntryEOFMax)
		cm.Set(f.Cluster, clustermap.POINTED)

		handle, wasEmpty, ok := alloc.allocate()
		if !ok {
			continue
		}

		name := fmt.Sprintf("FOUND%d", n)
		n++

		fat12.CreateDirent(v.Data, handle, name, foundExtension, fat12.AttrArchive, uint16(f.Cluster), v.BPB.BytesPerCluster)
		if wasEmpty {
			next := fat12.Handle(uint32(handle) + fat12.DirentSize)
			if uint32(next) < v.BPB.RootDirOffset+v.BPB.RootDirSizeBytes {
				fat12.MarkSlotFree(v.Data, next)
			}
		}

		found = append(found, FoundFile{Name: name + "." + foundExtension, StartCluster: f.Cluster})
	}

	return found
}

// sweepGhostPointers implements spec §4.7 sweep 2: a cluster the FAT
// marks FREE but some chain still reached is set to EOF in place, per
// §9's note that this mainly cleans up a cluster a MORE repair just freed
// while an earlier walk still holds it POINTED.
func sweepGhostPointers(v *fat12.Volume, findings []chain.Finding) {
	for _, f := range findings {
		if f.Kind != chain.PointedButFree {
			continue
		}
		v.Table.Set(f.Cluster, fat12.EntryEOFMax)
	}
}

// slotAllocator finds the first available (EMPTY or DELETED) slot in the
// root directory, mirroring dargueta-disko's Allocator.AllocateBlock: a
// bitmap of occupied slots, scanned first-fit.
type slotAllocator struct {
	v        *fat12.Volume
	occupied bitmap.Bitmap
	slots    uint32
}

func newSlotAllocator(v *fat12.Volume) *slotAllocator {
	slots := v.BPB.RootDirEntries
	occupied := bitmap.New(int(slots))

	for i := uint32(0); i < slots; i++ {
		handle := fat12.Handle(v.BPB.RootDirOffset + i*fat12.DirentSize)
		b0 := fat12.RawNameByte0(v.Data, handle)
		if b0 != 0x00 && b0 != 0xE5 {
			occupied.Set(int(i), true)
		}
	}

	return &slotAllocator{v: v, occupied: occupied, slots: slots}
}

// allocate returns the handle of the first free slot, claiming it in the
// bitmap, and reports whether that slot was previously EMPTY (0x00) as
// opposed to DELETED (0xE5) -- only the EMPTY case requires re-zeroing the
// next slot per the directory-entry allocation invariant.
func (a *slotAllocator) allocate() (handle fat12.Handle, wasEmpty bool, ok bool) {
	for i := uint32(0); i < a.slots; i++ {
		if a.occupied.Get(int(i)) {
			continue
		}
		a.occupied.Set(int(i), true)

		handle = fat12.Handle(a.v.BPB.RootDirOffset + i*fat12.DirentSize)
		wasEmpty = fat12.RawNameByte0(a.v.Data, handle) == 0x00
		return handle, wasEmpty, true
	}
	return 0, false, false
}
