// Package repair implements the per-file and per-volume repair passes of
// spec §4.7: it consumes the anomaly records from the chain tracer and the
// cross-reference findings from the validator, and mutates the FAT and
// directory entries to restore the invariants in spec §8.
package repair

import (
	"fmt"

	multierror "github.com/hashicorp/go-multierror"

	"github.com/ostafen/scandisk/internal/chain"
	"github.com/ostafen/scandisk/internal/clustermap"
	"github.com/ostafen/scandisk/internal/fat12"
)

// Anomalies walks anomalies in order and repairs each one in place. A
// record with more than one flag set is repaired by whichever of
// LESS/DEAD/DUPE is present -- spec §4.5's tie-break guarantees at most one
// of those three ever fires for a given chain, and MORE, when it
// co-occurs, is handled by whichever of those three repairs runs rather
// than by repairMore. A truncation or loop-cut rewrites the size to the
// chain it leaves behind; a DEAD splice sizes the file to one hop onto the
// replacement cluster, so any further tail of that cluster still runs past
// the new size. A bare MORE record -- the chain
// is otherwise sound, just longer than the size field demands -- is the
// only case that runs the dedicated MORE procedure.
//
// The returned error, when non-nil, is a *multierror.Error aggregating
// every DEAD chain with no valid predecessor to splice from; none of
// those failures abort the pass, since spec §7 requires one irreparable
// file to never halt the run.
func Anomalies(v *fat12.Volume, cm *clustermap.Map, anomalies []chain.Anomaly) error {
	var errs *multierror.Error

	for _, a := range anomalies {
		switch {
		case a.Flag&clustermap.LESS != 0:
			repairLess(v, a)
		case a.Flag&clustermap.DEAD != 0:
			if err := repairDead(v, cm, a); err != nil {
				errs = multierror.Append(errs, err)
			}
		case a.Flag&clustermap.DUPE != 0:
			repairDupe(v, a)
		case a.Flag&clustermap.MORE != 0:
			repairMore(v, cm, a)
		}
	}

	return errs.ErrorOrNil()
}

// repairMore implements spec §4.7 "MORE": walk from the start cluster for
// E steps, EOF the E-th cluster, then free every cluster from the former
// successor onward, stopping at EOF or at a BAD cluster (which is left
// alone).
func repairMore(v *fat12.Volume, cm *clustermap.Map, a chain.Anomaly) {
	expected := v.ExpectedClusters(a.Dirent.FileSize)
	if expected == 0 {
		expected = 1
	}

	c := walkChain(v, uint32(a.Dirent.StartCluster), expected)

	formerSuccessor := v.Table.Get(c)
	v.Table.Set(c, fat12.EntryEOFMax)

	cur := formerSuccessor
	for v.Table.IsValidCluster(cur) {
		cluster := uint32(cur)
		next := v.Table.Get(cluster)
		if fat12.IsBad(next) {
			break
		}
		v.Table.Set(cluster, fat12.EntryFree)
		cm.Clear(cluster, clustermap.POINTED|clustermap.USED)
		if fat12.IsEndOfFile(next) {
			break
		}
		cur = next
	}
}

// repairLess implements spec §4.7 "LESS": the tracer already counted the
// chain's true length in a.Count, so the fix is a pure size-field rewrite.
func repairLess(v *fat12.Volume, a chain.Anomaly) {
	fat12.SetFileSize(v.Data, a.Dirent.Handle, a.Count*v.BPB.BytesPerCluster)
}

// repairDupe implements spec §4.7 "DUPE": a.Count is the number of
// clusters walked up to and including the one whose successor looped
// back, so that cluster is exactly a.Count steps from the start.
func repairDupe(v *fat12.Volume, a chain.Anomaly) {
	c := walkChain(v, uint32(a.Dirent.StartCluster), a.Count)
	v.Table.Set(c, fat12.EntryEOFMax)
	fat12.SetFileSize(v.Data, a.Dirent.Handle, a.Count*v.BPB.BytesPerCluster)
}

// repairDead implements spec §4.7 "DEAD": conservative recovery around a
// run of BAD clusters. p is the last valid predecessor (a.Count steps from
// the start); the repair scans cluster numbers forward from p+1, skipping
// a contiguous run of BAD clusters, looking for a replacement successor q.
// If q is unclaimed, it splices p onto q; otherwise it truncates the chain
// at p.
//
// The size field is set from the splice count as written (a.Count steps to
// p, plus one hop onto q) rather than from a full re-walk of q's existing
// tail -- per spec §8 S5 and the §9 open question "the size field after
// DEAD recovery ... may or may not match the dirent's original size ...
// the source elects to overwrite the size". q's own tail is still walked to
// mark it POINTED, so it isn't reported as a fresh orphan, but that walk
// does not lengthen the size field.
//
// a.Count == 0 means the dirent's start cluster itself is garbage -- there
// is no predecessor to splice from, and this is reported as irreparable
// rather than mutated.
func repairDead(v *fat12.Volume, cm *clustermap.Map, a chain.Anomaly) error {
	if a.Count == 0 {
		return fmt.Errorf("%s: start cluster %d is not a valid data cluster, cannot recover", a.Dirent.Name, a.Dirent.StartCluster)
	}

	p := walkChain(v, uint32(a.Dirent.StartCluster), a.Count)

	q, foundReplacement := scanPastBadRun(v, p+1)
	if !foundReplacement || cm.Has(q, clustermap.POINTED) {
		v.Table.Set(p, fat12.EntryEOFMax)
		fat12.SetFileSize(v.Data, a.Dirent.Handle, a.Count*v.BPB.BytesPerCluster)
		return nil
	}

	v.Table.Set(p, uint16(q))

	c := q
	maxSteps := v.Table.TotalClusters() + 1
	for step := uint32(0); v.Table.IsValidCluster(uint16(c)) && step < maxSteps; step++ {
		cm.Set(c, clustermap.POINTED)
		next := v.Table.Get(c)
		if fat12.IsEndOfFile(next) {
			break
		}
		c = uint32(next)
	}

	fat12.SetFileSize(v.Data, a.Dirent.Handle, (a.Count+1)*v.BPB.BytesPerCluster)
	return nil
}

// walkChain follows cluster c's FAT chain for steps-1 hops, starting from
// the file's recorded start cluster. Callers pass a step count already
// known to be in range (an anomaly's a.Count, or an expected-cluster
// count bounded by the tracer), so this never walks past a bad pointer.
func walkChain(v *fat12.Volume, start uint32, steps uint32) uint32 {
	c := start
	for i := uint32(1); i < steps; i++ {
		c = uint32(v.Table.Get(c))
	}
	return c
}

// scanPastBadRun scans cluster numbers forward from start, skipping any
// whose own FAT entry is BAD, and returns the first one that isn't. It
// reports false if it runs off the end of the cluster range without
// finding one.
func scanPastBadRun(v *fat12.Volume, start uint32) (uint32, bool) {
	c := start
	for v.Table.IsValidCluster(uint16(c)) {
		if !fat12.IsBad(v.Table.Get(c)) {
			return c, true
		}
		c++
	}
	return 0, false
}
