// Package chain implements the per-file FAT chain tracer and the
// cluster-reachability cross-reference validator (spec §4.5, §4.6).
package chain

import (
	"github.com/ostafen/scandisk/internal/clustermap"
	"github.com/ostafen/scandisk/internal/fat12"
)

// Anomaly is one per-file anomaly record: the dirent it was raised
// against, the combination of flags describing the violation, and the
// number of clusters the tracer actually walked (used by the repairer to
// rewrite the file's size field).
type Anomaly struct {
	Dirent fat12.Dirent
	Flag   clustermap.Flag
	Count  uint32
}

// Trace walks d's FAT chain starting at its recorded start cluster,
// marking every visited cluster POINTED in cm and classifying the chain
// per spec §4.5. It returns (Anomaly{}, false) when the file needs no
// repair: either its chain is entirely sound, or its start cluster is 0
// (empty file, the NULL-only case: no cluster is visited, no flag is set,
// and nothing is queued for repair).
func Trace(v *fat12.Volume, cm *clustermap.Map, d fat12.Dirent) (Anomaly, bool) {
	if d.StartCluster == 0 {
		return Anomaly{}, false
	}

	if !v.Table.IsValidCluster(d.StartCluster) {
		// The start cluster itself is garbage. There's no predecessor to
		// splice from, so this can't be recovered the way a DEAD chain
		// normally is; surface it as a zero-length DEAD chain and let the
		// repairer report it as irreparable.
		return Anomaly{Dirent: d, Flag: clustermap.DEAD, Count: 0}, true
	}

	expected := v.ExpectedClusters(d.FileSize)

	var flag clustermap.Flag
	var count uint32
	c := uint32(d.StartCluster)

walk:
	for {
		count++
		cm.Set(c, clustermap.POINTED)
		next := v.Table.Get(c)

		switch {
		case count < expected && fat12.IsEndOfFile(next):
			cm.Set(c, clustermap.LESS)
			flag |= clustermap.LESS
			break walk
		case !fat12.IsEndOfFile(next) && !v.Table.IsValidCluster(next):
			cm.Set(c, clustermap.DEAD)
			flag |= clustermap.DEAD
			break walk
		case v.Table.IsValidCluster(next) && cm.Has(uint32(next), clustermap.POINTED):
			cm.Set(c, clustermap.DUPE)
			flag |= clustermap.DUPE
			break walk
		case fat12.IsEndOfFile(next):
			break walk
		default:
			c = uint32(next)
		}
	}

	if count > expected {
		flag |= clustermap.MORE
	}

	if flag == 0 {
		return Anomaly{}, false
	}
	return Anomaly{Dirent: d, Flag: flag, Count: count}, true
}
