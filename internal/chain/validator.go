package chain

import "github.com/ostafen/scandisk/internal/clustermap"

// OrphanKind classifies a cluster the cross-reference sweep flagged.
type OrphanKind int

const (
	// PointedButFree: some chain reached this cluster, but the FAT marks
	// it FREE. Repaired by the ghost-pointer sweep (spec §4.7).
	PointedButFree OrphanKind = iota
	// UsedButNotPointed: the FAT allocates this cluster, but no chain
	// reaches it. Repaired by orphan adoption (spec §4.7).
	UsedButNotPointed
	// BadPointed: the cluster is marked BAD yet some chain still reached
	// it. Reported informationally; spec §4.6 takes no repair action.
	BadPointed
)

// Finding is one cluster the validator has something to say about.
type Finding struct {
	Cluster uint32
	Kind    OrphanKind
}

// Validate scans cm for clusters in [2, cm.Len()) whose POINTED and USED
// bits disagree, per spec §4.6. Clusters marked BAD but not POINTED are
// silent orphan-BAD clusters and are not reported at all.
func Validate(cm *clustermap.Map) []Finding {
	var findings []Finding

	for i := uint32(2); i < cm.Len(); i++ {
		switch {
		case cm.Has(i, clustermap.BAD):
			if cm.Has(i, clustermap.POINTED) {
				findings = append(findings, Finding{Cluster: i, Kind: BadPointed})
			}
		case cm.Has(i, clustermap.POINTED) && !cm.Has(i, clustermap.USED):
			findings = append(findings, Finding{Cluster: i, Kind: PointedButFree})
		case cm.Has(i, clustermap.USED) && !cm.Has(i, clustermap.POINTED):
			findings = append(findings, Finding{Cluster: i, Kind: UsedButNotPointed})
		}
	}
	return findings
}
