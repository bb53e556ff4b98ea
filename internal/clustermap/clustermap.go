// Package clustermap implements the per-cluster flag array of spec §3
// ("Cluster Info Map") and §4.4: eight independent, composable bits about
// each cluster, tracked as a plain byte array rather than a tagged
// variant, per the design note in spec §9 ("A bit-set is the right
// abstraction").
package clustermap

// Flag is one bit of per-cluster state. Flags compose freely: a cluster
// can be USED, POINTED, and DUPE simultaneously.
type Flag uint8

const (
	// USED: the FAT entry for this cluster is not FREE.
	USED Flag = 1 << iota
	// POINTED: some directory entry's chain reached this cluster.
	POINTED
	// BAD: the FAT entry equals the BAD marker.
	BAD
	// DUPE: the chain tracer observed this cluster's successor already
	// POINTED.
	DUPE
	// DEAD: the chain tracer observed this cluster's successor is
	// neither EOF nor a valid data cluster.
	DEAD
	// NULL: the owning file has start-cluster 0 (empty file); recorded
	// per file, not per cluster, but kept in the same flag space so
	// anomaly records use one consistent byte.
	NULL
	// LESS: the chain ended before the file size demanded.
	LESS
	// MORE: the chain continued past the file size.
	MORE
)

// Map is the Cluster Info Map: N flag bytes, indexed by cluster number,
// all zero initially.
type Map struct {
	flags []uint8
}

// New allocates a Map with room for cluster numbers in [0, n).
func New(n uint32) *Map {
	return &Map{flags: make([]uint8, n)}
}

// Len returns the number of clusters this map tracks.
func (m *Map) Len() uint32 { return uint32(len(m.flags)) }

// Set ORs f into cluster's flag byte.
func (m *Map) Set(cluster uint32, f Flag) {
	m.flags[cluster] |= uint8(f)
}

// Clear ANDs the complement of f into cluster's flag byte.
func (m *Map) Clear(cluster uint32, f Flag) {
	m.flags[cluster] &^= uint8(f)
}

// Has reports whether every bit in f is set for cluster.
func (m *Map) Has(cluster uint32, f Flag) bool {
	return m.flags[cluster]&uint8(f) == uint8(f)
}

// HasAny reports whether any bit in f is set for cluster.
func (m *Map) HasAny(cluster uint32, f Flag) bool {
	return m.flags[cluster]&uint8(f) != 0
}

// Get returns the raw flag byte for cluster.
func (m *Map) Get(cluster uint32) uint8 {
	return m.flags[cluster]
}
