package chain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ostafen/scandisk/internal/chain"
	"github.com/ostafen/scandisk/internal/clustermap"
	"github.com/ostafen/scandisk/internal/fat12"
	"github.com/ostafen/scandisk/internal/testimage"
)

func newVolume(t *testing.T, totalClusters uint32) (*fat12.Volume, *testimage.Builder) {
	t.Helper()
	b := testimage.New(totalClusters)
	v, err := b.Open()
	require.NoError(t, err)
	return v, b
}

// S1: MORE, chain 10->11->12->13->EOF, size demands only 1024 bytes (2 clusters).
func TestTraceMore(t *testing.T) {
	v, _ := newVolume(t, 16)
	v.Table.Set(10, 11)
	v.Table.Set(11, 12)
	v.Table.Set(12, 13)
	v.Table.Set(13, fat12.EntryEOFMax)

	d := fat12.Dirent{Name: "A.TXT", StartCluster: 10, FileSize: 1024}
	cm := clustermap.New(v.BPB.TotalClusters)

	a, ok := chain.Trace(v, cm, d)
	require.True(t, ok)
	require.Equal(t, clustermap.MORE, a.Flag)
	require.Equal(t, uint32(4), a.Count)
}

// S2: LESS, chain 20->21->EOF, size demands 2048 bytes (4 clusters).
func TestTraceLess(t *testing.T) {
	v, _ := newVolume(t, 32)
	v.Table.Set(20, 21)
	v.Table.Set(21, fat12.EntryEOFMax)

	d := fat12.Dirent{Name: "B.TXT", StartCluster: 20, FileSize: 2048}
	cm := clustermap.New(v.BPB.TotalClusters)

	a, ok := chain.Trace(v, cm, d)
	require.True(t, ok)
	require.Equal(t, clustermap.LESS, a.Flag)
	require.Equal(t, uint32(2), a.Count)
}

// S3: DUPE, chain 30->31->32->31 loops.
func TestTraceDupe(t *testing.T) {
	v, _ := newVolume(t, 40)
	v.Table.Set(30, 31)
	v.Table.Set(31, 32)
	v.Table.Set(32, 31)

	d := fat12.Dirent{Name: "C.TXT", StartCluster: 30, FileSize: 3 * testimage.ClusterBytes}
	cm := clustermap.New(v.BPB.TotalClusters)

	a, ok := chain.Trace(v, cm, d)
	require.True(t, ok)
	require.Equal(t, clustermap.DUPE, a.Flag)
	require.Equal(t, uint32(3), a.Count)
}

// S5: DEAD, chain 50->51-><BAD>.
func TestTraceDead(t *testing.T) {
	v, _ := newVolume(t, 60)
	v.Table.Set(50, 51)
	v.Table.Set(51, fat12.EntryBad)

	d := fat12.Dirent{Name: "D.TXT", StartCluster: 50, FileSize: 2 * testimage.ClusterBytes}
	cm := clustermap.New(v.BPB.TotalClusters)

	a, ok := chain.Trace(v, cm, d)
	require.True(t, ok)
	require.Equal(t, clustermap.DEAD, a.Flag)
	require.Equal(t, uint32(2), a.Count)
}

// S6: NULL-only, start cluster 0, no anomaly.
func TestTraceNullOnlySkipped(t *testing.T) {
	v, _ := newVolume(t, 8)
	d := fat12.Dirent{Name: "E.TXT", StartCluster: 0, FileSize: 0}
	cm := clustermap.New(v.BPB.TotalClusters)

	_, ok := chain.Trace(v, cm, d)
	require.False(t, ok)
}

func TestTraceSoundChainNoAnomaly(t *testing.T) {
	v, _ := newVolume(t, 16)
	v.Table.Set(10, 11)
	v.Table.Set(11, fat12.EntryEOFMax)

	d := fat12.Dirent{Name: "OK.TXT", StartCluster: 10, FileSize: 2 * testimage.ClusterBytes}
	cm := clustermap.New(v.BPB.TotalClusters)

	_, ok := chain.Trace(v, cm, d)
	require.False(t, ok)
	require.True(t, cm.Has(10, clustermap.POINTED))
	require.True(t, cm.Has(11, clustermap.POINTED))
}

func TestTraceGarbageStartCluster(t *testing.T) {
	v, _ := newVolume(t, 16)
	d := fat12.Dirent{Name: "GARBAGE.TXT", StartCluster: 9999, FileSize: 512}
	cm := clustermap.New(v.BPB.TotalClusters)

	a, ok := chain.Trace(v, cm, d)
	require.True(t, ok)
	require.Equal(t, clustermap.DEAD, a.Flag)
	require.Equal(t, uint32(0), a.Count)
}
