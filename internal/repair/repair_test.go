package repair_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ostafen/scandisk/internal/chain"
	"github.com/ostafen/scandisk/internal/clustermap"
	"github.com/ostafen/scandisk/internal/fat12"
	"github.com/ostafen/scandisk/internal/repair"
	"github.com/ostafen/scandisk/internal/testimage"
)

// S1: MORE repair frees the tail past the expected length.
func TestRepairMore(t *testing.T) {
	b := testimage.New(16)
	b.AddRootEntry(0, "a", "txt", fat12.AttrArchive, 10, 1024)
	v, err := b.Open()
	require.NoError(t, err)

	v.Table.Set(10, 11)
	v.Table.Set(11, 12)
	v.Table.Set(12, 13)
	v.Table.Set(13, fat12.EntryEOFMax)

	d := fat12.ReadDirent(v.Data, fat12.Handle(v.BPB.RootDirOffset))
	cm := clustermap.New(v.BPB.TotalClusters)
	a, ok := chain.Trace(v, cm, d)
	require.True(t, ok)

	err = repair.Anomalies(v, cm, []chain.Anomaly{a})
	require.NoError(t, err)

	require.True(t, fat12.IsEndOfFile(v.Table.Get(11)))
	require.True(t, fat12.IsFree(v.Table.Get(12)))
	require.True(t, fat12.IsFree(v.Table.Get(13)))

	got := fat12.ReadDirent(v.Data, d.Handle)
	require.Equal(t, uint32(1024), got.FileSize)
}

// MORE repair stops at a BAD cluster while freeing the excess tail, per
// spec §4.7, leaving it unfreed and marked BAD rather than clearing it.
func TestRepairMoreStopsAtBadCluster(t *testing.T) {
	b := testimage.New(16)
	b.AddRootEntry(0, "e", "txt", fat12.AttrArchive, 10, testimage.ClusterBytes)
	v, err := b.Open()
	require.NoError(t, err)

	v.Table.Set(10, 11)
	v.Table.Set(11, fat12.EntryBad)

	d := fat12.ReadDirent(v.Data, fat12.Handle(v.BPB.RootDirOffset))
	cm := clustermap.New(v.BPB.TotalClusters)
	cm.Set(10, clustermap.USED)
	cm.Set(11, clustermap.POINTED)

	a := chain.Anomaly{Dirent: d, Flag: clustermap.MORE, Count: 1}

	require.NoError(t, repair.Anomalies(v, cm, []chain.Anomaly{a}))

	require.True(t, fat12.IsEndOfFile(v.Table.Get(10)))
	require.True(t, fat12.IsBad(v.Table.Get(11)))
	require.True(t, cm.Has(11, clustermap.POINTED))
}

// S2: LESS repair rewrites the size field to match the actual chain length.
func TestRepairLess(t *testing.T) {
	b := testimage.New(32)
	b.AddRootEntry(0, "b", "txt", fat12.AttrArchive, 20, 2048)
	v, err := b.Open()
	require.NoError(t, err)

	v.Table.Set(20, 21)
	v.Table.Set(21, fat12.EntryEOFMax)

	d := fat12.ReadDirent(v.Data, fat12.Handle(v.BPB.RootDirOffset))
	cm := clustermap.New(v.BPB.TotalClusters)
	a, ok := chain.Trace(v, cm, d)
	require.True(t, ok)

	require.NoError(t, repair.Anomalies(v, cm, []chain.Anomaly{a}))

	got := fat12.ReadDirent(v.Data, d.Handle)
	require.Equal(t, uint32(2)*v.BPB.BytesPerCluster, got.FileSize)
}

// S3: DUPE repair cuts the loop and rewrites the size.
func TestRepairDupe(t *testing.T) {
	b := testimage.New(40)
	b.AddRootEntry(0, "c", "txt", fat12.AttrArchive, 30, 3*testimage.ClusterBytes)
	v, err := b.Open()
	require.NoError(t, err)

	v.Table.Set(30, 31)
	v.Table.Set(31, 32)
	v.Table.Set(32, 31)

	d := fat12.ReadDirent(v.Data, fat12.Handle(v.BPB.RootDirOffset))
	cm := clustermap.New(v.BPB.TotalClusters)
	a, ok := chain.Trace(v, cm, d)
	require.True(t, ok)

	require.NoError(t, repair.Anomalies(v, cm, []chain.Anomaly{a}))

	require.True(t, fat12.IsEndOfFile(v.Table.Get(32)))
	got := fat12.ReadDirent(v.Data, d.Handle)
	require.Equal(t, uint32(3)*v.BPB.BytesPerCluster, got.FileSize)
}

// S5: DEAD with a recoverable tail splices onto the unreferenced chain.
func TestRepairDeadRecoverableTail(t *testing.T) {
	b := testimage.New(60)
	b.AddRootEntry(0, "d", "txt", fat12.AttrArchive, 50, 2*testimage.ClusterBytes)
	v, err := b.Open()
	require.NoError(t, err)

	v.Table.Set(50, 51)
	v.Table.Set(51, fat12.EntryBad)
	v.Table.Set(52, 53)
	v.Table.Set(53, fat12.EntryEOFMax)

	d := fat12.ReadDirent(v.Data, fat12.Handle(v.BPB.RootDirOffset))
	cm := clustermap.New(v.BPB.TotalClusters)
	cm.Set(52, clustermap.USED)
	cm.Set(53, clustermap.USED)

	a, ok := chain.Trace(v, cm, d)
	require.True(t, ok)
	require.Equal(t, clustermap.DEAD, a.Flag)

	require.NoError(t, repair.Anomalies(v, cm, []chain.Anomaly{a}))

	require.Equal(t, uint16(52), v.Table.Get(51))
	got := fat12.ReadDirent(v.Data, d.Handle)
	require.Equal(t, uint32(3)*v.BPB.BytesPerCluster, got.FileSize)
	require.Equal(t, uint32(1536), got.FileSize)
	require.True(t, cm.Has(53, clustermap.POINTED))
}

// a.Count == 0 (garbage start cluster) is reported, never mutated.
func TestRepairDeadIrreparableReportsError(t *testing.T) {
	b := testimage.New(8)
	b.AddRootEntry(0, "g", "txt", fat12.AttrArchive, 200, 512)
	v, err := b.Open()
	require.NoError(t, err)

	a := chain.Anomaly{
		Dirent: fat12.ReadDirent(v.Data, fat12.Handle(v.BPB.RootDirOffset)),
		Flag:   clustermap.DEAD,
		Count:  0,
	}
	cm := clustermap.New(v.BPB.TotalClusters)

	err = repair.Anomalies(v, cm, []chain.Anomaly{a})
	require.Error(t, err)
}
