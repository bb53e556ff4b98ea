package walk_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ostafen/scandisk/internal/clustermap"
	"github.com/ostafen/scandisk/internal/fat12"
	"github.com/ostafen/scandisk/internal/testimage"
	"github.com/ostafen/scandisk/internal/walk"
)

func TestWalkFlatRoot(t *testing.T) {
	b := testimage.New(8)
	b.AddRootEntry(0, "a", "txt", fat12.AttrArchive, 2, 10)
	b.AddRootEntry(1, "b", "txt", fat12.AttrArchive, 3, 10)
	b.SetFAT(2, fat12.EntryEOFMax)
	b.SetFAT(3, fat12.EntryEOFMax)

	v, err := b.Open()
	require.NoError(t, err)

	cm := clustermap.New(v.BPB.TotalClusters)
	entries, diags := walk.Walk(v, cm)

	require.Empty(t, diags)
	require.Len(t, entries, 2)
	require.Equal(t, "A.TXT", entries[0].Dirent.Name)
	require.Equal(t, "B.TXT", entries[1].Dirent.Name)
}

func TestWalkDescendsSubdirectory(t *testing.T) {
	b := testimage.New(8)
	b.AddRootEntry(0, "sub", "", fat12.AttrDirectory, 2, 0)
	b.SetFAT(2, fat12.EntryEOFMax)

	// cluster 2 holds the subdirectory's own entries.
	child := make([]byte, testimage.ClusterBytes)
	fat12.CreateDirent(child, 0, "inner", "dat", fat12.AttrArchive, 3, 5)
	b.SetCluster(2, child)
	b.SetFAT(3, fat12.EntryEOFMax)

	v, err := b.Open()
	require.NoError(t, err)

	cm := clustermap.New(v.BPB.TotalClusters)
	entries, _ := walk.Walk(v, cm)

	require.Len(t, entries, 2)
	require.Equal(t, "SUB", entries[0].Dirent.Name)
	require.True(t, entries[0].Dirent.IsDirectory())
	require.Equal(t, "SUB/INNER.DAT", entries[1].Path)
	require.True(t, cm.Has(2, clustermap.POINTED))
}

func TestWalkStopsAtEmptySlot(t *testing.T) {
	b := testimage.New(8)
	b.AddRootEntry(0, "a", "txt", fat12.AttrArchive, 2, 10)
	b.SetFAT(2, fat12.EntryEOFMax)
	// slot 1 left as all-zero (EMPTY): entries after it must not surface.
	b.AddRootEntry(2, "never", "txt", fat12.AttrArchive, 3, 1)
	b.SetFAT(3, fat12.EntryEOFMax)

	v, err := b.Open()
	require.NoError(t, err)

	cm := clustermap.New(v.BPB.TotalClusters)
	entries, _ := walk.Walk(v, cm)

	require.Len(t, entries, 1)
	require.Equal(t, "A.TXT", entries[0].Dirent.Name)
}
