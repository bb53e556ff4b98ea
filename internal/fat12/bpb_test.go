package fat12_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ostafen/scandisk/internal/fat12"
	"github.com/ostafen/scandisk/internal/testimage"
)

func TestParseBPBGeometry(t *testing.T) {
	b := testimage.New(16)
	v, err := b.Open()
	require.NoError(t, err)

	require.Equal(t, uint32(testimage.BytesPerSector), v.BPB.BytesPerSector)
	require.Equal(t, uint32(testimage.ClusterBytes), v.BPB.BytesPerCluster)
	require.Equal(t, uint32(16), v.BPB.TotalClusters)
}

func TestParseBPBRejectsMissingSignature(t *testing.T) {
	b := testimage.New(4)
	data := b.Bytes()
	data[510] = 0
	data[511] = 0

	_, err := fat12.Open(data)
	require.Error(t, err)
}

func TestParseBPBRejectsShortImage(t *testing.T) {
	_, err := fat12.ParseBPB(make([]byte, 100))
	require.Error(t, err)
}

func TestClusterOffsetRoundTrip(t *testing.T) {
	b := testimage.New(8)
	v, err := b.Open()
	require.NoError(t, err)

	off := v.ClusterOffset(2)
	require.Equal(t, v.BPB.DataRegionOffset, off)

	off3 := v.ClusterOffset(3)
	require.Equal(t, v.BPB.DataRegionOffset+v.BPB.BytesPerCluster, off3)
}

func TestExpectedClusters(t *testing.T) {
	b := testimage.New(8)
	v, err := b.Open()
	require.NoError(t, err)

	require.Equal(t, uint32(0), v.ExpectedClusters(0))
	require.Equal(t, uint32(1), v.ExpectedClusters(1))
	require.Equal(t, uint32(1), v.ExpectedClusters(v.BPB.BytesPerCluster))
	require.Equal(t, uint32(2), v.ExpectedClusters(v.BPB.BytesPerCluster+1))
}
