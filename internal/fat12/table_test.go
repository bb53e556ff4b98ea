package fat12_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ostafen/scandisk/internal/fat12"
)

func TestTableSetGetEvenOdd(t *testing.T) {
	data := make([]byte, 12)
	table := fat12.NewTable(data, 8)

	table.Set(2, 0xABC)
	require.Equal(t, uint16(0xABC), table.Get(2))

	table.Set(3, 0x123)
	require.Equal(t, uint16(0x123), table.Get(3))
	// the even neighbor's value must survive the odd write.
	require.Equal(t, uint16(0xABC), table.Get(2))
}

func TestTableSetPreservesNeighborNibble(t *testing.T) {
	data := make([]byte, 12)
	table := fat12.NewTable(data, 8)

	table.Set(4, 0xFFF)
	table.Set(5, 0x000)
	require.Equal(t, uint16(0xFFF), table.Get(4))
	require.Equal(t, uint16(0x000), table.Get(5))

	table.Set(5, 0xFFF)
	require.Equal(t, uint16(0xFFF), table.Get(4))
	require.Equal(t, uint16(0xFFF), table.Get(5))
}

func TestTableSetMasksTo12Bits(t *testing.T) {
	data := make([]byte, 6)
	table := fat12.NewTable(data, 4)

	table.Set(2, 0xFFFF)
	require.Equal(t, uint16(0x0FFF), table.Get(2))
}

func TestIsFreeIsBadIsEndOfFile(t *testing.T) {
	require.True(t, fat12.IsFree(0x000))
	require.False(t, fat12.IsFree(0x001))

	require.True(t, fat12.IsBad(0xFF7))
	require.False(t, fat12.IsBad(0xFF8))

	require.True(t, fat12.IsEndOfFile(0xFF8))
	require.True(t, fat12.IsEndOfFile(0xFFF))
	require.False(t, fat12.IsEndOfFile(0xFF7))
}

func TestIsValidCluster(t *testing.T) {
	table := fat12.NewTable(make([]byte, 4), 10)

	require.False(t, table.IsValidCluster(0))
	require.False(t, table.IsValidCluster(1))
	require.True(t, table.IsValidCluster(2))
	require.True(t, table.IsValidCluster(9))
	require.False(t, table.IsValidCluster(10))
}
