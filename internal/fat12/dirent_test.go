package fat12_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ostafen/scandisk/internal/fat12"
)

func TestCreateDirentAndReadDirent(t *testing.T) {
	data := make([]byte, fat12.DirentSize*2)

	fat12.CreateDirent(data, 0, "readme", "txt", fat12.AttrArchive, 5, 1024)

	d, kind := fat12.DecodeAt(data, 0)
	require.Equal(t, fat12.EntryRegular, kind)
	require.Equal(t, "README.TXT", d.Name)
	require.Equal(t, uint16(5), d.StartCluster)
	require.Equal(t, uint32(1024), d.FileSize)
	require.False(t, d.IsDirectory())

	d2 := fat12.ReadDirent(data, fat12.Handle(0))
	require.Equal(t, d, d2)
}

func TestDecodeAtEndOfDirectory(t *testing.T) {
	data := make([]byte, fat12.DirentSize)
	_, kind := fat12.DecodeAt(data, 0)
	require.Equal(t, fat12.EntryEndOfDirectory, kind)
}

func TestDecodeAtSkipsDeletedDotAndLongName(t *testing.T) {
	data := make([]byte, fat12.DirentSize*3)

	fat12.CreateDirent(data, 0, "old", "txt", fat12.AttrArchive, 0, 0)
	data[0] = 0xE5
	_, kind := fat12.DecodeAt(data, 0)
	require.Equal(t, fat12.EntrySkip, kind)

	fat12.CreateDirent(data, fat12.DirentSize, "", "", 0, 0, 0)
	data[fat12.DirentSize] = 0x2E
	_, kind = fat12.DecodeAt(data, fat12.DirentSize)
	require.Equal(t, fat12.EntrySkip, kind)

	fat12.CreateDirent(data, fat12.DirentSize*2, "x", "x", fat12.AttrLongName, 0, 0)
	_, kind = fat12.DecodeAt(data, fat12.DirentSize*2)
	require.Equal(t, fat12.EntrySkip, kind)
}

func TestSetStartClusterAndFileSize(t *testing.T) {
	data := make([]byte, fat12.DirentSize)
	fat12.CreateDirent(data, 0, "a", "bin", fat12.AttrArchive, 3, 10)

	fat12.SetStartCluster(data, 0, 99)
	fat12.SetFileSize(data, 0, 4096)

	d := fat12.ReadDirent(data, 0)
	require.Equal(t, uint16(99), d.StartCluster)
	require.Equal(t, uint32(4096), d.FileSize)
}

func TestCreateDirentDirectoryAttribute(t *testing.T) {
	data := make([]byte, fat12.DirentSize)
	fat12.CreateDirent(data, 0, "sub", "", fat12.AttrDirectory, 7, 0)

	d := fat12.ReadDirent(data, 0)
	require.True(t, d.IsDirectory())
	require.Equal(t, "SUB", d.Name)
}

func TestRawNameByte0AndMarkSlotFree(t *testing.T) {
	data := make([]byte, fat12.DirentSize)
	fat12.CreateDirent(data, 0, "a", "b", fat12.AttrArchive, 1, 1)

	require.NotEqual(t, byte(0x00), fat12.RawNameByte0(data, 0))

	fat12.MarkSlotFree(data, 0)
	require.Equal(t, byte(0x00), fat12.RawNameByte0(data, 0))
}
