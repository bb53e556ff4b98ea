// Package testimage synthesizes minimal, valid FAT12 images in memory for
// tests, the way dargueta-disko's testing.LoadDiskImage hands its callers
// a ready-to-use volume -- except here the image is built programmatically
// field by field instead of decompressed from a checked-in fixture, since
// every geometry this package needs is small and synthetic.
package testimage

import (
	"encoding/binary"

	"github.com/ostafen/scandisk/internal/fat12"
)

const (
	BytesPerSector    = 512
	SectorsPerCluster = 1
	ReservedSectors   = 1
	NumFATs           = 1
	RootDirEntries    = 16
	FATSizeSectors    = 1
	ClusterBytes      = BytesPerSector * SectorsPerCluster
)

// Builder assembles one FAT12 image byte slice.
type Builder struct {
	data             []byte
	fatOffset        uint32
	rootDirOffset    uint32
	dataRegionOffset uint32
	totalClusters    uint32
}

// New allocates a Builder sized to hold totalClusters data clusters, with
// a boot sector already written and every FAT entry, directory slot, and
// data cluster zeroed.
func New(totalClusters uint32) *Builder {
	rootDirSectors := uint32((RootDirEntries*fat12.DirentSize + BytesPerSector - 1) / BytesPerSector)
	dataSectors := (totalClusters - 2) * SectorsPerCluster
	totalSectors := ReservedSectors + NumFATs*FATSizeSectors + rootDirSectors + dataSectors

	fatOffset := uint32(ReservedSectors * BytesPerSector)
	rootDirOffset := fatOffset + NumFATs*FATSizeSectors*BytesPerSector
	dataRegionOffset := rootDirOffset + rootDirSectors*BytesPerSector

	size := dataRegionOffset + dataSectors*BytesPerSector
	data := make([]byte, size)

	data[0] = 0xEB
	data[1] = 0x3C
	data[2] = 0x90
	copy(data[3:11], "SCNDISKT")

	binary.LittleEndian.PutUint16(data[11:], BytesPerSector)
	data[13] = SectorsPerCluster
	binary.LittleEndian.PutUint16(data[14:], ReservedSectors)
	data[16] = NumFATs
	binary.LittleEndian.PutUint16(data[17:], RootDirEntries)
	binary.LittleEndian.PutUint16(data[19:], uint16(totalSectors))
	data[21] = 0xF0
	binary.LittleEndian.PutUint16(data[22:], FATSizeSectors)
	binary.LittleEndian.PutUint16(data[24:], 18)
	binary.LittleEndian.PutUint16(data[26:], 2)
	binary.LittleEndian.PutUint32(data[28:], 0)
	binary.LittleEndian.PutUint32(data[32:], 0)

	binary.LittleEndian.PutUint16(data[510:], 0xAA55)

	return &Builder{
		data:             data,
		fatOffset:        fatOffset,
		rootDirOffset:    rootDirOffset,
		dataRegionOffset: dataRegionOffset,
		totalClusters:    totalClusters,
	}
}

// SetFAT writes value into the first FAT's entry for cluster.
func (b *Builder) SetFAT(cluster uint32, value uint16) {
	t := fat12.NewTable(b.data[b.fatOffset:b.fatOffset+FATSizeSectors*BytesPerSector], b.totalClusters)
	t.Set(cluster, value)
}

// SetCluster fills cluster's data region bytes with content, truncating
// or zero-padding to exactly one cluster's size.
func (b *Builder) SetCluster(cluster uint32, content []byte) {
	off := b.dataRegionOffset + (cluster-2)*ClusterBytes
	dst := b.data[off : off+ClusterBytes]
	for i := range dst {
		dst[i] = 0
	}
	copy(dst, content)
}

// AddRootEntry writes a directory entry into root-directory slot index
// (0-based).
func (b *Builder) AddRootEntry(slot int, name, ext string, attr uint8, startCluster uint16, size uint32) {
	handle := fat12.Handle(b.rootDirOffset + uint32(slot)*fat12.DirentSize)
	fat12.CreateDirent(b.data, handle, name, ext, attr, startCluster, size)
}

// Bytes returns the assembled image.
func (b *Builder) Bytes() []byte {
	return b.data
}

// Open parses the assembled image as a fat12.Volume.
func (b *Builder) Open() (*fat12.Volume, error) {
	return fat12.Open(b.data)
}
