// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package fat12 reads and writes the on-disk structures of a FAT12 volume:
// the boot sector / BPB, the packed 12-bit file allocation table, and the
// 32-byte directory entries. It works directly on a caller-supplied byte
// slice (typically backed by a read/write mapping of the whole image) and
// never copies the bytes it hands back to callers.
package fat12

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// BootSectorSize is the size, in bytes, of the boot sector / reserved area
// header this package reads.
const BootSectorSize = 0x200

const bootSignature = 0xAA55

// rawBPB is the on-disk BIOS Parameter Block, decoded field by field with
// binary.Read exactly like the teacher's FatBootSector: fields are read in
// declaration order regardless of Go struct padding, so this must mirror
// the on-disk byte order precisely.
type rawBPB struct {
	JmpBoot         [3]byte
	OEMName         [8]byte
	BytesPerSector  uint16
	SecPerCluster   uint8
	ReservedSectors uint16
	NumFATs         uint8
	RootDirEntries  uint16
	TotalSectors16  uint16
	Media           uint8
	FATSize16       uint16
	SectorsPerTrack uint16
	NumHeads        uint16
	HiddenSectors   uint32
	TotalSectors32  uint32
}

// BPB holds the volume parameters this tool needs, derived once from the
// boot sector per spec §3 ("Volume parameters").
type BPB struct {
	BytesPerSector    uint32
	SectorsPerCluster uint32
	ReservedSectors   uint32
	NumFATs           uint32
	RootDirEntries    uint32
	TotalSectors      uint32
	SectorsPerFAT     uint32

	BytesPerCluster   uint32
	DirentsPerCluster uint32

	FATOffset        uint32
	FATSizeBytes     uint32
	RootDirOffset    uint32
	RootDirSizeBytes uint32
	DataRegionOffset uint32

	// TotalClusters is the cluster count upper bound N named throughout
	// spec §3: valid data cluster numbers are [2, TotalClusters).
	TotalClusters uint32
}

// ParseBPB decodes the boot sector at the start of data and derives the
// volume geometry. It returns a StructuralError-class error (per spec §7)
// if the signature is missing or the geometry is impossible; callers must
// not attempt repair when this fails.
func ParseBPB(data []byte) (*BPB, error) {
	if len(data) < BootSectorSize {
		return nil, fmt.Errorf("structural error: image too small to contain a boot sector: %d bytes", len(data))
	}

	var raw rawBPB
	if err := binary.Read(bytes.NewReader(data[:36]), binary.LittleEndian, &raw); err != nil {
		return nil, fmt.Errorf("structural error: failed to decode boot sector: %w", err)
	}

	signature := binary.LittleEndian.Uint16(data[510:512])
	if signature != bootSignature {
		return nil, fmt.Errorf("structural error: invalid boot sector signature: expected 0x%04X, got 0x%04X", bootSignature, signature)
	}

	switch raw.BytesPerSector {
	case 512, 1024, 2048, 4096:
	default:
		return nil, fmt.Errorf("structural error: BytesPerSector must be 512, 1024, 2048, or 4096, got %d", raw.BytesPerSector)
	}

	switch raw.SecPerCluster {
	case 1, 2, 4, 8, 16, 32, 64, 128:
	default:
		return nil, fmt.Errorf("structural error: SectorsPerCluster must be a power of 2 in [1, 128], got %d", raw.SecPerCluster)
	}

	if raw.NumFATs == 0 {
		return nil, fmt.Errorf("structural error: NumFATs must be nonzero")
	}

	totalSectors := uint32(raw.TotalSectors16)
	if totalSectors == 0 {
		totalSectors = raw.TotalSectors32
	}
	if totalSectors == 0 {
		return nil, fmt.Errorf("structural error: total sector count is zero")
	}

	if raw.FATSize16 == 0 {
		return nil, fmt.Errorf("structural error: SectorsPerFAT is zero")
	}

	bytesPerSector := uint32(raw.BytesPerSector)
	rootDirSectors := ((uint32(raw.RootDirEntries) * DirentSize) + bytesPerSector - 1) / bytesPerSector
	fatSizeSectors := uint32(raw.FATSize16)
	reservedSectors := uint32(raw.ReservedSectors)

	firstFATOffset := reservedSectors * bytesPerSector
	fatSizeBytes := fatSizeSectors * bytesPerSector
	rootDirOffset := firstFATOffset + uint32(raw.NumFATs)*fatSizeBytes
	rootDirSizeBytes := rootDirSectors * bytesPerSector
	dataRegionOffset := rootDirOffset + rootDirSizeBytes

	dataSectors := totalSectors - (reservedSectors + uint32(raw.NumFATs)*fatSizeSectors + rootDirSectors)
	totalClusters := dataSectors/uint32(raw.SecPerCluster) + 2

	if int(dataRegionOffset) > len(data) {
		return nil, fmt.Errorf("structural error: data region offset %d is beyond image size %d", dataRegionOffset, len(data))
	}

	bpb := &BPB{
		BytesPerSector:    bytesPerSector,
		SectorsPerCluster: uint32(raw.SecPerCluster),
		ReservedSectors:   reservedSectors,
		NumFATs:           uint32(raw.NumFATs),
		RootDirEntries:    uint32(raw.RootDirEntries),
		TotalSectors:      totalSectors,
		SectorsPerFAT:     fatSizeSectors,
		BytesPerCluster:   bytesPerSector * uint32(raw.SecPerCluster),
		FATOffset:         firstFATOffset,
		FATSizeBytes:      fatSizeBytes,
		RootDirOffset:     rootDirOffset,
		RootDirSizeBytes:  rootDirSizeBytes,
		DataRegionOffset:  dataRegionOffset,
		TotalClusters:     totalClusters,
	}
	bpb.DirentsPerCluster = bpb.BytesPerCluster / DirentSize
	return bpb, nil
}
