package fat12

import (
	"encoding/binary"
	"strings"
)

// DirentSize is the size, in bytes, of one on-disk directory entry.
const DirentSize = 32

// Directory entry attribute flags, per spec §3 ("Directory entry").
const (
	AttrReadOnly  = 0x01
	AttrHidden    = 0x02
	AttrSystem    = 0x04
	AttrVolumeID  = 0x08
	AttrDirectory = 0x10
	AttrArchive   = 0x20

	// AttrLongName is the combination spec §3 calls out: "the combination
	// all-four-low-bits-set denotes a long-filename extension".
	AttrLongName = AttrReadOnly | AttrHidden | AttrSystem | AttrVolumeID
)

// Special values of name[0], per spec §3.
const (
	nameFreeMarker    = 0x00
	nameDeletedMarker = 0xE5
	nameDotMarker     = 0x2E
)

// Handle identifies a 32-byte directory entry by its absolute byte offset
// in the volume's backing image. Anomaly records and repairs refer to
// dirents by Handle rather than copying their contents, since a repair
// must write back into the same bytes the entry was read from (spec §9,
// "Directory-entry references").
type Handle uint32

// Dirent is the decoded form of one on-disk directory entry.
type Dirent struct {
	Handle       Handle
	Name         string
	Attr         uint8
	StartCluster uint16
	FileSize     uint32
}

// IsDirectory reports whether the entry is a subdirectory.
func (d Dirent) IsDirectory() bool { return d.Attr&AttrDirectory != 0 }

// IsVolumeLabel reports whether the entry is the volume label.
func (d Dirent) IsVolumeLabel() bool { return d.Attr&AttrLongName != AttrLongName && d.Attr&AttrVolumeID != 0 }

// IsLongName reports whether the entry is a long-filename extension
// record, which this tool ignores entirely per spec §1 (non-goal).
func (d Dirent) IsLongName() bool { return d.Attr&AttrLongName == AttrLongName }

// EntryKind classifies a raw 32-byte slot without allocating a Dirent,
// used by the walker to decide whether to stop, skip, or yield.
type EntryKind int

const (
	EntryEndOfDirectory EntryKind = iota
	EntrySkip
	EntryVolumeLabel
	EntryRegular
)

// DecodeAt decodes the 32 bytes at data[offset:offset+DirentSize] in the
// volume's backing image. offset becomes the returned Dirent's Handle.
// kind tells the caller whether scanning should stop (EntryEndOfDirectory,
// name[0] == 0x00), skip this slot silently (deleted, dot/dotdot, or
// long-filename extension), skip it but report it (EntryVolumeLabel, per
// spec §4.3 "volume-label is reported but not yielded for further
// processing"), or process it as a regular file or subdirectory entry.
func DecodeAt(data []byte, offset uint32) (Dirent, EntryKind) {
	raw := data[offset : offset+DirentSize]

	switch raw[0] {
	case nameFreeMarker:
		return Dirent{}, EntryEndOfDirectory
	case nameDeletedMarker, nameDotMarker:
		return Dirent{}, EntrySkip
	}

	attr := raw[11]
	if attr&AttrLongName == AttrLongName {
		return Dirent{}, EntrySkip
	}

	name := strings.TrimRight(string(raw[0:8]), " ")
	ext := strings.TrimRight(string(raw[8:11]), " ")
	if ext != "" {
		name = name + "." + ext
	}

	d := Dirent{
		Handle:       Handle(offset),
		Name:         name,
		Attr:         attr,
		StartCluster: binary.LittleEndian.Uint16(raw[26:28]),
		FileSize:     binary.LittleEndian.Uint32(raw[28:32]),
	}
	if d.IsVolumeLabel() {
		return d, EntryVolumeLabel
	}
	return d, EntryRegular
}

// ReadDirent re-reads the current on-disk contents of the entry at handle.
// Repairs that touch a dirent re-read it via this rather than trusting a
// possibly stale in-memory copy.
func ReadDirent(data []byte, handle Handle) Dirent {
	d, _ := DecodeAt(data, uint32(handle))
	return d
}

// SetStartCluster rewrites the start-cluster field of the dirent at
// handle.
func SetStartCluster(data []byte, handle Handle, cluster uint16) {
	binary.LittleEndian.PutUint16(data[uint32(handle)+26:], cluster)
}

// SetFileSize rewrites the file-size field of the dirent at handle.
func SetFileSize(data []byte, handle Handle, size uint32) {
	binary.LittleEndian.PutUint32(data[uint32(handle)+28:], size)
}

// CreateDirent writes a new directory entry into the 32 bytes at handle,
// with the 8.3 name built from name and ext (each right-padded with
// spaces to their fixed width), the given attribute byte, start cluster,
// and file size, and all timestamp fields zeroed.
//
// Per spec §4.7's directory-entry allocation invariant, if the slot at
// handle was previously EMPTY (name[0] == 0x00), the caller is
// responsible for re-terminating the scan by zeroing the first byte of
// the *next* slot; CreateDirent only ever writes the slot it's given.
func CreateDirent(data []byte, handle Handle, name, ext string, attr uint8, startCluster uint16, size uint32) {
	raw := data[uint32(handle) : uint32(handle)+DirentSize]
	for i := range raw {
		raw[i] = 0
	}

	copy(raw[0:8], padName(name, 8))
	copy(raw[8:11], padName(ext, 3))
	raw[11] = attr
	binary.LittleEndian.PutUint16(raw[26:28], startCluster)
	binary.LittleEndian.PutUint32(raw[28:32], size)
}

func padName(s string, width int) []byte {
	out := make([]byte, width)
	for i := range out {
		out[i] = ' '
	}
	copy(out, strings.ToUpper(s))
	return out
}

// RawNameByte0 returns the first byte of the 8-byte name field for the
// slot at handle, used to distinguish EMPTY (0x00) from DELETED (0xE5)
// from occupied slots when scanning for free directory entries.
func RawNameByte0(data []byte, handle Handle) byte {
	return data[uint32(handle)]
}

// MarkSlotFree zeroes the first byte of the slot at handle, terminating
// directory scans at that point (spec §4.7's allocation invariant).
func MarkSlotFree(data []byte, handle Handle) {
	data[uint32(handle)] = nameFreeMarker
}
