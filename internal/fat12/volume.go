package fat12

import "fmt"

// Volume is an opened FAT12 image: its parsed boot sector, a view of the
// first FAT, and the full backing byte slice (the memory-mapped image in
// production, a plain []byte in tests).
type Volume struct {
	BPB   *BPB
	Table *Table
	Data  []byte
}

// Open parses data's boot sector and wraps it as a Volume. data is kept,
// not copied: every write the repair pass makes goes directly into it.
func Open(data []byte) (*Volume, error) {
	bpb, err := ParseBPB(data)
	if err != nil {
		return nil, err
	}

	if int(bpb.FATOffset+bpb.FATSizeBytes) > len(data) {
		return nil, fmt.Errorf("structural error: first FAT region extends beyond image size")
	}

	fatData := data[bpb.FATOffset : bpb.FATOffset+bpb.FATSizeBytes]
	table := NewTable(fatData, bpb.TotalClusters)

	return &Volume{BPB: bpb, Table: table, Data: data}, nil
}

// ClusterOffset returns the absolute byte offset of cluster's data in the
// backing image, per spec §4.2 ("cluster_to_addr").
func (v *Volume) ClusterOffset(cluster uint32) uint32 {
	return v.BPB.DataRegionOffset + (cluster-2)*v.BPB.BytesPerCluster
}

// ClusterData returns the slice of v.Data holding cluster's raw bytes.
func (v *Volume) ClusterData(cluster uint32) []byte {
	off := v.ClusterOffset(cluster)
	return v.Data[off : off+v.BPB.BytesPerCluster]
}

// RootDirData returns the slice of v.Data holding the fixed-size root
// directory region.
func (v *Volume) RootDirData() []byte {
	return v.Data[v.BPB.RootDirOffset : v.BPB.RootDirOffset+v.BPB.RootDirSizeBytes]
}

// ExpectedClusters returns ceil(size / BytesPerCluster), the E of spec
// §4.5 step "expected by the file size".
func (v *Volume) ExpectedClusters(size uint32) uint32 {
	if size == 0 {
		return 0
	}
	return (size + v.BPB.BytesPerCluster - 1) / v.BPB.BytesPerCluster
}
