package browse

import (
	"io"

	"github.com/ostafen/scandisk/internal/fat12"
)

// chainReader reads a file's contents by walking its FAT chain one
// cluster at a time, the read path counterpart to internal/walk's
// directory-chain traversal.
type chainReader struct {
	v      *fat12.Volume
	start  uint32
	size   int64
	maxRun uint32
}

func newChainReader(v *fat12.Volume, dirent fat12.Dirent) *chainReader {
	return &chainReader{
		v:      v,
		start:  uint32(dirent.StartCluster),
		size:   int64(dirent.FileSize),
		maxRun: v.Table.TotalClusters() + 1,
	}
}

// ReadAt implements io.ReaderAt by walking the chain from the start
// cluster until it reaches the cluster containing off, then copying
// forward. It stops at the file's recorded size or at the first
// non-valid successor, whichever comes first -- a file whose chain is
// shorter than its size (an unrepaired LESS anomaly) simply reads short.
func (r *chainReader) ReadAt(p []byte, off int64) (int, error) {
	if off >= r.size || r.start == 0 {
		return 0, io.EOF
	}

	clusterSize := int64(r.v.BPB.BytesPerCluster)
	skip := off / clusterSize

	c := r.start
	for i := int64(0); i < skip; i++ {
		if !r.v.Table.IsValidCluster(uint16(c)) {
			return 0, io.EOF
		}
		c = uint32(r.v.Table.Get(c))
	}

	n := 0
	pos := off
	steps := uint32(0)
	for n < len(p) && pos < r.size && r.v.Table.IsValidCluster(uint16(c)) && steps < r.maxRun {
		steps++
		data := r.v.ClusterData(c)
		within := int(pos % clusterSize)
		chunk := data[within:]
		if remaining := r.size - pos; int64(len(chunk)) > remaining {
			chunk = chunk[:remaining]
		}
		copied := copy(p[n:], chunk)
		n += copied
		pos += int64(copied)

		if copied == 0 || within+copied < len(data) {
			break
		}

		next := r.v.Table.Get(c)
		if fat12.IsEndOfFile(next) {
			break
		}
		c = uint32(next)
	}

	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}
