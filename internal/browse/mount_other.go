//go:build !linux
// +build !linux

package browse

import (
	"fmt"

	"github.com/ostafen/scandisk/internal/fat12"
	"github.com/ostafen/scandisk/internal/walk"
)

// Mount reports that FUSE browsing is unavailable on this platform,
// matching the teacher's internal/fuse/mount.go fallback.
func Mount(mountpoint, sourcePath string, v *fat12.Volume, entries []walk.Entry) error {
	return fmt.Errorf("browse: FUSE mount is only supported on Linux")
}
