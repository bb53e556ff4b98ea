// Package mmap memory-maps a FAT12 image read-write, so repairs write
// straight into the same bytes the volume was parsed from.
package mmap

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Mapping is a read-write memory-mapped disk image.
type Mapping struct {
	Data []byte
	file *os.File
}

// Open opens path for read-write and maps the whole file MAP_SHARED, so
// every write through Data is visible to the file on disk once Close
// flushes it.
func Open(path string) (*Mapping, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %q: %w", path, err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat image %q: %w", path, err)
	}
	size := fi.Size()
	if size == 0 {
		f.Close()
		return nil, fmt.Errorf("image %q is empty, cannot map", path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to mmap image %q: %w", path, err)
	}

	return &Mapping{Data: data, file: f}, nil
}

// Close flushes pending writes back to the file with Msync, then unmaps
// and closes it. Per spec §5, the tool holds the mapping for the whole
// run and releases it exactly once, here, at the end.
func (m *Mapping) Close() error {
	if m.Data == nil {
		return nil
	}

	syncErr := unix.Msync(m.Data, unix.MS_SYNC)

	unmapErr := unix.Munmap(m.Data)
	m.Data = nil

	closeErr := m.file.Close()
	m.file = nil

	switch {
	case syncErr != nil:
		return fmt.Errorf("failed to msync mapped image: %w", syncErr)
	case unmapErr != nil:
		return fmt.Errorf("failed to munmap image: %w", unmapErr)
	case closeErr != nil:
		return fmt.Errorf("failed to close image: %w", closeErr)
	}
	return nil
}
