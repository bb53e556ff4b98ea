//go:build linux
// +build linux

package browse

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/ostafen/scandisk/internal/fat12"
	"github.com/ostafen/scandisk/internal/walk"
)

// Mount builds the directory tree from entries and serves it read-only at
// mountpoint until a termination signal arrives, adapted from the
// teacher's internal/fuse/mount_linux.go Mount/waitForUmount pair.
// sourcePath is the image Mount was opened from, used by PrepareMountpoint
// to reject mounting a volume onto itself.
func Mount(mountpoint, sourcePath string, v *fat12.Volume, entries []walk.Entry) error {
	created, err := PrepareMountpoint(mountpoint, sourcePath)
	if err != nil {
		return err
	}
	if created {
		defer os.Remove(mountpoint)
	}

	c, err := fuse.Mount(mountpoint, fuse.ReadOnly())
	if err != nil {
		return err
	}
	defer c.Close()

	fs := New(v, newTree(entries))

	go func() {
		srv := fusefs.New(c, nil)
		if err := srv.Serve(fs); err != nil {
			log.Fatalf("serve error: %v", err)
		}
	}()

	return waitForUmount(mountpoint, len(entries))
}

// fileCount is the number of dirents the mounted tree is serving, logged so
// an operator watching the terminal can tell at a glance whether the mount
// reflects the volume they expect before sending the unmount signal.
func waitForUmount(mountpoint string, fileCount int) error {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)

	log.Printf("browsing %d entries read-only at %s; waiting for termination signal to unmount...", fileCount, mountpoint)

	const maxUnmountRetries = 3
	attempts := 0
	for sig := range sigc {
		log.Printf("signal received: %v", sig)

		if attempts >= maxUnmountRetries {
			log.Fatalf("maximum unmount retries (%d) exceeded for %s, exiting forcefully", maxUnmountRetries, mountpoint)
		}

		if err := fuse.Unmount(mountpoint); err == nil {
			log.Println("unmounted successfully")
			return nil
		} else {
			attempts++
			log.Printf("unmount failed: %v, retries remaining: %d", err, maxUnmountRetries-attempts)
		}
	}
	return nil
}

// PrepareMountpoint ensures mountpoint exists as an empty directory,
// creating it if missing. It reports whether it created the directory.
// sourcePath is rejected as a mountpoint outright: mounting a FUSE view
// onto the very image backing it would make every read through the mount
// re-enter the memory-mapped image it's browsing.
func PrepareMountpoint(mountpoint, sourcePath string) (bool, error) {
	if same, err := sameFile(mountpoint, sourcePath); err == nil && same {
		return false, fmt.Errorf("mountpoint %s must not be the image being browsed", mountpoint)
	}

	finfo, err := os.Stat(mountpoint)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.Mkdir(mountpoint, 0755); err != nil {
			return false, fmt.Errorf("failed to create mountpoint %s: %w", mountpoint, err)
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat mountpoint %s: %w", mountpoint, err)
	}
	if !finfo.IsDir() {
		return false, fmt.Errorf("mountpoint %s is not a directory", mountpoint)
	}

	f, err := os.Open(mountpoint)
	if err != nil {
		return false, fmt.Errorf("failed to open mountpoint %s: %w", mountpoint, err)
	}
	defer f.Close()

	if _, err := f.Readdirnames(1); err == nil {
		return false, fmt.Errorf("mountpoint %s is not empty", mountpoint)
	}
	return false, nil
}

// sameFile reports whether mountpoint and sourcePath name the same
// on-disk file. A stat failure on either path (mountpoint not created
// yet, typically) is not itself an error here -- it just means they
// can't be the same file.
func sameFile(mountpoint, sourcePath string) (bool, error) {
	a, err := os.Stat(mountpoint)
	if err != nil {
		return false, err
	}
	b, err := os.Stat(sourcePath)
	if err != nil {
		return false, err
	}
	return os.SameFile(a, b), nil
}
