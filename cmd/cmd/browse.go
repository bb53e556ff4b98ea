package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ostafen/scandisk/internal/browse"
	"github.com/ostafen/scandisk/internal/clustermap"
	"github.com/ostafen/scandisk/internal/fat12"
	"github.com/ostafen/scandisk/internal/mmap"
	"github.com/ostafen/scandisk/internal/walk"
)

// DefineBrowseCommand registers the read-only FUSE browser subcommand
// (SPEC_FULL.md's added interactive inspection surface).
func DefineBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "browse <image-path> <mountpoint>",
		Short:        "Mount a FAT12 image read-only via FUSE",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         RunBrowse,
	}
}

func RunBrowse(cmd *cobra.Command, args []string) error {
	path, mountpoint := args[0], args[1]

	mapping, err := mmap.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer mapping.Close()

	v, err := fat12.Open(mapping.Data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStructural, err)
	}

	cm := clustermap.New(v.BPB.TotalClusters)
	entries, _ := walk.Walk(v, cm)

	return browse.Mount(mountpoint, path, v, entries)
}
