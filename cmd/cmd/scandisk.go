package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ostafen/scandisk/internal/driver"
	"github.com/ostafen/scandisk/internal/fat12"
	"github.com/ostafen/scandisk/internal/logger"
	"github.com/ostafen/scandisk/internal/mmap"
	"github.com/ostafen/scandisk/internal/report"
)

// ErrStructural marks a StructuralError per spec §7: the boot sector or
// geometry is impossible, and the run must halt before any mutation.
var ErrStructural = errors.New("structural error")

// ErrIO marks an I/O failure per spec §7: open, map, or write failed.
var ErrIO = errors.New("i/o error")

// DefineScandiskCommand registers the tool's primary command: scan an
// image, trace and repair its FAT chains, and report the outcome.
func DefineScandiskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          AppName + " <image-path>",
		Short:        "Check and repair a FAT12 image's cluster chains",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunScandisk,
	}

	cmd.Flags().CountP("verbose", "v", "increase logging verbosity (-v, -vv)")
	cmd.Flags().String("report", "", "write a JSON summary of the run to this path")
	cmd.Flags().Bool("dry-run", false, "detect anomalies without repairing the image")

	return cmd
}

func RunScandisk(cmd *cobra.Command, args []string) error {
	path := args[0]

	verbosity, _ := cmd.Flags().GetCount("verbose")
	reportPath, _ := cmd.Flags().GetString("report")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	log := logger.New(os.Stdout, logger.FromVerbosity(verbosity))
	printer := report.New(log)

	mapping, err := mmap.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer mapping.Close()

	v, err := fat12.Open(mapping.Data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStructural, err)
	}

	var res *driver.Result
	if dryRun {
		res = driver.Detect(v)
	} else {
		res, err = driver.Run(v)
	}

	printer.Listing(res.Entries)
	printer.Summary(res)

	if reportPath != "" {
		if writeErr := report.WriteJSON(reportPath, res); writeErr != nil {
			return fmt.Errorf("%w: %w", ErrIO, writeErr)
		}
	}

	if err != nil {
		log.Warnf("run completed with unresolved anomalies: %v", err)
	}
	return nil
}
