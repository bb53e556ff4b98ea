// Package driver sequences the passes of spec §5 over an open volume:
// mark-used, walk-and-trace, validate, repair, re-validate, sweep. It is
// the single place that owns pass ordering; every other package only
// implements one pass in isolation.
package driver

import (
	"fmt"

	"github.com/ostafen/scandisk/internal/chain"
	"github.com/ostafen/scandisk/internal/clustermap"
	"github.com/ostafen/scandisk/internal/fat12"
	"github.com/ostafen/scandisk/internal/repair"
	"github.com/ostafen/scandisk/internal/walk"
)

// Result summarizes one run: what the walker saw, what anomalies and
// cross-reference findings it raised (before repair, for reporting), what
// new files orphan adoption created, and any per-file conditions the
// repairer gave up on.
type Result struct {
	Entries     []walk.Entry
	Diagnostics []walk.Diagnostic
	Anomalies   []chain.Anomaly
	Findings    []chain.Finding
	Found       []repair.FoundFile
	Err         error
}

// Detect runs the read-only passes -- mark-used, walk-and-trace, validate
// -- without mutating v, for the "-dry-run" flag (SPEC_FULL.md's added
// inspection mode). Its Result has no Found and a nil Err.
func Detect(v *fat12.Volume) *Result {
	cm := clustermap.New(v.BPB.TotalClusters)
	markUsed(v, cm)

	entries, diags, anomalies := walkAndTrace(v, cm)

	return &Result{
		Entries:     entries,
		Diagnostics: diags,
		Anomalies:   anomalies,
		Findings:    chain.Validate(cm),
	}
}

// Run executes the full pipeline against v, mutating its FAT and
// directory entries in place. Ordering follows spec §5 exactly: the
// mark-used pass must finish before chain tracing; tracing for every
// directory entry must finish before any repair; orphan adoption must run
// after per-file repairs so clusters MORE just freed are available and
// clusters DEAD recovery just spliced in are already POINTED.
func Run(v *fat12.Volume) (*Result, error) {
	cm := clustermap.New(v.BPB.TotalClusters)
	markUsed(v, cm)

	entries, diags, anomalies := walkAndTrace(v, cm)
	preRepairFindings := chain.Validate(cm)

	repairErr := repair.Anomalies(v, cm, anomalies)

	postRepairFindings := chain.Validate(cm)
	found := repair.Sweep(v, cm, postRepairFindings)

	res := &Result{
		Entries:     entries,
		Diagnostics: diags,
		Anomalies:   anomalies,
		Findings:    preRepairFindings,
		Found:       found,
		Err:         repairErr,
	}

	if repairErr != nil {
		return res, fmt.Errorf("repair completed with irreparable files: %w", repairErr)
	}
	return res, nil
}

func walkAndTrace(v *fat12.Volume, cm *clustermap.Map) ([]walk.Entry, []walk.Diagnostic, []chain.Anomaly) {
	entries, diags := walk.Walk(v, cm)

	var anomalies []chain.Anomaly
	for _, e := range entries {
		if e.Dirent.IsDirectory() {
			continue
		}
		if a, ok := chain.Trace(v, cm, e.Dirent); ok {
			anomalies = append(anomalies, a)
		}
	}
	return entries, diags, anomalies
}

// markUsed implements the mark-used pass (spec §2, Driver): for every
// cluster in [2, N), look up its FAT entry once and record USED (not FREE) and BAD (equals the BAD
// marker) in the Cluster Info Map. Grounded on the original scandisk.c's
// check_free_cluster, which does the same single linear pass before any
// directory entry is examined.
func markUsed(v *fat12.Volume, cm *clustermap.Map) {
	for c := uint32(2); c < v.BPB.TotalClusters; c++ {
		entry := v.Table.Get(c)
		if !fat12.IsFree(entry) {
			cm.Set(c, clustermap.USED)
		}
		if fat12.IsBad(entry) {
			cm.Set(c, clustermap.BAD)
		}
	}
}
