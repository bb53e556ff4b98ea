// Package report turns a driver.Result into the two forms spec §6
// describes: human-readable progress/diagnostics on stdout (not a stable
// contract) and an optional structured JSON summary for the "-report
// FILE" flag.
package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/ostafen/scandisk/internal/chain"
	"github.com/ostafen/scandisk/internal/clustermap"
	"github.com/ostafen/scandisk/internal/driver"
	"github.com/ostafen/scandisk/internal/logger"
	"github.com/ostafen/scandisk/internal/walk"
)

// Printer writes a run's progress and outcome to a logger, the way the
// teacher's internal/scan.Scan narrates a scan to its own logger.
type Printer struct {
	log *logger.Logger
}

// New wraps log as a Printer.
func New(log *logger.Logger) *Printer {
	return &Printer{log: log}
}

// Listing prints the directory tree the walker found, indented by depth,
// one "name (size)" line per file and "name/" per directory.
func (p *Printer) Listing(entries []walk.Entry) {
	for _, e := range entries {
		indent := ""
		for i := 0; i < e.Depth; i++ {
			indent += "    "
		}
		if e.Dirent.IsDirectory() {
			p.log.Infof("%s%s/", indent, e.Dirent.Name)
			continue
		}
		p.log.Infof("%s%s (%s)", indent, e.Dirent.Name, humanize.Bytes(uint64(e.Dirent.FileSize)))
	}
}

// Summary prints the outcome of a run: per-anomaly-kind counts, adopted
// orphans, and any irreparable files, the way the teacher's Scan prints a
// per-partition summary at the end of internal/scan/scan.go.
func (p *Printer) Summary(res *driver.Result) {
	var less, more, dead, dupe int
	for _, a := range res.Anomalies {
		if a.Flag&clustermap.LESS != 0 {
			less++
		}
		if a.Flag&clustermap.MORE != 0 {
			more++
		}
		if a.Flag&clustermap.DEAD != 0 {
			dead++
		}
		if a.Flag&clustermap.DUPE != 0 {
			dupe++
		}
	}

	p.log.Infof("scanned %d directory entries, %d diagnostics", len(res.Entries), len(res.Diagnostics))
	p.log.Infof("anomalies: %d LESS, %d MORE, %d DEAD, %d DUPE", less, more, dead, dupe)

	var pointedButFree, usedNotPointed, badPointed int
	for _, f := range res.Findings {
		switch f.Kind {
		case chain.PointedButFree:
			pointedButFree++
		case chain.UsedButNotPointed:
			usedNotPointed++
		case chain.BadPointed:
			badPointed++
		}
	}
	p.log.Infof("cross-reference: %d pointed-but-free, %d used-but-not-pointed, %d bad-but-pointed",
		pointedButFree, usedNotPointed, badPointed)

	for _, f := range res.Found {
		p.log.Infof("adopted orphan cluster %d as %s", f.StartCluster, f.Name)
	}

	if res.Err != nil {
		p.log.Errorf("could not fully recover: %v", res.Err)
	}
}

// WriteJSON serializes res to path as JSON, for the "-report FILE" flag.
// The schema is this tool's own, not a stable cross-version contract.
func WriteJSON(path string, res *driver.Result) error {
	doc := jsonReport{
		EntryCount:      len(res.Entries),
		DiagnosticCount: len(res.Diagnostics),
	}
	for _, a := range res.Anomalies {
		doc.Anomalies = append(doc.Anomalies, jsonAnomaly{
			Name:  a.Dirent.Name,
			Flags: flagNames(a.Flag),
			Count: a.Count,
		})
	}
	for _, f := range res.Found {
		doc.Found = append(doc.Found, jsonFound{Name: f.Name, StartCluster: f.StartCluster})
	}
	if res.Err != nil {
		doc.Irreparable = res.Err.Error()
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report %q: %w", path, err)
	}
	return nil
}

type jsonReport struct {
	EntryCount      int           `json:"entryCount"`
	DiagnosticCount int           `json:"diagnosticCount"`
	Anomalies       []jsonAnomaly `json:"anomalies,omitempty"`
	Found           []jsonFound   `json:"found,omitempty"`
	Irreparable     string        `json:"irreparable,omitempty"`
}

type jsonAnomaly struct {
	Name  string   `json:"name"`
	Flags []string `json:"flags"`
	Count uint32   `json:"count"`
}

type jsonFound struct {
	Name         string `json:"name"`
	StartCluster uint32 `json:"startCluster"`
}

func flagNames(f clustermap.Flag) []string {
	var names []string
	if f&clustermap.LESS != 0 {
		names = append(names, "LESS")
	}
	if f&clustermap.MORE != 0 {
		names = append(names, "MORE")
	}
	if f&clustermap.DEAD != 0 {
		names = append(names, "DEAD")
	}
	if f&clustermap.DUPE != 0 {
		names = append(names, "DUPE")
	}
	if f&clustermap.NULL != 0 {
		names = append(names, "NULL")
	}
	return names
}
