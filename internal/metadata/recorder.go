// Package metadata accumulates run-level facts and serializes them once,
// after the entire statement stream has been processed, into the METADATA
// summary at the output root.
package metadata

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Versions carries the identity strings recorded for a run. All fields are
// resolved by the caller; empty values render as "unknown".
type Versions struct {
	DatabaseVersion string
	PgDumpVersion   string
	DatabaseName    string
	DatabaseHost    string
}

// Warning is one recoverable anomaly, traceable back to the dump by line.
type Warning struct {
	Line   int
	Reason string
}

// runNamespace scopes the name-based run ids. Run ids derive from the dump
// checksum so identical runs over identical input carry identical METADATA
// apart from timestamps.
var runNamespace = uuid.MustParse("b5d7a2f0-31c8-4c6e-9d5a-7e4f8c2a91d3")

// Recorder is an append-only log of run events. Not safe for concurrent
// use; the pipeline owns exactly one instance per run.
type Recorder struct {
	runID        uuid.UUID
	startedAt    time.Time
	elapsed      time.Duration
	versions     Versions
	dumpChecksum string
	warnings     []Warning
	counts       map[string]int
	statements   int
	excluded     int
	now          func() time.Time
}

// NewRecorder creates a Recorder for a new run.
func NewRecorder() *Recorder {
	return newRecorder(time.Now)
}

// newRecorder allows clock injection in tests.
func newRecorder(now func() time.Time) *Recorder {
	return &Recorder{
		counts: make(map[string]int),
		now:    now,
	}
}

// RunStarted records the resolved identity of the run's inputs and derives
// the run id from the dump checksum.
func (r *Recorder) RunStarted(v Versions, dumpChecksum string) {
	r.startedAt = r.now()
	r.versions = v
	r.dumpChecksum = dumpChecksum
	r.runID = uuid.NewSHA1(runNamespace, []byte(dumpChecksum))
}

// Warning appends a recoverable anomaly in processing order.
func (r *Recorder) Warning(line int, reason string) {
	r.warnings = append(r.warnings, Warning{Line: line, Reason: reason})
}

// Warnings returns the accumulated warnings in the order they were recorded.
func (r *Recorder) Warnings() []Warning {
	return r.warnings
}

// CountRouted increments the per-kind statement count.
func (r *Recorder) CountRouted(kind string) {
	r.counts[kind]++
	r.statements++
}

// CountExcluded increments the count of statements excluded by the schema
// filter. Exclusions are expected and not warnings, but they are accounted
// for so no statement vanishes silently.
func (r *Recorder) CountExcluded() {
	r.excluded++
}

// RunCompleted records the end of the run.
func (r *Recorder) RunCompleted() {
	r.elapsed = r.now().Sub(r.startedAt)
}

// Render serializes the summary artifact. Called exactly once per run,
// after RunCompleted.
func (r *Recorder) Render() []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# Do not edit\n")
	fmt.Fprintf(&b, "# Generated by pgsplit %s\n", r.startedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "# Schema parsing completed in %.2f seconds\n\n", r.elapsed.Seconds())

	fmt.Fprintf(&b, "run_id: %s\n", r.runID)
	fmt.Fprintf(&b, "database_version: %s\n", orUnknown(r.versions.DatabaseVersion))
	fmt.Fprintf(&b, "pg_dump_version: %s\n", orUnknown(r.versions.PgDumpVersion))
	fmt.Fprintf(&b, "database_name: %s\n", orUnknown(r.versions.DatabaseName))
	fmt.Fprintf(&b, "database_host: %s\n", orUnknown(r.versions.DatabaseHost))
	fmt.Fprintf(&b, "dump_sha256: %s\n", orUnknown(r.dumpChecksum))
	fmt.Fprintf(&b, "statements_routed: %d\n", r.statements)
	fmt.Fprintf(&b, "statements_excluded: %d\n", r.excluded)
	fmt.Fprintf(&b, "warnings: %t\n", len(r.warnings) > 0)

	if len(r.counts) > 0 {
		fmt.Fprintf(&b, "\n# Statements per object kind\n")
		kinds := make([]string, 0, len(r.counts))
		for k := range r.counts {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(&b, "%s: %d\n", k, r.counts[k])
		}
	}

	if len(r.warnings) > 0 {
		fmt.Fprintf(&b, "\n# Warnings\n")
		for _, w := range r.warnings {
			fmt.Fprintf(&b, "line %d: %s\n", w.Line, w.Reason)
		}
	}

	return []byte(b.String())
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
