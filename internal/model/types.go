/*
PURPOSE:
  Defines the core data structures used throughout Bench Bot.
  These models represent benchmark targets, build outcomes, parsed
  load-generator metrics, and per-target reports.

REQUIREMENTS:
  User-specified:
  - Record requests/sec, latency figures, transfer totals.
  - Track target name, category, and peak memory usage.

  Implementation-discovered:
  - Need JSON tags for the results.jsonl output.
  - Durations stay time.Duration internally; writers format them.

ARCHITECTURE INTEGRATION:
  - Used by: internal/workspace, internal/toolchain, internal/engine,
    internal/loadgen, internal/report, internal/output
  - Shared across boundaries.

ERROR HANDLING:
  - None (pure data structs).

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - A Report is immutable once constructed; nothing downstream mutates it.

USAGE:
  r := model.Report{Name: "axum", PeakMemory: 12 << 20, Metrics: m}

SELF-HEALING INSTRUCTIONS:
  - If new metrics are needed, add field and update the JSON/CSV writers.

RELATED FILES:
  - internal/loadgen/parse.go
  - internal/output/csv.go
  - internal/output/json.go

MAINTENANCE:
  - Update when the load generator starts reporting new figures.
*/

package model

import (
	"time"
)

// Tag identifies which toolchain builds and launches a target.
// The set is closed; adding a language means adding a Tag constant
// plus a strategy entry in internal/toolchain.
type Tag string

const (
	TagGo    Tag = "go"
	TagCargo Tag = "cargo"
)

// Target is one benchmarked implementation: a directory containing a
// buildable server, grouped with its siblings by Category.
type Target struct {
	Category  string `json:"category"`
	Name      string `json:"name"`
	Dir       string `json:"-"`
	Toolchain Tag    `json:"toolchain"`
}

// Key returns the stable identity used for exclusion bookkeeping.
func (t Target) Key() string {
	return t.Category + "/" + t.Name
}

// BuildOutcome records the result of building one target. A failed
// build permanently excludes the target from the run.
type BuildOutcome struct {
	Target Target `json:"target"`
	OK     bool   `json:"ok"`
	Stderr string `json:"stderr,omitempty"`
}

// Metrics is the structured decomposition of one load-generator report.
type Metrics struct {
	RequestsTotal uint64        `json:"requests_total"`
	ReqPerSec     float64       `json:"req_per_sec"`
	LatencyAvg    time.Duration `json:"latency_avg_ns"`
	LatencyStdev  time.Duration `json:"latency_stdev_ns"`
	LatencyMin    time.Duration `json:"latency_min_ns"`
	LatencyMax    time.Duration `json:"latency_max_ns"`
	TransferBytes uint64        `json:"transfer_bytes"`
	TransferRate  float64       `json:"transfer_bytes_per_sec"`
}

// Report is the unit of comparison: one successfully benchmarked
// target with its peak resident memory and parsed metrics.
type Report struct {
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	PeakMemory uint64    `json:"peak_memory_bytes"`
	Metrics    Metrics   `json:"metrics"`
	Timestamp  time.Time `json:"timestamp"`
}

// PeakMemoryMB is the figure shown in the narrative blocks.
func (r Report) PeakMemoryMB() float64 {
	return float64(r.PeakMemory) / 1024 / 1024
}
