/*
PURPOSE:
  High-level orchestrator for a full benchmark run.
  Builds every target, benchmarks the survivors sequentially, and emits
  one markdown document per category plus machine-readable results.

REQUIREMENTS:
  User-specified:
  - A build failure excludes the target but never aborts the run.
  - Cooldown between consecutive runs, never after the last.
  - Documents combine preamble, comparison table, and narrative blocks.

  Implementation-discovered:
  - Needs stable (sorted) target and category order for reproducible
    documents.
  - A category whose runs all failed still gets a document with an
    explicit empty comparison.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/workspace, internal/toolchain, internal/loadgen,
    internal/sampler, internal/report, internal/output

ERROR HANDLING:
  - Per-target failures are logged and skipped (resilience).
  - Only manifest load and output writes are fatal.

IMPLEMENTATION RULES:
  - Strictly sequential: one target at a time, one sampler goroutine at
    a time.
  - Collaborators are injected as fields so the loop is testable
    without go/cargo/rewrk on PATH.

USAGE:
  engine.Run(cfg)

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/engine/target.go

MAINTENANCE:
  - Update iteration logic if parallelism is ever introduced (it
    shouldn't be: overlapping runs contend for the hardware under test).
*/

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/benchbot/benchbot/internal/config"
	"github.com/benchbot/benchbot/internal/loadgen"
	"github.com/benchbot/benchbot/internal/model"
	"github.com/benchbot/benchbot/internal/output"
	"github.com/benchbot/benchbot/internal/report"
	"github.com/benchbot/benchbot/internal/sampler"
	"github.com/benchbot/benchbot/internal/toolchain"
	"github.com/benchbot/benchbot/internal/workspace"
)

// Engine owns one benchmark run. The function-typed fields default to
// the real collaborators and are replaced in tests.
type Engine struct {
	Config  *config.Config
	LoadGen loadgen.Runner
	CPUName string
	Threads int

	build        func(model.Target) model.BuildOutcome
	launch       func(model.Target) (Process, error)
	startSampler func(pid int32) Stopper
	sleep        func(time.Duration)
}

// New creates an Engine wired to the real toolchain, sampler and rewrk.
func New(cfg *config.Config) *Engine {
	name, logical := detectCPU()
	threads := logical - cfg.ReservedCores
	if threads < 1 {
		threads = 1
	}

	return &Engine{
		Config:  cfg,
		LoadGen: loadgen.Rewrk{Bin: cfg.LoadGenBin},
		CPUName: name,
		Threads: threads,
		build:   toolchain.Build,
		launch: func(t model.Target) (Process, error) {
			p, err := toolchain.Launch(t)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
		startSampler: func(pid int32) Stopper {
			return sampler.Start(pid, cfg.SampleInterval)
		},
		sleep: time.Sleep,
	}
}

// Run discovers targets from the workspace manifest and executes the
// full benchmark suite.
func Run(cfg *config.Config) error {
	targets, err := workspace.Load(cfg.Workspace)
	if err != nil {
		return err
	}
	return New(cfg).Run(targets)
}

// Run executes the suite over an already-discovered target list.
func (e *Engine) Run(targets []model.Target) error {
	if err := os.MkdirAll(e.Config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", e.Config.OutputDir, err)
	}

	// 1. Build Phase. A failed build permanently excludes the target.
	excluded := make(map[string]bool)
	for _, t := range targets {
		output.Logger.Info("Building", "target", t.Key())
		out := e.build(t)
		if !out.OK {
			output.Logger.Error("Build failed", "target", t.Key(), "stderr", out.Stderr)
			excluded[t.Key()] = true
		}
	}

	base := e.preamble()

	// Last runnable index, so the cooldown is skipped after the final run.
	last := -1
	for i, t := range targets {
		if !excluded[t.Key()] {
			last = i
		}
	}

	// 2. Run Phase, strictly sequential.
	narratives := make(map[string]*output.Markdown)
	var reports []model.Report

	for i, t := range targets {
		if excluded[t.Key()] {
			output.Logger.Warn("Skipping target because build failed", "target", t.Key())
			continue
		}

		// The category document exists even if every run in it fails.
		md, ok := narratives[t.Category]
		if !ok {
			md = output.NewMarkdown()
			narratives[t.Category] = md
		}

		output.Logger.Info("Benchmarking", "target", t.Key())
		res, err := e.benchTarget(t)
		if err != nil {
			output.Logger.Error("Benchmark failed", "target", t.Key(), "error", err)
		} else {
			for _, block := range res.blocks {
				md.Add(block)
			}
			if res.report != nil {
				reports = append(reports, *res.report)
			}
		}

		if i != last {
			// Lets the CPU cool down between runs.
			e.sleep(e.Config.Cooldown)
		}
	}

	// 3. Emit Phase.
	if err := e.writeDocuments(base, narratives, reports); err != nil {
		return err
	}
	return e.writeResults(reports)
}

// preamble builds the shared document head: hardware description and
// the exact load-generator command line.
func (e *Engine) preamble() *output.Markdown {
	md := output.NewMarkdown()
	md.Add("Generated by bench-bot.")
	md.Add("# Hardware")
	md.Add("## Cpu")
	md.Add(e.CPUName)
	md.Add("# Benchmark")
	md.Add("Command:")
	md.Add(fmt.Sprintf("```\n%s\n```", e.LoadGen.CommandLine(e.params())))
	return md
}

func (e *Engine) params() loadgen.Params {
	return loadgen.Params{
		Threads:      e.Threads,
		Connections:  e.Config.Connections,
		DurationSecs: e.Config.Duration,
		URL:          e.Config.URL,
	}
}

func (e *Engine) writeDocuments(base *output.Markdown, narratives map[string]*output.Markdown, reports []model.Report) error {
	categories := make([]string, 0, len(narratives))
	for c := range narratives {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	for _, category := range categories {
		doc := base.Clone()
		doc.Add("## Comparisons")
		doc.Add(report.Compare(byCategory(reports, category)))
		doc.Add(narratives[category].Finish())

		path := filepath.Join(e.Config.OutputDir, category+".md")
		output.Logger.Info("Writing output", "path", path)
		if err := os.WriteFile(path, []byte(doc.Finish()), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

// writeResults emits the machine-readable companions to the documents.
func (e *Engine) writeResults(reports []model.Report) error {
	csvW, err := output.NewCSVWriter(filepath.Join(e.Config.OutputDir, "results.csv"))
	if err != nil {
		return fmt.Errorf("failed to init CSV writer: %w", err)
	}
	defer csvW.Close()

	jsonW, err := output.NewJSONWriter(filepath.Join(e.Config.OutputDir, "results.jsonl"))
	if err != nil {
		return fmt.Errorf("failed to init JSON writer: %w", err)
	}
	defer jsonW.Close()

	for _, r := range reports {
		if err := csvW.Write(r); err != nil {
			return fmt.Errorf("failed to write result to CSV: %w", err)
		}
		if err := jsonW.Write(r); err != nil {
			return fmt.Errorf("failed to write result to JSON: %w", err)
		}
	}
	return nil
}

func byCategory(reports []model.Report, category string) []model.Report {
	var filtered []model.Report
	for _, r := range reports {
		if r.Category == category {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
