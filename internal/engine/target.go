/*
PURPOSE:
  Runs the benchmark lifecycle for one target: launch, warm up, overlap
  the memory sampler with the load test, collect, terminate.

REQUIREMENTS:
  User-specified:
  - Fixed warm-up delay, no readiness probing.
  - Non-empty load-generator stderr fails the run.
  - The server process must be terminated on every exit path.

  Implementation-discovered:
  - The sampler must be joined before anything else happens after the
    load test, so the peak is bounded to the test window.
  - Parse failures keep the narrative text but drop the Report.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/orchestrator.go
  - Uses: internal/toolchain, internal/sampler, internal/loadgen

ERROR HANDLING:
  - Launch and load-tool failures return errors; the orchestrator logs
    them and moves on. Nothing here aborts the overall run.

IMPLEMENTATION RULES:
  - Termination goes through a single deferred Stop; no kill calls
    scattered across branches.

USAGE:
  res, err := e.benchTarget(target)

SELF-HEALING INSTRUCTIONS:
  - If every target fails with connection errors from the load
    generator, the warm-up window is probably too short for the
    slowest server; raise `warmup` in the config.

RELATED FILES:
  - internal/engine/orchestrator.go
  - internal/sampler/sampler.go

MAINTENANCE:
  - Keep the narrative block layout in sync with the report consumers.
*/

package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/benchbot/benchbot/internal/loadgen"
	"github.com/benchbot/benchbot/internal/model"
	"github.com/benchbot/benchbot/internal/output"
)

// Process is the handle the engine needs from a launched server.
// Stop must be idempotent and safe after process exit.
type Process interface {
	Pid() int32
	Stop()
}

// Stopper is the join half of a running memory sampler.
type Stopper interface {
	Stop() uint64
}

// runResult carries one target's narrative blocks and, when metrics
// parsed, its Report.
type runResult struct {
	blocks []string
	report *model.Report
}

// benchTarget drives one full benchmark run. The returned error marks
// a failed run (launch or load tool); a nil error with a nil report
// means the narrative survived but the metrics were unparseable.
func (e *Engine) benchTarget(t model.Target) (runResult, error) {
	proc, err := e.launch(t)
	if err != nil {
		return runResult{}, err
	}
	defer proc.Stop()

	// Let the server begin accepting connections before load starts.
	e.sleep(e.Config.Warmup)

	s := e.startSampler(proc.Pid())
	out, runErr := e.LoadGen.Run(e.params())
	peak := s.Stop()

	if runErr != nil {
		return runResult{}, runErr
	}
	if out.Stderr != "" {
		return runResult{}, fmt.Errorf("load generator reported: %s", strings.TrimSpace(out.Stderr))
	}

	res := runResult{blocks: []string{
		fmt.Sprintf("## %s", t.Name),
		fmt.Sprintf("Maximum Memory Usage: %.1f MB", float64(peak)/1024/1024),
		fmt.Sprintf("```\n%s\n```", strings.TrimSpace(out.Stdout)),
	}}

	metrics, perr := loadgen.ParseMetrics(out.Stdout)
	if perr != nil {
		output.Logger.Warn("Could not parse benchmark result", "target", t.Key(), "error", perr)
		return res, nil
	}

	res.report = &model.Report{
		Name:       t.Name,
		Category:   t.Category,
		PeakMemory: peak,
		Metrics:    metrics,
		Timestamp:  time.Now(),
	}
	return res, nil
}
