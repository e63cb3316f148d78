package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchbot/benchbot/internal/config"
	"github.com/benchbot/benchbot/internal/loadgen"
	"github.com/benchbot/benchbot/internal/model"
	"github.com/benchbot/benchbot/internal/report"
)

const goodOutput = `Beginning round 1...
Benchmarking 500 connections @ http://127.0.0.1:3000 for 30 second(s)
  Latencies:
    Avg      Stdev    Min      Max
    1.97ms   0.67ms   0.11ms   12.34ms
  Requests:
    Total: 7621910  Req/Sec: 254132.53
  Transfer:
    Total: 931.13 MB Transfer Rate: 31.04 MB/Sec
`

type fakeProc struct {
	pid   int32
	stops int
}

func (p *fakeProc) Pid() int32 { return p.pid }
func (p *fakeProc) Stop()      { p.stops++ }

type fakeSampler struct {
	peak    uint64
	stopped bool
}

func (s *fakeSampler) Stop() uint64 {
	s.stopped = true
	return s.peak
}

// fakeLoadGen hands out canned outputs in invocation order.
type fakeLoadGen struct {
	outputs []loadgen.Output
	errs    []error
	calls   int
}

func (f *fakeLoadGen) Run(p loadgen.Params) (loadgen.Output, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if i < len(f.outputs) {
		return f.outputs[i], err
	}
	return loadgen.Output{Stdout: goodOutput}, err
}

func (f *fakeLoadGen) CommandLine(p loadgen.Params) string {
	return fmt.Sprintf("rewrk -t %d -c %d -d %ds -h %s", p.Threads, p.Connections, p.DurationSecs, p.URL)
}

type testWorld struct {
	engine    *Engine
	cfg       *config.Config
	loadGen   *fakeLoadGen
	procs     []*fakeProc
	samplers  []*fakeSampler
	buildFail map[string]bool
	launchErr map[string]bool
	builds    int
	cooldowns int
}

func newTestWorld(t *testing.T) *testWorld {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.OutputDir = t.TempDir()
	cfg.Warmup = 0
	cfg.Cooldown = 5 * time.Second

	w := &testWorld{
		cfg:       cfg,
		loadGen:   &fakeLoadGen{},
		buildFail: make(map[string]bool),
		launchErr: make(map[string]bool),
	}

	w.engine = &Engine{
		Config:  cfg,
		LoadGen: w.loadGen,
		CPUName: "test-cpu",
		Threads: 2,
		build: func(tg model.Target) model.BuildOutcome {
			w.builds++
			if w.buildFail[tg.Name] {
				return model.BuildOutcome{Target: tg, Stderr: "compile error"}
			}
			return model.BuildOutcome{Target: tg, OK: true}
		},
		launch: func(tg model.Target) (Process, error) {
			if w.launchErr[tg.Name] {
				return nil, errors.New("bind: address already in use")
			}
			p := &fakeProc{pid: int32(1000 + len(w.procs))}
			w.procs = append(w.procs, p)
			return p, nil
		},
		startSampler: func(pid int32) Stopper {
			s := &fakeSampler{peak: 12 << 20}
			w.samplers = append(w.samplers, s)
			return s
		},
		sleep: func(d time.Duration) {
			if d == cfg.Cooldown {
				w.cooldowns++
			}
		},
	}
	return w
}

func targetsIn(category string, names ...string) []model.Target {
	ts := make([]model.Target, 0, len(names))
	for _, name := range names {
		ts = append(ts, model.Target{Category: category, Name: name, Dir: ".", Toolchain: model.TagCargo})
	}
	return ts
}

func (w *testWorld) document(t *testing.T, category string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(w.cfg.OutputDir, category+".md"))
	require.NoError(t, err)
	return string(data)
}

func TestEngineRun(t *testing.T) {
	t.Run("build failure excludes target, run continues", func(t *testing.T) {
		w := newTestWorld(t)
		w.buildFail["beta"] = true

		err := w.engine.Run(targetsIn("hello-world", "alpha", "beta", "gamma"))
		require.NoError(t, err)

		assert.Equal(t, 3, w.builds)
		assert.Len(t, w.procs, 2) // beta never launched

		doc := w.document(t, "hello-world")
		assert.Contains(t, doc, "## alpha")
		assert.Contains(t, doc, "## gamma")
		assert.NotContains(t, doc, "## beta")
		assert.NotContains(t, doc, report.EmptyComparison)
	})

	t.Run("every launched process stopped exactly once", func(t *testing.T) {
		w := newTestWorld(t)

		err := w.engine.Run(targetsIn("hello-world", "alpha", "beta"))
		require.NoError(t, err)

		require.Len(t, w.procs, 2)
		for _, p := range w.procs {
			assert.Equal(t, 1, p.stops)
		}
		for _, s := range w.samplers {
			assert.True(t, s.stopped)
		}
	})

	t.Run("cooldown between runs but not after the last", func(t *testing.T) {
		w := newTestWorld(t)

		err := w.engine.Run(targetsIn("hello-world", "alpha", "beta", "gamma"))
		require.NoError(t, err)
		assert.Equal(t, 2, w.cooldowns)
	})

	t.Run("load tool stderr drops the target but not the run", func(t *testing.T) {
		w := newTestWorld(t)
		w.loadGen.outputs = []loadgen.Output{
			{Stdout: "", Stderr: "connection refused"},
			{Stdout: goodOutput},
		}

		err := w.engine.Run(targetsIn("hello-world", "alpha", "gamma"))
		require.NoError(t, err)

		doc := w.document(t, "hello-world")
		assert.NotContains(t, doc, "## alpha")
		assert.Contains(t, doc, "## gamma")
		// Both processes still terminated despite the failed run.
		require.Len(t, w.procs, 2)
		for _, p := range w.procs {
			assert.Equal(t, 1, p.stops)
		}
		assert.Equal(t, 1, w.cooldowns)
	})

	t.Run("unparseable output keeps narrative, skips comparison", func(t *testing.T) {
		w := newTestWorld(t)
		w.loadGen.outputs = []loadgen.Output{{Stdout: "something unexpected"}}

		err := w.engine.Run(targetsIn("hello-world", "alpha"))
		require.NoError(t, err)

		doc := w.document(t, "hello-world")
		assert.Contains(t, doc, "## alpha")
		assert.Contains(t, doc, "something unexpected")
		assert.Contains(t, doc, report.EmptyComparison)
	})

	t.Run("launch failure still writes the category document", func(t *testing.T) {
		w := newTestWorld(t)
		w.launchErr["alpha"] = true

		err := w.engine.Run(targetsIn("hello-world", "alpha"))
		require.NoError(t, err)

		doc := w.document(t, "hello-world")
		assert.NotContains(t, doc, "## alpha")
		assert.Contains(t, doc, report.EmptyComparison)
		assert.Empty(t, w.procs)
	})

	t.Run("documents grouped per category", func(t *testing.T) {
		w := newTestWorld(t)

		targets := append(targetsIn("hello-world", "alpha"), targetsIn("json", "beta")...)
		err := w.engine.Run(targets)
		require.NoError(t, err)

		hello := w.document(t, "hello-world")
		json := w.document(t, "json")
		assert.Contains(t, hello, "## alpha")
		assert.NotContains(t, hello, "## beta")
		assert.Contains(t, json, "## beta")
	})

	t.Run("preamble appears in every document", func(t *testing.T) {
		w := newTestWorld(t)

		err := w.engine.Run(targetsIn("hello-world", "alpha"))
		require.NoError(t, err)

		doc := w.document(t, "hello-world")
		assert.Contains(t, doc, "Generated by bench-bot.")
		assert.Contains(t, doc, "# Hardware")
		assert.Contains(t, doc, "test-cpu")
		assert.Contains(t, doc, "rewrk -t 2 -c 500 -d 30s -h http://127.0.0.1:3000")
	})

	t.Run("peak memory lands in narrative and comparison", func(t *testing.T) {
		w := newTestWorld(t)

		err := w.engine.Run(targetsIn("hello-world", "alpha"))
		require.NoError(t, err)

		doc := w.document(t, "hello-world")
		assert.Contains(t, doc, "Maximum Memory Usage: 12.0 MB")
		assert.Contains(t, doc, "| alpha | 254132.53 |")
	})

	t.Run("machine-readable results written", func(t *testing.T) {
		w := newTestWorld(t)

		err := w.engine.Run(targetsIn("hello-world", "alpha"))
		require.NoError(t, err)

		csvData, err := os.ReadFile(filepath.Join(w.cfg.OutputDir, "results.csv"))
		require.NoError(t, err)
		assert.Contains(t, string(csvData), "alpha")

		jsonData, err := os.ReadFile(filepath.Join(w.cfg.OutputDir, "results.jsonl"))
		require.NoError(t, err)
		assert.Contains(t, string(jsonData), `"name":"alpha"`)
	})

	t.Run("all targets failing still succeeds", func(t *testing.T) {
		w := newTestWorld(t)
		w.buildFail["alpha"] = true
		w.buildFail["beta"] = true

		err := w.engine.Run(targetsIn("hello-world", "alpha", "beta"))
		require.NoError(t, err)

		// No runs, so no category documents; the results files still exist.
		_, statErr := os.Stat(filepath.Join(w.cfg.OutputDir, "hello-world.md"))
		assert.True(t, os.IsNotExist(statErr))
		_, err = os.Stat(filepath.Join(w.cfg.OutputDir, "results.csv"))
		assert.NoError(t, err)
	})

	t.Run("unwritable output directory is fatal", func(t *testing.T) {
		w := newTestWorld(t)
		file := filepath.Join(t.TempDir(), "not-a-dir")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
		w.cfg.OutputDir = file

		err := w.engine.Run(targetsIn("hello-world", "alpha"))
		assert.Error(t, err)
	})
}

func TestBenchTargetSamplerJoinedOnToolFailure(t *testing.T) {
	w := newTestWorld(t)
	w.loadGen.outputs = []loadgen.Output{{Stderr: "boom"}}

	_, err := w.engine.benchTarget(model.Target{Category: "hello-world", Name: "alpha"})
	assert.Error(t, err)

	require.Len(t, w.samplers, 1)
	assert.True(t, w.samplers[0].stopped)
	require.Len(t, w.procs, 1)
	assert.Equal(t, 1, w.procs[0].stops)
}
