/*
PURPOSE:
  Builds and launches benchmark targets via their toolchain.
  Owns the Process handle abstraction for launched servers.

REQUIREMENTS:
  User-specified:
  - Go targets: `go build` / `go run .`.
  - Cargo targets: `cargo build --release` / `cargo run --release -q`.

  Implementation-discovered:
  - The strategy set is a closed map keyed on model.Tag; adding a
    language is a data addition, not new control flow.
  - Stop must be idempotent and safe after the process already exited.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Uses: internal/model

ERROR HANDLING:
  - Build failures are reported as BuildOutcome with captured stderr,
    not as errors; the caller decides exclusion.
  - Launch failures are errors; there is nothing to clean up.

IMPLEMENTATION RULES:
  - Use os/exec directly; keep the spawned command's stdout/stderr
    inherited so server logs stay visible during the run.

USAGE:
  out := toolchain.Build(target)
  proc, err := toolchain.Launch(target)
  defer proc.Stop()

SELF-HEALING INSTRUCTIONS:
  - If a toolchain binary is missing from PATH, builds fail with the
    exec error text in BuildOutcome.Stderr.

RELATED FILES:
  - internal/engine/target.go

MAINTENANCE:
  - Update the strategies map when onboarding a new language.
*/

package toolchain

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/benchbot/benchbot/internal/model"
)

type strategy struct {
	buildArgv []string
	runArgv   []string
}

// The closed set of launch strategies, keyed by toolchain tag.
var strategies = map[model.Tag]strategy{
	model.TagGo: {
		buildArgv: []string{"go", "build"},
		runArgv:   []string{"go", "run", "."},
	},
	model.TagCargo: {
		buildArgv: []string{"cargo", "build", "--release"},
		runArgv:   []string{"cargo", "run", "--release", "-q"},
	},
}

// Build compiles one target in its own directory and captures stderr.
func Build(t model.Target) model.BuildOutcome {
	s, ok := strategies[t.Toolchain]
	if !ok {
		return model.BuildOutcome{
			Target: t,
			Stderr: fmt.Sprintf("unknown toolchain %q", t.Toolchain),
		}
	}

	var stderr bytes.Buffer
	cmd := exec.Command(s.buildArgv[0], s.buildArgv[1:]...)
	cmd.Dir = t.Dir
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		text := stderr.String()
		if text == "" {
			text = err.Error()
		}
		return model.BuildOutcome{Target: t, Stderr: text}
	}
	return model.BuildOutcome{Target: t, OK: true}
}

// Launch starts one target's server process and returns its handle.
func Launch(t model.Target) (*Process, error) {
	s, ok := strategies[t.Toolchain]
	if !ok {
		return nil, fmt.Errorf("unknown toolchain %q", t.Toolchain)
	}

	cmd := exec.Command(s.runArgv[0], s.runArgv[1:]...)
	cmd.Dir = t.Dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to launch %s: %w", t.Key(), err)
	}
	return &Process{cmd: cmd}, nil
}

// Process is an opaque handle to a launched server.
type Process struct {
	cmd  *exec.Cmd
	once sync.Once
}

// Pid returns the process identifier for memory sampling.
func (p *Process) Pid() int32 {
	return int32(p.cmd.Process.Pid)
}

// Stop terminates the process and reaps it. It is idempotent and safe
// to call even if the process already exited; errors from kill/wait
// are deliberately ignored for that reason.
func (p *Process) Stop() {
	p.once.Do(func() {
		_ = p.cmd.Process.Kill()
		_ = p.cmd.Wait()
	})
}
