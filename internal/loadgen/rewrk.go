/*
PURPOSE:
  Invokes the external rewrk load generator synchronously and captures
  its output for parsing.

REQUIREMENTS:
  User-specified:
  - Arguments: -t threads, -c connections, -d duration, -h url.
  - Non-empty stderr means the run failed.

  Implementation-discovered:
  - The exact command line is also shown in the report preamble, so it
    is rendered in one place here.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Consumed by: internal/loadgen/parse.go

ERROR HANDLING:
  - Exec errors (binary missing) are returned; stderr classification is
    left to the caller.

IMPLEMENTATION RULES:
  - Synchronous: Run blocks until the tool exits.
  - The Runner interface exists so the engine can be tested without a
    rewrk binary on PATH.

USAGE:
  gen := loadgen.Rewrk{Bin: "rewrk"}
  out, err := gen.Run(loadgen.Params{Threads: 7, Connections: 500, DurationSecs: 30, URL: url})

SELF-HEALING INSTRUCTIONS:
  - If Run fails immediately, verify rewrk is installed and on PATH.

RELATED FILES:
  - internal/loadgen/parse.go
  - internal/engine/target.go

MAINTENANCE:
  - Update Args if rewrk changes its flag surface.
*/

package loadgen

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Params describes one load-generator invocation.
type Params struct {
	Threads      int
	Connections  int
	DurationSecs int
	URL          string
}

// Output is the captured text of one invocation. Stderr is empty on
// success.
type Output struct {
	Stdout string
	Stderr string
}

// Runner runs the load generator synchronously.
type Runner interface {
	Run(p Params) (Output, error)
	CommandLine(p Params) string
}

// Rewrk shells out to the rewrk binary.
type Rewrk struct {
	Bin string
}

// Args renders the rewrk argument vector for p.
func (r Rewrk) Args(p Params) []string {
	return []string{
		"-t", strconv.Itoa(p.Threads),
		"-c", strconv.Itoa(p.Connections),
		"-d", fmt.Sprintf("%ds", p.DurationSecs),
		"-h", p.URL,
	}
}

// CommandLine renders the full invocation for the report preamble.
func (r Rewrk) CommandLine(p Params) string {
	return r.bin() + " " + strings.Join(r.Args(p), " ")
}

// Run invokes rewrk and blocks until it exits.
func (r Rewrk) Run(p Params) (Output, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.Command(r.bin(), r.Args(p)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil && out.Stderr == "" {
		// Surface the exec failure through the same channel as tool
		// errors so the caller has a single classification path.
		return out, fmt.Errorf("failed to run %s: %w", r.bin(), err)
	}
	return out, nil
}

func (r Rewrk) bin() string {
	if r.Bin == "" {
		return "rewrk"
	}
	return r.Bin
}
