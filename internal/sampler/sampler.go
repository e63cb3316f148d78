/*
PURPOSE:
  Samples the peak resident memory of a running process while a load
  test is in flight, on its own goroutine.

REQUIREMENTS:
  User-specified:
  - Poll at a fixed short interval (100ms default) and track the max.
  - Stop only when signaled; return the peak observed.

  Implementation-discovered:
  - A poll that finds the process gone contributes nothing; the process
    can exit under load without failing the sampler.
  - The stop signal is a one-shot channel close, the result a single
    hand-off at join time. No locks are needed.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/target.go
  - Uses: github.com/shirou/gopsutil/v3/process for RSS

ERROR HANDLING:
  - Probe errors (missing process, permission) are treated as a zero
    contribution, never surfaced.

IMPLEMENTATION RULES:
  - No busy-spin; sleep on a ticker between polls.
  - The probe is injectable for tests; production uses gopsutil.

USAGE:
  s := sampler.Start(pid, 100*time.Millisecond)
  // ... run load ...
  peak := s.Stop()

SELF-HEALING INSTRUCTIONS:
  - If peaks read as zero, check the sampled pid is the server process
    and not a wrapper that exits immediately.

RELATED FILES:
  - internal/engine/target.go

MAINTENANCE:
  - Keep the default interval in sync with internal/config.
*/

package sampler

import (
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// DefaultInterval is the poll period when the caller has no opinion.
const DefaultInterval = 100 * time.Millisecond

// Probe reads the current resident memory of a process in bytes.
type Probe func(pid int32) (uint64, error)

func rssProbe(pid int32) (uint64, error) {
	p, err := process.NewProcess(pid)
	if err != nil {
		return 0, err
	}
	info, err := p.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return info.RSS, nil
}

// Sampler observes one process for the duration of one load test.
type Sampler struct {
	stop chan struct{}
	done chan uint64

	once sync.Once
	peak uint64
}

// Start begins sampling pid at the given interval using the gopsutil
// RSS probe.
func Start(pid int32, interval time.Duration) *Sampler {
	return StartWithProbe(pid, interval, rssProbe)
}

// StartWithProbe is Start with an injected probe.
func StartWithProbe(pid int32, interval time.Duration, probe Probe) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Sampler{
		stop: make(chan struct{}),
		done: make(chan uint64, 1),
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var peak uint64
		for {
			if rss, err := probe(pid); err == nil && rss > peak {
				peak = rss
			}
			select {
			case <-s.stop:
				s.done <- peak
				return
			case <-ticker.C:
			}
		}
	}()
	return s
}

// Stop signals the poll loop to finish and joins it, returning the
// peak resident memory observed. Subsequent calls return the same peak.
func (s *Sampler) Stop() uint64 {
	s.once.Do(func() {
		close(s.stop)
		s.peak = <-s.done
	})
	return s.peak
}
