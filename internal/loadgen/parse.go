/*
PURPOSE:
  Parses rewrk's human-readable report into model.Metrics.
  The expected layout is a versioned contract with the tool; anything
  that deviates fails loudly with ErrUnparseable.

REQUIREMENTS:
  User-specified:
  - Extract req/sec, latency figures, and transfer totals by label,
    independent of exact column spacing.

  Implementation-discovered:
  - rewrk prints latencies as a header row (Avg/Stdev/Min/Max) followed
    by a value row; the other figures are `Label: value` pairs.
  - Transfer sizes carry a unit (B/KB/MB/GB); rates add a `/Sec` suffix.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/target.go
  - Produces: model.Metrics

ERROR HANDLING:
  - Every failure wraps ErrUnparseable so callers can classify with
    errors.Is. Parsing never panics.

IMPLEMENTATION RULES:
  - No side effects; pure text in, struct out.

USAGE:
  m, err := loadgen.ParseMetrics(out.Stdout)
  if errors.Is(err, loadgen.ErrUnparseable) { ... }

SELF-HEALING INSTRUCTIONS:
  - If parsing starts failing after a rewrk upgrade, diff the new output
    against the layout documented above and adjust the label matching.

RELATED FILES:
  - internal/loadgen/rewrk.go

MAINTENANCE:
  - Treat any layout change here as a contract version bump.
*/

package loadgen

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/benchbot/benchbot/internal/model"
)

// ErrUnparseable marks load-generator output the parser does not
// recognize. Recoverable: the target keeps its narrative text but is
// dropped from the comparison table.
var ErrUnparseable = errors.New("unparseable load generator output")

var sizeUnits = map[string]float64{
	"B":  1,
	"KB": 1 << 10,
	"MB": 1 << 20,
	"GB": 1 << 30,
	"TB": 1 << 40,
}

// ParseMetrics extracts a Metrics value from rewrk's stdout.
func ParseMetrics(text string) (model.Metrics, error) {
	var (
		m            model.Metrics
		gotLatencies bool
		gotRequests  bool
		gotTransfer  bool
		wantLatRow   bool
	)

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch {
		case wantLatRow:
			wantLatRow = false
			if len(fields) < 4 {
				return m, fmt.Errorf("%w: latency row has %d fields, want 4", ErrUnparseable, len(fields))
			}
			var err error
			dst := []*time.Duration{&m.LatencyAvg, &m.LatencyStdev, &m.LatencyMin, &m.LatencyMax}
			for i, d := range dst {
				if *d, err = time.ParseDuration(fields[i]); err != nil {
					return m, fmt.Errorf("%w: bad latency %q", ErrUnparseable, fields[i])
				}
			}
			gotLatencies = true

		case isLatencyHeader(fields):
			wantLatRow = true

		case contains(fields, "Req/Sec:"):
			total, err := labeledValue(fields, "Total:")
			if err != nil {
				return m, err
			}
			rps, err := labeledValue(fields, "Req/Sec:")
			if err != nil {
				return m, err
			}
			if m.RequestsTotal, err = strconv.ParseUint(total, 10, 64); err != nil {
				return m, fmt.Errorf("%w: bad request total %q", ErrUnparseable, total)
			}
			if m.ReqPerSec, err = strconv.ParseFloat(rps, 64); err != nil {
				return m, fmt.Errorf("%w: bad req/sec %q", ErrUnparseable, rps)
			}
			gotRequests = true

		case contains(fields, "Rate:") && contains(fields, "Total:"):
			totalBytes, err := labeledSize(fields, "Total:")
			if err != nil {
				return m, err
			}
			rate, err := labeledSize(fields, "Rate:")
			if err != nil {
				return m, err
			}
			m.TransferBytes = uint64(totalBytes)
			m.TransferRate = rate
			gotTransfer = true
		}
	}

	switch {
	case !gotLatencies:
		return m, fmt.Errorf("%w: no latency section", ErrUnparseable)
	case !gotRequests:
		return m, fmt.Errorf("%w: no requests section", ErrUnparseable)
	case !gotTransfer:
		return m, fmt.Errorf("%w: no transfer section", ErrUnparseable)
	}
	return m, nil
}

func isLatencyHeader(fields []string) bool {
	return len(fields) >= 4 &&
		fields[0] == "Avg" && fields[1] == "Stdev" &&
		fields[2] == "Min" && fields[3] == "Max"
}

func contains(fields []string, label string) bool {
	for _, f := range fields {
		if f == label {
			return true
		}
	}
	return false
}

// labeledValue returns the token directly following label.
func labeledValue(fields []string, label string) (string, error) {
	for i, f := range fields {
		if f == label && i+1 < len(fields) {
			return fields[i+1], nil
		}
	}
	return "", fmt.Errorf("%w: missing %s value", ErrUnparseable, label)
}

// labeledSize returns the byte count for a `Label: 931.13 MB` pair.
// A trailing `/Sec` on the unit is accepted for transfer rates.
func labeledSize(fields []string, label string) (float64, error) {
	for i, f := range fields {
		if f != label || i+2 >= len(fields) {
			continue
		}
		value, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad %s size %q", ErrUnparseable, label, fields[i+1])
		}
		unit := strings.TrimSuffix(fields[i+2], "/Sec")
		scale, ok := sizeUnits[unit]
		if !ok {
			return 0, fmt.Errorf("%w: unknown size unit %q", ErrUnparseable, fields[i+2])
		}
		return value * scale, nil
	}
	return 0, fmt.Errorf("%w: missing %s size", ErrUnparseable, label)
}
