/*
PURPOSE:
  Computes the cross-target comparison table for one category from the
  full set of Reports.

REQUIREMENTS:
  User-specified:
  - Rank targets and show figures relative to the best performer.
  - Deterministic ordering; recomputed fresh per request.

  Implementation-discovered:
  - Percentage columns need the best throughput and the lowest peak
    memory as denominators; both must guard against zero.
  - An empty Report set renders an explicit placeholder, not an error.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/orchestrator.go
  - Consumes: internal/model.Report

ERROR HANDLING:
  - None; pure function of its inputs.

IMPLEMENTATION RULES:
  - Sort by req/sec descending, name ascending on ties.
  - Never mutate the input slice.

USAGE:
  block := report.Compare(reports)

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update columns when Metrics grows new dimensions.
*/

package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/benchbot/benchbot/internal/model"
)

// EmptyComparison is rendered when no target produced parseable
// metrics.
const EmptyComparison = "No comparable results."

// Compare renders the markdown comparison table for the given reports.
func Compare(reports []model.Report) string {
	if len(reports) == 0 {
		return EmptyComparison
	}

	sorted := make([]model.Report, len(reports))
	copy(sorted, reports)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Metrics.ReqPerSec != sorted[j].Metrics.ReqPerSec {
			return sorted[i].Metrics.ReqPerSec > sorted[j].Metrics.ReqPerSec
		}
		return sorted[i].Name < sorted[j].Name
	})

	bestRPS := sorted[0].Metrics.ReqPerSec
	leastMem := sorted[0].PeakMemory
	for _, r := range sorted[1:] {
		if r.PeakMemory < leastMem {
			leastMem = r.PeakMemory
		}
	}

	var b strings.Builder
	b.WriteString("| Name | Req/Sec | (% of best) | Peak Memory | (% of least) | Avg Latency |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
	for _, r := range sorted {
		fmt.Fprintf(&b, "| %s | %.2f | %s | %.1f MB | %s | %s |\n",
			r.Name,
			r.Metrics.ReqPerSec,
			percent(r.Metrics.ReqPerSec, bestRPS),
			r.PeakMemoryMB(),
			percent(float64(r.PeakMemory), float64(leastMem)),
			r.Metrics.LatencyAvg,
		)
	}
	return strings.TrimRight(b.String(), "\n")
}

func percent(value, base float64) string {
	if base == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", value/base*100)
}
