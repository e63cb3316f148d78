/*
PURPOSE:
  Writes per-target reports to a CSV file.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  User-specified:
  - Output to CSV alongside the markdown documents.

  Implementation-discovered:
  - One row per successfully benchmarked target; latency columns in
    milliseconds so spreadsheets sort numerically.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Consumes: internal/model.Report

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write (critical for crash resilience).
  - Use Mutex if concurrent writes are expected.

USAGE:
  w, err := output.NewCSVWriter("results.csv")
  w.Write(report)
  w.Close()

SELF-HEALING INSTRUCTIONS:
  - If CSV format changes, update header and record conversion.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update Write() mapping when Report struct changes.
*/

package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/benchbot/benchbot/internal/model"
)

// CSVWriter handles writing reports to a CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter creates a new CSVWriter.
// It overwrites the file if it exists.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)

	header := []string{
		"category", "name", "timestamp",
		"req_per_sec", "requests_total",
		"latency_avg_ms", "latency_stdev_ms", "latency_min_ms", "latency_max_ms",
		"transfer_mb", "transfer_mb_per_sec",
		"peak_memory_mb",
	}
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()

	return &CSVWriter{
		file:   f,
		writer: w,
	}, nil
}

// Write writes a single report to the CSV file.
// It is thread-safe.
func (cw *CSVWriter) Write(r model.Report) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	record := []string{
		r.Category,
		r.Name,
		r.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		fmt.Sprintf("%.2f", r.Metrics.ReqPerSec),
		fmt.Sprintf("%d", r.Metrics.RequestsTotal),
		fmt.Sprintf("%.3f", r.Metrics.LatencyAvg.Seconds()*1000),
		fmt.Sprintf("%.3f", r.Metrics.LatencyStdev.Seconds()*1000),
		fmt.Sprintf("%.3f", r.Metrics.LatencyMin.Seconds()*1000),
		fmt.Sprintf("%.3f", r.Metrics.LatencyMax.Seconds()*1000),
		fmt.Sprintf("%.2f", float64(r.Metrics.TransferBytes)/1024/1024),
		fmt.Sprintf("%.2f", r.Metrics.TransferRate/1024/1024),
		fmt.Sprintf("%.1f", r.PeakMemoryMB()),
	}

	if err := cw.writer.Write(record); err != nil {
		return err
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	return cw.file.Close()
}
