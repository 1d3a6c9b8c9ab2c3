// Package report renders benchmark results as CSV and compares CPU and GPU
// result sets.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fxnlabs/fftbench/internal/bench"
)

var (
	gpuHeader = []string{"batch", "fft_length", "time_ms", "gflops"}
	cpuHeader = []string{"batch", "fft_length", "threads", "time_ms", "gflops"}
)

// ErrFormat is returned when a CSV file has neither result layout.
var ErrFormat = errors.New("report: unrecognized result layout")

// Header returns the CSV header for results of path.
func Header(path bench.Path) []string {
	if path == bench.PathCPU {
		return cpuHeader
	}
	return gpuHeader
}

// WriteCSV writes a header and one row per result. All results must share a
// path. GPU rows omit the threads column.
func WriteCSV(w io.Writer, path bench.Path, results []bench.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(path)); err != nil {
		return err
	}
	for _, r := range results {
		if err := cw.Write(row(path, r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(path bench.Path, r bench.Result) []string {
	cells := []string{strconv.Itoa(r.Batch), strconv.Itoa(r.Length)}
	if path == bench.PathCPU {
		cells = append(cells, strconv.Itoa(r.Threads))
	}
	return append(cells,
		strconv.FormatFloat(r.TimeMs, 'f', 3, 64),
		formatGFLOPS(r.GFLOPS))
}

// formatGFLOPS rounds to the nearest integer, halves to even. Non-finite
// values are written as-is.
func formatGFLOPS(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}

// ReadCSV parses a file written by WriteCSV, in either layout, and reports
// which layout it found.
func ReadCSV(r io.Reader) (bench.Path, []bench.Result, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return "", nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return "", nil, fmt.Errorf("%w: empty file", ErrFormat)
	}

	var path bench.Path
	switch header := strings.Join(records[0], ","); header {
	case strings.Join(gpuHeader, ","):
		path = bench.PathGPU
	case strings.Join(cpuHeader, ","):
		path = bench.PathCPU
	default:
		return "", nil, fmt.Errorf("%w: header %q", ErrFormat, header)
	}

	results := make([]bench.Result, 0, len(records)-1)
	for i, rec := range records[1:] {
		res, err := parseRow(path, rec)
		if err != nil {
			return "", nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		results = append(results, res)
	}
	return path, results, nil
}

func parseRow(path bench.Path, rec []string) (bench.Result, error) {
	res := bench.Result{Path: path}
	ints := []*int{&res.Batch, &res.Length}
	if path == bench.PathCPU {
		ints = append(ints, &res.Threads)
	}
	for i, dst := range ints {
		v, err := strconv.Atoi(rec[i])
		if err != nil {
			return bench.Result{}, fmt.Errorf("%w: column %d: %v", ErrFormat, i+1, err)
		}
		*dst = v
	}
	floats := []*float64{&res.TimeMs, &res.GFLOPS}
	for j, dst := range floats {
		col := len(ints) + j
		v, err := strconv.ParseFloat(rec[col], 64)
		if err != nil {
			return bench.Result{}, fmt.Errorf("%w: column %d: %v", ErrFormat, col+1, err)
		}
		*dst = v
	}
	return res, nil
}
