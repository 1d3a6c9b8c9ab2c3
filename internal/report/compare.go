package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fxnlabs/fftbench/internal/bench"
)

// Comparison is one matched case of a CPU and a GPU result set.
type Comparison struct {
	Batch   int
	Length  int
	CPU     bench.Result
	GPU     bench.Result
	Speedup float64 // GPU GFLOPS over CPU GFLOPS
}

type caseKey struct {
	batch, length int
}

// Compare joins cpu and gpu on (batch, length) in the order of gpu. Cases
// missing from either side are left out.
func Compare(cpu, gpu []bench.Result) []Comparison {
	byCase := make(map[caseKey]bench.Result, len(cpu))
	for _, r := range cpu {
		byCase[caseKey{r.Batch, r.Length}] = r
	}
	var out []Comparison
	for _, g := range gpu {
		c, ok := byCase[caseKey{g.Batch, g.Length}]
		if !ok {
			continue
		}
		cmp := Comparison{Batch: g.Batch, Length: g.Length, CPU: c, GPU: g}
		if c.GFLOPS > 0 {
			cmp.Speedup = g.GFLOPS / c.GFLOPS
		}
		out = append(out, cmp)
	}
	return out
}

// SizeLabel renders a transform length the way result tables do: multiples
// of 1024 as "1K", "512K", everything else as a plain number.
func SizeLabel(length int) string {
	if length >= 1024 && length%1024 == 0 {
		return strconv.Itoa(length/1024) + "K"
	}
	return strconv.Itoa(length)
}

// WriteMarkdown renders comparisons as a markdown table.
func WriteMarkdown(w io.Writer, rows []Comparison) error {
	if _, err := fmt.Fprintln(w, "| Batch | FFT Size | CPU Threads | CPU GFLOPS | GPU GFLOPS | Speedup |"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "|------:|---------:|------------:|-----------:|-----------:|--------:|"); err != nil {
		return err
	}
	for _, r := range rows {
		_, err := fmt.Fprintf(w, "| %d | %s | %d | %.0f | %.0f | %.1fx |\n",
			r.Batch, SizeLabel(r.Length), r.CPU.Threads, r.CPU.GFLOPS, r.GPU.GFLOPS, r.Speedup)
		if err != nil {
			return err
		}
	}
	return nil
}
