package report

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/fxnlabs/fftbench/internal/bench"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV_GPU(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, bench.PathGPU, []bench.Result{
		{Path: bench.PathGPU, Batch: 1000, Length: 1024, TimeMs: 0.12345, GFLOPS: 414.7},
	})
	require.NoError(t, err)
	assert.Equal(t, "batch,fft_length,time_ms,gflops\n1000,1024,0.123,415\n", buf.String())
}

func TestWriteCSV_CPU(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, bench.PathCPU, []bench.Result{
		{Path: bench.PathCPU, Batch: 1000, Length: 1024, Threads: 8, TimeMs: 12.5, GFLOPS: 4.096},
		{Path: bench.PathCPU, Batch: 250, Length: 524288, Threads: 4, TimeMs: 1500, GFLOPS: 8.5},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"batch,fft_length,threads,time_ms,gflops\n"+
			"1000,1024,8,12.500,4\n"+
			"250,524288,4,1500.000,8\n",
		buf.String())
}

func TestFormatGFLOPS(t *testing.T) {
	tests := map[float64]string{
		0.4:   "0",
		0.5:   "0",
		1.5:   "2",
		2.5:   "2",
		3.5:   "4",
		414.7: "415",
		-2.5:  "-2",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatGFLOPS(in), "input %v", in)
	}
}

func TestWriteCSV_NonFinite(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, bench.PathGPU, []bench.Result{{Batch: 1, Length: 1, GFLOPS: math.Inf(1)}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "1,1,0.000,+Inf")
}

func TestReadCSV(t *testing.T) {
	results := []bench.Result{
		{Path: bench.PathCPU, Batch: 1000, Length: 1024, Threads: 8, TimeMs: 12.5, GFLOPS: 4},
		{Path: bench.PathCPU, Batch: 500, Length: 8192, Threads: 2, TimeMs: 3.25, GFLOPS: 17},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, bench.PathCPU, results))

	path, got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, bench.PathCPU, path)
	assert.Equal(t, results, got)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":      "",
		"bad header": "a,b,c\n1,2,3\n",
		"bad int":    "batch,fft_length,time_ms,gflops\nx,1024,1.000,2\n",
		"bad float":  "batch,fft_length,time_ms,gflops\n1,1024,fast,2\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := ReadCSV(strings.NewReader(in))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}

	_, _, err := ReadCSV(strings.NewReader("batch,fft_length,time_ms,gflops\n1,2\n"))
	assert.Error(t, err, "short rows are rejected by the csv reader")
}

func TestSizeLabel(t *testing.T) {
	assert.Equal(t, "1K", SizeLabel(1024))
	assert.Equal(t, "512K", SizeLabel(524288))
	assert.Equal(t, "512", SizeLabel(512))
	assert.Equal(t, "1000", SizeLabel(1000))
}

func TestCompare(t *testing.T) {
	cpu := []bench.Result{
		{Batch: 1000, Length: 1024, Threads: 8, GFLOPS: 10},
		{Batch: 500, Length: 8192, Threads: 4, GFLOPS: 0},
	}
	gpu := []bench.Result{
		{Batch: 1000, Length: 1024, GFLOPS: 400},
		{Batch: 500, Length: 8192, GFLOPS: 900},
		{Batch: 250, Length: 32768, GFLOPS: 1000},
	}

	rows := Compare(cpu, gpu)
	require.Len(t, rows, 2)
	assert.Equal(t, 40.0, rows[0].Speedup)
	assert.Zero(t, rows[1].Speedup)

	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, rows))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "| 1000 | 1K | 8 | 10 | 400 | 40.0x |", lines[2])
	assert.Equal(t, "| 500 | 8K | 4 | 0 | 900 | 0.0x |", lines[3])
}
