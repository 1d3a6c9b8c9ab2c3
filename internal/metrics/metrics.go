package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every collector of this package. It is separate from the
// default registry so a benchmark run can be exported on its own.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// Benchmark run metrics, labelled by path ("gpu" or "cpu").
	FFTDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fft_duration_ms",
		Help:    "Duration of the timed batch FFT execution in milliseconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 20), // 10us to ~5s
	}, []string{"path"})

	FFTGFLOPS = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fft_gflops",
		Help: "Throughput of the last batch FFT run in GFLOPS",
	}, []string{"path"})

	FFTSize = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fft_elements",
		Help: "Number of complex samples (batch * length) in the last run",
	}, []string{"path"})

	FFTRuns = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "fft_runs_total",
		Help: "Total number of benchmark runs by path and outcome",
	}, []string{"path", "outcome"})

	// Device resource metrics
	ReleaseFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "gpu_release_failures_total",
		Help: "Device resources whose release call failed, by kind",
	}, []string{"kind"})
)

// WriteTextfile writes the current values of all collectors in the text
// exposition format, for the node_exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
