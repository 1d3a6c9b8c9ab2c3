package bench

import "github.com/fxnlabs/fftbench/internal/metrics"

func observe(path Path, p Params, res Result, err error) {
	if err != nil {
		metrics.FFTRuns.WithLabelValues(string(path), "error").Inc()
		return
	}
	metrics.FFTRuns.WithLabelValues(string(path), "ok").Inc()
	metrics.FFTDuration.WithLabelValues(string(path)).Observe(res.TimeMs)
	metrics.FFTGFLOPS.WithLabelValues(string(path)).Set(res.GFLOPS)
	metrics.FFTSize.WithLabelValues(string(path)).Set(float64(p.Batch * p.Length))
}
