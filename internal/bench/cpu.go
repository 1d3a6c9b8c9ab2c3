package bench

import (
	"fmt"
	"time"

	"github.com/fxnlabs/fftbench/internal/cpufft"
	"github.com/fxnlabs/fftbench/internal/signal"
	"go.uber.org/zap"
)

// CPUDriver runs the host benchmark on a fixed worker pool.
type CPUDriver struct {
	threads int
	log     *zap.Logger
}

// NewCPUDriver creates a driver using threads workers.
func NewCPUDriver(threads int, log *zap.Logger) *CPUDriver {
	if log == nil {
		log = zap.NewNop()
	}
	return &CPUDriver{threads: threads, log: log}
}

// Run generates the input, builds the plan and times one forward pass.
// Plan construction is outside the timing window.
func (d *CPUDriver) Run(p Params) (res Result, err error) {
	defer func() { observe(PathCPU, p, res, err) }()
	if err := p.validate(); err != nil {
		return Result{}, err
	}
	if d.threads <= 0 {
		return Result{}, fmt.Errorf("%w: threads=%d", ErrInvalidParams, d.threads)
	}

	data := signal.BatchCosine(p.Batch, p.Length)
	plan, err := cpufft.NewBatchPlan(p.Length, p.Batch, d.threads)
	if err != nil {
		return Result{}, fmt.Errorf("create plan: %w", err)
	}

	start := time.Now()
	if err := plan.Forward(data); err != nil {
		return Result{}, fmt.Errorf("forward: %w", err)
	}
	elapsed := time.Since(start)

	ms := float64(elapsed.Nanoseconds()) / 1e6
	res = Result{
		Path:    PathCPU,
		Batch:   p.Batch,
		Length:  p.Length,
		Threads: d.threads,
		TimeMs:  ms,
		GFLOPS:  GFLOPS(FLOPs(p.Batch, p.Length), ms),
	}
	d.log.Info("cpu benchmark complete",
		zap.Int("batch", p.Batch),
		zap.Int("length", p.Length),
		zap.Int("threads", d.threads),
		zap.Duration("elapsed", elapsed),
		zap.Float64("gflops", res.GFLOPS))
	return res, nil
}
