package bench

import (
	"fmt"

	"github.com/fxnlabs/fftbench/internal/gpu"
	"github.com/fxnlabs/fftbench/internal/signal"
	"go.uber.org/zap"
)

// GPUDriver runs the accelerator benchmark. It owns no device resources
// between runs; each Run allocates and releases its own.
type GPUDriver struct {
	dev    *gpu.Device
	log    *zap.Logger
	verify bool
}

// GPUOption configures a GPUDriver.
type GPUOption func(*GPUDriver)

// WithVerify downloads the output of the timed run and checks every slot's
// peak bin.
func WithVerify(verify bool) GPUOption {
	return func(d *GPUDriver) {
		d.verify = verify
	}
}

// NewGPUDriver creates a driver issuing work to dev.
func NewGPUDriver(dev *gpu.Device, log *zap.Logger, opts ...GPUOption) *GPUDriver {
	if log == nil {
		log = zap.NewNop()
	}
	d := &GPUDriver{dev: dev, log: log}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run executes one benchmark: upload, warm-up, re-upload, timed execution.
// Only the second execution falls inside the timing window.
func (d *GPUDriver) Run(p Params) (res Result, err error) {
	defer func() { observe(PathGPU, p, res, err) }()
	if err := p.validate(); err != nil {
		return Result{}, err
	}
	log := d.log.With(zap.Int("batch", p.Batch), zap.Int("length", p.Length))

	input := signal.BatchCosine(p.Batch, p.Length)

	buf, err := gpu.Alloc[complex64](d.dev, len(input))
	if err != nil {
		return Result{}, fmt.Errorf("allocate device buffer: %w", err)
	}
	defer buf.Close()

	if err := buf.Upload(input); err != nil {
		return Result{}, fmt.Errorf("upload input: %w", err)
	}

	plan, err := d.dev.NewBatch1DPlan(p.Length, p.Batch)
	if err != nil {
		return Result{}, fmt.Errorf("create plan: %w", err)
	}
	defer plan.Close()

	// Absorbs lazy initialization inside the runtime and library.
	if err := plan.ExecuteForward(buf); err != nil {
		return Result{}, fmt.Errorf("warm-up: %w", err)
	}
	log.Debug("warm-up complete")

	// The warm-up overwrote the buffer.
	if err := buf.Upload(input); err != nil {
		return Result{}, fmt.Errorf("re-upload input: %w", err)
	}

	start, err := d.dev.NewEvent()
	if err != nil {
		return Result{}, fmt.Errorf("create start event: %w", err)
	}
	defer start.Close()
	stop, err := d.dev.NewEvent()
	if err != nil {
		return Result{}, fmt.Errorf("create stop event: %w", err)
	}
	defer stop.Close()

	if err := start.Record(); err != nil {
		return Result{}, fmt.Errorf("record start: %w", err)
	}
	if err := plan.ExecuteForward(buf); err != nil {
		return Result{}, fmt.Errorf("timed run: %w", err)
	}
	if err := stop.Record(); err != nil {
		return Result{}, fmt.Errorf("record stop: %w", err)
	}
	if err := stop.Synchronize(); err != nil {
		return Result{}, fmt.Errorf("wait for stop: %w", err)
	}
	ms, err := gpu.Elapsed(start, stop)
	if err != nil {
		return Result{}, fmt.Errorf("elapsed time: %w", err)
	}

	if d.verify {
		output := make([]complex64, len(input))
		if err := buf.Download(output); err != nil {
			return Result{}, fmt.Errorf("download output: %w", err)
		}
		if err := VerifyCosinePeaks(output, p); err != nil {
			return Result{}, err
		}
		log.Debug("output verified")
	}

	res = Result{
		Path:   PathGPU,
		Batch:  p.Batch,
		Length: p.Length,
		TimeMs: float64(ms),
		GFLOPS: GFLOPS(FLOPs(p.Batch, p.Length), float64(ms)),
	}
	log.Info("gpu benchmark complete", zap.Float64("time_ms", res.TimeMs), zap.Float64("gflops", res.GFLOPS))
	return res, nil
}
