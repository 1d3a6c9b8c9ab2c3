// Package cpufft runs batched 1-D complex transforms on the host over a fixed
// pool of workers.
package cpufft

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/dsp/fourier"
)

var (
	// ErrLengthMismatch is returned when the data is not length*batch samples.
	ErrLengthMismatch = errors.New("cpufft: length mismatch")

	// ErrInvalidLength is returned for non-positive plan parameters.
	ErrInvalidLength = errors.New("cpufft: invalid length")
)

// worker owns a transform and its scratch space. gonum transforms keep
// internal work arrays, so they are never shared between goroutines.
type worker struct {
	fft     *fourier.CmplxFFT
	scratch []complex128
}

// BatchPlan transforms batch contiguous signals of length samples, spreading
// the signals over a fixed number of workers. Building the plan allocates all
// per-worker state so executions are not charged for it.
type BatchPlan struct {
	length  int
	batch   int
	workers []worker
}

// NewBatchPlan creates a plan using threads workers. More workers than signals
// would sit idle, so the pool is capped at batch.
func NewBatchPlan(length, batch, threads int) (*BatchPlan, error) {
	if length <= 0 || batch <= 0 || threads <= 0 {
		return nil, fmt.Errorf("plan %dx%d on %d threads: %w", batch, length, threads, ErrInvalidLength)
	}
	n := min(threads, batch)
	p := &BatchPlan{length: length, batch: batch, workers: make([]worker, n)}
	for i := range p.workers {
		p.workers[i] = worker{
			fft:     fourier.NewCmplxFFT(length),
			scratch: make([]complex128, length),
		}
	}
	return p, nil
}

// Length returns the transform length.
func (p *BatchPlan) Length() int { return p.length }

// Batch returns the number of signals.
func (p *BatchPlan) Batch() int { return p.batch }

// Workers returns the pool size.
func (p *BatchPlan) Workers() int { return len(p.workers) }

// Forward transforms data in place (exponent sign -1, unnormalized).
func (p *BatchPlan) Forward(data []complex64) error {
	return p.run(data, true)
}

// Inverse transforms data in place (exponent sign +1, unnormalized).
func (p *BatchPlan) Inverse(data []complex64) error {
	return p.run(data, false)
}

func (p *BatchPlan) run(data []complex64, forward bool) error {
	if len(data) != p.length*p.batch {
		return fmt.Errorf("%w: plan needs %d samples, got %d", ErrLengthMismatch, p.length*p.batch, len(data))
	}

	slots := make(chan int, p.batch)
	for s := 0; s < p.batch; s++ {
		slots <- s
	}
	close(slots)

	var g errgroup.Group
	for i := range p.workers {
		w := &p.workers[i]
		g.Go(func() error {
			for s := range slots {
				w.transform(data[s*p.length:(s+1)*p.length], forward)
			}
			return nil
		})
	}
	return g.Wait()
}

func (w *worker) transform(signal []complex64, forward bool) {
	for i, v := range signal {
		w.scratch[i] = complex128(v)
	}
	if forward {
		w.fft.Coefficients(w.scratch, w.scratch)
	} else {
		w.fft.Sequence(w.scratch, w.scratch)
	}
	for i, v := range w.scratch {
		signal[i] = complex64(v)
	}
}
