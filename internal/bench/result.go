package bench

import (
	"errors"
	"fmt"
	"math"
)

// Path identifies which implementation produced a result.
type Path string

const (
	PathGPU Path = "gpu"
	PathCPU Path = "cpu"
)

var (
	// ErrInvalidParams is returned for non-positive batch, length or threads,
	// and for shapes whose sample count does not fit in memory addressing.
	ErrInvalidParams = errors.New("bench: invalid batch, length or threads")

	// ErrVerification is returned when transformed output does not peak where
	// the generated input says it must.
	ErrVerification = errors.New("bench: output verification failed")
)

// Params selects the transform shape.
type Params struct {
	Batch  int `yaml:"batch"`
	Length int `yaml:"length"`
}

// MaxSamples bounds batch*length so that the complex64 input's byte count
// fits in an int.
const MaxSamples = math.MaxInt / 8

func (p Params) validate() error {
	if p.Batch <= 0 || p.Length <= 0 {
		return fmt.Errorf("%w: batch=%d length=%d must be positive", ErrInvalidParams, p.Batch, p.Length)
	}
	if p.Length > MaxSamples/p.Batch {
		return fmt.Errorf("%w: batch=%d length=%d exceeds %d samples", ErrInvalidParams, p.Batch, p.Length, MaxSamples)
	}
	return nil
}

// Result is one benchmark record.
type Result struct {
	Path    Path
	Batch   int
	Length  int
	Threads int // CPU path only
	TimeMs  float64
	GFLOPS  float64
}

// FLOPs is the conventional operation count of batch complex FFTs of the
// given length: batch * 5 * length * log2(length).
func FLOPs(batch, length int) float64 {
	n := float64(length)
	return float64(batch) * 5 * n * math.Log2(n)
}

// GFLOPS converts an operation count and a duration in milliseconds to
// billions of operations per second.
func GFLOPS(flops, ms float64) float64 {
	return flops / (ms / 1000) / 1e9
}
