package gpu

import (
	"errors"
	"fmt"
)

// Local precondition violations. These are caller mistakes detected before any
// foreign call is issued and are never expressed as runtime status codes.
var (
	// ErrLengthMismatch is returned when a host slice or device buffer does not
	// have the element count an operation requires.
	ErrLengthMismatch = errors.New("gpu: length mismatch")

	// ErrInvalidLength is returned for non-positive or out-of-range sizes.
	ErrInvalidLength = errors.New("gpu: invalid length")

	// ErrReleased is returned when a buffer, event or plan is used after Close.
	ErrReleased = errors.New("gpu: resource already released")

	// ErrUnavailable is returned when no accelerator runtime can be opened.
	ErrUnavailable = errors.New("gpu: runtime unavailable")
)

// RuntimeError is a failed CUDA runtime call.
type RuntimeError struct {
	Op     string
	Status Status
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Op, e.Status, e.Status.Message())
}

// Is matches any RuntimeError carrying the same status.
func (e *RuntimeError) Is(target error) bool {
	var t *RuntimeError
	if errors.As(target, &t) {
		return e.Status == t.Status
	}
	return false
}

// FFTError is a failed cuFFT call.
type FFTError struct {
	Op     string
	Result Result
}

func (e *FFTError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Op, e.Result, e.Result.Message())
}

// Is matches any FFTError carrying the same result.
func (e *FFTError) Is(target error) bool {
	var t *FFTError
	if errors.As(target, &t) {
		return e.Result == t.Result
	}
	return false
}

// StatusOf extracts the runtime status from err, if it wraps a RuntimeError.
func StatusOf(err error) (Status, bool) {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Status, true
	}
	return StatusSuccess, false
}

// ResultOf extracts the cuFFT result from err, if it wraps an FFTError.
func ResultOf(err error) (Result, bool) {
	var fe *FFTError
	if errors.As(err, &fe) {
		return fe.Result, true
	}
	return ResultSuccess, false
}

func checkStatus(op string, s Status) error {
	if s.OK() {
		return nil
	}
	return &RuntimeError{Op: op, Status: s}
}

func checkResult(op string, r Result) error {
	if r.OK() {
		return nil
	}
	return &FFTError{Op: op, Result: r}
}
