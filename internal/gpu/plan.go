package gpu

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// PlanState is the lifecycle state of a Plan. A plan is only ever observed as
// Ready or Destroyed; failed construction yields no plan at all.
type PlanState int

const (
	PlanReady PlanState = iota + 1
	PlanDestroyed
)

func (s PlanState) String() string {
	switch s {
	case PlanReady:
		return "ready"
	case PlanDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("PlanState(%d)", int(s))
	}
}

// Plan is a reusable batched 1-D complex-to-complex transform of fixed length
// and batch count. Signals are contiguous and back to back: element j of
// signal s lives at index s*length + j.
type Plan struct {
	dev    *Device
	h      PlanHandle
	length int
	batch  int
	state  PlanState
}

// NewBatch1DPlan creates a plan for batch independent transforms of length
// samples each.
func (d *Device) NewBatch1DPlan(length, batch int) (*Plan, error) {
	if length <= 0 || batch <= 0 {
		return nil, fmt.Errorf("plan %dx%d: %w", batch, length, ErrInvalidLength)
	}
	// cufftPlanMany takes C ints.
	if length > math.MaxInt32 || batch > math.MaxInt32 {
		return nil, fmt.Errorf("plan %dx%d: exceeds int32: %w", batch, length, ErrInvalidLength)
	}

	h, res := d.rt.PlanMany1D(length, batch)
	if err := checkResult("plan many", res); err != nil {
		return nil, err
	}
	d.log.Debug("created batch plan", zap.Int("length", length), zap.Int("batch", batch))
	return &Plan{dev: d, h: h, length: length, batch: batch, state: PlanReady}, nil
}

// Length returns the transform length.
func (p *Plan) Length() int { return p.length }

// Batch returns the number of transforms per execution.
func (p *Plan) Batch() int { return p.batch }

// Elements returns the element count a buffer must have to be executed on.
func (p *Plan) Elements() int { return p.length * p.batch }

// State returns the lifecycle state.
func (p *Plan) State() PlanState { return p.state }

// ExecuteForward transforms buf in place in the forward direction and waits
// for the device to finish, so the call is synchronous for the caller.
func (p *Plan) ExecuteForward(buf *DeviceBuffer[complex64]) error {
	return p.execute(buf, Forward)
}

// ExecuteInverse is ExecuteForward in the inverse direction. The result is
// not normalized; divide by Length to recover the input.
func (p *Plan) ExecuteInverse(buf *DeviceBuffer[complex64]) error {
	return p.execute(buf, Inverse)
}

func (p *Plan) execute(buf *DeviceBuffer[complex64], dir Direction) error {
	op := "execute " + dir.String()
	if p.state != PlanReady {
		return fmt.Errorf("%s: %w", op, ErrReleased)
	}
	if buf == nil || buf.released {
		return fmt.Errorf("%s: buffer: %w", op, ErrReleased)
	}
	// The foreign library cannot detect a short buffer; it would read and
	// write past the allocation.
	if buf.Len() != p.Elements() {
		return fmt.Errorf("%s: %w: plan needs %d elements, buffer has %d",
			op, ErrLengthMismatch, p.Elements(), buf.Len())
	}

	if err := checkResult("exec "+dir.String(), p.dev.rt.ExecC2C(p.h, buf.Ptr(), dir)); err != nil {
		return err
	}
	if err := p.dev.Synchronize(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close destroys the plan. Only the first call reaches the library.
func (p *Plan) Close() {
	if p == nil || p.state != PlanReady {
		return
	}
	p.state = PlanDestroyed
	if res := p.dev.rt.PlanDestroy(p.h); !res.OK() {
		p.dev.releaseFailed("plan", res)
	}
}
