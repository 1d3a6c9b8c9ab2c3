package gpu

import "fmt"

// Event owns a runtime timing event.
type Event struct {
	dev      *Device
	h        EventHandle
	released bool
}

// NewEvent creates a timing event.
func (d *Device) NewEvent() (*Event, error) {
	h, st := d.rt.EventCreate()
	if err := checkStatus("event create", st); err != nil {
		return nil, err
	}
	return &Event{dev: d, h: h}, nil
}

// Record enqueues a timestamp on the default stream.
func (e *Event) Record() error {
	if e.released {
		return fmt.Errorf("event record: %w", ErrReleased)
	}
	return checkStatus("event record", e.dev.rt.EventRecord(e.h))
}

// Synchronize blocks until the device reaches the recorded point. There is no
// timeout; a hung device blocks the caller indefinitely.
func (e *Event) Synchronize() error {
	if e.released {
		return fmt.Errorf("event synchronize: %w", ErrReleased)
	}
	return checkStatus("event synchronize", e.dev.rt.EventSynchronize(e.h))
}

// ElapsedSince returns the milliseconds between start and e. Both events must
// have been recorded, start before e, and e must have been synchronized;
// otherwise the runtime's answer is meaningless.
func (e *Event) ElapsedSince(start *Event) (float32, error) {
	if e.released || start == nil || start.released {
		return 0, fmt.Errorf("event elapsed time: %w", ErrReleased)
	}
	ms, st := e.dev.rt.EventElapsedTime(start.h, e.h)
	if err := checkStatus("event elapsed time", st); err != nil {
		return 0, err
	}
	return ms, nil
}

// Elapsed returns the milliseconds between two recorded events.
func Elapsed(start, stop *Event) (float32, error) {
	return stop.ElapsedSince(start)
}

// Close destroys the event. Only the first call reaches the runtime.
func (e *Event) Close() {
	if e == nil || e.released {
		return
	}
	e.released = true
	if st := e.dev.rt.EventDestroy(e.h); !st.OK() {
		e.dev.releaseFailed("event", st)
	}
}
