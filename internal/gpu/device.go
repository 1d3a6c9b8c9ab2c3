package gpu

import (
	"fmt"

	"github.com/fxnlabs/fftbench/internal/metrics"
	"go.uber.org/zap"
)

// Device binds a Runtime to the logger used for resource diagnostics. It is
// the factory for buffers, events and plans.
//
// A Device and everything created from it are meant to be used from a single
// goroutine.
type Device struct {
	rt  Runtime
	log *zap.Logger
}

// NewDevice wraps rt. A nil logger discards diagnostics.
func NewDevice(rt Runtime, log *zap.Logger) *Device {
	if log == nil {
		log = zap.NewNop()
	}
	return &Device{rt: rt, log: log}
}

// Runtime returns the underlying runtime.
func (d *Device) Runtime() Runtime {
	return d.rt
}

// Synchronize blocks until all work issued to the device has completed.
func (d *Device) Synchronize() error {
	return checkStatus("device synchronize", d.rt.DeviceSynchronize())
}

// Info queries the device description.
func (d *Device) Info() (DeviceInfo, error) {
	info, st := d.rt.DeviceInfo()
	if err := checkStatus("device info", st); err != nil {
		return DeviceInfo{}, err
	}
	return info, nil
}

// releaseFailed reports a failed destroy call. Destruction has no caller to
// return an error to, so the failure is logged and counted instead.
func (d *Device) releaseFailed(kind string, code fmt.Stringer) {
	metrics.ReleaseFailures.WithLabelValues(kind).Inc()
	d.log.Warn("failed to release device resource",
		zap.String("kind", kind),
		zap.Stringer("code", code))
}
