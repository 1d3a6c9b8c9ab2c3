package gpu_test

import (
	"testing"

	"github.com/fxnlabs/fftbench/internal/gpu"
	"github.com/fxnlabs/fftbench/internal/gpu/sim"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// newTestDevice returns a device over a fresh simulator together with the
// simulator, for fault injection, and the observed log entries.
func newTestDevice(t *testing.T, opts ...sim.Option) (*gpu.Device, *sim.Device, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	rt := sim.New(opts...)
	return gpu.NewDevice(rt, zap.New(core)), rt, logs
}
