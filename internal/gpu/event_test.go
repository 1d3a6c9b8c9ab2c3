package gpu_test

import (
	"testing"

	"github.com/fxnlabs/fftbench/internal/gpu"
	"github.com/fxnlabs/fftbench/internal/gpu/sim"
	"github.com/fxnlabs/fftbench/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestEvent_Elapsed(t *testing.T) {
	dev, rt, _ := newTestDevice(t)

	start, err := dev.NewEvent()
	require.NoError(t, err)
	defer start.Close()
	stop, err := dev.NewEvent()
	require.NoError(t, err)
	defer stop.Close()
	assert.Equal(t, 2, rt.Live().Events)

	require.NoError(t, start.Record())
	require.NoError(t, stop.Record())
	require.NoError(t, stop.Synchronize())

	ms, err := gpu.Elapsed(start, stop)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ms, float32(0))
}

func TestEvent_ElapsedUnrecorded(t *testing.T) {
	dev, _, _ := newTestDevice(t)

	start, err := dev.NewEvent()
	require.NoError(t, err)
	defer start.Close()
	stop, err := dev.NewEvent()
	require.NoError(t, err)
	defer stop.Close()

	require.NoError(t, start.Record())
	_, err = stop.ElapsedSince(start)
	assert.ErrorIs(t, err, &gpu.RuntimeError{Status: gpu.StatusInvalidResourceHandle})
}

func TestEvent_CreateFailure(t *testing.T) {
	dev, rt, _ := newTestDevice(t)
	rt.Fail(sim.OpEventCreate, gpu.StatusInitializationError)

	ev, err := dev.NewEvent()
	assert.Nil(t, ev)
	assert.ErrorIs(t, err, &gpu.RuntimeError{Status: gpu.StatusInitializationError})
	assert.True(t, rt.Live().Zero())
}

func TestEvent_Close(t *testing.T) {
	dev, rt, _ := newTestDevice(t)

	ev, err := dev.NewEvent()
	require.NoError(t, err)
	ev.Close()
	ev.Close()

	assert.Equal(t, 1, rt.Count(sim.OpEventDestroy))
	assert.True(t, rt.Live().Zero())
	assert.ErrorIs(t, ev.Record(), gpu.ErrReleased)
	assert.ErrorIs(t, ev.Synchronize(), gpu.ErrReleased)
}

func TestEvent_ElapsedNilStart(t *testing.T) {
	dev, rt, _ := newTestDevice(t)

	stop, err := dev.NewEvent()
	require.NoError(t, err)
	defer stop.Close()
	require.NoError(t, stop.Record())

	assert.NotPanics(t, func() {
		_, err = stop.ElapsedSince(nil)
	})
	assert.ErrorIs(t, err, gpu.ErrReleased)
	assert.Zero(t, rt.Count(sim.OpEventElapsedTime))
}

func TestEvent_ReleaseFailureIsLogged(t *testing.T) {
	dev, rt, logs := newTestDevice(t)
	before := testutil.ToFloat64(metrics.ReleaseFailures.WithLabelValues("event"))

	ev, err := dev.NewEvent()
	require.NoError(t, err)

	rt.Fail(sim.OpEventDestroy, gpu.StatusInvalidResourceHandle)
	assert.NotPanics(t, ev.Close)

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "failed to release device resource", warnings[0].Message)
	assert.Equal(t, "event", warnings[0].ContextMap()["kind"])
	assert.Equal(t, "cudaErrorInvalidResourceHandle", warnings[0].ContextMap()["code"])
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ReleaseFailures.WithLabelValues("event")))

	ev.Close()
	assert.Equal(t, 1, rt.Count(sim.OpEventDestroy))
	assert.ErrorIs(t, ev.Record(), gpu.ErrReleased)
}
