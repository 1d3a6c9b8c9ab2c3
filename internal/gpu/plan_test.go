package gpu_test

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/fxnlabs/fftbench/internal/gpu"
	"github.com/fxnlabs/fftbench/internal/gpu/sim"
	"github.com/fxnlabs/fftbench/internal/metrics"
	"github.com/fxnlabs/fftbench/internal/signal"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// forward runs one forward transform of data on a fresh plan and returns the
// downloaded output.
func forward(t *testing.T, dev *gpu.Device, data []complex64, length, batch int) []complex64 {
	t.Helper()
	buf, err := gpu.Alloc[complex64](dev, len(data))
	require.NoError(t, err)
	defer buf.Close()
	require.NoError(t, buf.Upload(data))

	plan, err := dev.NewBatch1DPlan(length, batch)
	require.NoError(t, err)
	defer plan.Close()
	require.NoError(t, plan.ExecuteForward(buf))

	out := make([]complex64, len(data))
	require.NoError(t, buf.Download(out))
	return out
}

func TestPlan_Accessors(t *testing.T) {
	dev, rt, _ := newTestDevice(t)

	plan, err := dev.NewBatch1DPlan(1024, 10)
	require.NoError(t, err)
	assert.Equal(t, 1024, plan.Length())
	assert.Equal(t, 10, plan.Batch())
	assert.Equal(t, 10240, plan.Elements())
	assert.Equal(t, gpu.PlanReady, plan.State())
	assert.Equal(t, "ready", plan.State().String())

	plan.Close()
	plan.Close()
	assert.Equal(t, gpu.PlanDestroyed, plan.State())
	assert.Equal(t, 1, rt.Count(sim.OpPlanDestroy))
	assert.True(t, rt.Live().Zero())
}

func TestPlan_InvalidShape(t *testing.T) {
	dev, rt, _ := newTestDevice(t)

	for _, shape := range [][2]int{{0, 1}, {1, 0}, {-4, 8}, {math.MaxInt32 + 1, 1}} {
		_, err := dev.NewBatch1DPlan(shape[0], shape[1])
		assert.ErrorIs(t, err, gpu.ErrInvalidLength, "shape %v", shape)
	}
	assert.Zero(t, rt.Count(sim.OpPlanMany))
}

func TestPlan_CreateFailure(t *testing.T) {
	dev, rt, _ := newTestDevice(t)
	rt.FailFFT(sim.OpPlanMany, gpu.ResultAllocFailed)

	plan, err := dev.NewBatch1DPlan(1024, 1000)
	assert.Nil(t, plan)
	assert.ErrorIs(t, err, &gpu.FFTError{Result: gpu.ResultAllocFailed})
	assert.True(t, rt.Live().Zero())
}

func TestPlan_DC(t *testing.T) {
	dev, _, _ := newTestDevice(t)
	const length, v = 64, 5.0

	out := forward(t, dev, signal.Constant(length, v), length, 1)

	assert.InDelta(t, length*v, real(out[0]), 1e-3)
	assert.InDelta(t, 0, imag(out[0]), 1e-3)
	for i := 1; i < length; i++ {
		assert.InDelta(t, 0, cmplx.Abs(complex128(out[i])), 1e-3, "bin %d", i)
	}
}

func TestPlan_SingleFrequency(t *testing.T) {
	dev, _, _ := newTestDevice(t)

	for _, length := range []int{16, 128, 1000} {
		for _, k := range []int{0, 1, 3, length - 1} {
			out := forward(t, dev, signal.Exponential(length, k), length, 1)
			assert.Equal(t, k, signal.PeakBin(out), "length %d k %d", length, k)
			assert.InDelta(t, float64(length), cmplx.Abs(complex128(out[k])), float64(length)*1e-4)
		}
	}
}

func TestPlan_Parseval(t *testing.T) {
	dev, _, _ := newTestDevice(t)
	const length = 256

	in := make([]complex64, length)
	for i := range in {
		in[i] = complex(float32(math.Sin(float64(i)*0.37)), float32(math.Cos(float64(i*i)*0.011)))
	}
	timeEnergy := signal.Energy(in)
	out := forward(t, dev, in, length, 1)
	freqEnergy := signal.Energy(out) / length

	assert.InEpsilon(t, timeEnergy, freqEnergy, 1e-5)
}

func TestPlan_RoundTrip(t *testing.T) {
	dev, _, _ := newTestDevice(t)
	const length, batch = 128, 3

	in := signal.BatchCosine(batch, length)
	buf, err := gpu.Alloc[complex64](dev, len(in))
	require.NoError(t, err)
	defer buf.Close()
	require.NoError(t, buf.Upload(in))

	plan, err := dev.NewBatch1DPlan(length, batch)
	require.NoError(t, err)
	defer plan.Close()

	require.NoError(t, plan.ExecuteForward(buf))
	require.NoError(t, plan.ExecuteInverse(buf))

	out := make([]complex64, len(in))
	require.NoError(t, buf.Download(out))
	signal.Scale(out, 1.0/length)
	for i := range in {
		assert.InDelta(t, 0, cmplx.Abs(complex128(out[i]-in[i])), 1e-4, "sample %d", i)
	}
}

func TestPlan_BatchIndependence(t *testing.T) {
	dev, _, _ := newTestDevice(t)
	const length, batch = 64, 10

	out := forward(t, dev, signal.BatchExponential(batch, length), length, batch)
	for s := 0; s < batch; s++ {
		assert.Equal(t, s+1, signal.PeakBin(signal.Slot(out, length, s)), "slot %d", s)
	}
}

func TestPlan_BufferLengthMismatch(t *testing.T) {
	dev, rt, _ := newTestDevice(t)

	buf, err := gpu.Alloc[complex64](dev, 1023)
	require.NoError(t, err)
	defer buf.Close()
	plan, err := dev.NewBatch1DPlan(1024, 1)
	require.NoError(t, err)
	defer plan.Close()

	err = plan.ExecuteForward(buf)
	assert.ErrorIs(t, err, gpu.ErrLengthMismatch)
	assert.Zero(t, rt.Count(sim.OpExecC2C))
}

func TestPlan_ExecuteAfterClose(t *testing.T) {
	dev, rt, _ := newTestDevice(t)

	buf, err := gpu.Alloc[complex64](dev, 16)
	require.NoError(t, err)
	plan, err := dev.NewBatch1DPlan(16, 1)
	require.NoError(t, err)

	plan.Close()
	assert.ErrorIs(t, plan.ExecuteForward(buf), gpu.ErrReleased)

	plan, err = dev.NewBatch1DPlan(16, 1)
	require.NoError(t, err)
	defer plan.Close()
	buf.Close()
	assert.ErrorIs(t, plan.ExecuteForward(buf), gpu.ErrReleased)
	assert.ErrorIs(t, plan.ExecuteForward(nil), gpu.ErrReleased)
	assert.Zero(t, rt.Count(sim.OpExecC2C))
}

func TestPlan_ExecFailure(t *testing.T) {
	dev, rt, _ := newTestDevice(t)

	buf, err := gpu.Alloc[complex64](dev, 32)
	require.NoError(t, err)
	defer buf.Close()
	plan, err := dev.NewBatch1DPlan(16, 2)
	require.NoError(t, err)
	defer plan.Close()

	rt.FailFFT(sim.OpExecC2C, gpu.ResultExecFailed)
	rt.ResetCalls()
	err = plan.ExecuteForward(buf)
	assert.ErrorIs(t, err, &gpu.FFTError{Result: gpu.ResultExecFailed})
	// No synchronization is attempted after a failed launch.
	assert.Zero(t, rt.Count(sim.OpDeviceSynchronize))
}

func TestPlan_SyncFailure(t *testing.T) {
	dev, rt, _ := newTestDevice(t)

	buf, err := gpu.Alloc[complex64](dev, 16)
	require.NoError(t, err)
	defer buf.Close()
	plan, err := dev.NewBatch1DPlan(16, 1)
	require.NoError(t, err)
	defer plan.Close()

	rt.Fail(sim.OpDeviceSynchronize, gpu.StatusNotReady)
	err = plan.ExecuteForward(buf)
	assert.ErrorIs(t, err, &gpu.RuntimeError{Status: gpu.StatusNotReady})
	assert.Contains(t, err.Error(), "execute forward")
}

func TestPlan_ExecuteIsSynchronous(t *testing.T) {
	dev, rt, _ := newTestDevice(t)

	buf, err := gpu.Alloc[complex64](dev, 16)
	require.NoError(t, err)
	defer buf.Close()
	plan, err := dev.NewBatch1DPlan(16, 1)
	require.NoError(t, err)
	defer plan.Close()

	rt.ResetCalls()
	require.NoError(t, plan.ExecuteInverse(buf))
	assert.Equal(t, []sim.Op{sim.OpExecC2C, sim.OpDeviceSynchronize}, rt.Calls())
}

func TestPlan_ReleaseFailureIsLogged(t *testing.T) {
	dev, rt, logs := newTestDevice(t)
	before := testutil.ToFloat64(metrics.ReleaseFailures.WithLabelValues("plan"))

	plan, err := dev.NewBatch1DPlan(64, 2)
	require.NoError(t, err)

	rt.FailFFT(sim.OpPlanDestroy, gpu.ResultInvalidPlan)
	assert.NotPanics(t, plan.Close)
	assert.Equal(t, gpu.PlanDestroyed, plan.State())

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "failed to release device resource", warnings[0].Message)
	assert.Equal(t, "plan", warnings[0].ContextMap()["kind"])
	assert.Equal(t, "CUFFT_INVALID_PLAN", warnings[0].ContextMap()["code"])
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ReleaseFailures.WithLabelValues("plan")))

	plan.Close()
	assert.Equal(t, 1, rt.Count(sim.OpPlanDestroy))
}

func TestDevice_Info(t *testing.T) {
	dev, rt, _ := newTestDevice(t, sim.WithName("Test GPU"), sim.WithMemory(1<<20))

	info, err := dev.Info()
	require.NoError(t, err)
	assert.Equal(t, "Test GPU", info.Name)
	assert.Equal(t, "sim", info.Backend)
	assert.Equal(t, int64(1<<20), info.TotalMemory)
	assert.Same(t, rt, dev.Runtime().(*sim.Device))

	rt.Fail(sim.OpDeviceInfo, gpu.StatusNoDevice)
	_, err = dev.Info()
	assert.ErrorIs(t, err, &gpu.RuntimeError{Status: gpu.StatusNoDevice})
}

func TestNativeRuntime_Unavailable(t *testing.T) {
	rt, err := gpu.NewNativeRuntime()
	if err == nil {
		t.Skip("CUDA device present")
	}
	assert.Nil(t, rt)
	assert.ErrorIs(t, err, gpu.ErrUnavailable)
}
