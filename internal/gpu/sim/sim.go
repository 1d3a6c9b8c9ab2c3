// Package sim provides an in-process accelerator that implements gpu.Runtime
// on host memory. Transforms run on the CPU through gonum; events stamp wall
// clock time. It keeps a call trace, counts live resources and can be told to
// fail any operation, which is what the resource-discipline tests rely on.
package sim

import (
	"sync"
	"time"
	"unsafe"

	"github.com/fxnlabs/fftbench/internal/gpu"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Op names a runtime entry point.
type Op string

const (
	OpMalloc            Op = "malloc"
	OpFree              Op = "free"
	OpMemcpyHtoD        Op = "memcpy_htod"
	OpMemcpyDtoH        Op = "memcpy_dtoh"
	OpDeviceSynchronize Op = "device_synchronize"
	OpEventCreate       Op = "event_create"
	OpEventRecord       Op = "event_record"
	OpEventSynchronize  Op = "event_synchronize"
	OpEventElapsedTime  Op = "event_elapsed_time"
	OpEventDestroy      Op = "event_destroy"
	OpPlanMany          Op = "plan_many"
	OpExecC2C           Op = "exec_c2c"
	OpPlanDestroy       Op = "plan_destroy"
	OpDeviceInfo        Op = "device_info"
)

// Resources counts outstanding allocations.
type Resources struct {
	Buffers int
	Events  int
	Plans   int
}

// Zero reports whether nothing is outstanding.
func (r Resources) Zero() bool {
	return r.Buffers == 0 && r.Events == 0 && r.Plans == 0
}

type event struct {
	recorded bool
	at       time.Time
}

type plan struct {
	length  int
	batch   int
	fft     *fourier.CmplxFFT
	scratch []complex128
}

// Device is a simulated accelerator. The zero value is not usable; call New.
type Device struct {
	mu sync.Mutex

	// Allocations are backed by []uint64 so complex64 views are aligned.
	mem       map[gpu.DevicePtr][]uint64
	events    map[gpu.EventHandle]*event
	plans     map[gpu.PlanHandle]*plan
	nextEvent gpu.EventHandle
	nextPlan  gpu.PlanHandle

	statusFaults map[Op]gpu.Status
	resultFaults map[Op]gpu.Result
	calls        []Op

	info  gpu.DeviceInfo
	total int64
	used  int64
}

// Option configures a Device.
type Option func(*Device)

// WithMemory sets the simulated device memory size in bytes. Allocations
// beyond it fail with cudaErrorMemoryAllocation.
func WithMemory(bytes int64) Option {
	return func(d *Device) {
		d.total = bytes
	}
}

// WithName sets the reported device name.
func WithName(name string) Option {
	return func(d *Device) {
		d.info.Name = name
	}
}

// New returns a simulated device with 4 GiB of memory.
func New(opts ...Option) *Device {
	d := &Device{
		mem:          make(map[gpu.DevicePtr][]uint64),
		events:       make(map[gpu.EventHandle]*event),
		plans:        make(map[gpu.PlanHandle]*plan),
		statusFaults: make(map[Op]gpu.Status),
		resultFaults: make(map[Op]gpu.Result),
		info: gpu.DeviceInfo{
			Name:              "Simulated GPU",
			Backend:           "sim",
			ComputeCapability: "sim",
		},
		total: 4 << 30,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Fail makes every later call of op return status until ClearFaults.
func (d *Device) Fail(op Op, status gpu.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statusFaults[op] = status
}

// FailFFT is Fail for the cuFFT entry points.
func (d *Device) FailFFT(op Op, result gpu.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resultFaults[op] = result
}

// ClearFaults removes all injected failures.
func (d *Device) ClearFaults() {
	d.mu.Lock()
	defer d.mu.Unlock()
	clear(d.statusFaults)
	clear(d.resultFaults)
}

// Live returns the resources currently outstanding.
func (d *Device) Live() Resources {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Resources{Buffers: len(d.mem), Events: len(d.events), Plans: len(d.plans)}
}

// Calls returns the trace of runtime calls issued so far.
func (d *Device) Calls() []Op {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Op(nil), d.calls...)
}

// Count returns how many times op was called.
func (d *Device) Count(op Op) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.calls {
		if c == op {
			n++
		}
	}
	return n
}

// ResetCalls clears the call trace.
func (d *Device) ResetCalls() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = d.calls[:0]
}

// enter records the call and returns the injected status, if any. Callers
// hold d.mu.
func (d *Device) enter(op Op) gpu.Status {
	d.calls = append(d.calls, op)
	if st, ok := d.statusFaults[op]; ok {
		return st
	}
	return gpu.StatusSuccess
}

func (d *Device) enterFFT(op Op) gpu.Result {
	d.calls = append(d.calls, op)
	if res, ok := d.resultFaults[op]; ok {
		return res
	}
	return gpu.ResultSuccess
}

func (d *Device) Malloc(size uintptr) (gpu.DevicePtr, gpu.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st := d.enter(OpMalloc); !st.OK() {
		return nil, st
	}
	if size == 0 {
		return nil, gpu.StatusSuccess
	}
	if d.used+int64(size) > d.total {
		return nil, gpu.StatusMemoryAllocation
	}
	block := make([]uint64, (size+7)/8)
	ptr := gpu.DevicePtr(unsafe.Pointer(&block[0]))
	d.mem[ptr] = block
	d.used += int64(len(block) * 8)
	return ptr, gpu.StatusSuccess
}

func (d *Device) Free(ptr gpu.DevicePtr) gpu.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st := d.enter(OpFree); !st.OK() {
		return st
	}
	if ptr == nil {
		return gpu.StatusSuccess
	}
	block, ok := d.mem[ptr]
	if !ok {
		return gpu.StatusInvalidValue
	}
	d.used -= int64(len(block) * 8)
	delete(d.mem, ptr)
	return gpu.StatusSuccess
}

func (d *Device) bytes(ptr gpu.DevicePtr, size uintptr) ([]byte, bool) {
	block, ok := d.mem[ptr]
	if !ok || uintptr(len(block)*8) < size {
		return nil, false
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&block[0])), size), true
}

func (d *Device) MemcpyHtoD(dst gpu.DevicePtr, src unsafe.Pointer, size uintptr) gpu.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st := d.enter(OpMemcpyHtoD); !st.OK() {
		return st
	}
	mem, ok := d.bytes(dst, size)
	if !ok || src == nil {
		return gpu.StatusInvalidValue
	}
	copy(mem, unsafe.Slice((*byte)(src), size))
	return gpu.StatusSuccess
}

func (d *Device) MemcpyDtoH(dst unsafe.Pointer, src gpu.DevicePtr, size uintptr) gpu.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st := d.enter(OpMemcpyDtoH); !st.OK() {
		return st
	}
	mem, ok := d.bytes(src, size)
	if !ok || dst == nil {
		return gpu.StatusInvalidValue
	}
	copy(unsafe.Slice((*byte)(dst), size), mem)
	return gpu.StatusSuccess
}

// DeviceSynchronize returns immediately; simulated work completes when issued.
func (d *Device) DeviceSynchronize() gpu.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enter(OpDeviceSynchronize)
}

func (d *Device) EventCreate() (gpu.EventHandle, gpu.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st := d.enter(OpEventCreate); !st.OK() {
		return 0, st
	}
	d.nextEvent++
	d.events[d.nextEvent] = &event{}
	return d.nextEvent, gpu.StatusSuccess
}

func (d *Device) EventRecord(h gpu.EventHandle) gpu.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st := d.enter(OpEventRecord); !st.OK() {
		return st
	}
	ev, ok := d.events[h]
	if !ok {
		return gpu.StatusInvalidResourceHandle
	}
	ev.recorded = true
	ev.at = time.Now()
	return gpu.StatusSuccess
}

func (d *Device) EventSynchronize(h gpu.EventHandle) gpu.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st := d.enter(OpEventSynchronize); !st.OK() {
		return st
	}
	if _, ok := d.events[h]; !ok {
		return gpu.StatusInvalidResourceHandle
	}
	return gpu.StatusSuccess
}

func (d *Device) EventElapsedTime(start, end gpu.EventHandle) (float32, gpu.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st := d.enter(OpEventElapsedTime); !st.OK() {
		return 0, st
	}
	s, ok := d.events[start]
	if !ok || !s.recorded {
		return 0, gpu.StatusInvalidResourceHandle
	}
	e, ok := d.events[end]
	if !ok || !e.recorded {
		return 0, gpu.StatusInvalidResourceHandle
	}
	return float32(e.at.Sub(s.at).Seconds() * 1e3), gpu.StatusSuccess
}

func (d *Device) EventDestroy(h gpu.EventHandle) gpu.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st := d.enter(OpEventDestroy); !st.OK() {
		return st
	}
	if _, ok := d.events[h]; !ok {
		return gpu.StatusInvalidResourceHandle
	}
	delete(d.events, h)
	return gpu.StatusSuccess
}

func (d *Device) PlanMany1D(length, batch int) (gpu.PlanHandle, gpu.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if res := d.enterFFT(OpPlanMany); !res.OK() {
		return 0, res
	}
	if length < 1 || batch < 1 {
		return 0, gpu.ResultInvalidSize
	}
	d.nextPlan++
	d.plans[d.nextPlan] = &plan{
		length:  length,
		batch:   batch,
		fft:     fourier.NewCmplxFFT(length),
		scratch: make([]complex128, length),
	}
	return d.nextPlan, gpu.ResultSuccess
}

func (d *Device) ExecC2C(h gpu.PlanHandle, data gpu.DevicePtr, dir gpu.Direction) gpu.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if res := d.enterFFT(OpExecC2C); !res.OK() {
		return res
	}
	p, ok := d.plans[h]
	if !ok {
		return gpu.ResultInvalidPlan
	}
	if dir != gpu.Forward && dir != gpu.Inverse {
		return gpu.ResultInvalidValue
	}
	n := p.length * p.batch
	raw, ok := d.bytes(data, uintptr(n)*8)
	if !ok {
		// Real hardware would fault or corrupt memory here.
		return gpu.ResultExecFailed
	}
	samples := unsafe.Slice((*complex64)(unsafe.Pointer(&raw[0])), n)
	for s := 0; s < p.batch; s++ {
		signal := samples[s*p.length : (s+1)*p.length]
		for i, v := range signal {
			p.scratch[i] = complex128(v)
		}
		if dir == gpu.Forward {
			p.fft.Coefficients(p.scratch, p.scratch)
		} else {
			p.fft.Sequence(p.scratch, p.scratch)
		}
		for i, v := range p.scratch {
			signal[i] = complex64(v)
		}
	}
	return gpu.ResultSuccess
}

func (d *Device) PlanDestroy(h gpu.PlanHandle) gpu.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if res := d.enterFFT(OpPlanDestroy); !res.OK() {
		return res
	}
	if _, ok := d.plans[h]; !ok {
		return gpu.ResultInvalidPlan
	}
	delete(d.plans, h)
	return gpu.ResultSuccess
}

func (d *Device) DeviceInfo() (gpu.DeviceInfo, gpu.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st := d.enter(OpDeviceInfo); !st.OK() {
		return gpu.DeviceInfo{}, st
	}
	info := d.info
	info.TotalMemory = d.total
	info.FreeMemory = d.total - d.used
	return info, gpu.StatusSuccess
}

var _ gpu.Runtime = (*Device)(nil)
