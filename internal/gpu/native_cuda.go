//go:build cuda
// +build cuda

package gpu

/*
#cgo CFLAGS: -I/usr/local/cuda/include
#cgo LDFLAGS: -L/usr/local/cuda/lib64 -lcufft -lcudart
#include <cuda_runtime.h>
#include <cufft.h>
#include <stdio.h>

static cudaError_t fb_device_info(char *name, size_t name_len, size_t *total, size_t *free_mem, int *major, int *minor) {
	int dev = 0;
	struct cudaDeviceProp prop;
	cudaError_t err = cudaGetDevice(&dev);
	if (err != cudaSuccess) {
		return err;
	}
	err = cudaGetDeviceProperties(&prop, dev);
	if (err != cudaSuccess) {
		return err;
	}
	err = cudaMemGetInfo(free_mem, total);
	if (err != cudaSuccess) {
		return err;
	}
	snprintf(name, name_len, "%s", prop.name);
	*major = prop.major;
	*minor = prop.minor;
	return cudaSuccess;
}

static cufftResult fb_plan_many_1d(cufftHandle *plan, int length, int batch) {
	int n[1] = { length };
	return cufftPlanMany(plan, 1, n, NULL, 1, length, NULL, 1, length, CUFFT_C2C, batch);
}
*/
import "C"
import (
	"fmt"
	"sync"
	"unsafe"
)

// NativeRuntime calls the CUDA runtime and cuFFT through cgo.
type NativeRuntime struct {
	mu     sync.Mutex
	events map[EventHandle]C.cudaEvent_t
	next   EventHandle
}

// NewNativeRuntime checks that a CUDA device is usable and returns a runtime
// bound to it.
func NewNativeRuntime() (*NativeRuntime, error) {
	var count C.int
	if st := Status(C.cudaGetDeviceCount(&count)); !st.OK() {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, &RuntimeError{Op: "device count", Status: st})
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, &RuntimeError{Op: "device count", Status: StatusNoDevice})
	}
	return &NativeRuntime{events: make(map[EventHandle]C.cudaEvent_t)}, nil
}

func (r *NativeRuntime) Malloc(size uintptr) (DevicePtr, Status) {
	var p unsafe.Pointer
	st := Status(C.cudaMalloc(&p, C.size_t(size)))
	return DevicePtr(p), st
}

func (r *NativeRuntime) Free(ptr DevicePtr) Status {
	return Status(C.cudaFree(unsafe.Pointer(ptr)))
}

func (r *NativeRuntime) MemcpyHtoD(dst DevicePtr, src unsafe.Pointer, size uintptr) Status {
	return Status(C.cudaMemcpy(unsafe.Pointer(dst), src, C.size_t(size), C.cudaMemcpyHostToDevice))
}

func (r *NativeRuntime) MemcpyDtoH(dst unsafe.Pointer, src DevicePtr, size uintptr) Status {
	return Status(C.cudaMemcpy(dst, unsafe.Pointer(src), C.size_t(size), C.cudaMemcpyDeviceToHost))
}

func (r *NativeRuntime) DeviceSynchronize() Status {
	return Status(C.cudaDeviceSynchronize())
}

// cudaEvent_t is a C pointer; handles given out are table keys so that no C
// pointer is stored in a Go integer.
func (r *NativeRuntime) EventCreate() (EventHandle, Status) {
	var ev C.cudaEvent_t
	if st := Status(C.cudaEventCreate(&ev)); !st.OK() {
		return 0, st
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.events[r.next] = ev
	return r.next, StatusSuccess
}

func (r *NativeRuntime) lookup(h EventHandle) (C.cudaEvent_t, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.events[h]
	return ev, ok
}

func (r *NativeRuntime) EventRecord(h EventHandle) Status {
	ev, ok := r.lookup(h)
	if !ok {
		return StatusInvalidResourceHandle
	}
	// Stream 0 is the default stream.
	return Status(C.cudaEventRecord(ev, nil))
}

func (r *NativeRuntime) EventSynchronize(h EventHandle) Status {
	ev, ok := r.lookup(h)
	if !ok {
		return StatusInvalidResourceHandle
	}
	return Status(C.cudaEventSynchronize(ev))
}

func (r *NativeRuntime) EventElapsedTime(start, end EventHandle) (float32, Status) {
	s, ok := r.lookup(start)
	if !ok {
		return 0, StatusInvalidResourceHandle
	}
	e, ok := r.lookup(end)
	if !ok {
		return 0, StatusInvalidResourceHandle
	}
	var ms C.float
	st := Status(C.cudaEventElapsedTime(&ms, s, e))
	return float32(ms), st
}

func (r *NativeRuntime) EventDestroy(h EventHandle) Status {
	ev, ok := r.lookup(h)
	if !ok {
		return StatusInvalidResourceHandle
	}
	st := Status(C.cudaEventDestroy(ev))
	if st.OK() {
		r.mu.Lock()
		delete(r.events, h)
		r.mu.Unlock()
	}
	return st
}

func (r *NativeRuntime) PlanMany1D(length, batch int) (PlanHandle, Result) {
	var h C.cufftHandle
	res := Result(C.fb_plan_many_1d(&h, C.int(length), C.int(batch)))
	return PlanHandle(h), res
}

func (r *NativeRuntime) ExecC2C(plan PlanHandle, data DevicePtr, dir Direction) Result {
	p := (*C.cufftComplex)(unsafe.Pointer(data))
	return Result(C.cufftExecC2C(C.cufftHandle(plan), p, p, C.int(dir)))
}

func (r *NativeRuntime) PlanDestroy(plan PlanHandle) Result {
	return Result(C.cufftDestroy(C.cufftHandle(plan)))
}

func (r *NativeRuntime) DeviceInfo() (DeviceInfo, Status) {
	var (
		name         [256]C.char
		total, free  C.size_t
		major, minor C.int
	)
	st := Status(C.fb_device_info(&name[0], C.size_t(len(name)), &total, &free, &major, &minor))
	if !st.OK() {
		return DeviceInfo{}, st
	}
	return DeviceInfo{
		Name:              C.GoString(&name[0]),
		Backend:           "cuda",
		TotalMemory:       int64(total),
		FreeMemory:        int64(free),
		ComputeCapability: fmt.Sprintf("%d.%d", int(major), int(minor)),
	}, StatusSuccess
}
