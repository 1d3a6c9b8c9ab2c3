package gpu

import "unsafe"

// DevicePtr is an address in accelerator memory. It is never dereferenced by
// host code; it is only handed back to the Runtime.
type DevicePtr unsafe.Pointer

// EventHandle identifies a runtime event owned by a Runtime.
type EventHandle uintptr

// PlanHandle identifies a cuFFT plan (cufftHandle).
type PlanHandle int32

// Direction is the sign of the transform exponent.
type Direction int

// Transform directions. Values match CUFFT_FORWARD and CUFFT_INVERSE.
const (
	Forward Direction = -1
	Inverse Direction = 1
)

func (d Direction) String() string {
	if d == Forward {
		return "forward"
	}
	return "inverse"
}

// DeviceInfo contains information about the accelerator device
type DeviceInfo struct {
	Name              string `json:"name"`
	Backend           string `json:"backend"`
	TotalMemory       int64  `json:"totalMemory"` // in bytes
	FreeMemory        int64  `json:"freeMemory"`  // in bytes
	ComputeCapability string `json:"computeCapability"`
}

// Runtime is the foreign accelerator boundary: the CUDA runtime plus cuFFT.
//
// Every call reports its outcome as a status code. Output values returned
// alongside a non-success code are unspecified and callers must not read
// them. Runtime methods do no ownership tracking of their own; that is the
// job of DeviceBuffer, Event and Plan.
//
// All work is issued on the default stream, so the completion order of
// operations, including event records, is the order in which they are issued.
// Elapsed-time measurement between two events relies on this.
type Runtime interface {
	// Malloc allocates size bytes of device memory. Allocation is atomic:
	// on failure nothing is left to free.
	Malloc(size uintptr) (DevicePtr, Status)

	// Free releases memory obtained from Malloc.
	Free(ptr DevicePtr) Status

	// MemcpyHtoD copies size bytes from host memory to device memory.
	MemcpyHtoD(dst DevicePtr, src unsafe.Pointer, size uintptr) Status

	// MemcpyDtoH copies size bytes from device memory to host memory.
	MemcpyDtoH(dst unsafe.Pointer, src DevicePtr, size uintptr) Status

	// DeviceSynchronize blocks until all previously issued work completes.
	DeviceSynchronize() Status

	EventCreate() (EventHandle, Status)
	// EventRecord enqueues the event on the default stream.
	EventRecord(ev EventHandle) Status
	// EventSynchronize blocks until the recorded point has been reached.
	EventSynchronize(ev EventHandle) Status
	// EventElapsedTime returns milliseconds between two completed events.
	EventElapsedTime(start, end EventHandle) (float32, Status)
	EventDestroy(ev EventHandle) Status

	// PlanMany1D creates a batched 1-D C2C plan: batch transforms of length
	// samples, stride 1, consecutive transforms length samples apart.
	PlanMany1D(length, batch int) (PlanHandle, Result)

	// ExecC2C runs the plan in place over data in the given direction. The
	// launch is asynchronous with respect to the host.
	ExecC2C(plan PlanHandle, data DevicePtr, dir Direction) Result

	PlanDestroy(plan PlanHandle) Result

	// DeviceInfo describes the current device.
	DeviceInfo() (DeviceInfo, Status)
}
