package gpu

import (
	"fmt"
	"unsafe"
)

// DeviceBuffer owns one device allocation holding Len elements of T.
//
// The allocation is released by Close, which callers defer right after a
// successful Alloc. T must not contain Go pointers.
type DeviceBuffer[T any] struct {
	dev      *Device
	ptr      DevicePtr
	n        int
	released bool
}

// Alloc allocates device memory for n elements of T.
func Alloc[T any](dev *Device, n int) (*DeviceBuffer[T], error) {
	if n <= 0 {
		return nil, fmt.Errorf("alloc %d elements: %w", n, ErrInvalidLength)
	}
	var zero T
	size := uintptr(n) * unsafe.Sizeof(zero)
	if size/unsafe.Sizeof(zero) != uintptr(n) {
		return nil, fmt.Errorf("alloc %d elements: size overflows: %w", n, ErrInvalidLength)
	}

	ptr, st := dev.rt.Malloc(size)
	if err := checkStatus("malloc", st); err != nil {
		return nil, err
	}
	return &DeviceBuffer[T]{dev: dev, ptr: ptr, n: n}, nil
}

// Upload copies host into the buffer. len(host) must equal Len exactly. A
// failed copy leaves the contents undefined but the buffer still valid.
func (b *DeviceBuffer[T]) Upload(host []T) error {
	if b.released {
		return fmt.Errorf("upload: %w", ErrReleased)
	}
	if len(host) != b.n {
		return fmt.Errorf("upload: %w: host has %d elements, device has %d", ErrLengthMismatch, len(host), b.n)
	}
	return checkStatus("memcpy htod", b.dev.rt.MemcpyHtoD(b.ptr, unsafe.Pointer(&host[0]), b.Bytes()))
}

// Download copies the buffer into host. len(host) must equal Len exactly.
func (b *DeviceBuffer[T]) Download(host []T) error {
	if b.released {
		return fmt.Errorf("download: %w", ErrReleased)
	}
	if len(host) != b.n {
		return fmt.Errorf("download: %w: host has %d elements, device has %d", ErrLengthMismatch, len(host), b.n)
	}
	return checkStatus("memcpy dtoh", b.dev.rt.MemcpyDtoH(unsafe.Pointer(&host[0]), b.ptr, b.Bytes()))
}

// Ptr returns the raw device address.
func (b *DeviceBuffer[T]) Ptr() DevicePtr {
	return b.ptr
}

// Len returns the element count fixed at allocation.
func (b *DeviceBuffer[T]) Len() int {
	return b.n
}

// Bytes returns the allocation size in bytes.
func (b *DeviceBuffer[T]) Bytes() uintptr {
	var zero T
	return uintptr(b.n) * unsafe.Sizeof(zero)
}

// Close frees the allocation. Only the first call reaches the runtime; a
// failed free is logged and not returned.
func (b *DeviceBuffer[T]) Close() {
	if b == nil || b.released {
		return
	}
	b.released = true
	if st := b.dev.rt.Free(b.ptr); !st.OK() {
		b.dev.releaseFailed("buffer", st)
	}
	b.ptr = nil
}
