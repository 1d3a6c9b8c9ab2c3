//go:build !cuda
// +build !cuda

package gpu

import "fmt"

// NativeRuntime is a stub type when CUDA is not compiled in.
type NativeRuntime struct{ Runtime }

// NewNativeRuntime always fails without the cuda build tag.
func NewNativeRuntime() (*NativeRuntime, error) {
	return nil, fmt.Errorf("%w: built without the cuda tag", ErrUnavailable)
}
