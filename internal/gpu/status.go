package gpu

import "fmt"

// Status is a CUDA runtime result code (cudaError_t).
type Status int

// CUDA runtime status codes. Values match cuda_runtime_api.h.
const (
	StatusSuccess               Status = 0
	StatusInvalidValue          Status = 1
	StatusMemoryAllocation      Status = 2
	StatusInitializationError   Status = 3
	StatusInsufficientDriver    Status = 35
	StatusNoDevice              Status = 100
	StatusInvalidResourceHandle Status = 400
	StatusNotReady              Status = 600
)

type codeInfo struct {
	name    string
	message string
}

var statusInfo = map[Status]codeInfo{
	StatusSuccess:               {"cudaSuccess", "success"},
	StatusInvalidValue:          {"cudaErrorInvalidValue", "invalid value"},
	StatusMemoryAllocation:      {"cudaErrorMemoryAllocation", "memory allocation failed"},
	StatusInitializationError:   {"cudaErrorInitializationError", "initialization error"},
	StatusInsufficientDriver:    {"cudaErrorInsufficientDriver", "insufficient driver"},
	StatusNoDevice:              {"cudaErrorNoDevice", "no CUDA device"},
	StatusInvalidResourceHandle: {"cudaErrorInvalidResourceHandle", "invalid resource handle"},
	StatusNotReady:              {"cudaErrorNotReady", "not ready"},
}

// OK reports whether s is the success code.
func (s Status) OK() bool {
	return s == StatusSuccess
}

// String returns the runtime API name of the code, or a numeric form for
// codes this package does not know about.
func (s Status) String() string {
	if info, ok := statusInfo[s]; ok {
		return info.name
	}
	return fmt.Sprintf("cudaError(%d)", int(s))
}

// Message returns a short human-readable description of the code.
func (s Status) Message() string {
	if info, ok := statusInfo[s]; ok {
		return info.message
	}
	return fmt.Sprintf("unknown CUDA error (%d)", int(s))
}

// Result is a cuFFT result code (cufftResult).
type Result int

// cuFFT result codes. Values match cufft.h.
const (
	ResultSuccess       Result = 0
	ResultInvalidPlan   Result = 1
	ResultAllocFailed   Result = 2
	ResultInvalidType   Result = 3
	ResultInvalidValue  Result = 4
	ResultInternalError Result = 5
	ResultExecFailed    Result = 6
	ResultSetupFailed   Result = 7
	ResultInvalidSize   Result = 8
	ResultUnalignedData Result = 9
)

var resultInfo = map[Result]codeInfo{
	ResultSuccess:       {"CUFFT_SUCCESS", "success"},
	ResultInvalidPlan:   {"CUFFT_INVALID_PLAN", "invalid plan handle"},
	ResultAllocFailed:   {"CUFFT_ALLOC_FAILED", "plan allocation failed"},
	ResultInvalidType:   {"CUFFT_INVALID_TYPE", "invalid transform type"},
	ResultInvalidValue:  {"CUFFT_INVALID_VALUE", "invalid value"},
	ResultInternalError: {"CUFFT_INTERNAL_ERROR", "internal error"},
	ResultExecFailed:    {"CUFFT_EXEC_FAILED", "execution failed"},
	ResultSetupFailed:   {"CUFFT_SETUP_FAILED", "library setup failed"},
	ResultInvalidSize:   {"CUFFT_INVALID_SIZE", "invalid transform size"},
	ResultUnalignedData: {"CUFFT_UNALIGNED_DATA", "unaligned data"},
}

// OK reports whether r is the success code.
func (r Result) OK() bool {
	return r == ResultSuccess
}

// String returns the cuFFT name of the code, or a numeric form for unknown codes.
func (r Result) String() string {
	if info, ok := resultInfo[r]; ok {
		return info.name
	}
	return fmt.Sprintf("cufftResult(%d)", int(r))
}

// Message returns a short human-readable description of the code.
func (r Result) Message() string {
	if info, ok := resultInfo[r]; ok {
		return info.message
	}
	return fmt.Sprintf("unknown cuFFT error (%d)", int(r))
}
