// Package signal synthesizes benchmark inputs and inspects transform output.
package signal

import (
	"math"
	"math/cmplx"
)

// BatchCosine returns batch contiguous signals of length samples. Signal s is
// cos(2*pi*(s+1)*t) with t = j/length, so every slot has its own integer
// frequency and its transform peaks at a known bin.
func BatchCosine(batch, length int) []complex64 {
	data := make([]complex64, batch*length)
	for i := range data {
		t := float64(i%length) / float64(length)
		freq := 1 + float64(i/length)
		data[i] = complex(float32(math.Cos(2*math.Pi*freq*t)), 0)
	}
	return data
}

// BatchExponential is like BatchCosine with unit complex exponentials
// exp(2*pi*i*(s+1)*t), whose spectra have a single non-zero bin.
func BatchExponential(batch, length int) []complex64 {
	data := make([]complex64, 0, batch*length)
	for s := 0; s < batch; s++ {
		data = append(data, Exponential(length, s+1)...)
	}
	return data
}

// Exponential returns exp(2*pi*i*k*j/length) for j in [0, length).
func Exponential(length, k int) []complex64 {
	data := make([]complex64, length)
	for j := range data {
		phase := 2 * math.Pi * float64(k) * float64(j) / float64(length)
		data[j] = complex64(cmplx.Rect(1, phase))
	}
	return data
}

// Constant returns length copies of v.
func Constant(length int, v complex64) []complex64 {
	data := make([]complex64, length)
	for i := range data {
		data[i] = v
	}
	return data
}

// PeakBin returns the index of the largest-magnitude sample. Ties go to the
// lowest index.
func PeakBin(x []complex64) int {
	peak, best := 0, -1.0
	for i, v := range x {
		if m := cmplx.Abs(complex128(v)); m > best {
			peak, best = i, m
		}
	}
	return peak
}

// Energy returns sum(|x[i]|^2), accumulated in float64.
func Energy(x []complex64) float64 {
	var e float64
	for _, v := range x {
		re, im := float64(real(v)), float64(imag(v))
		e += re*re + im*im
	}
	return e
}

// Slot returns signal s of a contiguous batch.
func Slot(data []complex64, length, s int) []complex64 {
	return data[s*length : (s+1)*length]
}

// Scale multiplies every sample by f in place.
func Scale(x []complex64, f float32) {
	for i := range x {
		x[i] = complex(real(x[i])*f, imag(x[i])*f)
	}
}
