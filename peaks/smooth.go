package peaks

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	vecmath "github.com/cwbudde/algo-vecmath"
)

// fftKernelThreshold is the kernel length at which FFT convolution beats the
// direct block products.
const fftKernelThreshold = 32

// smooth applies a centered moving average of the given odd window length.
// The signal is reflection-padded so the output keeps the input length and
// the edges stay unbiased. Window lengths <= 1 return an unmodified copy.
func smooth(y []float64, window int) ([]float64, error) {
	n := len(y)

	if window <= 1 || n == 0 {
		out := make([]float64, n)
		copy(out, y)

		return out, nil
	}

	half := window / 2
	padded := reflectPad(y, half)

	kernel := make([]float64, window)
	for i := range kernel {
		kernel[i] = 1 / float64(window)
	}

	if window >= fftKernelThreshold {
		return fftConvolveValid(padded, kernel, n)
	}

	out := make([]float64, n)
	scratch := make([]float64, window)

	for i := range out {
		vecmath.MulBlock(scratch, padded[i:i+window], kernel)

		var sum float64
		for _, v := range scratch {
			sum += v
		}

		out[i] = sum
	}

	return out, nil
}

// reflectPad mirrors the signal about its first and last samples, extending
// it by half samples on each side. Indices are clamped for signals shorter
// than the padding.
func reflectPad(y []float64, half int) []float64 {
	n := len(y)
	padded := make([]float64, n+2*half)
	copy(padded[half:], y)

	for k := 0; k < half; k++ {
		li := k + 1
		if li > n-1 {
			li = n - 1
		}

		ri := n - 2 - k
		if ri < 0 {
			ri = 0
		}

		padded[half-1-k] = y[li]
		padded[half+n+k] = y[ri]
	}

	return padded
}

// fftConvolveValid convolves the padded signal with the kernel and returns
// the n central (fully-overlapped) output samples. The inverse transform of
// the plan is already 1/N normalized.
func fftConvolveValid(padded, kernel []float64, n int) ([]float64, error) {
	fullLen := len(padded) + len(kernel) - 1
	size := nextPow2(fullLen)

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("peaks: fft plan: %w", err)
	}

	sig := make([]complex128, size)
	for i, v := range padded {
		sig[i] = complex(v, 0)
	}

	ker := make([]complex128, size)
	for i, v := range kernel {
		ker[i] = complex(v, 0)
	}

	if err := plan.Forward(sig, sig); err != nil {
		return nil, fmt.Errorf("peaks: forward fft: %w", err)
	}

	if err := plan.Forward(ker, ker); err != nil {
		return nil, fmt.Errorf("peaks: forward fft: %w", err)
	}

	for i := range sig {
		sig[i] *= ker[i]
	}

	if err := plan.Inverse(sig, sig); err != nil {
		return nil, fmt.Errorf("peaks: inverse fft: %w", err)
	}

	// The valid region of the linear convolution starts at kernel length - 1.
	offset := len(kernel) - 1
	out := make([]float64, n)

	for i := range out {
		out[i] = real(sig[offset+i])
	}

	return out, nil
}

// nextPow2 returns the smallest power of two >= n.
func nextPow2(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}

	return size
}
