package engine

import "math"

// realFFT computes the forward DFT of a power-of-two-length real input,
// returning N complex64 bins. Ported from the radix-2 decimation-in-time
// routine in original_source/src/ggwave.cpp (ordina/transform/FFT),
// rewritten to use Go's native complex64 instead of interleaved float
// pairs. toFFTWire below reconstructs the interleaved-float layout for
// callers that need it.
func realFFT(in []float32) []complex64 {
	n := len(in)
	out := make([]complex64, n)
	for i, v := range in {
		out[i] = complex(float64(v), 0)
	}
	fftInPlace(out)
	return out
}

// toFFTWire renders a realFFT result as the 2N-interleaved-float
// layout (re0, im0, re1, im1, ...) for callers that need the wire shape.
func toFFTWire(bins []complex64) []float32 {
	wire := make([]float32, 2*len(bins))
	for i, c := range bins {
		wire[2*i] = real(c)
		wire[2*i+1] = imag(c)
	}
	return wire
}

func log2Int(n int) int {
	k, i := n, 0
	for k != 0 {
		k >>= 1
		i++
	}
	return i - 1
}

func bitReverse(n, x int) int {
	bits := log2Int(n)
	p := 0
	for j := 1; j <= bits; j++ {
		if x&(1<<(bits-j)) != 0 {
			p |= 1 << (j - 1)
		}
	}
	return p
}

func fftInPlace(f []complex64) {
	n := len(f)

	reordered := make([]complex64, n)
	for i := 0; i < n; i++ {
		reordered[i] = f[bitReverse(n, i)]
	}
	copy(f, reordered)

	for size := 2; size <= n; size *= 2 {
		half := size / 2
		wStep := complex(math.Cos(-2*math.Pi/float64(size)), math.Sin(-2*math.Pi/float64(size)))
		for start := 0; start < n; start += size {
			w := complex128(1)
			for i := 0; i < half; i++ {
				even := complex128(f[start+i])
				odd := complex128(f[start+i+half]) * w
				f[start+i] = complex64(even + odd)
				f[start+i+half] = complex64(even - odd)
				w *= wStep
			}
		}
	}
}

// powerSpectrumFolded returns len(amplitude) power values: the squared
// magnitude of the forward FFT, with bins 1..N/2-1 of the first half
// increased by their mirror bins; the upper half is left unfolded and
// callers read only the first half. Matches ggwave.cpp's repeated
// `m_sampleSpectrum[i] += m_sampleSpectrum[N-i]` pattern.
func powerSpectrumFolded(amplitude []float32) []float32 {
	n := len(amplitude)
	bins := realFFT(amplitude)

	power := make([]float32, n)
	for i, c := range bins {
		re, im := float64(real(c)), float64(imag(c))
		power[i] = float32(re*re + im*im)
	}
	for i := 1; i < n/2; i++ {
		power[i] += power[n-i]
	}
	return power
}
