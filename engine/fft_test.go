package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_realFFT_pureToneEnergyInExpectedBin(t *testing.T) {
	const n = 1024
	const bin = 40

	in := make([]float32, n)
	for i := range in {
		in[i] = float32(math.Sin(2 * math.Pi * float64(bin) * float64(i) / float64(n)))
	}

	power := powerSpectrumFolded(in)

	var total, peak float64
	peakBin := -1
	for i, v := range power[:n/2] {
		total += float64(v)
		if float64(v) > peak {
			peak = float64(v)
			peakBin = i
		}
	}

	assert.Equal(t, bin, peakBin)
	assert.Greater(t, peak/total, 0.99)
}

func Test_bitReverse_isInvolution(t *testing.T) {
	for n := 2; n <= 1024; n *= 2 {
		for x := 0; x < n; x++ {
			assert.Equal(t, x, bitReverse(n, bitReverse(n, x)))
		}
	}
}
