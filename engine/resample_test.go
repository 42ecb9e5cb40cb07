package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_resampler_preservesToneFrequency(t *testing.T) {
	const srcRate = 48000.0
	const dstRate = 24000.0
	const freq = 1000.0
	const n = 4800

	in := make([]float32, n)
	for i := range in {
		in[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / srcRate))
	}

	r := newResampler()
	out := r.resample(float32(srcRate/dstRate), in)
	require.NotEmpty(t, out)

	// Count zero crossings as a coarse frequency estimate.
	crossings := 0
	for i := 1; i < len(out); i++ {
		if (out[i-1] < 0) != (out[i] < 0) {
			crossings++
		}
	}
	estimatedFreq := float64(crossings) / 2 * dstRate / float64(len(out))
	assert.InDelta(t, freq, estimatedFreq, 50)
}

func Test_resampler_reset_clearsDelayLine(t *testing.T) {
	r := newResampler()
	in := make([]float32, 64)
	for i := range in {
		in[i] = 1
	}
	r.resample(1.5, in)
	r.reset()

	for _, v := range r.delayBuf {
		require.Equal(t, float32(0), v)
	}
}
