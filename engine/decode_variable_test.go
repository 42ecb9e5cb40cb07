package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_markerDetected_silentBufferNeverMatches(t *testing.T) {
	e := mustEngine(t, DefaultParameters())
	p := e.protocols[ProtocolAudibleFast]

	assert.False(t, e.markerDetected(p, false))
	assert.False(t, e.markerDetected(p, true))
}

func Test_markerDetected_synthesizedStartAndEndAreAsymmetric(t *testing.T) {
	e := mustEngine(t, DefaultParameters())
	p := e.protocols[ProtocolAudibleFast]

	for i := 0; i < nBitsInMarker; i++ {
		freq := bitFreq(e.hzPerSample, p, i)
		bin := roundInt(freq * e.ihzPerSample)
		if i%2 == 0 {
			e.sampleSpectrum[bin] = 10
			e.sampleSpectrum[bin+1] = 1
		} else {
			e.sampleSpectrum[bin] = 1
			e.sampleSpectrum[bin+1] = 10
		}
	}

	require.True(t, e.markerDetected(p, false))
	assert.False(t, e.markerDetected(p, true))
}
