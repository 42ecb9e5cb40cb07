package engine

import "math"

// Tone describes one excited frequency during one output frame, used
// for diagnostics and by external beeper-style drivers that want a
// symbolic (frequency, duration) description instead of raw samples.
type Tone struct {
	FreqHz     float64
	DurationMs float64
}

// bitFreq returns the carrier frequency, in Hz, of data-bit index bit
// within protocol p's band.
func bitFreq(hzPerSample float64, p Protocol, bit int) float64 {
	return hzPerSample*float64(p.FreqStart) + 2*hzPerSample*float64(bit)
}

// toneTables precomputes, for every data-bit index, the two reference
// waveforms (bit-set and bit-clear) used to synthesize one frame, each
// generated with a phase offset that keeps adjacent bits from
// phase-aligning. Ported
// from the per-k loop at the top of GGWave::encode.
type toneTables struct {
	bit1Amplitude [][]float32
	bit0Amplitude [][]float32
}

const maxDataBits = 256

func buildToneTables(samplesPerFrame int, hzPerSample float64, p Protocol) *toneTables {
	t := &toneTables{
		bit1Amplitude: make([][]float32, maxDataBits),
		bit0Amplitude: make([][]float32, maxDataBits),
	}

	isamplesPerFrame := 1.0 / float64(samplesPerFrame)
	nDataBits := p.NDataBitsPerTx()

	for k := 0; k < maxDataBits; k++ {
		phaseOffset := 0.0
		if nDataBits > 0 {
			phaseOffset = (math.Pi * float64(k)) / float64(nDataBits)
		}

		freq := bitFreq(hzPerSample, p, k)
		iHzPerSample := 1.0 / hzPerSample

		bit1 := make([]float32, samplesPerFrame)
		bit0 := make([]float32, samplesPerFrame)
		for i := 0; i < samplesPerFrame; i++ {
			ci := float64(i)
			bit1[i] = float32(math.Sin(2.0*math.Pi*(ci*isamplesPerFrame)*(freq*iHzPerSample) + phaseOffset))
			bit0[i] = float32(math.Sin(2.0*math.Pi*(ci*isamplesPerFrame)*((freq+hzPerSample)*iHzPerSample) + phaseOffset))
		}

		t.bit1Amplitude[k] = bit1
		t.bit0Amplitude[k] = bit0
	}

	return t
}

// addAmplitudeSmooth adds scalar*src into dst over [startID,finalID),
// ramping up over the first 15% and down over the last 15% of a
// cycleMod/nPerCycle-indexed envelope so adjacent symbols don't click.
// Direct port of the free function of the same name in ggwave.cpp.
func addAmplitudeSmooth(src, dst []float32, scalar float32, startID, finalID, cycleMod, nPerCycle int) {
	nTotal := nPerCycle * finalID
	const frac = 0.15
	ds := frac * float64(nTotal)
	ids := 1.0 / ds
	nBegin := int(frac * float64(nTotal))
	nEnd := int((1.0 - frac) * float64(nTotal))

	for i := startID; i < finalID; i++ {
		k := cycleMod*finalID + i
		switch {
		case k < nBegin:
			dst[i] += scalar * src[i] * float32(float64(k)*ids)
		case k > nEnd:
			dst[i] += scalar * src[i] * float32((float64(nTotal)-float64(k))*ids)
		default:
			dst[i] += scalar * src[i]
		}
	}
}
