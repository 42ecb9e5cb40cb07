package engine

import "math"

const (
	resamplerWidth               = 64
	resamplerDelaySize           = 140
	resamplerSamplesPerZeroCross = 32
)

// resampler is a windowed-sinc band-limited resampler, ported from
// original_source/src/resampler.cpp. It keeps a running delay line so it
// can be fed in successive chunks (each Resample call continues where
// the last left off), which is what the receive path needs when audio
// arrives in arbitrarily sized blocks.
type resampler struct {
	sincTable  [resamplerWidth * resamplerSamplesPerZeroCross]float32
	delayBuf   [3 * resamplerWidth]float32
	lastFactor float32
}

func newResampler() *resampler {
	return &resampler{lastFactor: -1}
}

// reset clears the delay line and forces the sinc table to be rebuilt on
// the next Resample call, for reuse across unrelated capture sessions.
func (r *resampler) reset() {
	r.delayBuf = [3 * resamplerWidth]float32{}
	r.lastFactor = -1
}

// resample converts len(in) input samples to output samples at the given
// factor (factor = inputRate/outputRate, i.e. factor<1 upsamples) and
// returns the slice actually written, sized by the same variable-length
// rule as the original: it keeps producing output until the input is
// exhausted.
func (r *resampler) resample(factor float32, in []float32) []float32 {
	if factor != r.lastFactor {
		r.makeSinc()
		r.lastFactor = factor
	}

	nSamples := len(in)
	out := make([]float32, 0, int(float32(nSamples)/factor)+4)

	idxInp := 0
	notDone := true
	timeNow := 0.0
	var intTime, lastTime int64
	dataIn := in[idxInp]

	for notDone {
		temp1 := 0.0
		leftLimit := int64(timeNow) - resamplerWidth + 1
		rightLimit := int64(timeNow) + resamplerWidth
		if leftLimit < 0 {
			leftLimit = 0
		}
		if rightLimit > int64(nSamples) {
			rightLimit = int64(nSamples)
		}

		if factor < 1.0 {
			for j := leftLimit; j < rightLimit; j++ {
				temp1 += float64(r.gimmeData(j-intTime)) * r.sinc(timeNow-float64(j))
			}
		} else {
			oneOverFactor := 1.0 / float64(factor)
			for j := leftLimit; j < rightLimit; j++ {
				temp1 += float64(r.gimmeData(j-intTime)) * oneOverFactor * r.sinc(oneOverFactor*(timeNow-float64(j)))
			}
		}

		out = append(out, float32(temp1))
		timeNow += float64(factor)
		lastTime = intTime
		intTime = int64(timeNow)

		for lastTime < intTime {
			idxInp++
			if idxInp == nSamples {
				notDone = false
			} else {
				dataIn = in[idxInp]
			}
			r.newData(dataIn)
			lastTime++
		}
	}

	return out
}

func (r *resampler) gimmeData(j int64) float32 {
	return r.delayBuf[j+resamplerWidth]
}

func (r *resampler) newData(data float32) {
	for i := 0; i < resamplerDelaySize-5; i++ {
		r.delayBuf[i] = r.delayBuf[i+1]
	}
	r.delayBuf[resamplerDelaySize-5] = data
}

func (r *resampler) makeSinc() {
	winFreq := math.Pi / resamplerWidth / resamplerSamplesPerZeroCross
	r.sincTable[0] = 1.0
	for i := 1; i < resamplerWidth*resamplerSamplesPerZeroCross; i++ {
		temp := float64(i) * math.Pi / resamplerSamplesPerZeroCross
		v := math.Sin(temp) / temp
		win := 0.5 + 0.5*math.Cos(winFreq*float64(i))
		r.sincTable[i] = float32(v * win)
	}
}

func (r *resampler) sinc(x float64) float64 {
	if math.Abs(x) >= resamplerWidth-1 {
		return 0.0
	}
	temp := math.Abs(x) * resamplerSamplesPerZeroCross
	low := int(temp)
	delta := temp - float64(low)
	return linearInterp(float64(r.sincTable[low]), float64(r.sincTable[low+1]), delta)
}

func linearInterp(a, b, frac float64) float64 {
	return a + (b-a)*frac
}
