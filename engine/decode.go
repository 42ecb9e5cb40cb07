package engine

import "fmt"

// InputCallback fills buf with up to len(buf) bytes of captured audio
// in the format selected by Parameters.SampleFormatIn and returns the
// number of bytes actually written. Returning 0 ends the current
// Decode call.
type InputCallback func(buf []byte) int

// Decode drains cb, feeding accumulated frames to the configured
// receive state machine. Ported from GGWave::decode.
func (e *Engine) Decode(cb InputCallback) error {
	if e.params.Mode&ModeRx == 0 {
		return fmt.Errorf("%w: Parameters.Mode has ModeRx disabled", ErrInvalidArgument)
	}

	for !e.hasNewTxData {
		factor := e.params.SampleRateIn / BaseSampleRate
		samplesNeeded := e.samplesNeeded
		bytesNeeded := samplesNeeded * e.sampleSizeBytesIn

		if e.params.SampleRateIn != BaseSampleRate {
			probe := make([]float32, samplesNeeded)
			bytesNeeded = (len(e.resampler.resample(float32(1.0/factor), probe)) + 4) * e.sampleSizeBytesIn
		}

		raw := make([]byte, bytesNeeded)
		nRead := cb(raw)

		if nRead%e.sampleSizeBytesIn != 0 {
			e.samplesNeeded = e.samplesPerFrame
			return ErrCaptureInconsistent
		}
		if nRead > bytesNeeded {
			e.samplesNeeded = e.samplesPerFrame
			return ErrCaptureInconsistent
		}

		raw = raw[:nRead]
		resampledIn := decodeSamplesToFloat(e.params.SampleFormatIn, raw, nil)
		nSamplesRecorded := len(resampledIn)

		if nSamplesRecorded == 0 {
			break
		}

		offset := e.samplesPerFrame - e.samplesNeeded

		if e.params.SampleRateIn != BaseSampleRate {
			if nSamplesRecorded <= 2*resamplerWidth {
				e.samplesNeeded = e.samplesPerFrame
				break
			}

			out := e.resampler.resample(float32(factor), resampledIn)
			n := len(out)
			if offset+n > len(e.sampleAmplitude) {
				n = len(e.sampleAmplitude) - offset
			}
			copy(e.sampleAmplitude[offset:offset+n], out[:n])
			nSamplesRecorded = offset + n
		} else {
			copy(e.sampleAmplitude[offset:], resampledIn)
			nSamplesRecorded = offset + nSamplesRecorded
		}

		if nSamplesRecorded >= e.samplesPerFrame {
			e.hasNewAmplitude = true

			if e.isFixedLength {
				e.decodeFixed()
			} else {
				e.decodeVariable()
			}

			nExtra := nSamplesRecorded - e.samplesPerFrame
			copy(e.sampleAmplitude[:nExtra], e.sampleAmplitude[e.samplesPerFrame:e.samplesPerFrame+nExtra])
			e.samplesNeeded = e.samplesPerFrame - nExtra
		} else {
			e.samplesNeeded = e.samplesPerFrame - nSamplesRecorded
			break
		}
	}

	return nil
}
