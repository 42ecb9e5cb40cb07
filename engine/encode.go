package engine

import "fmt"

// Init resets transmit state and schedules a new message. Ported from
// GGWave::init(dataSize, dataBuffer, txProtocol, volume).
func (e *Engine) Init(payload []byte, protocol Protocol, volume int) error {
	maxLength := MaxLengthVariable
	if e.isFixedLength {
		maxLength = e.payloadLength
	}

	dataSize := len(payload)
	if dataSize > maxLength {
		dataSize = maxLength
	}

	if protocol.Extra == 2 && !e.isFixedLength {
		return ErrFixedLengthRequired
	}

	if dataSize > 0 && e.params.Mode&ModeTx == 0 {
		return fmt.Errorf("%w: protocol requires transmit mode, but Parameters.Mode has ModeTx disabled", ErrInvalidArgument)
	}

	if volume < 0 || volume > 100 {
		return fmt.Errorf("%w: volume out of range", ErrInvalidArgument)
	}

	e.txProtocol = protocol
	e.txDataLength = dataSize
	e.sendVolume = float64(volume) / 100.0

	e.hasNewTxData = false
	for i := range e.txData {
		e.txData[i] = 0
	}
	for i := range e.txDataEncoded {
		e.txDataEncoded[i] = 0
	}

	if e.txDataLength > 0 {
		e.txData[0] = byte(e.txDataLength)
		copy(e.txData[1:], payload[:e.txDataLength])
		e.hasNewTxData = true
	}

	if e.isFixedLength {
		e.txDataLength = e.payloadLength
	}

	// Rx state resets alongside Tx state, matching the source's single
	// init() resetting both halves of the engine.
	e.receivingData = false
	e.analyzingData = false
	e.framesToAnalyze = 0
	e.framesLeftToAnalyze = 0
	e.framesToRecord = 0
	e.framesLeftToRecord = 0

	for i := range e.sampleSpectrum {
		e.sampleSpectrum[i] = 0
	}
	for i := range e.sampleAmplitude {
		e.sampleAmplitude[i] = 0
	}
	for _, h := range e.sampleAmplitudeHistory {
		for i := range h {
			h[i] = 0
		}
	}
	for i := range e.rxData {
		e.rxData[i] = 0
	}
	for _, s := range e.spectrumHistoryFixed {
		for i := range s {
			s[i] = 0
		}
	}

	return nil
}

// EncodeSizeBytes predicts the total output byte count without encoding.
func (e *Engine) EncodeSizeBytes() int {
	return e.EncodeSizeSamples() * e.sampleSizeBytesOut
}

// EncodeSizeSamples predicts the total output sample count without
// encoding. Ported from GGWave::encodeSize_samples.
func (e *Engine) EncodeSizeSamples() int {
	if !e.hasNewTxData {
		return 0
	}

	samplesPerFrameOut := e.samplesPerFrame
	if e.params.SampleRateOut != BaseSampleRate {
		factor := float32(BaseSampleRate / e.params.SampleRateOut)
		probe := make([]float32, e.samplesPerFrame)
		samplesPerFrameOut = len(e.resampler.resample(factor, probe)) + 1
	}

	nECC := eccBytes(e.txDataLength)
	sendDataLength := e.txDataLength + e.encodedDataOffset
	totalBytes := sendDataLength + nECC
	totalDataFrames := ((totalBytes + e.txProtocol.BytesPerTx - 1) / e.txProtocol.BytesPerTx) * e.txProtocol.FramesPerTx

	return (e.nMarkerFrames + totalDataFrames + e.nMarkerFrames) * samplesPerFrameOut
}

// OutputCallback receives one block of encoded output bytes in the
// format selected by Parameters.SampleFormatOut.
type OutputCallback func(data []byte)

// Encode streams the queued transmission through cb and clears
// HasTxData on completion. Ported from GGWave::encode.
func (e *Engine) Encode(cb OutputCallback) error {
	if !e.hasNewTxData {
		return nil
	}

	e.resampler.reset()

	tables := buildToneTables(e.samplesPerFrame, e.hzPerSample, e.txProtocol)

	nECC := eccBytes(e.txDataLength)
	sendDataLength := e.txDataLength + e.encodedDataOffset
	totalBytes := sendDataLength + nECC
	totalDataFrames := ((totalBytes + e.txProtocol.BytesPerTx - 1) / e.txProtocol.BytesPerTx) * e.txProtocol.FramesPerTx

	if !e.isFixedLength {
		rsLength := newReedSolomon(1, e.encodedDataOffset-1)
		codeword := rsLength.encode(e.txData[:1])
		copy(e.txDataEncoded, codeword)
	}

	rsData := newReedSolomon(e.txDataLength, nECC)
	codeword := rsData.encode(e.txData[1 : 1+e.txDataLength])
	copy(e.txDataEncoded[e.encodedDataOffset:], codeword)

	factor := float32(BaseSampleRate / e.params.SampleRateOut)

	e.waveformTones = e.waveformTones[:0]
	e.txAmplitudeI16 = e.txAmplitudeI16[:0]

	outputBlock := make([]float32, e.samplesPerFrame)
	i16Block := make([]int16, e.samplesPerFrame)
	var frameID int

	for e.hasNewTxData {
		for i := range outputBlock {
			outputBlock[i] = 0
		}

		var nFreq uint16
		var frameTones []Tone

		frameDurationMs := (1000.0 * float64(e.samplesPerFrame)) / BaseSampleRate

		switch {
		case frameID < e.nMarkerFrames:
			nFreq = nBitsInMarker
			for i := 0; i < nBitsInMarker; i++ {
				if i%2 == 0 {
					addAmplitudeSmooth(tables.bit1Amplitude[i], outputBlock, float32(e.sendVolume), 0, e.samplesPerFrame, frameID, e.nMarkerFrames)
					frameTones = append(frameTones, Tone{FreqHz: bitFreq(e.hzPerSample, e.txProtocol, i), DurationMs: frameDurationMs})
				} else {
					addAmplitudeSmooth(tables.bit0Amplitude[i], outputBlock, float32(e.sendVolume), 0, e.samplesPerFrame, frameID, e.nMarkerFrames)
					frameTones = append(frameTones, Tone{FreqHz: bitFreq(e.hzPerSample, e.txProtocol, i) + e.hzPerSample, DurationMs: frameDurationMs})
				}
			}

		case frameID < e.nMarkerFrames+totalDataFrames:
			dataOffset := frameID - e.nMarkerFrames
			cycleModMain := dataOffset % e.txProtocol.FramesPerTx
			dataOffset /= e.txProtocol.FramesPerTx
			dataOffset *= e.txProtocol.BytesPerTx

			var dataBits [maxDataBits]bool
			for j := 0; j < e.txProtocol.BytesPerTx; j++ {
				lo := e.txDataEncoded[dataOffset+j] & 15
				dataBits[(2*j+0)*16+int(lo)] = true
				hi := e.txDataEncoded[dataOffset+j] & 240
				dataBits[(2*j+1)*16+int(hi>>4)] = true
			}

			for k := 0; k < 2*e.txProtocol.BytesPerTx*16; k++ {
				if !dataBits[k] {
					continue
				}
				nFreq++
				if k%2 == 1 {
					addAmplitudeSmooth(tables.bit0Amplitude[k/2], outputBlock, float32(e.sendVolume), 0, e.samplesPerFrame, cycleModMain, e.txProtocol.FramesPerTx)
					frameTones = append(frameTones, Tone{FreqHz: bitFreq(e.hzPerSample, e.txProtocol, k/2) + e.hzPerSample, DurationMs: frameDurationMs})
				} else {
					addAmplitudeSmooth(tables.bit1Amplitude[k/2], outputBlock, float32(e.sendVolume), 0, e.samplesPerFrame, cycleModMain, e.txProtocol.FramesPerTx)
					frameTones = append(frameTones, Tone{FreqHz: bitFreq(e.hzPerSample, e.txProtocol, k/2), DurationMs: frameDurationMs})
				}
			}

		case frameID < e.nMarkerFrames+totalDataFrames+e.nMarkerFrames:
			nFreq = nBitsInMarker
			fID := frameID - (e.nMarkerFrames + totalDataFrames)
			for i := 0; i < nBitsInMarker; i++ {
				if i%2 == 0 {
					addAmplitudeSmooth(tables.bit0Amplitude[i], outputBlock, float32(e.sendVolume), 0, e.samplesPerFrame, fID, e.nMarkerFrames)
					frameTones = append(frameTones, Tone{FreqHz: bitFreq(e.hzPerSample, e.txProtocol, i) + e.hzPerSample, DurationMs: frameDurationMs})
				} else {
					addAmplitudeSmooth(tables.bit1Amplitude[i], outputBlock, float32(e.sendVolume), 0, e.samplesPerFrame, fID, e.nMarkerFrames)
					frameTones = append(frameTones, Tone{FreqHz: bitFreq(e.hzPerSample, e.txProtocol, i), DurationMs: frameDurationMs})
				}
			}

		default:
			e.hasNewTxData = false
			continue
		}

		e.waveformTones = append(e.waveformTones, frameTones)

		if nFreq == 0 {
			nFreq = 1
		}
		scale := float32(1.0 / float64(nFreq))
		for i := range outputBlock {
			outputBlock[i] *= scale
		}

		var resampled []float32
		if e.params.SampleRateOut != BaseSampleRate {
			resampled = e.resampler.resample(factor, outputBlock)
		} else {
			resampled = outputBlock
		}

		for i, v := range resampled {
			i16Block[i] = int16(32768 * v)
		}
		e.txAmplitudeI16 = append(e.txAmplitudeI16, i16Block[:len(resampled)]...)

		out := encodeFloatToSamples(e.params.SampleFormatOut, resampled, i16Block[:len(resampled)])
		if out == nil {
			return ErrEncodeFailed
		}
		cb(out)

		frameID++
	}

	return nil
}
