package engine

// decodeVariable runs one step of the variable-length receive state
// machine (Idle -> Listening -> Recording -> Analyzing -> Idle), ported
// from GGWave::decode_variable.
func (e *Engine) decodeVariable() {
	copy(e.sampleAmplitudeHistory[e.historyID], e.sampleAmplitude[:e.samplesPerFrame])

	e.historyID++
	if e.historyID >= maxSpectrumHistory {
		e.historyID = 0
	}

	if e.historyID == 0 || e.receivingData {
		e.hasNewSpectrum = true

		for i := range e.sampleAmplitudeAverage {
			e.sampleAmplitudeAverage[i] = 0
		}
		for _, s := range e.sampleAmplitudeHistory {
			for i := 0; i < e.samplesPerFrame; i++ {
				e.sampleAmplitudeAverage[i] += s[i]
			}
		}
		norm := float32(1.0 / maxSpectrumHistory)
		for i := 0; i < e.samplesPerFrame; i++ {
			e.sampleAmplitudeAverage[i] *= norm
		}

		spectrum := powerSpectrumFolded(e.sampleAmplitudeAverage[:e.samplesPerFrame])
		copy(e.sampleSpectrum, spectrum)
	}

	if e.framesLeftToRecord > 0 {
		off := (e.framesToRecord - e.framesLeftToRecord) * e.samplesPerFrame
		copy(e.recordedAmplitude[off:off+e.samplesPerFrame], e.sampleAmplitude[:e.samplesPerFrame])

		e.framesLeftToRecord--
		if e.framesLeftToRecord <= 0 {
			e.analyzingData = true
		}
	}

	if e.analyzingData {
		e.log.Infof("analyzing captured data")
		e.analyze()
	}

	if !e.receivingData {
		e.detectStartMarker()
	} else {
		e.detectEndMarker()
	}
}

func (e *Engine) analyze() {
	stepLen := e.samplesPerFrame / stepsPerFrame

	isValid := false
	for protoID, rxProtocol := range e.protocols {
		if !rxProtocol.Enabled || rxProtocol.FreqStart != e.markerFreqStart {
			continue
		}

		for i := range e.sampleSpectrum {
			e.sampleSpectrum[i] = 0
		}

		e.framesToAnalyze = e.nMarkerFrames * stepsPerFrame
		e.framesLeftToAnalyze = e.framesToAnalyze

		for ii := e.nMarkerFrames*stepsPerFrame - 1; ii >= 0; ii-- {
			knownLength := false
			decodedLength := 0
			offsetStart := ii

			for itx := 0; itx < 1024; itx++ {
				offsetTx := offsetStart + itx*rxProtocol.FramesPerTx*stepsPerFrame
				if offsetTx >= e.recvDurationFrames*stepsPerFrame || (itx+1)*rxProtocol.BytesPerTx >= len(e.txDataEncoded) {
					break
				}

				fftIn := make([]float32, e.samplesPerFrame)
				base := offsetTx * stepLen
				if base+e.samplesPerFrame > len(e.recordedAmplitude) {
					break
				}
				copy(fftIn, e.recordedAmplitude[base:base+e.samplesPerFrame])

				for k := 1; k < rxProtocol.FramesPerTx; k++ {
					kb := (offsetTx + k*stepsPerFrame) * stepLen
					if kb+e.samplesPerFrame > len(e.recordedAmplitude) {
						break
					}
					for i := 0; i < e.samplesPerFrame; i++ {
						fftIn[i] += e.recordedAmplitude[kb+i]
					}
				}

				spectrum := powerSpectrumFolded(fftIn)

				var curByte byte
				for i := 0; i < 2*rxProtocol.BytesPerTx; i++ {
					freq := e.hzPerSample * float64(rxProtocol.FreqStart)
					bin := roundInt(freq*e.ihzPerSample) + 16*i

					kmax, amax := 0, float32(0)
					for k := 0; k < 16; k++ {
						if bin+k < len(spectrum) && spectrum[bin+k] > amax {
							kmax = k
							amax = spectrum[bin+k]
						}
					}

					if i%2 == 1 {
						curByte += byte(kmax << 4)
						e.txDataEncoded[itx*rxProtocol.BytesPerTx+i/2] = curByte
						curByte = 0
					} else {
						curByte = byte(kmax)
					}
				}

				if itx*rxProtocol.BytesPerTx > e.encodedDataOffset && !knownLength {
					rsLength := newReedSolomon(1, e.encodedDataOffset-1)
					payload, ok := rsLength.decode(e.txDataEncoded[:e.encodedDataOffset])
					if ok && payload[0] > 0 && int(payload[0]) <= MaxLengthVariable {
						knownLength = true
						decodedLength = int(payload[0])
						e.rxData[0] = payload[0]

						nTotalBytesExpected := e.encodedDataOffset + decodedLength + eccBytes(decodedLength)
						nTotalFramesExpected := 2*e.nMarkerFrames + ((nTotalBytesExpected+rxProtocol.BytesPerTx-1)/rxProtocol.BytesPerTx)*rxProtocol.FramesPerTx
						if e.recvDurationFrames > nTotalFramesExpected || e.recvDurationFrames < nTotalFramesExpected-2*e.nMarkerFrames {
							knownLength = false
							break
						}
					} else {
						break
					}
				}

				if knownLength {
					nTotalBytesExpected := e.encodedDataOffset + decodedLength + eccBytes(decodedLength)
					if itx*rxProtocol.BytesPerTx > nTotalBytesExpected+1 {
						break
					}
				}
			}

			if knownLength {
				nECC := eccBytes(decodedLength)
				rsData := newReedSolomon(decodedLength, nECC)
				codeword := e.txDataEncoded[e.encodedDataOffset : e.encodedDataOffset+decodedLength+nECC]
				payload, ok := rsData.decode(codeword)
				if ok && payload[0] != 0 {
					e.log.Infof("decoded length=%d protocol=%s(%d)", decodedLength, rxProtocol.Name, protoID)
					copy(e.rxData, payload)

					isValid = true
					e.hasNewRxData = true
					e.lastRxDataLength = decodedLength
					e.rxProtocol = rxProtocol
					e.rxProtocolID = protoID
				}
			}

			if isValid {
				break
			}
			e.framesLeftToAnalyze--
		}

		if isValid {
			break
		}
	}

	e.framesToRecord = 0
	if !isValid {
		e.log.Errorf("failed to capture sound data")
		e.lastRxDataLength = -1
		e.framesToRecord = -1
	}

	e.receivingData = false
	e.analyzingData = false

	for i := range e.sampleSpectrum {
		e.sampleSpectrum[i] = 0
	}
	e.framesToAnalyze = 0
	e.framesLeftToAnalyze = 0
}

func (e *Engine) detectStartMarker() {
	isReceiving := false

	for _, rxProtocol := range e.protocols {
		if !rxProtocol.Enabled {
			continue
		}
		if e.markerDetected(rxProtocol, false) {
			e.markerFreqStart = rxProtocol.FreqStart
			isReceiving = true
			break
		}
	}

	if isReceiving {
		e.nMarkersSuccess++
	} else {
		e.nMarkersSuccess = 0
	}

	if isReceiving {
		e.log.Infof("receiving sound data")
		e.receivingData = true
		for i := range e.rxData {
			e.rxData[i] = 0
		}

		e.recvDurationFrames = 2*e.nMarkerFrames + maxFramesPerTx(e.protocols)*((MaxLengthVariable+eccBytes(MaxLengthVariable))/minBytesPerTx(e.protocols)+1)

		e.nMarkersSuccess = 0
		e.framesToRecord = e.recvDurationFrames
		e.framesLeftToRecord = e.recvDurationFrames
	}
}

func (e *Engine) detectEndMarker() {
	isEnded := false

	for _, rxProtocol := range e.protocols {
		if !rxProtocol.Enabled {
			continue
		}
		if e.markerDetected(rxProtocol, true) {
			isEnded = true
			break
		}
	}

	if isEnded {
		e.nMarkersSuccess++
	} else {
		e.nMarkersSuccess = 0
	}

	if isEnded && e.framesToRecord > 1 {
		e.recvDurationFrames -= e.framesLeftToRecord - 1
		e.log.Infof("received end marker, frames left=%d recorded=%d", e.framesLeftToRecord, e.recvDurationFrames)
		e.nMarkersSuccess = 0
		e.framesLeftToRecord = 1
	}
}

// markerDetected checks the 16 marker bins for protocol p. end selects
// the bit-inverted (end-marker) pattern instead of the start pattern.
func (e *Engine) markerDetected(p Protocol, end bool) bool {
	nDetected := nBitsInMarker
	for i := 0; i < nBitsInMarker; i++ {
		freq := bitFreq(e.hzPerSample, p, i)
		bin := roundInt(freq * e.ihzPerSample)
		if bin+e.freqDeltaBin >= len(e.sampleSpectrum) {
			return false
		}

		evenWantsHigh := i%2 == 0
		if end {
			evenWantsHigh = !evenWantsHigh
		}

		if evenWantsHigh {
			if e.sampleSpectrum[bin] <= float32(e.soundMarkerThreshold)*e.sampleSpectrum[bin+e.freqDeltaBin] {
				nDetected--
			}
		} else {
			if e.sampleSpectrum[bin] >= float32(e.soundMarkerThreshold)*e.sampleSpectrum[bin+e.freqDeltaBin] {
				nDetected--
			}
		}
	}
	return nDetected == nBitsInMarker
}

func roundInt(x float64) int {
	if x < 0 {
		return int(x - 0.5)
	}
	return int(x + 0.5)
}
