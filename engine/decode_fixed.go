package engine

// decodeFixed runs one step of the fixed-length receiver: append the
// current frame's spectrum to a circular history, then attempt a
// majority-vote tone decode for every enabled protocol. Ported from
// GGWave::decode_fixed.
func (e *Engine) decodeFixed() {
	e.hasNewSpectrum = true

	spectrum := powerSpectrumFolded(e.sampleAmplitude[:e.samplesPerFrame])
	copy(e.sampleSpectrum, spectrum)

	copy(e.spectrumHistoryFixed[e.historyIDFixed], e.sampleSpectrum[:e.samplesPerFrame])
	e.historyIDFixed++
	if e.historyIDFixed >= len(e.spectrumHistoryFixed) {
		e.historyIDFixed = 0
	}

	isValid := false
	for protoID, rxProtocol := range e.protocols {
		if !rxProtocol.Enabled {
			continue
		}

		binStart := rxProtocol.FreqStart
		const binDelta = 16

		totalLength := e.payloadLength + eccBytes(e.payloadLength)
		totalTxs := (totalLength + rxProtocol.BytesPerTx - 1) / rxProtocol.BytesPerTx

		historyStartID := e.historyIDFixed - totalTxs*rxProtocol.FramesPerTx
		if historyStartID < 0 {
			historyStartID += len(e.spectrumHistoryFixed)
		}

		nTones := 2 * rxProtocol.BytesPerTx
		detectedBins := make([]int, 2*totalLength)
		toneMax := make([][16]int, nTones)

		txDetectedTotal := 0
		txNeededTotal := 0

		for k := 0; k < totalTxs; k++ {
			for t := range toneMax {
				toneMax[t] = [16]int{}
			}

			for i := 0; i < rxProtocol.FramesPerTx; i++ {
				historyID := historyStartID + k*rxProtocol.FramesPerTx + i
				if historyID >= len(e.spectrumHistoryFixed) {
					historyID -= len(e.spectrumHistoryFixed)
				}
				spec := e.spectrumHistoryFixed[historyID]

				for j := 0; j < rxProtocol.BytesPerTx; j++ {
					f0bin, f1bin := -1, -1
					f0max, f1max := float32(0), float32(0)

					for b := 0; b < 16; b++ {
						i0 := binStart + 2*j*binDelta + b
						if i0 < len(spec) && spec[i0] >= f0max {
							f0max = spec[i0]
							f0bin = b
						}
						i1 := binStart + 2*j*binDelta + binDelta + b
						if i1 < len(spec) && spec[i1] >= f1max {
							f1max = spec[i1]
							f1bin = b
						}
					}

					if f0bin >= 0 {
						toneMax[2*j+0][f0bin]++
					}
					if f1bin >= 0 {
						toneMax[2*j+1][f1bin]++
					}
				}
			}

			txDetected := 0
			txNeeded := 0
			for j := 0; j < rxProtocol.BytesPerTx; j++ {
				if k*rxProtocol.BytesPerTx+j >= totalLength {
					break
				}
				txNeeded += 2
				for b := 0; b < 16; b++ {
					if toneMax[2*j+0][b] > rxProtocol.FramesPerTx/2 {
						detectedBins[2*(k*rxProtocol.BytesPerTx+j)+0] = b
						txDetected++
					}
					if toneMax[2*j+1][b] > rxProtocol.FramesPerTx/2 {
						detectedBins[2*(k*rxProtocol.BytesPerTx+j)+1] = b
						txDetected++
					}
				}
			}

			txDetectedTotal += txDetected
			txNeededTotal += txNeeded
		}

		if float64(txDetectedTotal) < 0.75*float64(txNeededTotal) {
			continue
		}

		for j := 0; j < totalLength; j++ {
			e.txDataEncoded[j] = byte((detectedBins[2*j+1] << 4) + detectedBins[2*j+0])
		}

		rsData := newReedSolomon(e.payloadLength, eccBytes(e.payloadLength))
		payload, ok := rsData.decode(e.txDataEncoded[:totalLength])
		if ok && payload[0] != 0 {
			e.log.Infof("received sound data successfully")

			isValid = true
			e.hasNewRxData = true
			e.lastRxDataLength = e.payloadLength
			e.rxProtocol = rxProtocol
			e.rxProtocolID = protoID
			copy(e.rxData, payload)
		}

		if isValid {
			break
		}
	}
}
