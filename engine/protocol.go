package engine

// Protocol describes one transmit/receive waveform family: how many
// frames a symbol lasts, how many payload bytes it carries, and where
// its frequency band starts. Grounded on GGWave::TxProtocol in
// original_source/include/ggwave/ggwave.h, extended with the
// dual-tone/custom protocol IDs called out in the external-interfaces
// section of the governing design doc.
type Protocol struct {
	Name        string
	FreqStart   int // first FFT bin index of this protocol's band
	FramesPerTx int
	BytesPerTx  int
	Extra       int // 1 = normal (MT/FSK-like), 2 = dual-tone, 3 = mono-tone
	Enabled     bool
}

// NDataBitsPerTx is the number of data bits carried by one symbol.
func (p Protocol) NDataBitsPerTx() int { return 8 * p.BytesPerTx }

// Stable protocol IDs, per the external-interfaces contract.
const (
	ProtocolAudibleNormal   = 0
	ProtocolAudibleFast     = 1
	ProtocolAudibleFastest  = 2
	ProtocolUltrasoundNorm  = 3
	ProtocolUltrasoundFast  = 4
	ProtocolUltrasoundFstst = 5
	ProtocolDualToneNormal  = 6
	ProtocolDualToneFast    = 7
	ProtocolDualToneFastest = 8
	protocolCustomBase      = 9 // IDs 9..18 are the 10 custom slots
	numCustomProtocols      = 10
)

const (
	freqStartAudible   = 40
	freqStartUltrasnd  = 320
	freqStartDualTone  = 24
	numBuiltinProtocls = 9
	numProtocolSlots   = numBuiltinProtocls + numCustomProtocols
)

// defaultProtocolTable builds the fixed Normal/Fast/Fastest x
// audible/ultrasound/dual-tone grid plus ten disabled custom slots that
// callers can repurpose, matching kTxProtocols's layout but widened from
// 6 to 9 built-ins to add the dual-tone family.
func defaultProtocolTable() []Protocol {
	t := make([]Protocol, numProtocolSlots)

	t[ProtocolAudibleNormal] = Protocol{Name: "Normal", FreqStart: freqStartAudible, FramesPerTx: 9, BytesPerTx: 3, Extra: 1, Enabled: true}
	t[ProtocolAudibleFast] = Protocol{Name: "Fast", FreqStart: freqStartAudible, FramesPerTx: 6, BytesPerTx: 3, Extra: 1, Enabled: true}
	t[ProtocolAudibleFastest] = Protocol{Name: "Fastest", FreqStart: freqStartAudible, FramesPerTx: 3, BytesPerTx: 3, Extra: 1, Enabled: true}

	t[ProtocolUltrasoundNorm] = Protocol{Name: "[U] Normal", FreqStart: freqStartUltrasnd, FramesPerTx: 9, BytesPerTx: 3, Extra: 1, Enabled: true}
	t[ProtocolUltrasoundFast] = Protocol{Name: "[U] Fast", FreqStart: freqStartUltrasnd, FramesPerTx: 6, BytesPerTx: 3, Extra: 1, Enabled: true}
	t[ProtocolUltrasoundFstst] = Protocol{Name: "[U] Fastest", FreqStart: freqStartUltrasnd, FramesPerTx: 3, BytesPerTx: 3, Extra: 1, Enabled: true}

	t[ProtocolDualToneNormal] = Protocol{Name: "[DT] Normal", FreqStart: freqStartDualTone, FramesPerTx: 9, BytesPerTx: 3, Extra: 2, Enabled: true}
	t[ProtocolDualToneFast] = Protocol{Name: "[DT] Fast", FreqStart: freqStartDualTone, FramesPerTx: 6, BytesPerTx: 3, Extra: 2, Enabled: true}
	t[ProtocolDualToneFastest] = Protocol{Name: "[DT] Fastest", FreqStart: freqStartDualTone, FramesPerTx: 3, BytesPerTx: 3, Extra: 2, Enabled: true}

	for i := 0; i < numCustomProtocols; i++ {
		t[protocolCustomBase+i] = Protocol{Name: "Custom", Enabled: false}
	}

	return t
}

// maxFramesPerTx returns the largest framesPerTx among enabled
// protocols, used to size history buffers and record-duration budgets.
func maxFramesPerTx(protocols []Protocol) int {
	max := 0
	for _, p := range protocols {
		if p.Enabled && p.FramesPerTx > max {
			max = p.FramesPerTx
		}
	}
	return max
}

// minBytesPerTx returns the smallest bytesPerTx among enabled
// protocols, used when sizing the maximum variable-length record
// duration (a conservative lower bound on how fast a candidate
// transmission could finish).
func minBytesPerTx(protocols []Protocol) int {
	min := 0
	for _, p := range protocols {
		if !p.Enabled {
			continue
		}
		if min == 0 || p.BytesPerTx < min {
			min = p.BytesPerTx
		}
	}
	return min
}
