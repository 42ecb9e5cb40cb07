package engine

import "fmt"

// Normative constants shared by every component.
const (
	BaseSampleRate              = 48000
	DefaultSamplesPerFrame      = 1024
	DefaultSoundMarkerThreshold = 3.0
	DefaultMarkerFrames         = 16
	DefaultEncodedDataOffset    = 3

	MaxLengthVariable = 140
	MaxLengthFixed    = 64

	maxSamplesPerFrame = 1024
	maxDataSize         = 256
	maxSpectrumHistory  = 4
	maxRecordedFrames   = 1024
	nBitsInMarker       = 16
	stepsPerFrame       = 16

	sampleRateMin = 6000.0
	sampleRateMax = 96000.0
)

// Mode is a bitmask selecting which directions of the engine a caller
// has committed to driving, plus any spreading behavior layered on top.
type Mode int

const (
	// ModeRx permits Decode to run.
	ModeRx Mode = 1 << iota
	// ModeTx permits Init to schedule a non-empty transmission.
	ModeTx
	// ModeDSS enables Direct Sequence Spread on top of Tx/Rx. Accepted
	// and threaded through Parameters, but currently a no-op on the
	// encoded waveform; see DESIGN.md.
	ModeDSS

	// ModeRxTx is the default: both directions enabled, no spreading.
	ModeRxTx = ModeRx | ModeTx
)

// Parameters is an immutable configuration snapshot passed by value at
// construction. PayloadLength -1 selects variable-length mode; any
// value in [1,64] selects fixed-length mode.
type Parameters struct {
	PayloadLength        int
	SampleRateIn         float64
	SampleRateOut        float64
	SamplesPerFrame      int
	SoundMarkerThreshold float64
	SampleFormatIn       SampleFormat
	SampleFormatOut      SampleFormat
	Mode                 Mode
	Logger               Logger
}

// DefaultParameters mirrors GGWave::getDefaultParameters: variable
// length, base sample rate both directions, default frame size, f32
// in and out.
func DefaultParameters() Parameters {
	return Parameters{
		PayloadLength:        -1,
		SampleRateIn:         BaseSampleRate,
		SampleRateOut:        BaseSampleRate,
		SamplesPerFrame:      DefaultSamplesPerFrame,
		SoundMarkerThreshold: DefaultSoundMarkerThreshold,
		SampleFormatIn:       SampleFormatF32,
		SampleFormatOut:      SampleFormatF32,
		Mode:                 ModeRxTx,
	}
}

func (p Parameters) validate() error {
	if sampleSizeBytes(p.SampleFormatIn) == 0 {
		return fmt.Errorf("%w: unsupported capture sample format", ErrInvalidParameters)
	}
	if sampleSizeBytes(p.SampleFormatOut) == 0 {
		return fmt.Errorf("%w: unsupported playback sample format", ErrInvalidParameters)
	}
	if p.SamplesPerFrame <= 0 || p.SamplesPerFrame > maxSamplesPerFrame {
		return fmt.Errorf("%w: samples per frame out of range", ErrInvalidParameters)
	}
	if p.SampleRateIn < sampleRateMin || p.SampleRateIn > sampleRateMax {
		return fmt.Errorf("%w: capture sample rate out of range", ErrInvalidParameters)
	}
	if p.SampleRateOut < sampleRateMin || p.SampleRateOut > sampleRateMax {
		return fmt.Errorf("%w: playback sample rate out of range", ErrInvalidParameters)
	}
	if p.PayloadLength > 0 && p.PayloadLength > MaxLengthFixed {
		return fmt.Errorf("%w: fixed payload length exceeds maximum", ErrInvalidParameters)
	}
	if p.Mode&(ModeRx|ModeTx) == 0 {
		return fmt.Errorf("%w: mode selects neither Tx nor Rx", ErrInvalidParameters)
	}
	return nil
}

// Engine is the stateful, single-threaded modem instance. All mutation
// happens on the calling goroutine inside Encode/Decode/Init; the
// engine never spawns goroutines or blocks on I/O internally.
type Engine struct {
	params Parameters
	log    Logger

	isFixedLength bool
	payloadLength int

	samplesPerFrame     int
	isamplesPerFrame    float64
	sampleSizeBytesIn   int
	sampleSizeBytesOut  int
	hzPerSample         float64
	ihzPerSample        float64
	freqDeltaBin        int
	freqDeltaHz         float64
	nMarkerFrames       int
	encodedDataOffset   int
	soundMarkerThreshold float64

	resampler *resampler

	protocols []Protocol

	// Tx state
	hasNewTxData   bool
	txDataLength   int
	txData         []byte
	txDataEncoded  []byte
	txProtocol     Protocol
	sendVolume     float64
	waveformTones  [][]Tone
	txAmplitudeI16 []int16

	// Rx state shared by both decoders
	samplesNeeded        int
	sampleAmplitude      []float32
	sampleSpectrum       []float32
	hasNewSpectrum       bool
	hasNewAmplitude      bool
	rxData               []byte
	hasNewRxData         bool
	lastRxDataLength     int
	rxProtocol           Protocol
	rxProtocolID         int

	// Variable-length state machine
	historyID              int
	sampleAmplitudeHistory [][]float32
	sampleAmplitudeAverage []float32
	receivingData          bool
	analyzingData          bool
	markerFreqStart        int
	nMarkersSuccess        int
	recvDurationFrames     int
	framesToRecord         int
	framesLeftToRecord     int
	framesToAnalyze        int
	framesLeftToAnalyze    int
	recordedAmplitude      []float32

	// Fixed-length state machine
	historyIDFixed      int
	spectrumHistoryFixed [][]float32
}

// New validates parameters and constructs an Engine ready to Init.
func New(p Parameters) (*Engine, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	log := p.Logger
	if log == nil {
		log = nopLogger{}
	}

	e := &Engine{
		params:              p,
		log:                 log,
		isFixedLength:       p.PayloadLength > 0,
		payloadLength:       p.PayloadLength,
		samplesPerFrame:     p.SamplesPerFrame,
		isamplesPerFrame:    1.0 / float64(p.SamplesPerFrame),
		sampleSizeBytesIn:   sampleSizeBytes(p.SampleFormatIn),
		sampleSizeBytesOut:  sampleSizeBytes(p.SampleFormatOut),
		hzPerSample:         BaseSampleRate / float64(p.SamplesPerFrame),
		freqDeltaBin:        1,
		soundMarkerThreshold: p.SoundMarkerThreshold,
		resampler:           newResampler(),
		protocols:           defaultProtocolTable(),
		samplesNeeded:       p.SamplesPerFrame,
		sampleAmplitude:     make([]float32, maxSamplesPerFrame+128),
		sampleSpectrum:      make([]float32, maxSamplesPerFrame),
		rxData:              make([]byte, maxDataSize),
		txData:              make([]byte, maxDataSize),
		txDataEncoded:       make([]byte, maxDataSize),
		sampleAmplitudeAverage: make([]float32, maxSamplesPerFrame),
	}
	e.ihzPerSample = 1.0 / e.hzPerSample
	e.freqDeltaHz = 2 * e.hzPerSample

	if e.isFixedLength {
		e.nMarkerFrames = 0
		e.encodedDataOffset = 0
		if p.PayloadLength > MaxLengthFixed {
			return nil, fmt.Errorf("%w: fixed payload length exceeds maximum", ErrInvalidParameters)
		}
		e.txDataLength = p.PayloadLength
		totalLength := e.txDataLength + eccBytes(e.txDataLength)
		totalTxs := (totalLength + minBytesPerTx(e.protocols) - 1) / minBytesPerTx(e.protocols)
		e.spectrumHistoryFixed = make([][]float32, totalTxs*maxFramesPerTx(e.protocols))
		for i := range e.spectrumHistoryFixed {
			e.spectrumHistoryFixed[i] = make([]float32, maxSamplesPerFrame)
		}
	} else {
		e.nMarkerFrames = DefaultMarkerFrames
		e.encodedDataOffset = DefaultEncodedDataOffset
		e.recordedAmplitude = make([]float32, maxRecordedFrames*maxSamplesPerFrame)
	}

	e.sampleAmplitudeHistory = make([][]float32, maxSpectrumHistory)
	for i := range e.sampleAmplitudeHistory {
		e.sampleAmplitudeHistory[i] = make([]float32, maxSamplesPerFrame)
	}

	e.rxProtocol = e.protocols[defaultTxProtocolID(e.isFixedLength)]
	e.rxProtocolID = defaultTxProtocolID(e.isFixedLength)

	if err := e.Init(nil, e.rxProtocol, 0); err != nil {
		return nil, err
	}

	return e, nil
}

// defaultTxProtocolID mirrors getDefaultTxProtocol (index 1, "Fast").
func defaultTxProtocolID(fixedLength bool) int {
	return ProtocolAudibleFast
}

// ToggleRxProtocol enables or disables a protocol by ID for receiving.
func (e *Engine) ToggleRxProtocol(id int, enabled bool) {
	if id < 0 || id >= len(e.protocols) {
		return
	}
	e.protocols[id].Enabled = enabled
}

// StopReceiving forces an immediate transition back to Idle.
func (e *Engine) StopReceiving() bool {
	if !e.receivingData {
		return false
	}
	e.receivingData = false
	e.analyzingData = false
	e.framesToRecord = 0
	e.framesLeftToRecord = 0
	return true
}

// TakeRxData returns the last decode result: (nil, 0, nil) for nothing
// new, (nil, -1, ErrDecodeFailed) for a failed decode, or the payload
// and its length on success.
func (e *Engine) TakeRxData() ([]byte, int, error) {
	if e.lastRxDataLength == 0 {
		return nil, 0, nil
	}
	n := e.lastRxDataLength
	e.lastRxDataLength = 0
	if n == -1 {
		return nil, -1, ErrDecodeFailed
	}
	out := make([]byte, n)
	copy(out, e.rxData[:n])
	return out, n, nil
}

// TakeRxSpectrum returns the most recent power spectrum snapshot, if a
// new one is available since the last call.
func (e *Engine) TakeRxSpectrum() ([]float32, bool) {
	if !e.hasNewSpectrum {
		return nil, false
	}
	e.hasNewSpectrum = false
	out := make([]float32, e.samplesPerFrame)
	copy(out, e.sampleSpectrum[:e.samplesPerFrame])
	return out, true
}

// TakeRxAmplitude returns the most recent raw amplitude frame, if a new
// one is available since the last call.
func (e *Engine) TakeRxAmplitude() ([]float32, bool) {
	if !e.hasNewAmplitude {
		return nil, false
	}
	e.hasNewAmplitude = false
	out := make([]float32, e.samplesPerFrame)
	copy(out, e.sampleAmplitude[:e.samplesPerFrame])
	return out, true
}

// HasTxData reports whether a transmission is queued or in progress.
func (e *Engine) HasTxData() bool { return e.hasNewTxData }

// ToneList returns the per-symbol list of excited tones for the most
// recently built transmission (populated by Encode), for beeper-style
// drivers and tests.
func (e *Engine) ToneList() [][]Tone { return e.waveformTones }
