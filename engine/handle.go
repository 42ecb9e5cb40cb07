package engine

// Handle is an opaque reference to a live Engine, replacing the
// process-wide integer-to-pointer registry that the original C API
// used. A Handle owns no goroutines; all methods run synchronously on
// the caller.
type Handle struct {
	engine *Engine
}

// NewHandle constructs an Engine behind a Handle.
func NewHandle(p Parameters) (*Handle, error) {
	e, err := New(p)
	if err != nil {
		return nil, err
	}
	return &Handle{engine: e}, nil
}

// Free releases the handle's reference to its engine. Present for
// parity with the facade's free(handle) operation; Go's GC reclaims
// the Engine once the Handle is unreachable.
func (h *Handle) Free() {
	h.engine = nil
}

func (h *Handle) Init(payload []byte, protocolID int, volume int) error {
	if protocolID < 0 || protocolID >= len(h.engine.protocols) {
		return ErrInvalidArgument
	}
	return h.engine.Init(payload, h.engine.protocols[protocolID], volume)
}

func (h *Handle) Encode(cb OutputCallback) error {
	return h.engine.Encode(cb)
}

func (h *Handle) EncodeSizeSamples() int {
	return h.engine.EncodeSizeSamples()
}

func (h *Handle) EncodeSizeBytes() int {
	return h.engine.EncodeSizeBytes()
}

func (h *Handle) Decode(cb InputCallback) error {
	return h.engine.Decode(cb)
}

func (h *Handle) TakeRxData() ([]byte, int, error) {
	return h.engine.TakeRxData()
}

func (h *Handle) TakeRxSpectrum() ([]float32, bool) {
	return h.engine.TakeRxSpectrum()
}

func (h *Handle) TakeRxAmplitude() ([]float32, bool) {
	return h.engine.TakeRxAmplitude()
}

func (h *Handle) ToggleRxProtocol(id int, enabled bool) {
	h.engine.ToggleRxProtocol(id, enabled)
}

func (h *Handle) StopReceiving() bool {
	return h.engine.StopReceiving()
}

func (h *Handle) HasTxData() bool {
	return h.engine.HasTxData()
}

func (h *Handle) ToneList() [][]Tone {
	return h.engine.ToneList()
}
