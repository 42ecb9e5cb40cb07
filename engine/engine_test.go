package engine

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func mustEngine(t *testing.T, params Parameters) *Engine {
	t.Helper()
	e, err := New(params)
	require.NoError(t, err)
	return e
}

func encodeAll(t *testing.T, e *Engine) []byte {
	t.Helper()
	var out []byte
	err := e.Encode(func(data []byte) {
		out = append(out, data...)
	})
	require.NoError(t, err)
	return out
}

func decodeAll(t *testing.T, e *Engine, buf []byte) {
	t.Helper()
	offset := 0
	err := e.Decode(func(dst []byte) int {
		n := copy(dst, buf[offset:])
		offset += n
		return n
	})
	require.NoError(t, err)
}

func Test_roundTrip_variableLength_i16(t *testing.T) {
	params := DefaultParameters()
	params.SampleFormatIn = SampleFormatI16
	params.SampleFormatOut = SampleFormatI16

	tx := mustEngine(t, params)
	require.NoError(t, tx.Init([]byte("test"), tx.protocols[ProtocolAudibleFast], 50))
	buf := encodeAll(t, tx)
	require.NotEmpty(t, buf)

	rx := mustEngine(t, params)
	decodeAll(t, rx, buf)

	payload, n, err := rx.TakeRxData()
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, []byte("test"), payload)
}

func Test_roundTrip_variableLength_f32(t *testing.T) {
	params := DefaultParameters()

	tx := mustEngine(t, params)
	require.NoError(t, tx.Init([]byte("hello"), tx.protocols[ProtocolAudibleNormal], 25))
	buf := encodeAll(t, tx)

	rx := mustEngine(t, params)
	decodeAll(t, rx, buf)

	payload, n, err := rx.TakeRxData()
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, []byte("hello"), payload)
}

func Test_roundTrip_fixedLength(t *testing.T) {
	params := DefaultParameters()
	params.PayloadLength = 16
	params.SampleFormatIn = SampleFormatI16
	params.SampleFormatOut = SampleFormatI16

	tx := mustEngine(t, params)
	require.NoError(t, tx.Init([]byte("0123456789abcdef"), tx.protocols[ProtocolDualToneFast], 50))
	buf := encodeAll(t, tx)

	rx := mustEngine(t, params)
	decodeAll(t, rx, buf)

	payload, n, err := rx.TakeRxData()
	require.NoError(t, err)
	require.Equal(t, 16, n)
	require.Equal(t, []byte("0123456789abcdef"), payload)
}

func Test_emptyPayload_producesNoSamples(t *testing.T) {
	tx := mustEngine(t, DefaultParameters())
	require.NoError(t, tx.Init(nil, tx.protocols[ProtocolAudibleFast], 50))
	require.False(t, tx.HasTxData())
	require.Equal(t, 0, tx.EncodeSizeSamples())
}

func Test_fixedLength_rejectsOversizePayload(t *testing.T) {
	params := DefaultParameters()
	params.PayloadLength = 65
	_, err := New(params)
	require.Error(t, err)
}

func Test_init_rejectsInvalidVolume(t *testing.T) {
	tx := mustEngine(t, DefaultParameters())
	require.Error(t, tx.Init([]byte("x"), tx.protocols[ProtocolAudibleFast], -1))
	require.Error(t, tx.Init([]byte("x"), tx.protocols[ProtocolAudibleFast], 101))
	require.NoError(t, tx.Init([]byte("x"), tx.protocols[ProtocolAudibleFast], 0))
	require.NoError(t, tx.Init([]byte("x"), tx.protocols[ProtocolAudibleFast], 100))
}

func Test_mode_rejectsNeitherTxNorRx(t *testing.T) {
	params := DefaultParameters()
	params.Mode = ModeDSS
	_, err := New(params)
	require.Error(t, err)
}

func Test_mode_rxOnlyRejectsTransmit(t *testing.T) {
	params := DefaultParameters()
	params.Mode = ModeRx
	tx := mustEngine(t, params)
	err := tx.Init([]byte("x"), tx.protocols[ProtocolAudibleFast], 50)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func Test_mode_txOnlyRejectsReceive(t *testing.T) {
	params := DefaultParameters()
	params.Mode = ModeTx
	rx := mustEngine(t, params)
	err := rx.Decode(func(dst []byte) int { return 0 })
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func Test_dualTone_requiresFixedLength(t *testing.T) {
	tx := mustEngine(t, DefaultParameters())
	err := tx.Init([]byte("x"), tx.protocols[ProtocolDualToneFast], 50)
	require.ErrorIs(t, err, ErrFixedLengthRequired)
}

// Test_roundTrip_property_variableLength is the property required by
// spec.md §8: decode(encode(payload)) == payload for all L in
// [1, min(maxLen, 140)] and every enabled variable-length protocol.
func Test_roundTrip_property_variableLength(t *testing.T) {
	variableLengthProtocols := []int{
		ProtocolAudibleNormal, ProtocolAudibleFast, ProtocolAudibleFastest,
		ProtocolUltrasoundNorm, ProtocolUltrasoundFast, ProtocolUltrasoundFstst,
	}

	rapid.Check(t, func(rt *rapid.T) {
		protocolID := rapid.SampledFrom(variableLengthProtocols).Draw(rt, "protocolID")
		length := rapid.IntRange(1, MaxLengthVariable).Draw(rt, "length")
		payload := rapid.SliceOfN(rapid.Byte(), length, length).Draw(rt, "payload")
		volume := rapid.IntRange(0, 100).Draw(rt, "volume")

		params := DefaultParameters()
		tx := mustEngine(t, params)
		require.NoError(rt, tx.Init(payload, tx.protocols[protocolID], volume))
		buf := encodeAll(t, tx)

		rx := mustEngine(t, params)
		decodeAll(t, rx, buf)

		got, n, err := rx.TakeRxData()
		require.NoError(rt, err)
		require.Equal(rt, length, n)
		require.True(rt, bytes.Equal(payload, got))
	})
}

func Test_roundTrip_ultrasoundFastest(t *testing.T) {
	params := DefaultParameters()
	params.SampleFormatIn = SampleFormatI16
	params.SampleFormatOut = SampleFormatI16

	tx := mustEngine(t, params)
	require.NoError(t, tx.Init([]byte("test"), tx.protocols[ProtocolUltrasoundFstst], 50))
	buf := encodeAll(t, tx)

	rx := mustEngine(t, params)
	decodeAll(t, rx, buf)

	payload, n, err := rx.TakeRxData()
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, []byte("test"), payload)
}

func Test_roundTrip_silencePadded(t *testing.T) {
	tx := mustEngine(t, DefaultParameters())
	require.NoError(t, tx.Init([]byte("abc"), tx.protocols[ProtocolAudibleFast], 50))
	buf := encodeAll(t, tx)

	silence := make([]byte, 4800*4) // 100ms of f32 silence at 48kHz
	padded := append(append(append([]byte{}, silence...), buf...), silence...)

	rx := mustEngine(t, DefaultParameters())
	decodeAll(t, rx, padded)

	payload, n, err := rx.TakeRxData()
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []byte("abc"), payload)
}

func Test_roundTrip_nonBaseSampleRate(t *testing.T) {
	params := DefaultParameters()
	params.SampleRateOut = 24000
	params.SampleRateIn = 24000

	tx := mustEngine(t, params)
	require.NoError(t, tx.Init([]byte("abc"), tx.protocols[ProtocolAudibleFast], 50))
	buf := encodeAll(t, tx)

	rx := mustEngine(t, params)
	decodeAll(t, rx, buf)

	payload, n, err := rx.TakeRxData()
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []byte("abc"), payload)
}

func Test_boundary_maxVariableLength(t *testing.T) {
	payload := bytes.Repeat([]byte{0xa5}, MaxLengthVariable)

	tx := mustEngine(t, DefaultParameters())
	require.NoError(t, tx.Init(payload, tx.protocols[ProtocolAudibleFast], 50))
	buf := encodeAll(t, tx)
	require.NotEmpty(t, buf)

	rx := mustEngine(t, DefaultParameters())
	decodeAll(t, rx, buf)

	got, n, err := rx.TakeRxData()
	require.NoError(t, err)
	require.Equal(t, MaxLengthVariable, n)
	require.Equal(t, payload, got)
}

func Test_boundary_sampleRateLimits(t *testing.T) {
	for _, rate := range []float64{sampleRateMin, sampleRateMax} {
		params := DefaultParameters()
		params.SampleRateOut = rate
		params.SampleRateIn = rate

		tx := mustEngine(t, params)
		require.NoError(t, tx.Init([]byte("hi"), tx.protocols[ProtocolAudibleFast], 50))
		buf := encodeAll(t, tx)

		rx := mustEngine(t, params)
		decodeAll(t, rx, buf)

		payload, n, err := rx.TakeRxData()
		require.NoError(t, err, "rate=%v", rate)
		assert.Equal(t, 2, n, "rate=%v", rate)
		assert.Equal(t, []byte("hi"), payload, "rate=%v", rate)
	}
}
