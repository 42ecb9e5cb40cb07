package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_defaultProtocolTable_stableIDs(t *testing.T) {
	table := defaultProtocolTable()

	assert.Equal(t, freqStartAudible, table[ProtocolAudibleNormal].FreqStart)
	assert.Equal(t, freqStartAudible, table[ProtocolAudibleFast].FreqStart)
	assert.Equal(t, freqStartAudible, table[ProtocolAudibleFastest].FreqStart)

	assert.Equal(t, freqStartUltrasnd, table[ProtocolUltrasoundNorm].FreqStart)
	assert.Equal(t, freqStartUltrasnd, table[ProtocolUltrasoundFast].FreqStart)
	assert.Equal(t, freqStartUltrasnd, table[ProtocolUltrasoundFstst].FreqStart)

	assert.Equal(t, freqStartDualTone, table[ProtocolDualToneNormal].FreqStart)
	assert.Equal(t, 2, table[ProtocolDualToneNormal].Extra)
	assert.Equal(t, 2, table[ProtocolDualToneFast].Extra)
	assert.Equal(t, 2, table[ProtocolDualToneFastest].Extra)

	for i := 0; i < numCustomProtocols; i++ {
		assert.False(t, table[protocolCustomBase+i].Enabled)
	}
}

func Test_maxFramesPerTx_minBytesPerTx(t *testing.T) {
	table := defaultProtocolTable()
	assert.Equal(t, 9, maxFramesPerTx(table))
	assert.Equal(t, 3, minBytesPerTx(table))
}
