package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func Test_reedSolomon_encodeDecode_noErrors(t *testing.T) {
	rs := newReedSolomon(16, 8)

	payload := make([]byte, 16)
	for i := range payload {
		payload[i] = byte(i * 7)
	}

	codeword := rs.encode(payload)
	require.Len(t, codeword, 24)

	decoded, ok := rs.decode(codeword)
	require.True(t, ok)
	assert.Equal(t, payload, decoded)
}

func Test_reedSolomon_correctsUpToHalfParity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		k := rapid.IntRange(1, 32).Draw(t, "k")
		nroots := eccBytes(k)
		if nroots%2 != 0 {
			nroots++
		}
		if k+nroots > 255 {
			t.Skip("parameters exceed field size")
		}

		rs := newReedSolomon(k, nroots)

		payload := rapid.SliceOfN(rapid.Byte(), k, k).Draw(t, "payload")
		codeword := rs.encode(payload)

		maxErrors := nroots / 2
		nErrors := rapid.IntRange(0, maxErrors).Draw(t, "nErrors")

		corrupted := append([]byte(nil), codeword...)
		used := map[int]bool{}
		for i := 0; i < nErrors; i++ {
			pos := rapid.IntRange(0, len(corrupted)-1).Filter(func(p int) bool { return !used[p] }).Draw(t, "pos")
			used[pos] = true
			delta := rapid.IntRange(1, 255).Draw(t, "delta")
			corrupted[pos] ^= byte(delta)
		}

		decoded, ok := rs.decode(corrupted)
		require.True(t, ok)
		assert.Equal(t, payload, decoded)
	})
}

func Test_eccBytes(t *testing.T) {
	assert.Equal(t, 2, eccBytes(1))
	assert.Equal(t, 2, eccBytes(3))
	assert.Equal(t, 4, eccBytes(4))
	assert.Equal(t, 4, eccBytes(10))
	assert.Equal(t, 6, eccBytes(16))
	assert.Equal(t, 56, eccBytes(140))
}
