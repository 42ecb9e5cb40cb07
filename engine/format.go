package engine

import (
	"encoding/binary"
	"math"
)

// SampleFormat identifies a PCM sample encoding accepted on the
// capture/playback boundary.
type SampleFormat int

const (
	SampleFormatUndefined SampleFormat = iota
	SampleFormatU8
	SampleFormatI8
	SampleFormatU16
	SampleFormatI16
	SampleFormatF32
)

// sampleSizeBytes mirrors bytesForSampleFormat in ggwave.cpp.
func sampleSizeBytes(f SampleFormat) int {
	switch f {
	case SampleFormatU8, SampleFormatI8:
		return 1
	case SampleFormatU16, SampleFormatI16:
		return 2
	case SampleFormatF32:
		return 4
	default:
		return 0
	}
}

// decodeSamplesToFloat converts raw bytes in the given format to
// float32 in [-1,1], appending to dst and returning the extended slice.
func decodeSamplesToFloat(format SampleFormat, raw []byte, dst []float32) []float32 {
	switch format {
	case SampleFormatU8:
		const scale = 1.0 / 128
		for _, b := range raw {
			dst = append(dst, float32(int16(b)-128)*scale)
		}
	case SampleFormatI8:
		const scale = 1.0 / 128
		for _, b := range raw {
			dst = append(dst, float32(int8(b))*scale)
		}
	case SampleFormatU16:
		const scale = 1.0 / 32768
		for i := 0; i+1 < len(raw); i += 2 {
			v := binary.LittleEndian.Uint16(raw[i : i+2])
			dst = append(dst, float32(int32(v)-32768)*scale)
		}
	case SampleFormatI16:
		const scale = 1.0 / 32768
		for i := 0; i+1 < len(raw); i += 2 {
			v := int16(binary.LittleEndian.Uint16(raw[i : i+2]))
			dst = append(dst, float32(v)*scale)
		}
	case SampleFormatF32:
		for i := 0; i+3 < len(raw); i += 4 {
			bits := binary.LittleEndian.Uint32(raw[i : i+4])
			dst = append(dst, math.Float32frombits(bits))
		}
	}
	return dst
}

// encodeFloatToSamples converts float32 samples in [-1,1] to the wire
// bytes for the given output format. i16 is always computed into i16Out
// as well, since the canonical transmit-amplitude path needs it
// regardless of the caller's requested output format.
func encodeFloatToSamples(format SampleFormat, src []float32, i16Out []int16) []byte {
	for i, v := range src {
		i16Out[i] = int16(32768 * v)
	}

	switch format {
	case SampleFormatI16:
		buf := make([]byte, 2*len(src))
		for i, v := range i16Out {
			binary.LittleEndian.PutUint16(buf[2*i:], uint16(v))
		}
		return buf
	case SampleFormatU8:
		buf := make([]byte, len(src))
		for i, v := range src {
			buf[i] = byte(128 * (v + 1.0))
		}
		return buf
	case SampleFormatI8:
		buf := make([]byte, len(src))
		for i, v := range src {
			buf[i] = byte(int8(128 * v))
		}
		return buf
	case SampleFormatU16:
		buf := make([]byte, 2*len(src))
		for i, v := range src {
			binary.LittleEndian.PutUint16(buf[2*i:], uint16(int32(32768*(v+1.0))))
		}
		return buf
	case SampleFormatF32:
		buf := make([]byte, 4*len(src))
		for i, v := range src {
			binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
		}
		return buf
	default:
		return nil
	}
}
