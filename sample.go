package pipemod

import (
	"encoding/binary"
	"math"
)

// DecodeSample reads one little-endian sample of type t from b and returns
// it scaled to [-1, 1).
func DecodeSample(b []byte, t SampleType) float64 {
	switch t {
	case SampleTypeU8:
		return (float64(b[0]) - 128) / 128
	case SampleTypeS16:
		return float64(int16(binary.LittleEndian.Uint16(b))) / (1 << 15)
	case SampleTypeS24:
		v := int32(uint32(b[0])<<8|uint32(b[1])<<16|uint32(b[2])<<24) >> 8
		return float64(v) / (1 << 23)
	case SampleTypeS32:
		return float64(int32(binary.LittleEndian.Uint32(b))) / (1 << 31)
	case SampleTypeFloat:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	default:
		return 0
	}
}

func quantize(v float64, scale float64) int64 {
	q := math.Round(v * scale)
	if q > scale-1 {
		q = scale - 1
	}
	if q < -scale {
		q = -scale
	}
	return int64(q)
}

// EncodeSample writes v, scaled to [-1, 1), as one little-endian sample of
// type t into b. Integer formats saturate.
func EncodeSample(b []byte, t SampleType, v float64) {
	switch t {
	case SampleTypeU8:
		b[0] = byte(quantize(v, 1<<7) + 128)
	case SampleTypeS16:
		binary.LittleEndian.PutUint16(b, uint16(quantize(v, 1<<15)))
	case SampleTypeS24:
		q := quantize(v, 1<<23)
		b[0], b[1], b[2] = byte(q), byte(q>>8), byte(q>>16)
	case SampleTypeS32:
		binary.LittleEndian.PutUint32(b, uint32(quantize(v, 1<<31)))
	case SampleTypeFloat:
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
	}
}

// Silence fills b with the zero level of sample type t.
func Silence(b []byte, t SampleType) {
	fill := byte(0)
	if t == SampleTypeU8 {
		fill = 0x80
	}
	for i := range b {
		b[i] = fill
	}
}
