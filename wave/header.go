// Package wave builds and parses RIFF/WAVE headers.
//
// Two layouts are produced: the 44 byte WAVEFORMATEX header and the 80 byte
// WAVEFORMATEXTENSIBLE header carrying a fact chunk, a speaker mask and a
// sub-format GUID. All sizes in the headers are 32 bit. Counts that do not
// fit are clamped to math.MaxUint32 and a warning is logged.
//
// See http://www-mmsp.ece.mcgill.ca/documents/audioformats/wave/wave.html
package wave

import (
	"encoding/binary"
	"math"
	"math/bits"

	"github.com/pion/logging"
)

type Format uint16

const (
	FormatPCM        Format = 0x0001
	FormatIEEEFloat  Format = 0x0003
	FormatExtensible Format = 0xFFFE
)

func (f Format) String() string {
	switch f {
	case FormatPCM:
		return "PCM"
	case FormatIEEEFloat:
		return "IEEE float"
	case FormatExtensible:
		return "extensible"
	default:
		return "unknown"
	}
}

const (
	HeaderSize           = 44
	ExtensibleHeaderSize = 80

	chunkHeaderSize = 8
)

// subFormatTail is the common tail of the KSDATAFORMAT_SUBTYPE GUIDs.
var subFormatTail = [8]byte{0x80, 0x00, 0x00, 0xaa, 0x00, 0x38, 0x9b, 0x71}

// Args describes the audio stream a header is built for.
type Args struct {
	Format     Format
	Channels   int
	SampleRate int
	// ByteDepth is the number of bytes of one sample of one channel.
	ByteDepth int
	// Samples is the number of sample frames (samples per channel).
	Samples uint64
	// ChannelMask overrides the default speaker positions when non-zero.
	// Only used by the extensible header.
	ChannelMask uint32
}

type sizes struct {
	riff     uint32
	data     uint32
	fact     uint32
	byteRate uint32
}

func clamp32(v uint64) (uint32, bool) {
	if v > math.MaxUint32 {
		return math.MaxUint32, true
	}
	return uint32(v), false
}

func computeSizes(a Args, headerSize int, log logging.LeveledLogger) sizes {
	var s sizes
	var over bool

	if s.fact, over = clamp32(a.Samples); over && log != nil {
		log.Warn("audio sample number over 32bit limit")
	}

	frameBytes := uint64(a.Channels) * uint64(a.ByteDepth)
	hi, data := bits.Mul64(a.Samples, frameBytes)
	riff := data + uint64(headerSize-chunkHeaderSize)
	if hi != 0 || riff < data || riff > math.MaxUint32 {
		if log != nil {
			log.Warn("audio size over 32bit limit (4GB), clients may truncate audio")
		}
		s.data, s.riff = math.MaxUint32, math.MaxUint32
	} else {
		s.data, s.riff = uint32(data), uint32(riff)
	}

	s.byteRate, _ = clamp32(frameBytes * uint64(a.SampleRate))
	return s
}

type chunkWriter struct {
	b   []byte
	off int
}

func (w *chunkWriter) fourCC(id string) {
	copy(w.b[w.off:w.off+4], id)
	w.off += 4
}

func (w *chunkWriter) u16(v uint16) {
	binary.LittleEndian.PutUint16(w.b[w.off:], v)
	w.off += 2
}

func (w *chunkWriter) u32(v uint32) {
	binary.LittleEndian.PutUint32(w.b[w.off:], v)
	w.off += 4
}

func (w *chunkWriter) formatChunk(tag Format, a Args, s sizes, size uint32) {
	w.fourCC("fmt ")
	w.u32(size)
	w.u16(uint16(tag))
	w.u16(uint16(a.Channels))
	w.u32(uint32(a.SampleRate))
	w.u32(s.byteRate)
	w.u16(uint16(a.Channels * a.ByteDepth))
	w.u16(uint16(a.ByteDepth * 8))
}

// Header returns a WAVEFORMATEX header. Strictly this layout is only valid
// for 8 and 16 bit PCM; it is produced for any depth because many readers
// accept it. log may be nil.
func Header(a Args, log logging.LeveledLogger) []byte {
	s := computeSizes(a, HeaderSize, log)
	w := &chunkWriter{b: make([]byte, HeaderSize)}

	w.fourCC("RIFF")
	w.u32(s.riff)
	w.fourCC("WAVE")

	w.formatChunk(a.Format, a, s, 16)

	w.fourCC("data")
	w.u32(s.data)
	return w.b
}

// ExtensibleHeader returns a WAVEFORMATEXTENSIBLE header. log may be nil.
func ExtensibleHeader(a Args, log logging.LeveledLogger) []byte {
	s := computeSizes(a, ExtensibleHeaderSize, log)
	w := &chunkWriter{b: make([]byte, ExtensibleHeaderSize)}

	w.fourCC("RIFF")
	w.u32(s.riff)
	w.fourCC("WAVE")

	w.formatChunk(FormatExtensible, a, s, 40)
	w.u16(22)
	w.u16(uint16(a.ByteDepth * 8))
	mask := a.ChannelMask
	if mask == 0 {
		mask = ChannelMask(a.Channels)
	}
	w.u32(mask)
	w.u32(uint32(a.Format))
	w.u16(0x0000)
	w.u16(0x0010)
	copy(w.b[w.off:], subFormatTail[:])
	w.off += len(subFormatTail)

	w.fourCC("fact")
	w.u32(4)
	w.u32(s.fact)

	w.fourCC("data")
	w.u32(s.data)
	return w.b
}
