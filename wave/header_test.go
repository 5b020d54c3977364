package wave

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type warnRecorder struct {
	warnings []string
}

func (l *warnRecorder) Trace(string)          {}
func (l *warnRecorder) Tracef(string, ...any) {}
func (l *warnRecorder) Debug(string)          {}
func (l *warnRecorder) Debugf(string, ...any) {}
func (l *warnRecorder) Info(string)           {}
func (l *warnRecorder) Infof(string, ...any)  {}
func (l *warnRecorder) Warn(msg string)       { l.warnings = append(l.warnings, msg) }
func (l *warnRecorder) Warnf(format string, args ...any) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}
func (l *warnRecorder) Error(string)          {}
func (l *warnRecorder) Errorf(string, ...any) {}

func u16(b []byte, off int) uint16 { return binary.LittleEndian.Uint16(b[off:]) }
func u32(b []byte, off int) uint32 { return binary.LittleEndian.Uint32(b[off:]) }

func TestHeaderMono16(t *testing.T) {
	log := &warnRecorder{}
	h := Header(Args{
		Format:     FormatPCM,
		Channels:   1,
		SampleRate: 48000,
		ByteDepth:  2,
		Samples:    96000,
	}, log)

	require.Len(t, h, HeaderSize)
	assert.Equal(t, "RIFF", string(h[0:4]))
	assert.Equal(t, uint32(192000+36), u32(h, 4))
	assert.Equal(t, "WAVE", string(h[8:12]))
	assert.Equal(t, "fmt ", string(h[12:16]))
	assert.Equal(t, uint32(16), u32(h, 16))
	assert.Equal(t, uint16(FormatPCM), u16(h, 20))
	assert.Equal(t, uint16(1), u16(h, 22))
	assert.Equal(t, uint32(48000), u32(h, 24))
	assert.Equal(t, uint32(96000), u32(h, 28))
	assert.Equal(t, uint16(2), u16(h, 32))
	assert.Equal(t, uint16(16), u16(h, 34))
	assert.Equal(t, "data", string(h[36:40]))
	assert.Equal(t, uint32(192000), u32(h, 40))
	assert.Empty(t, log.warnings)
}

func TestExtensibleHeaderLayout(t *testing.T) {
	h := ExtensibleHeader(Args{
		Format:     FormatIEEEFloat,
		Channels:   8,
		SampleRate: 48000,
		ByteDepth:  4,
		Samples:    1000,
	}, nil)

	require.Len(t, h, ExtensibleHeaderSize)
	data := uint32(1000 * 8 * 4)
	assert.Equal(t, data+72, u32(h, 4))
	assert.Equal(t, uint32(40), u32(h, 16))
	assert.Equal(t, uint16(FormatExtensible), u16(h, 20))
	assert.Equal(t, uint16(8), u16(h, 22))
	assert.Equal(t, uint32(48000*8*4), u32(h, 28))
	assert.Equal(t, uint16(32), u16(h, 32))
	assert.Equal(t, uint16(32), u16(h, 34))
	assert.Equal(t, uint16(22), u16(h, 36))
	assert.Equal(t, uint16(32), u16(h, 38))

	mask := FrontLeft | FrontRight | FrontCenter | LowFrequency | BackLeft | BackRight | FrontLeftOfCenter | FrontRightOfCenter
	assert.Equal(t, uint32(mask), u32(h, 40))
	assert.Equal(t, uint32(0xFF), u32(h, 40))

	assert.Equal(t, uint32(FormatIEEEFloat), u32(h, 44))
	assert.Equal(t, uint16(0), u16(h, 48))
	assert.Equal(t, uint16(0x0010), u16(h, 50))
	assert.Equal(t, subFormatTail[:], h[52:60])

	assert.Equal(t, "fact", string(h[60:64]))
	assert.Equal(t, uint32(4), u32(h, 64))
	assert.Equal(t, uint32(1000), u32(h, 68))
	assert.Equal(t, "data", string(h[72:76]))
	assert.Equal(t, data, u32(h, 76))
}

func TestExtensibleHeaderChannelMaskOverride(t *testing.T) {
	h := ExtensibleHeader(Args{
		Format:      FormatPCM,
		Channels:    2,
		SampleRate:  44100,
		ByteDepth:   3,
		ChannelMask: uint32(SideLeft | SideRight),
	}, nil)
	assert.Equal(t, uint32(SideLeft|SideRight), u32(h, 40))
}

func TestHeaderDeterministic(t *testing.T) {
	a := Args{Format: FormatPCM, Channels: 6, SampleRate: 44100, ByteDepth: 3, Samples: 123457}
	assert.True(t, bytes.Equal(Header(a, nil), Header(a, nil)))
	assert.True(t, bytes.Equal(ExtensibleHeader(a, nil), ExtensibleHeader(a, nil)))
}

func TestHeaderOverflowClamps(t *testing.T) {
	log := &warnRecorder{}
	a := Args{Format: FormatPCM, Channels: 8, SampleRate: 192000, ByteDepth: 4, Samples: 1 << 28}

	h := Header(a, log)
	assert.Equal(t, uint32(math.MaxUint32), u32(h, 4))
	assert.Equal(t, uint32(math.MaxUint32), u32(h, 40))
	assert.Len(t, log.warnings, 1)

	log.warnings = nil
	h = ExtensibleHeader(a, log)
	assert.Equal(t, uint32(math.MaxUint32), u32(h, 4))
	assert.Equal(t, uint32(1<<28), u32(h, 68))
	assert.Equal(t, uint32(math.MaxUint32), u32(h, 76))
	assert.Len(t, log.warnings, 1)
}

func TestHeaderSampleCountOverflow(t *testing.T) {
	log := &warnRecorder{}
	a := Args{Format: FormatPCM, Channels: 1, SampleRate: 48000, ByteDepth: 1, Samples: math.MaxUint32 + 10}
	h := ExtensibleHeader(a, log)
	assert.Equal(t, uint32(math.MaxUint32), u32(h, 68))
	assert.Equal(t, uint32(math.MaxUint32), u32(h, 76))
	assert.Len(t, log.warnings, 2)

	// the product must not wrap around 64 bits either
	a = Args{Format: FormatPCM, Channels: 8, SampleRate: 48000, ByteDepth: 4, Samples: math.MaxUint64 / 4}
	h = Header(a, nil)
	assert.Equal(t, uint32(math.MaxUint32), u32(h, 40))
}

func TestHeaderJustBelowLimit(t *testing.T) {
	// riff size = data + 36 lands exactly on the limit
	samples := uint64(math.MaxUint32 - 36)
	h := Header(Args{Format: FormatPCM, Channels: 1, SampleRate: 8000, ByteDepth: 1, Samples: samples}, nil)
	assert.Equal(t, uint32(math.MaxUint32), u32(h, 4))
	assert.Equal(t, uint32(samples), u32(h, 40))
}

func TestChannelMask(t *testing.T) {
	assert.Equal(t, uint32(FrontCenter), ChannelMask(1))
	assert.Equal(t, uint32(FrontLeft|FrontRight), ChannelMask(2))
	assert.Equal(t, uint32(FrontLeft|FrontRight|FrontCenter|LowFrequency|BackLeft|BackRight), ChannelMask(6))
	assert.Equal(t, uint32(0xFF), ChannelMask(8))
	assert.Zero(t, ChannelMask(0))
	assert.Zero(t, ChannelMask(9))
	assert.Zero(t, ChannelMask(-1))
}
