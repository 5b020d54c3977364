package y4m

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamHeaderString(t *testing.T) {
	h := StreamHeader{
		Width:      720,
		Height:     480,
		FPSNum:     30000,
		FPSDen:     1001,
		Interlace:  'p',
		SARNum:     0,
		SARDen:     0,
		Colorspace: "420mpeg2",
	}
	assert.Equal(t, "YUV4MPEG2 W720 H480 F30000:1001 Ip A0:0 C420mpeg2\n", h.String())

	h.Interlace = 0
	h.SARNum, h.SARDen = 10, 11
	h.Colorspace = "444p10"
	assert.Equal(t, "YUV4MPEG2 W720 H480 F30000:1001 Ip A10:11 C444p10\n", h.String())
}

func TestParseStreamHeaderRoundTrip(t *testing.T) {
	want := StreamHeader{Width: 1920, Height: 1080, FPSNum: 24000, FPSDen: 1001, Interlace: 't', SARNum: 1, SARDen: 1, Colorspace: "422"}
	got, err := ParseStreamHeader(strings.TrimSuffix(want.String(), "\n"))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseStreamHeaderDefaults(t *testing.T) {
	h, err := ParseStreamHeader("YUV4MPEG2 W16 H8 XYSCSS=420JPEG")
	require.NoError(t, err)
	assert.Equal(t, uint32(25), h.FPSNum)
	assert.Equal(t, byte('p'), h.Interlace)
	assert.Empty(t, h.Colorspace)
}

func TestParseStreamHeaderErrors(t *testing.T) {
	for _, line := range []string{
		"",
		"YUV4MPEG W16 H8",
		"YUV4MPEG2 H8",
		"YUV4MPEG2 W16 H8 F30",
		"YUV4MPEG2 W16 H8 F30:0",
		"YUV4MPEG2 W16 H8 Ix",
		"YUV4MPEG2 Wabc H8",
	} {
		_, err := ParseStreamHeader(line)
		assert.ErrorIs(t, err, ErrInvalidHeader, line)
	}
}

func TestReader(t *testing.T) {
	var stream bytes.Buffer
	stream.WriteString("YUV4MPEG2 W2 H2 F25:1 C444\n")
	stream.WriteString(FrameHeader)
	stream.Write(bytes.Repeat([]byte{1}, 12))
	stream.WriteString(FrameHeader)
	stream.Write(bytes.Repeat([]byte{2}, 12))

	r, err := NewReader(&stream)
	require.NoError(t, err)
	assert.NotNil(t, r.stream)
	assert.Equal(t, 27, r.HeaderLength())
	assert.Equal(t, "444", r.Header().Colorspace)
	assert.Equal(t, 2, r.Header().Width)
	assert.Equal(t, uint32(25), r.Header().FPSNum)
	r.SetFrameSize(12)

	buf := make([]byte, 12)
	require.NoError(t, r.ReadFrame(buf))
	assert.Equal(t, bytes.Repeat([]byte{1}, 12), buf)
	require.NoError(t, r.ReadFrame(buf))
	assert.Equal(t, bytes.Repeat([]byte{2}, 12), buf)
	assert.Equal(t, io.EOF, r.ReadFrame(buf))
}

func TestReaderChromaLayouts(t *testing.T) {
	for _, tag := range []string{"411", "420", "420jpeg", "420mpeg2", "420paldv", "422", "444", "444alpha"} {
		r, err := NewReader(strings.NewReader("YUV4MPEG2 W4 H2 F30:1 C" + tag + "\n"))
		require.NoError(t, err, tag)
		assert.NotNil(t, r.stream, tag)
		assert.Equal(t, tag, r.Header().Colorspace)
	}
}

func TestReaderFrameSizeMismatch(t *testing.T) {
	var stream bytes.Buffer
	stream.WriteString("YUV4MPEG2 W2 H2 F25:1 C444\n")
	stream.WriteString(FrameHeader)
	stream.Write(bytes.Repeat([]byte{1}, 12))

	r, err := NewReader(&stream)
	require.NoError(t, err)
	r.SetFrameSize(8)
	assert.ErrorIs(t, r.ReadFrame(make([]byte, 12)), ErrFrameSize)
}

func TestReaderDeepColorspaces(t *testing.T) {
	var stream bytes.Buffer
	stream.WriteString("YUV4MPEG2 W2 H2 F25:1 It A1:1 C420p10\n")
	stream.WriteString(FrameHeader)
	stream.Write(bytes.Repeat([]byte{1}, 12))
	stream.WriteString("FRAME Ixyz\n")
	stream.Write(bytes.Repeat([]byte{2}, 12))

	r, err := NewReader(&stream)
	require.NoError(t, err)
	assert.Nil(t, r.stream)
	assert.Equal(t, "420p10", r.Header().Colorspace)
	assert.Equal(t, byte('t'), r.Header().Interlace)
	r.SetFrameSize(12)

	buf := make([]byte, 12)
	require.NoError(t, r.ReadFrame(buf))
	assert.Equal(t, bytes.Repeat([]byte{1}, 12), buf)
	require.NoError(t, r.ReadFrame(buf))
	assert.Equal(t, bytes.Repeat([]byte{2}, 12), buf)
	assert.Equal(t, io.EOF, r.ReadFrame(buf))

	for _, tag := range []string{"mono", "mono16", "444p12", "422p9"} {
		r, err := NewReader(strings.NewReader("YUV4MPEG2 W4 H2 C" + tag + "\n"))
		require.NoError(t, err, tag)
		assert.Nil(t, r.stream, tag)
	}
}

func TestReaderTruncatedFrame(t *testing.T) {
	r, err := NewReader(strings.NewReader("YUV4MPEG2 W2 H2 Cmono16\nFRAME\nabc"))
	require.NoError(t, err)
	r.SetFrameSize(8)
	err = r.ReadFrame(make([]byte, 8))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReaderHeaderErrors(t *testing.T) {
	_, err := NewReader(strings.NewReader("YUV4MPEG2 " + strings.Repeat("X", 2000)))
	assert.ErrorIs(t, err, ErrInvalidHeader)

	_, err = NewReader(strings.NewReader("YUV4MPEG2 W2 H2"))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = NewReader(strings.NewReader(""))
	assert.Equal(t, io.EOF, err)
}
