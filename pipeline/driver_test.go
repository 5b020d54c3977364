package pipeline

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/synctest"
	"time"

	"github.com/mengelbart/pipemod"
	"github.com/mengelbart/pipemod/colorspace"
	"github.com/mengelbart/pipemod/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discard struct{}

func (discard) Trace(string)          {}
func (discard) Tracef(string, ...any) {}
func (discard) Debug(string)          {}
func (discard) Debugf(string, ...any) {}
func (discard) Info(string)           {}
func (discard) Infof(string, ...any)  {}
func (discard) Warn(string)           {}
func (discard) Warnf(string, ...any)  {}
func (discard) Error(string)          {}
func (discard) Errorf(string, ...any) {}

type invocation struct {
	name string
	args pipemod.Args
}

type recordingFilters struct {
	*filter.Registry
	calls []invocation
}

func (r *recordingFilters) Invoke(name string, c pipemod.Clip, args pipemod.Args) (pipemod.Clip, error) {
	r.calls = append(r.calls, invocation{name: name, args: args})
	return r.Registry.Invoke(name, c, args)
}

func (r *recordingFilters) names() []string {
	var names []string
	for _, c := range r.calls {
		names = append(names, c.name)
	}
	return names
}

func newDriver(t *testing.T, clip pipemod.Clip, out io.Writer) (*Driver, *recordingFilters) {
	t.Helper()
	filters := &recordingFilters{Registry: filter.NewRegistry()}
	return &Driver{
		Clip:       clip,
		Filters:    filters,
		Stdout:     out,
		ScriptName: "test.avs",
		Logger:     discard{},
	}, filters
}

func testSource(t *testing.T, mod func(*pipemod.TestSourceConfig)) *pipemod.TestSource {
	t.Helper()
	cfg := pipemod.DefaultTestSourceConfig
	if mod != nil {
		mod(&cfg)
	}
	s, err := pipemod.NewTestSource(cfg)
	require.NoError(t, err)
	return s
}

func TestVideoY4M(t *testing.T) {
	src := testSource(t, func(c *pipemod.TestSourceConfig) { c.NumFrames = 2 })
	var out bytes.Buffer
	d, _ := newDriver(t, src, &out)

	require.NoError(t, d.Run(context.Background(), DefaultParams(ActionVideo)))

	header := "YUV4MPEG2 W720 H480 F30000:1001 Ip A0:0 C420mpeg2\n"
	b := out.Bytes()
	require.Len(t, b, len(header)+2*(6+518400))
	assert.Equal(t, header, string(b[:len(header)]))
	assert.Equal(t, "FRAME\n", string(b[len(header):len(header)+6]))
	assert.Equal(t, "FRAME\n", string(b[len(header)+6+518400:len(header)+12+518400]))
}

type shortSink struct {
	bytes.Buffer
	writes int
	failAt int
}

func (s *shortSink) Write(p []byte) (int, error) {
	s.writes++
	if s.writes == s.failAt {
		return s.Buffer.Write(p[:len(p)/2])
	}
	return s.Buffer.Write(p)
}

func TestVideoShortWrite(t *testing.T) {
	src := testSource(t, func(c *pipemod.TestSourceConfig) {
		c.Width, c.Height, c.NumFrames, c.PixelType = 20, 10, 3, colorspace.Y8
	})
	// header, frame 1, frame 2, frame 3
	sink := &shortSink{failAt: 4}
	d, _ := newDriver(t, src, sink)

	err := d.Run(context.Background(), DefaultParams(ActionVideo))
	var ie *IncompleteError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, int64(2), ie.Wrote)
	assert.Equal(t, int64(3), ie.Target)
	assert.Equal(t, "only wrote 2 of 3 frames", err.Error())
	assert.True(t, IsIncomplete(err))
	assert.Equal(t, 4, sink.writes)
}

func TestVideoRawFlippedTrimmed(t *testing.T) {
	src := testSource(t, func(c *pipemod.TestSourceConfig) {
		c.Width, c.Height, c.NumFrames, c.PixelType = 4, 2, 10, colorspace.Y8
	})
	var out bytes.Buffer
	d, filters := newDriver(t, src, &out)

	p := DefaultParams(ActionVideo)
	p.VideoFormat = VideoRawFlipped
	p.TrimFirst, p.TrimLast = 3, -2
	require.NoError(t, d.Run(context.Background(), p))

	assert.Equal(t, []string{"Trim", "FlipVertical"}, filters.names())
	require.Equal(t, 2*8, out.Len())
	// first output row is the last row of frame 3
	assert.Equal(t, pipemod.TestPixel(3, 0, 0, 0, 1), out.Bytes()[0])
	assert.Equal(t, pipemod.TestPixel(4, 0, 0, 0, 0), out.Bytes()[12])
}

type fieldClip struct {
	*pipemod.TestSource
}

func (f fieldClip) VideoInfo() pipemod.VideoInfo {
	vi := f.TestSource.VideoInfo()
	vi.FieldBased = true
	vi.FieldOrder = pipemod.FieldOrderTFF
	return vi
}

func TestY4MFieldBased(t *testing.T) {
	src := fieldClip{testSource(t, func(c *pipemod.TestSourceConfig) {
		c.Width, c.Height, c.NumFrames = 8, 4, 4
	})}

	var out bytes.Buffer
	d, _ := newDriver(t, src, &out)
	err := d.Run(context.Background(), DefaultParams(ActionVideo))
	assert.ErrorIs(t, err, ErrFieldBased)
	assert.Zero(t, out.Len())

	d.FieldPolicy = FixedFieldPolicy(FieldWeave)
	require.NoError(t, d.Run(context.Background(), DefaultParams(ActionVideo)))
	assert.True(t, strings.HasPrefix(out.String(), "YUV4MPEG2 W8 H8 F15000:1001 "))
	assert.Equal(t, len("YUV4MPEG2 W8 H8 F15000:1001 Ip A0:0 C420mpeg2\n")+2*(6+96), out.Len())

	out.Reset()
	d.FieldPolicy = PromptFieldPolicy(strings.NewReader("1\n"), io.Discard)
	require.NoError(t, d.Run(context.Background(), DefaultParams(ActionVideo)))
	assert.True(t, strings.HasPrefix(out.String(), "YUV4MPEG2 W8 H4 "))
}

func TestY4MConvertsRGB(t *testing.T) {
	for _, tc := range []struct {
		height int
		matrix string
	}{
		{height: 480, matrix: "Rec601"},
		{height: 720, matrix: "Rec709"},
	} {
		src := testSource(t, func(c *pipemod.TestSourceConfig) {
			c.Width, c.Height, c.NumFrames, c.PixelType = 16, tc.height, 1, colorspace.RGB24
		})
		var out bytes.Buffer
		d, filters := newDriver(t, src, &out)
		p := DefaultParams(ActionVideo)
		p.Interlace = 't'
		p.SARNum, p.SARDen = 10, 11
		require.NoError(t, d.Run(context.Background(), p))

		require.Len(t, filters.calls, 1)
		assert.Equal(t, "ConvertToYV24", filters.calls[0].name)
		assert.Equal(t, pipemod.Args{"interlaced": true, "matrix": tc.matrix}, filters.calls[0].args)
		assert.True(t, strings.HasSuffix(strings.SplitN(out.String(), "\n", 2)[0], "It A10:11 C444"))
	}
}

func TestY4MConvertsYUY2AndFloat(t *testing.T) {
	src := testSource(t, func(c *pipemod.TestSourceConfig) {
		c.Width, c.Height, c.NumFrames, c.PixelType = 8, 2, 1, colorspace.YUY2
	})
	var out bytes.Buffer
	d, filters := newDriver(t, src, &out)
	require.NoError(t, d.Run(context.Background(), DefaultParams(ActionVideo)))
	assert.Equal(t, []string{"ConvertToYV16"}, filters.names())
	assert.Contains(t, out.String(), " C422\n")

	src = testSource(t, func(c *pipemod.TestSourceConfig) {
		c.Width, c.Height, c.NumFrames, c.PixelType = 8, 2, 1, colorspace.YUV420PS
	})
	out.Reset()
	d, filters = newDriver(t, src, &out)
	p := DefaultParams(ActionVideo)
	p.Y4MBits = 10
	require.NoError(t, d.Run(context.Background(), p))
	assert.Equal(t, []string{"ConvertTo16bit"}, filters.names())
	assert.Contains(t, out.String(), " C420p10\n")
	assert.Equal(t, len("YUV4MPEG2 W8 H2 F30000:1001 Ip A0:0 C420p10\n")+6+8*2*2*3/2, out.Len())
}

type unknownClip struct {
	*pipemod.TestSource
}

func (u unknownClip) VideoInfo() pipemod.VideoInfo {
	vi := u.TestSource.VideoInfo()
	vi.PixelType = colorspace.UnknownType
	return vi
}

func TestUnknownPixelType(t *testing.T) {
	src := unknownClip{testSource(t, nil)}
	var out bytes.Buffer
	d, _ := newDriver(t, src, &out)

	p := DefaultParams(ActionVideo)
	p.VideoFormat = VideoRaw
	err := d.Run(context.Background(), p)
	assert.ErrorIs(t, err, colorspace.ErrUnknownColorspace)
	assert.Zero(t, out.Len())

	require.NoError(t, d.Run(context.Background(), DefaultParams(ActionInfo)))
	assert.Contains(t, out.String(), "v:pixel_type     unknown\n")
	assert.Contains(t, out.String(), "v:bit_depth      0\n")
}

type binarySink struct {
	bytes.Buffer
	switched      int
	switchedFirst bool
}

func (b *binarySink) SetBinaryMode() error {
	b.switched++
	b.switchedFirst = b.Len() == 0
	return nil
}

func TestAudioWAV(t *testing.T) {
	src := testSource(t, func(c *pipemod.TestSourceConfig) {
		c.NumFrames, c.Channels, c.NumSamples = 0, 1, 96000
	})
	sink := &binarySink{}
	d, filters := newDriver(t, src, sink)

	p := DefaultParams(ActionAudio)
	require.NoError(t, d.Run(context.Background(), p))
	assert.Empty(t, filters.calls)
	assert.Equal(t, 1, sink.switched)
	assert.True(t, sink.switchedFirst)

	b := sink.Bytes()
	require.Len(t, b, 44+192000)
	assert.Equal(t, "RIFF", string(b[:4]))
	assert.Equal(t, uint32(192000+36), binary.LittleEndian.Uint32(b[4:]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(b[20:]))
	assert.Equal(t, uint32(192000), binary.LittleEndian.Uint32(b[40:]))
}

func TestAudioExtensibleFloat(t *testing.T) {
	src := testSource(t, func(c *pipemod.TestSourceConfig) { c.NumSamples = 1000 })
	var out bytes.Buffer
	d, filters := newDriver(t, src, &out)

	p := DefaultParams(ActionAudio)
	p.AudioFormat = AudioWAVExtensible
	p.AudioBits = pipemod.SampleTypeFloat
	require.NoError(t, d.Run(context.Background(), p))
	assert.Equal(t, []string{"ConvertAudioTofloat"}, filters.names())

	b := out.Bytes()
	require.Len(t, b, 80+1000*2*4)
	assert.Equal(t, uint16(0xFFFE), binary.LittleEndian.Uint16(b[20:]))
	// sub-format tag
	assert.Equal(t, uint16(3), binary.LittleEndian.Uint16(b[44:]))
}

func TestAudioRawTrimmed(t *testing.T) {
	src := testSource(t, func(c *pipemod.TestSourceConfig) {
		c.FPSNum, c.FPSDen, c.SampleRate, c.NumSamples = 25, 1, 100, 1200
	})
	var out bytes.Buffer
	d, _ := newDriver(t, src, &out)

	p := DefaultParams(ActionAudio)
	p.AudioFormat = AudioRaw
	p.TrimFirst, p.TrimLast = 0, -10
	require.NoError(t, d.Run(context.Background(), p))
	// 10 frames at 25 fps are 40 samples
	assert.Equal(t, 40*4, out.Len())
}

func TestNoAudioNoVideo(t *testing.T) {
	audioOnly := testSource(t, func(c *pipemod.TestSourceConfig) { c.NumFrames = 0 })
	d, _ := newDriver(t, audioOnly, io.Discard)
	for _, a := range []Action{ActionVideo, ActionBenchmark, ActionDumpText} {
		assert.ErrorIs(t, d.Run(context.Background(), DefaultParams(a)), pipemod.ErrNoVideo, a.String())
	}
	videoOnly := testSource(t, func(c *pipemod.TestSourceConfig) { c.NumSamples = 0 })
	d, _ = newDriver(t, videoOnly, io.Discard)
	assert.ErrorIs(t, d.Run(context.Background(), DefaultParams(ActionAudio)), pipemod.ErrNoAudio)
}

func TestInfo(t *testing.T) {
	var out bytes.Buffer
	d, _ := newDriver(t, testSource(t, nil), &out)
	p := DefaultParams(ActionInfo)
	p.TrimFirst = 100
	require.NoError(t, d.Run(context.Background(), p))

	want := `
script_name      test.avs

v:width          720
v:height         480
v:image_type     framebased
v:field_order    not specified
v:pixel_type     YV12
v:bit_depth      8
v:fps            30000/1001
v:frames         300
v:duration[sec]  10.010

a:sample_rate    48000
a:format         integer
a:bit_depth      16
a:channels       2
a:samples        480480
a:duration[sec]  10.010

`
	assert.Equal(t, want, out.String())
}

type slowClip struct {
	*pipemod.TestSource
	calls int
}

func (s *slowClip) GetFrame(n int) (*pipemod.Frame, error) {
	time.Sleep(10 * time.Millisecond)
	s.calls++
	return s.TestSource.GetFrame(n)
}

func TestBenchmark(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		src := &slowClip{TestSource: testSource(t, func(c *pipemod.TestSourceConfig) {
			c.Width, c.Height, c.NumFrames = 8, 8, 120
		})}
		var out bytes.Buffer
		d, _ := newDriver(t, src, &out)
		require.NoError(t, d.Run(context.Background(), DefaultParams(ActionBenchmark)))

		assert.Equal(t, 120, src.calls)
		assert.True(t, strings.HasPrefix(out.String(), "\nscript_name      test.avs\n"))
		assert.NotContains(t, out.String(), "a:sample_rate")
		assert.True(t, strings.HasSuffix(out.String(), "benchmark result: total elapsed time is 1.200 sec [100.000fps]\n"))
	})
}

type failingClip struct {
	*pipemod.TestSource
}

func (failingClip) GetFrame(int) (*pipemod.Frame, error) {
	return nil, errors.New("decoder gone")
}

func TestUpstreamErrorIsFatal(t *testing.T) {
	d, _ := newDriver(t, failingClip{testSource(t, nil)}, io.Discard)
	err := d.Run(context.Background(), DefaultParams(ActionBenchmark))
	assert.ErrorContains(t, err, "decoder gone")
	assert.False(t, IsIncomplete(err))
}

func TestDumpText(t *testing.T) {
	src := testSource(t, func(c *pipemod.TestSourceConfig) {
		c.Width, c.Height, c.NumFrames, c.PixelType = 2, 1, 2, colorspace.Y8
	})
	var out bytes.Buffer
	d, _ := newDriver(t, src, &out)
	require.NoError(t, d.Run(context.Background(), DefaultParams(ActionDumpText)))

	s := out.String()
	assert.NotContains(t, s, "a:samples")
	_, dump, ok := strings.Cut(s, "v:duration[sec]  0.067\n\n\n\n")
	require.True(t, ok, s)
	assert.Equal(t, "frame 0\n0\t1\t\n\nframe 1\n3\t4\t\n\n", dump)
}

func TestFiltersAction(t *testing.T) {
	var out bytes.Buffer
	d, _ := newDriver(t, testSource(t, nil), &out)
	require.NoError(t, d.Run(context.Background(), DefaultParams(ActionFilters)))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, d.Filters.Names(), lines)
}

func TestConfigErrorsBeforeOutput(t *testing.T) {
	sink := &binarySink{}
	d, _ := newDriver(t, testSource(t, nil), sink)

	p := DefaultParams(ActionVideo)
	p.Interlace = 'x'
	err := d.Run(context.Background(), p)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "interlace", ce.Option)

	err = d.Run(context.Background(), Params{})
	require.ErrorAs(t, err, &ce)

	p = DefaultParams(ActionVideo)
	p.Y4MBits = 11
	require.ErrorAs(t, d.Run(context.Background(), p), &ce)

	assert.Zero(t, sink.switched)
	assert.Zero(t, sink.Len())
}

type unknownPixelClip struct {
	*pipemod.TestSource
}

func (u unknownPixelClip) VideoInfo() pipemod.VideoInfo {
	vi := u.TestSource.VideoInfo()
	vi.PixelType = colorspace.UnknownType
	return vi
}

func TestFormatErrorsLeaveSinkUntouched(t *testing.T) {
	sink := &binarySink{}
	d, _ := newDriver(t, unknownPixelClip{testSource(t, nil)}, sink)
	for _, f := range []VideoFormat{VideoY4M, VideoRaw} {
		p := DefaultParams(ActionVideo)
		p.VideoFormat = f
		assert.ErrorIs(t, d.Run(context.Background(), p), colorspace.ErrUnknownColorspace)
	}

	d, _ = newDriver(t, testSource(t, func(c *pipemod.TestSourceConfig) { c.PixelType = colorspace.YUVA422 }), sink)
	err := d.Run(context.Background(), DefaultParams(ActionVideo))
	assert.ErrorContains(t, err, "cannot be written as yuv4mpeg2")

	assert.Zero(t, sink.switched)
	assert.Zero(t, sink.Len())

	d, _ = newDriver(t, testSource(t, nil), sink)
	p := DefaultParams(ActionVideo)
	p.VideoFormat = VideoRaw
	require.NoError(t, d.Run(context.Background(), p))
	assert.Equal(t, 1, sink.switched)
	assert.True(t, sink.switchedFirst)
}
