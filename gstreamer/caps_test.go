package gstreamer

import (
	"fmt"
	"testing"

	"github.com/mengelbart/pipemod"
	"github.com/mengelbart/pipemod/colorspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStructure struct {
	name   string
	values map[string]interface{}
}

func (f fakeStructure) Name() string { return f.name }

func (f fakeStructure) GetValue(key string) (interface{}, error) {
	v, ok := f.values[key]
	if !ok {
		return nil, fmt.Errorf("no field %q", key)
	}
	return v, nil
}

type fakeFraction struct{ num, den int }

func (f fakeFraction) Num() int   { return f.num }
func (f fakeFraction) Denom() int { return f.den }

func rawVideo(format string, w, h int, values map[string]interface{}) fakeStructure {
	st := fakeStructure{name: "video/x-raw", values: map[string]interface{}{
		"format":    format,
		"width":     w,
		"height":    h,
		"framerate": fakeFraction{25, 1},
	}}
	for k, v := range values {
		st.values[k] = v
	}
	return st
}

func TestParseCaps(t *testing.T) {
	vc, err := parseCaps(rawVideo("I420", 320, 240, map[string]interface{}{
		"interlace-mode":     "interleaved",
		"field-order":        "top-field-first",
		"pixel-aspect-ratio": fakeFraction{1, 1},
		"colorimetry":        "bt601",
		"framerate":          fakeFraction{30000, 1001},
	}))
	require.NoError(t, err)
	assert.Equal(t, videoCaps{
		format:     "I420",
		width:      320,
		height:     240,
		fpsNum:     30000,
		fpsDen:     1001,
		fieldOrder: pipemod.FieldOrderTFF,
	}, vc)

	vc, err = parseCaps(rawVideo("GRAY8", 8, 4, map[string]interface{}{"interlace-mode": "alternate"}))
	require.NoError(t, err)
	assert.True(t, vc.fieldBased)
	assert.Equal(t, pipemod.FieldOrderUnknown, vc.fieldOrder)
}

func TestParseCapsErrors(t *testing.T) {
	noFormat := rawVideo("I420", 8, 4, nil)
	delete(noFormat.values, "format")

	for name, st := range map[string]fakeStructure{
		"audio":           {name: "audio/x-raw", values: map[string]interface{}{"format": "S16LE", "rate": 48000}},
		"no format":       noFormat,
		"variable rate":   rawVideo("I420", 8, 4, map[string]interface{}{"framerate": fakeFraction{0, 1}}),
		"width type":      rawVideo("I420", 8, 4, map[string]interface{}{"width": "x"}),
		"framerate type":  rawVideo("I420", 8, 4, map[string]interface{}{"framerate": "25/1"}),
		"zero frame size": rawVideo("I420", 0, 4, nil),
	} {
		_, err := parseCaps(st)
		assert.Error(t, err, name)
	}
}

func TestCapsString(t *testing.T) {
	assert.Equal(t, "video/x-raw, format=(string){ I420, Y444 }", capsString([]string{"I420", "Y444"}))
	assert.Contains(t, capsString(nil), "GRAY16_LE")
}

func TestLayoutAlignsRows(t *testing.T) {
	g, err := colorspace.NewGeometry(colorspace.Lookup(colorspace.I420), 6, 2)
	require.NoError(t, err)
	l, err := newLayout(g)
	require.NoError(t, err)
	assert.Equal(t, []int{8, 4, 4}, l.pitches)
	assert.Equal(t, []int{0, 16, 20}, l.offsets)
	assert.Equal(t, 24, l.size)

	buf := make([]byte, l.size)
	for i := range buf {
		buf[i] = byte(i)
	}
	f, err := l.frame(buf)
	require.NoError(t, err)
	require.Len(t, f.Planes, 3)
	assert.Equal(t, []byte{8, 9, 10, 11, 12, 13}, f.Planes[0].Row(1))
	assert.Equal(t, []byte{16, 17, 18}, f.Planes[1].Row(0))
	assert.Equal(t, []byte{20, 21, 22}, f.Planes[2].Row(0))

	_, err = l.frame(buf[:l.size-1])
	assert.Error(t, err)
	_, err = l.frame(append(buf, 0))
	assert.Error(t, err)
}

func TestLayoutRejectsOddChroma(t *testing.T) {
	for _, tc := range []struct {
		pt   colorspace.PixelType
		w, h int
	}{
		// GStreamer stores 3x3 chroma planes here, the catalog 2x2
		{colorspace.I420, 5, 5},
		{colorspace.I420, 6, 5},
		{colorspace.YV16, 7, 4},
		{colorspace.YV411, 6, 2},
		{colorspace.YUY2, 3, 2},
	} {
		g, err := colorspace.NewGeometry(colorspace.Lookup(tc.pt), tc.w, tc.h)
		require.NoError(t, err)
		_, err = newLayout(g)
		assert.ErrorIs(t, err, ErrUnsupportedCaps, "%v %vx%v", tc.pt, tc.w, tc.h)
	}

	for _, tc := range []struct {
		pt   colorspace.PixelType
		w, h int
	}{
		{colorspace.YV24, 5, 5},
		{colorspace.Y8, 5, 5},
		{colorspace.RGB24, 5, 3},
		{colorspace.YV411, 8, 3},
	} {
		g, err := colorspace.NewGeometry(colorspace.Lookup(tc.pt), tc.w, tc.h)
		require.NoError(t, err)
		_, err = newLayout(g)
		assert.NoError(t, err, "%v %vx%v", tc.pt, tc.w, tc.h)
	}
}

func TestLayoutPaddedPackedRows(t *testing.T) {
	g, err := colorspace.NewGeometry(colorspace.Lookup(colorspace.RGB24), 5, 3)
	require.NoError(t, err)
	l, err := newLayout(g)
	require.NoError(t, err)
	assert.Equal(t, []int{16}, l.pitches)
	assert.Equal(t, 48, l.size)
}

func TestSourceFormatsRejectsUnknown(t *testing.T) {
	err := SourceFormats("NV12")(&Source{})
	assert.ErrorIs(t, err, ErrUnsupportedCaps)
	assert.NoError(t, SourceFormats("BGRA", "YUY2")(&Source{}))
}
