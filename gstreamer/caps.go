package gstreamer

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mengelbart/pipemod"
	"github.com/mengelbart/pipemod/colorspace"
)

var ErrUnsupportedCaps = errors.New("unsupported caps")

// formats maps raw video format names to pixel types. Plane order of every
// entry is luma, U, V so decoded buffers can be sliced without reordering.
var formats = []struct {
	name string
	typ  colorspace.PixelType
}{
	{"I420", colorspace.I420},
	{"Y42B", colorspace.YV16},
	{"Y444", colorspace.YV24},
	{"Y41B", colorspace.YV411},
	{"GRAY8", colorspace.Y8},
	{"GRAY16_LE", colorspace.Y16},
	{"Y444_16LE", colorspace.YUV444P16},
	{"YUY2", colorspace.YUY2},
	{"BGR", colorspace.RGB24},
	{"BGRA", colorspace.RGB32},
	{"A444_16LE", colorspace.YUVA444P16},
}

func pixelType(format string) (colorspace.PixelType, bool) {
	for _, f := range formats {
		if f.name == format {
			return f.typ, true
		}
	}
	return colorspace.UnknownType, false
}

// capsString returns the caps the appsink accepts. An empty list allows
// every known format.
func capsString(allowed []string) string {
	if len(allowed) == 0 {
		for _, f := range formats {
			allowed = append(allowed, f.name)
		}
	}
	return fmt.Sprintf("video/x-raw, format=(string){ %v }", strings.Join(allowed, ", "))
}

type videoCaps struct {
	format     string
	width      int
	height     int
	fpsNum     uint32
	fpsDen     uint32
	fieldBased bool
	fieldOrder pipemod.FieldOrder
}

// structure is the part of *gst.Structure that parseCaps reads.
type structure interface {
	Name() string
	GetValue(key string) (interface{}, error)
}

// fraction matches the values GStreamer fraction fields unmarshal to.
type fraction interface {
	Num() int
	Denom() int
}

// parseCaps reads the fields of the first structure of fixed raw video
// caps.
func parseCaps(st structure) (videoCaps, error) {
	if st.Name() != "video/x-raw" {
		return videoCaps{}, fmt.Errorf("%w: %v", ErrUnsupportedCaps, st.Name())
	}
	var vc videoCaps
	var err error
	if vc.format, err = stringField(st, "format"); err != nil {
		return videoCaps{}, err
	}
	if vc.width, err = intField(st, "width"); err != nil {
		return videoCaps{}, err
	}
	if vc.height, err = intField(st, "height"); err != nil {
		return videoCaps{}, err
	}
	if vc.width <= 0 || vc.height <= 0 {
		return videoCaps{}, fmt.Errorf("%w: frame size %vx%v", ErrUnsupportedCaps, vc.width, vc.height)
	}
	v, err := st.GetValue("framerate")
	if err != nil {
		return videoCaps{}, fmt.Errorf("caps field framerate: %w", err)
	}
	fr, ok := v.(fraction)
	if !ok {
		return videoCaps{}, fmt.Errorf("%w: framerate is %T", ErrUnsupportedCaps, v)
	}
	if fr.Num() <= 0 || fr.Denom() <= 0 || int64(fr.Num()) > math.MaxUint32 || int64(fr.Denom()) > math.MaxUint32 {
		return videoCaps{}, fmt.Errorf("%w: variable frame rate", ErrUnsupportedCaps)
	}
	vc.fpsNum, vc.fpsDen = uint32(fr.Num()), uint32(fr.Denom())

	// both fields are optional and default to progressive
	if mode, err := stringField(st, "interlace-mode"); err == nil {
		// interleaved and mixed buffers carry whole frames
		vc.fieldBased = mode == "alternate"
	}
	if order, err := stringField(st, "field-order"); err == nil {
		switch order {
		case "top-field-first":
			vc.fieldOrder = pipemod.FieldOrderTFF
		case "bottom-field-first":
			vc.fieldOrder = pipemod.FieldOrderBFF
		}
	}
	return vc, nil
}

func stringField(st structure, key string) (string, error) {
	v, err := st.GetValue(key)
	if err != nil {
		return "", fmt.Errorf("caps field %v: %w", key, err)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: caps field %v is %T", ErrUnsupportedCaps, key, v)
	}
	return s, nil
}

func intField(st structure, key string) (int, error) {
	v, err := st.GetValue(key)
	if err != nil {
		return 0, fmt.Errorf("caps field %v: %w", key, err)
	}
	n, ok := v.(int)
	if !ok {
		return 0, fmt.Errorf("%w: caps field %v is %T", ErrUnsupportedCaps, key, v)
	}
	return n, nil
}

// layout describes where the planes of a decoded buffer start. Without
// GstVideoMeta, which the appsink never requests, GStreamer aligns every row
// to 4 bytes and stores the planes back to back. Chroma sizes are rounded up
// there but down in the catalog, so sizes that do not divide evenly by the
// subsampling are rejected.
type layout struct {
	geometry colorspace.Geometry
	pitches  []int
	offsets  []int
	size     int
}

func newLayout(g colorspace.Geometry) (layout, error) {
	d := g.Descriptor
	hs, vs := 1<<d.ShiftH, 1<<d.ShiftV
	if d.Type == colorspace.YUY2 {
		hs = 2
	}
	if g.Width%hs != 0 || g.Height%vs != 0 {
		return layout{}, fmt.Errorf("%w: %v needs a width divisible by %v and a height divisible by %v, got %vx%v",
			ErrUnsupportedCaps, d.Name, hs, vs, g.Width, g.Height)
	}
	l := layout{geometry: g}
	for _, pg := range g.Planes {
		pitch := (pg.RowSize + 3) &^ 3
		l.pitches = append(l.pitches, pitch)
		l.offsets = append(l.offsets, l.size)
		l.size += pitch * pg.Height
	}
	return l, nil
}

// frame slices the planes out of buf, which must hold exactly l.size bytes.
func (l layout) frame(buf []byte) (*pipemod.Frame, error) {
	if len(buf) != l.size {
		return nil, fmt.Errorf("decoded buffer holds %v bytes, want %v", len(buf), l.size)
	}
	f := &pipemod.Frame{Planes: make([]pipemod.Plane, len(l.geometry.Planes))}
	for i, pg := range l.geometry.Planes {
		f.Planes[i] = pipemod.Plane{
			Data:    buf[l.offsets[i] : l.offsets[i]+l.pitches[i]*pg.Height],
			Pitch:   l.pitches[i],
			RowSize: pg.RowSize,
			Height:  pg.Height,
		}
	}
	return f, nil
}
