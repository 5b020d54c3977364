// Package colorspace describes the pixel layouts a clip can deliver.
//
// All knowledge about pixel types lives in a single ordered table. Callers
// look up a [Descriptor] by [PixelType] and derive plane geometry from it
// with [NewGeometry]; nothing else in the module switches on pixel types.
package colorspace

import (
	"fmt"
	"strconv"
	"strings"
)

// PixelType identifies the memory layout of a decoded frame.
type PixelType int

const (
	UnknownType PixelType = iota
	RGB32
	RGB24
	YUY2
	YV24
	YV16
	YV12
	I420
	YV411
	Y8
	YUV444P16
	YUV422P16
	YUV420P16
	Y16
	YUV444PS
	YUV422PS
	YUV420PS
	Y32
	YUVA444
	YUVA422
	YUVA420
	YUVA444P16
	YUVA422P16
	YUVA420P16
	YUVA444PS
	YUVA422PS
	YUVA420PS
)

func (t PixelType) String() string {
	return Lookup(t).Name
}

// Descriptor holds everything the writers need to know about a pixel type.
type Descriptor struct {
	Type PixelType

	// Name is the short name printed by info mode.
	Name string
	// OutName describes the emitted byte layout in log messages.
	OutName string

	// Planes is 1 for packed and grayscale formats, 3 for YUV and 4 when an
	// alpha plane follows the chroma planes.
	Planes int
	// ShiftH and ShiftV are the log2 chroma subsampling factors.
	ShiftH int
	ShiftV int

	// BytesPerSample is the size of one component: 1, 2 or 4 (float).
	BytesPerSample int
	Float          bool

	// Packed formats interleave all components in plane 0. PixelBytes is
	// the number of bytes one pixel occupies in plane 0.
	Packed     bool
	PixelBytes int

	y4mTag string
	deep   bool
}

// Unknown is returned by Lookup for pixel types missing from the table.
var Unknown = Descriptor{
	Type:    UnknownType,
	Name:    "unknown",
	OutName: "unknown",
}

// Known reports whether d describes a supported pixel type.
func (d Descriptor) Known() bool {
	return d.Type != UnknownType
}

// IsRGB reports whether d is one of the packed RGB layouts.
func (d Descriptor) IsRGB() bool {
	return d.Type == RGB32 || d.Type == RGB24
}

// HasAlpha reports whether the descriptor carries a separate alpha plane.
func (d Descriptor) HasAlpha() bool {
	return d.Planes == 4
}

// BitsPerPixel returns the average number of bits a pixel occupies across
// all planes.
func (d Descriptor) BitsPerPixel() int {
	if d.Packed {
		return d.PixelBytes * 8
	}
	bits := 8 * d.BytesPerSample
	total := bits
	if d.Planes >= 3 {
		total += 2 * bits >> (d.ShiftH + d.ShiftV)
	}
	if d.Planes == 4 {
		total += bits
	}
	return total
}

// Y4MColorTag returns the value of the YUV4MPEG2 C parameter for d. bits
// selects the declared bit depth of 16-bit formats (9, 10, 12, 14 or 16);
// zero means 16. An empty string means the format cannot be carried in a
// YUV4MPEG2 stream.
func (d Descriptor) Y4MColorTag(bits int) string {
	if d.y4mTag == "" || !d.deep {
		return d.y4mTag
	}
	switch bits {
	case 9, 10, 12, 14:
	default:
		bits = 16
	}
	if d.y4mTag == "mono" {
		return fmt.Sprintf("mono%d", bits)
	}
	return fmt.Sprintf("%sp%d", d.y4mTag, bits)
}

var catalog = []Descriptor{
	{Type: RGB32, Name: "RGB32", OutName: "BGRA", Planes: 1, BytesPerSample: 1, Packed: true, PixelBytes: 4},
	{Type: RGB24, Name: "RGB24", OutName: "BGR", Planes: 1, BytesPerSample: 1, Packed: true, PixelBytes: 3},
	{Type: YUY2, Name: "YUY2", OutName: "YUYV-422-packed-8bit", Planes: 1, BytesPerSample: 1, Packed: true, PixelBytes: 2},

	{Type: YV24, Name: "YV24", OutName: "YUV-444-planar-8bit", Planes: 3, BytesPerSample: 1, y4mTag: "444"},
	{Type: YV16, Name: "YV16", OutName: "YUV-422-planar-8bit", Planes: 3, ShiftH: 1, BytesPerSample: 1, y4mTag: "422"},
	{Type: YV12, Name: "YV12", OutName: "YUV-420-planar-8bit", Planes: 3, ShiftH: 1, ShiftV: 1, BytesPerSample: 1, y4mTag: "420mpeg2"},
	{Type: I420, Name: "YV12", OutName: "YUV-420-planar-8bit", Planes: 3, ShiftH: 1, ShiftV: 1, BytesPerSample: 1, y4mTag: "420mpeg2"},
	{Type: YV411, Name: "YV411", OutName: "YUV-411-planar-8bit", Planes: 3, ShiftH: 2, BytesPerSample: 1, y4mTag: "411"},
	{Type: Y8, Name: "Y8", OutName: "luma-only-8bit", Planes: 1, BytesPerSample: 1, y4mTag: "mono"},

	{Type: YUV444P16, Name: "YUV444P16", OutName: "YUV-444-planar-16bit", Planes: 3, BytesPerSample: 2, y4mTag: "444", deep: true},
	{Type: YUV422P16, Name: "YUV422P16", OutName: "YUV-422-planar-16bit", Planes: 3, ShiftH: 1, BytesPerSample: 2, y4mTag: "422", deep: true},
	{Type: YUV420P16, Name: "YUV420P16", OutName: "YUV-420-planar-16bit", Planes: 3, ShiftH: 1, ShiftV: 1, BytesPerSample: 2, y4mTag: "420", deep: true},
	{Type: Y16, Name: "Y16", OutName: "luma-only-16bit", Planes: 1, BytesPerSample: 2, y4mTag: "mono", deep: true},

	{Type: YUV444PS, Name: "YUV444PS", OutName: "YUV-444-planar-float", Planes: 3, BytesPerSample: 4, Float: true},
	{Type: YUV422PS, Name: "YUV422PS", OutName: "YUV-422-planar-float", Planes: 3, ShiftH: 1, BytesPerSample: 4, Float: true},
	{Type: YUV420PS, Name: "YUV420PS", OutName: "YUV-420-planar-float", Planes: 3, ShiftH: 1, ShiftV: 1, BytesPerSample: 4, Float: true},
	{Type: Y32, Name: "Y32", OutName: "luma-only-float", Planes: 1, BytesPerSample: 4, Float: true},

	{Type: YUVA444, Name: "YUVA444", OutName: "YUVA-444-planar-8bit", Planes: 4, BytesPerSample: 1, y4mTag: "444alpha"},
	{Type: YUVA422, Name: "YUVA422", OutName: "YUVA-422-planar-8bit", Planes: 4, ShiftH: 1, BytesPerSample: 1},
	{Type: YUVA420, Name: "YUVA420", OutName: "YUVA-420-planar-8bit", Planes: 4, ShiftH: 1, ShiftV: 1, BytesPerSample: 1},
	{Type: YUVA444P16, Name: "YUVA444P16", OutName: "YUVA-444-planar-16bit", Planes: 4, BytesPerSample: 2},
	{Type: YUVA422P16, Name: "YUVA422P16", OutName: "YUVA-422-planar-16bit", Planes: 4, ShiftH: 1, BytesPerSample: 2},
	{Type: YUVA420P16, Name: "YUVA420P16", OutName: "YUVA-420-planar-16bit", Planes: 4, ShiftH: 1, ShiftV: 1, BytesPerSample: 2},
	{Type: YUVA444PS, Name: "YUVA444PS", OutName: "YUVA-444-planar-float", Planes: 4, BytesPerSample: 4, Float: true},
	{Type: YUVA422PS, Name: "YUVA422PS", OutName: "YUVA-422-planar-float", Planes: 4, ShiftH: 1, BytesPerSample: 4, Float: true},
	{Type: YUVA420PS, Name: "YUVA420PS", OutName: "YUVA-420-planar-float", Planes: 4, ShiftH: 1, ShiftV: 1, BytesPerSample: 4, Float: true},
}

// Lookup returns the descriptor for t, or Unknown.
func Lookup(t PixelType) Descriptor {
	for _, d := range catalog {
		if d.Type == t {
			return d
		}
	}
	return Unknown
}

// ParseName returns the pixel type whose name matches s, ignoring case.
// "I420" is accepted as an alias of YV12.
func ParseName(s string) (PixelType, error) {
	if strings.EqualFold(s, "I420") {
		return I420, nil
	}
	for _, d := range catalog {
		if strings.EqualFold(d.Name, s) {
			return d.Type, nil
		}
	}
	return UnknownType, fmt.Errorf("unknown pixel type: %q", s)
}

// Names lists the names accepted by ParseName.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for _, d := range catalog {
		if d.Type == I420 {
			continue
		}
		names = append(names, d.Name)
	}
	return names
}

var y4mTypes = []struct {
	tag string
	typ PixelType
}{
	{"420", YV12},
	{"420jpeg", YV12},
	{"420mpeg2", YV12},
	{"420paldv", YV12},
	{"422", YV16},
	{"444", YV24},
	{"411", YV411},
	{"mono", Y8},
	{"444alpha", YUVA444},
}

var y4mDeepTypes = []struct {
	prefix string
	typ    PixelType
}{
	{"420p", YUV420P16},
	{"422p", YUV422P16},
	{"444p", YUV444P16},
	{"mono", Y16},
}

// FromY4M maps a YUV4MPEG2 C parameter to a pixel type and the declared
// bit depth. An empty tag means 4:2:0 8-bit.
func FromY4M(tag string) (PixelType, int, error) {
	if tag == "" {
		return YV12, 8, nil
	}
	for _, e := range y4mTypes {
		if e.tag == tag {
			return e.typ, 8, nil
		}
	}
	for _, e := range y4mDeepTypes {
		if !strings.HasPrefix(tag, e.prefix) {
			continue
		}
		depth, err := strconv.Atoi(tag[len(e.prefix):])
		if err != nil || depth < 8 || depth > 16 {
			break
		}
		if depth == 8 {
			return Lookup(e.typ).narrow(), 8, nil
		}
		return e.typ, depth, nil
	}
	return UnknownType, 0, fmt.Errorf("unsupported y4m colorspace: %q", tag)
}

// narrow returns the 8-bit counterpart of a 16-bit YUV layout.
func (d Descriptor) narrow() PixelType {
	switch d.Type {
	case YUV420P16:
		return YV12
	case YUV422P16:
		return YV16
	case YUV444P16:
		return YV24
	case Y16:
		return Y8
	}
	return d.Type
}
