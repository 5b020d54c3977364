package filter

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/mengelbart/pipemod"
	"github.com/mengelbart/pipemod/colorspace"
)

// converter runs a per-frame conversion into a frame of a different pixel
// type.
type converter struct {
	child
	info    pipemod.VideoInfo
	frame   *pipemod.Frame
	convert func(dst, src *pipemod.Frame)
}

func newConverter(c pipemod.Clip, to colorspace.PixelType, convert func(dst, src *pipemod.Frame)) (*converter, error) {
	vi := c.VideoInfo()
	vi.PixelType = to
	g, err := geometryOf(vi)
	if err != nil {
		return nil, err
	}
	return &converter{
		child:   child{c},
		info:    vi,
		frame:   pipemod.NewFrame(g, 1),
		convert: convert,
	}, nil
}

func (c *converter) VideoInfo() pipemod.VideoInfo {
	return c.info
}

func (c *converter) GetFrame(n int) (*pipemod.Frame, error) {
	src, err := c.child.GetFrame(n)
	if err != nil {
		return nil, err
	}
	c.convert(c.frame, src)
	return c.frame, nil
}

// ConvertToYV16 unpacks YUY2 into planar 4:2:2.
func ConvertToYV16(c pipemod.Clip, _ pipemod.Args) (pipemod.Clip, error) {
	vi := c.VideoInfo()
	switch vi.PixelType {
	case colorspace.YV16:
		return c, nil
	case colorspace.YUY2:
	default:
		return nil, fmt.Errorf("unsupported source %v", vi.PixelType)
	}
	return newConverter(c, colorspace.YV16, func(dst, src *pipemod.Frame) {
		packed := src.Planes[0]
		for y := 0; y < packed.Height; y++ {
			in := packed.Row(y)
			luma, u, v := dst.Planes[0].Row(y), dst.Planes[1].Row(y), dst.Planes[2].Row(y)
			for x := 0; x < len(u); x++ {
				luma[2*x] = in[4*x]
				u[x] = in[4*x+1]
				luma[2*x+1] = in[4*x+2]
				v[x] = in[4*x+3]
			}
		}
	})
}

// Matrix holds the luma coefficients of a YCbCr conversion.
type Matrix struct {
	Kr, Kb float64
}

var (
	Rec601 = Matrix{Kr: 0.299, Kb: 0.114}
	Rec709 = Matrix{Kr: 0.2126, Kb: 0.0722}
)

// ParseMatrix accepts "Rec601" and "Rec709" in any case.
func ParseMatrix(s string) (Matrix, error) {
	switch strings.ToLower(s) {
	case "rec601", "":
		return Rec601, nil
	case "rec709":
		return Rec709, nil
	}
	return Matrix{}, fmt.Errorf("unknown matrix %q", s)
}

// toYUV converts 8-bit RGB to limited range YCbCr.
func (m Matrix) toYUV(r, g, b byte) (byte, byte, byte) {
	rf, gf, bf := float64(r), float64(g), float64(b)
	luma := m.Kr*rf + (1-m.Kr-m.Kb)*gf + m.Kb*bf
	y := 16 + luma*219/255
	u := 128 + (bf-luma)/(2*(1-m.Kb))*224/255
	v := 128 + (rf-luma)/(2*(1-m.Kr))*224/255
	return clamp8(y), clamp8(u), clamp8(v)
}

func clamp8(v float64) byte {
	return byte(math.Max(0, math.Min(255, math.Round(v))))
}

// ConvertToYV24 converts packed RGB32 or RGB24 to planar 4:4:4 using the
// "matrix" argument. "interlaced" is accepted for compatibility; 4:4:4 has
// no vertical chroma subsampling, so it does not change the result.
func ConvertToYV24(c pipemod.Clip, args pipemod.Args) (pipemod.Clip, error) {
	name, err := stringArg(args, "matrix", "Rec601")
	if err != nil {
		return nil, err
	}
	m, err := ParseMatrix(name)
	if err != nil {
		return nil, err
	}
	if _, err := boolArg(args, "interlaced", false); err != nil {
		return nil, err
	}
	vi := c.VideoInfo()
	switch vi.PixelType {
	case colorspace.YV24:
		return c, nil
	case colorspace.RGB32, colorspace.RGB24:
	default:
		return nil, fmt.Errorf("unsupported source %v", vi.PixelType)
	}
	step := vi.Descriptor().PixelBytes
	return newConverter(c, colorspace.YV24, func(dst, src *pipemod.Frame) {
		packed := src.Planes[0]
		for y := 0; y < packed.Height; y++ {
			in := packed.Row(y)
			luma, u, v := dst.Planes[0].Row(y), dst.Planes[1].Row(y), dst.Planes[2].Row(y)
			for x := range luma {
				px := in[x*step:]
				// BGR(A) byte order
				luma[x], u[x], v[x] = m.toYUV(px[2], px[1], px[0])
			}
		}
	})
}

var to16bit = map[colorspace.PixelType]colorspace.PixelType{
	colorspace.YV24:      colorspace.YUV444P16,
	colorspace.YV16:      colorspace.YUV422P16,
	colorspace.YV12:      colorspace.YUV420P16,
	colorspace.I420:      colorspace.YUV420P16,
	colorspace.Y8:        colorspace.Y16,
	colorspace.YUVA444:   colorspace.YUVA444P16,
	colorspace.YUVA422:   colorspace.YUVA422P16,
	colorspace.YUVA420:   colorspace.YUVA420P16,
	colorspace.YUV444PS:  colorspace.YUV444P16,
	colorspace.YUV422PS:  colorspace.YUV422P16,
	colorspace.YUV420PS:  colorspace.YUV420P16,
	colorspace.Y32:       colorspace.Y16,
	colorspace.YUVA444PS: colorspace.YUVA444P16,
	colorspace.YUVA422PS: colorspace.YUVA422P16,
	colorspace.YUVA420PS: colorspace.YUVA420P16,
}

// ConvertTo16bit converts 8-bit and float planar formats to 16-bit
// planar. Float luma and alpha span [0, 1], float chroma [-0.5, 0.5].
// 16-bit clips are returned unchanged.
func ConvertTo16bit(c pipemod.Clip, _ pipemod.Args) (pipemod.Clip, error) {
	vi := c.VideoInfo()
	d := vi.Descriptor()
	if d.BytesPerSample == 2 && !d.Packed {
		return c, nil
	}
	to, ok := to16bit[vi.PixelType]
	if !ok {
		return nil, fmt.Errorf("unsupported source %v", vi.PixelType)
	}
	return newConverter(c, to, func(dst, src *pipemod.Frame) {
		for p, out := range dst.Planes {
			chroma := p == 1 || p == 2
			for y := 0; y < out.Height; y++ {
				in, row := src.Planes[p].Row(y), out.Row(y)
				for x := 0; x < len(row)/2; x++ {
					var v uint16
					if d.Float {
						f := float64(math.Float32frombits(binary.LittleEndian.Uint32(in[4*x:])))
						if chroma {
							f += 0.5
						}
						v = uint16(math.Round(math.Max(0, math.Min(1, f)) * 65535))
					} else {
						v = uint16(in[x]) << 8
					}
					binary.LittleEndian.PutUint16(row[2*x:], v)
				}
			}
		}
	})
}
