package filter

import (
	"errors"
	"fmt"

	"github.com/mengelbart/pipemod"
	"github.com/mengelbart/pipemod/colorspace"
)

func geometryOf(vi pipemod.VideoInfo) (colorspace.Geometry, error) {
	if !vi.HasVideo() {
		return colorspace.Geometry{}, pipemod.ErrNoVideo
	}
	return colorspace.NewGeometry(vi.Descriptor(), vi.Width, vi.Height)
}

type flipped struct {
	child
	frame *pipemod.Frame
}

// FlipVertical turns every plane upside down.
func FlipVertical(c pipemod.Clip, _ pipemod.Args) (pipemod.Clip, error) {
	g, err := geometryOf(c.VideoInfo())
	if err != nil {
		return nil, err
	}
	return &flipped{child: child{c}, frame: pipemod.NewFrame(g, 1)}, nil
}

func (f *flipped) GetFrame(n int) (*pipemod.Frame, error) {
	src, err := f.child.GetFrame(n)
	if err != nil {
		return nil, err
	}
	for i, dst := range f.frame.Planes {
		for y := 0; y < dst.Height; y++ {
			copy(dst.Row(y), src.Planes[i].Row(dst.Height-1-y))
		}
	}
	return f.frame, nil
}

type frameBased struct {
	child
	info pipemod.VideoInfo
}

// AssumeFrameBased marks a field-based clip as frame-based without
// touching pixel data. Bottom field first is assumed.
func AssumeFrameBased(c pipemod.Clip, _ pipemod.Args) (pipemod.Clip, error) {
	vi := c.VideoInfo()
	if !vi.HasVideo() {
		return nil, pipemod.ErrNoVideo
	}
	vi.FieldBased = false
	vi.FieldOrder = pipemod.FieldOrderBFF
	return &frameBased{child: child{c}, info: vi}, nil
}

func (f *frameBased) VideoInfo() pipemod.VideoInfo {
	return f.info
}

type woven struct {
	child
	info     pipemod.VideoInfo
	fields   int
	topFirst bool
	frame    *pipemod.Frame
}

// Weave interleaves pairs of fields into frames of twice the height at half
// the frame rate. The field order decides which field of a pair supplies
// the even lines; unknown order is treated as bottom field first. An odd
// trailing field is woven with itself.
func Weave(c pipemod.Clip, _ pipemod.Args) (pipemod.Clip, error) {
	vi := c.VideoInfo()
	if !vi.HasVideo() {
		return nil, pipemod.ErrNoVideo
	}
	if !vi.FieldBased {
		return nil, errors.New("clip is not field-based")
	}
	if vi.NumFrames < 1 {
		return nil, errors.New("clip has no fields")
	}
	out := vi
	out.Height *= 2
	out.NumFrames = (vi.NumFrames + 1) / 2
	out.FPSNum, out.FPSDen = reduce(uint64(vi.FPSNum), 2*uint64(vi.FPSDen))
	out.FieldBased = false
	g, err := geometryOf(out)
	if err != nil {
		return nil, err
	}
	return &woven{
		child:    child{c},
		info:     out,
		fields:   vi.NumFrames,
		topFirst: vi.FieldOrder == pipemod.FieldOrderTFF,
		frame:    pipemod.NewFrame(g, 1),
	}, nil
}

func (w *woven) VideoInfo() pipemod.VideoInfo {
	return w.info
}

func (w *woven) GetFrame(n int) (*pipemod.Frame, error) {
	if n < 0 || n >= w.info.NumFrames {
		return nil, fmt.Errorf("%w: %v", pipemod.ErrFrameRange, n)
	}
	for field := 0; field < 2; field++ {
		src, err := w.child.GetFrame(min(2*n+field, w.fields-1))
		if err != nil {
			return nil, err
		}
		parity := field
		if !w.topFirst {
			parity = 1 - field
		}
		for i, dst := range w.frame.Planes {
			for y := parity; y < dst.Height; y += 2 {
				copy(dst.Row(y), src.Planes[i].Row(y/2))
			}
		}
	}
	return w.frame, nil
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// reduce returns num/den in lowest terms, scaled down further if either
// term does not fit 32 bits.
func reduce(num, den uint64) (uint32, uint32) {
	if g := gcd(num, den); g > 1 {
		num, den = num/g, den/g
	}
	for num > 1<<32-1 || den > 1<<32-1 {
		num, den = num>>1, den>>1
	}
	return uint32(num), uint32(den)
}
