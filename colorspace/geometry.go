package colorspace

import (
	"errors"
	"fmt"
)

var ErrUnknownColorspace = errors.New("unknown colorspace")

// PlaneGeometry is the logical size of one plane, without pitch padding.
type PlaneGeometry struct {
	// Width and Height are in pixels (samples for planar formats).
	Width  int
	Height int
	// RowSize is the number of payload bytes per row.
	RowSize int
	// Size is RowSize * Height.
	Size int
}

// Geometry describes every plane of a frame with a given pixel type and
// size. Plane 0 is luma (or the packed plane), then U, V and alpha.
type Geometry struct {
	Descriptor Descriptor
	Width      int
	Height     int
	Planes     []PlaneGeometry
}

// NewGeometry derives the plane layout of a w x h frame of pixel type d.
func NewGeometry(d Descriptor, w, h int) (Geometry, error) {
	if !d.Known() {
		return Geometry{}, ErrUnknownColorspace
	}
	if w <= 0 || h <= 0 {
		return Geometry{}, fmt.Errorf("invalid frame size %vx%v", w, h)
	}
	g := Geometry{
		Descriptor: d,
		Width:      w,
		Height:     h,
		Planes:     make([]PlaneGeometry, d.Planes),
	}
	for i := range g.Planes {
		pw, ph := w, h
		// the alpha plane is never subsampled
		if i == 1 || i == 2 {
			pw >>= d.ShiftH
			ph >>= d.ShiftV
		}
		rowSize := pw * d.BytesPerSample
		if d.Packed {
			rowSize = pw * d.PixelBytes
		}
		g.Planes[i] = PlaneGeometry{
			Width:   pw,
			Height:  ph,
			RowSize: rowSize,
			Size:    rowSize * ph,
		}
	}
	return g, nil
}

// FrameSize is the number of payload bytes in one frame.
func (g Geometry) FrameSize() int {
	size := 0
	for _, p := range g.Planes {
		size += p.Size
	}
	return size
}
