package pipemod

import (
	"github.com/mengelbart/pipemod/colorspace"
)

// Plane is one rectangular channel of a frame. Rows start every Pitch
// bytes; only the first RowSize bytes of a row are payload.
type Plane struct {
	Data    []byte
	Pitch   int
	RowSize int
	Height  int
}

// Row returns the payload bytes of row y.
func (p Plane) Row(y int) []byte {
	off := y * p.Pitch
	return p.Data[off : off+p.RowSize]
}

// Frame holds the planes of one picture in the order luma (or packed),
// U, V, alpha.
type Frame struct {
	Planes []Plane
}

// NewFrame allocates a frame for geometry g whose rows are padded to a
// multiple of align bytes. An align of 0 or 1 allocates unpadded rows.
func NewFrame(g colorspace.Geometry, align int) *Frame {
	f := &Frame{Planes: make([]Plane, len(g.Planes))}
	for i, pg := range g.Planes {
		pitch := pg.RowSize
		if align > 1 {
			pitch = (pitch + align - 1) / align * align
		}
		f.Planes[i] = Plane{
			Data:    make([]byte, pitch*pg.Height),
			Pitch:   pitch,
			RowSize: pg.RowSize,
			Height:  pg.Height,
		}
	}
	return f
}

// frameFromBuffer slices contiguous plane payloads out of buf.
func frameFromBuffer(g colorspace.Geometry, buf []byte) *Frame {
	f := &Frame{Planes: make([]Plane, len(g.Planes))}
	off := 0
	for i, pg := range g.Planes {
		f.Planes[i] = Plane{
			Data:    buf[off : off+pg.Size],
			Pitch:   pg.RowSize,
			RowSize: pg.RowSize,
			Height:  pg.Height,
		}
		off += pg.Size
	}
	return f
}
