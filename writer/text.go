package writer

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/mengelbart/pipemod/colorspace"
)

var planeLabels = []string{"Y-plane", "U-plane", "V-plane", "A-plane"}

// TextDumper prints pixel values as tab separated decimal numbers, one line
// per row and a blank line after every plane. Planes of multi-plane formats
// are preceded by a label.
type TextDumper struct {
	geometry colorspace.Geometry
}

func NewTextDumper(g colorspace.Geometry) (*TextDumper, error) {
	if !g.Descriptor.Known() {
		return nil, colorspace.ErrUnknownColorspace
	}
	return &TextDumper{geometry: g}, nil
}

// Write dumps frames 0 to p.Target-1 and returns the number of frames that
// reached the sink. Like FrameWriter it stops quietly on write errors.
func (d *TextDumper) Write(sink io.Writer, src FrameSource, p *Progress) (int, error) {
	bw := bufio.NewWriter(sink)
	desc := d.geometry.Descriptor
	var num []byte
	for n := 0; int64(n) < p.Target; n++ {
		frame, err := src.GetFrame(n)
		if err != nil {
			return n, fmt.Errorf("frame %v: %w", n, err)
		}
		if len(frame.Planes) != len(d.geometry.Planes) {
			return n, fmt.Errorf("frame %v: got %v planes, want %v", n, len(frame.Planes), len(d.geometry.Planes))
		}
		fmt.Fprintf(bw, "frame %d\n", n)
		for i, pg := range d.geometry.Planes {
			if desc.Planes > 1 {
				fmt.Fprintf(bw, "%s\n", planeLabels[i])
			}
			pl := frame.Planes[i]
			for y := 0; y < pg.Height; y++ {
				row := pl.Row(y)
				for x := 0; x < pg.RowSize; x += desc.BytesPerSample {
					num = appendSample(num[:0], row[x:], desc)
					num = append(num, '\t')
					bw.Write(num)
				}
				bw.WriteByte('\n')
			}
			bw.WriteByte('\n')
		}
		if err := bw.Flush(); err != nil {
			return n, nil
		}
		p.Written = int64(n + 1)
	}
	return int(p.Target), nil
}

func appendSample(dst, b []byte, desc colorspace.Descriptor) []byte {
	switch {
	case desc.Float:
		return strconv.AppendFloat(dst, float64(math.Float32frombits(binary.LittleEndian.Uint32(b))), 'f', 8, 32)
	case desc.BytesPerSample == 2:
		return strconv.AppendUint(dst, uint64(binary.LittleEndian.Uint16(b)), 10)
	default:
		return strconv.AppendUint(dst, uint64(b[0]), 10)
	}
}
