package writer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mengelbart/pipemod"
	"github.com/mengelbart/pipemod/colorspace"
	"github.com/mengelbart/pipemod/y4m"
	pionlogging "github.com/pion/logging"
	"golang.org/x/time/rate"
)

// FrameSource delivers frames by index.
type FrameSource interface {
	GetFrame(n int) (*pipemod.Frame, error)
}

type FrameWriterOption func(*FrameWriter) error

// WithFraming prefixes every frame with the YUV4MPEG2 frame marker.
func WithFraming() FrameWriterOption {
	return func(w *FrameWriter) error {
		w.framing = true
		return nil
	}
}

// WithPacing limits output to fpsNum/fpsDen frames per second.
func WithPacing(fpsNum, fpsDen uint32) FrameWriterOption {
	return func(w *FrameWriter) error {
		if fpsNum == 0 || fpsDen == 0 {
			return fmt.Errorf("invalid frame rate %v/%v", fpsNum, fpsDen)
		}
		w.pacer = rate.NewLimiter(rate.Limit(float64(fpsNum)/float64(fpsDen)), 1)
		return nil
	}
}

// WithLogger sets the logger for progress reports.
func WithLogger(log pionlogging.LeveledLogger) FrameWriterOption {
	return func(w *FrameWriter) error {
		w.log = log
		return nil
	}
}

// WithReportInterval sets the minimum time between progress reports.
func WithReportInterval(d time.Duration) FrameWriterOption {
	return func(w *FrameWriter) error {
		w.interval = d
		return nil
	}
}

// FrameWriter packs frames of one geometry into contiguous plane data and
// writes each frame with a single call to the sink.
type FrameWriter struct {
	geometry colorspace.Geometry
	framing  bool
	pacer    *rate.Limiter
	log      pionlogging.LeveledLogger
	interval time.Duration

	scratch []byte
}

func NewFrameWriter(g colorspace.Geometry, opts ...FrameWriterOption) (*FrameWriter, error) {
	if !g.Descriptor.Known() {
		return nil, colorspace.ErrUnknownColorspace
	}
	w := &FrameWriter{
		geometry: g,
		interval: time.Second,
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	size := g.FrameSize()
	if w.framing {
		size += y4m.FrameHeaderSize
	}
	w.scratch = make([]byte, size)
	if w.framing {
		copy(w.scratch, y4m.FrameHeader)
	}
	return w, nil
}

// FrameSize returns the number of bytes written per frame.
func (w *FrameWriter) FrameSize() int {
	return len(w.scratch)
}

// Write streams frames 0 to p.Target-1 of src to sink and returns the
// number of frames written completely. A short or failed write stops the
// stream without an error. Errors come from src, from malformed frames or
// from ctx while waiting for the pacer.
func (w *FrameWriter) Write(ctx context.Context, sink io.Writer, src FrameSource, p *Progress) (int, error) {
	r := newReporter(w.log, w.interval)
	for n := 0; int64(n) < p.Target; n++ {
		if w.pacer != nil {
			if err := w.pacer.Wait(ctx); err != nil {
				return n, err
			}
		}
		frame, err := src.GetFrame(n)
		if err != nil {
			return n, fmt.Errorf("frame %v: %w", n, err)
		}
		buf, err := w.pack(frame)
		if err != nil {
			return n, fmt.Errorf("frame %v: %w", n, err)
		}
		written, err := sink.Write(buf)
		if written != len(buf) {
			r.log.Warnf("frame %v: wrote %v of %v bytes: %v", n, written, len(buf), err)
			return n, nil
		}
		p.Written = int64(n + 1)
		r.report("wrote %v of %v frames [%v%%]", p.Written, p.Target, p.Percent())
	}
	return int(p.Target), nil
}

// pack returns the payload of frame without pitch padding, preceded by the
// frame marker if framing is on.
func (w *FrameWriter) pack(frame *pipemod.Frame) ([]byte, error) {
	if len(frame.Planes) != len(w.geometry.Planes) {
		return nil, fmt.Errorf("got %v planes, want %v", len(frame.Planes), len(w.geometry.Planes))
	}
	// a single unpadded plane can be written as is
	if !w.framing && len(frame.Planes) == 1 {
		pl, pg := frame.Planes[0], w.geometry.Planes[0]
		if pl.Pitch == pg.RowSize && len(pl.Data) >= pg.Size && pl.Height == pg.Height {
			return pl.Data[:pg.Size], nil
		}
	}
	off := 0
	if w.framing {
		off = y4m.FrameHeaderSize
	}
	for i, pg := range w.geometry.Planes {
		pl := frame.Planes[i]
		if pl.RowSize != pg.RowSize || pl.Height != pg.Height {
			return nil, fmt.Errorf("plane %v is %vx%v bytes, want %vx%v", i, pl.RowSize, pl.Height, pg.RowSize, pg.Height)
		}
		if need := (pg.Height-1)*pl.Pitch + pg.RowSize; pg.Height > 0 && (pl.Pitch < pg.RowSize || len(pl.Data) < need) {
			return nil, fmt.Errorf("plane %v holds %v bytes at pitch %v, want at least %v", i, len(pl.Data), pl.Pitch, need)
		}
		if pl.Pitch == pl.RowSize {
			off += copy(w.scratch[off:], pl.Data[:pg.Size])
			continue
		}
		for y := 0; y < pg.Height; y++ {
			off += copy(w.scratch[off:], pl.Row(y))
		}
	}
	return w.scratch, nil
}
