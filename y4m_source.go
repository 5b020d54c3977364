package pipemod

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mengelbart/pipemod/colorspace"
	"github.com/mengelbart/pipemod/y4m"
)

// Y4MSource is a clip backed by a YUV4MPEG2 file. Frames are read
// sequentially; requesting an earlier frame rewinds the file.
type Y4MSource struct {
	file     io.ReadSeekCloser
	reader   *y4m.Reader
	header   y4m.StreamHeader
	geometry colorspace.Geometry
	info     VideoInfo

	buf  []byte
	next int
	last *Frame
}

// OpenY4M opens a YUV4MPEG2 file. "-" reads standard input, which is
// spooled to a temporary file first because the frame count must be known
// up front.
func OpenY4M(path string) (*Y4MSource, error) {
	var file *os.File
	var err error
	if path == "-" {
		file, err = spool(os.Stdin)
	} else {
		file, err = os.Open(path)
	}
	if err != nil {
		return nil, err
	}
	s, err := NewY4MSource(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return s, nil
}

func spool(r io.Reader) (*os.File, error) {
	tmp, err := os.CreateTemp("", "pipemod-*.y4m")
	if err != nil {
		return nil, err
	}
	// the file stays readable through the open descriptor
	os.Remove(tmp.Name())
	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("spool input: %w", err)
	}
	slog.Debug("spooled input", "bytes", n)
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, err
	}
	return tmp, nil
}

// NewY4MSource reads the stream header from file and counts its frames.
// Frames go through y4m.Reader, which hands 8-bit chroma layouts to
// github.com/mengelbart/y4m.
func NewY4MSource(file io.ReadSeekCloser) (*Y4MSource, error) {
	reader, err := y4m.NewReader(file)
	if err != nil {
		return nil, err
	}
	h := reader.Header()
	pixelType, depth, err := colorspace.FromY4M(h.Colorspace)
	if err != nil {
		return nil, err
	}
	g, err := colorspace.NewGeometry(colorspace.Lookup(pixelType), h.Width, h.Height)
	if err != nil {
		return nil, err
	}
	reader.SetFrameSize(g.FrameSize())

	s := &Y4MSource{
		file:     file,
		reader:   reader,
		header:   h,
		geometry: g,
		buf:      make([]byte, g.FrameSize()),
	}
	frames, err := s.countFrames()
	if err != nil {
		return nil, err
	}
	s.info = VideoInfo{
		Width:     h.Width,
		Height:    h.Height,
		FPSNum:    h.FPSNum,
		FPSDen:    h.FPSDen,
		NumFrames: frames,
		PixelType: pixelType,
	}
	switch h.Interlace {
	case 't':
		s.info.FieldOrder = FieldOrderTFF
	case 'b':
		s.info.FieldOrder = FieldOrderBFF
	}
	slog.Info("opened y4m source",
		"width", h.Width,
		"height", h.Height,
		"colorspace", h.Colorspace,
		"depth", depth,
		"frames", frames,
	)
	return s, nil
}

func (s *Y4MSource) countFrames() (int, error) {
	n := 0
	for {
		err := s.reader.ReadFrame(s.buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("frame %v: %w", n, err)
		}
		n++
	}
	return n, s.rewind()
}

func (s *Y4MSource) rewind() error {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	reader, err := y4m.NewReader(s.file)
	if err != nil {
		return err
	}
	reader.SetFrameSize(s.geometry.FrameSize())
	s.reader = reader
	s.next = 0
	s.last = nil
	return nil
}

// Header returns the stream header of the input.
func (s *Y4MSource) Header() y4m.StreamHeader {
	return s.header
}

func (s *Y4MSource) VideoInfo() VideoInfo {
	return s.info
}

func (s *Y4MSource) AudioInfo() AudioInfo {
	return AudioInfo{}
}

func (s *Y4MSource) GetFrame(n int) (*Frame, error) {
	if n < 0 || n >= s.info.NumFrames {
		return nil, fmt.Errorf("%w: %v", ErrFrameRange, n)
	}
	if s.last != nil && n == s.next-1 {
		return s.last, nil
	}
	if n < s.next {
		if err := s.rewind(); err != nil {
			return nil, err
		}
	}
	for s.next <= n {
		if err := s.reader.ReadFrame(s.buf); err != nil {
			return nil, fmt.Errorf("frame %v: %w", s.next, err)
		}
		s.next++
	}
	s.last = frameFromBuffer(s.geometry, s.buf)
	return s.last, nil
}

func (s *Y4MSource) GetAudio([]byte, int64, int64) error {
	return ErrNoAudio
}

func (s *Y4MSource) Close() error {
	return s.file.Close()
}
