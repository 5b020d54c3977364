package y4m

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	y4mlib "github.com/mengelbart/y4m"
)

var ErrFrameSize = errors.New("yuv4mpeg2 frame size mismatch")

// Reader reads frames of a YUV4MPEG2 stream sequentially.
//
// Streams in one of the 8-bit chroma layouts known to github.com/mengelbart/y4m
// are decoded by that library. Luma-only and high bit depth streams ("mono",
// "mono16", "420p10", ...) have no ChromaSubsamplingType there and are
// framed by the reader itself.
type Reader struct {
	header    StreamHeader
	headerLen int
	frameSize int

	stream *y4mlib.Reader
	r      *bufio.Reader
}

// NewReader parses the stream header from r. The frame size depends on the
// colorspace and must be set by the caller with SetFrameSize.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReaderSize(r, maxHeaderLength+1)
	line, err := peekLine(br)
	if err != nil {
		return nil, err
	}
	h, err := ParseStreamHeader(line)
	if err != nil {
		return nil, err
	}
	reader := &Reader{
		header:    h,
		headerLen: len(line) + 1,
	}
	if !libraryColorspace(h.Colorspace) {
		if _, err := br.Discard(reader.headerLen); err != nil {
			return nil, err
		}
		reader.r = br
		return reader, nil
	}

	stream, sh, err := y4mlib.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	tag, ok := chromaTags[sh.ChromaSubsampling]
	if !ok {
		return nil, fmt.Errorf("%w: unexpected chroma subsampling %v", ErrInvalidHeader, sh.ChromaSubsampling)
	}
	reader.header.Width = sh.Width
	reader.header.Height = sh.Height
	if sh.FrameRate.Numerator > 0 && sh.FrameRate.Denominator > 0 {
		reader.header.FPSNum = uint32(sh.FrameRate.Numerator)
		reader.header.FPSDen = uint32(sh.FrameRate.Denominator)
	}
	reader.header.Colorspace = tag
	reader.stream = stream
	return reader, nil
}

// chromaTags maps the library's subsampling types to C parameter values.
var chromaTags = map[y4mlib.ChromaSubsamplingType]string{
	y4mlib.CST411:      "411",
	y4mlib.CST420:      "420",
	y4mlib.CST420jpeg:  "420jpeg",
	y4mlib.CST420mpeg2: "420mpeg2",
	y4mlib.CST420paldv: "420paldv",
	y4mlib.CST422:      "422",
	y4mlib.CST444:      "444",
	y4mlib.CST444Alpha: "444alpha",
}

func libraryColorspace(tag string) bool {
	if tag == "" {
		return true
	}
	for _, t := range chromaTags {
		if t == tag {
			return true
		}
	}
	return false
}

// Header returns the parsed stream header.
func (r *Reader) Header() StreamHeader {
	return r.header
}

// HeaderLength is the size of the stream header line in bytes.
func (r *Reader) HeaderLength() int {
	return r.headerLen
}

// SetFrameSize sets the payload size of every frame.
func (r *Reader) SetFrameSize(n int) {
	r.frameSize = n
}

// ReadFrame reads the next frame into buf, which must hold at least the
// configured frame size. It returns io.EOF after the last frame.
func (r *Reader) ReadFrame(buf []byte) error {
	if len(buf) < r.frameSize {
		return io.ErrShortBuffer
	}
	if r.stream != nil {
		frame, _, err := r.stream.ReadNextFrame()
		if err == io.EOF {
			return io.EOF
		}
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}
		if len(frame) != r.frameSize {
			return fmt.Errorf("%w: got %v bytes, want %v", ErrFrameSize, len(frame), r.frameSize)
		}
		copy(buf, frame)
		return nil
	}

	line, err := readLine(r.r)
	if err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return fmt.Errorf("read frame header: %w", err)
	}
	if line != "FRAME" && !strings.HasPrefix(line, "FRAME ") {
		return fmt.Errorf("%w: unexpected frame header %q", ErrInvalidHeader, line)
	}
	if _, err := io.ReadFull(r.r, buf[:r.frameSize]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("read frame payload: %w", err)
	}
	return nil
}

// peekLine returns the stream header line without consuming it.
func peekLine(br *bufio.Reader) (string, error) {
	buf, err := br.Peek(maxHeaderLength + 1)
	i := bytes.IndexByte(buf, '\n')
	if i >= 0 {
		return string(buf[:i]), nil
	}
	if len(buf) > maxHeaderLength {
		return "", fmt.Errorf("%w: header line too long", ErrInvalidHeader)
	}
	if err == nil || len(buf) > 0 {
		err = io.ErrUnexpectedEOF
	}
	return "", err
}
