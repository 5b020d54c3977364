// Package y4m implements YUV4MPEG2 stream framing.
package y4m

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	signature = "YUV4MPEG2"

	// FrameHeader precedes the payload of every frame.
	FrameHeader = "FRAME\n"
	// FrameHeaderSize is len(FrameHeader).
	FrameHeaderSize = 6

	maxHeaderLength = 1024
)

var ErrInvalidHeader = errors.New("invalid yuv4mpeg2 header")

// StreamHeader holds the parameters of the stream header line.
type StreamHeader struct {
	Width  int
	Height int
	FPSNum uint32
	FPSDen uint32
	// Interlace is one of 'p', 't', 'b' or 'm'.
	Interlace byte
	SARNum    int
	SARDen    int
	// Colorspace is the value of the C parameter, e.g. "420mpeg2".
	Colorspace string
}

// String returns the header line including the trailing newline.
func (h StreamHeader) String() string {
	interlace := h.Interlace
	if interlace == 0 {
		interlace = 'p'
	}
	return fmt.Sprintf("%s W%d H%d F%d:%d I%c A%d:%d C%s\n",
		signature, h.Width, h.Height, h.FPSNum, h.FPSDen, interlace,
		h.SARNum, h.SARDen, h.Colorspace)
}

// ParseStreamHeader parses a header line without its trailing newline.
// Unknown parameters (X tags) are ignored.
func ParseStreamHeader(line string) (StreamHeader, error) {
	h := StreamHeader{
		FPSNum:    25,
		FPSDen:    1,
		Interlace: 'p',
	}
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != signature {
		return h, ErrInvalidHeader
	}
	for _, f := range fields[1:] {
		val := f[1:]
		var err error
		switch f[0] {
		case 'W':
			h.Width, err = strconv.Atoi(val)
		case 'H':
			h.Height, err = strconv.Atoi(val)
		case 'F':
			var num, den uint64
			num, den, err = parseRatio(val, 32)
			h.FPSNum, h.FPSDen = uint32(num), uint32(den)
		case 'I':
			if len(val) != 1 || !strings.Contains("ptbm?", val) {
				err = fmt.Errorf("unknown interlace mode %q", val)
				break
			}
			h.Interlace = val[0]
			if h.Interlace == '?' {
				h.Interlace = 'p'
			}
		case 'A':
			var num, den uint64
			num, den, err = parseRatio(val, 31)
			h.SARNum, h.SARDen = int(num), int(den)
		case 'C':
			h.Colorspace = val
		}
		if err != nil {
			return h, fmt.Errorf("%w: parameter %q: %v", ErrInvalidHeader, f, err)
		}
	}
	if h.Width <= 0 || h.Height <= 0 {
		return h, fmt.Errorf("%w: missing frame size", ErrInvalidHeader)
	}
	if h.FPSNum == 0 || h.FPSDen == 0 {
		return h, fmt.Errorf("%w: invalid frame rate", ErrInvalidHeader)
	}
	return h, nil
}

func parseRatio(s string, bitSize int) (uint64, uint64, error) {
	n, d, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, errors.New("missing ':'")
	}
	num, err := strconv.ParseUint(n, 10, bitSize)
	if err != nil {
		return 0, 0, err
	}
	den, err := strconv.ParseUint(d, 10, bitSize)
	if err != nil {
		return 0, 0, err
	}
	return num, den, nil
}

func readLine(r *bufio.Reader) (string, error) {
	var sb strings.Builder
	for sb.Len() < maxHeaderLength {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == '\n' {
			return sb.String(), nil
		}
		sb.WriteByte(b)
	}
	return "", fmt.Errorf("%w: header line too long", ErrInvalidHeader)
}
