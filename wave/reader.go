package wave

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

var ErrNotWave = errors.New("not a RIFF/WAVE stream")

// maxFormatChunk bounds the fmt chunk, which is 40 bytes for the largest
// format in use.
const maxFormatChunk = 64 << 10

// Info is the parsed format of a WAVE file.
type Info struct {
	// Format is the effective sample format. For extensible files this is
	// the tag taken from the sub-format GUID.
	Format        Format
	Extensible    bool
	Channels      int
	SampleRate    int
	BitsPerSample int
	ChannelMask   uint32

	// DataOffset is the position of the first sample byte.
	DataOffset int64
	// DataSize is the number of sample bytes.
	DataSize int64
}

// BlockAlign is the size of one sample frame in bytes.
func (i Info) BlockAlign() int {
	return i.Channels * i.BitsPerSample / 8
}

// Samples is the number of complete sample frames in the data chunk.
func (i Info) Samples() int64 {
	if i.BlockAlign() == 0 {
		return 0
	}
	return i.DataSize / int64(i.BlockAlign())
}

// ReadInfo parses the chunks of a WAVE file up to the start of the data
// chunk. size is the total size of the stream and is used when the data
// chunk length is unset (0xFFFFFFFF), as written by streaming encoders.
func ReadInfo(r io.ReadSeeker, size int64) (Info, error) {
	var info Info
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return info, fmt.Errorf("read riff header: %w", err)
	}
	if string(hdr[0:4]) != "RIFF" || string(hdr[8:12]) != "WAVE" {
		return info, ErrNotWave
	}

	offset := int64(12)
	haveFormat := false
	for {
		var ch [8]byte
		if _, err := io.ReadFull(r, ch[:]); err != nil {
			return info, fmt.Errorf("read chunk header: %w", err)
		}
		offset += 8
		id := string(ch[0:4])
		length := int64(binary.LittleEndian.Uint32(ch[4:8]))

		switch id {
		case "fmt ":
			if length < 16 {
				return info, fmt.Errorf("format chunk too short: %v", length)
			}
			if length > maxFormatChunk {
				return info, fmt.Errorf("format chunk too large: %v", length)
			}
			buf := make([]byte, length)
			if _, err := io.ReadFull(r, buf); err != nil {
				return info, fmt.Errorf("read format chunk: %w", err)
			}
			if err := parseFormat(&info, buf); err != nil {
				return info, err
			}
			haveFormat = true
			offset += length
			if length%2 == 1 {
				if _, err := r.Seek(1, io.SeekCurrent); err != nil {
					return info, err
				}
				offset++
			}
		case "data":
			if !haveFormat {
				return info, errors.New("data chunk before format chunk")
			}
			info.DataOffset = offset
			info.DataSize = length
			if length == math.MaxUint32 || offset+length > size {
				info.DataSize = size - offset
			}
			return info, nil
		default:
			skip := length + length%2
			if _, err := r.Seek(skip, io.SeekCurrent); err != nil {
				return info, fmt.Errorf("skip chunk %q: %w", id, err)
			}
			offset += skip
		}
	}
}

func parseFormat(info *Info, b []byte) error {
	tag := Format(binary.LittleEndian.Uint16(b[0:2]))
	info.Channels = int(binary.LittleEndian.Uint16(b[2:4]))
	info.SampleRate = int(binary.LittleEndian.Uint32(b[4:8]))
	info.BitsPerSample = int(binary.LittleEndian.Uint16(b[14:16]))
	info.Format = tag

	if tag == FormatExtensible {
		if len(b) < 40 {
			return fmt.Errorf("extensible format chunk too short: %v", len(b))
		}
		info.Extensible = true
		info.ChannelMask = binary.LittleEndian.Uint32(b[20:24])
		info.Format = Format(binary.LittleEndian.Uint16(b[24:26]))
	}

	switch info.Format {
	case FormatPCM:
		switch info.BitsPerSample {
		case 8, 16, 24, 32:
		default:
			return fmt.Errorf("unsupported PCM bit depth: %v", info.BitsPerSample)
		}
	case FormatIEEEFloat:
		if info.BitsPerSample != 32 {
			return fmt.Errorf("unsupported float bit depth: %v", info.BitsPerSample)
		}
	default:
		return fmt.Errorf("unsupported wave format: 0x%04x", uint16(info.Format))
	}
	if info.Channels == 0 || info.SampleRate == 0 {
		return errors.New("invalid format chunk: zero channels or sample rate")
	}
	return nil
}
