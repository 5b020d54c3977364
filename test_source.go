package pipemod

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/mengelbart/pipemod/colorspace"
)

// TestSourceConfig configures the synthetic source.
type TestSourceConfig struct {
	Width     int
	Height    int
	FPSNum    uint32
	FPSDen    uint32
	NumFrames int
	PixelType colorspace.PixelType
	// Align pads every row of generated frames to a multiple of Align
	// bytes, like a decoder aligning its buffers would.
	Align int

	SampleRate int
	Channels   int
	SampleType SampleType
	NumSamples int64
	// ToneHz is the frequency of the generated sine.
	ToneHz float64
}

// DefaultTestSourceConfig is a 10 second NTSC clip with stereo audio.
var DefaultTestSourceConfig = TestSourceConfig{
	Width:      720,
	Height:     480,
	FPSNum:     30000,
	FPSDen:     1001,
	NumFrames:  300,
	PixelType:  colorspace.YV12,
	Align:      64,
	SampleRate: 48000,
	Channels:   2,
	SampleType: SampleTypeS16,
	NumSamples: 480480,
	ToneHz:     440,
}

// TestSource generates a moving gradient and a sine tone. Frames are
// computed on request, so any frame can be fetched in any order.
type TestSource struct {
	cfg      TestSourceConfig
	geometry colorspace.Geometry
	frame    *Frame
}

func NewTestSource(cfg TestSourceConfig) (*TestSource, error) {
	s := &TestSource{cfg: cfg}
	if cfg.NumFrames > 0 {
		g, err := colorspace.NewGeometry(colorspace.Lookup(cfg.PixelType), cfg.Width, cfg.Height)
		if err != nil {
			return nil, fmt.Errorf("test source: %w", err)
		}
		if cfg.FPSNum == 0 || cfg.FPSDen == 0 {
			return nil, fmt.Errorf("test source: invalid frame rate %v/%v", cfg.FPSNum, cfg.FPSDen)
		}
		s.geometry = g
		s.frame = NewFrame(g, cfg.Align)
	}
	if cfg.NumSamples > 0 && (cfg.SampleRate <= 0 || cfg.Channels <= 0 || cfg.SampleType.BytesPerSample() == 0) {
		return nil, fmt.Errorf("test source: invalid audio format")
	}
	return s, nil
}

func (s *TestSource) VideoInfo() VideoInfo {
	if s.frame == nil {
		return VideoInfo{}
	}
	return VideoInfo{
		Width:     s.cfg.Width,
		Height:    s.cfg.Height,
		FPSNum:    s.cfg.FPSNum,
		FPSDen:    s.cfg.FPSDen,
		NumFrames: s.cfg.NumFrames,
		PixelType: s.cfg.PixelType,
	}
}

func (s *TestSource) AudioInfo() AudioInfo {
	if s.cfg.NumSamples <= 0 {
		return AudioInfo{}
	}
	return AudioInfo{
		SampleRate: s.cfg.SampleRate,
		Channels:   s.cfg.Channels,
		SampleType: s.cfg.SampleType,
		NumSamples: s.cfg.NumSamples,
	}
}

// TestPixel returns the 8-bit pattern value of component c of pixel (x, y)
// in plane p of frame n.
func TestPixel(n, p, c, x, y int) byte {
	return byte(x + 2*y + 3*n + 64*p + 85*c)
}

func (s *TestSource) GetFrame(n int) (*Frame, error) {
	if n < 0 || n >= s.cfg.NumFrames {
		return nil, fmt.Errorf("%w: %v", ErrFrameRange, n)
	}
	d := s.geometry.Descriptor
	for p, plane := range s.frame.Planes {
		width := s.geometry.Planes[p].Width
		for y := 0; y < plane.Height; y++ {
			row := plane.Row(y)
			switch {
			case d.Packed:
				for x := 0; x < width; x++ {
					for c := 0; c < d.PixelBytes; c++ {
						row[x*d.PixelBytes+c] = TestPixel(n, p, c, x, y)
					}
				}
			case d.Float:
				for x := 0; x < width; x++ {
					v := float32(TestPixel(n, p, 0, x, y)) / 255
					if p == 1 || p == 2 {
						v -= 0.5
					}
					binary.LittleEndian.PutUint32(row[4*x:], math.Float32bits(v))
				}
			case d.BytesPerSample == 2:
				for x := 0; x < width; x++ {
					binary.LittleEndian.PutUint16(row[2*x:], uint16(TestPixel(n, p, 0, x, y))<<8)
				}
			default:
				for x := 0; x < width; x++ {
					row[x] = TestPixel(n, p, 0, x, y)
				}
			}
		}
	}
	return s.frame, nil
}

func (s *TestSource) GetAudio(buf []byte, start, count int64) error {
	a := s.AudioInfo()
	size := int64(a.BlockAlign())
	if int64(len(buf)) < count*size {
		return fmt.Errorf("audio buffer too small: %v < %v", len(buf), count*size)
	}
	bps := a.BytesPerChannelSample()
	for i := int64(0); i < count; i++ {
		frame := buf[i*size : (i+1)*size]
		pos := start + i
		if pos < 0 || pos >= a.NumSamples {
			Silence(frame, a.SampleType)
			continue
		}
		v := 0.5 * math.Sin(2*math.Pi*s.cfg.ToneHz*float64(pos)/float64(a.SampleRate))
		for c := 0; c < a.Channels; c++ {
			EncodeSample(frame[c*bps:], a.SampleType, v)
		}
	}
	return nil
}

func (s *TestSource) Close() error {
	return nil
}
