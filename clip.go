// Package pipemod streams decoded clips to standard output as YUV4MPEG2,
// raw video, WAV or raw audio.
//
// The root package defines the clip abstraction every source implements
// and a few sources: YUV4MPEG2 and WAVE files and a synthetic test source.
// Filters live in package filter, the writers in package writer and the
// action selection in package pipeline.
package pipemod

import (
	"errors"

	"github.com/mengelbart/pipemod/colorspace"
)

var (
	ErrNoVideo       = errors.New("clip has no video")
	ErrNoAudio       = errors.New("clip has no audio")
	ErrFrameRange    = errors.New("frame number out of range")
	ErrNotSequential = errors.New("source supports sequential access only")
)

type FieldOrder int

const (
	FieldOrderUnknown FieldOrder = iota
	FieldOrderTFF
	FieldOrderBFF
)

func (o FieldOrder) String() string {
	switch o {
	case FieldOrderTFF:
		return "assumed top field first"
	case FieldOrderBFF:
		return "assumed bottom field first"
	default:
		return "not specified"
	}
}

// VideoInfo describes the video stream of a clip.
type VideoInfo struct {
	Width     int
	Height    int
	FPSNum    uint32
	FPSDen    uint32
	NumFrames int
	PixelType colorspace.PixelType
	// FieldBased clips deliver separated fields instead of frames.
	FieldBased bool
	FieldOrder FieldOrder
}

func (v VideoInfo) HasVideo() bool {
	return v.Width > 0 && v.Height > 0 && v.NumFrames > 0
}

// Descriptor returns the colorspace descriptor of the pixel type.
func (v VideoInfo) Descriptor() colorspace.Descriptor {
	return colorspace.Lookup(v.PixelType)
}

// Duration returns the clip length in seconds.
func (v VideoInfo) Duration() float64 {
	if v.FPSNum == 0 {
		return 0
	}
	return float64(v.NumFrames) * float64(v.FPSDen) / float64(v.FPSNum)
}

type SampleType int

const (
	SampleTypeNone SampleType = iota
	SampleTypeU8
	SampleTypeS16
	SampleTypeS24
	SampleTypeS32
	SampleTypeFloat
)

// BytesPerSample returns the size of one sample of one channel.
func (t SampleType) BytesPerSample() int {
	switch t {
	case SampleTypeU8:
		return 1
	case SampleTypeS16:
		return 2
	case SampleTypeS24:
		return 3
	case SampleTypeS32, SampleTypeFloat:
		return 4
	default:
		return 0
	}
}

func (t SampleType) IsFloat() bool {
	return t == SampleTypeFloat
}

func (t SampleType) String() string {
	switch t {
	case SampleTypeU8:
		return "8bit"
	case SampleTypeS16:
		return "16bit"
	case SampleTypeS24:
		return "24bit"
	case SampleTypeS32:
		return "32bit"
	case SampleTypeFloat:
		return "float"
	default:
		return "none"
	}
}

// AudioInfo describes the audio stream of a clip.
type AudioInfo struct {
	SampleRate int
	Channels   int
	SampleType SampleType
	// NumSamples counts sample frames, i.e. samples per channel.
	NumSamples int64
	// ChannelMask is the speaker layout if the source knows it.
	ChannelMask uint32
}

func (a AudioInfo) HasAudio() bool {
	return a.SampleRate > 0 && a.Channels > 0 && a.NumSamples > 0
}

// BytesPerChannelSample returns the size of one sample of one channel.
func (a AudioInfo) BytesPerChannelSample() int {
	return a.SampleType.BytesPerSample()
}

// BlockAlign returns the size of one sample frame.
func (a AudioInfo) BlockAlign() int {
	return a.Channels * a.BytesPerChannelSample()
}

// Duration returns the audio length in seconds.
func (a AudioInfo) Duration() float64 {
	if a.SampleRate == 0 {
		return 0
	}
	return float64(a.NumSamples) / float64(a.SampleRate)
}

// Clip is a decoded audio/video source. Frames and samples are requested
// by index; most sources are cheapest when read sequentially.
type Clip interface {
	VideoInfo() VideoInfo
	AudioInfo() AudioInfo

	// GetFrame returns frame n. The frame is only valid until the next call.
	GetFrame(n int) (*Frame, error)

	// GetAudio fills buf with count sample frames starting at start.
	// Samples outside the clip are silence.
	GetAudio(buf []byte, start, count int64) error

	Close() error
}

// Args are the named arguments of a filter invocation.
type Args map[string]any

// FilterInvoker applies a named filter to a clip and returns the filtered
// clip.
type FilterInvoker interface {
	Invoke(name string, c Clip, args Args) (Clip, error)
}
