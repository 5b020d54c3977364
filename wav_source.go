package pipemod

import (
	"fmt"
	"io"
	"os"

	"github.com/mengelbart/pipemod/wave"
)

// WAVSource is an audio-only clip backed by a RIFF/WAVE file.
type WAVSource struct {
	file io.ReaderAt
	c    io.Closer
	wav  wave.Info
	info AudioInfo
}

// OpenWAV opens a WAVE file.
func OpenWAV(path string) (*WAVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	s, err := NewWAVSource(f, st.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	s.c = f
	return s, nil
}

type readSeekerAt interface {
	io.ReadSeeker
	io.ReaderAt
}

// NewWAVSource parses the header of a WAVE stream of the given size.
func NewWAVSource(r readSeekerAt, size int64) (*WAVSource, error) {
	wi, err := wave.ReadInfo(r, size)
	if err != nil {
		return nil, err
	}
	var st SampleType
	switch {
	case wi.Format == wave.FormatIEEEFloat:
		st = SampleTypeFloat
	case wi.BitsPerSample == 8:
		st = SampleTypeU8
	case wi.BitsPerSample == 16:
		st = SampleTypeS16
	case wi.BitsPerSample == 24:
		st = SampleTypeS24
	default:
		st = SampleTypeS32
	}
	return &WAVSource{
		file: r,
		wav:  wi,
		info: AudioInfo{
			SampleRate:  wi.SampleRate,
			Channels:    wi.Channels,
			SampleType:  st,
			NumSamples:  wi.Samples(),
			ChannelMask: wi.ChannelMask,
		},
	}, nil
}

func (s *WAVSource) VideoInfo() VideoInfo {
	return VideoInfo{}
}

func (s *WAVSource) AudioInfo() AudioInfo {
	return s.info
}

func (s *WAVSource) GetFrame(int) (*Frame, error) {
	return nil, ErrNoVideo
}

func (s *WAVSource) GetAudio(buf []byte, start, count int64) error {
	block := int64(s.info.BlockAlign())
	if int64(len(buf)) < count*block {
		return fmt.Errorf("audio buffer too small: %v < %v", len(buf), count*block)
	}
	buf = buf[:count*block]
	Silence(buf, s.info.SampleType)

	first, last := max(start, 0), min(start+count, s.info.NumSamples)
	if first >= last {
		return nil
	}
	dst := buf[(first-start)*block : (last-start)*block]
	_, err := s.file.ReadAt(dst, s.wav.DataOffset+first*block)
	if err != nil && err != io.EOF {
		return fmt.Errorf("read samples %v-%v: %w", first, last, err)
	}
	return nil
}

func (s *WAVSource) Close() error {
	if s.c != nil {
		return s.c.Close()
	}
	return nil
}
