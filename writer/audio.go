package writer

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mengelbart/pipemod"
	pionlogging "github.com/pion/logging"
)

// AudioSource delivers sample frames by position.
type AudioSource interface {
	GetAudio(buf []byte, start, count int64) error
}

// FirstChunk returns the size of the first chunk when total samples are
// written in chunks of rate samples. The remainder goes first so that all
// later chunks are full; it is never zero unless total is.
func FirstChunk(total, rate int64) int64 {
	if total <= 0 || rate <= 0 {
		return max(total, 0)
	}
	if first := total % rate; first != 0 {
		return first
	}
	return min(rate, total)
}

// AudioWriter writes an optional container header followed by one second
// chunks of samples.
type AudioWriter struct {
	info   pipemod.AudioInfo
	header []byte
	log    pionlogging.LeveledLogger

	scratch []byte
}

func NewAudioWriter(info pipemod.AudioInfo, header []byte, log pionlogging.LeveledLogger) (*AudioWriter, error) {
	if info.SampleRate <= 0 || info.BlockAlign() <= 0 {
		return nil, errors.New("invalid audio format")
	}
	return &AudioWriter{
		info:    info,
		header:  header,
		log:     log,
		scratch: make([]byte, info.SampleRate*info.BlockAlign()),
	}, nil
}

// Write streams samples 0 to p.Target-1 of src to sink and returns the
// number of samples written completely. As with frames, a short write
// stops without an error.
func (w *AudioWriter) Write(sink io.Writer, src AudioSource, p *Progress) (int64, error) {
	r := newReporter(w.log, time.Second)
	if len(w.header) > 0 {
		n, err := sink.Write(w.header)
		if n != len(w.header) {
			r.log.Warnf("wrote %v of %v header bytes: %v", n, len(w.header), err)
			return 0, nil
		}
	}
	block := int64(w.info.BlockAlign())
	rate := int64(w.info.SampleRate)
	chunk := FirstChunk(p.Target, rate)
	for p.Written < p.Target {
		buf := w.scratch[:chunk*block]
		if err := src.GetAudio(buf, p.Written, chunk); err != nil {
			return p.Written, fmt.Errorf("samples %v-%v: %w", p.Written, p.Written+chunk, err)
		}
		n, err := sink.Write(buf)
		if n != len(buf) {
			r.log.Warnf("samples %v-%v: wrote %v of %v bytes: %v", p.Written, p.Written+chunk, n, len(buf), err)
			return p.Written, nil
		}
		p.Written += chunk
		r.report("wrote %.3f seconds [%v%%]", float64(p.Written)/float64(rate), p.Percent())
		chunk = min(rate, p.Target-p.Written)
	}
	return p.Written, nil
}
