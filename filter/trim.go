package filter

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/mengelbart/pipemod"
)

type trimmed struct {
	child
	first        int
	video        pipemod.VideoInfo
	audio        pipemod.AudioInfo
	sampleOffset int64
}

// Trim keeps frames first through last. A last of 0 means the end of the
// clip, a negative last is a frame count. Audio is cut to the samples
// covered by the kept frames.
func Trim(c pipemod.Clip, args pipemod.Args) (pipemod.Clip, error) {
	first, err := intArg(args, "first", 0)
	if err != nil {
		return nil, err
	}
	last, err := intArg(args, "last", 0)
	if err != nil {
		return nil, err
	}
	vi := c.VideoInfo()
	if !vi.HasVideo() {
		return nil, pipemod.ErrNoVideo
	}
	first, last, err = TrimRange(first, last, vi.NumFrames)
	if err != nil {
		return nil, err
	}

	t := &trimmed{child: child{c}, first: first, video: vi}
	t.video.NumFrames = last - first + 1

	if ai := c.AudioInfo(); ai.HasAudio() {
		start := frameToSample(first, vi, ai.SampleRate)
		end := min(frameToSample(last+1, vi, ai.SampleRate), ai.NumSamples)
		t.audio = ai
		t.sampleOffset = start
		t.audio.NumSamples = max(end-start, 0)
	}
	return t, nil
}

// TrimRange resolves first and last against a clip of frames frames and
// returns the inclusive range.
func TrimRange(first, last, frames int) (int, int, error) {
	first = max(first, 0)
	switch {
	case last == 0:
		last = frames - 1
	case last < 0:
		last = first - last - 1
	}
	last = min(last, frames-1)
	if first >= frames || last < first {
		return 0, 0, fmt.Errorf("invalid range %v-%v for %v frames", first, last, frames)
	}
	return first, last, nil
}

// frameToSample returns the first sample of frame n.
func frameToSample(n int, vi pipemod.VideoInfo, rate int) int64 {
	hi, lo := bits.Mul64(uint64(n)*uint64(rate), uint64(vi.FPSDen))
	if vi.FPSNum == 0 || hi >= uint64(vi.FPSNum) {
		return math.MaxInt64
	}
	q, _ := bits.Div64(hi, lo, uint64(vi.FPSNum))
	return int64(min(q, math.MaxInt64))
}

func (t *trimmed) VideoInfo() pipemod.VideoInfo {
	return t.video
}

func (t *trimmed) AudioInfo() pipemod.AudioInfo {
	return t.audio
}

func (t *trimmed) GetFrame(n int) (*pipemod.Frame, error) {
	if n < 0 || n >= t.video.NumFrames {
		return nil, fmt.Errorf("%w: %v", pipemod.ErrFrameRange, n)
	}
	return t.child.GetFrame(n + t.first)
}

func (t *trimmed) GetAudio(buf []byte, start, count int64) error {
	if !t.audio.HasAudio() {
		return pipemod.ErrNoAudio
	}
	block := int64(t.audio.BlockAlign())
	if int64(len(buf)) < count*block {
		return fmt.Errorf("audio buffer too small: %v < %v", len(buf), count*block)
	}
	buf = buf[:count*block]
	pipemod.Silence(buf, t.audio.SampleType)
	first, last := max(start, 0), min(start+count, t.audio.NumSamples)
	if first >= last {
		return nil
	}
	return t.child.GetAudio(buf[(first-start)*block:(last-start)*block], first+t.sampleOffset, last-first)
}
