package filter

import (
	"fmt"

	"github.com/mengelbart/pipemod"
)

type audioConverted struct {
	child
	info    pipemod.AudioInfo
	from    pipemod.SampleType
	scratch []byte
}

func audioConverter(to pipemod.SampleType) Func {
	return func(c pipemod.Clip, _ pipemod.Args) (pipemod.Clip, error) {
		return ConvertAudio(c, to)
	}
}

// ConvertAudio changes the sample type of the audio stream. Clips already
// delivering to are returned unchanged.
func ConvertAudio(c pipemod.Clip, to pipemod.SampleType) (pipemod.Clip, error) {
	ai := c.AudioInfo()
	if !ai.HasAudio() {
		return nil, pipemod.ErrNoAudio
	}
	if ai.SampleType == to {
		return c, nil
	}
	out := ai
	out.SampleType = to
	return &audioConverted{child: child{c}, info: out, from: ai.SampleType}, nil
}

func (a *audioConverted) AudioInfo() pipemod.AudioInfo {
	return a.info
}

func (a *audioConverted) GetAudio(buf []byte, start, count int64) error {
	inSize, outSize := a.from.BytesPerSample(), a.info.SampleType.BytesPerSample()
	n := count * int64(a.info.Channels)
	if int64(len(buf)) < n*int64(outSize) {
		return fmt.Errorf("audio buffer too small: %v < %v", len(buf), n*int64(outSize))
	}
	if need := n * int64(inSize); int64(cap(a.scratch)) < need {
		a.scratch = make([]byte, need)
	}
	in := a.scratch[:n*int64(inSize)]
	if err := a.child.GetAudio(in, start, count); err != nil {
		return err
	}
	for i := int64(0); i < n; i++ {
		v := pipemod.DecodeSample(in[i*int64(inSize):], a.from)
		pipemod.EncodeSample(buf[i*int64(outSize):], a.info.SampleType, v)
	}
	return nil
}
