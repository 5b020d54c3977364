// Package pipeline runs one action on a clip: it applies the trim and
// format preparation filters, picks the writer and reports the result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mengelbart/pipemod"
	"github.com/mengelbart/pipemod/colorspace"
	"github.com/mengelbart/pipemod/internal/logging"
	"github.com/mengelbart/pipemod/wave"
	"github.com/mengelbart/pipemod/writer"
	"github.com/mengelbart/pipemod/y4m"
	pionlogging "github.com/pion/logging"
)

const benchmarkInterval = 50

// Filters invokes and lists clip filters.
type Filters interface {
	pipemod.FilterInvoker
	Names() []string
}

// BinaryModer is implemented by sinks that need switching to binary
// transfer before payload is written.
type BinaryModer interface {
	SetBinaryMode() error
}

// Driver runs actions on Clip, writing payload to Stdout.
type Driver struct {
	Clip    pipemod.Clip
	Filters Filters
	Stdout  io.Writer
	// FieldPolicy resolves field-based clips in Y4M mode. nil aborts.
	FieldPolicy FieldPolicy
	ScriptName  string
	Logger      pionlogging.LeveledLogger
	// ReportInterval throttles video progress messages. Zero means one
	// second.
	ReportInterval time.Duration
}

func (d *Driver) log() pionlogging.LeveledLogger {
	if d.Logger == nil {
		d.Logger = logging.NewLogger("pipeline")
	}
	return d.Logger
}

// Run performs p.Action. Configuration errors are reported before anything
// is written. A run that writes less than the whole clip returns an
// *IncompleteError.
func (d *Driver) Run(ctx context.Context, p Params) error {
	if p.Interlace == 0 {
		p.Interlace = 'p'
	}
	if p.Y4MBits == 0 {
		p.Y4MBits = 16
	}
	if err := p.Validate(); err != nil {
		return err
	}
	switch p.Action {
	case ActionAudio:
		return d.audio(p)
	case ActionVideo:
		return d.video(ctx, p)
	case ActionInfo:
		return d.writeInfo(d.Clip, true)
	case ActionBenchmark:
		return d.benchmark(p)
	case ActionDumpText:
		return d.dumpText(p)
	case ActionFilters:
		for _, name := range d.Filters.Names() {
			fmt.Fprintln(d.Stdout, name)
		}
		return nil
	}
	return nil
}

func (d *Driver) invoke(c pipemod.Clip, name string, args pipemod.Args) (pipemod.Clip, error) {
	d.log().Debugf("invoking %v", name)
	return d.Filters.Invoke(name, c, args)
}

func (d *Driver) trim(c pipemod.Clip, p Params) (pipemod.Clip, error) {
	if p.TrimFirst == 0 && p.TrimLast == 0 {
		return c, nil
	}
	return d.invoke(c, "Trim", pipemod.Args{"first": p.TrimFirst, "last": p.TrimLast})
}

// setBinaryMode runs right before the first byte is written, after every
// configuration error has had its chance.
func (d *Driver) setBinaryMode() error {
	if bm, ok := d.Stdout.(BinaryModer); ok {
		if err := bm.SetBinaryMode(); err != nil {
			return fmt.Errorf("cannot switch stdout to binary mode: %w", err)
		}
	}
	return nil
}

// writeAll writes b in one call and fails on short writes.
func (d *Driver) writeAll(b []byte) error {
	n, err := d.Stdout.Write(b)
	if n != len(b) {
		if err == nil {
			err = io.ErrShortWrite
		}
		return fmt.Errorf("wrote %v of %v header bytes: %w", n, len(b), err)
	}
	return nil
}

// prepareY4M converts clip into something YUV4MPEG2 can carry.
func (d *Driver) prepareY4M(c pipemod.Clip, p Params) (pipemod.Clip, error) {
	var err error
	vi := c.VideoInfo()
	if vi.FieldBased {
		policy := d.FieldPolicy
		if policy == nil {
			policy = FixedFieldPolicy(FieldAbort)
		}
		decision, perr := policy()
		if perr != nil {
			return nil, perr
		}
		switch decision {
		case FieldAssumeFrameBased:
			c, err = d.invoke(c, "AssumeFrameBased", nil)
		case FieldWeave:
			c, err = d.invoke(c, "Weave", nil)
		default:
			return nil, ErrFieldBased
		}
		if err != nil {
			return nil, err
		}
	}
	desc := c.VideoInfo().Descriptor()
	if desc.Type == colorspace.YUY2 {
		if c, err = d.invoke(c, "ConvertToYV16", nil); err != nil {
			return nil, err
		}
	}
	if desc.IsRGB() {
		matrix := "Rec601"
		if c.VideoInfo().Height >= 720 {
			matrix = "Rec709"
		}
		args := pipemod.Args{"interlaced": p.Interlace != 'p', "matrix": matrix}
		if c, err = d.invoke(c, "ConvertToYV24", args); err != nil {
			return nil, err
		}
	}
	if c.VideoInfo().Descriptor().Float {
		if c, err = d.invoke(c, "ConvertTo16bit", nil); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (d *Driver) video(ctx context.Context, p Params) error {
	c := d.Clip
	if !c.VideoInfo().HasVideo() {
		return pipemod.ErrNoVideo
	}
	c, err := d.trim(c, p)
	if err != nil {
		return err
	}
	if p.VideoFormat == VideoRawFlipped {
		if c, err = d.invoke(c, "FlipVertical", nil); err != nil {
			return err
		}
	}
	if p.VideoFormat == VideoY4M {
		if c, err = d.prepareY4M(c, p); err != nil {
			return err
		}
	}
	vi := c.VideoInfo()
	desc := vi.Descriptor()
	g, err := colorspace.NewGeometry(desc, vi.Width, vi.Height)
	if err != nil {
		return fmt.Errorf("%v: %w", vi.PixelType, err)
	}

	opts := []writer.FrameWriterOption{writer.WithLogger(d.log())}
	if d.ReportInterval > 0 {
		opts = append(opts, writer.WithReportInterval(d.ReportInterval))
	}
	if p.Pace {
		opts = append(opts, writer.WithPacing(vi.FPSNum, vi.FPSDen))
	}
	if p.VideoFormat == VideoY4M {
		tag := desc.Y4MColorTag(p.Y4MBits)
		if tag == "" {
			return fmt.Errorf("%v cannot be written as yuv4mpeg2", desc.Name)
		}
		h := y4m.StreamHeader{
			Width:      vi.Width,
			Height:     vi.Height,
			FPSNum:     vi.FPSNum,
			FPSDen:     vi.FPSDen,
			Interlace:  p.Interlace,
			SARNum:     p.SARNum,
			SARDen:     p.SARDen,
			Colorspace: tag,
		}
		fw, err := writer.NewFrameWriter(g, append(opts, writer.WithFraming())...)
		if err != nil {
			return err
		}
		kind := map[byte]string{'p': "progressive", 't': "tff", 'b': "bff"}[p.Interlace]
		d.log().Infof("writing %v frames of %v/%v fps, %vx%v, sar %v:%v, %v %v video",
			vi.NumFrames, vi.FPSNum, vi.FPSDen, vi.Width, vi.Height, p.SARNum, p.SARDen, desc.OutName, kind)
		if err := d.setBinaryMode(); err != nil {
			return err
		}
		if err := d.writeAll([]byte(h.String())); err != nil {
			return err
		}
		return d.writeFrames(ctx, fw, c)
	}

	fw, err := writer.NewFrameWriter(g, opts...)
	if err != nil {
		return err
	}
	d.log().Infof("writing %v frames of %vx%v %v rawvideo", vi.NumFrames, vi.Width, vi.Height, desc.OutName)
	if err := d.setBinaryMode(); err != nil {
		return err
	}
	return d.writeFrames(ctx, fw, c)
}

func (d *Driver) writeFrames(ctx context.Context, fw *writer.FrameWriter, c pipemod.Clip) error {
	prog := writer.NewProgress(int64(c.VideoInfo().NumFrames))
	if _, err := fw.Write(ctx, d.Stdout, c, prog); err != nil {
		return err
	}
	return d.finish(prog, "frames")
}

func (d *Driver) finish(prog *writer.Progress, unit string) error {
	if unit == "frames" {
		d.log().Infof("finished, wrote %v frames [%v%%]", prog.Written, prog.Percent())
	}
	d.log().Infof("total elapsed time is %.3f sec", prog.Elapsed().Seconds())
	if !prog.Complete() {
		return &IncompleteError{Unit: unit, Wrote: prog.Written, Target: prog.Target}
	}
	return nil
}

func (d *Driver) audio(p Params) error {
	c := d.Clip
	if !c.AudioInfo().HasAudio() {
		return pipemod.ErrNoAudio
	}
	c, err := d.trim(c, p)
	if err != nil {
		return err
	}
	if p.AudioBits != pipemod.SampleTypeNone {
		if c, err = d.invoke(c, "ConvertAudioTo"+p.AudioBits.String(), nil); err != nil {
			return err
		}
	}
	ai := c.AudioInfo()
	args := wave.Args{
		Format:      wave.FormatPCM,
		Channels:    ai.Channels,
		SampleRate:  ai.SampleRate,
		ByteDepth:   ai.BytesPerChannelSample(),
		Samples:     uint64(ai.NumSamples),
		ChannelMask: ai.ChannelMask,
	}
	if ai.SampleType.IsFloat() {
		args.Format = wave.FormatIEEEFloat
	}
	var header []byte
	switch p.AudioFormat {
	case AudioWAV:
		header = wave.Header(args, d.log())
	case AudioWAVExtensible:
		header = wave.ExtensibleHeader(args, d.log())
	}
	aw, err := writer.NewAudioWriter(ai, header, d.log())
	if err != nil {
		return err
	}
	d.log().Infof("writing %.3f seconds of %v Hz, %v channel audio", ai.Duration(), ai.SampleRate, ai.Channels)
	if err := d.setBinaryMode(); err != nil {
		return err
	}
	prog := writer.NewProgress(ai.NumSamples)
	if _, err := aw.Write(d.Stdout, c, prog); err != nil {
		return err
	}
	return d.finish(prog, "samples")
}

func (d *Driver) benchmark(p Params) error {
	c := d.Clip
	if !c.VideoInfo().HasVideo() {
		return pipemod.ErrNoVideo
	}
	c, err := d.trim(c, p)
	if err != nil {
		return err
	}
	if err := d.writeInfo(c, false); err != nil {
		return err
	}
	frames := c.VideoInfo().NumFrames
	d.log().Infof("benchmarking %v frames video", frames)

	start := time.Now()
	passed := 0
	fetch := func() error {
		if _, err := c.GetFrame(passed); err != nil {
			return fmt.Errorf("frame %v: %w", passed, err)
		}
		passed++
		return nil
	}
	for passed < frames%benchmarkInterval {
		if err := fetch(); err != nil {
			return err
		}
	}
	for passed < frames {
		elapsed := time.Since(start).Seconds()
		d.log().Infof("[elapsed %.3f sec] %v/%v frames [%3d%%][%.3ffps]",
			elapsed, passed, frames, passed*100/frames, float64(passed)/elapsed)
		for range benchmarkInterval {
			if err := fetch(); err != nil {
				return err
			}
		}
	}
	elapsed := time.Since(start).Seconds()
	_, err = fmt.Fprintf(d.Stdout, "benchmark result: total elapsed time is %.3f sec [%.3ffps]\n",
		elapsed, float64(passed)/elapsed)
	return err
}

func (d *Driver) dumpText(p Params) error {
	c := d.Clip
	if !c.VideoInfo().HasVideo() {
		return pipemod.ErrNoVideo
	}
	c, err := d.trim(c, p)
	if err != nil {
		return err
	}
	vi := c.VideoInfo()
	g, err := colorspace.NewGeometry(vi.Descriptor(), vi.Width, vi.Height)
	if err != nil {
		return fmt.Errorf("%v: %w", vi.PixelType, err)
	}
	td, err := writer.NewTextDumper(g)
	if err != nil {
		return err
	}
	d.log().Infof("writing pixel values of %vx%vx%v frames to stdout as text", vi.Width, vi.Height, vi.NumFrames)
	if err := d.writeInfo(c, false); err != nil {
		return err
	}
	if _, err := io.WriteString(d.Stdout, "\n\n"); err != nil {
		return err
	}
	prog := writer.NewProgress(int64(vi.NumFrames))
	if _, err := td.Write(d.Stdout, c, prog); err != nil {
		return err
	}
	return d.finish(prog, "frames")
}

// IsIncomplete reports whether err is an *IncompleteError.
func IsIncomplete(err error) bool {
	var ie *IncompleteError
	return errors.As(err, &ie)
}
