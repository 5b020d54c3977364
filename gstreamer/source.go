package gstreamer

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/go-gst/go-gst/gst"
	"github.com/go-gst/go-gst/gst/app"
	"github.com/mengelbart/pipemod"
	"github.com/mengelbart/pipemod/colorspace"
	"github.com/mengelbart/pipemod/internal/logging"
	pionlogging "github.com/pion/logging"
)

var initOnce sync.Once

type SourceOption func(*Source) error

// SourceFormats restricts the raw formats the decoder may deliver.
func SourceFormats(names ...string) SourceOption {
	return func(s *Source) error {
		for _, n := range names {
			if _, ok := pixelType(n); !ok {
				return fmt.Errorf("%w: format %q", ErrUnsupportedCaps, n)
			}
		}
		s.formats = names
		return nil
	}
}

func SourceLogger(log pionlogging.LeveledLogger) SourceOption {
	return func(s *Source) error {
		s.log = log
		return nil
	}
}

// SourcePollInterval sets how long a pull waits before the bus is checked
// for errors.
func SourcePollInterval(d time.Duration) SourceOption {
	return func(s *Source) error {
		if d <= 0 {
			return errors.New("poll interval must be positive")
		}
		s.poll = d
		return nil
	}
}

// Source decodes the first video stream of a file or URI. Frames can only
// be read in increasing order; the most recent frame may be requested
// again.
type Source struct {
	location string
	formats  []string
	log      pionlogging.LeveledLogger
	poll     time.Duration

	pipeline *gst.Pipeline
	convert  *gst.Element
	sink     *app.Sink

	mu     sync.Mutex
	linked bool

	info   pipemod.VideoInfo
	layout layout
	buf    []byte
	cur    *pipemod.Frame
	pos    int
	ended  bool
}

// Decoder returns a pipemod.Decoder that opens locations as a Source.
func Decoder(opts ...SourceOption) pipemod.Decoder {
	return func(location string) (pipemod.Clip, error) {
		return NewSource(location, opts...)
	}
}

func NewSource(location string, opts ...SourceOption) (*Source, error) {
	initOnce.Do(func() { gst.Init(nil) })

	s := &Source{
		location: location,
		poll:     100 * time.Millisecond,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.log == nil {
		s.log = logging.NewLogger("gstreamer")
	}
	if err := s.build(); err != nil {
		return nil, err
	}
	if err := s.preroll(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Source) build() error {
	var err error
	s.pipeline, err = gst.NewPipeline("")
	if err != nil {
		return err
	}

	var elements []*gst.Element
	var decoder *gst.Element
	if strings.Contains(s.location, "://") {
		decoder, err = gst.NewElement("uridecodebin")
		if err != nil {
			return err
		}
		if err = decoder.SetProperty("uri", s.location); err != nil {
			return err
		}
		elements = append(elements, decoder)
	} else {
		fs, err := gst.NewElement("filesrc")
		if err != nil {
			return err
		}
		if err = fs.SetProperty("location", s.location); err != nil {
			return err
		}
		decoder, err = gst.NewElement("decodebin")
		if err != nil {
			return err
		}
		elements = append(elements, fs, decoder)
	}

	s.convert, err = gst.NewElement("videoconvert")
	if err != nil {
		return err
	}
	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return err
	}
	if err = capsfilter.SetProperty("caps", gst.NewCapsFromString(capsString(s.formats))); err != nil {
		return err
	}
	s.sink, err = app.NewAppSink()
	if err != nil {
		return err
	}
	if err = SetProperties(s.sink.Element, map[string]any{
		"sync":        false,
		"max-buffers": uint(4),
		"drop":        false,
	}); err != nil {
		return err
	}

	follow := []*gst.Element{s.convert, capsfilter, s.sink.Element}
	if err = s.pipeline.AddMany(append(elements, follow...)...); err != nil {
		return err
	}
	if len(elements) == 2 {
		if err = elements[0].Link(decoder); err != nil {
			return err
		}
	}
	if err = gst.ElementLinkMany(follow...); err != nil {
		return err
	}

	decoder.Connect("pad-added", s.padAdded)
	return nil
}

// padAdded links the first video pad to the converter. Every other pad
// ends in a fakesink so it does not stall the decoder.
func (s *Source) padAdded(self *gst.Element, pad *gst.Pad) {
	var isVideo bool
	if caps := pad.GetCurrentCaps(); caps != nil {
		for i := 0; i < caps.GetSize(); i++ {
			if strings.HasPrefix(caps.GetStructureAt(i).Name(), "video/") {
				isVideo = true
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if isVideo && !s.linked {
		if ret := pad.Link(s.convert.GetStaticPad("sink")); ret != gst.PadLinkOK {
			s.log.Errorf("failed to link %v: %v", pad.GetName(), ret)
			return
		}
		s.linked = true
		return
	}

	fakesink, err := gst.NewElement("fakesink")
	if err != nil {
		s.log.Errorf("failed to create fakesink: %v", err)
		return
	}
	if err := s.pipeline.Add(fakesink); err != nil {
		s.log.Errorf("failed to add fakesink: %v", err)
		return
	}
	fakesink.SyncStateWithParent()
	if ret := pad.Link(fakesink.GetStaticPad("sink")); ret != gst.PadLinkOK {
		s.log.Errorf("failed to link %v to fakesink: %v", pad.GetName(), ret)
	}
}

// preroll pauses the pipeline until the first frame arrives, then derives
// the clip properties from its caps and the stream duration.
func (s *Source) preroll() error {
	if err := s.pipeline.SetState(gst.StatePaused); err != nil {
		return err
	}
	sample, err := s.pull(s.sink.TryPullPreroll)
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%v: %w", s.location, pipemod.ErrNoVideo)
	}
	if err != nil {
		return err
	}

	caps := sample.GetCaps()
	if caps == nil || caps.GetSize() == 0 {
		return fmt.Errorf("%w: preroll sample without caps", ErrUnsupportedCaps)
	}
	vc, err := parseCaps(caps.GetStructureAt(0))
	if err != nil {
		return err
	}
	pt, ok := pixelType(vc.format)
	if !ok {
		return fmt.Errorf("%w: format %q", ErrUnsupportedCaps, vc.format)
	}
	g, err := colorspace.NewGeometry(colorspace.Lookup(pt), vc.width, vc.height)
	if err != nil {
		return err
	}

	ok, duration := s.pipeline.QueryDuration(gst.FormatTime)
	if !ok || duration <= 0 {
		return fmt.Errorf("%v: unknown duration", s.location)
	}
	frames := int(math.Round(float64(duration) * float64(vc.fpsNum) / (float64(vc.fpsDen) * 1e9)))
	if frames <= 0 {
		return fmt.Errorf("%v: %w", s.location, pipemod.ErrNoVideo)
	}

	s.info = pipemod.VideoInfo{
		Width:      vc.width,
		Height:     vc.height,
		FPSNum:     vc.fpsNum,
		FPSDen:     vc.fpsDen,
		NumFrames:  frames,
		PixelType:  pt,
		FieldBased: vc.fieldBased,
		FieldOrder: vc.fieldOrder,
	}
	if s.layout, err = newLayout(g); err != nil {
		return err
	}
	s.buf = make([]byte, s.layout.size)
	s.log.Debugf("opened %v: %vx%v %v %v/%v fps, %v frames", s.location, vc.width, vc.height, vc.format, vc.fpsNum, vc.fpsDen, frames)

	return s.pipeline.SetState(gst.StatePlaying)
}

// pull waits for a sample from fn, checking the bus between attempts. It
// returns io.EOF once the sink has drained.
func (s *Source) pull(fn func(time.Duration) *gst.Sample) (*gst.Sample, error) {
	for {
		if sample := fn(s.poll); sample != nil {
			return sample, nil
		}
		if err := busError(s.pipeline); err != nil {
			return nil, err
		}
		if s.sink.IsEOS() {
			return nil, io.EOF
		}
	}
}

func (s *Source) VideoInfo() pipemod.VideoInfo {
	return s.info
}

func (s *Source) AudioInfo() pipemod.AudioInfo {
	return pipemod.AudioInfo{}
}

func (s *Source) GetFrame(n int) (*pipemod.Frame, error) {
	if n < 0 || n >= s.info.NumFrames {
		return nil, fmt.Errorf("%w: %v", pipemod.ErrFrameRange, n)
	}
	if s.cur != nil && n == s.pos-1 {
		return s.cur, nil
	}
	if n < s.pos {
		return nil, fmt.Errorf("%w: frame %v after %v", pipemod.ErrNotSequential, n, s.pos-1)
	}
	for s.pos <= n {
		if err := s.next(); err != nil {
			return nil, err
		}
	}
	return s.cur, nil
}

// next decodes one frame. The duration estimate can exceed the real frame
// count; past the end the last frame is repeated.
func (s *Source) next() error {
	if s.ended {
		s.pos++
		return nil
	}
	sample, err := s.pull(s.sink.TryPullSample)
	if errors.Is(err, io.EOF) && s.cur != nil {
		s.log.Warnf("stream ended after %v of %v frames, repeating the last frame", s.pos, s.info.NumFrames)
		s.ended = true
		s.pos++
		return nil
	}
	if err != nil {
		return err
	}

	buffer := sample.GetBuffer()
	if buffer == nil {
		return errors.New("sample without buffer")
	}
	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	n := copy(s.buf, data)
	buffer.Unmap()
	if n != len(data) {
		return fmt.Errorf("decoded buffer holds %v bytes, want %v", len(data), s.layout.size)
	}

	f, err := s.layout.frame(s.buf[:n])
	if err != nil {
		return err
	}
	s.cur = f
	s.pos++
	return nil
}

func (s *Source) GetAudio([]byte, int64, int64) error {
	return pipemod.ErrNoAudio
}

func (s *Source) Close() error {
	if s.pipeline == nil {
		return nil
	}
	return s.pipeline.BlockSetState(gst.StateNull)
}
