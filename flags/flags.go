// Package flags implements command-line flags for pipemod.
//
// The design idea is taken from [upspin.io/flags], but most of the code is
// modified. This package uses a slightly modified version of [RegisterInto] and
// the internal [flags]-map. See [Upspin LICENSE] for upspins copyright and
// license information.
//
// [upspin.io/flags]: https://github.com/upspin/upspin/tree/334f107fe3d98225d7adfbb35b74e066fbca9875/flags
// [Upspin LICENSE]: https://github.com/upspin/upspin/blob/334f107fe3d98225d7adfbb35b74e066fbca9875/LICENSE
package flags

import (
	"flag"
	"fmt"
	"time"

	"github.com/mengelbart/pipemod"
)

type FlagName string

// flag keys
const (
	SourceLocationFlag FlagName = "source-location"
	TrimFlag           FlagName = "trim"
	FieldPolicyFlag    FlagName = "field-policy"
	PaceFlag           FlagName = "pace"
	ReportIntervalFlag FlagName = "report-interval"

	TestSrcWidthFlag      FlagName = "testsrc-width"
	TestSrcHeightFlag     FlagName = "testsrc-height"
	TestSrcPixelTypeFlag  FlagName = "testsrc-pixel-type"
	TestSrcFPSFlag        FlagName = "testsrc-fps"
	TestSrcFramesFlag     FlagName = "testsrc-frames"
	TestSrcSampleRateFlag FlagName = "testsrc-sample-rate"
	TestSrcChannelsFlag   FlagName = "testsrc-channels"
	TestSrcSampleTypeFlag FlagName = "testsrc-sample-type"
	TestSrcSamplesFlag    FlagName = "testsrc-samples"

	GstFormatFlag FlagName = "gst-format"
)

// Flag vars
var (
	SourceLocation = pipemod.TestSourceLocation

	// Trim is "first,last"; empty means the whole clip.
	Trim = ""

	FieldPolicy = "fail"

	Pace = false

	ReportInterval = time.Second

	TestSrcWidth      = uint(pipemod.DefaultTestSourceConfig.Width)
	TestSrcHeight     = uint(pipemod.DefaultTestSourceConfig.Height)
	TestSrcPixelType  = pipemod.DefaultTestSourceConfig.PixelType.String()
	TestSrcFPS        = fmt.Sprintf("%v/%v", pipemod.DefaultTestSourceConfig.FPSNum, pipemod.DefaultTestSourceConfig.FPSDen)
	TestSrcFrames     = uint(pipemod.DefaultTestSourceConfig.NumFrames)
	TestSrcSampleRate = uint(pipemod.DefaultTestSourceConfig.SampleRate)
	TestSrcChannels   = uint(pipemod.DefaultTestSourceConfig.Channels)
	TestSrcSampleType = pipemod.DefaultTestSourceConfig.SampleType.String()
	TestSrcSamples    = uint(pipemod.DefaultTestSourceConfig.NumSamples)

	// GstFormat forces the raw format GStreamer decodes to, e.g. I420.
	GstFormat = ""
)

type flagVar func(*flag.FlagSet)

func stringVar(p *string, name FlagName, defaultValue *string, usage string) func(*flag.FlagSet) {
	return func(fs *flag.FlagSet) {
		fs.StringVar(p, string(name), *defaultValue, usage)
	}
}

func uintVar(p *uint, name FlagName, defaultValue *uint, usage string) func(*flag.FlagSet) {
	return func(fs *flag.FlagSet) {
		fs.UintVar(p, string(name), *defaultValue, usage)
	}
}

func boolVar(p *bool, name FlagName, defaultValue *bool, usage string) func(*flag.FlagSet) {
	return func(fs *flag.FlagSet) {
		fs.BoolVar(p, string(name), *defaultValue, usage)
	}
}

func durationVar(p *time.Duration, name FlagName, defaultValue *time.Duration, usage string) func(*flag.FlagSet) {
	return func(fs *flag.FlagSet) {
		fs.DurationVar(p, string(name), *defaultValue, usage)
	}
}

var flags = map[FlagName]flagVar{
	// Input
	SourceLocationFlag: stringVar(&SourceLocation, SourceLocationFlag, &SourceLocation, "Input: a .y4m or .wav file, - for YUV4MPEG2 on stdin, videotestsrc for a generated clip, anything else is decoded with GStreamer"),
	TrimFlag:           stringVar(&Trim, TrimFlag, &Trim, "Trim the clip to first,last before writing. last 0 means the end, a negative last is a frame count"),
	GstFormatFlag:      stringVar(&GstFormat, GstFormatFlag, &GstFormat, "Raw format GStreamer decodes to (I420, Y42B, Y444, GRAY8, BGRA, ...). Empty lets GStreamer choose"),

	// Output
	FieldPolicyFlag:    stringVar(&FieldPolicy, FieldPolicyFlag, &FieldPolicy, "What to do with field-based clips in YUV4MPEG2 output: assume, weave, fail or prompt"),
	PaceFlag:           boolVar(&Pace, PaceFlag, &Pace, "Write video no faster than the clip's frame rate"),
	ReportIntervalFlag: durationVar(&ReportInterval, ReportIntervalFlag, &ReportInterval, "Minimum time between progress log messages"),

	// Test source
	TestSrcWidthFlag:      uintVar(&TestSrcWidth, TestSrcWidthFlag, &TestSrcWidth, "Width of the generated clip"),
	TestSrcHeightFlag:     uintVar(&TestSrcHeight, TestSrcHeightFlag, &TestSrcHeight, "Height of the generated clip"),
	TestSrcPixelTypeFlag:  stringVar(&TestSrcPixelType, TestSrcPixelTypeFlag, &TestSrcPixelType, "Pixel type of the generated clip"),
	TestSrcFPSFlag:        stringVar(&TestSrcFPS, TestSrcFPSFlag, &TestSrcFPS, "Frame rate of the generated clip as num/den"),
	TestSrcFramesFlag:     uintVar(&TestSrcFrames, TestSrcFramesFlag, &TestSrcFrames, "Number of generated frames, 0 for an audio-only clip"),
	TestSrcSampleRateFlag: uintVar(&TestSrcSampleRate, TestSrcSampleRateFlag, &TestSrcSampleRate, "Sample rate of the generated audio"),
	TestSrcChannelsFlag:   uintVar(&TestSrcChannels, TestSrcChannelsFlag, &TestSrcChannels, "Channel count of the generated audio"),
	TestSrcSampleTypeFlag: stringVar(&TestSrcSampleType, TestSrcSampleTypeFlag, &TestSrcSampleType, "Sample type of the generated audio (8bit, 16bit, 24bit, 32bit, float)"),
	TestSrcSamplesFlag:    uintVar(&TestSrcSamples, TestSrcSamplesFlag, &TestSrcSamples, "Number of generated sample frames, 0 for a video-only clip"),
}

// Source lists the flags every command that opens a clip registers.
var Source = []FlagName{
	SourceLocationFlag,
	GstFormatFlag,
	TestSrcWidthFlag,
	TestSrcHeightFlag,
	TestSrcPixelTypeFlag,
	TestSrcFPSFlag,
	TestSrcFramesFlag,
	TestSrcSampleRateFlag,
	TestSrcChannelsFlag,
	TestSrcSampleTypeFlag,
	TestSrcSamplesFlag,
}

func RegisterInto(fs *flag.FlagSet, names ...FlagName) {
	if len(names) == 0 {
		for _, f := range flags {
			f(fs)
		}
	} else {
		for _, n := range names {
			f, ok := flags[n]
			if !ok {
				panic(fmt.Sprintf("unknown flag: %q", n))
			}
			f(fs)
		}
	}
}
