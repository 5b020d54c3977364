package subcmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mengelbart/pipemod"
	"github.com/mengelbart/pipemod/colorspace"
	"github.com/mengelbart/pipemod/filter"
	"github.com/mengelbart/pipemod/flags"
	"github.com/mengelbart/pipemod/gstreamer"
	"github.com/mengelbart/pipemod/internal/logging"
	"github.com/mengelbart/pipemod/pipeline"
)

// testSourceConfig builds the generated clip from the testsrc flags.
func testSourceConfig() (pipemod.TestSourceConfig, error) {
	cfg := pipemod.DefaultTestSourceConfig
	pt, err := colorspace.ParseName(flags.TestSrcPixelType)
	if err != nil {
		return cfg, err
	}
	fpsNum, fpsDen, err := parseRate(flags.TestSrcFPS)
	if err != nil {
		return cfg, fmt.Errorf("invalid %v value %q: %w", flags.TestSrcFPSFlag, flags.TestSrcFPS, err)
	}
	st, err := pipeline.ParseAudioBits(flags.TestSrcSampleType)
	if err != nil {
		return cfg, err
	}
	if st == pipemod.SampleTypeNone {
		st = pipemod.SampleTypeS16
	}
	cfg.Width = int(flags.TestSrcWidth)
	cfg.Height = int(flags.TestSrcHeight)
	cfg.PixelType = pt
	cfg.FPSNum, cfg.FPSDen = fpsNum, fpsDen
	cfg.NumFrames = int(flags.TestSrcFrames)
	cfg.SampleRate = int(flags.TestSrcSampleRate)
	cfg.Channels = int(flags.TestSrcChannels)
	cfg.SampleType = st
	cfg.NumSamples = int64(flags.TestSrcSamples)
	return cfg, nil
}

// parseRate parses "num/den" or a plain integer rate.
func parseRate(s string) (uint32, uint32, error) {
	n, d, ok := strings.Cut(s, "/")
	if !ok {
		d = "1"
	}
	num, err := strconv.ParseUint(n, 10, 32)
	if err != nil {
		return 0, 0, err
	}
	den, err := strconv.ParseUint(d, 10, 32)
	if err != nil {
		return 0, 0, err
	}
	if num == 0 || den == 0 {
		return 0, 0, errors.New("rate must be positive")
	}
	return uint32(num), uint32(den), nil
}

func openClip() (pipemod.Clip, error) {
	ts, err := testSourceConfig()
	if err != nil {
		return nil, err
	}
	var opts []gstreamer.SourceOption
	if flags.GstFormat != "" {
		opts = append(opts, gstreamer.SourceFormats(flags.GstFormat))
	}
	opts = append(opts, gstreamer.SourceLogger(logging.NewLogger("gstreamer")))
	return pipemod.Open(flags.SourceLocation, pipemod.SourceConfig{
		TestSource: ts,
		Decoder:    gstreamer.Decoder(opts...),
	})
}

// run opens the clip named by the source flags and performs p on it.
func run(p pipeline.Params) error {
	if flags.Trim != "" {
		first, last, err := pipeline.ParseTrim(flags.Trim)
		if err != nil {
			return err
		}
		p.TrimFirst, p.TrimLast = first, last
	}
	p.Pace = flags.Pace
	policy, err := pipeline.ParseFieldPolicy(flags.FieldPolicy, os.Stdin, os.Stderr)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}

	clip, err := openClip()
	if err != nil {
		return err
	}
	defer clip.Close()

	d := &pipeline.Driver{
		Clip:           clip,
		Filters:        filter.NewRegistry(),
		Stdout:         os.Stdout,
		FieldPolicy:    policy,
		ScriptName:     flags.SourceLocation,
		Logger:         logging.NewLogger("pipemod"),
		ReportInterval: flags.ReportInterval,
	}
	return d.Run(context.Background(), p)
}
