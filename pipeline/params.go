package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mengelbart/pipemod"
)

// Action selects what a run does. Every run performs exactly one action.
type Action int

const (
	ActionNone Action = iota
	ActionAudio
	ActionVideo
	ActionInfo
	ActionBenchmark
	ActionDumpText
	ActionFilters
)

func (a Action) String() string {
	switch a {
	case ActionAudio:
		return "audio"
	case ActionVideo:
		return "video"
	case ActionInfo:
		return "info"
	case ActionBenchmark:
		return "benchmark"
	case ActionDumpText:
		return "dumptxt"
	case ActionFilters:
		return "filters"
	default:
		return "none"
	}
}

type VideoFormat int

const (
	VideoY4M VideoFormat = iota
	VideoRaw
	VideoRawFlipped
)

type AudioFormat int

const (
	AudioWAV AudioFormat = iota
	AudioWAVExtensible
	AudioRaw
)

// Params configures a run.
type Params struct {
	Action      Action
	VideoFormat VideoFormat
	AudioFormat AudioFormat

	// AudioBits converts the audio to this sample type first unless it is
	// SampleTypeNone.
	AudioBits pipemod.SampleType

	// Interlace is the YUV4MPEG2 frame type: 'p', 't' or 'b'.
	Interlace byte
	SARNum    int
	SARDen    int
	// Y4MBits is the declared bit depth of 16-bit YUV4MPEG2 output.
	Y4MBits int

	// TrimFirst and TrimLast are ignored when both are zero.
	TrimFirst int
	TrimLast  int

	// Pace limits video output to the frame rate of the clip.
	Pace bool
}

// DefaultParams returns progressive Y4M output with a 0:0 aspect ratio.
func DefaultParams(a Action) Params {
	return Params{
		Action:    a,
		Interlace: 'p',
		Y4MBits:   16,
	}
}

// ConfigError reports an invalid option. It is always returned before any
// output is written.
type ConfigError struct {
	Option string
	Value  string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%v: %v", e.Option, e.Err)
	}
	return fmt.Sprintf("invalid argument %q for %v: %v", e.Value, e.Option, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IncompleteError reports a run that stopped before writing everything.
type IncompleteError struct {
	Unit   string
	Wrote  int64
	Target int64
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("only wrote %v of %v %v", e.Wrote, e.Target, e.Unit)
}

func configErr(option, value string, format string, args ...any) *ConfigError {
	return &ConfigError{Option: option, Value: value, Err: fmt.Errorf(format, args...)}
}

// Validate checks p for consistency.
func (p Params) Validate() error {
	switch p.Action {
	case ActionAudio, ActionVideo, ActionInfo, ActionBenchmark, ActionDumpText, ActionFilters:
	default:
		return configErr("action", "", "no action selected")
	}
	switch p.Interlace {
	case 'p', 't', 'b':
	default:
		return configErr("interlace", string(p.Interlace), "expected p, t or b")
	}
	if p.SARNum < 0 || p.SARDen < 0 {
		return configErr("sar", fmt.Sprintf("%v:%v", p.SARNum, p.SARDen), "must not be negative")
	}
	if _, err := ParseY4MBits(strconv.Itoa(p.Y4MBits)); err != nil {
		return err
	}
	return nil
}

// ParseTrim parses "first,last".
func ParseTrim(s string) (int, int, error) {
	a, b, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, configErr("trim", s, "expected first,last")
	}
	first, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, configErr("trim", s, "first frame: %w", err)
	}
	last, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, configErr("trim", s, "last frame: %w", err)
	}
	if first < 0 {
		return 0, 0, configErr("trim", s, "first frame must not be negative")
	}
	return first, last, nil
}

// ParseSAR parses "num:den". An empty string is 0:0, i.e. unknown.
func ParseSAR(s string) (int, int, error) {
	if s == "" {
		return 0, 0, nil
	}
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, configErr("sar", s, "expected num:den")
	}
	num, err1 := strconv.Atoi(a)
	den, err2 := strconv.Atoi(b)
	if err1 != nil || err2 != nil || num < 0 || den < 0 {
		return 0, 0, configErr("sar", s, "expected two non-negative integers")
	}
	return num, den, nil
}

// ParseInterlace accepts p (progressive), t (top field first) and b
// (bottom field first).
func ParseInterlace(s string) (byte, error) {
	switch s {
	case "p", "t", "b":
		return s[0], nil
	}
	return 0, configErr("interlace", s, "expected p, t or b")
}

// ParseAudioBits accepts 8bit, 16bit, 24bit, 32bit and float. The empty
// string keeps the sample type of the clip.
func ParseAudioBits(s string) (pipemod.SampleType, error) {
	for _, t := range []pipemod.SampleType{
		pipemod.SampleTypeU8,
		pipemod.SampleTypeS16,
		pipemod.SampleTypeS24,
		pipemod.SampleTypeS32,
		pipemod.SampleTypeFloat,
	} {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	if s == "" {
		return pipemod.SampleTypeNone, nil
	}
	return pipemod.SampleTypeNone, configErr("bits", s, "expected 8bit, 16bit, 24bit, 32bit or float")
}

// ParseY4MBits accepts 9, 10, 12, 14 and 16.
func ParseY4MBits(s string) (int, error) {
	switch s {
	case "9", "10", "12", "14", "16":
		n, _ := strconv.Atoi(s)
		return n, nil
	}
	return 0, configErr("y4mbits", s, "expected 9, 10, 12, 14 or 16")
}
