package subcmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/mengelbart/pipemod/cmdmain"
	"github.com/mengelbart/pipemod/flags"
	"github.com/mengelbart/pipemod/pipeline"
)

func init() {
	cmdmain.RegisterSubCmd("y4m", func() cmdmain.SubCmd { return new(Y4M) })
	cmdmain.RegisterSubCmd("rawvideo", func() cmdmain.SubCmd { return new(RawVideo) })
}

// usage installs the help text shared by all subcommands.
func usage(fs *flag.FlagSet, cmd, name, description string) {
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `%s

Usage:
	%s %s [flags]

Flags:
`, description, cmd, name)
		fs.PrintDefaults()
		fmt.Fprintln(os.Stderr)
	}
}

// parse parses args and rejects positional arguments.
func parse(fs *flag.FlagSet, args []string) {
	fs.Parse(args)
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "error: unknown extra arguments: %v\n", fs.Args())
		fs.Usage()
		os.Exit(1)
	}
}

type Y4M struct {
	interlace string
	sar       string
	bits      string
}

// Help implements cmdmain.SubCmd.
func (y *Y4M) Help() string {
	return "Write the video as yuv4mpeg2 to stdout"
}

// Exec implements cmdmain.SubCmd.
func (y *Y4M) Exec(cmd string, args []string) error {
	fs := flag.NewFlagSet("y4m", flag.ExitOnError)
	flags.RegisterInto(fs, flags.Source...)
	flags.RegisterInto(fs,
		flags.TrimFlag,
		flags.FieldPolicyFlag,
		flags.PaceFlag,
		flags.ReportIntervalFlag,
	)
	fs.StringVar(&y.interlace, "interlace", "p", "Frame type written to the stream header: p (progressive), t (top field first) or b (bottom field first)")
	fs.StringVar(&y.sar, "sar", "", "Sample aspect ratio num:den written to the stream header, empty for 0:0")
	fs.StringVar(&y.bits, "bits", "16", "Declared bit depth of 16-bit formats: 9, 10, 12, 14 or 16")
	usage(fs, cmd, "y4m", "Write the video as yuv4mpeg2 to stdout. Formats yuv4mpeg2 cannot carry are converted first")
	parse(fs, args)

	p := pipeline.DefaultParams(pipeline.ActionVideo)
	p.VideoFormat = pipeline.VideoY4M
	var err error
	if p.Interlace, err = pipeline.ParseInterlace(y.interlace); err != nil {
		return err
	}
	if p.SARNum, p.SARDen, err = pipeline.ParseSAR(y.sar); err != nil {
		return err
	}
	if p.Y4MBits, err = pipeline.ParseY4MBits(y.bits); err != nil {
		return err
	}
	return run(p)
}

type RawVideo struct {
	vflip bool
}

// Help implements cmdmain.SubCmd.
func (r *RawVideo) Help() string {
	return "Write the video frames without framing to stdout"
}

// Exec implements cmdmain.SubCmd.
func (r *RawVideo) Exec(cmd string, args []string) error {
	fs := flag.NewFlagSet("rawvideo", flag.ExitOnError)
	flags.RegisterInto(fs, flags.Source...)
	flags.RegisterInto(fs,
		flags.TrimFlag,
		flags.PaceFlag,
		flags.ReportIntervalFlag,
	)
	fs.BoolVar(&r.vflip, "vflip", false, "Flip every frame vertically")
	usage(fs, cmd, "rawvideo", "Write the video frames in their native layout, without headers or padding, to stdout")
	parse(fs, args)

	p := pipeline.DefaultParams(pipeline.ActionVideo)
	p.VideoFormat = pipeline.VideoRaw
	if r.vflip {
		p.VideoFormat = pipeline.VideoRawFlipped
	}
	return run(p)
}
