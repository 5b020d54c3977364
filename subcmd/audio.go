package subcmd

import (
	"flag"

	"github.com/mengelbart/pipemod/cmdmain"
	"github.com/mengelbart/pipemod/flags"
	"github.com/mengelbart/pipemod/pipeline"
)

func init() {
	cmdmain.RegisterSubCmd("wav", func() cmdmain.SubCmd {
		return &Audio{name: "wav", format: pipeline.AudioWAV, help: "Write the audio as WAVE to stdout"}
	})
	cmdmain.RegisterSubCmd("extwav", func() cmdmain.SubCmd {
		return &Audio{name: "extwav", format: pipeline.AudioWAVExtensible, help: "Write the audio as WAVE_FORMAT_EXTENSIBLE to stdout"}
	})
	cmdmain.RegisterSubCmd("rawaudio", func() cmdmain.SubCmd {
		return &Audio{name: "rawaudio", format: pipeline.AudioRaw, help: "Write interleaved samples without a header to stdout"}
	})
}

// Audio writes the audio of a clip in one of the audio formats.
type Audio struct {
	name   string
	help   string
	format pipeline.AudioFormat

	bits string
}

// Help implements cmdmain.SubCmd.
func (a *Audio) Help() string {
	return a.help
}

// Exec implements cmdmain.SubCmd.
func (a *Audio) Exec(cmd string, args []string) error {
	fs := flag.NewFlagSet(a.name, flag.ExitOnError)
	flags.RegisterInto(fs, flags.Source...)
	flags.RegisterInto(fs, flags.TrimFlag)
	fs.StringVar(&a.bits, "bits", "", "Convert samples first: 8bit, 16bit, 24bit, 32bit or float. Empty keeps the clip's sample type")
	usage(fs, cmd, a.name, a.help+". Trimming selects the samples of the kept frames")
	parse(fs, args)

	p := pipeline.DefaultParams(pipeline.ActionAudio)
	p.AudioFormat = a.format
	var err error
	if p.AudioBits, err = pipeline.ParseAudioBits(a.bits); err != nil {
		return err
	}
	return run(p)
}
