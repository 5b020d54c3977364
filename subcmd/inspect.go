package subcmd

import (
	"context"
	"flag"
	"os"

	"github.com/mengelbart/pipemod/cmdmain"
	"github.com/mengelbart/pipemod/filter"
	"github.com/mengelbart/pipemod/flags"
	"github.com/mengelbart/pipemod/pipeline"
)

func init() {
	cmdmain.RegisterSubCmd("info", func() cmdmain.SubCmd {
		return &Inspect{name: "info", action: pipeline.ActionInfo, help: "Print the clip properties"}
	})
	cmdmain.RegisterSubCmd("benchmark", func() cmdmain.SubCmd {
		return &Inspect{name: "benchmark", action: pipeline.ActionBenchmark, trim: true, help: "Decode every frame without writing and report the speed"}
	})
	cmdmain.RegisterSubCmd("dumptxt", func() cmdmain.SubCmd {
		return &Inspect{name: "dumptxt", action: pipeline.ActionDumpText, trim: true, help: "Print the pixel values of every frame as text"}
	})
	cmdmain.RegisterSubCmd("filters", func() cmdmain.SubCmd { return new(Filters) })
}

// Inspect runs one of the actions that report on a clip instead of
// streaming it.
type Inspect struct {
	name   string
	help   string
	action pipeline.Action
	trim   bool
}

// Help implements cmdmain.SubCmd.
func (i *Inspect) Help() string {
	return i.help
}

// Exec implements cmdmain.SubCmd.
func (i *Inspect) Exec(cmd string, args []string) error {
	fs := flag.NewFlagSet(i.name, flag.ExitOnError)
	flags.RegisterInto(fs, flags.Source...)
	if i.trim {
		flags.RegisterInto(fs, flags.TrimFlag)
	}
	usage(fs, cmd, i.name, i.help)
	parse(fs, args)

	return run(pipeline.DefaultParams(i.action))
}

type Filters struct{}

// Help implements cmdmain.SubCmd.
func (f *Filters) Help() string {
	return "List the available filters"
}

// Exec implements cmdmain.SubCmd.
func (f *Filters) Exec(cmd string, args []string) error {
	fs := flag.NewFlagSet("filters", flag.ExitOnError)
	usage(fs, cmd, "filters", "List the filters that can be applied to clips")
	parse(fs, args)

	d := &pipeline.Driver{
		Filters: filter.NewRegistry(),
		Stdout:  os.Stdout,
	}
	return d.Run(context.Background(), pipeline.DefaultParams(pipeline.ActionFilters))
}
