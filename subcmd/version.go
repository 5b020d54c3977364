package subcmd

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/mengelbart/pipemod/cmdmain"
	"github.com/mengelbart/pipemod/colorspace"
)

func init() {
	cmdmain.RegisterSubCmd("version", func() cmdmain.SubCmd { return readVersion() })
}

type Version struct {
	path      string
	version   string
	gitCommit string
	gitDate   string
	goVersion string
	gst       string
}

func readVersion() *Version {
	v := &Version{goVersion: runtime.Version()}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}
	v.path = info.Main.Path
	v.version = info.Main.Version
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			v.gitCommit = setting.Value
		case "vcs.time":
			v.gitDate = setting.Value
		case "vcs.modified":
			if setting.Value == "true" {
				v.gitCommit += "+dirty"
			}
		}
	}
	for _, dep := range info.Deps {
		if dep.Path == "github.com/go-gst/go-gst" {
			v.gst = dep.Version
		}
	}
	return v
}

// Exec implements cmdmain.SubCmd.
func (v *Version) Exec(cmd string, args []string) error {
	fs := flag.NewFlagSet("version", flag.ExitOnError)
	usage(fs, cmd, "version", "Print version information and the supported pixel types")
	parse(fs, args)

	fmt.Fprintf(os.Stdout, `%s
	Version:	%s
	Git commit:	%s
	Built:		%s
	Go Version:	%s
	go-gst:		%s
	Pixel types:	%s
`, v.path, v.version, v.gitCommit, v.gitDate, v.goVersion, v.gst, strings.Join(colorspace.Names(), " "))
	return nil
}

// Help implements cmdmain.SubCmd.
func (v *Version) Help() string {
	return "version prints out version information"
}
