// Package cmdmain implements commands and subcommands.
//
// The design idea is taken from [perkeep/cmdmain], but most of the code is
// modified. This package uses the [RegisterSubCmd] to allow users to add new
// subcommands. The implementation uses the same mechanism as perkeep. See
// [Perkeep LICENSE] for perkeeps copyright and license information.
//
// [perkeep/cmdmain]: https://github.com/perkeep/perkeep/tree/56726780f66b5654c1d7c01dc85b0e686ddbffd2/pkg/cmdmain
// [Perkeep LICENSE]: https://github.com/perkeep/perkeep/blob/56726780f66b5654c1d7c01dc85b0e686ddbffd2/COPYING
package cmdmain

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"maps"
	"os"
	"slices"

	"github.com/mengelbart/pipemod/internal/logging"
)

var (
	logFormat string
	logLevel  int
	logFile   string
)

type SubCmd interface {
	Help() string
	Exec(cmd string, args []string) error
}

var (
	subCmds = map[string]SubCmd{}
)

func RegisterSubCmd(name string, makeSubCmd func() SubCmd) {
	if _, ok := subCmds[name]; ok {
		log.Fatalf("duplicate subcommand: %q", name)
	}
	subCmds[name] = makeSubCmd()
}

// Lookup returns the subcommand registered as name.
func Lookup(name string) (SubCmd, bool) {
	c, ok := subCmds[name]
	return c, ok
}

func usage(name string) func() {
	return func() {
		fmt.Fprintf(os.Stderr, `%v writes decoded clips to stdout as yuv4mpeg2, raw video, wav or raw audio

Usage:
	%v [flags] <command> [command flags]
`, name, name)

		fmt.Fprintln(os.Stderr, "\nCommands:")
		for _, name := range slices.Sorted(maps.Keys(subCmds)) {
			fmt.Fprintf(os.Stderr, "  %-10s %s\n", name, subCmds[name].Help())
		}

		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
		fmt.Fprintln(os.Stderr)
		fmt.Fprintf(os.Stderr, "Run `%v <command> -h` to show full help for a command\n", name)
	}
}

// setupLogging installs the slog default from the root flags. The returned
// function closes the log file.
func setupLogging() (func(), error) {
	format, err := logging.ParseFormat(logFormat)
	if err != nil {
		return nil, err
	}
	var lf io.Writer
	closer := func() {}
	if logFile != "" {
		f, err := os.Create(logFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		lf = f
		closer = func() { f.Close() }
	}
	logging.Configure(format, slog.Level(logLevel), lf)
	return closer, nil
}

func Main() {
	flag.StringVar(&logFile, "logfile", "", "Log file, empty string means stderr")
	flag.StringVar(&logFormat, "log-format", "text", "Logging format: text or json")
	flag.IntVar(&logLevel, "log-level", 0, "Logging level (slog.Level)")

	flag.Usage = usage(os.Args[0])
	flag.Parse()

	os.Exit(run(os.Args[0], flag.Args()))
}

// run executes the subcommand in args and returns the exit status.
func run(cmd string, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "error: missing subcommand")
		flag.Usage()
		return 1
	}
	subCmd, ok := subCmds[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "error: unknown subcommand %q\n", args[0])
		flag.Usage()
		return 1
	}

	closeLog, err := setupLogging()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer closeLog()

	if err := subCmd.Exec(cmd, args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
