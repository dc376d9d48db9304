package cli

import (
	"io"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Log  *LogCommand
	Stat *StatCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(out io.Writer) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "ttreport"
	parser.LongDescription = "Print time-tracker day logs and tag reports straight from the store."

	cmds := &commands{
		Log:  &LogCommand{globals: &globals, out: out},
		Stat: &StatCommand{globals: &globals, out: out},
	}

	parser.AddCommand("log", "Print a user's day log", "Print every entry of a user's day, one per line, in the user's timezone.", cmds.Log)
	parser.AddCommand("stat", "Print a user's tag report", "Print time per tag for a user's day.", cmds.Stat)

	return parser, &globals, cmds
}

// Run parses os.Args and executes the matched subcommand.
func Run() error {
	return RunWithArgs(nil, os.Stdout)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(args []string, out io.Writer) error {
	parser, _, _ := buildParser(out)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok && flagsErr.Type == goflags.ErrHelp {
			return nil
		}
		return err
	}
	return nil
}
