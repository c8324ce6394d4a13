package config

import (
	"flag"
	"io/ioutil"

	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
)

// Mode is the mode the dem binary is run in.
type Mode int

const (
	HelpMode Mode = iota
	CheckMode
	RunMode
	ExampleMode
)

// ParseMode converts a mode name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "help":
		return HelpMode, nil
	case "check":
		return CheckMode, nil
	case "run":
		return RunMode, nil
	case "example":
		return ExampleMode, nil
	}
	return HelpMode, l_error.Config("You attempted to run in the mode '%s', "+
		"but the only valid modes are 'help', 'check', 'run', and "+
		"'example'.", s)
}

// ParseCommandLine parses the command line arguments (without the program
// name) and returns the mode, the name of the parameter file, and any
// overrides which were set. Expects that the arguments are presented in the
// order:
// $ dem <mode> [<config file>] [-ranks <n>] [-steps <n>]
func ParseCommandLine(argv []string) (Mode, string, *Flags, error) {
	if len(argv) == 0 {
		return HelpMode, "", &Flags{}, nil
	}
	mode, err := ParseMode(argv[0])
	if err != nil {
		return mode, "", nil, err
	}

	rest, configFile := argv[1:], ""
	if len(rest) > 0 && len(rest[0]) > 0 && rest[0][0] != '-' {
		configFile, rest = rest[0], rest[1:]
	}

	flags := &Flags{}
	fs := flag.NewFlagSet("dem", flag.ContinueOnError)
	fs.SetOutput(ioutil.Discard)
	fs.IntVar(&flags.Ranks, "ranks", 0, "Number of ranks. Overrides Parallel.Ranks.")
	fs.Int64Var(&flags.Steps, "steps", 0, "Maximum number of steps. Overrides "+
		"SimulationControl.MaxSteps.")
	if err := fs.Parse(rest); err != nil {
		return mode, "", nil, l_error.Config("%s", err.Error())
	}
	if fs.NArg() > 0 {
		return mode, "", nil, l_error.Config("Unexpected arguments %v.", fs.Args())
	}

	if configFile == "" && (mode == CheckMode || mode == RunMode) {
		return mode, "", nil, l_error.Config("The '%s' mode requires a "+
			"parameter file.", argv[0])
	}
	return mode, configFile, flags, nil
}

// Help is printed by the "help" mode.
const Help = `Lethe/DEM resolves contacts between spherical particles.

Usage:
    dem <mode> [<parameter file>] [-ranks <n>] [-steps <n>]

Modes:
    help     Prints this message.
    example  Prints an example parameter file.
    check    Checks a parameter file for errors without running it.
    run      Runs the simulation described by a parameter file.

Flags:
    -ranks   Number of ranks. Overrides Parallel.Ranks.
    -steps   Maximum number of steps. Overrides SimulationControl.MaxSteps.`
