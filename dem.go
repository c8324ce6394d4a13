package main

import (
	"fmt"
	"io"
	"os"

	"github.com/lethe-cfd/lethe-dem/lib/config"
	"github.com/lethe-cfd/lethe-dem/lib/dem"
	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
)

func main() {
	// Parse arguments.
	mode, configFile, flags, err := config.ParseCommandLine(os.Args[1:])
	if err != nil {
		l_error.Report(err)
		return
	}

	// Run the chosen mode.
	switch mode {
	case config.HelpMode, config.ExampleMode:
		l_error.Report(PrintText(os.Stdout, mode))
	case config.CheckMode:
		l_error.Report(Check(configFile, flags))
	case config.RunMode:
		l_error.Report(Run(configFile, flags))
	}
}

// PrintText writes the output of the "help" and "example" modes to w. These
// texts contain printf verbs, so they are never used as format strings.
func PrintText(w io.Writer, mode config.Mode) error {
	text := config.Help
	if mode == config.ExampleMode {
		text = config.ExampleConfig
	}
	_, err := io.WriteString(w, text+"\n")
	return err
}

// readArgs reads and processes the parameter file, then applies the command
// line overrides.
func readArgs(configFile string, flags *config.Flags) (*config.Args, error) {
	raw, err := config.ParseConfigFile(configFile)
	if err != nil {
		return nil, err
	}
	args, err := raw.Process()
	if err != nil {
		return nil, err
	}
	args.Overwrite(flags)
	return args, nil
}

// Check runs the "check" mode, which tests for errors in the parameter file.
func Check(configFile string, flags *config.Flags) error {
	args, err := readArgs(configFile, flags)
	if err != nil {
		return err
	}
	if err = config.Check(args); err != nil {
		return err
	}
	fmt.Println("No errors detected.")
	return nil
}

// Run runs the "run" mode, which runs the simulation.
func Run(configFile string, flags *config.Flags) error {
	args, err := readArgs(configFile, flags)
	if err != nil {
		return err
	}
	_, err = dem.Run(args, os.Stdout)
	return err
}
