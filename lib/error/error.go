/*package error contains simple functions for reporting Lethe/DEM errors and
the two error types that library packages return instead of exiting.
*/
package error

import (
	"errors"
	"fmt"
	"log"
	"os"
	"runtime/debug"
)

// exit is swapped out by tests which need to observe fatal paths.
var (
	exit   = os.Exit
	osExit = os.Exit
)

// ConfigError is returned when a simulation cannot start because of a problem
// in the parameter file. It is always something a user could fix.
type ConfigError struct {
	Msg string
}

func (err *ConfigError) Error() string { return err.Msg }

// InvariantError is returned when an internal invariant of the DEM core is
// violated (e.g. two particles with the same ID). It requires a code dive to
// fix.
type InvariantError struct {
	Msg string
}

func (err *InvariantError) Error() string { return err.Msg }

// Config creates a ConfigError with the same signature as fmt.Errorf.
func Config(format string, a ...interface{}) error {
	return &ConfigError{fmt.Sprintf(format, a...)}
}

// Invariant creates an InvariantError with the same signature as fmt.Errorf.
func Invariant(format string, a ...interface{}) error {
	return &InvariantError{fmt.Sprintf(format, a...)}
}

// IsConfig returns true if err is, or wraps, a ConfigError and false
// otherwise.
func IsConfig(err error) bool {
	var cErr *ConfigError
	return errors.As(err, &cErr)
}

// External reports an error to stderr and kills the process. It should be used
// when an error is something a user could reasonably be expected to fix through
// changes in configuration/data/environment. It has the same signature as the
// standard fmt.*printf() functions.
func External(format string, a ...interface{}) {
	log.Printf("Lethe/DEM exited early with the following error:\n"+format, a...)
	exit(1)
}

// Internal reports an error to stderr along with a stack trace and kills the
// process. It should be used when the error requires a code dive to fix. It
// has the same signature as the standard fmt.*printf() functions.
func Internal(format string, a ...interface{}) {
	log.Println("Lethe/DEM exited early with the following internal error:")
	fmt.Fprintf(os.Stderr, format, a...)
	fmt.Fprintf(os.Stderr, "\n\n")
	debug.PrintStack()
	exit(1)
}

// Report routes err to External if it is a ConfigError and to Internal
// otherwise. It does nothing if err is nil.
func Report(err error) {
	if err == nil {
		return
	}
	if IsConfig(err) {
		External("%s", err.Error())
	} else {
		Internal("%s", err.Error())
	}
}
