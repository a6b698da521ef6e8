// Package cli formats command line output.
package cli

import (
	"fmt"
	"io"
	"os"
)

// Output writes messages to a pair of streams.
type Output struct {
	Stdout io.Writer
	Stderr io.Writer
}

// New returns an Output. Nil writers default to os.Stdout and os.Stderr.
func New(stdout, stderr io.Writer) *Output {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Output{Stdout: stdout, Stderr: stderr}
}

// Error prints an error message with details to stderr and returns exit
// code 1.
func (o *Output) Error(msg string, err error) int {
	if err == nil {
		fmt.Fprintln(o.Stderr, "error:", msg)
		return 1
	}
	fmt.Fprintf(o.Stderr, "error: %s: %v\n", msg, err)
	return 1
}

// Info prints an informational message to stdout.
func (o *Output) Info(msg string) {
	fmt.Fprintln(o.Stdout, msg)
}

// Infof prints a formatted informational message to stdout.
func (o *Output) Infof(format string, args ...any) {
	fmt.Fprintf(o.Stdout, format+"\n", args...)
}

// Successf prints a formatted success message to stdout.
func (o *Output) Successf(format string, args ...any) {
	fmt.Fprintf(o.Stdout, "✓ "+format+"\n", args...)
}

// Warnf prints a formatted warning message to stderr.
func (o *Output) Warnf(format string, args ...any) {
	fmt.Fprintf(o.Stderr, "warning: "+format+"\n", args...)
}
