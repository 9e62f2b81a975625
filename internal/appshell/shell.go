// Package appshell is the process entry shared by delgen binaries: it
// installs signal handling and turns a run function into an exit status.
package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// RunFunc executes a command line and returns its exit code.
type RunFunc func(ctx context.Context, argv []string, stdout, stderr io.Writer) int

// CanceledCode is the status of a run interrupted by a signal.
const CanceledCode = 130

// Exec runs run under ctx and normalizes the exit code of a cancelled run
// that reported success.
func Exec(ctx context.Context, run RunFunc, argv []string, stdout, stderr io.Writer) int {
	code := run(ctx, argv, stdout, stderr)
	if ctx.Err() != nil && code == 0 {
		code = CanceledCode
	}
	return code
}

// Main runs run with the process arguments and exits. SIGINT and SIGTERM
// cancel the run's context.
func Main(run RunFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Exec(ctx, run, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
