// Package cli contains the command-line interface: a single command that runs a kernel (and
// optional disk) image.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"rv64emu/internal/log"
)

// Command is the single action the CLI can run. There is only ever one command here, so no
// name-based lookup is needed.
type Command interface {
	FlagSet() *flag.FlagSet
	Run(ctx context.Context, args []string, out io.Writer, logger *log.Logger) int
}

// Runner executes a single Command end to end: parse flags, run, report.
type Runner struct {
	ctx context.Context
	log *log.Logger
	cmd Command
}

// New creates a Runner for cmd, logging through a stderr-writing formatted logger so the UART's
// stdout stream stays clean of log lines.
func New(ctx context.Context, cmd Command) *Runner {
	logger := log.NewFormattedLogger(os.Stderr)
	log.SetDefault(logger)

	return &Runner{ctx: ctx, log: logger, cmd: cmd}
}

// Execute parses args (excluding the program name) and runs the command, returning its exit
// code. A malformed invocation is not a recoverable condition: with the command's
// flag.ExitOnError flag set, a flag-parse failure exits the process with status 2 inside Parse;
// a flag set with another error-handling mode that returns a parse error makes Execute panic.
func (r *Runner) Execute(args []string) int {
	fs := r.cmd.FlagSet()

	if err := fs.Parse(args); err != nil {
		panic(fmt.Errorf("cli: %w", err))
	}

	return r.cmd.Run(r.ctx, fs.Args(), os.Stdout, r.log)
}
