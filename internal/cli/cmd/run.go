// Package cmd holds the single CLI command this core exposes.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"rv64emu/internal/cli"
	"rv64emu/internal/log"
	"rv64emu/internal/tty"
)

// Run returns the emulate command: `program kernel_image [disk_image]`.
func Run() cli.Command {
	return new(emulate)
}

type emulate struct {
	debug bool
}

func (e *emulate) FlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("rv64emu", flag.ExitOnError)
	fs.BoolVar(&e.debug, "debug", false, "enable debug logging")

	return fs
}

// Run loads kernel_image (args[0], required) and disk_image (args[1], optional), runs the hart
// to completion, and dumps its final register and CSR state to out. Argv-count and file-open
// errors panic; a fatal exception from the hart itself is reported and exits 1.
func (e *emulate) Run(ctx context.Context, args []string, out io.Writer, logger *log.Logger) int {
	if e.debug {
		log.LogLevel.Set(slog.LevelDebug)
	}

	if len(args) < 1 {
		panic(fmt.Errorf("usage: rv64emu kernel_image [disk_image]"))
	}

	kernelPath := args[0]

	var diskPath string
	if len(args) > 1 {
		diskPath = args[1]
	}

	in, consoleOut, restore := consoleStreams(logger)
	defer restore()

	loader := newImageLoader(logger)

	hart, err := loader.Load(kernelPath, diskPath, in, consoleOut)
	if err != nil {
		panic(err)
	}

	if err := hart.Run(); err != nil {
		logger.Error("hart terminated", log.Any("cause", err))
		fmt.Fprintln(out, hart.Regs.String())
		fmt.Fprintln(out, hart.CSR.String())

		return 1
	}

	fmt.Fprintln(out, hart.Regs.String())
	fmt.Fprintln(out, hart.CSR.String())

	return 0
}

// consoleStreams puts stdin into raw mode when it is a terminal, returning its raw-mode streams
// and a restore function; when stdin is not a terminal (e.g. piped input in tests), it falls back
// to the unmodified stdin/stdout and a no-op restore.
func consoleStreams(logger *log.Logger) (io.Reader, io.Writer, func()) {
	console, err := tty.NewConsole(os.Stdin, os.Stdout)
	if err != nil {
		logger.Debug("no console", log.Any("err", err))
		return os.Stdin, os.Stdout, func() {}
	}

	return console.Reader(), console.Writer(), func() { _ = console.Restore() }
}
