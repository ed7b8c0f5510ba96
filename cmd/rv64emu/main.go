// rv64emu is a RISC-V RV64IMA user-space-free machine emulator, sufficient to boot an xv6-class
// kernel behind a VirtIO block device and a 16550a UART.
package main

import (
	"context"
	"os"

	"rv64emu/internal/cli"
	"rv64emu/internal/cli/cmd"
)

func main() {
	runner := cli.New(context.Background(), cmd.Run())
	os.Exit(runner.Execute(os.Args[1:]))
}
