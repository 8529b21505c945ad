// Command rv32virt is the command-line interface to the emulator: a
// single-hart RISC-V RV32 privileged-architecture machine modeled on
// the QEMU "virt" board.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/riscv32emu/virt/internal/cli"
	"github.com/riscv32emu/virt/internal/cli/cmd"
)

var commands = []cli.Command{
	cmd.Boot(),
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result :=
		cli.New(ctx).
			WithLogger(os.Stderr).
			WithCommands(commands).
			WithHelp(cmd.Help(commands)).
			Execute(os.Args[1:])

	os.Exit(result)
}
