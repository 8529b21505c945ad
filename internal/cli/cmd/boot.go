package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/riscv32emu/virt/internal/cli"
	"github.com/riscv32emu/virt/internal/console"
	"github.com/riscv32emu/virt/internal/emu"
	"github.com/riscv32emu/virt/internal/image"
	"github.com/riscv32emu/virt/internal/log"
)

// Boot returns the "boot" command: loads a kernel (and optional disk)
// image and runs the emulator until it halts.
func Boot() cli.Command {
	return &boot{
		log:      log.DefaultLogger(),
		dramSize: emu.DefaultDRAMSize,
	}
}

type boot struct {
	log      *log.Logger
	logLevel slog.Level
	dramSize int
	diskPath string
	trace    bool
}

func (boot) Description() string {
	return "boot a kernel image"
}

func (boot) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `boot kernel.bin

Boots a kernel image in the emulator. Standard input/output are
connected to the guest's UART when stdin is a terminal.`)

	return err
}

func (b *boot) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("boot", flag.ExitOnError)
	fs.Func("loglevel", "set log `level`", func(s string) error {
		return b.logLevel.UnmarshalText([]byte(s))
	})
	fs.IntVar(&b.dramSize, "dram-size", emu.DefaultDRAMSize, "size of DRAM, in bytes")
	fs.StringVar(&b.diskPath, "disk", "", "path to a disk image for virtio-blk")
	fs.BoolVar(&b.trace, "trace", false, "log a disassembly of every instruction executed")

	return fs
}

// Run loads the kernel (and optional disk) image and steps the
// emulator until it halts or the context is cancelled.
func (b *boot) Run(ctx context.Context, args []string, out io.Writer, logger *log.Logger) int {
	log.LogLevel.Set(b.logLevel)

	if len(args) == 0 {
		logger.Error("boot requires a kernel image path")
		return 1
	}

	loader := image.NewLoader()

	kernel, err := loader.LoadKernel(args[0])
	if err != nil {
		logger.Error(err.Error())
		return 1
	}

	disk, err := loader.LoadDisk(b.diskPath)
	if err != nil {
		logger.Error(err.Error())
		return 1
	}

	hart := emu.NewHart(b.dramSize, kernel, disk)

	cons, cancelConsole, err := console.New(hart.Bus.UART)
	if err != nil {
		logger.Debug("no interactive console", "err", err)
	} else {
		defer cancelConsole()
	}

	logger.Info("booting", "kernel", args[0], "dram", b.dramSize)

	for !hart.Halted {
		select {
		case <-ctx.Done():
			logger.Info("interrupted")
			return 0
		default:
		}

		if cons != nil {
			cons.Poll(hart.Bus.UART)
		}

		if b.trace {
			b.traceStep(hart, logger)
		}

		hart.Step()
	}

	if hart.HaltCause != nil {
		logger.Error("halted", "cause", hart.HaltCause.Error())
		return 2
	}

	return 0
}

// traceStep logs a best-effort disassembly of the instruction about to
// execute. It re-fetches through the same Translate+Bus.Load path the
// step loop uses; a failed fetch here is silently skipped since Step
// itself will raise and report the real trap.
func (b *boot) traceStep(h *emu.Hart, logger *log.Logger) {
	pa, trap := h.Translate(h.PC, emu.AccessInstruction)
	if trap != nil {
		return
	}

	raw, trap := h.Bus.Load(pa, 32, emu.AccessInstruction)
	if trap != nil {
		return
	}

	logger.Debug("trace", "pc", h.PC, "insn", emu.Disassemble(emu.Word(raw)))
}
