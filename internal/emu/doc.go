// Package emu implements the core of a RISC-V RV32 privileged-architecture
// emulator modeled on the QEMU "virt" machine: a single hart capable of
// booting an xv6-class kernel image that performs supervisor-mode paging,
// takes traps, drives a 16550A UART for console I/O, and issues legacy
// block I/O through a memory-mapped virtio-blk device.
//
// The package has no file I/O and no terminal I/O: a Hart is constructed
// from two in-memory byte slices (kernel image, disk image) and stepped
// by the caller. Host collaborators (internal/image, internal/console)
// live outside this package and talk to the Hart only through the
// documented hooks on its UART.
package emu
