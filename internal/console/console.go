// Package console adapts a Unix terminal to the Hart's UART hooks: it
// feeds host keystrokes into the UART's RX register and drains guest
// writes to TX onto the real terminal.
//
// Grounded on the teacher's cmd/internal/tty Console (the complete
// generation, wired to golang.org/x/term for raw mode and
// golang.org/x/sys/unix for non-blocking reads of the controlling
// terminal) and adapted from LC-3's keyboard/display device pair to
// the 16550A UART's PushRX/OnTransmit hooks (spec.md §5, §6).
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrNoTTY is returned if standard input is not a terminal; in that
// case asynchronous keystroke delivery is not available.
var ErrNoTTY = errors.New("console: not a TTY")

// UART is the subset of *emu.UART the console drives. Defined here
// rather than imported so this package has no compile-time dependency
// on internal/emu's concrete type.
type UART interface {
	PushRX(b byte)
	OnTransmit(fn func(byte))
}

// Console adapts a raw-mode terminal to a Hart's UART.
type Console struct {
	in    *os.File
	out   *term.Terminal
	fd    int
	state *term.State

	keyCh chan byte
}

// New puts stdin into raw mode and wires the UART's RX/TX hooks to the
// terminal. The returned cancel function must be called to restore the
// terminal and stop the read goroutine; it is safe to call more than
// once.
//
// Per spec.md §5, the host contract is that UART RX is only mutated
// between Hart.Step calls: the goroutine started here pushes bytes
// into a buffered channel, and the caller's step loop is responsible
// for draining it between steps with Poll.
func New(u UART) (*Console, context.CancelFunc, error) {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		return nil, nil, ErrNoTTY
	}

	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrNoTTY, err)
	}

	c := &Console{
		fd:    fd,
		in:    os.Stdin,
		out:   term.NewTerminal(os.Stdin, ""),
		state: saved,
		keyCh: make(chan byte, 16),
	}

	if err := c.setTerminalParams(1, 0); err != nil {
		_ = term.Restore(fd, saved)
		return nil, nil, err
	}

	u.OnTransmit(func(b byte) {
		fmt.Fprintf(c.out, "%c", b)
	})

	ctx, cancel := context.WithCancel(context.Background())

	go c.readTerminal(ctx)

	return c, func() {
		cancel()
		c.Restore()
	}, nil
}

// Poll drains any keystrokes buffered since the last call and injects
// them into the UART. Call once per Hart.Step, between steps.
func (c *Console) Poll(u UART) {
	for {
		select {
		case b := <-c.keyCh:
			u.PushRX(b)
		default:
			return
		}
	}
}

// Restore returns the terminal to its initial state and unblocks any
// in-progress read.
func (c *Console) Restore() {
	_ = os.Stdin.SetReadDeadline(time.Now())
	_ = term.Restore(c.fd, c.state)
}

func (c *Console) setTerminalParams(vmin, vtime byte) error {
	_ = syscall.SetNonblock(c.fd, true)

	termIO, err := unix.IoctlGetTermios(c.fd, getTermiosIoctl)
	if err != nil {
		return err
	}

	termIO.Cc[unix.VMIN] = vmin
	termIO.Cc[unix.VTIME] = vtime

	if err := unix.IoctlSetTermios(c.fd, setTermiosIoctl, termIO); err != nil {
		return err
	}

	_ = os.Stdin.SetReadDeadline(time.Time{})

	return nil
}

// readTerminal reads bytes from the terminal and forwards them to
// keyCh until ctx is cancelled or the read fails (e.g. Restore
// unblocked it via SetReadDeadline).
func (c *Console) readTerminal(ctx context.Context) {
	buf := bufio.NewReader(c.in)

	_ = syscall.SetNonblock(c.fd, false)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		b, err := buf.ReadByte()
		if err != nil {
			return
		}

		select {
		case c.keyCh <- b:
		case <-ctx.Done():
			return
		}
	}
}
