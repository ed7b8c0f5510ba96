// Package tty adapts a Unix terminal into the raw byte stream the UART device expects.
package tty

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrNoTTY is returned if standard input is not a terminal, in which case there is nothing to put
// into raw mode and the caller should fall back to an unconfigured stream.
var ErrNoTTY = errors.New("tty: not a terminal")

// Console puts the controlling terminal into raw mode for the life of the process and exposes its
// streams as the plain io.Reader/io.Writer the UART's stdin-reader goroutine and THR writes need.
// The UART already owns its reader goroutine, so this package needs nothing beyond a byte stream.
type Console struct {
	in    *os.File
	out   *os.File
	fd    int
	state *term.State
}

// NewConsole puts sin into raw mode and returns a Console wrapping it, or ErrNoTTY if sin is not
// a terminal.
func NewConsole(sin, sout *os.File) (*Console, error) {
	fd := int(sin.Fd())

	if !term.IsTerminal(fd) {
		return nil, ErrNoTTY
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoTTY, err)
	}

	c := &Console{in: sin, out: sout, fd: fd, state: state}

	if err := c.setTerminalParams(1, 0); err != nil {
		_ = term.Restore(fd, state)
		return nil, err
	}

	return c, nil
}

// Reader returns the raw-mode input stream.
func (c *Console) Reader() io.Reader { return c.in }

// Writer returns the output stream.
func (c *Console) Writer() io.Writer { return c.out }

// Restore returns the terminal to its state before NewConsole.
func (c *Console) Restore() error {
	return term.Restore(c.fd, c.state)
}

// setTerminalParams configures VMIN/VTIME so reads block for exactly one byte at a time, matching
// what the UART's stdin-reader goroutine expects from its io.Reader.
func (c *Console) setTerminalParams(vmin, vtime byte) error {
	termIO, err := unix.IoctlGetTermios(c.fd, ioctlGetTermios)
	if err != nil {
		return err
	}

	termIO.Cc[unix.VMIN] = vmin
	termIO.Cc[unix.VTIME] = vtime

	return unix.IoctlSetTermios(c.fd, ioctlSetTermios, termIO)
}
