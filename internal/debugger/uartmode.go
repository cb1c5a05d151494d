package debugger

import (
	"bufio"
	"fmt"
	"io"

	"golang.org/x/term"
)

// RunUARTMode implements the "u" REPL command (spec §4.7): each line feeds
// its bytes to the VM's UART input FIFO, and output accumulated since the
// last feed is drained and shown; "quit_uart" exits the mode.
//
// When d.Raw names a real terminal file descriptor (wired by the command-line
// driver's -u flag), input is instead read one raw byte at a time with the
// terminal in raw mode, echoing UART output as it is produced; the mode then
// exits on Ctrl-D (EOT) rather than a typed command, since raw mode has no
// line buffering to recognize "quit_uart" against.
func RunUARTMode(d *Debugger, scanner *bufio.Scanner, out io.Writer) error {
	if d.Raw != nil {
		return runRawUARTMode(d, out)
	}

	return runLineUARTMode(d, scanner, out)
}

func runLineUARTMode(d *Debugger, scanner *bufio.Scanner, out io.Writer) error {
	for scanner.Scan() {
		line := scanner.Text()
		if line == "quit_uart" {
			break
		}

		d.VM.UART.FeedIn([]byte(line))

		if drained := d.VM.UART.DrainOut(); len(drained) > 0 {
			fmt.Fprintf(out, "%s\n", drained)
		}
	}

	if drained := d.VM.UART.DrainOut(); len(drained) > 0 {
		fmt.Fprintf(out, "%s\n", drained)
	}

	return scanner.Err()
}

const byteEOT = 0x04

func runRawUARTMode(d *Debugger, out io.Writer) error {
	fd := int(d.Raw.Fd())

	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("debugger: enter raw mode: %w", err)
	}

	defer term.Restore(fd, state)

	buf := make([]byte, 1)

	for {
		if _, err := d.Raw.Read(buf); err != nil {
			return err
		}

		if buf[0] == byteEOT {
			break
		}

		d.VM.UART.FeedIn(buf)

		if drained := d.VM.UART.DrainOut(); len(drained) > 0 {
			if _, err := out.Write(drained); err != nil {
				return err
			}
		}
	}

	if drained := d.VM.UART.DrainOut(); len(drained) > 0 {
		_, err := out.Write(drained)
		return err
	}

	return nil
}
