package snapshot

import (
	"fmt"
	"io"

	"github.com/bric-vm/bric/internal/bitpack"
	"github.com/bric-vm/bric/internal/cpu"
)

var (
	tagBDB = [4]byte{'B', 'D', 'B', 0}
	tagBPS = [4]byte{'B', 'P', 'S', 0}
)

// DebugState is the full persisted state of a debugging session: the
// breakpoint set plus a complete VM snapshot (spec §4.6).
type DebugState struct {
	Breakpoints []cpu.Word
	VM          VMState
}

// SaveDebug writes a .bdb stream: header, breakpoints section, then an
// embedded .bvm stream.
func SaveDebug(w io.Writer, d DebugState) error {
	if err := bitpack.WriteTag(w, tagBDB); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}

	if err := writeBreakpoints(w, d.Breakpoints); err != nil {
		return fmt.Errorf("snapshot: write breakpoints: %w", err)
	}

	if err := SaveVM(w, d.VM); err != nil {
		return err
	}

	return nil
}

// LoadDebug reads a .bdb stream.
func LoadDebug(r io.Reader) (DebugState, error) {
	var d DebugState

	if err := bitpack.ReadTag(r, tagBDB); err != nil {
		return d, wrapMagic(err)
	}

	bps, err := readBreakpoints(r)
	if err != nil {
		return d, fmt.Errorf("snapshot: read breakpoints: %w", err)
	}

	d.Breakpoints = bps

	vm, err := LoadVM(r)
	if err != nil {
		return d, err
	}

	d.VM = vm

	return d, nil
}

func writeBreakpoints(w io.Writer, breakpoints []cpu.Word) error {
	if err := bitpack.WriteTag(w, tagBPS); err != nil {
		return err
	}

	buf := bitpack.PutU16(nil, uint16(len(breakpoints)))
	if _, err := w.Write(buf); err != nil {
		return err
	}

	if err := bitpack.WriteTerminator(w); err != nil {
		return err
	}

	var addrBuf []byte
	for _, bp := range breakpoints {
		addrBuf = bitpack.PutU16(addrBuf, uint16(bp))
	}

	if _, err := w.Write(addrBuf); err != nil {
		return err
	}

	return bitpack.WriteTerminator(w)
}

func readBreakpoints(r io.Reader) ([]cpu.Word, error) {
	if err := bitpack.ReadTag(r, tagBPS); err != nil {
		return nil, wrapMagic(err)
	}

	count, err := bitpack.ReadU16(r)
	if err != nil {
		return nil, wrapTruncated(err)
	}

	if err := bitpack.ReadTerminator(r); err != nil {
		return nil, wrapTruncated(err)
	}

	breakpoints := make([]cpu.Word, count)

	for i := range breakpoints {
		v, err := bitpack.ReadU16(r)
		if err != nil {
			return nil, wrapTruncated(err)
		}

		breakpoints[i] = cpu.Word(v)
	}

	if err := bitpack.ReadTerminator(r); err != nil {
		return nil, wrapTruncated(err)
	}

	return breakpoints, nil
}
