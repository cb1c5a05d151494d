package snapshot

import (
	"fmt"
	"io"

	"github.com/bric-vm/bric/internal/bitpack"
	"github.com/bric-vm/bric/internal/cpu"
)

// tagBEX marks an assembled .bexe container: an asm.Object serialized for
// reuse without re-assembling from source. Not part of §4.6's required
// formats, but sharing its RMP/ROM section codecs, per §6's "concrete
// container chosen by the implementation so long as it round-trips".
var tagBEX = [4]byte{'B', 'E', 'X', 0}

// Exe is an assembled program: a ROM image plus its constants mappings.
type Exe struct {
	ROM      []cpu.Word
	Mappings []cpu.Mapping
}

// SaveExe writes a .bexe container.
func SaveExe(w io.Writer, e Exe) error {
	if err := bitpack.WriteTag(w, tagBEX); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}

	if err := writeMappings(w, e.Mappings); err != nil {
		return fmt.Errorf("snapshot: write mappings: %w", err)
	}

	if err := writeROM(w, e.ROM); err != nil {
		return fmt.Errorf("snapshot: write rom: %w", err)
	}

	return nil
}

// LoadExe reads a .bexe container.
func LoadExe(r io.Reader) (Exe, error) {
	var e Exe

	if err := bitpack.ReadTag(r, tagBEX); err != nil {
		return e, wrapMagic(err)
	}

	mappings, err := readMappings(r)
	if err != nil {
		return e, fmt.Errorf("snapshot: read mappings: %w", err)
	}

	e.Mappings = mappings

	rom, err := readROM(r)
	if err != nil {
		return e, fmt.Errorf("snapshot: read rom: %w", err)
	}

	e.ROM = rom

	if err := validateMappings(e.Mappings, len(e.ROM)); err != nil {
		return e, err
	}

	return e, nil
}
