package snapshot

import (
	"fmt"
	"io"

	"github.com/bric-vm/bric/internal/bitpack"
	"github.com/bric-vm/bric/internal/cpu"
)

var (
	tagBVM = [4]byte{'B', 'V', 'M', 0}
	tagRMP = [4]byte{'R', 'M', 'P', 0}
	tagROM = [4]byte{'R', 'O', 'M', 0}
	tagRAM = [4]byte{'R', 'A', 'M', 0}
)

// regOrder is the fixed register serialization order used by the header
// section: A, D, E, F, G, H.
var regOrder = []cpu.RegID{cpu.RegA, cpu.RegD, cpu.RegE, cpu.RegF, cpu.RegG, cpu.RegH}

// VMState is the full observable state of a BRIC virtual machine, exactly
// the fields the .bvm format round-trips (spec §4.6).
type VMState struct {
	PC       cpu.ProgramCounter
	REG      cpu.RegisterFile
	Mappings []cpu.Mapping
	ROM      []cpu.Word
	RAM      [65536]cpu.Word
}

// StateOf captures a VMState from a running cpu.CPU.
func StateOf(vm *cpu.CPU) VMState {
	return VMState{
		PC:       vm.PC,
		REG:      vm.REG,
		Mappings: vm.Mem.Mappings(),
		ROM:      vm.Mem.ROM(),
		RAM:      vm.Mem.RAM(),
	}
}

// Restore installs a VMState into vm, bypassing Reset's ROM->RAM copy since
// the saved RAM image already reflects it.
func Restore(vm *cpu.CPU, s VMState) {
	vm.PC = s.PC
	vm.REG = s.REG
	vm.Mem.LoadRaw(s.ROM, s.RAM, s.Mappings)
}

// SaveVM writes a .bvm stream, per spec §4.6.
func SaveVM(w io.Writer, s VMState) error {
	if err := writeHeader(w, s.PC, s.REG); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}

	if err := writeMappings(w, s.Mappings); err != nil {
		return fmt.Errorf("snapshot: write mappings: %w", err)
	}

	if err := writeROM(w, s.ROM); err != nil {
		return fmt.Errorf("snapshot: write rom: %w", err)
	}

	if err := writeRAM(w, s.RAM); err != nil {
		return fmt.Errorf("snapshot: write ram: %w", err)
	}

	return nil
}

// LoadVM reads a .bvm stream, per spec §4.6.
func LoadVM(r io.Reader) (VMState, error) {
	var s VMState

	pc, reg, err := readHeader(r)
	if err != nil {
		return s, fmt.Errorf("snapshot: read header: %w", err)
	}

	s.PC, s.REG = pc, reg

	mappings, err := readMappings(r)
	if err != nil {
		return s, fmt.Errorf("snapshot: read mappings: %w", err)
	}

	s.Mappings = mappings

	rom, err := readROM(r)
	if err != nil {
		return s, fmt.Errorf("snapshot: read rom: %w", err)
	}

	s.ROM = rom

	if err := validateMappings(s.Mappings, len(s.ROM)); err != nil {
		return s, err
	}

	ram, err := readRAM(r)
	if err != nil {
		return s, fmt.Errorf("snapshot: read ram: %w", err)
	}

	s.RAM = ram

	return s, nil
}

// validateMappings checks that every mapping's ROM and RAM spans fit
// within the bounds they claim to have been copied from and into: a
// snapshot saved against a different ROM image, or hand-edited, can
// otherwise claim a mapping that reads past the end of its own ROM
// section or writes past the fixed 65536-word RAM image.
func validateMappings(mappings []cpu.Mapping, romLen int) error {
	const ramSize = 65536

	for _, mp := range mappings {
		romEnd := int(mp.RomAddr) + int(mp.Length)
		ramEnd := int(mp.RamAddr) + int(mp.Length)

		if romEnd > romLen || ramEnd > ramSize {
			return fmt.Errorf("%w: mapping %s exceeds rom length %d or ram bound %d",
				ErrInconsistent, mp, romLen, ramSize)
		}
	}

	return nil
}

func writeHeader(w io.Writer, pc cpu.ProgramCounter, reg cpu.RegisterFile) error {
	if err := bitpack.WriteTag(w, tagBVM); err != nil {
		return err
	}

	buf := bitpack.PutU24(nil, uint32(pc))
	if _, err := w.Write(buf); err != nil {
		return err
	}

	if err := bitpack.WriteTerminator(w); err != nil {
		return err
	}

	var regBuf []byte
	for _, id := range regOrder {
		regBuf = bitpack.PutU16(regBuf, uint16(reg.Get(id)))
	}

	if _, err := w.Write(regBuf); err != nil {
		return err
	}

	return bitpack.WriteTerminator(w)
}

func readHeader(r io.Reader) (cpu.ProgramCounter, cpu.RegisterFile, error) {
	var reg cpu.RegisterFile

	if err := bitpack.ReadTag(r, tagBVM); err != nil {
		return 0, reg, wrapMagic(err)
	}

	pc, err := bitpack.ReadU24(r)
	if err != nil {
		return 0, reg, wrapTruncated(err)
	}

	if err := bitpack.ReadTerminator(r); err != nil {
		return 0, reg, wrapTruncated(err)
	}

	for _, id := range regOrder {
		v, err := bitpack.ReadU16(r)
		if err != nil {
			return 0, reg, wrapTruncated(err)
		}

		reg.Set(id, cpu.Word(v))
	}

	if err := bitpack.ReadTerminator(r); err != nil {
		return 0, reg, wrapTruncated(err)
	}

	return cpu.ProgramCounter(pc), reg, nil
}

func writeMappings(w io.Writer, mappings []cpu.Mapping) error {
	if err := bitpack.WriteTag(w, tagRMP); err != nil {
		return err
	}

	buf := bitpack.PutU24(nil, uint32(len(mappings)))
	if _, err := w.Write(buf); err != nil {
		return err
	}

	if err := bitpack.WriteTerminator(w); err != nil {
		return err
	}

	for _, mp := range mappings {
		entry := bitpack.PutU16(nil, uint16(mp.RomAddr))
		entry = bitpack.PutU16(entry, uint16(mp.Length))
		entry = bitpack.PutU16(entry, uint16(mp.RamAddr))
		entry = bitpack.PutU8(entry, 0x00)

		if _, err := w.Write(entry); err != nil {
			return err
		}
	}

	return bitpack.WriteTerminator(w)
}

func readMappings(r io.Reader) ([]cpu.Mapping, error) {
	if err := bitpack.ReadTag(r, tagRMP); err != nil {
		return nil, wrapMagic(err)
	}

	count, err := bitpack.ReadU24(r)
	if err != nil {
		return nil, wrapTruncated(err)
	}

	if err := bitpack.ReadTerminator(r); err != nil {
		return nil, wrapTruncated(err)
	}

	mappings := make([]cpu.Mapping, 0, count)

	for i := uint32(0); i < count; i++ {
		rom, err := bitpack.ReadU16(r)
		if err != nil {
			return nil, wrapTruncated(err)
		}

		length, err := bitpack.ReadU16(r)
		if err != nil {
			return nil, wrapTruncated(err)
		}

		ram, err := bitpack.ReadU16(r)
		if err != nil {
			return nil, wrapTruncated(err)
		}

		if err := bitpack.ReadTerminator(r); err != nil {
			return nil, wrapTruncated(err)
		}

		mappings = append(mappings, cpu.Mapping{
			RomAddr: cpu.Word(rom),
			Length:  cpu.Word(length),
			RamAddr: cpu.Word(ram),
		})
	}

	if err := bitpack.ReadTerminator(r); err != nil {
		return nil, wrapTruncated(err)
	}

	return mappings, nil
}

func writeROM(w io.Writer, rom []cpu.Word) error {
	if err := bitpack.WriteTag(w, tagROM); err != nil {
		return err
	}

	buf := bitpack.PutU24(nil, uint32(len(rom)))
	if _, err := w.Write(buf); err != nil {
		return err
	}

	if err := bitpack.WriteTerminator(w); err != nil {
		return err
	}

	var wordBuf []byte
	for _, word := range rom {
		wordBuf = bitpack.PutU16(wordBuf, uint16(word))
	}

	if _, err := w.Write(wordBuf); err != nil {
		return err
	}

	return bitpack.WriteTerminator(w)
}

func readROM(r io.Reader) ([]cpu.Word, error) {
	if err := bitpack.ReadTag(r, tagROM); err != nil {
		return nil, wrapMagic(err)
	}

	count, err := bitpack.ReadU24(r)
	if err != nil {
		return nil, wrapTruncated(err)
	}

	if err := bitpack.ReadTerminator(r); err != nil {
		return nil, wrapTruncated(err)
	}

	rom := make([]cpu.Word, count)

	for i := range rom {
		v, err := bitpack.ReadU16(r)
		if err != nil {
			return nil, wrapTruncated(err)
		}

		rom[i] = cpu.Word(v)
	}

	if err := bitpack.ReadTerminator(r); err != nil {
		return nil, wrapTruncated(err)
	}

	return rom, nil
}

func writeRAM(w io.Writer, ram [65536]cpu.Word) error {
	if err := bitpack.WriteTag(w, tagRAM); err != nil {
		return err
	}

	buf := make([]byte, 0, len(ram)*2)
	for _, word := range ram {
		buf = bitpack.PutU16(buf, uint16(word))
	}

	_, err := w.Write(buf)

	return err
}

func readRAM(r io.Reader) ([65536]cpu.Word, error) {
	var ram [65536]cpu.Word

	if err := bitpack.ReadTag(r, tagRAM); err != nil {
		return ram, wrapMagic(err)
	}

	raw := make([]byte, len(ram)*2)
	if _, err := io.ReadFull(r, raw); err != nil {
		return ram, wrapTruncated(err)
	}

	for i := range ram {
		ram[i] = cpu.Word(bitpack.GetU16(raw[i*2 : i*2+2]))
	}

	return ram, nil
}

func wrapMagic(err error) error {
	return fmt.Errorf("%w: %s", ErrBadMagic, err)
}

func wrapTruncated(err error) error {
	return fmt.Errorf("%w: %s", ErrTruncated, err)
}
