package cpu

// mem.go implements the memory subsystem (spec §4.2): a ROM image, a full
// 64K RAM image, ROM->RAM reset-time mappings, and an MMIO dispatch table
// peripherals register into rather than having the interpreter know about
// devices directly.

import (
	"fmt"

	"github.com/bric-vm/bric/internal/log"
)

const ramSize = 1 << 16

// MMIODevice is a memory-mapped peripheral. Read and Write are given the
// absolute address so a device spanning multiple registers can tell them
// apart.
type MMIODevice interface {
	Read(addr Word) Word
	Write(addr Word, val Word)
}

// Mapping is a declarative ROM->RAM copy applied at reset: ROM[RomAddr,
// RomAddr+Length) is copied into RAM[RamAddr, RamAddr+Length).
type Mapping struct {
	RomAddr Word
	Length  Word
	RamAddr Word
}

func (m Mapping) String() string {
	return fmt.Sprintf("ROM[%s..%s) -> RAM[%s..%s)",
		m.RomAddr, m.RomAddr+m.Length, m.RamAddr, m.RamAddr+m.Length)
}

type mmioRange struct {
	start, end Word // inclusive
	dev        MMIODevice
}

// Memory holds the ROM image, the RAM image, and the MMIO device registry.
type Memory struct {
	rom      []Word
	ram      [ramSize]Word
	ranges   []mmioRange
	mappings []Mapping

	log *log.Logger
}

// NewMemory creates an empty memory subsystem.
func NewMemory(logger *log.Logger) *Memory {
	if logger == nil {
		logger = log.DefaultLogger()
	}

	return &Memory{log: logger}
}

// RegisterMMIO maps an inclusive address range [start, end] to a device.
// Ranges must not overlap; BRIC has exactly one device (the UART), so overlap
// is not checked. Lookup uses the first registered range that matches.
func (m *Memory) RegisterMMIO(start, end Word, dev MMIODevice) {
	m.ranges = append(m.ranges, mmioRange{start: start, end: end, dev: dev})
	m.log.Debug("registered MMIO range", "start", start, "end", end)
}

func (m *Memory) lookup(addr Word) (MMIODevice, bool) {
	for _, r := range m.ranges {
		if addr >= r.start && addr <= r.end {
			return r.dev, true
		}
	}

	return nil, false
}

// Reset zeroes RAM, installs rom, then applies mappings in declared order.
// A mapping that would read past the end of ROM or write past the end of RAM
// fails with ErrMappingOutOfRange and leaves no mappings after it applied.
func (m *Memory) Reset(rom []Word, mappings []Mapping) error {
	for i := range m.ram {
		m.ram[i] = 0
	}

	m.rom = rom
	m.mappings = mappings

	for _, mp := range mappings {
		romEnd := int(mp.RomAddr) + int(mp.Length)
		ramEnd := int(mp.RamAddr) + int(mp.Length)

		if romEnd > len(m.rom) || ramEnd > ramSize {
			return fmt.Errorf("cpu: %w: %s", ErrMappingOutOfRange, mp)
		}

		for i := 0; i < int(mp.Length); i++ {
			m.ram[int(mp.RamAddr)+i] = m.rom[int(mp.RomAddr)+i]
		}

		m.log.Debug("applied mapping", "mapping", mp)
	}

	return nil
}

// RomLen returns the number of words in the installed ROM image.
func (m *Memory) RomLen() int {
	return len(m.rom)
}

// ROM returns the installed ROM image. Callers must not mutate the returned
// slice; ROM is otherwise immutable during execution (spec §3).
func (m *Memory) ROM() []Word {
	return m.rom
}

// Mappings returns the ROM->RAM mappings applied by the most recent Reset.
func (m *Memory) Mappings() []Mapping {
	return m.mappings
}

// RAM returns a copy of the full 65536-word RAM image, for snapshotting.
func (m *Memory) RAM() [ramSize]Word {
	return m.ram
}

// LoadRaw installs an exact ROM, RAM and mapping-table state, bypassing the
// ROM->RAM copy Reset performs. This is how a snapshot restores VM state: the
// saved RAM image already reflects whatever mappings applied when it was
// captured, so re-running them would be redundant at best and wrong if the
// RAM has since diverged from ROM.
func (m *Memory) LoadRaw(rom []Word, ram [ramSize]Word, mappings []Mapping) {
	m.rom = rom
	m.ram = ram
	m.mappings = mappings
}

// ReadROM reads a bounds-checked word from ROM.
func (m *Memory) ReadROM(addr Word) (Word, error) {
	if int(addr) >= len(m.rom) {
		return 0, fmt.Errorf("cpu: %w: ROM[%s]", ErrAddressOutOfRange, addr)
	}

	return m.rom[addr], nil
}

// ReadRAM reads a word from RAM. RAM spans the full 16-bit address space, so
// every Word value is a valid address.
func (m *Memory) ReadRAM(addr Word) Word {
	return m.ram[addr]
}

// WriteRAM writes a word to RAM.
func (m *Memory) WriteRAM(addr Word, val Word) {
	m.ram[addr] = val
}

// MMIORead reads addr, dispatching to a registered device if addr falls in
// its range; otherwise it reads plain RAM. This is the default physical
// behavior for reads of unmapped MMIO addresses (spec §4.2).
func (m *Memory) MMIORead(addr Word) Word {
	if dev, ok := m.lookup(addr); ok {
		return dev.Read(addr)
	}

	return m.ReadRAM(addr)
}

// MMIOWrite writes addr, dispatching to a registered device if addr falls in
// its range; otherwise it writes plain RAM.
func (m *Memory) MMIOWrite(addr Word, val Word) {
	if dev, ok := m.lookup(addr); ok {
		dev.Write(addr, val)
		return
	}

	m.WriteRAM(addr, val)
}
