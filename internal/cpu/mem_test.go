package cpu

import (
	"errors"
	"testing"
)

func TestResetAppliesMappings(tt *testing.T) {
	tt.Parallel()

	mem := NewMemory(nil)
	rom := []Word{0xBEEF, 0xCAFE, 0x1234}
	mappings := []Mapping{
		{RomAddr: 0, Length: 2, RamAddr: 0x4000},
		{RomAddr: 2, Length: 1, RamAddr: 0x5000},
	}

	if err := mem.Reset(rom, mappings); err != nil {
		tt.Fatalf("reset: %s", err)
	}

	for _, m := range mappings {
		for i := Word(0); i < m.Length; i++ {
			want := rom[m.RomAddr+i]
			got := mem.ReadRAM(m.RamAddr + i)

			if got != want {
				tt.Errorf("RAM[%s]: want %s, got %s", m.RamAddr+i, want, got)
			}
		}
	}
}

func TestResetMappingOutOfRange(tt *testing.T) {
	tt.Parallel()

	mem := NewMemory(nil)
	rom := []Word{0x0001}

	err := mem.Reset(rom, []Mapping{{RomAddr: 0, Length: 2, RamAddr: 0}})
	if !errors.Is(err, ErrMappingOutOfRange) {
		tt.Errorf("want ErrMappingOutOfRange, got %v", err)
	}
}

func TestReadROMBounds(tt *testing.T) {
	tt.Parallel()

	mem := NewMemory(nil)
	if err := mem.Reset([]Word{0x1111}, nil); err != nil {
		tt.Fatalf("reset: %s", err)
	}

	if _, err := mem.ReadROM(0); err != nil {
		tt.Errorf("ReadROM(0): %s", err)
	}

	if _, err := mem.ReadROM(1); !errors.Is(err, ErrAddressOutOfRange) {
		tt.Errorf("ReadROM(1): want ErrAddressOutOfRange, got %v", err)
	}
}

type fakeDevice struct {
	reads, writes []Word
	value         Word
}

func (f *fakeDevice) Read(addr Word) Word {
	f.reads = append(f.reads, addr)
	return f.value
}

func (f *fakeDevice) Write(addr Word, val Word) {
	f.writes = append(f.writes, addr)
	f.value = val
}

func TestMMIODispatch(tt *testing.T) {
	tt.Parallel()

	mem := NewMemory(nil)
	dev := &fakeDevice{value: 0x42}
	mem.RegisterMMIO(0x9000, 0x9001, dev)

	if err := mem.Reset([]Word{0}, nil); err != nil {
		tt.Fatalf("reset: %s", err)
	}

	if got := mem.MMIORead(0x9000); got != 0x42 {
		tt.Errorf("MMIORead(0x9000): want 0x42, got %s", got)
	}

	mem.MMIOWrite(0x9001, 0x99)

	if len(dev.writes) != 1 || dev.writes[0] != 0x9001 {
		tt.Errorf("device did not observe write: %+v", dev.writes)
	}

	// Addresses outside the registered range fall through to plain RAM.
	mem.MMIOWrite(0x9002, 0x55)

	if got := mem.MMIORead(0x9002); got != 0x55 {
		tt.Errorf("unmapped MMIO fallthrough: want 0x55, got %s", got)
	}

	if len(dev.reads) != 1 {
		tt.Errorf("device should not observe out-of-range reads: %+v", dev.reads)
	}
}
