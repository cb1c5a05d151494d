package snapshot

import (
	"bytes"
	"errors"
	"testing"

	"github.com/bric-vm/bric/internal/cpu"
)

// TestVMRoundTrip is scenario 6 from §8: save then load yields identical
// observable state.
func TestVMRoundTrip(tt *testing.T) {
	tt.Parallel()

	var want VMState
	want.PC = 0x1234
	want.REG.Set(cpu.RegA, 0xDEAD)
	want.REG.Set(cpu.RegD, 0xBEEF)
	want.RAM[0] = 0x0101
	want.Mappings = []cpu.Mapping{{RomAddr: 0, Length: 1, RamAddr: 2}}
	want.ROM = []cpu.Word{0xABCD}

	var buf bytes.Buffer
	if err := SaveVM(&buf, want); err != nil {
		tt.Fatalf("save: %s", err)
	}

	got, err := LoadVM(&buf)
	if err != nil {
		tt.Fatalf("load: %s", err)
	}

	if got.PC != want.PC {
		tt.Errorf("PC: want %s, got %s", want.PC, got.PC)
	}

	if got.REG != want.REG {
		tt.Errorf("REG: want %s, got %s", want.REG, got.REG)
	}

	if got.RAM != want.RAM {
		tt.Errorf("RAM mismatch")
	}

	if len(got.ROM) != len(want.ROM) || got.ROM[0] != want.ROM[0] {
		tt.Errorf("ROM: want %v, got %v", want.ROM, got.ROM)
	}

	if len(got.Mappings) != 1 || got.Mappings[0] != want.Mappings[0] {
		tt.Errorf("Mappings: want %v, got %v", want.Mappings, got.Mappings)
	}
}

func TestVMLoadBadMagic(tt *testing.T) {
	tt.Parallel()

	_, err := LoadVM(bytes.NewReader([]byte{'X', 'X', 'X', 'X'}))
	if !errors.Is(err, ErrBadMagic) {
		tt.Errorf("want ErrBadMagic, got %v", err)
	}
}

func TestVMLoadTruncated(tt *testing.T) {
	tt.Parallel()

	_, err := LoadVM(bytes.NewReader(tagBVM[:]))
	if !errors.Is(err, ErrTruncated) {
		tt.Errorf("want ErrTruncated, got %v", err)
	}
}

func TestVMLoadInconsistentMapping(tt *testing.T) {
	tt.Parallel()

	var s VMState
	s.ROM = []cpu.Word{0xABCD}
	s.Mappings = []cpu.Mapping{{RomAddr: 0, Length: 2, RamAddr: 0}} // reads past end of ROM

	var buf bytes.Buffer
	if err := SaveVM(&buf, s); err != nil {
		tt.Fatalf("save: %s", err)
	}

	_, err := LoadVM(&buf)
	if !errors.Is(err, ErrInconsistent) {
		tt.Errorf("want ErrInconsistent, got %v", err)
	}
}

func TestExeLoadInconsistentMapping(tt *testing.T) {
	tt.Parallel()

	e := Exe{
		ROM:      []cpu.Word{1, 2},
		Mappings: []cpu.Mapping{{RomAddr: 0, Length: 2, RamAddr: 65535}}, // writes past end of RAM
	}

	var buf bytes.Buffer
	if err := SaveExe(&buf, e); err != nil {
		tt.Fatalf("save: %s", err)
	}

	_, err := LoadExe(&buf)
	if !errors.Is(err, ErrInconsistent) {
		tt.Errorf("want ErrInconsistent, got %v", err)
	}
}

func TestDebugRoundTrip(tt *testing.T) {
	tt.Parallel()

	want := DebugState{
		Breakpoints: []cpu.Word{0x10, 0x20, 0x30},
		VM: VMState{
			PC:  4,
			ROM: []cpu.Word{1, 2, 3, 4, 5},
		},
	}

	var buf bytes.Buffer
	if err := SaveDebug(&buf, want); err != nil {
		tt.Fatalf("save: %s", err)
	}

	got, err := LoadDebug(&buf)
	if err != nil {
		tt.Fatalf("load: %s", err)
	}

	if len(got.Breakpoints) != 3 {
		tt.Fatalf("breakpoints: want 3, got %d", len(got.Breakpoints))
	}

	for i, bp := range want.Breakpoints {
		if got.Breakpoints[i] != bp {
			tt.Errorf("breakpoint[%d]: want %s, got %s", i, bp, got.Breakpoints[i])
		}
	}

	if got.VM.PC != want.VM.PC {
		tt.Errorf("PC: want %s, got %s", want.VM.PC, got.VM.PC)
	}
}

func TestExeRoundTrip(tt *testing.T) {
	tt.Parallel()

	want := Exe{
		ROM:      []cpu.Word{0xBEEF, 0xCAFE},
		Mappings: []cpu.Mapping{{RomAddr: 0, Length: 2, RamAddr: 0x4000}},
	}

	var buf bytes.Buffer
	if err := SaveExe(&buf, want); err != nil {
		tt.Fatalf("save: %s", err)
	}

	got, err := LoadExe(&buf)
	if err != nil {
		tt.Fatalf("load: %s", err)
	}

	if len(got.ROM) != 2 || got.ROM[0] != 0xBEEF || got.ROM[1] != 0xCAFE {
		tt.Errorf("ROM: got %v", got.ROM)
	}

	if len(got.Mappings) != 1 || got.Mappings[0] != want.Mappings[0] {
		tt.Errorf("Mappings: got %v", got.Mappings)
	}
}
