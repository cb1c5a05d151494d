package cpu

import "errors"

// Decode errors, per spec §7.
var (
	// ErrInvalidEncoding is returned when decode observes a register/target
	// combination or bit pattern the instruction semantics cannot honor.
	ErrInvalidEncoding = errors.New("cpu: invalid encoding")

	// ErrInvalidOpcode is returned when decode observes one of the three
	// reserved 4-bit operation codes (1101, 1110, 1111).
	ErrInvalidOpcode = errors.New("cpu: invalid opcode")
)

// Memory errors, per spec §7.
var (
	// ErrAddressOutOfRange is returned by bounds-checked ROM/RAM access.
	ErrAddressOutOfRange = errors.New("cpu: address out of range")

	// ErrMappingOutOfRange is returned when a ROM->RAM mapping would read
	// past the end of ROM or write past the end of RAM.
	ErrMappingOutOfRange = errors.New("cpu: mapping out of range")

	// ErrRomWrite is reserved for a *A target whose address resolves into
	// ROM. BRIC's ROM and RAM are disjoint address spaces (RAM is a full
	// 64K array independent of ROM length), so in this implementation a
	// *A write can never land in ROM and this error is unreachable; it is
	// exported for API completeness with the spec's error taxonomy.
	ErrRomWrite = errors.New("cpu: write to ROM")
)
