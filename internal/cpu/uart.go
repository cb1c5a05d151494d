package cpu

// uart.go implements the UART device (spec §4.4): two bounded 256-byte FIFOs,
// a baud register, and a small set of status/control bits, plus the host
// bridge operations (FeedIn/DrainOut) the debugger uses to drive I/O.

import "github.com/bric-vm/bric/internal/log"

// UART register addresses, mapped into MMIO by New.
const (
	UARTBase  Word = 0x6000
	RegBaud   Word = UARTBase + 0 // U_BAUD
	RegOut    Word = UARTBase + 1 // U_OUT
	RegIn     Word = UARTBase + 2 // U_IN
	RegInFlag Word = UARTBase + 3 // U_IFL
	RegCtl    Word = UARTBase + 4 // U_OFL
)

const fifoCapacity = 256

// Control bits written to RegCtl.
const (
	CtlOW Word = 1 << 0 // host notes a byte was written (advisory)
	CtlIR Word = 1 << 1 // host notes input consumed (advisory)
	CtlRU Word = 1 << 2 // reset: clears both FIFOs and the overflow bit
)

// Status bits read from RegInFlag.
const (
	FlagDA Word = 1 << 0 // set iff the input FIFO is non-empty
	FlagIO Word = 1 << 1 // sticky-set if a host push overflowed the input FIFO
	FlagOR Word = 1 << 2 // set iff the output FIFO has room
)

// byteFIFO is a fixed-capacity ring buffer of bytes with overflow reported to
// the caller rather than panicking or blocking.
type byteFIFO struct {
	buf        [fifoCapacity]byte
	head, tail int
	count      int
}

func (f *byteFIFO) push(b byte) (ok bool) {
	if f.count == fifoCapacity {
		return false
	}

	f.buf[f.tail] = b
	f.tail = (f.tail + 1) % fifoCapacity
	f.count++

	return true
}

func (f *byteFIFO) pop() (b byte, ok bool) {
	if f.count == 0 {
		return 0, false
	}

	b = f.buf[f.head]
	f.head = (f.head + 1) % fifoCapacity
	f.count--

	return b, true
}

func (f *byteFIFO) empty() bool { return f.count == 0 }
func (f *byteFIFO) full() bool  { return f.count == fifoCapacity }
func (f *byteFIFO) reset()      { *f = byteFIFO{} }

// UART is the BRIC UART device: two byte FIFOs, a baud register and a sticky
// input-overflow bit. It implements MMIODevice and is registered over
// [0x6000, 0x6004].
type UART struct {
	in, out  byteFIFO
	baud     Word
	lastCtl  Word
	overflow bool

	log *log.Logger
}

var _ MMIODevice = (*UART)(nil)

// NewUART creates an idle UART device.
func NewUART(logger *log.Logger) *UART {
	if logger == nil {
		logger = log.DefaultLogger()
	}

	return &UART{log: logger}
}

// Read implements MMIODevice.
func (u *UART) Read(addr Word) Word {
	switch addr {
	case RegBaud:
		return u.baud
	case RegOut:
		return 0
	case RegIn:
		b, _ := u.in.pop()
		return Word(b)
	case RegInFlag:
		return u.flags()
	case RegCtl:
		return u.lastCtl
	default:
		return 0
	}
}

// Write implements MMIODevice.
func (u *UART) Write(addr Word, val Word) {
	switch addr {
	case RegBaud:
		u.baud = val
	case RegOut:
		if !u.out.push(byte(val)) {
			u.log.Debug("UART output FIFO full, dropping byte")
		}
	case RegIn:
		// Writes to U_IN are ignored; it is read-only from the program's
		// point of view.
	case RegInFlag:
		// Writes to U_IFL are ignored; status is computed, not stored.
	case RegCtl:
		u.lastCtl = val

		if val&CtlRU != 0 {
			u.in.reset()
			u.out.reset()
			u.overflow = false
		}
	}
}

func (u *UART) flags() Word {
	var f Word

	if !u.in.empty() {
		f |= FlagDA
	}

	if u.overflow {
		f |= FlagIO
	}

	if !u.out.full() {
		f |= FlagOR
	}

	return f
}

// FeedIn appends bytes to the input FIFO, dropping (and sticky-flagging
// overflow on) any bytes beyond capacity.
func (u *UART) FeedIn(data []byte) {
	for _, b := range data {
		if !u.in.push(b) {
			u.overflow = true
		}
	}
}

// DrainOut empties and returns the contents of the output FIFO.
func (u *UART) DrainOut() []byte {
	out := make([]byte, 0, u.out.count)

	for {
		b, ok := u.out.pop()
		if !ok {
			break
		}

		out = append(out, b)
	}

	return out
}
