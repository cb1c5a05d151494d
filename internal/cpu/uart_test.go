package cpu

import "testing"

func TestUARTFeedAndDrain(tt *testing.T) {
	tt.Parallel()

	u := NewUART(nil)
	u.FeedIn([]byte("hi"))

	if got := u.Read(RegInFlag); got&FlagDA == 0 {
		tt.Errorf("DA should be set after feeding input")
	}

	var out []byte

	for i := 0; i < 2; i++ {
		out = append(out, byte(u.Read(RegIn)))
	}

	if string(out) != "hi" {
		tt.Errorf("want %q, got %q", "hi", out)
	}

	if got := u.Read(RegInFlag); got&FlagDA != 0 {
		tt.Errorf("DA should clear once input FIFO is empty")
	}
}

func TestUARTOutputLoopback(tt *testing.T) {
	tt.Parallel()

	u := NewUART(nil)

	for _, b := range []byte("hi") {
		u.Write(RegOut, Word(b))
	}

	if got := u.DrainOut(); string(got) != "hi" {
		tt.Errorf("want %q, got %q", "hi", got)
	}

	if got := u.DrainOut(); len(got) != 0 {
		tt.Errorf("drain should be idempotent once empty, got %q", got)
	}
}

func TestUARTInputOverflowSticky(tt *testing.T) {
	tt.Parallel()

	u := NewUART(nil)

	big := make([]byte, fifoCapacity+10)
	u.FeedIn(big)

	if got := u.Read(RegInFlag); got&FlagIO == 0 {
		tt.Errorf("IO should be sticky-set after overflow")
	}

	// RU clears both FIFOs and the overflow bit.
	u.Write(RegCtl, CtlRU)

	if got := u.Read(RegInFlag); got&FlagIO != 0 {
		tt.Errorf("IO should clear after RU reset")
	}

	if got := u.Read(RegInFlag); got&FlagDA != 0 {
		tt.Errorf("DA should clear after RU reset")
	}
}

func TestUARTOutputFullDropsBytes(tt *testing.T) {
	tt.Parallel()

	u := NewUART(nil)

	for i := 0; i < fifoCapacity+5; i++ {
		u.Write(RegOut, Word(i))
	}

	out := u.DrainOut()
	if len(out) != fifoCapacity {
		tt.Errorf("want %d bytes, got %d", fifoCapacity, len(out))
	}
}

func TestUARTBaudRegister(tt *testing.T) {
	tt.Parallel()

	u := NewUART(nil)
	u.Write(RegBaud, 9600)

	if got := u.Read(RegBaud); got != 9600 {
		tt.Errorf("want 9600, got %s", got)
	}
}

func TestUARTControlReadback(tt *testing.T) {
	tt.Parallel()

	u := NewUART(nil)
	u.Write(RegCtl, CtlOW)

	if got := u.Read(RegCtl); got != CtlOW {
		tt.Errorf("want %s, got %s", CtlOW, got)
	}
}
