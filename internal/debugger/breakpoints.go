package debugger

import "github.com/bric-vm/bric/internal/cpu"

// breakpointSet is a set of ROM addresses; insertion order is irrelevant and
// duplicate inserts are no-ops, per spec §3.
type breakpointSet map[cpu.Word]struct{}

func newBreakpointSet() breakpointSet {
	return breakpointSet{}
}

func (b breakpointSet) add(addr cpu.Word) {
	b[addr] = struct{}{}
}

func (b breakpointSet) remove(addr cpu.Word) {
	delete(b, addr)
}

func (b breakpointSet) has(addr cpu.Word) bool {
	_, ok := b[addr]
	return ok
}

func (b breakpointSet) sorted() []cpu.Word {
	addrs := make([]cpu.Word, 0, len(b))
	for a := range b {
		addrs = append(addrs, a)
	}

	for i := 1; i < len(addrs); i++ {
		for j := i; j > 0 && addrs[j-1] > addrs[j]; j-- {
			addrs[j-1], addrs[j] = addrs[j], addrs[j-1]
		}
	}

	return addrs
}
