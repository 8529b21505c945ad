package emu

// clint.go is the core-local interruptor: two 64-bit counters, mtime
// and mtimecmp (§4.2, §6). Only 64-bit-wide accesses are legal; any
// other size raises an access fault. A 64-bit access at an offset
// other than the two documented ones reads zero, and a store there is
// ignored.

const (
	clintMtimecmpOffset = Word(0x4000)
	clintMtimeOffset    = Word(0xBFF8)
)

// CLINT holds the two counters. mtime is expected to tick forward once
// per step (§3); this implementation increments it there rather than
// binding it to wall-clock time (Non-goal: hardware timer wall-clock
// binding).
type CLINT struct {
	mtime    uint64
	mtimecmp uint64
}

func NewCLINT() *CLINT {
	return &CLINT{}
}

// Tick advances mtime by one; called once per hart step.
func (c *CLINT) Tick() {
	c.mtime++
}

// TimerPending reports whether mtime has reached mtimecmp, the
// condition for a machine timer interrupt.
func (c *CLINT) TimerPending() bool {
	return c.mtime >= c.mtimecmp
}

func (c *CLINT) load(addr Word, size int, at AccessType) (uint64, *Trap) {
	if size != 64 {
		return 0, accessFault(at, addr)
	}

	off := addr - ClintBase

	switch off {
	case clintMtimeOffset:
		return c.mtime, nil
	case clintMtimecmpOffset:
		return c.mtimecmp, nil
	default:
		return 0, nil
	}
}

func (c *CLINT) store(addr Word, size int, val uint64) *Trap {
	if size != 64 {
		return &Trap{Cause: CauseStoreAMOAccessFault, Tval: addr}
	}

	off := addr - ClintBase

	switch off {
	case clintMtimeOffset:
		c.mtime = val
	case clintMtimecmpOffset:
		c.mtimecmp = val
	}

	return nil
}
