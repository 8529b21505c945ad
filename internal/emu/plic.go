package emu

// plic.go is the platform-level interrupt controller: pending, enable,
// priority, and claim registers, 32-bit access only (§4.2, §6).

const (
	plicPendingOffset   = Word(0x1000)
	plicEnableOffset    = Word(0x2080)
	plicPriorityOffset  = Word(0x20_1000)
	plicClaimOffset     = Word(0x20_1004)
)

// PLIC tracks the four documented registers. This emulator only routes
// one external source per device (UART, VirtioBlk), so enable/priority
// are modeled but not consulted by PendingInterrupt — the step loop's
// interrupt-pending evaluation (§4.7) claims unconditionally on any
// asserted device IRQ, matching the source behavior spec.md describes.
type PLIC struct {
	pending  Word
	enable   Word
	priority Word
	claim    Word
}

func NewPLIC() *PLIC {
	return &PLIC{}
}

func (p *PLIC) load(addr Word, size int, at AccessType) (uint64, *Trap) {
	if size != 32 {
		return 0, accessFault(at, addr)
	}

	switch addr - PlicBase {
	case plicPendingOffset:
		return uint64(p.pending), nil
	case plicEnableOffset:
		return uint64(p.enable), nil
	case plicPriorityOffset:
		return uint64(p.priority), nil
	case plicClaimOffset:
		return uint64(p.claim), nil
	default:
		return 0, nil
	}
}

func (p *PLIC) store(addr Word, size int, val uint64) *Trap {
	if size != 32 {
		return &Trap{Cause: CauseStoreAMOAccessFault, Tval: addr}
	}

	switch addr - PlicBase {
	case plicPendingOffset:
		p.pending = Word(val)
	case plicEnableOffset:
		p.enable = Word(val)
	case plicPriorityOffset:
		p.priority = Word(val)
	case plicClaimOffset:
		p.claim = Word(val)
	}

	return nil
}

// store32 is used by the step loop's interrupt-pending evaluation
// (§4.7 step 3) to assert SCLAIM directly, bypassing the Bus — the
// PLIC is reacting to a device IRQ line, not to a CPU-initiated MMIO
// access.
func (p *PLIC) store32(offset Word, val Word) {
	switch offset {
	case plicClaimOffset:
		p.claim = val
	}
}

// plicSclaimOffset is SCLAIM's offset from PlicBase, used by trap.go.
const plicSclaimOffset = plicClaimOffset
