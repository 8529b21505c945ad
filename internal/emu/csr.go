package emu

// csr.go implements the 4096-entry control-and-status register file and
// the handful of registers whose read/write semantics have side effects
// beyond a plain array slot.

// CSR addresses used by this implementation. Unlisted addresses are
// still addressable (the backing array has all 4096 slots); they just
// have no software meaning here.
const (
	CSRSstatus Word = 0x100
	CSRSie     Word = 0x104
	CSRStvec   Word = 0x105
	CSRSscratch Word = 0x140
	CSRSepc    Word = 0x141
	CSRScause  Word = 0x142
	CSRStval   Word = 0x143
	CSRSip     Word = 0x144
	CSRSatp    Word = 0x180

	CSRMstatus Word = 0x300
	CSRMisa    Word = 0x301
	CSRMedeleg Word = 0x302
	CSRMideleg Word = 0x303
	CSRMie     Word = 0x304
	CSRMtvec   Word = 0x305
	CSRMscratch Word = 0x340
	CSRMepc    Word = 0x341
	CSRMcause  Word = 0x342
	CSRMtval   Word = 0x343
	CSRMip     Word = 0x344
)

// Bits within mstatus/sstatus.
const (
	StatusSIE Word = 1 << 1
	StatusMIE Word = 1 << 3
	StatusSPIE Word = 1 << 5
	StatusMPIE Word = 1 << 7
	StatusSPP Word = 1 << 8
	StatusMPP Word = 0b11 << 11
)

// Bits within mip/mie/sip/sie, in the priority order the step loop must
// check them.
const (
	MEIP Word = 1 << 11
	MSIP Word = 1 << 3
	MTIP Word = 1 << 7
	SEIP Word = 1 << 9
	SSIP Word = 1 << 1
	STIP Word = 1 << 5
)

// NumCSR is the size of the CSR address space.
const NumCSR = 4096

// CSRFile is the 4096-entry control-and-status register array, along
// with the paging cache that is refreshed whenever satp is written.
type CSRFile struct {
	regs [NumCSR]Word

	// Paging cache, rederived on every write to satp (§4.4).
	pagingEnabled bool
	pageTableRoot Word
}

// sstatusMask is the set of mstatus bits visible through sstatus: the
// supervisor-mode interrupt-enable/previous-enable/previous-privilege
// fields the trap unit (enterSupervisor, execSret) reads and writes
// directly out of mstatus. sstatus is a restricted view onto mstatus,
// not a register of its own (§4.4) — every other mstatus bit (MIE,
// MPIE, MPP, ...) stays invisible to a CSR instruction addressing 0x100.
const sstatusMask Word = StatusSIE | StatusSPIE | StatusSPP

// Load reads a CSR. sie/sstatus are synthesized from mie/mstatus rather
// than read directly out of the array.
func (c *CSRFile) Load(addr Word) Word {
	switch addr {
	case CSRSie:
		return c.regs[CSRMie] & c.regs[CSRMideleg]
	case CSRSstatus:
		return c.regs[CSRMstatus] & sstatusMask
	}

	return c.regs[addr]
}

// Store writes a CSR. A write to sie only touches the bits of mie that
// mideleg delegates to supervisor mode; a write to sstatus only touches
// the supervisor-visible bits of mstatus, so it observes the same
// trap-return/interrupt-enable state enterSupervisor and execSret
// mutate directly; a write to satp recomputes the paging cache.
func (c *CSRFile) Store(addr Word, val Word) {
	switch addr {
	case CSRSie:
		deleg := c.regs[CSRMideleg]
		c.regs[CSRMie] = (c.regs[CSRMie] &^ deleg) | (val & deleg)
	case CSRSstatus:
		c.regs[CSRMstatus] = (c.regs[CSRMstatus] &^ sstatusMask) | (val & sstatusMask)
	case CSRSatp:
		c.regs[CSRSatp] = val
		c.refreshPaging()
	default:
		c.regs[addr] = val
	}
}

// satp layout in this implementation: mode occupies the top 4 bits
// (the RV64 MODE encoding, where 8 selects Sv39, is reused verbatim per
// spec.md's invariant 3) and ppn the low 22 bits. XLEN is 32 here, so
// the PPN window is narrower than a real Sv39 satp; it is wide enough
// to address the DRAM sizes this emulator supports.
const (
	satpModeShift = 28
	satpPPNMask   = 0x3f_ffff
	SatpModeSv39  = Word(8)
)

// refreshPaging recomputes the paging cache from the current satp
// value. Called directly after any store to satp through Store.
func (c *CSRFile) refreshPaging() {
	satp := c.regs[CSRSatp]
	mode := satp >> satpModeShift

	ppn := satp & satpPPNMask
	c.pageTableRoot = ppn * PageSize
	c.pagingEnabled = mode == SatpModeSv39
}

// Mstatus/Sstatus bit helpers used by the trap unit.

func (c *CSRFile) mie() bool { return c.regs[CSRMstatus]&StatusMIE != 0 }
func (c *CSRFile) sie() bool { return c.regs[CSRMstatus]&StatusSIE != 0 }
