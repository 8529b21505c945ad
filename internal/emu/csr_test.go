package emu

import "testing"

func TestCSRRoundTrip(t *testing.T) {
	t.Parallel()

	var c CSRFile

	c.Store(CSRMscratch, 0x1234)

	if got := c.Load(CSRMscratch); got != 0x1234 {
		t.Errorf("mscratch = %#x, want 0x1234", got)
	}
}

func TestCSRSieDelegation(t *testing.T) {
	t.Parallel()

	var c CSRFile

	// Delegate only the supervisor-timer and supervisor-external bits.
	c.regs[CSRMideleg] = STIP | SEIP
	c.regs[CSRMie] = MEIP | MTIP // nothing delegated set yet.

	c.Store(CSRSie, STIP|SEIP|MEIP) // MEIP isn't delegated; must be dropped.

	if got := c.Load(CSRSie); got != STIP|SEIP {
		t.Errorf("sie = %#x, want %#x (only delegated bits)", got, STIP|SEIP)
	}

	// mie's non-delegated bits (MEIP, MTIP) must be untouched by the sie write.
	if c.regs[CSRMie]&MEIP == 0 {
		t.Error("write to sie clobbered a non-delegated mie bit")
	}

	// Invariant: sie == mie & mideleg, always.
	if c.Load(CSRSie) != c.regs[CSRMie]&c.regs[CSRMideleg] {
		t.Error("sie != mie & mideleg after store")
	}
}

func TestCSRSstatusMasksMstatus(t *testing.T) {
	t.Parallel()

	var c CSRFile

	// A machine-mode-only bit, set directly in mstatus: sstatus must
	// never expose it.
	c.regs[CSRMstatus] = StatusMIE | StatusMPIE | StatusMPP

	if got := c.Load(CSRSstatus); got != 0 {
		t.Errorf("sstatus = %#x, want 0 (no supervisor bits set)", got)
	}

	c.Store(CSRSstatus, StatusSIE|StatusSPIE|StatusSPP)

	// The write must land in mstatus itself, since that's the storage
	// enterSupervisor/execSret read and write directly.
	want := StatusMIE | StatusMPIE | StatusMPP | StatusSIE | StatusSPIE | StatusSPP
	if c.regs[CSRMstatus] != want {
		t.Errorf("mstatus = %#x, want %#x", c.regs[CSRMstatus], want)
	}

	// A write to sstatus must not disturb the machine-mode-only bits.
	if c.regs[CSRMstatus]&StatusMIE == 0 || c.regs[CSRMstatus]&StatusMPP != StatusMPP {
		t.Error("sstatus write clobbered a machine-mode-only mstatus bit")
	}

	if got := c.Load(CSRSstatus); got != StatusSIE|StatusSPIE|StatusSPP {
		t.Errorf("sstatus = %#x, want %#x", got, StatusSIE|StatusSPIE|StatusSPP)
	}
}

func TestSatpPagingRefresh(t *testing.T) {
	t.Parallel()

	var c CSRFile

	c.Store(CSRSatp, 0) // mode field 0 disables paging.
	if c.pagingEnabled {
		t.Error("satp mode 0 must disable paging")
	}

	ppn := Word(0x1234)
	c.Store(CSRSatp, (SatpModeSv39<<satpModeShift)|ppn)

	if !c.pagingEnabled {
		t.Error("satp mode 8 must enable paging")
	}

	if c.pageTableRoot != ppn*PageSize {
		t.Errorf("pageTableRoot = %#x, want %#x", c.pageTableRoot, ppn*PageSize)
	}
}
