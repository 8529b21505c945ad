package emu

import "testing"

// TestTrapDelegation implements §8 end-to-end scenario 5: medeleg
// delegates LoadPageFault to supervisor mode; taking that trap from
// supervisor mode must land back in supervisor mode with scause/sepc
// set and pc redirected through stvec.
func TestTrapDelegation(t *testing.T) {
	t.Parallel()

	h := newHart(t, 4096)

	h.Priv = PrivSupervisor
	h.CSR.regs[CSRMedeleg] = 1 << CauseLoadPageFault
	h.CSR.regs[CSRStvec] = 0x9000_0000

	pcBefore := Word(0x8000_1004)

	trap := &Trap{Cause: CauseLoadPageFault, Tval: 0x1000}
	h.raise(trap, pcBefore-4)

	if h.Priv != PrivSupervisor {
		t.Errorf("mode = %v, want Supervisor", h.Priv)
	}

	if h.CSR.regs[CSRScause] != CauseLoadPageFault {
		t.Errorf("scause = %v, want CauseLoadPageFault", h.CSR.regs[CSRScause])
	}

	if h.CSR.regs[CSRSepc] != pcBefore-4 {
		t.Errorf("sepc = %#x, want %#x", h.CSR.regs[CSRSepc], pcBefore-4)
	}

	if h.PC != h.CSR.regs[CSRStvec]&^1 {
		t.Errorf("pc = %#x, want stvec = %#x", h.PC, h.CSR.regs[CSRStvec])
	}
}

// TestTrapClearsTval guards §4.6's "stval/mtval := 0" step: the trap
// unit must not leak the faulting address/tval into the CSR, even
// though the Trap value passed in carries one.
func TestTrapClearsTval(t *testing.T) {
	t.Parallel()

	h := newHart(t, 4096)
	h.Priv = PrivSupervisor
	h.CSR.regs[CSRMedeleg] = 1 << CauseLoadPageFault

	h.raise(&Trap{Cause: CauseLoadPageFault, Tval: 0xdead_beef}, h.PC)

	if h.CSR.regs[CSRStval] != 0 {
		t.Errorf("stval = %#x, want 0", h.CSR.regs[CSRStval])
	}

	h.Priv = PrivMachine
	h.CSR.regs[CSRMedeleg] = 0

	h.raise(&Trap{Cause: CauseIllegalInstruction, Tval: 0xbaad_f00d}, h.PC)

	if h.CSR.regs[CSRMtval] != 0 {
		t.Errorf("mtval = %#x, want 0", h.CSR.regs[CSRMtval])
	}
}

func TestTrapNotDelegatedGoesToMachine(t *testing.T) {
	t.Parallel()

	h := newHart(t, 4096)
	h.Priv = PrivSupervisor // medeleg is zero: nothing delegated.
	h.CSR.regs[CSRMtvec] = 0x9000_0000

	trap := &Trap{Cause: CauseIllegalInstruction}
	pc := h.TakeTrap(trap, 0x8000_0100)

	if h.Priv != PrivMachine {
		t.Errorf("mode = %v, want Machine", h.Priv)
	}

	if pc != 0x9000_0000 {
		t.Errorf("pc = %#x, want mtvec", pc)
	}
}

func TestTrapFatalHalts(t *testing.T) {
	t.Parallel()

	h := newHart(t, 4096)

	trap := &Trap{Cause: CauseLoadAccessFault}
	h.raise(trap, h.PC)

	if !h.Halted {
		t.Error("fatal trap must halt the hart")
	}

	if h.HaltCause != trap {
		t.Error("HaltCause must record the fatal trap")
	}
}

func TestPendingInterruptGatedByStatusBits(t *testing.T) {
	t.Parallel()

	h := newHart(t, 4096)
	h.Priv = PrivMachine
	// mstatus.MIE is clear: no interrupt should be observable even if
	// a device is asserting one.
	h.CSR.regs[CSRMie] = MEIP
	h.CSR.regs[CSRMip] = MEIP

	if irq := h.PendingInterrupt(); irq != nil {
		t.Errorf("want nil with MIE clear, got %v", irq)
	}

	h.CSR.regs[CSRMstatus] |= StatusMIE

	irq := h.PendingInterrupt()
	if irq == nil {
		t.Fatal("want a pending interrupt with MIE set")
	}

	if !irq.IsInterrupt || irq.Cause != CauseMachineExternalInterrupt {
		t.Errorf("irq = %+v, want MachineExternalInterrupt", irq)
	}
}

func TestUartInterruptRoutesThroughPLIC(t *testing.T) {
	t.Parallel()

	h := newHart(t, 4096)
	h.Priv = PrivMachine
	h.CSR.regs[CSRMstatus] |= StatusMIE
	h.CSR.regs[CSRMie] = SEIP

	h.Bus.UART.PushRX('x')

	irq := h.PendingInterrupt()
	if irq == nil || irq.Cause != CauseSupervisorExternalInterrupt {
		t.Fatalf("irq = %+v, want SupervisorExternalInterrupt", irq)
	}

	if h.Bus.PLIC.claim != uartIRQ {
		t.Errorf("PLIC claim = %d, want UART IRQ %d", h.Bus.PLIC.claim, uartIRQ)
	}
}
