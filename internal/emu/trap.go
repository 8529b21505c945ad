package emu

// trap.go implements exception/interrupt classification, privilege-mode
// delegation, and the mode-transition + CSR-update sequence described in
// spec.md §4.6-§4.7.
//
// Traps are a value, not a Go error that unwinds the call stack (see the
// "Trap as control flow" design note): a semantic handler that wants to
// raise a trap returns a *Trap from Exec, and the step loop is the only
// place that inspects it.

// Exception cause codes (is_interrupt == false).
const (
	CauseInstructionAddressMisaligned Word = 0
	CauseInstructionAccessFault       Word = 1
	CauseIllegalInstruction           Word = 2
	CauseBreakpoint                   Word = 3
	CauseLoadAddressMisaligned        Word = 4
	CauseLoadAccessFault              Word = 5
	CauseStoreAMOAddressMisaligned    Word = 6
	CauseStoreAMOAccessFault          Word = 7
	CauseEnvironmentCallFromUMode     Word = 8
	CauseEnvironmentCallFromSMode     Word = 9
	CauseEnvironmentCallFromMMode     Word = 11
	CauseInstructionPageFault         Word = 12
	CauseLoadPageFault                Word = 13
	CauseStoreAMOPageFault            Word = 15
)

// Interrupt cause codes (is_interrupt == true); these are the bit
// indices of mip/mie/sip/sie, not yet shifted into the high bit.
const (
	CauseSupervisorSoftwareInterrupt Word = 1
	CauseMachineSoftwareInterrupt    Word = 3
	CauseSupervisorTimerInterrupt    Word = 5
	CauseMachineTimerInterrupt       Word = 7
	CauseSupervisorExternalInterrupt Word = 9
	CauseMachineExternalInterrupt    Word = 11
)

// interruptCauseBit is the high bit RV32 sets on an interrupt cause
// (bit 31; see §4.6 step 2 — the design explicitly notes this would
// widen to bit 63 on RV64).
const interruptCauseBit = Word(1) << 31

// Trap is the explicit sum-type value the step loop inspects: either
// there is no trap (a nil *Trap), or it carries the fields needed to
// classify and deliver it.
type Trap struct {
	Cause       Word
	IsInterrupt bool
	Tval        Word
}

func (t *Trap) Error() string {
	if t == nil {
		return "<nil trap>"
	}

	kind := "exception"
	if t.IsInterrupt {
		kind = "interrupt"
	}

	return kind + ": cause=" + Word(t.Cause).String() + " tval=" + t.Tval.String()
}

// fatalCauses are the exception causes that are unrecoverable: the step
// loop halts rather than retrying (§4.8, §7).
var fatalCauses = map[Word]bool{
	CauseInstructionAddressMisaligned: true,
	CauseInstructionAccessFault:       true,
	CauseLoadAccessFault:              true,
	CauseStoreAMOAddressMisaligned:    true,
	CauseStoreAMOAccessFault:          true,
}

// IsFatal reports whether this trap's step() should halt the emulator
// rather than let execution continue at the handler.
func (t *Trap) IsFatal() bool {
	return !t.IsInterrupt && fatalCauses[t.Cause]
}

// rawCause returns the cause value as stored in *cause CSRs: the low
// bits identify the exception/interrupt, with the top bit set for
// interrupts.
func (t *Trap) rawCause() Word {
	c := t.Cause
	if t.IsInterrupt {
		c |= interruptCauseBit
	}

	return c
}

// TakeTrap implements the trap-entry state machine of §4.6: it decides
// between S-mode and M-mode delegation, updates the destination mode's
// CSRs, and returns the PC the hart should resume at. epc is the
// address of the instruction being blamed for the trap (§4.6 step 1):
// the step loop computes it, since only it knows whether PC has
// already been advanced past the faulting instruction.
func (h *Hart) TakeTrap(t *Trap, epc Word) Word {
	delegated := h.delegated(t)

	if h.Priv <= PrivSupervisor && delegated {
		return h.enterSupervisor(t, epc)
	}

	return h.enterMachine(t, epc)
}

// delegated reports whether medeleg/mideleg delegates this cause to
// supervisor mode (§4.6 step 3).
func (h *Hart) delegated(t *Trap) bool {
	bit := Word(1) << (t.Cause & 0x1f)

	if t.IsInterrupt {
		return h.CSR.regs[CSRMideleg]&bit != 0
	}

	return h.CSR.regs[CSRMedeleg]&bit != 0
}

func (h *Hart) enterSupervisor(t *Trap, epc Word) Word {
	prevPriv := h.Priv
	h.Priv = PrivSupervisor

	stvec := h.CSR.regs[CSRStvec]

	pc := stvec &^ 1
	if t.IsInterrupt && stvec&1 != 0 {
		pc += 4 * t.Cause
	}

	h.CSR.regs[CSRSepc] = epc &^ 1
	h.CSR.regs[CSRScause] = t.rawCause()
	h.CSR.regs[CSRStval] = 0 // §4.6: stval is always cleared on entry, not populated with the fault address.

	status := h.CSR.regs[CSRMstatus]
	if status&StatusSIE != 0 {
		status |= StatusSPIE
	} else {
		status &^= StatusSPIE
	}
	status &^= StatusSIE

	if prevPriv == PrivUser {
		status &^= StatusSPP
	} else {
		status |= StatusSPP
	}

	h.CSR.regs[CSRMstatus] = status

	return pc
}

func (h *Hart) enterMachine(t *Trap, epc Word) Word {
	h.Priv = PrivMachine

	mtvec := h.CSR.regs[CSRMtvec]

	pc := mtvec &^ 1
	if t.IsInterrupt && mtvec&1 != 0 {
		pc += 4 * t.Cause
	}

	h.CSR.regs[CSRMepc] = epc &^ 1
	h.CSR.regs[CSRMcause] = t.rawCause()
	h.CSR.regs[CSRMtval] = 0 // §4.6: mtval is always cleared on entry, not populated with the fault address.

	status := h.CSR.regs[CSRMstatus]
	if status&StatusMIE != 0 {
		status |= StatusMPIE
	} else {
		status &^= StatusMPIE
	}
	status &^= StatusMIE
	status &^= StatusMPP // simplified: MPP always clears, per §4.6.

	h.CSR.regs[CSRMstatus] = status

	return pc
}

// PendingInterrupt implements the interrupt-pending evaluation of §4.7.
// It returns nil if no interrupt should be taken this step.
func (h *Hart) PendingInterrupt() *Trap {
	if h.Priv == PrivMachine && !h.CSR.mie() {
		return nil
	}
	if h.Priv == PrivSupervisor && !h.CSR.sie() {
		return nil
	}

	h.syncTimerInterrupt()

	var irq Word

	switch {
	case h.Bus.UART.IsInterrupting():
		irq = uartIRQ
	case h.Bus.VirtioBlk.IsInterrupting():
		h.Bus.VirtioBlk.diskAccess()
		irq = virtioIRQ
	}

	if irq != 0 {
		h.Bus.PLIC.store32(plicSclaimOffset, irq)
		h.CSR.regs[CSRMip] |= SEIP
	}

	pending := h.CSR.regs[CSRMie] & h.CSR.regs[CSRMip]

	for _, bit := range [...]Word{MEIP, MSIP, MTIP, SEIP, SSIP, STIP} {
		if pending&bit == 0 {
			continue
		}

		h.CSR.regs[CSRMip] &^= bit

		return &Trap{Cause: interruptCauseFromBit(bit), IsInterrupt: true}
	}

	return nil
}

// syncTimerInterrupt mirrors the CLINT's mtime >= mtimecmp comparison
// into mip.MTIP. This is additive beyond §4.7's literal steps (which
// start from whatever mip already holds) but without it nothing ever
// sets the timer interrupt CLINT exists to generate; the bit is live
// (recomputed every step), not latched, matching real CLINT hardware.
func (h *Hart) syncTimerInterrupt() {
	if h.Bus.CLINT.TimerPending() {
		h.CSR.regs[CSRMip] |= MTIP
	} else {
		h.CSR.regs[CSRMip] &^= MTIP
	}
}

func interruptCauseFromBit(bit Word) Word {
	switch bit {
	case MEIP:
		return CauseMachineExternalInterrupt
	case MSIP:
		return CauseMachineSoftwareInterrupt
	case MTIP:
		return CauseMachineTimerInterrupt
	case SEIP:
		return CauseSupervisorExternalInterrupt
	case SSIP:
		return CauseSupervisorSoftwareInterrupt
	case STIP:
		return CauseSupervisorTimerInterrupt
	default:
		return 0
	}
}
