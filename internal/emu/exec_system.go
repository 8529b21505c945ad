package emu

// exec_system.go implements the SYSTEM opcode: ECALL/EBREAK/MRET/SRET,
// and the Zicsr instructions (§4.10).

func (h *Hart) execSystem(insn Word, f fields) *Trap {
	switch f.funct3 {
	case 0x0:
		return h.execPrivileged(insn, f)
	case 0x1: // csrrw
		return h.execCSR(insn, f, func(old, rs1 Word) (Word, bool) { return rs1, true })
	case 0x2: // csrrs
		return h.execCSR(insn, f, func(old, rs1 Word) (Word, bool) { return old | rs1, f.rs1 != 0 })
	case 0x3: // csrrc
		return h.execCSR(insn, f, func(old, rs1 Word) (Word, bool) { return old &^ rs1, f.rs1 != 0 })
	case 0x5: // csrrwi
		return h.execCSRImm(insn, f, func(old, uimm Word) (Word, bool) { return uimm, true })
	case 0x6: // csrrsi
		return h.execCSRImm(insn, f, func(old, uimm Word) (Word, bool) { return old | uimm, uimm != 0 })
	case 0x7: // csrrci
		return h.execCSRImm(insn, f, func(old, uimm Word) (Word, bool) { return old &^ uimm, uimm != 0 })
	default:
		return &Trap{Cause: CauseIllegalInstruction, Tval: insn}
	}
}

func (h *Hart) execPrivileged(insn Word, f fields) *Trap {
	switch {
	case insn == 0x0000_0073: // ecall
		return &Trap{Cause: ecallCause(h.Priv)}
	case insn == 0x0010_0073: // ebreak
		return &Trap{Cause: CauseBreakpoint}
	case insn == 0x3020_0073: // mret
		h.execMret()
		return nil
	case insn == 0x1020_0073: // sret
		h.execSret()
		return nil
	case insn == 0x1050_0073: // wfi
		return nil // no wall-clock idle model; treated as a no-op.
	default:
		return &Trap{Cause: CauseIllegalInstruction, Tval: insn}
	}
}

func ecallCause(p Priv) Word {
	switch p {
	case PrivUser:
		return CauseEnvironmentCallFromUMode
	case PrivSupervisor:
		return CauseEnvironmentCallFromSMode
	default:
		return CauseEnvironmentCallFromMMode
	}
}

// execMret restores *PIE -> *IE and sets mode from *PP (§4.10).
func (h *Hart) execMret() {
	status := h.CSR.regs[CSRMstatus]

	if status&StatusMPIE != 0 {
		status |= StatusMIE
	} else {
		status &^= StatusMIE
	}

	status |= StatusMPIE

	mpp := (status & StatusMPP) >> 11
	status &^= StatusMPP

	h.CSR.regs[CSRMstatus] = status
	h.Priv = Priv(mpp)
	h.PC = h.CSR.regs[CSRMepc]
}

func (h *Hart) execSret() {
	status := h.CSR.regs[CSRMstatus]

	if status&StatusSPIE != 0 {
		status |= StatusSIE
	} else {
		status &^= StatusSIE
	}

	status |= StatusSPIE

	var spp Priv
	if status&StatusSPP != 0 {
		spp = PrivSupervisor
	} else {
		spp = PrivUser
	}

	status &^= StatusSPP

	h.CSR.regs[CSRMstatus] = status
	h.Priv = spp
	h.PC = h.CSR.regs[CSRSepc]
}

func (h *Hart) execCSR(insn Word, f fields, combine func(old, rs1 Word) (Word, bool)) *Trap {
	addr := csrAddr(insn)

	old := h.CSR.Load(addr)
	rs1 := h.Get(f.rs1)

	next, write := combine(old, rs1)

	if write {
		h.CSR.Store(addr, next)
	}

	h.Set(f.rd, old)

	return nil
}

func (h *Hart) execCSRImm(insn Word, f fields, combine func(old, uimm Word) (Word, bool)) *Trap {
	addr := csrAddr(insn)

	old := h.CSR.Load(addr)
	uimm := Word(f.rs1)

	next, write := combine(old, uimm)

	if write {
		h.CSR.Store(addr, next)
	}

	h.Set(f.rd, old)

	return nil
}
