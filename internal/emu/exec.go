package emu

// exec.go is the ISA executor: a single switch dispatching on the
// decoded opcode/funct3/funct7, in the style of a plain
// Execute(ci) error interpreter rather than staged per-instruction
// interfaces — the trap-as-value redesign (§9) needs Exec to return a
// value, not unwind through a chain of handler objects, so there is
// nothing to gain from interface-mediated dispatch here.
//
// All arithmetic is modulo 2^32 (Go's uint32 wraparound); shift amounts
// are masked to 5 bits (§4.10).
//
// Without the C extension, IALIGN is 32: a jump/branch target must be
// 4-byte aligned, so the misalignment checks below test the low two
// bits, not just bit 0 (which JAL/JALR/branch immediates can never
// set on their own).

import "math"

// Exec decodes and executes one instruction. It returns a non-nil
// *Trap if the instruction raised one; the step loop is responsible
// for invoking the trap unit and honoring Trap.IsFatal.
func (h *Hart) Exec(insn Word) *Trap {
	f := decodeFields(insn)

	switch f.opcode {
	case opLui:
		h.Set(f.rd, immU(insn))
	case opAuipc:
		h.Set(f.rd, (h.PC-4)+immU(insn))
	case opJal:
		target := (h.PC - 4) + immJ(insn)
		if target&3 != 0 {
			return &Trap{Cause: CauseInstructionAddressMisaligned, Tval: target}
		}

		h.Set(f.rd, h.PC)
		h.PC = target
	case opJalr:
		target := (h.Get(f.rs1) + immI(insn)) &^ 1
		if target&3 != 0 {
			return &Trap{Cause: CauseInstructionAddressMisaligned, Tval: target}
		}

		ret := h.PC
		h.PC = target
		h.Set(f.rd, ret)
	case opBranch:
		return h.execBranch(insn, f)
	case opLoad:
		return h.execLoad(insn, f)
	case opStore:
		return h.execStore(insn, f)
	case opOpImm:
		h.execOpImm(insn, f)
	case opOp:
		return h.execOp(f)
	case opMiscMem:
		// fence / fence.i: single-hart, nothing to order or flush.
	case opAmo:
		return h.execAmo(f)
	case opSystem:
		return h.execSystem(insn, f)
	default:
		return &Trap{Cause: CauseIllegalInstruction, Tval: insn}
	}

	return nil
}

func (h *Hart) execBranch(insn Word, f fields) *Trap {
	a, b := h.Get(f.rs1), h.Get(f.rs2)

	var taken bool

	switch f.funct3 {
	case 0x0: // beq
		taken = a == b
	case 0x1: // bne
		taken = a != b
	case 0x4: // blt
		taken = int32(a) < int32(b)
	case 0x5: // bge
		taken = int32(a) >= int32(b)
	case 0x6: // bltu
		taken = a < b
	case 0x7: // bgeu
		taken = a >= b
	default:
		return &Trap{Cause: CauseIllegalInstruction, Tval: insn}
	}

	if !taken {
		return nil
	}

	target := (h.PC - 4) + immB(insn)
	if target&3 != 0 {
		return &Trap{Cause: CauseInstructionAddressMisaligned, Tval: target}
	}

	h.PC = target

	return nil
}

func (h *Hart) execLoad(insn Word, f fields) *Trap {
	addr := h.Get(f.rs1) + immI(insn)

	switch f.funct3 {
	case 0x0: // lb
		v, trap := h.ReadMem(addr, 8)
		if trap != nil {
			return trap
		}
		h.Set(f.rd, signExtend(v, 8))
	case 0x1: // lh
		v, trap := h.ReadMem(addr, 16)
		if trap != nil {
			return trap
		}
		h.Set(f.rd, signExtend(v, 16))
	case 0x2: // lw
		v, trap := h.ReadMem(addr, 32)
		if trap != nil {
			return trap
		}
		h.Set(f.rd, v)
	case 0x4: // lbu
		v, trap := h.ReadMem(addr, 8)
		if trap != nil {
			return trap
		}
		h.Set(f.rd, v)
	case 0x5: // lhu
		v, trap := h.ReadMem(addr, 16)
		if trap != nil {
			return trap
		}
		h.Set(f.rd, v)
	default:
		return &Trap{Cause: CauseIllegalInstruction, Tval: insn}
	}

	return nil
}

func (h *Hart) execStore(insn Word, f fields) *Trap {
	addr := h.Get(f.rs1) + immS(insn)
	val := h.Get(f.rs2)

	switch f.funct3 {
	case 0x0: // sb
		return h.WriteMem(addr, 8, val)
	case 0x1: // sh
		return h.WriteMem(addr, 16, val)
	case 0x2: // sw
		return h.WriteMem(addr, 32, val)
	default:
		return &Trap{Cause: CauseIllegalInstruction, Tval: insn}
	}
}

func (h *Hart) execOpImm(insn Word, f fields) {
	a := h.Get(f.rs1)
	imm := immI(insn)
	shamt := (insn >> 20) & 0x1f

	var result Word

	switch f.funct3 {
	case 0x0: // addi
		result = a + imm
	case 0x1: // slli
		result = a << shamt
	case 0x2: // slti
		result = boolWord(int32(a) < int32(imm))
	case 0x3: // sltiu
		result = boolWord(a < imm)
	case 0x4: // xori
		result = a ^ imm
	case 0x5: // srli/srai
		if f.funct7&0x20 != 0 {
			result = Word(int32(a) >> shamt)
		} else {
			result = a >> shamt
		}
	case 0x6: // ori
		result = a | imm
	case 0x7: // andi
		result = a & imm
	}

	h.Set(f.rd, result)
}

func (h *Hart) execOp(f fields) *Trap {
	a, b := h.Get(f.rs1), h.Get(f.rs2)
	shamt := b & 0x1f

	if f.funct7 == 0x01 {
		h.Set(f.rd, mulDivExtension(f.funct3, a, b))
		return nil
	}

	var result Word

	switch f.funct3 {
	case 0x0: // add/sub
		if f.funct7&0x20 != 0 {
			result = a - b
		} else {
			result = a + b
		}
	case 0x1: // sll
		result = a << shamt
	case 0x2: // slt
		result = boolWord(int32(a) < int32(b))
	case 0x3: // sltu
		result = boolWord(a < b)
	case 0x4: // xor
		result = a ^ b
	case 0x5: // srl/sra
		if f.funct7&0x20 != 0 {
			result = Word(int32(a) >> shamt)
		} else {
			result = a >> shamt
		}
	case 0x6: // or
		result = a | b
	case 0x7: // and
		result = a & b
	default:
		return &Trap{Cause: CauseIllegalInstruction}
	}

	h.Set(f.rd, result)

	return nil
}

func mulDivExtension(funct3 Word, a, b Word) Word {
	switch funct3 {
	case 0x0: // mul
		return Word(int32(a) * int32(b))
	case 0x1: // mulh
		x, y := int64(int32(a)), int64(int32(b))
		return Word(uint64(x*y) >> 32)
	case 0x2: // mulhsu
		x, y := int64(int32(a)), int64(uint32(b))
		return Word(uint64(x*y) >> 32)
	case 0x3: // mulhu
		x, y := uint64(uint32(a)), uint64(uint32(b))
		return Word((x * y) >> 32)
	case 0x4: // div
		x, y := int32(a), int32(b)
		switch {
		case y == 0:
			return 0xffff_ffff
		case x == math.MinInt32 && y == -1:
			return Word(x)
		default:
			return Word(x / y)
		}
	case 0x5: // divu
		if b == 0 {
			return 0xffff_ffff
		}

		return a / b
	case 0x6: // rem
		x, y := int32(a), int32(b)
		switch {
		case y == 0:
			return Word(x)
		case x == math.MinInt32 && y == -1:
			return 0
		default:
			return Word(x % y)
		}
	case 0x7: // remu
		if b == 0 {
			return a
		}

		return a % b
	default:
		return 0
	}
}

func boolWord(b bool) Word {
	if b {
		return 1
	}

	return 0
}
