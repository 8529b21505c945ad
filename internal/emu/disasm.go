package emu

// disasm.go is a small disassembler used only by the boot command's
// -trace flag (never by Exec itself), grounded on bassosimone/risc32's
// Disassemble(ci uint32) string.

import "fmt"

// Disassemble renders a best-effort textual form of one instruction.
// It is not a complete RV32 disassembler — it covers the common forms
// well enough to make -trace output and test failures legible.
func Disassemble(insn Word) string {
	f := decodeFields(insn)

	switch f.opcode {
	case opLui:
		return fmt.Sprintf("lui     x%d, %#x", f.rd, immU(insn)>>12)
	case opAuipc:
		return fmt.Sprintf("auipc   x%d, %#x", f.rd, immU(insn)>>12)
	case opJal:
		return fmt.Sprintf("jal     x%d, %d", f.rd, int32(immJ(insn)))
	case opJalr:
		return fmt.Sprintf("jalr    x%d, %d(x%d)", f.rd, int32(immI(insn)), f.rs1)
	case opBranch:
		return fmt.Sprintf("b%s     x%d, x%d, %d", branchMnemonic(f.funct3), f.rs1, f.rs2, int32(immB(insn)))
	case opLoad:
		return fmt.Sprintf("%s    x%d, %d(x%d)", loadMnemonic(f.funct3), f.rd, int32(immI(insn)), f.rs1)
	case opStore:
		return fmt.Sprintf("%s     x%d, %d(x%d)", storeMnemonic(f.funct3), f.rs2, int32(immS(insn)), f.rs1)
	case opOpImm:
		return fmt.Sprintf("%s    x%d, x%d, %d", opImmMnemonic(f.funct3, f.funct7), f.rd, f.rs1, int32(immI(insn)))
	case opOp:
		return fmt.Sprintf("%s     x%d, x%d, x%d", opMnemonic(f.funct3, f.funct7), f.rd, f.rs1, f.rs2)
	case opSystem:
		switch insn {
		case 0x0000_0073:
			return "ecall"
		case 0x0010_0073:
			return "ebreak"
		case 0x3020_0073:
			return "mret"
		case 0x1020_0073:
			return "sret"
		default:
			return fmt.Sprintf("csr     x%d, %#x, x%d", f.rd, csrAddr(insn), f.rs1)
		}
	case opMiscMem:
		return "fence"
	case opAmo:
		return fmt.Sprintf("amo.w   x%d, x%d, (x%d)", f.rd, f.rs2, f.rs1)
	default:
		return fmt.Sprintf(".word   %#x", uint32(insn))
	}
}

func branchMnemonic(funct3 Word) string {
	switch funct3 {
	case 0x0:
		return "eq"
	case 0x1:
		return "ne"
	case 0x4:
		return "lt"
	case 0x5:
		return "ge"
	case 0x6:
		return "ltu"
	case 0x7:
		return "geu"
	default:
		return "??"
	}
}

func loadMnemonic(funct3 Word) string {
	switch funct3 {
	case 0x0:
		return "lb"
	case 0x1:
		return "lh"
	case 0x2:
		return "lw"
	case 0x4:
		return "lbu"
	case 0x5:
		return "lhu"
	default:
		return "l??"
	}
}

func storeMnemonic(funct3 Word) string {
	switch funct3 {
	case 0x0:
		return "sb"
	case 0x1:
		return "sh"
	case 0x2:
		return "sw"
	default:
		return "s??"
	}
}

func opImmMnemonic(funct3, funct7 Word) string {
	switch funct3 {
	case 0x0:
		return "addi"
	case 0x1:
		return "slli"
	case 0x2:
		return "slti"
	case 0x3:
		return "sltiu"
	case 0x4:
		return "xori"
	case 0x5:
		if funct7&0x20 != 0 {
			return "srai"
		}

		return "srli"
	case 0x6:
		return "ori"
	case 0x7:
		return "andi"
	default:
		return "???"
	}
}

func opMnemonic(funct3, funct7 Word) string {
	if funct7 == 0x01 {
		names := [...]string{"mul", "mulh", "mulhsu", "mulhu", "div", "divu", "rem", "remu"}
		return names[funct3]
	}

	switch funct3 {
	case 0x0:
		if funct7&0x20 != 0 {
			return "sub"
		}

		return "add"
	case 0x1:
		return "sll"
	case 0x2:
		return "slt"
	case 0x3:
		return "sltu"
	case 0x4:
		return "xor"
	case 0x5:
		if funct7&0x20 != 0 {
			return "sra"
		}

		return "srl"
	case 0x6:
		return "or"
	case 0x7:
		return "and"
	default:
		return "???"
	}
}
