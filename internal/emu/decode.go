package emu

// decode.go honors the 7-bit opcode / funct3 / funct7 layout of the
// RV32 manual (§4.10): field extraction and immediate decoding shared
// by every instruction form.

const (
	opLoad    = 0x03
	opMiscMem = 0x0F
	opOpImm   = 0x13
	opAuipc   = 0x17
	opStore   = 0x23
	opAmo     = 0x2F
	opOp      = 0x33
	opLui     = 0x37
	opBranch  = 0x63
	opJalr    = 0x67
	opJal     = 0x6F
	opSystem  = 0x73
)

type fields struct {
	opcode Word
	rd     uint32
	funct3 Word
	rs1    uint32
	rs2    uint32
	funct7 Word
}

func decodeFields(insn Word) fields {
	return fields{
		opcode: insn & 0x7f,
		rd:     uint32((insn >> 7) & 0x1f),
		funct3: (insn >> 12) & 0x7,
		rs1:    uint32((insn >> 15) & 0x1f),
		rs2:    uint32((insn >> 20) & 0x1f),
		funct7: (insn >> 25) & 0x7f,
	}
}

// signExtend sign-extends the bottom n bits of v.
func signExtend(v Word, n uint) Word {
	shift := 32 - n
	return Word(int32(v<<shift) >> shift)
}

func immI(insn Word) Word {
	return signExtend(insn>>20, 12)
}

func immS(insn Word) Word {
	v := ((insn >> 25) << 5) | ((insn >> 7) & 0x1f)
	return signExtend(v, 12)
}

func immB(insn Word) Word {
	v := (((insn >> 31) & 1) << 12) |
		(((insn >> 7) & 1) << 11) |
		(((insn >> 25) & 0x3f) << 5) |
		(((insn >> 8) & 0xf) << 1)

	return signExtend(v, 13)
}

func immU(insn Word) Word {
	return insn &^ 0xfff
}

func immJ(insn Word) Word {
	v := (((insn >> 31) & 1) << 20) |
		(((insn >> 12) & 0xff) << 12) |
		(((insn >> 20) & 1) << 11) |
		(((insn >> 21) & 0x3ff) << 1)

	return signExtend(v, 21)
}

// csrAddr extracts the CSR address from an I-type SYSTEM instruction.
func csrAddr(insn Word) Word {
	return insn >> 20
}
